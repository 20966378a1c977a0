package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/downbeats/internal/models"
	"github.com/urfave/cli/v3"
)

// SubcategoriesGet prints one subcategory with its children and soundtracks.
func (r *Runner) SubcategoriesGet(ctx context.Context, cmd *cli.Command) error {
	sub, err := r.svc.GetSubcategory(ctx, cmd.Int64("id"))
	if err != nil {
		return r.fail("get_subcategory", err)
	}

	if asJSON, pretty := wantsJSON(cmd); asJSON {
		return r.writeJSON(sub, pretty)
	}

	r.writePlainHeader(fmt.Sprintf("[%d] %s", sub.ID, sub.Name))
	r.writePlain("%s\n", sub.Description)
	r.writePlain("Category: [%d] %s\n", sub.Category, sub.CategoryName)
	if sub.Parent != nil {
		r.writePlain("Parent: [%d] %s\n", *sub.Parent, sub.ParentName)
	}
	r.printThumbnail(sub.Thumbnail)
	r.printChildren(sub.Subcategories, sub.Soundtracks)
	return nil
}

func subcategoryInput(cmd *cli.Command, upload *models.Upload) models.SubcategoryInput {
	return models.SubcategoryInput{
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Category:    cmd.Int64("category"),
		Parent:      optionalID(cmd, "parent"),
		Thumbnail:   upload,
	}
}

// SubcategoriesCreate creates a subcategory from flags.
func (r *Runner) SubcategoriesCreate(ctx context.Context, cmd *cli.Command) error {
	upload, closeUpload, err := openUpload(cmd.String("thumbnail"))
	if err != nil {
		return err
	}
	defer closeUpload()

	sub, err := r.svc.CreateSubcategory(ctx, subcategoryInput(cmd, upload))
	if err != nil {
		return r.fail("create_subcategory", err)
	}
	return r.printSubcategory("Created", sub, cmd)
}

// SubcategoriesUpdate replaces a subcategory's fields, which may move it to another parent or category.
func (r *Runner) SubcategoriesUpdate(ctx context.Context, cmd *cli.Command) error {
	upload, closeUpload, err := openUpload(cmd.String("thumbnail"))
	if err != nil {
		return err
	}
	defer closeUpload()

	sub, err := r.svc.UpdateSubcategory(ctx, cmd.Int64("id"), subcategoryInput(cmd, upload))
	if err != nil {
		return r.fail("update_subcategory", err)
	}
	return r.printSubcategory("Updated", sub, cmd)
}

// SubcategoriesImpact prints the cascade counts for deleting a subcategory.
func (r *Runner) SubcategoriesImpact(ctx context.Context, cmd *cli.Command) error {
	impact, err := r.svc.SubcategoryDeleteImpact(ctx, cmd.Int64("id"))
	if err != nil {
		return r.fail("subcategory_delete_impact", err)
	}
	return r.printImpact(impact, cmd)
}

// SubcategoriesDelete shows the impact, asks for confirmation unless --yes, then deletes.
func (r *Runner) SubcategoriesDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Int64("id")

	impact, err := r.svc.SubcategoryDeleteImpact(ctx, id)
	if err != nil {
		return r.fail("subcategory_delete_impact", err)
	}

	if err := r.confirmDelete(cmd, fmt.Sprintf("subcategory %d", id), impact); err != nil {
		return err
	}

	if err := r.svc.DeleteSubcategory(ctx, id); err != nil {
		return r.fail("delete_subcategory", err)
	}
	return r.writePlain("✓ Deleted subcategory %d\n", id)
}

func (r *Runner) printSubcategory(verb string, sub *models.Subcategory, cmd *cli.Command) error {
	if asJSON, pretty := wantsJSON(cmd); asJSON {
		return r.writeJSON(sub, pretty)
	}
	r.writePlain("✓ %s subcategory %d %q in %s\n", verb, sub.ID, sub.Name, location(sub.CategoryName, sub.ParentName))
	r.printThumbnail(sub.Thumbnail)
	return nil
}

func location(category, parent string) string {
	if parent == "" {
		return category
	}
	return category + " / " + parent
}
