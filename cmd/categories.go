package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/shared"
	"github.com/urfave/cli/v3"
)

// CategoriesList prints every category.
func (r *Runner) CategoriesList(ctx context.Context, cmd *cli.Command) error {
	categories, err := r.svc.ListCategories(ctx)
	if err != nil {
		return r.fail("list_categories", err)
	}

	if asJSON, pretty := wantsJSON(cmd); asJSON {
		return r.writeJSON(categories, pretty)
	}

	r.writePlainHeader(fmt.Sprintf("Categories (%d)", len(categories)))
	for _, c := range categories {
		r.writePlain("[%d] %s\n", c.ID, c.Name)
		r.writePlain("    %s\n", c.Description)
	}
	return nil
}

// CategoriesGet prints one category with one level of children.
func (r *Runner) CategoriesGet(ctx context.Context, cmd *cli.Command) error {
	detail, err := r.svc.GetCategory(ctx, cmd.Int64("id"))
	if err != nil {
		return r.fail("get_category", err)
	}

	if asJSON, pretty := wantsJSON(cmd); asJSON {
		return r.writeJSON(detail, pretty)
	}

	r.writePlainHeader(fmt.Sprintf("[%d] %s", detail.ID, detail.Name))
	r.writePlain("%s\n", detail.Description)
	r.printThumbnail(detail.Thumbnail)
	r.printChildren(detail.Subcategories, detail.Soundtracks)
	return nil
}

// CategoriesCreate creates a category from flags.
func (r *Runner) CategoriesCreate(ctx context.Context, cmd *cli.Command) error {
	upload, closeUpload, err := openUpload(cmd.String("thumbnail"))
	if err != nil {
		return err
	}
	defer closeUpload()

	c, err := r.svc.CreateCategory(ctx, models.CategoryInput{
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Thumbnail:   upload,
	})
	if err != nil {
		return r.fail("create_category", err)
	}

	return r.printCategory("Created", c, cmd)
}

// CategoriesUpdate replaces a category's fields. The thumbnail is kept unless a new file is given.
func (r *Runner) CategoriesUpdate(ctx context.Context, cmd *cli.Command) error {
	upload, closeUpload, err := openUpload(cmd.String("thumbnail"))
	if err != nil {
		return err
	}
	defer closeUpload()

	c, err := r.svc.UpdateCategory(ctx, cmd.Int64("id"), models.CategoryInput{
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Thumbnail:   upload,
	})
	if err != nil {
		return r.fail("update_category", err)
	}

	return r.printCategory("Updated", c, cmd)
}

// CategoriesImpact prints the cascade counts for deleting a category.
func (r *Runner) CategoriesImpact(ctx context.Context, cmd *cli.Command) error {
	impact, err := r.svc.CategoryDeleteImpact(ctx, cmd.Int64("id"))
	if err != nil {
		return r.fail("category_delete_impact", err)
	}
	return r.printImpact(impact, cmd)
}

// CategoriesDelete shows the impact, asks for confirmation unless --yes, then deletes.
func (r *Runner) CategoriesDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Int64("id")

	impact, err := r.svc.CategoryDeleteImpact(ctx, id)
	if err != nil {
		return r.fail("category_delete_impact", err)
	}

	if err := r.confirmDelete(cmd, fmt.Sprintf("category %d", id), impact); err != nil {
		return err
	}

	if err := r.svc.DeleteCategory(ctx, id); err != nil {
		return r.fail("delete_category", err)
	}
	return r.writePlain("✓ Deleted category %d\n", id)
}

// confirmDelete prints what a delete removes and asks unless --yes is set.
// A nil impact means the target has no descendants to count.
func (r *Runner) confirmDelete(cmd *cli.Command, label string, impact *models.DeleteImpact) error {
	if impact != nil {
		if impact.Empty() {
			r.writePlain("Deleting %s removes nothing else.\n", label)
		} else {
			r.writePlain("Deleting %s also removes %s.\n", label, impact.Summary())
		}
	}

	if cmd.Bool("yes") {
		return nil
	}

	ok, err := r.confirm(fmt.Sprintf("Delete %s?", label))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s was not deleted", shared.ErrAborted, label)
	}
	return nil
}

func (r *Runner) printCategory(verb string, c *models.Category, cmd *cli.Command) error {
	if asJSON, pretty := wantsJSON(cmd); asJSON {
		return r.writeJSON(c, pretty)
	}
	r.writePlain("✓ %s category %d %q\n", verb, c.ID, c.Name)
	r.printThumbnail(c.Thumbnail)
	return nil
}

func (r *Runner) printImpact(impact *models.DeleteImpact, cmd *cli.Command) error {
	if asJSON, pretty := wantsJSON(cmd); asJSON {
		return r.writeJSON(impact, pretty)
	}
	return r.writePlain("Subcategories: %d\nSoundtracks: %d\n", impact.SubcategoriesCount, impact.SoundtracksCount)
}

func (r *Runner) printThumbnail(path *string) {
	if url := r.svc.MediaURL(path); url != "" {
		r.writePlain("Thumbnail: %s\n", url)
	}
}

func (r *Runner) printChildren(subcategories []models.Subcategory, soundtracks []models.Soundtrack) {
	r.writePlainln("Subcategories (%d)", len(subcategories))
	for _, s := range subcategories {
		r.writePlain("  [%d] %s\n", s.ID, s.Name)
	}
	r.writePlainln("Soundtracks (%d)", len(soundtracks))
	for _, s := range soundtracks {
		r.writePlain("  [%d] %s - %s\n", s.ID, s.Title, s.URL)
	}
}
