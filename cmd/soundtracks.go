package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/shared"
	"github.com/urfave/cli/v3"
)

var openBrowser = shared.OpenBrowser

func soundtrackInput(cmd *cli.Command, upload *models.Upload) models.SoundtrackInput {
	return models.SoundtrackInput{
		Title:       cmd.String("title"),
		Description: cmd.String("description"),
		URL:         cmd.String("url"),
		Category:    cmd.Int64("category"),
		Subcategory: optionalID(cmd, "subcategory"),
		Thumbnail:   upload,
	}
}

// SoundtracksCreate creates a soundtrack from flags.
func (r *Runner) SoundtracksCreate(ctx context.Context, cmd *cli.Command) error {
	upload, closeUpload, err := openUpload(cmd.String("thumbnail"))
	if err != nil {
		return err
	}
	defer closeUpload()

	s, err := r.svc.CreateSoundtrack(ctx, soundtrackInput(cmd, upload))
	if err != nil {
		return r.fail("create_soundtrack", err)
	}
	return r.printSoundtrack("Created", s, cmd)
}

// SoundtracksUpdate replaces a soundtrack's fields.
func (r *Runner) SoundtracksUpdate(ctx context.Context, cmd *cli.Command) error {
	upload, closeUpload, err := openUpload(cmd.String("thumbnail"))
	if err != nil {
		return err
	}
	defer closeUpload()

	s, err := r.svc.UpdateSoundtrack(ctx, cmd.Int64("id"), soundtrackInput(cmd, upload))
	if err != nil {
		return r.fail("update_soundtrack", err)
	}
	return r.printSoundtrack("Updated", s, cmd)
}

// SoundtracksDelete asks for confirmation unless --yes, then deletes. Soundtracks have no impact query.
func (r *Runner) SoundtracksDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Int64("id")

	if err := r.confirmDelete(cmd, fmt.Sprintf("soundtrack %d", id), nil); err != nil {
		return err
	}

	if err := r.svc.DeleteSoundtrack(ctx, id); err != nil {
		return r.fail("delete_soundtrack", err)
	}
	return r.writePlain("✓ Deleted soundtrack %d\n", id)
}

// SoundtracksPlay opens the soundtrack link in the system browser.
func (r *Runner) SoundtracksPlay(ctx context.Context, cmd *cli.Command) error {
	link := cmd.String("url")
	if err := openBrowser(link); err != nil {
		return r.fail("play", err)
	}
	r.logger.Info("opened soundtrack", "url", link)
	return nil
}

func (r *Runner) printSoundtrack(verb string, s *models.Soundtrack, cmd *cli.Command) error {
	if asJSON, pretty := wantsJSON(cmd); asJSON {
		return r.writeJSON(s, pretty)
	}
	r.writePlain("✓ %s soundtrack %d %q\n", verb, s.ID, s.Title)
	r.writePlain("URL: %s\n", s.URL)
	r.printThumbnail(s.Thumbnail)
	return nil
}
