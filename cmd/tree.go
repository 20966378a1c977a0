package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/downbeats/internal/formatter"
	"github.com/desertthunder/downbeats/internal/shared"
	"github.com/desertthunder/downbeats/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TreeShow walks one category and prints the full tree.
func (r *Runner) TreeShow(ctx context.Context, cmd *cli.Command) error {
	tree, err := r.engine.Walk(ctx, cmd.Int64("category"), nil)
	if err != nil {
		return r.fail("walk", err)
	}

	if asJSON, pretty := wantsJSON(cmd); asJSON {
		return r.writeJSON(tree, pretty)
	}

	data, err := formatter.ExportToText(tree)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// TreeExport walks the requested categories and writes them to disk, logging progress as it goes.
func (r *Runner) TreeExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if format == "" {
		format = r.config.Export.Format
	}
	if !formatter.ValidFormat(format) {
		return fmt.Errorf("%w: --format must be one of %v, got %q", shared.ErrInvalidFlag, formatter.Formats, format)
	}

	var ids []int64
	if id := optionalID(cmd, "category"); id != nil {
		ids = []int64{*id}
	}

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	summary, err := r.engine.Export(ctx, progress, ids, tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
	})
	close(progress)
	<-done

	if summary != nil {
		r.writePlainHeader("Export Summary")
		r.writePlain("Format: %s\n", format)
		r.writePlain("Output: %s\n", summary.OutputDirectory)
		r.writePlain("Exported: %d/%d\n", summary.SuccessfulExports, summary.TotalCategories)
		for _, res := range summary.Results {
			if !res.Success {
				r.writePlain("  ✗ [%d] %s: %v\n", res.CategoryID, res.CategoryName, res.Error)
			}
		}
		if summary.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", summary.ManifestPath)
		}
	}

	if err != nil {
		return r.fail("export", err)
	}
	if summary.FailedExports > 0 {
		return fmt.Errorf("%w: %d of %d categories failed to export", shared.ErrAPIRequest, summary.FailedExports, summary.TotalCategories)
	}
	return nil
}
