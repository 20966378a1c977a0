package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/downbeats/internal/formatter"
	"github.com/desertthunder/downbeats/internal/models"
)

// ManifestName is the file written to the output directory after every export run.
const ManifestName = "export_manifest.json"

// ExportOpts contains configuration for tree exports.
type ExportOpts struct {
	Format     string // Export format: json, csv, markdown, txt
	OutputDir  string // Base output directory (default: downbeats_export_{epoch})
	NumWorkers int    // Concurrent writers (default: 3, max: 10)
}

type exportJob struct {
	tree *models.CategoryTree
}

// Export walks each requested category and writes its tree in the chosen format.
//
// Walks run sequentially behind the engine's limiter; writes fan out to a worker pool. A failed
// walk or write is recorded in the summary and does not stop the run. The manifest is always
// written, even when every category failed.
func (e *TreeEngine) Export(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []int64,
	opts ExportOpts,
) (*formatter.ExportSummary, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if !formatter.ValidFormat(opts.Format) {
		return nil, fmt.Errorf("unsupported export format %q", opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("downbeats_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	if len(ids) == 0 {
		if e.svc == nil {
			return nil, errServiceUnavailable()
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		e.sendProgress(prog, listCategoriesUpdate())
		categories, err := e.svc.ListCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		for _, c := range categories {
			ids = append(ids, c.ID)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &formatter.ExportSummary{
		TotalCategories: len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]formatter.ExportResult, 0, len(ids)),
	}

	jobs := make(chan exportJob, len(ids))
	results := make(chan formatter.ExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			select {
			case <-ctx.Done():
				return
			default:
			}

			tree, err := e.Walk(ctx, id, nil)
			if err != nil {
				results <- formatter.ExportResult{
					CategoryID:   id,
					CategoryName: fmt.Sprintf("Unknown (%d)", id),
					Error:        fmt.Errorf("failed to fetch category tree: %w", err),
				}
				continue
			}

			e.sendProgress(prog, exportingTreeUpdate(i+1, len(ids), tree.Category.Name))
			jobs <- exportJob{tree: tree}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		summary.Results = append(summary.Results, res)

		if res.Success {
			summary.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.CategoryName, len(res.Files)))
		} else {
			summary.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.CategoryName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	if err := formatter.WriteExportManifest(summary, opts.Format, manifestPath); err != nil {
		return summary, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	summary.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// exportWorker writes trees from the jobs channel until it is closed.
//
// Jobs left after cancellation are still drained so the producer never blocks.
func (e *TreeEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- formatter.ExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- formatter.ExportResult{
				CategoryID:   job.tree.Category.ID,
				CategoryName: job.tree.Category.Name,
				Error:        err,
			}
			continue
		}
		results <- e.exportTree(job.tree, opts)
	}
}

// exportTree writes one tree to the output directory in the configured format.
func (e *TreeEngine) exportTree(tree *models.CategoryTree, opts ExportOpts) formatter.ExportResult {
	counts := tree.Counts()
	result := formatter.ExportResult{
		CategoryID:    tree.Category.ID,
		CategoryName:  tree.Category.Name,
		Files:         []string{},
		Subcategories: counts.SubcategoriesCount,
		Soundtracks:   counts.SoundtracksCount,
	}
	base := filepath.Join(opts.OutputDir, formatter.BaseName(tree.Category))

	switch opts.Format {
	case formatter.FormatCSV:
		res, err := formatter.WriteCSVExport(tree, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{res.RowsFile, res.MetadataFile}
	case formatter.FormatMarkdown:
		var resolve formatter.MediaResolver
		if e.svc != nil {
			resolve = e.svc.MediaURL
		}
		res, err := formatter.WriteMarkdownExport(tree, base, resolve)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = res.Files
	case formatter.FormatText:
		path, err := formatter.WriteTextExport(tree, base+"_tree.txt")
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	default:
		path, err := formatter.WriteJSONExport(tree, base+".json")
		if err != nil {
			result.Error = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}
