package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/downbeats/internal/shared"
)

// ExportResult is the outcome of exporting one category tree.
type ExportResult struct {
	CategoryID    int64
	CategoryName  string
	Success       bool
	Files         []string
	Subcategories int
	Soundtracks   int
	Error         error
}

// ExportSummary aggregates the results of a multi-category export.
type ExportSummary struct {
	TotalCategories   int
	SuccessfulExports int
	FailedExports     int
	Results           []ExportResult
	OutputDirectory   string
	ManifestPath      string
}

type manifest struct {
	Format            string          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	OutputDirectory   string          `json:"output_directory"`
	TotalCategories   int             `json:"total_categories"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Categories        []manifestEntry `json:"categories"`
}

type manifestEntry struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	Files         []string `json:"files,omitempty"`
	Subcategories int      `json:"subcategories"`
	Soundtracks   int      `json:"soundtracks"`
	Error         string   `json:"error,omitempty"`
}

// WriteExportManifest writes a JSON summary of an export run to path.
func WriteExportManifest(summary *ExportSummary, format, path string) error {
	m := manifest{
		Format:            format,
		ExportedAt:        time.Now().UTC(),
		OutputDirectory:   summary.OutputDirectory,
		TotalCategories:   summary.TotalCategories,
		SuccessfulExports: summary.SuccessfulExports,
		FailedExports:     summary.FailedExports,
		Categories:        make([]manifestEntry, 0, len(summary.Results)),
	}

	for _, res := range summary.Results {
		entry := manifestEntry{
			ID:            res.CategoryID,
			Name:          res.CategoryName,
			Status:        "success",
			Files:         res.Files,
			Subcategories: res.Subcategories,
			Soundtracks:   res.Soundtracks,
		}
		if !res.Success {
			entry.Status = "failed"
			if res.Error != nil {
				entry.Error = res.Error.Error()
			}
		}
		m.Categories = append(m.Categories, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
