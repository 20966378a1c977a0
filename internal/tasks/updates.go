package tasks

import (
	"fmt"

	"github.com/desertthunder/downbeats/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps known so far
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListCategories Phase = iota
	FetchCategory
	FetchSubcategory
	WalkComplete
	ExportTree
)

func (p Phase) String() string {
	switch p {
	case ListCategories:
		return "list_categories"
	case FetchCategory:
		return "fetch_category"
	case FetchSubcategory:
		return "fetch_subcategory"
	case WalkComplete:
		return "walk_complete"
	case ExportTree:
		return "export_tree"
	default:
		return ""
	}
}

func listCategoriesUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListCategories,
		Step:    1,
		Total:   1,
		Message: "Fetching categories...",
	}
}

func fetchCategoryUpdate(id int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCategory,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching category %d...", id),
	}
}

func fetchSubcategoryUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSubcategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, name),
	}
}

func walkCompleteUpdate(tree *models.CategoryTree) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WalkComplete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %s: %s", tree.Category.Name, tree.Counts().Summary()),
		Data:    tree,
	}
}

func exportingTreeUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportTree,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportTree,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportTree,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
