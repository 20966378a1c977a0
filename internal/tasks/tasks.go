package tasks

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/desertthunder/downbeats/internal/formatter"
	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/services"
	"github.com/desertthunder/downbeats/internal/shared"
)

// DefaultRateLimit is the number of API calls per second when none is configured.
const DefaultRateLimit = 5.0

// Engine assembles full category trees from the one-level API responses.
type Engine interface {
	// Walk fetches a category and every subcategory below it.
	Walk(ctx context.Context, categoryID int64, progress chan<- ProgressUpdate) (*models.CategoryTree, error)

	// WalkAll lists the categories and walks each one.
	WalkAll(ctx context.Context, progress chan<- ProgressUpdate) ([]*models.CategoryTree, error)

	// Export walks the given categories (all when ids is empty) and writes each tree to disk.
	Export(ctx context.Context, progress chan<- ProgressUpdate, ids []int64, opts ExportOpts) (*formatter.ExportSummary, error)
}

// TreeEngine implements [Engine] over a [services.Service]. Calls are paced by a shared limiter.
type TreeEngine struct {
	svc     services.Service
	limiter *rate.Limiter
}

// NewTreeEngine creates a TreeEngine that issues at most ratePerSecond calls per second.
func NewTreeEngine(svc services.Service, ratePerSecond float64) *TreeEngine {
	if ratePerSecond <= 0 {
		ratePerSecond = DefaultRateLimit
	}
	return &TreeEngine{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *TreeEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

type pending struct {
	id     int64
	target *models.SubcategoryTree
}

// Walk fetches the category and then each subcategory breadth first, one call per node.
//
// Subcategories already visited are skipped, so malformed data with a cycle still terminates.
func (e *TreeEngine) Walk(ctx context.Context, categoryID int64, progress chan<- ProgressUpdate) (*models.CategoryTree, error) {
	if e.svc == nil {
		return nil, errServiceUnavailable()
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	e.sendProgress(progress, fetchCategoryUpdate(categoryID))

	detail, err := e.svc.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	tree := &models.CategoryTree{
		Category:      detail.Category,
		Subcategories: make([]models.SubcategoryTree, len(detail.Subcategories)),
		Soundtracks:   nonNil(detail.Soundtracks),
	}

	queue := make([]pending, 0, len(detail.Subcategories))
	for i, s := range detail.Subcategories {
		tree.Subcategories[i].Subcategory = flatten(s)
		queue = append(queue, pending{id: s.ID, target: &tree.Subcategories[i]})
	}

	visited := map[int64]bool{}
	done := 0
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next.id] {
			continue
		}
		visited[next.id] = true

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		sub, err := e.svc.GetSubcategory(ctx, next.id)
		if err != nil {
			return nil, err
		}
		done++
		e.sendProgress(progress, fetchSubcategoryUpdate(done, done+len(queue), sub.Name))

		next.target.Subcategory = flatten(*sub)
		next.target.Soundtracks = nonNil(sub.Soundtracks)
		next.target.Children = make([]models.SubcategoryTree, len(sub.Subcategories))
		for i, child := range sub.Subcategories {
			next.target.Children[i].Subcategory = flatten(child)
			queue = append(queue, pending{id: child.ID, target: &next.target.Children[i]})
		}
	}

	e.sendProgress(progress, walkCompleteUpdate(tree))
	return tree, nil
}

// WalkAll walks every category in list order.
func (e *TreeEngine) WalkAll(ctx context.Context, progress chan<- ProgressUpdate) ([]*models.CategoryTree, error) {
	if e.svc == nil {
		return nil, errServiceUnavailable()
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	e.sendProgress(progress, listCategoriesUpdate())

	categories, err := e.svc.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	trees := make([]*models.CategoryTree, 0, len(categories))
	for _, c := range categories {
		tree, err := e.Walk(ctx, c.ID, progress)
		if err != nil {
			return trees, err
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

var _ Engine = (*TreeEngine)(nil)

func errServiceUnavailable() error {
	return fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
}

// flatten drops the nested lists of a subcategory read model.
func flatten(s models.Subcategory) models.Subcategory {
	s.Subcategories = nil
	s.Soundtracks = nil
	return s
}

func nonNil(tracks []models.Soundtrack) []models.Soundtrack {
	if tracks == nil {
		return []models.Soundtrack{}
	}
	return tracks
}
