package services

import (
	"context"

	"github.com/desertthunder/downbeats/internal/models"
)

// CategoryService covers categories and the one-level category detail view.
type CategoryService interface {
	// ListCategories returns every category without children.
	ListCategories(ctx context.Context) ([]models.Category, error)

	// GetCategory returns a category with its top-level subcategories and direct soundtracks.
	GetCategory(ctx context.Context, id int64) (*models.CategoryDetail, error)

	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)

	// UpdateCategory replaces name and description. A nil thumbnail keeps the stored one.
	UpdateCategory(ctx context.Context, id int64, in models.CategoryInput) (*models.Category, error)

	// CategoryDeleteImpact reports what [CategoryService.DeleteCategory] would cascade to. It never mutates.
	CategoryDeleteImpact(ctx context.Context, id int64) (*models.DeleteImpact, error)

	// DeleteCategory removes the category and everything below it.
	DeleteCategory(ctx context.Context, id int64) error
}

// SubcategoryService covers subcategories at any depth.
type SubcategoryService interface {
	// GetSubcategory returns a subcategory with its immediate children and direct soundtracks.
	GetSubcategory(ctx context.Context, id int64) (*models.Subcategory, error)

	CreateSubcategory(ctx context.Context, in models.SubcategoryInput) (*models.Subcategory, error)
	UpdateSubcategory(ctx context.Context, id int64, in models.SubcategoryInput) (*models.Subcategory, error)
	SubcategoryDeleteImpact(ctx context.Context, id int64) (*models.DeleteImpact, error)
	DeleteSubcategory(ctx context.Context, id int64) error
}

// SoundtrackService covers soundtrack writes. Soundtracks are read through their owner.
type SoundtrackService interface {
	CreateSoundtrack(ctx context.Context, in models.SoundtrackInput) (*models.Soundtrack, error)
	UpdateSoundtrack(ctx context.Context, id int64, in models.SoundtrackInput) (*models.Soundtrack, error)
	DeleteSoundtrack(ctx context.Context, id int64) error
}

// Service is the full Downbeats API contract.
type Service interface {
	CategoryService
	SubcategoryService
	SoundtrackService

	// MediaURL resolves a relative thumbnail path against the media base URL.
	// Returns "" for a nil or empty path.
	MediaURL(path *string) string
}
