package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/downbeats/internal/models"
)

var _ Service = (*DownbeatsService)(nil)

// DownbeatsService implements [Service] over the Downbeats REST API.
type DownbeatsService struct {
	api      *APIService
	mediaURL string
}

// NewDownbeatsService creates a client using api for transport and mediaURL (BASE_URL) for thumbnails.
func NewDownbeatsService(api *APIService, mediaURL string) *DownbeatsService {
	if api == nil {
		api = NewAPIService("", nil)
	}
	if mediaURL == "" {
		mediaURL = DefaultBaseURL
	}

	return &DownbeatsService{
		api:      api,
		mediaURL: strings.TrimRight(mediaURL, "/"),
	}
}

// call issues one request and decodes a successful body into result (when non-nil).
func (d *DownbeatsService) call(
	ctx context.Context,
	op, fallback, method, path string,
	payload models.Payload,
	result any,
) error {
	var (
		resp *APIResponse
		err  error
	)
	if payload != nil {
		resp, err = d.api.Send(ctx, method, path, payload)
	} else {
		resp, err = d.api.Do(ctx, method, path, nil, "")
	}
	if err != nil {
		return &RequestError{Op: op, Message: fallback, Err: err}
	}

	if !resp.OK() {
		return &RequestError{Op: op, Message: resolveMessage(resp.Body, fallback), StatusCode: resp.StatusCode}
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(resp.Body, result); err != nil {
		return &RequestError{
			Op:         op,
			Message:    fallback,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

// ListCategories fetches all categories.
func (d *DownbeatsService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := d.call(ctx, "list_categories", MsgListCategories, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// GetCategory fetches a category with one level of children.
func (d *DownbeatsService) GetCategory(ctx context.Context, id int64) (*models.CategoryDetail, error) {
	var detail models.CategoryDetail
	path := fmt.Sprintf("/category/%d", id)
	if err := d.call(ctx, "get_category", getCategoryMessage(id), http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (d *DownbeatsService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	var category models.Category
	if err := d.call(ctx, "create_category", MsgCreateCategory, http.MethodPost, "/create_category", in, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (d *DownbeatsService) UpdateCategory(ctx context.Context, id int64, in models.CategoryInput) (*models.Category, error) {
	var category models.Category
	path := fmt.Sprintf("/category/%d/", id)
	if err := d.call(ctx, "update_category", MsgUpdateCategory, http.MethodPut, path, in, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (d *DownbeatsService) CategoryDeleteImpact(ctx context.Context, id int64) (*models.DeleteImpact, error) {
	var impact models.DeleteImpact
	path := fmt.Sprintf("/delete_category/%d/", id)
	if err := d.call(ctx, "category_delete_impact", MsgCategoryDeleteImpact, http.MethodGet, path, nil, &impact); err != nil {
		return nil, err
	}
	return &impact, nil
}

func (d *DownbeatsService) DeleteCategory(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/delete_category/%d/", id)
	return d.call(ctx, "delete_category", MsgDeleteCategory, http.MethodDelete, path, nil, nil)
}

// GetSubcategory fetches a subcategory with its immediate children.
func (d *DownbeatsService) GetSubcategory(ctx context.Context, id int64) (*models.Subcategory, error) {
	var sub models.Subcategory
	path := fmt.Sprintf("/subcategory/%d", id)
	if err := d.call(ctx, "get_subcategory", MsgGetSubcategory, http.MethodGet, path, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (d *DownbeatsService) CreateSubcategory(ctx context.Context, in models.SubcategoryInput) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := d.call(ctx, "create_subcategory", MsgCreateSubcategory, http.MethodPost, "/create_subcategory", in, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (d *DownbeatsService) UpdateSubcategory(ctx context.Context, id int64, in models.SubcategoryInput) (*models.Subcategory, error) {
	var sub models.Subcategory
	path := fmt.Sprintf("/subcategory/%d/", id)
	if err := d.call(ctx, "update_subcategory", MsgUpdateSubcategory, http.MethodPut, path, in, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (d *DownbeatsService) SubcategoryDeleteImpact(ctx context.Context, id int64) (*models.DeleteImpact, error) {
	var impact models.DeleteImpact
	path := fmt.Sprintf("/delete_subcategory/%d/", id)
	if err := d.call(ctx, "subcategory_delete_impact", MsgSubcategoryDeleteImpact, http.MethodGet, path, nil, &impact); err != nil {
		return nil, err
	}
	return &impact, nil
}

func (d *DownbeatsService) DeleteSubcategory(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/delete_subcategory/%d/", id)
	return d.call(ctx, "delete_subcategory", MsgDeleteSubcategory, http.MethodDelete, path, nil, nil)
}

func (d *DownbeatsService) CreateSoundtrack(ctx context.Context, in models.SoundtrackInput) (*models.Soundtrack, error) {
	var track models.Soundtrack
	if err := d.call(ctx, "create_soundtrack", MsgCreateSoundtrack, http.MethodPost, "/create_soundtrack", in, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

func (d *DownbeatsService) UpdateSoundtrack(ctx context.Context, id int64, in models.SoundtrackInput) (*models.Soundtrack, error) {
	var track models.Soundtrack
	path := fmt.Sprintf("/soundtrack/%d/", id)
	if err := d.call(ctx, "update_soundtrack", MsgUpdateSoundtrack, http.MethodPut, path, in, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

func (d *DownbeatsService) DeleteSoundtrack(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/delete_soundtrack/%d/", id)
	return d.call(ctx, "delete_soundtrack", MsgDeleteSoundtrack, http.MethodDelete, path, nil, nil)
}

// MediaURL resolves a thumbnail path against the media base URL. Absolute URLs are returned unchanged.
func (d *DownbeatsService) MediaURL(path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	if u, err := url.Parse(*path); err == nil && u.IsAbs() {
		return *path
	}
	return d.mediaURL + "/" + strings.TrimLeft(*path, "/")
}
