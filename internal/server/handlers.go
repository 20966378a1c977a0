package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/repositories"
	"github.com/desertthunder/downbeats/internal/shared"
)

const maxFormMemory = 32 << 20

// Handlers implements the Downbeats endpoints over the repositories.
type Handlers struct {
	categories    *repositories.CategoryRepository
	subcategories *repositories.SubcategoryRepository
	soundtracks   *repositories.SoundtrackRepository
	thumbnails    *ThumbnailStore
	logger        *log.Logger
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

// writeError maps validation errors to 400 and missing rows to 404. Anything else is logged and returned as 500.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error, kind string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, shared.ErrNotFound):
		writeMessage(w, http.StatusNotFound, kind+" not found")
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

// formID reads an optional numeric form field. Empty values yield nil.
func formID(r *http.Request, field, label string) (*int64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" || raw == "null" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &models.ValidationError{Field: field, Message: fmt.Sprintf("%s must be a number", label)}
	}
	return &id, nil
}

func parseForm(r *http.Request) error {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return &models.ValidationError{Field: "form", Message: "Request body must be multipart/form-data"}
	}
	return nil
}

// saveThumbnail stores the optional thumbnail part. Returns nil when no file was sent.
func (h *Handlers) saveThumbnail(r *http.Request) (*string, error) {
	file, _, err := r.FormFile("thumbnail")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.ValidationError{Field: "thumbnail", Message: "Thumbnail could not be read"}
	}
	defer file.Close()

	public, err := h.thumbnails.Save(file)
	if err != nil {
		return nil, err
	}
	return &public, nil
}

// discard removes a thumbnail stored for a write that then failed.
func (h *Handlers) discard(thumbnail *string) {
	if thumbnail == nil {
		return
	}
	if err := h.thumbnails.Remove(*thumbnail); err != nil {
		h.logger.Warn("failed to remove orphaned thumbnail", "path", *thumbnail, "error", err)
	}
}

func categoryInput(r *http.Request) (models.CategoryInput, error) {
	if err := parseForm(r); err != nil {
		return models.CategoryInput{}, err
	}
	in := models.CategoryInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	return in, in.Validate()
}

func subcategoryInput(r *http.Request) (models.SubcategoryInput, error) {
	if err := parseForm(r); err != nil {
		return models.SubcategoryInput{}, err
	}
	in := models.SubcategoryInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}

	category, err := formID(r, "category", "Category")
	if err != nil {
		return in, err
	}
	if category != nil {
		in.Category = *category
	}
	if in.Parent, err = formID(r, "subcategory", "Subcategory"); err != nil {
		return in, err
	}
	return in, in.Validate()
}

func soundtrackInput(r *http.Request) (models.SoundtrackInput, error) {
	if err := parseForm(r); err != nil {
		return models.SoundtrackInput{}, err
	}
	in := models.SoundtrackInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		URL:         strings.TrimSpace(r.FormValue("url")),
	}

	category, err := formID(r, "category", "Category")
	if err != nil {
		return in, err
	}
	if category != nil {
		in.Category = *category
	}
	if in.Subcategory, err = formID(r, "subcategory", "Subcategory"); err != nil {
		return in, err
	}
	return in, in.Validate()
}

// ListCategories handles GET /categories.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetCategory handles GET /category/{id} with top-level subcategories and direct soundtracks.
func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.categories.Get(ctx, pathID(r))
	if err != nil {
		h.writeError(w, r, err, "Category")
		return
	}

	detail := models.CategoryDetail{Category: *c}
	if detail.Subcategories, err = h.subcategories.ListTopLevel(ctx, c.ID); err != nil {
		h.writeError(w, r, err, "Category")
		return
	}
	if detail.Soundtracks, err = h.soundtracks.ListByCategory(ctx, c.ID); err != nil {
		h.writeError(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CreateCategory handles POST /create_category.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	in, err := categoryInput(r)
	if err != nil {
		h.writeError(w, r, err, "Category")
		return
	}

	thumbnail, err := h.saveThumbnail(r)
	if err != nil {
		h.writeError(w, r, err, "Category")
		return
	}

	c := &models.Category{Name: in.Name, Description: in.Description, Thumbnail: thumbnail}
	if err := h.categories.Create(r.Context(), c); err != nil {
		h.discard(thumbnail)
		h.writeError(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory handles PUT /category/{id}.
func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	in, err := categoryInput(r)
	if err != nil {
		h.writeError(w, r, err, "Category")
		return
	}

	thumbnail, err := h.saveThumbnail(r)
	if err != nil {
		h.writeError(w, r, err, "Category")
		return
	}

	c := &models.Category{ID: pathID(r), Name: in.Name, Description: in.Description, Thumbnail: thumbnail}
	if err := h.categories.Update(r.Context(), c); err != nil {
		h.discard(thumbnail)
		h.writeError(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CategoryDeleteImpact handles GET /delete_category/{id}.
func (h *Handlers) CategoryDeleteImpact(w http.ResponseWriter, r *http.Request) {
	impact, err := h.categories.DeleteImpact(r.Context(), pathID(r))
	if err != nil {
		h.writeError(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, impact)
}

// DeleteCategory handles DELETE /delete_category/{id}.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), pathID(r)); err != nil {
		h.writeError(w, r, err, "Category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSubcategory handles GET /subcategory/{id} with immediate children and direct soundtracks.
func (h *Handlers) GetSubcategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := h.subcategories.Get(ctx, pathID(r))
	if err != nil {
		h.writeError(w, r, err, "Subcategory")
		return
	}

	if s.Subcategories, err = h.subcategories.ListChildren(ctx, s.ID); err != nil {
		h.writeError(w, r, err, "Subcategory")
		return
	}
	if s.Soundtracks, err = h.soundtracks.ListBySubcategory(ctx, s.ID); err != nil {
		h.writeError(w, r, err, "Subcategory")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateSubcategory handles POST /create_subcategory.
func (h *Handlers) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	in, err := subcategoryInput(r)
	if err != nil {
		h.writeError(w, r, err, "Subcategory")
		return
	}

	thumbnail, err := h.saveThumbnail(r)
	if err != nil {
		h.writeError(w, r, err, "Subcategory")
		return
	}

	s := &models.Subcategory{
		Name: in.Name, Description: in.Description, Category: in.Category, Parent: in.Parent, Thumbnail: thumbnail,
	}
	ctx := r.Context()
	if err := h.subcategories.Create(ctx, s); err != nil {
		h.discard(thumbnail)
		h.writeError(w, r, err, "Subcategory")
		return
	}

	created, err := h.subcategories.Get(ctx, s.ID)
	if err != nil {
		h.writeError(w, r, err, "Subcategory")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateSubcategory handles PUT /subcategory/{id}.
func (h *Handlers) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	in, err := subcategoryInput(r)
	if err != nil {
		h.writeError(w, r, err, "Subcategory")
		return
	}

	thumbnail, err := h.saveThumbnail(r)
	if err != nil {
		h.writeError(w, r, err, "Subcategory")
		return
	}

	s := &models.Subcategory{
		ID: pathID(r), Name: in.Name, Description: in.Description, Category: in.Category, Parent: in.Parent, Thumbnail: thumbnail,
	}
	if err := h.subcategories.Update(r.Context(), s); err != nil {
		h.discard(thumbnail)
		h.writeError(w, r, err, "Subcategory")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SubcategoryDeleteImpact handles GET /delete_subcategory/{id}.
func (h *Handlers) SubcategoryDeleteImpact(w http.ResponseWriter, r *http.Request) {
	impact, err := h.subcategories.DeleteImpact(r.Context(), pathID(r))
	if err != nil {
		h.writeError(w, r, err, "Subcategory")
		return
	}
	writeJSON(w, http.StatusOK, impact)
}

// DeleteSubcategory handles DELETE /delete_subcategory/{id}.
func (h *Handlers) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	if err := h.subcategories.Delete(r.Context(), pathID(r)); err != nil {
		h.writeError(w, r, err, "Subcategory")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSoundtrack handles POST /create_soundtrack.
func (h *Handlers) CreateSoundtrack(w http.ResponseWriter, r *http.Request) {
	in, err := soundtrackInput(r)
	if err != nil {
		h.writeError(w, r, err, "Soundtrack")
		return
	}

	thumbnail, err := h.saveThumbnail(r)
	if err != nil {
		h.writeError(w, r, err, "Soundtrack")
		return
	}

	st := &models.Soundtrack{
		Title: in.Title, Description: in.Description, URL: in.URL,
		Category: in.Category, Subcategory: in.Subcategory, Thumbnail: thumbnail,
	}
	if err := h.soundtracks.Create(r.Context(), st); err != nil {
		h.discard(thumbnail)
		h.writeError(w, r, err, "Soundtrack")
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// UpdateSoundtrack handles PUT /soundtrack/{id}.
func (h *Handlers) UpdateSoundtrack(w http.ResponseWriter, r *http.Request) {
	in, err := soundtrackInput(r)
	if err != nil {
		h.writeError(w, r, err, "Soundtrack")
		return
	}

	thumbnail, err := h.saveThumbnail(r)
	if err != nil {
		h.writeError(w, r, err, "Soundtrack")
		return
	}

	st := &models.Soundtrack{
		ID: pathID(r), Title: in.Title, Description: in.Description, URL: in.URL,
		Category: in.Category, Subcategory: in.Subcategory, Thumbnail: thumbnail,
	}
	if err := h.soundtracks.Update(r.Context(), st); err != nil {
		h.discard(thumbnail)
		h.writeError(w, r, err, "Soundtrack")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// DeleteSoundtrack handles DELETE /delete_soundtrack/{id}.
func (h *Handlers) DeleteSoundtrack(w http.ResponseWriter, r *http.Request) {
	if err := h.soundtracks.Delete(r.Context(), pathID(r)); err != nil {
		h.writeError(w, r, err, "Soundtrack")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
