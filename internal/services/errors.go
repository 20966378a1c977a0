package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/downbeats/internal/shared"
)

// Fallback messages used when the API does not supply one.
const (
	MsgListCategories          = "Failed to fetch categories"
	MsgGetCategory             = "Failed to fetch category with id %d"
	MsgCreateCategory          = "Failed to create category"
	MsgUpdateCategory          = "Failed to update category"
	MsgCategoryDeleteImpact    = "Failed to get category information"
	MsgDeleteCategory          = "Failed to delete category"
	MsgGetSubcategory          = "Failed to fetch subcategory"
	MsgCreateSubcategory       = "Failed to create subcategory"
	MsgUpdateSubcategory       = "Failed to update subcategory"
	MsgSubcategoryDeleteImpact = "Failed to get subcategory information"
	MsgDeleteSubcategory       = "Failed to delete subcategory"
	MsgCreateSoundtrack        = "Failed to create soundtrack"
	MsgUpdateSoundtrack        = "Failed to update soundtrack"
	MsgDeleteSoundtrack        = "Failed to delete soundtrack"
)

// RequestError is returned by every failed [DownbeatsService] call.
//
// Message is what the user sees. StatusCode is 0 when the request never got a response and is kept for logging.
type RequestError struct {
	Op         string
	Message    string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string { return e.Message }

// Unwrap returns the transport or decode failure, if any.
func (e *RequestError) Unwrap() error { return e.Err }

// Is matches [shared.ErrAPIRequest].
func (e *RequestError) Is(target error) bool { return target == shared.ErrAPIRequest }

// LogValues returns key-value pairs for structured logging.
func (e *RequestError) LogValues() []any {
	kv := []any{"op", e.Op, "message", e.Message}
	if e.StatusCode != 0 {
		kv = append(kv, "status", e.StatusCode)
	}
	if e.Err != nil {
		kv = append(kv, "cause", e.Err)
	}
	return kv
}

type errorBody struct {
	Message string `json:"message"`
}

// resolveMessage returns the "message" field of a JSON error body, or fallback when the body has none.
func resolveMessage(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return fallback
	}
	if msg := strings.TrimSpace(eb.Message); msg != "" {
		return msg
	}
	return fallback
}

func getCategoryMessage(id int64) string {
	return fmt.Sprintf(MsgGetCategory, id)
}
