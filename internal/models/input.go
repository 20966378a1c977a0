package models

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// Upload is a thumbnail file attached to a write payload.
type Upload struct {
	Filename string
	Content  io.Reader
}

// NewUpload wraps r as an [Upload] named filename.
func NewUpload(filename string, r io.Reader) *Upload {
	return &Upload{Filename: filename, Content: r}
}

// Field is a single text part of a multipart write payload.
type Field struct {
	Name  string
	Value string
}

// ValidationError reports the first invalid field of a write payload.
// The message is suitable for display to the user as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func required(field, label, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: label + " is required"}
	}
	return nil
}

// CategoryInput is the create/update payload for a [Category].
type CategoryInput struct {
	Name        string
	Description string
	Thumbnail   *Upload
}

// Fields returns the text parts in wire order.
func (in CategoryInput) Fields() []Field {
	return []Field{
		{Name: "name", Value: in.Name},
		{Name: "description", Value: in.Description},
	}
}

// Upload returns the optional thumbnail.
func (in CategoryInput) Upload() *Upload { return in.Thumbnail }

// Validate checks required fields.
func (in CategoryInput) Validate() error {
	if err := required("name", "Name", in.Name); err != nil {
		return err
	}
	return required("description", "Description", in.Description)
}

// SubcategoryInput is the create/update payload for a [Subcategory].
//
// Parent is nil for a top-level subcategory.
type SubcategoryInput struct {
	Name        string
	Description string
	Category    int64
	Parent      *int64
	Thumbnail   *Upload
}

// Fields returns the text parts in wire order. The parent is omitted when unset.
func (in SubcategoryInput) Fields() []Field {
	fields := []Field{
		{Name: "name", Value: in.Name},
		{Name: "description", Value: in.Description},
		{Name: "category", Value: strconv.FormatInt(in.Category, 10)},
	}
	if in.Parent != nil {
		fields = append(fields, Field{Name: "subcategory", Value: strconv.FormatInt(*in.Parent, 10)})
	}
	return fields
}

func (in SubcategoryInput) Upload() *Upload { return in.Thumbnail }

func (in SubcategoryInput) Validate() error {
	if err := required("name", "Name", in.Name); err != nil {
		return err
	}
	if err := required("description", "Description", in.Description); err != nil {
		return err
	}
	if in.Category <= 0 {
		return &ValidationError{Field: "category", Message: "Category is required"}
	}
	if in.Parent != nil && *in.Parent <= 0 {
		return &ValidationError{Field: "subcategory", Message: "Parent subcategory is invalid"}
	}
	return nil
}

// SoundtrackInput is the create/update payload for a [Soundtrack].
type SoundtrackInput struct {
	Title       string
	Description string
	Category    int64
	Subcategory *int64
	URL         string
	Thumbnail   *Upload
}

// Fields returns the text parts in wire order. The subcategory is omitted when unset.
func (in SoundtrackInput) Fields() []Field {
	fields := []Field{
		{Name: "title", Value: in.Title},
		{Name: "description", Value: in.Description},
		{Name: "category", Value: strconv.FormatInt(in.Category, 10)},
	}
	if in.Subcategory != nil {
		fields = append(fields, Field{Name: "subcategory", Value: strconv.FormatInt(*in.Subcategory, 10)})
	}
	return append(fields, Field{Name: "url", Value: in.URL})
}

func (in SoundtrackInput) Upload() *Upload { return in.Thumbnail }

func (in SoundtrackInput) Validate() error {
	if err := required("title", "Title", in.Title); err != nil {
		return err
	}
	if err := required("description", "Description", in.Description); err != nil {
		return err
	}
	if in.Category <= 0 {
		return &ValidationError{Field: "category", Message: "Category is required"}
	}
	if in.Subcategory != nil && *in.Subcategory <= 0 {
		return &ValidationError{Field: "subcategory", Message: "Subcategory is invalid"}
	}
	if err := required("url", "URL", in.URL); err != nil {
		return err
	}
	u, err := url.Parse(in.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("URL %q must be an absolute http(s) link", in.URL)}
	}
	return nil
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
