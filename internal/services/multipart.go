package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/desertthunder/downbeats/internal/models"
)

// ThumbnailField is the multipart file part name for thumbnails.
const ThumbnailField = "thumbnail"

// EncodeForm writes payload as multipart/form-data and returns the body with its content type.
//
// Text fields are written in [models.Payload.Fields] order. The thumbnail part is only written when the payload
// carries an upload.
func EncodeForm(payload models.Payload) (*bytes.Buffer, string, error) {
	if payload == nil {
		return nil, "", fmt.Errorf("failed to encode form: nil payload")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range payload.Fields() {
		if err := w.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", field.Name, err)
		}
	}

	if upload := payload.Upload(); upload != nil && upload.Content != nil {
		name := filepath.Base(upload.Filename)
		if name == "." || name == string(filepath.Separator) {
			name = ThumbnailField
		}

		part, err := w.CreateFormFile(ThumbnailField, name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create thumbnail part: %w", err)
		}
		if _, err := io.Copy(part, upload.Content); err != nil {
			return nil, "", fmt.Errorf("failed to read thumbnail: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
