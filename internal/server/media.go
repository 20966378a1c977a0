package server

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/shared"
)

const (
	thumbnailDir     = "thumbnails"
	maxThumbWidth    = 400
	maxImagePixels   = 40_000_000
	maxUploadBytes   = 10 << 20
	thumbJPEGQuality = 85
)

var extensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

// ThumbnailStore writes uploaded thumbnails below <dir>/thumbnails.
type ThumbnailStore struct {
	dir string
}

// NewThumbnailStore creates a store rooted at the media directory dir.
func NewThumbnailStore(dir string) *ThumbnailStore {
	return &ThumbnailStore{dir: dir}
}

// Save validates that src is a PNG, JPEG, GIF or WebP image and stores it under a new name.
// Images wider than 400px are scaled down; WebP sources are re-encoded as PNG when scaled.
//
// Returns the public path, e.g. /media/thumbnails/<uuid>.png.
func (s *ThumbnailStore) Save(src io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read thumbnail: %w", err)
	}
	if len(data) > maxUploadBytes {
		return "", &models.ValidationError{Field: "thumbnail", Message: "Thumbnail must be smaller than 10MB"}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", &models.ValidationError{Field: "thumbnail", Message: "Thumbnail must be a PNG, JPEG, GIF or WebP image"}
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return "", &models.ValidationError{
			Field:   "thumbnail",
			Message: fmt.Sprintf("Thumbnail is too large: %dx%d", cfg.Width, cfg.Height),
		}
	}

	ext := extensions[format]
	if cfg.Width > maxThumbWidth {
		data, ext, err = scale(data, format)
		if err != nil {
			return "", err
		}
	}

	dir := filepath.Join(s.dir, thumbnailDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	name := shared.GenerateID() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write thumbnail: %w", err)
	}

	return path.Join("/media", thumbnailDir, name), nil
}

// Remove deletes a thumbnail previously returned by [ThumbnailStore.Save]. Missing files are ignored.
func (s *ThumbnailStore) Remove(public string) error {
	name := path.Base(public)
	err := os.Remove(filepath.Join(s.dir, thumbnailDir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove thumbnail: %w", err)
	}
	return nil
}

// scale resizes the image to maxThumbWidth preserving aspect ratio.
func scale(data []byte, format string) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &models.ValidationError{Field: "thumbnail", Message: "Thumbnail could not be decoded"}
	}

	bounds := img.Bounds()
	height := max(1, bounds.Dy()*maxThumbWidth/bounds.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, maxThumbWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbJPEGQuality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
		}
		return buf.Bytes(), ".jpg", nil
	}

	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), ".png", nil
}
