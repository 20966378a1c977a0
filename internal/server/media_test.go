package server

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/downbeats/internal/models"
	tu "github.com/desertthunder/downbeats/internal/testing"
)

func TestThumbnailStore(t *testing.T) {
	t.Run("Stores Small Image Unchanged", func(t *testing.T) {
		dir := t.TempDir()
		store := NewThumbnailStore(dir)
		data := tu.PNG(t, 32, 16)

		public, err := store.Save(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(public, "/media/thumbnails/") || !strings.HasSuffix(public, ".png") {
			t.Errorf("unexpected public path %s", public)
		}

		stored := tu.MustReadFile(t, filepath.Join(dir, thumbnailDir, filepath.Base(public)))
		if stored != string(data) {
			t.Error("expected small image to be stored as uploaded")
		}
	})

	t.Run("Scales Wide Image", func(t *testing.T) {
		dir := t.TempDir()
		store := NewThumbnailStore(dir)

		public, err := store.Save(bytes.NewReader(tu.PNG(t, 800, 200)))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		f, err := os.Open(filepath.Join(dir, thumbnailDir, filepath.Base(public)))
		if err != nil {
			t.Fatalf("failed to open thumbnail: %v", err)
		}
		defer f.Close()

		cfg, _, err := image.DecodeConfig(f)
		if err != nil {
			t.Fatalf("failed to decode thumbnail: %v", err)
		}
		if cfg.Width != maxThumbWidth || cfg.Height != 100 {
			t.Errorf("expected %dx100, got %dx%d", maxThumbWidth, cfg.Width, cfg.Height)
		}
	})

	t.Run("Rejects Non-Image", func(t *testing.T) {
		store := NewThumbnailStore(t.TempDir())

		_, err := store.Save(strings.NewReader("definitely not an image"))
		var verr *models.ValidationError
		if !errors.As(err, &verr) || verr.Field != "thumbnail" {
			t.Errorf("expected thumbnail validation error, got %v", err)
		}
	})

	t.Run("Read Failure", func(t *testing.T) {
		store := NewThumbnailStore(t.TempDir())

		if _, err := store.Save(&tu.FCloser{}); err == nil || !strings.Contains(err.Error(), "failed to read thumbnail") {
			t.Errorf("expected read error, got %v", err)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		dir := t.TempDir()
		store := NewThumbnailStore(dir)

		public, err := store.Save(bytes.NewReader(tu.PNG(t, 4, 4)))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := store.Remove(public); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, thumbnailDir, filepath.Base(public))); !os.IsNotExist(err) {
			t.Error("expected thumbnail to be removed")
		}
		if err := store.Remove(public); err != nil {
			t.Errorf("expected removing a missing file to succeed, got %v", err)
		}
	})
}
