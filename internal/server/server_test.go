package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/services"
	"github.com/desertthunder/downbeats/internal/shared"
	tu "github.com/desertthunder/downbeats/internal/testing"
)

type harness struct {
	ts       *httptest.Server
	client   *services.DownbeatsService
	mediaDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, shared.RunMigrations(db))
	t.Cleanup(func() { db.Close() })

	cfg := shared.DefaultConfig()
	cfg.Server.MediaDir = t.TempDir()

	srv := New(cfg, db, shared.NewLogger(io.Discard))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	api := services.NewAPIService(ts.URL+"/api", ts.Client())
	return &harness{ts: ts, client: services.NewDownbeatsService(api, ts.URL), mediaDir: cfg.Server.MediaDir}
}

func (h *harness) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := h.client.CreateCategory(context.Background(), models.CategoryInput{Name: name, Description: name + " music"})
	require.NoError(t, err)
	return c
}

func (h *harness) subcategory(t *testing.T, name string, category int64, parent *int64) *models.Subcategory {
	t.Helper()
	s, err := h.client.CreateSubcategory(context.Background(), models.SubcategoryInput{
		Name: name, Description: name + " music", Category: category, Parent: parent,
	})
	require.NoError(t, err)
	return s
}

func (h *harness) soundtrack(t *testing.T, title string, category int64, sub *int64) *models.Soundtrack {
	t.Helper()
	st, err := h.client.CreateSoundtrack(context.Background(), models.SoundtrackInput{
		Title: title, Description: "d", Category: category, Subcategory: sub, URL: "https://youtube.com/watch?v=" + title,
	})
	require.NoError(t, err)
	return st
}

func TestCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("Create Then List", func(t *testing.T) {
		h := newHarness(t)

		created, err := h.client.CreateCategory(ctx, models.CategoryInput{Name: "Combat", Description: "Battle music"})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Nil(t, created.Thumbnail)

		categories, err := h.client.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.Category{{ID: created.ID, Name: "Combat", Description: "Battle music"}}, categories)
	})

	t.Run("Empty List", func(t *testing.T) {
		h := newHarness(t)

		categories, err := h.client.ListCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, categories)
		assert.NotNil(t, categories)
	})

	t.Run("Detail Scoping", func(t *testing.T) {
		h := newHarness(t)
		c := h.category(t, "Combat")
		other := h.category(t, "Tavern")
		boss := h.subcategory(t, "Boss", c.ID, nil)
		h.subcategory(t, "Phase Two", c.ID, &boss.ID)
		h.subcategory(t, "Bard", other.ID, nil)
		h.soundtrack(t, "direct", c.ID, nil)
		h.soundtrack(t, "nested", c.ID, &boss.ID)

		detail, err := h.client.GetCategory(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Combat", detail.Name)
		require.Len(t, detail.Subcategories, 1)
		assert.Equal(t, "Boss", detail.Subcategories[0].Name)
		assert.Equal(t, c.ID, detail.Subcategories[0].Category)
		require.Len(t, detail.Soundtracks, 1)
		assert.Equal(t, "direct", detail.Soundtracks[0].Title)
	})

	t.Run("Missing Category Uses Server Message", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.client.GetCategory(ctx, 999)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)

		var reqErr *services.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
		assert.Equal(t, "Category not found", reqErr.Message)
	})

	t.Run("Validation Message Reaches Client", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.client.CreateCategory(ctx, models.CategoryInput{Name: "  ", Description: "d"})
		var reqErr *services.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
		assert.Equal(t, "Name is required", reqErr.Message)
	})

	t.Run("Thumbnail Upload And Preserve", func(t *testing.T) {
		h := newHarness(t)

		created, err := h.client.CreateCategory(ctx, models.CategoryInput{
			Name:        "Combat",
			Description: "Battle music",
			Thumbnail:   models.NewUpload("combat.png", bytes.NewReader(tu.PNG(t, 16, 8))),
		})
		require.NoError(t, err)
		require.NotNil(t, created.Thumbnail)
		assert.True(t, strings.HasPrefix(*created.Thumbnail, "/media/thumbnails/"))
		assert.True(t, strings.HasSuffix(*created.Thumbnail, ".png"))

		resp, err := http.Get(h.client.MediaURL(created.Thumbnail))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		updated, err := h.client.UpdateCategory(ctx, created.ID, models.CategoryInput{Name: "Battle", Description: "Updated"})
		require.NoError(t, err)
		assert.Equal(t, "Battle", updated.Name)
		require.NotNil(t, updated.Thumbnail)
		assert.Equal(t, *created.Thumbnail, *updated.Thumbnail)
	})

	t.Run("Rejects Non-Image Thumbnail", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.client.CreateCategory(ctx, models.CategoryInput{
			Name: "Combat", Description: "d", Thumbnail: models.NewUpload("notes.txt", strings.NewReader("hello")),
		})
		var reqErr *services.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)

		entries, _ := os.ReadDir(filepath.Join(h.mediaDir, thumbnailDir))
		assert.Empty(t, entries)
	})

	t.Run("Delete Impact And Cascade", func(t *testing.T) {
		h := newHarness(t)
		c := h.category(t, "Combat")
		boss := h.subcategory(t, "Boss", c.ID, nil)
		phase := h.subcategory(t, "Phase Two", c.ID, &boss.ID)
		h.soundtrack(t, "a", c.ID, nil)
		h.soundtrack(t, "b", c.ID, &phase.ID)

		first, err := h.client.CategoryDeleteImpact(ctx, c.ID)
		require.NoError(t, err)
		second, err := h.client.CategoryDeleteImpact(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, models.DeleteImpact{SubcategoriesCount: 2, SoundtracksCount: 2}, *first)

		require.NoError(t, h.client.DeleteCategory(ctx, c.ID))

		_, err = h.client.GetCategory(ctx, c.ID)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		_, err = h.client.GetSubcategory(ctx, phase.ID)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("Delete Impact Of Missing Category", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.client.CategoryDeleteImpact(ctx, 999)
		var reqErr *services.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	})
}

func TestSubcategories(t *testing.T) {
	ctx := context.Background()

	t.Run("Nested Appears Under Parent", func(t *testing.T) {
		h := newHarness(t)
		c := h.category(t, "Combat")
		boss := h.subcategory(t, "Boss", c.ID, nil)
		assert.Equal(t, "Combat", boss.CategoryName)
		assert.True(t, boss.IsTopLevel())

		phase := h.subcategory(t, "Phase Two", c.ID, &boss.ID)
		assert.Equal(t, "Boss", phase.ParentName)

		detail, err := h.client.GetCategory(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, detail.Subcategories, 1)

		got, err := h.client.GetSubcategory(ctx, detail.Subcategories[0].ID)
		require.NoError(t, err)
		require.Len(t, got.Subcategories, 1)
		assert.Equal(t, phase.ID, got.Subcategories[0].ID)
	})

	t.Run("Rejects Parent From Another Category", func(t *testing.T) {
		h := newHarness(t)
		combat := h.category(t, "Combat")
		tavern := h.category(t, "Tavern")
		boss := h.subcategory(t, "Boss", combat.ID, nil)

		_, err := h.client.CreateSubcategory(ctx, models.SubcategoryInput{
			Name: "Bard", Description: "d", Category: tavern.ID, Parent: &boss.ID,
		})
		var reqErr *services.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
		assert.Contains(t, reqErr.Message, "does not belong")
	})

	t.Run("Update And Impact", func(t *testing.T) {
		h := newHarness(t)
		c := h.category(t, "Combat")
		boss := h.subcategory(t, "Boss", c.ID, nil)
		phase := h.subcategory(t, "Phase Two", c.ID, &boss.ID)
		h.soundtrack(t, "a", c.ID, &phase.ID)

		updated, err := h.client.UpdateSubcategory(ctx, boss.ID, models.SubcategoryInput{
			Name: "Big Boss", Description: "d", Category: c.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Big Boss", updated.Name)

		impact, err := h.client.SubcategoryDeleteImpact(ctx, boss.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DeleteImpact{SubcategoriesCount: 1, SoundtracksCount: 1}, *impact)

		require.NoError(t, h.client.DeleteSubcategory(ctx, boss.ID))
		_, err = h.client.GetSubcategory(ctx, phase.ID)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})
}

func TestSoundtracks(t *testing.T) {
	ctx := context.Background()

	t.Run("Create Update Delete", func(t *testing.T) {
		h := newHarness(t)
		c := h.category(t, "Combat")
		boss := h.subcategory(t, "Boss", c.ID, nil)

		st := h.soundtrack(t, "a", c.ID, &boss.ID)
		require.NotNil(t, st.Subcategory)
		assert.Equal(t, boss.ID, *st.Subcategory)

		updated, err := h.client.UpdateSoundtrack(ctx, st.ID, models.SoundtrackInput{
			Title: "b", Description: "e", Category: c.ID, URL: "https://example.com/b",
		})
		require.NoError(t, err)
		assert.Equal(t, "b", updated.Title)
		assert.Nil(t, updated.Subcategory)

		detail, err := h.client.GetCategory(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, detail.Soundtracks, 1)
		assert.Equal(t, "https://example.com/b", detail.Soundtracks[0].URL)

		require.NoError(t, h.client.DeleteSoundtrack(ctx, st.ID))
		err = h.client.DeleteSoundtrack(ctx, st.ID)
		var reqErr *services.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	})

	t.Run("Rejects Relative URL", func(t *testing.T) {
		h := newHarness(t)
		c := h.category(t, "Combat")

		_, err := h.client.CreateSoundtrack(ctx, models.SoundtrackInput{
			Title: "a", Description: "d", Category: c.ID, URL: "watch?v=1",
		})
		var reqErr *services.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
	})
}

func TestRouter(t *testing.T) {
	t.Run("Unknown Route Is JSON 404", func(t *testing.T) {
		h := newHarness(t)

		resp, err := http.Get(h.ts.URL + "/api/downbeats/nope")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"message":"Not found"}`, string(body))
	})

	t.Run("Trailing Slash Is Accepted", func(t *testing.T) {
		h := newHarness(t)

		resp, err := http.Get(h.ts.URL + "/api/downbeats/categories/")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Wrong Method", func(t *testing.T) {
		h := newHarness(t)

		req, _ := http.NewRequest(http.MethodPatch, h.ts.URL+"/api/downbeats/categories", nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("ResourcePrefix", func(t *testing.T) {
		assert.Equal(t, "/api/downbeats", ResourcePrefix("/api/"))
		assert.Equal(t, "/downbeats", ResourcePrefix(""))
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))

	out := buf.String()
	assert.Contains(t, out, "http request")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "path=/categories")
}

func TestListenAndServe(t *testing.T) {
	t.Run("Stops On Cancel", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		require.NoError(t, err)
		defer db.Close()

		cfg := shared.DefaultConfig()
		cfg.Server.Host = "127.0.0.1"
		cfg.Server.Port = 0
		cfg.Server.MediaDir = t.TempDir()

		srv := New(cfg, db, shared.NewLogger(io.Discard))
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- srv.ListenAndServe(ctx) }()
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("Reports Listen Failure", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		db, err := shared.NewDatabase(":memory:")
		require.NoError(t, err)
		defer db.Close()

		cfg := shared.DefaultConfig()
		cfg.Server.Host = "127.0.0.1"
		cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port

		err = New(cfg, db, shared.NewLogger(io.Discard)).ListenAndServe(context.Background())
		assert.True(t, errors.Is(err, shared.ErrServiceUnavailable))
	})
}
