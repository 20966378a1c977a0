package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/shared"
	tu "github.com/desertthunder/downbeats/internal/testing"
)

func ptr[T any](v T) *T { return &v }

// newTestService starts a server that answers every request with status and body,
// recording the method and path it saw.
func newTestService(t *testing.T, status int, body string) (*DownbeatsService, *[]string) {
	t.Helper()
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return NewDownbeatsService(NewAPIService(server.URL+"/api", nil), server.URL), &seen
}

type operation struct {
	name     string
	method   string
	path     string
	fallback string
	body     string
	call     func(ctx context.Context, d *DownbeatsService) error
}

var catInput = models.CategoryInput{Name: "Combat", Description: "Battle music"}
var subInput = models.SubcategoryInput{Name: "Boss", Description: "Boss fights", Category: 3}
var trackInput = models.SoundtrackInput{Title: "Clash", Description: "d", Category: 3, URL: "https://example.com/clash"}

var operations = []operation{
	{
		name: "ListCategories", method: http.MethodGet, path: "/api/downbeats/categories",
		fallback: "Failed to fetch categories", body: `[]`,
		call: func(ctx context.Context, d *DownbeatsService) error { _, err := d.ListCategories(ctx); return err },
	},
	{
		name: "GetCategory", method: http.MethodGet, path: "/api/downbeats/category/7",
		fallback: "Failed to fetch category with id 7", body: `{"id":7}`,
		call: func(ctx context.Context, d *DownbeatsService) error { _, err := d.GetCategory(ctx, 7); return err },
	},
	{
		name: "CreateCategory", method: http.MethodPost, path: "/api/downbeats/create_category",
		fallback: "Failed to create category", body: `{"id":1}`,
		call: func(ctx context.Context, d *DownbeatsService) error { _, err := d.CreateCategory(ctx, catInput); return err },
	},
	{
		name: "UpdateCategory", method: http.MethodPut, path: "/api/downbeats/category/7/",
		fallback: "Failed to update category", body: `{"id":7}`,
		call: func(ctx context.Context, d *DownbeatsService) error {
			_, err := d.UpdateCategory(ctx, 7, catInput)
			return err
		},
	},
	{
		name: "CategoryDeleteImpact", method: http.MethodGet, path: "/api/downbeats/delete_category/7/",
		fallback: "Failed to get category information", body: `{"subcategories_count":0,"soundtracks_count":0}`,
		call: func(ctx context.Context, d *DownbeatsService) error { _, err := d.CategoryDeleteImpact(ctx, 7); return err },
	},
	{
		name: "DeleteCategory", method: http.MethodDelete, path: "/api/downbeats/delete_category/7/",
		fallback: "Failed to delete category", body: ``,
		call: func(ctx context.Context, d *DownbeatsService) error { return d.DeleteCategory(ctx, 7) },
	},
	{
		name: "GetSubcategory", method: http.MethodGet, path: "/api/downbeats/subcategory/7",
		fallback: "Failed to fetch subcategory", body: `{"id":7}`,
		call: func(ctx context.Context, d *DownbeatsService) error { _, err := d.GetSubcategory(ctx, 7); return err },
	},
	{
		name: "CreateSubcategory", method: http.MethodPost, path: "/api/downbeats/create_subcategory",
		fallback: "Failed to create subcategory", body: `{"id":1}`,
		call: func(ctx context.Context, d *DownbeatsService) error { _, err := d.CreateSubcategory(ctx, subInput); return err },
	},
	{
		name: "UpdateSubcategory", method: http.MethodPut, path: "/api/downbeats/subcategory/7/",
		fallback: "Failed to update subcategory", body: `{"id":7}`,
		call: func(ctx context.Context, d *DownbeatsService) error {
			_, err := d.UpdateSubcategory(ctx, 7, subInput)
			return err
		},
	},
	{
		name: "SubcategoryDeleteImpact", method: http.MethodGet, path: "/api/downbeats/delete_subcategory/7/",
		fallback: "Failed to get subcategory information", body: `{"subcategories_count":0,"soundtracks_count":0}`,
		call: func(ctx context.Context, d *DownbeatsService) error { _, err := d.SubcategoryDeleteImpact(ctx, 7); return err },
	},
	{
		name: "DeleteSubcategory", method: http.MethodDelete, path: "/api/downbeats/delete_subcategory/7/",
		fallback: "Failed to delete subcategory", body: ``,
		call: func(ctx context.Context, d *DownbeatsService) error { return d.DeleteSubcategory(ctx, 7) },
	},
	{
		name: "CreateSoundtrack", method: http.MethodPost, path: "/api/downbeats/create_soundtrack",
		fallback: "Failed to create soundtrack", body: `{"id":1}`,
		call: func(ctx context.Context, d *DownbeatsService) error { _, err := d.CreateSoundtrack(ctx, trackInput); return err },
	},
	{
		name: "UpdateSoundtrack", method: http.MethodPut, path: "/api/downbeats/soundtrack/7/",
		fallback: "Failed to update soundtrack", body: `{"id":7}`,
		call: func(ctx context.Context, d *DownbeatsService) error {
			_, err := d.UpdateSoundtrack(ctx, 7, trackInput)
			return err
		},
	},
	{
		name: "DeleteSoundtrack", method: http.MethodDelete, path: "/api/downbeats/delete_soundtrack/7/",
		fallback: "Failed to delete soundtrack", body: ``,
		call: func(ctx context.Context, d *DownbeatsService) error { return d.DeleteSoundtrack(ctx, 7) },
	},
}

func TestDownbeatsService(t *testing.T) {
	ctx := context.Background()

	t.Run("Endpoints", func(t *testing.T) {
		for _, op := range operations {
			t.Run(op.name, func(t *testing.T) {
				d, seen := newTestService(t, http.StatusOK, op.body)

				if err := op.call(ctx, d); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(*seen) != 1 || (*seen)[0] != op.method+" "+op.path {
					t.Errorf("expected %s %s, got %v", op.method, op.path, *seen)
				}
			})
		}
	})

	t.Run("Server Message Wins", func(t *testing.T) {
		for _, op := range operations {
			t.Run(op.name, func(t *testing.T) {
				d, _ := newTestService(t, http.StatusBadRequest, `{"message":"Name is required"}`)

				err := op.call(ctx, d)
				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("expected RequestError, got %T %v", err, err)
				}
				if reqErr.Message != "Name is required" {
					t.Errorf("expected server message, got %q", reqErr.Message)
				}
				if reqErr.StatusCode != http.StatusBadRequest {
					t.Errorf("expected status 400, got %d", reqErr.StatusCode)
				}
			})
		}
	})

	t.Run("Fallback Message", func(t *testing.T) {
		bodies := map[string]string{
			"empty body":      ``,
			"html body":       `<h1>Server Error</h1>`,
			"no message":      `{"detail":"boom"}`,
			"blank message":   `{"message":"  "}`,
			"non-string body": `{"message":42}`,
		}
		for label, body := range bodies {
			for _, op := range operations {
				t.Run(label+"/"+op.name, func(t *testing.T) {
					d, _ := newTestService(t, http.StatusInternalServerError, body)

					err := op.call(ctx, d)
					if err == nil || err.Error() != op.fallback {
						t.Errorf("expected %q, got %v", op.fallback, err)
					}
				})
			}
		}
	})

	t.Run("Network Failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		d := NewDownbeatsService(NewAPIService("http://example.com/api", client), "")

		for _, op := range operations {
			t.Run(op.name, func(t *testing.T) {
				err := op.call(ctx, d)

				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("expected RequestError, got %v", err)
				}
				if reqErr.Message != op.fallback {
					t.Errorf("expected fallback %q, got %q", op.fallback, reqErr.Message)
				}
				if reqErr.StatusCode != 0 {
					t.Errorf("expected no status, got %d", reqErr.StatusCode)
				}
				if !errors.Is(err, shared.ErrAPIRequest) {
					t.Error("expected error to match shared.ErrAPIRequest")
				}
				if reqErr.Unwrap() == nil || !strings.Contains(reqErr.Unwrap().Error(), "connection refused") {
					t.Errorf("expected wrapped cause, got %v", reqErr.Unwrap())
				}
			})
		}
	})

	t.Run("Undecodable Success Body", func(t *testing.T) {
		d, _ := newTestService(t, http.StatusOK, `not json`)

		_, err := d.ListCategories(ctx)
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("expected RequestError, got %v", err)
		}
		if reqErr.Message != "Failed to fetch categories" {
			t.Errorf("expected fallback, got %q", reqErr.Message)
		}
		if !strings.Contains(reqErr.Unwrap().Error(), "failed to decode response") {
			t.Errorf("expected decode cause, got %v", reqErr.Unwrap())
		}
	})

	t.Run("ListCategories", func(t *testing.T) {
		t.Run("Decodes Categories", func(t *testing.T) {
			d, _ := newTestService(t, http.StatusOK,
				`[{"id":1,"name":"Combat","description":"Battle music","thumbnail":null},{"id":2,"name":"Tavern","description":"Inn songs","thumbnail":"/media/thumbnails/t.png"}]`)

			categories, err := d.ListCategories(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(categories) != 2 {
				t.Fatalf("expected 2 categories, got %d", len(categories))
			}
			if categories[0].Thumbnail != nil {
				t.Error("expected nil thumbnail for first category")
			}
			if categories[1].Thumbnail == nil || *categories[1].Thumbnail != "/media/thumbnails/t.png" {
				t.Errorf("unexpected thumbnail %v", categories[1].Thumbnail)
			}
		})

		t.Run("Null Body Is Empty List", func(t *testing.T) {
			d, _ := newTestService(t, http.StatusOK, `null`)

			categories, err := d.ListCategories(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if categories == nil || len(categories) != 0 {
				t.Errorf("expected empty non-nil list, got %v", categories)
			}
		})
	})

	t.Run("GetCategory Decodes One Level", func(t *testing.T) {
		d, _ := newTestService(t, http.StatusOK, `{
			"id": 3, "name": "Ambient", "description": "Background", "thumbnail": null,
			"subcategories": [{"id": 4, "name": "Forest", "description": "Trees", "category": 3, "category_name": "Ambient", "thumbnail": null, "subcategory": null}],
			"soundtracks": [{"id": 9, "title": "Birds", "description": "Chirps", "url": "https://example.com/birds", "thumbnail": null, "category": 3}]
		}`)

		detail, err := d.GetCategory(ctx, 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if detail.ID != 3 || len(detail.Subcategories) != 1 || len(detail.Soundtracks) != 1 {
			t.Errorf("unexpected detail %+v", detail)
		}
		if detail.Subcategories[0].CategoryName != "Ambient" {
			t.Errorf("expected denormalized category name, got %q", detail.Subcategories[0].CategoryName)
		}
	})

	t.Run("GetSubcategory Decodes Parent", func(t *testing.T) {
		d, _ := newTestService(t, http.StatusOK,
			`{"id":5,"name":"Deep","description":"d","category":3,"category_name":"Ambient","thumbnail":null,"subcategory":4,"parent_name":"Forest","subcategories":[],"soundtracks":[]}`)

		sub, err := d.GetSubcategory(ctx, 5)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sub.Parent == nil || *sub.Parent != 4 || sub.ParentName != "Forest" {
			t.Errorf("unexpected parent %v %q", sub.Parent, sub.ParentName)
		}
	})

	t.Run("CategoryDeleteImpact Missing Category", func(t *testing.T) {
		d, _ := newTestService(t, http.StatusNotFound, ``)

		_, err := d.CategoryDeleteImpact(ctx, 999)
		if err == nil || err.Error() != "Failed to get category information" {
			t.Errorf("expected fallback message, got %v", err)
		}
	})

	t.Run("MediaURL", func(t *testing.T) {
		d := NewDownbeatsService(nil, "http://localhost:8000/")

		tc := []struct {
			name string
			in   *string
			want string
		}{
			{name: "nil", in: nil, want: ""},
			{name: "empty", in: ptr(""), want: ""},
			{name: "relative", in: ptr("/media/thumbnails/a.png"), want: "http://localhost:8000/media/thumbnails/a.png"},
			{name: "no leading slash", in: ptr("media/a.png"), want: "http://localhost:8000/media/a.png"},
			{name: "absolute", in: ptr("https://cdn.example.com/a.png"), want: "https://cdn.example.com/a.png"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := d.MediaURL(tt.in); got != tt.want {
					t.Errorf("MediaURL() = %q, want %q", got, tt.want)
				}
			})
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		d := NewDownbeatsService(nil, "")
		if d.mediaURL != DefaultBaseURL {
			t.Errorf("expected default media URL, got %s", d.mediaURL)
		}
		if d.api.BaseURL() != DefaultAPIBaseURL+ResourcePath {
			t.Errorf("expected default API URL, got %s", d.api.BaseURL())
		}
	})
}

func TestResolveMessage(t *testing.T) {
	if got := resolveMessage([]byte(`{"message":"Category not found"}`), "fallback"); got != "Category not found" {
		t.Errorf("expected server message, got %q", got)
	}
	if got := resolveMessage(nil, "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestRequestErrorLogValues(t *testing.T) {
	err := &RequestError{Op: "delete_category", Message: "Failed to delete category", StatusCode: 500}
	kv := err.LogValues()
	if len(kv) != 6 {
		t.Errorf("expected op, message and status pairs, got %v", kv)
	}
}
