// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/shared"
)

// MockService is an in-memory test double for services.Service.
//
// Seed Categories, Details and Subcategories before use. Set Err to make every call fail.
// Calls records the operation names in order.
type MockService struct {
	mu sync.Mutex

	Categories         []models.Category
	Details            map[int64]*models.CategoryDetail
	Subcategories      map[int64]*models.Subcategory
	CategoryImpacts    map[int64]models.DeleteImpact
	SubcategoryImpacts map[int64]models.DeleteImpact

	Err     error
	Calls   []string
	Deleted []string

	nextID int64
}

// NewMockService returns an empty MockService with initialized maps.
func NewMockService() *MockService {
	return &MockService{
		Details:            map[int64]*models.CategoryDetail{},
		Subcategories:      map[int64]*models.Subcategory{},
		CategoryImpacts:    map[int64]models.DeleteImpact{},
		SubcategoryImpacts: map[int64]models.DeleteImpact{},
		nextID:             100,
	}
}

func (m *MockService) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, op)
	return m.Err
}

func (m *MockService) id() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID
}

// CallCount returns how many times op was called.
func (m *MockService) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == op {
			n++
		}
	}
	return n
}

func (m *MockService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := m.record("ListCategories"); err != nil {
		return nil, err
	}
	return append([]models.Category{}, m.Categories...), nil
}

func (m *MockService) GetCategory(ctx context.Context, id int64) (*models.CategoryDetail, error) {
	if err := m.record("GetCategory"); err != nil {
		return nil, err
	}
	d, ok := m.Details[id]
	if !ok {
		return nil, fmt.Errorf("%w: category %d", shared.ErrNotFound, id)
	}
	return d, nil
}

func (m *MockService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	if err := m.record("CreateCategory"); err != nil {
		return nil, err
	}
	c := models.Category{ID: m.id(), Name: in.Name, Description: in.Description}
	m.Categories = append(m.Categories, c)
	return &c, nil
}

func (m *MockService) UpdateCategory(ctx context.Context, id int64, in models.CategoryInput) (*models.Category, error) {
	if err := m.record("UpdateCategory"); err != nil {
		return nil, err
	}
	return &models.Category{ID: id, Name: in.Name, Description: in.Description}, nil
}

func (m *MockService) CategoryDeleteImpact(ctx context.Context, id int64) (*models.DeleteImpact, error) {
	if err := m.record("CategoryDeleteImpact"); err != nil {
		return nil, err
	}
	impact := m.CategoryImpacts[id]
	return &impact, nil
}

func (m *MockService) DeleteCategory(ctx context.Context, id int64) error {
	if err := m.record("DeleteCategory"); err != nil {
		return err
	}
	m.Deleted = append(m.Deleted, fmt.Sprintf("category:%d", id))
	return nil
}

func (m *MockService) GetSubcategory(ctx context.Context, id int64) (*models.Subcategory, error) {
	if err := m.record("GetSubcategory"); err != nil {
		return nil, err
	}
	s, ok := m.Subcategories[id]
	if !ok {
		return nil, fmt.Errorf("%w: subcategory %d", shared.ErrNotFound, id)
	}
	return s, nil
}

func (m *MockService) CreateSubcategory(ctx context.Context, in models.SubcategoryInput) (*models.Subcategory, error) {
	if err := m.record("CreateSubcategory"); err != nil {
		return nil, err
	}
	return &models.Subcategory{ID: m.id(), Name: in.Name, Description: in.Description, Category: in.Category, Parent: in.Parent}, nil
}

func (m *MockService) UpdateSubcategory(ctx context.Context, id int64, in models.SubcategoryInput) (*models.Subcategory, error) {
	if err := m.record("UpdateSubcategory"); err != nil {
		return nil, err
	}
	return &models.Subcategory{ID: id, Name: in.Name, Description: in.Description, Category: in.Category, Parent: in.Parent}, nil
}

func (m *MockService) SubcategoryDeleteImpact(ctx context.Context, id int64) (*models.DeleteImpact, error) {
	if err := m.record("SubcategoryDeleteImpact"); err != nil {
		return nil, err
	}
	impact := m.SubcategoryImpacts[id]
	return &impact, nil
}

func (m *MockService) DeleteSubcategory(ctx context.Context, id int64) error {
	if err := m.record("DeleteSubcategory"); err != nil {
		return err
	}
	m.Deleted = append(m.Deleted, fmt.Sprintf("subcategory:%d", id))
	return nil
}

func (m *MockService) CreateSoundtrack(ctx context.Context, in models.SoundtrackInput) (*models.Soundtrack, error) {
	if err := m.record("CreateSoundtrack"); err != nil {
		return nil, err
	}
	return &models.Soundtrack{ID: m.id(), Title: in.Title, Description: in.Description, URL: in.URL, Category: in.Category, Subcategory: in.Subcategory}, nil
}

func (m *MockService) UpdateSoundtrack(ctx context.Context, id int64, in models.SoundtrackInput) (*models.Soundtrack, error) {
	if err := m.record("UpdateSoundtrack"); err != nil {
		return nil, err
	}
	return &models.Soundtrack{ID: id, Title: in.Title, Description: in.Description, URL: in.URL, Category: in.Category, Subcategory: in.Subcategory}, nil
}

func (m *MockService) DeleteSoundtrack(ctx context.Context, id int64) error {
	if err := m.record("DeleteSoundtrack"); err != nil {
		return err
	}
	m.Deleted = append(m.Deleted, fmt.Sprintf("soundtrack:%d", id))
	return nil
}

func (m *MockService) MediaURL(path *string) string {
	if path == nil {
		return ""
	}
	return "http://media.test" + *path
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// PNG returns a small encoded PNG image of the given width and height.
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
