package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/shared"
	tu "github.com/desertthunder/downbeats/internal/testing"
)

func ptr[T any](v T) *T { return &v }

func seedService() *tu.MockService {
	svc := tu.NewMockService()
	svc.Categories = []models.Category{
		{ID: 1, Name: "Combat", Description: "Battle music"},
		{ID: 2, Name: "Towns", Description: "Quiet places"},
	}
	svc.Details[1] = &models.CategoryDetail{
		Category:      svc.Categories[0],
		Subcategories: []models.Subcategory{{ID: 10, Name: "Boss", Description: "Big fights", Category: 1, CategoryName: "Combat"}},
		Soundtracks:   []models.Soundtrack{{ID: 100, Title: "Skirmish", Description: "Short", URL: "https://example.com/skirmish", Category: 1}},
	}
	svc.Subcategories[10] = &models.Subcategory{
		ID: 10, Name: "Boss", Description: "Big fights", Category: 1, CategoryName: "Combat",
		Subcategories: []models.Subcategory{{ID: 11, Name: "Phase Two", Description: "Harder", Category: 1, Parent: ptr[int64](10)}},
		Soundtracks:   []models.Soundtrack{{ID: 101, Title: "Dragon", Description: "Roar", URL: "https://example.com/dragon", Category: 1, Subcategory: ptr[int64](10)}},
	}
	svc.Subcategories[11] = &models.Subcategory{
		ID: 11, Name: "Phase Two", Description: "Harder", Category: 1, CategoryName: "Combat",
		Parent: ptr[int64](10), ParentName: "Boss",
	}
	svc.CategoryImpacts[1] = models.DeleteImpact{SubcategoriesCount: 2, SoundtracksCount: 3}
	return svc
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m *Model, k string) tea.Cmd {
	_, cmd := m.Update(keyMsg(k))
	return cmd
}

// run executes cmd synchronously and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := m.Update(cmd())
	// mutations chain a reload
	if next != nil && m.pending {
		m.Update(next())
	}
}

func newTestModel(t *testing.T, svc *tu.MockService) *Model {
	t.Helper()
	m := NewModel(context.Background(), svc, log.New(io.Discard))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	run(t, m, m.Init())
	return m
}

func TestModel(t *testing.T) {
	t.Run("Init Lists Categories", func(t *testing.T) {
		m := newTestModel(t, seedService())

		if m.view != CategoryListView {
			t.Errorf("expected CategoryListView, got %d", m.view)
		}
		if got := len(m.list.Items()); got != 2 {
			t.Errorf("expected 2 items, got %d", got)
		}
		if m.pending {
			t.Error("expected pending to clear after fetch")
		}
		if !strings.Contains(m.View(), "Combat") {
			t.Error("expected category name in view")
		}
	})

	t.Run("Navigation", func(t *testing.T) {
		t.Run("Enter Category", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)

			run(t, m, press(m, "enter"))

			if m.view != CategoryView || m.top().id != 1 {
				t.Fatalf("expected category 1 view, got view %d frame %+v", m.view, m.top())
			}
			if got := len(m.list.Items()); got != 2 {
				t.Errorf("expected subcategory and soundtrack items, got %d", got)
			}
			if svc.CallCount("GetCategory") != 1 {
				t.Errorf("expected one GetCategory call, got %d", svc.CallCount("GetCategory"))
			}
		})

		t.Run("Enter Subcategory Then Back", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)

			run(t, m, press(m, "enter"))
			run(t, m, press(m, "enter"))

			if m.view != SubcategoryView || m.top().id != 10 {
				t.Fatalf("expected subcategory 10 view, got view %d frame %+v", m.view, m.top())
			}
			if len(m.stack) != 3 {
				t.Errorf("expected stack depth 3, got %d", len(m.stack))
			}

			run(t, m, press(m, "esc"))

			if m.view != CategoryView || len(m.stack) != 2 {
				t.Errorf("expected category view at depth 2, got view %d depth %d", m.view, len(m.stack))
			}
			if svc.CallCount("GetCategory") != 2 {
				t.Errorf("expected back to refetch the category, got %d calls", svc.CallCount("GetCategory"))
			}
		})

		t.Run("Breadcrumb Uses Denormalized Names", func(t *testing.T) {
			m := newTestModel(t, seedService())

			run(t, m, press(m, "enter"))
			run(t, m, press(m, "enter"))
			run(t, m, press(m, "enter"))

			if m.list.Title != "Combat / Boss / Phase Two" {
				t.Errorf("unexpected breadcrumb: %q", m.list.Title)
			}
		})

		t.Run("Back At Root Does Nothing", func(t *testing.T) {
			m := newTestModel(t, seedService())

			if cmd := press(m, "esc"); cmd != nil {
				t.Error("expected no command at root")
			}
		})

		t.Run("Quit", func(t *testing.T) {
			m := newTestModel(t, seedService())

			cmd := press(m, "q")
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
		})
	})

	t.Run("Pending Guard", func(t *testing.T) {
		svc := seedService()
		m := newTestModel(t, svc)

		first := press(m, "enter")
		if first == nil {
			t.Fatal("expected fetch command")
		}
		if !m.pending {
			t.Error("expected pending while fetch is in flight")
		}
		if cmd := press(m, "enter"); cmd != nil {
			t.Error("expected second enter to be ignored")
		}
		if cmd := press(m, "d"); cmd != nil {
			t.Error("expected delete to be ignored while pending")
		}
		if !strings.Contains(m.View(), "Loading...") {
			t.Error("expected loading line")
		}

		run(t, m, first)
		if svc.CallCount("GetCategory") != 1 {
			t.Errorf("expected exactly one GetCategory call, got %d", svc.CallCount("GetCategory"))
		}
	})

	t.Run("Error Banner", func(t *testing.T) {
		svc := seedService()
		m := newTestModel(t, svc)
		svc.Err = shared.ErrAPIRequest

		run(t, m, press(m, "enter"))

		if !errors.Is(m.err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", m.err)
		}
		if m.pending {
			t.Error("expected pending to clear on error")
		}
		if m.view != CategoryListView {
			t.Errorf("expected view to stay on list, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Error: API request failed") {
			t.Errorf("expected banner in view, got %q", m.View())
		}

		svc.Err = nil
		run(t, m, press(m, "r"))
		if m.err != nil {
			t.Errorf("expected banner cleared after successful fetch, got %v", m.err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Category Shows Impact", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)

			run(t, m, press(m, "d"))

			if m.view != ConfirmView {
				t.Fatalf("expected ConfirmView, got %d", m.view)
			}
			view := m.View()
			if !strings.Contains(view, "2 subcategories and 3 soundtracks") {
				t.Errorf("expected impact counts in view, got %q", view)
			}

			run(t, m, press(m, "y"))

			if len(svc.Deleted) != 1 || svc.Deleted[0] != "category:1" {
				t.Errorf("expected category 1 deleted, got %v", svc.Deleted)
			}
			if m.view != CategoryListView {
				t.Errorf("expected return to list, got %d", m.view)
			}
			if !strings.Contains(m.status, `Deleted category "Combat"`) {
				t.Errorf("unexpected status: %q", m.status)
			}
			if svc.CallCount("ListCategories") != 2 {
				t.Errorf("expected list reload after delete, got %d calls", svc.CallCount("ListCategories"))
			}
		})

		t.Run("Cancel", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)

			run(t, m, press(m, "d"))
			if cmd := press(m, "n"); cmd != nil {
				t.Error("expected no command on cancel")
			}

			if m.view != CategoryListView || m.confirm != nil {
				t.Errorf("expected confirmation dismissed, got view %d", m.view)
			}
			if len(svc.Deleted) != 0 {
				t.Errorf("expected nothing deleted, got %v", svc.Deleted)
			}
		})

		t.Run("Soundtrack Skips Impact", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)
			run(t, m, press(m, "enter"))
			press(m, "j")

			if cmd := press(m, "d"); cmd != nil {
				t.Error("expected no impact fetch for soundtracks")
			}
			if m.view != ConfirmView || m.confirm.impact != nil {
				t.Fatalf("expected confirmation without impact, got view %d", m.view)
			}

			run(t, m, press(m, "y"))

			if svc.CallCount("CategoryDeleteImpact")+svc.CallCount("SubcategoryDeleteImpact") != 0 {
				t.Error("expected no impact calls")
			}
			if len(svc.Deleted) != 1 || svc.Deleted[0] != "soundtrack:100" {
				t.Errorf("expected soundtrack 100 deleted, got %v", svc.Deleted)
			}
			if m.view != CategoryView {
				t.Errorf("expected return to category view, got %d", m.view)
			}
		})

		t.Run("Failure Keeps Confirmation", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)

			run(t, m, press(m, "d"))
			svc.Err = shared.ErrNotFound
			run(t, m, press(m, "y"))

			if m.view != ConfirmView {
				t.Errorf("expected to stay on confirmation, got %d", m.view)
			}
			if !errors.Is(m.err, shared.ErrNotFound) || m.pending {
				t.Errorf("expected error with pending cleared, got %v pending=%v", m.err, m.pending)
			}
		})
	})

	t.Run("Forms", func(t *testing.T) {
		t.Run("Create Category", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)

			press(m, "c")
			if m.view != FormView || m.form.kind != categoryForm {
				t.Fatalf("expected category form, got view %d", m.view)
			}

			for _, r := range "Exploration" {
				press(m, string(r))
			}
			press(m, "tab")
			for _, r := range "Wandering" {
				press(m, string(r))
			}

			run(t, m, press(m, "ctrl+s"))

			if svc.CallCount("CreateCategory") != 1 {
				t.Fatalf("expected CreateCategory call, got %v", svc.Calls)
			}
			last := svc.Categories[len(svc.Categories)-1]
			if last.Name != "Exploration" || last.Description != "Wandering" {
				t.Errorf("unexpected created category: %+v", last)
			}
			if m.view != CategoryListView || m.form != nil {
				t.Errorf("expected form closed, got view %d", m.view)
			}
			if got := len(m.list.Items()); got != 3 {
				t.Errorf("expected reloaded list with 3 items, got %d", got)
			}
		})

		t.Run("Subcategory Defaults To Current Level", func(t *testing.T) {
			m := newTestModel(t, seedService())
			run(t, m, press(m, "enter"))
			run(t, m, press(m, "enter"))

			press(m, "c")

			if m.form.value(fieldCategory) != "1" || m.form.value(fieldParent) != "10" {
				t.Errorf("expected category 1 parent 10, got %q %q", m.form.value(fieldCategory), m.form.value(fieldParent))
			}
		})

		t.Run("Edit Soundtrack Prefills Values", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)
			run(t, m, press(m, "enter"))
			press(m, "j")

			press(m, "e")

			if m.form.kind != soundtrackForm || m.form.id != 100 {
				t.Fatalf("expected soundtrack 100 form, got %+v", m.form)
			}
			if m.form.value(fieldURL) != "https://example.com/skirmish" {
				t.Errorf("unexpected URL: %q", m.form.value(fieldURL))
			}

			run(t, m, press(m, "ctrl+s"))
			if svc.CallCount("UpdateSoundtrack") != 1 {
				t.Errorf("expected UpdateSoundtrack call, got %v", svc.Calls)
			}
			if !strings.Contains(m.status, `Updated soundtrack "Skirmish"`) {
				t.Errorf("unexpected status: %q", m.status)
			}
		})

		t.Run("Invalid Id Stays On Form", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)
			run(t, m, press(m, "enter"))

			press(m, "c")
			m.form.inputs[3].SetValue("abc")

			if cmd := press(m, "ctrl+s"); cmd != nil {
				t.Error("expected no request for invalid parent id")
			}
			if !errors.Is(m.err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", m.err)
			}
			if m.view != FormView {
				t.Errorf("expected to stay on form, got %d", m.view)
			}
		})

		t.Run("Missing Thumbnail File", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)

			press(m, "c")
			m.form.inputs[2].SetValue(filepath.Join(t.TempDir(), "missing.png"))
			run(t, m, press(m, "ctrl+s"))

			if !errors.Is(m.err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", m.err)
			}
			if svc.CallCount("CreateCategory") != 0 {
				t.Error("expected no create call")
			}
		})

		t.Run("Thumbnail File Upload", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)
			path := filepath.Join(t.TempDir(), "cover.png")
			if err := os.WriteFile(path, tu.PNG(t, 4, 4), 0644); err != nil {
				t.Fatal(err)
			}

			press(m, "c")
			m.form.inputs[0].SetValue("Dungeons")
			m.form.inputs[1].SetValue("Dark halls")
			m.form.inputs[2].SetValue(path)
			run(t, m, press(m, "ctrl+s"))

			if m.err != nil {
				t.Fatalf("unexpected error: %v", m.err)
			}
			if svc.CallCount("CreateCategory") != 1 {
				t.Error("expected create call")
			}
		})

		t.Run("Enter Advances Then Submits", func(t *testing.T) {
			svc := seedService()
			m := newTestModel(t, svc)

			press(m, "c")
			press(m, "enter")
			press(m, "enter")
			if !m.form.last() {
				t.Fatalf("expected focus on last field, got %d", m.form.focus)
			}
			run(t, m, press(m, "enter"))

			if svc.CallCount("CreateCategory") != 1 {
				t.Errorf("expected create on final enter, got %v", svc.Calls)
			}
		})

		t.Run("Escape Cancels", func(t *testing.T) {
			m := newTestModel(t, seedService())

			press(m, "c")
			press(m, "esc")

			if m.view != CategoryListView || m.form != nil {
				t.Errorf("expected form dismissed, got view %d", m.view)
			}
		})
	})

	t.Run("Play", func(t *testing.T) {
		var opened string
		orig := openBrowser
		openBrowser = func(link string) error {
			opened = link
			return nil
		}
		t.Cleanup(func() { openBrowser = orig })

		m := newTestModel(t, seedService())
		run(t, m, press(m, "enter"))

		if cmd := press(m, "p"); cmd != nil {
			t.Error("expected play to ignore subcategories")
		}

		press(m, "j")
		run(t, m, press(m, "p"))

		if opened != "https://example.com/skirmish" {
			t.Errorf("expected soundtrack URL opened, got %q", opened)
		}
	})

	t.Run("Play Failure", func(t *testing.T) {
		orig := openBrowser
		openBrowser = func(string) error { return shared.ErrInvalidArgument }
		t.Cleanup(func() { openBrowser = orig })

		m := newTestModel(t, seedService())
		run(t, m, press(m, "enter"))
		press(m, "j")
		run(t, m, press(m, "p"))

		if !errors.Is(m.err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", m.err)
		}
	})
}

func TestForm(t *testing.T) {
	t.Run("Payload Omits Empty Parent", func(t *testing.T) {
		f := newSubcategoryForm(nil, 3, nil)
		f.inputs[0].SetValue("Boss")
		f.inputs[1].SetValue("Big fights")

		p, err := f.payload(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		in := p.(models.SubcategoryInput)
		if in.Category != 3 || in.Parent != nil {
			t.Errorf("unexpected payload: %+v", in)
		}
	})

	t.Run("Title", func(t *testing.T) {
		if got := newCategoryForm(nil).title(); got != "New category" {
			t.Errorf("unexpected title: %q", got)
		}
		if got := newCategoryForm(&models.Category{ID: 4}).title(); got != "Edit category 4" {
			t.Errorf("unexpected title: %q", got)
		}
	})

	t.Run("Focus Wraps", func(t *testing.T) {
		f := newCategoryForm(nil)
		f.move(-1)
		if f.focus != 2 {
			t.Errorf("expected focus to wrap to last field, got %d", f.focus)
		}
	})
}
