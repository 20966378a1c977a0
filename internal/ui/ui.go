package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/services"
	"github.com/desertthunder/downbeats/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CategoryListView ViewState = iota
	CategoryView
	SubcategoryView
	ConfirmView
	FormView
)

var openBrowser = shared.OpenBrowser

// frame is one level of the navigation stack.
type frame struct {
	view ViewState
	id   int64
}

// target identifies the entity a delete or edit applies to.
type target struct {
	kind string
	id   int64
	name string
}

type confirmation struct {
	target target
	impact *models.DeleteImpact
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	svc    services.Service
	logger *log.Logger

	view  ViewState
	stack []frame

	width  int
	height int

	list        list.Model
	categories  []models.Category
	category    *models.CategoryDetail
	subcategory *models.Subcategory

	confirm *confirmation
	form    *form

	pending bool
	status  string
	err     error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, svc services.Service, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Model{
		ctx:    ctx,
		svc:    svc,
		logger: logger,
		view:   CategoryListView,
		stack:  []frame{{view: CategoryListView}},
		list:   list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching the categories.
func (m *Model) Init() tea.Cmd {
	m.pending = true
	return m.fetchCategories()
}

func (m *Model) top() frame {
	return m.stack[len(m.stack)-1]
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeys(msg)
	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	if msg.kind != MsgBrowserOpened {
		m.pending = false
	}

	switch msg.kind {
	case MsgCategoriesFetched:
		data := msg.data.(categoriesFetched)
		if data.err != nil {
			return m.fail("list categories", data.err)
		}
		m.categories = data.categories
		m.show(frame{view: CategoryListView}, "Categories", categoryItems(data.categories))
	case MsgCategoryFetched:
		data := msg.data.(categoryFetched)
		if data.err != nil {
			return m.fail("get category", data.err)
		}
		m.category = data.detail
		m.show(frame{view: CategoryView, id: data.detail.ID}, data.detail.Name,
			childItems(data.detail.Subcategories, data.detail.Soundtracks))
	case MsgSubcategoryFetched:
		data := msg.data.(subcategoryFetched)
		if data.err != nil {
			return m.fail("get subcategory", data.err)
		}
		m.subcategory = data.subcategory
		m.show(frame{view: SubcategoryView, id: data.subcategory.ID}, breadcrumb(data.subcategory),
			childItems(data.subcategory.Subcategories, data.subcategory.Soundtracks))
	case MsgImpactFetched:
		data := msg.data.(impactFetched)
		if data.err != nil {
			return m.fail("get delete impact", data.err)
		}
		m.confirm = &confirmation{target: data.target, impact: data.impact}
		m.view = ConfirmView
	case MsgMutationDone:
		data := msg.data.(mutationDone)
		if data.err != nil {
			return m.fail("save", data.err)
		}
		m.form = nil
		m.confirm = nil
		m.err = nil
		m.status = data.status
		m.view = m.top().view
		m.pending = true
		return m, m.reload()
	case MsgBrowserOpened:
		if err, _ := msg.data.(error); err != nil {
			return m.fail("open browser", err)
		}
	}
	return m, nil
}

// fail logs the error, shows it in the banner and keeps the current view.
func (m *Model) fail(op string, err error) (tea.Model, tea.Cmd) {
	m.logger.Error("request failed", "op", op, "error", err)
	m.err = err
	m.status = ""
	return m, nil
}

// show replaces the list with a freshly fetched level and pushes it unless it is already on top.
func (m *Model) show(f frame, title string, items []list.Item) {
	if m.top() != f {
		m.stack = append(m.stack, f)
	}
	m.view = f.view
	m.err = nil
	m.list = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
	m.list.Title = title
	m.list.SetShowHelp(false)
}

func breadcrumb(s *models.Subcategory) string {
	parts := []string{}
	if s.CategoryName != "" {
		parts = append(parts, s.CategoryName)
	}
	if s.ParentName != "" {
		parts = append(parts, s.ParentName)
	}
	return strings.Join(append(parts, s.Name), " / ")
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case ConfirmView:
		return m.handleConfirmKeys(msg)
	case FormView:
		return m.handleFormKeys(msg)
	}

	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		return m.back()
	case key.Matches(msg, m.keys.refresh):
		if m.pending {
			return m, nil
		}
		m.pending = true
		return m, m.reload()
	case key.Matches(msg, m.keys.enter):
		return m.open()
	case key.Matches(msg, m.keys.create):
		return m.openCreateForm(false)
	case key.Matches(msg, m.keys.soundtrack):
		return m.openCreateForm(true)
	case key.Matches(msg, m.keys.edit):
		return m.openEditForm()
	case key.Matches(msg, m.keys.remove):
		return m.requestDelete()
	case key.Matches(msg, m.keys.play):
		if item, ok := m.list.SelectedItem().(soundtrackItem); ok {
			return m, m.play(item.soundtrack.URL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// open fetches the selected item's level. Soundtracks are leaves and do nothing.
func (m *Model) open() (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	switch item := m.list.SelectedItem().(type) {
	case categoryItem:
		m.pending = true
		return m, m.fetchCategory(item.category.ID)
	case subcategoryItem:
		m.pending = true
		return m, m.fetchSubcategory(item.subcategory.ID)
	}
	return m, nil
}

// back pops one level and refetches the level below.
func (m *Model) back() (tea.Model, tea.Cmd) {
	if len(m.stack) == 1 || m.pending {
		return m, nil
	}
	m.stack = m.stack[:len(m.stack)-1]
	m.status = ""
	m.pending = true
	return m, m.reload()
}

func (m *Model) reload() tea.Cmd {
	f := m.top()
	switch f.view {
	case CategoryView:
		return m.fetchCategory(f.id)
	case SubcategoryView:
		return m.fetchSubcategory(f.id)
	default:
		return m.fetchCategories()
	}
}

func (m *Model) openCreateForm(soundtrack bool) (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	switch m.view {
	case CategoryListView:
		if soundtrack {
			return m, nil
		}
		m.form = newCategoryForm(nil)
	case CategoryView:
		if soundtrack {
			m.form = newSoundtrackForm(nil, m.category.ID, nil)
		} else {
			m.form = newSubcategoryForm(nil, m.category.ID, nil)
		}
	case SubcategoryView:
		id := m.subcategory.ID
		if soundtrack {
			m.form = newSoundtrackForm(nil, m.subcategory.Category, &id)
		} else {
			m.form = newSubcategoryForm(nil, m.subcategory.Category, &id)
		}
	default:
		return m, nil
	}
	m.view = FormView
	return m, nil
}

func (m *Model) openEditForm() (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	switch item := m.list.SelectedItem().(type) {
	case categoryItem:
		m.form = newCategoryForm(&item.category)
	case subcategoryItem:
		m.form = newSubcategoryForm(&item.subcategory, 0, nil)
	case soundtrackItem:
		m.form = newSoundtrackForm(&item.soundtrack, 0, nil)
	default:
		return m, nil
	}
	m.view = FormView
	return m, nil
}

// requestDelete fetches the impact counts before asking. Soundtracks have no impact and go
// straight to confirmation.
func (m *Model) requestDelete() (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	switch item := m.list.SelectedItem().(type) {
	case categoryItem:
		m.pending = true
		return m, m.fetchImpact(target{kind: "category", id: item.category.ID, name: item.category.Name})
	case subcategoryItem:
		m.pending = true
		return m, m.fetchImpact(target{kind: "subcategory", id: item.subcategory.ID, name: item.subcategory.Name})
	case soundtrackItem:
		m.confirm = &confirmation{target: target{kind: "soundtrack", id: item.soundtrack.ID, name: item.soundtrack.Title}}
		m.view = ConfirmView
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		if m.pending || m.confirm == nil {
			return m, nil
		}
		m.pending = true
		return m, m.delete(m.confirm.target)
	case key.Matches(msg, m.keys.no):
		if m.pending {
			return m, nil
		}
		m.confirm = nil
		m.view = m.top().view
	}
	return m, nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		if m.pending {
			return m, nil
		}
		m.form = nil
		m.view = m.top().view
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m.submit()
	case msg.Type == tea.KeyEnter:
		if m.form.last() {
			return m.submit()
		}
		m.form.move(1)
		return m, nil
	case key.Matches(msg, m.keys.next):
		m.form.move(1)
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.form.move(-1)
		return m, nil
	}
	return m, m.form.update(msg)
}

// submit parses the form and sends it. Ignored while a request is in flight.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	f := m.form
	if _, err := f.payload(nil); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.pending = true
	return m, m.save(f)
}

func (m *Model) fetchCategories() tea.Cmd {
	return func() tea.Msg {
		categories, err := m.svc.ListCategories(m.ctx)
		return categoriesFetchedMsg(categories, err)
	}
}

func (m *Model) fetchCategory(id int64) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.svc.GetCategory(m.ctx, id)
		return categoryFetchedMsg(detail, err)
	}
}

func (m *Model) fetchSubcategory(id int64) tea.Cmd {
	return func() tea.Msg {
		sub, err := m.svc.GetSubcategory(m.ctx, id)
		return subcategoryFetchedMsg(sub, err)
	}
}

func (m *Model) fetchImpact(t target) tea.Cmd {
	return func() tea.Msg {
		var (
			impact *models.DeleteImpact
			err    error
		)
		if t.kind == "category" {
			impact, err = m.svc.CategoryDeleteImpact(m.ctx, t.id)
		} else {
			impact, err = m.svc.SubcategoryDeleteImpact(m.ctx, t.id)
		}
		return impactFetchedMsg(t, impact, err)
	}
}

func (m *Model) delete(t target) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch t.kind {
		case "category":
			err = m.svc.DeleteCategory(m.ctx, t.id)
		case "subcategory":
			err = m.svc.DeleteSubcategory(m.ctx, t.id)
		default:
			err = m.svc.DeleteSoundtrack(m.ctx, t.id)
		}
		return mutationDoneMsg(fmt.Sprintf("Deleted %s %q", t.kind, t.name), err)
	}
}

func (m *Model) save(f *form) tea.Cmd {
	path := f.thumbnailPath()
	return func() tea.Msg {
		var upload *models.Upload
		if path != "" {
			file, err := os.Open(path)
			if err != nil {
				return mutationDoneMsg("", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err))
			}
			defer file.Close()
			upload = models.NewUpload(filepath.Base(path), file)
		}

		payload, err := f.payload(upload)
		if err != nil {
			return mutationDoneMsg("", err)
		}

		verb := "Created"
		if f.id != 0 {
			verb = "Updated"
		}

		switch in := payload.(type) {
		case models.CategoryInput:
			var c *models.Category
			if f.id == 0 {
				c, err = m.svc.CreateCategory(m.ctx, in)
			} else {
				c, err = m.svc.UpdateCategory(m.ctx, f.id, in)
			}
			if err != nil {
				return mutationDoneMsg("", err)
			}
			return mutationDoneMsg(fmt.Sprintf("%s category %q", verb, c.Name), nil)
		case models.SubcategoryInput:
			var s *models.Subcategory
			if f.id == 0 {
				s, err = m.svc.CreateSubcategory(m.ctx, in)
			} else {
				s, err = m.svc.UpdateSubcategory(m.ctx, f.id, in)
			}
			if err != nil {
				return mutationDoneMsg("", err)
			}
			return mutationDoneMsg(fmt.Sprintf("%s subcategory %q", verb, s.Name), nil)
		case models.SoundtrackInput:
			var s *models.Soundtrack
			if f.id == 0 {
				s, err = m.svc.CreateSoundtrack(m.ctx, in)
			} else {
				s, err = m.svc.UpdateSoundtrack(m.ctx, f.id, in)
			}
			if err != nil {
				return mutationDoneMsg("", err)
			}
			return mutationDoneMsg(fmt.Sprintf("%s soundtrack %q", verb, s.Title), nil)
		}
		return mutationDoneMsg("", fmt.Errorf("%w: unknown payload", shared.ErrInvalidInput))
	}
}

func (m *Model) play(url string) tea.Cmd {
	return func() tea.Msg {
		return browserOpenedMsg(openBrowser(url))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(styles.banner.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(styles.ok.Render("✓ " + m.status))
		b.WriteString("\n")
	}

	switch m.view {
	case ConfirmView:
		b.WriteString(m.renderConfirm())
	case FormView:
		b.WriteString(m.renderForm())
	default:
		b.WriteString(m.renderList())
	}

	if m.pending {
		b.WriteString("\n")
		b.WriteString(styles.help.Render("Loading..."))
	}
	return b.String()
}

func (m *Model) renderList() string {
	var header string
	switch m.view {
	case CategoryView:
		if m.category != nil {
			header = m.renderHeader(m.category.Description, m.category.Thumbnail)
		}
	case SubcategoryView:
		if m.subcategory != nil {
			header = m.renderHeader(m.subcategory.Description, m.subcategory.Thumbnail)
		}
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.create}
	if m.view != CategoryListView {
		helpKeys = append(helpKeys, m.keys.soundtrack)
	}
	helpKeys = append(helpKeys, m.keys.edit, m.keys.remove)
	if m.view != CategoryListView {
		helpKeys = append(helpKeys, m.keys.play, m.keys.back)
	}
	helpKeys = append(helpKeys, m.keys.refresh, m.keys.quit)

	return fmt.Sprintf("%s%s\n\n%s", header, m.list.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderHeader(description string, thumbnail *string) string {
	header := description + "\n"
	if url := m.svc.MediaURL(thumbnail); url != "" {
		header += styles.help.Render("Thumbnail: "+url) + "\n"
	}
	return header + "\n"
}

func (m *Model) renderConfirm() string {
	if m.confirm == nil {
		return ""
	}
	t := m.confirm.target
	title := styles.title.Render(fmt.Sprintf("Delete %s '%s'?", t.kind, t.name))

	info := "\nThis cannot be undone.\n"
	if impact := m.confirm.impact; impact != nil {
		if impact.Empty() {
			info = "\nNothing else will be removed.\n"
		} else {
			info = "\n" + styles.warn.Render("This also deletes "+impact.Summary()+".") + "\n"
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderForm() string {
	if m.form == nil {
		return ""
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.prev, m.keys.submit, m.keys.back})
	return fmt.Sprintf("%s\n%s", m.form.view(), helpView)
}
