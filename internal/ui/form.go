package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/shared"
)

type formKind int

const (
	categoryForm formKind = iota
	subcategoryForm
	soundtrackForm
)

func (k formKind) String() string {
	switch k {
	case categoryForm:
		return "category"
	case subcategoryForm:
		return "subcategory"
	case soundtrackForm:
		return "soundtrack"
	default:
		return ""
	}
}

// Field names shared by the form layouts.
const (
	fieldName        = "Name"
	fieldTitle       = "Title"
	fieldDescription = "Description"
	fieldURL         = "URL"
	fieldCategory    = "Category ID"
	fieldParent      = "Parent ID"
	fieldSubcategory = "Subcategory ID"
	fieldThumbnail   = "Thumbnail file"
)

var layouts = map[formKind][]string{
	categoryForm:    {fieldName, fieldDescription, fieldThumbnail},
	subcategoryForm: {fieldName, fieldDescription, fieldCategory, fieldParent, fieldThumbnail},
	soundtrackForm:  {fieldTitle, fieldDescription, fieldURL, fieldCategory, fieldSubcategory, fieldThumbnail},
}

// form is a create/edit form of text inputs. id is 0 when creating.
//
// Updates are full replacements, so edit forms start from the current values. The thumbnail
// field is a local file path; leaving it empty keeps the stored image.
type form struct {
	kind   formKind
	id     int64
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(kind formKind, id int64, values map[string]string) *form {
	labels := layouts[kind]
	f := &form{kind: kind, id: id, labels: labels, inputs: make([]textinput.Model, len(labels))}
	for i, label := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 512
		in.Placeholder = placeholder(label)
		in.SetValue(values[label])
		f.inputs[i] = in
	}
	f.inputs[0].Focus()
	return f
}

func placeholder(label string) string {
	switch label {
	case fieldParent, fieldSubcategory:
		return "none"
	case fieldThumbnail:
		return "keep current"
	case fieldURL:
		return "https://"
	default:
		return ""
	}
}

func newCategoryForm(c *models.Category) *form {
	if c == nil {
		return newForm(categoryForm, 0, nil)
	}
	return newForm(categoryForm, c.ID, map[string]string{
		fieldName:        c.Name,
		fieldDescription: c.Description,
	})
}

func newSubcategoryForm(s *models.Subcategory, categoryID int64, parent *int64) *form {
	if s == nil {
		return newForm(subcategoryForm, 0, map[string]string{
			fieldCategory: formatID(&categoryID),
			fieldParent:   formatID(parent),
		})
	}
	return newForm(subcategoryForm, s.ID, map[string]string{
		fieldName:        s.Name,
		fieldDescription: s.Description,
		fieldCategory:    formatID(&s.Category),
		fieldParent:      formatID(s.Parent),
	})
}

func newSoundtrackForm(s *models.Soundtrack, categoryID int64, subcategory *int64) *form {
	if s == nil {
		return newForm(soundtrackForm, 0, map[string]string{
			fieldCategory:    formatID(&categoryID),
			fieldSubcategory: formatID(subcategory),
		})
	}
	return newForm(soundtrackForm, s.ID, map[string]string{
		fieldTitle:       s.Title,
		fieldDescription: s.Description,
		fieldURL:         s.URL,
		fieldCategory:    formatID(&s.Category),
		fieldSubcategory: formatID(s.Subcategory),
	})
}

func formatID(id *int64) string {
	if id == nil || *id == 0 {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func (f *form) title() string {
	if f.id == 0 {
		return "New " + f.kind.String()
	}
	return fmt.Sprintf("Edit %s %d", f.kind, f.id)
}

func (f *form) value(label string) string {
	for i, l := range f.labels {
		if l == label {
			return strings.TrimSpace(f.inputs[i].Value())
		}
	}
	return ""
}

func (f *form) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) last() bool {
	return f.focus == len(f.inputs)-1
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) thumbnailPath() string {
	return f.value(fieldThumbnail)
}

// payload converts the inputs into a typed write payload with the given thumbnail.
//
// Only id fields are parsed here; required values are left to the server.
func (f *form) payload(thumbnail *models.Upload) (models.Payload, error) {
	switch f.kind {
	case categoryForm:
		return models.CategoryInput{
			Name:        f.value(fieldName),
			Description: f.value(fieldDescription),
			Thumbnail:   thumbnail,
		}, nil
	case subcategoryForm:
		category, err := parseID(fieldCategory, f.value(fieldCategory))
		if err != nil {
			return nil, err
		}
		parent, err := parseOptionalID(fieldParent, f.value(fieldParent))
		if err != nil {
			return nil, err
		}
		return models.SubcategoryInput{
			Name:        f.value(fieldName),
			Description: f.value(fieldDescription),
			Category:    category,
			Parent:      parent,
			Thumbnail:   thumbnail,
		}, nil
	case soundtrackForm:
		category, err := parseID(fieldCategory, f.value(fieldCategory))
		if err != nil {
			return nil, err
		}
		sub, err := parseOptionalID(fieldSubcategory, f.value(fieldSubcategory))
		if err != nil {
			return nil, err
		}
		return models.SoundtrackInput{
			Title:       f.value(fieldTitle),
			Description: f.value(fieldDescription),
			URL:         f.value(fieldURL),
			Category:    category,
			Subcategory: sub,
			Thumbnail:   thumbnail,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown form", shared.ErrInvalidInput)
	}
}

func parseID(label, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", shared.ErrInvalidArgument, label, s)
	}
	return id, nil
}

func parseOptionalID(label, s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	id, err := parseID(label, s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(f.title()))
	b.WriteString("\n")
	for i, label := range f.labels {
		marker := "  "
		if i == f.focus {
			marker = "› "
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, styles.label.Render(label), f.inputs[i].View())
	}
	return b.String()
}
