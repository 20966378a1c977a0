package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/downbeats/internal/models"
)

var (
	_ list.DefaultItem = categoryItem{}
	_ list.DefaultItem = subcategoryItem{}
	_ list.DefaultItem = soundtrackItem{}
)

// categoryItem wraps [models.Category] to implement [list.Item].
type categoryItem struct {
	category models.Category
}

func (i categoryItem) FilterValue() string { return i.category.Name }
func (i categoryItem) Title() string       { return i.category.Name }
func (i categoryItem) Description() string { return i.category.Description }

// subcategoryItem wraps [models.Subcategory] to implement [list.Item].
type subcategoryItem struct {
	subcategory models.Subcategory
}

func (i subcategoryItem) FilterValue() string { return i.subcategory.Name }
func (i subcategoryItem) Title() string       { return "▸ " + i.subcategory.Name }
func (i subcategoryItem) Description() string { return i.subcategory.Description }

// soundtrackItem wraps [models.Soundtrack] to implement [list.Item].
type soundtrackItem struct {
	soundtrack models.Soundtrack
}

func (i soundtrackItem) FilterValue() string { return i.soundtrack.Title }
func (i soundtrackItem) Title() string       { return "♪ " + i.soundtrack.Title }
func (i soundtrackItem) Description() string {
	if i.soundtrack.Description == "" {
		return i.soundtrack.URL
	}
	return fmt.Sprintf("%s • %s", i.soundtrack.Description, i.soundtrack.URL)
}

func categoryItems(categories []models.Category) []list.Item {
	items := make([]list.Item, len(categories))
	for i, c := range categories {
		items[i] = categoryItem{category: c}
	}
	return items
}

// childItems lists subcategories first, then soundtracks, in server order.
func childItems(subcategories []models.Subcategory, soundtracks []models.Soundtrack) []list.Item {
	items := make([]list.Item, 0, len(subcategories)+len(soundtracks))
	for _, s := range subcategories {
		items = append(items, subcategoryItem{subcategory: s})
	}
	for _, s := range soundtracks {
		items = append(items, soundtrackItem{soundtrack: s})
	}
	return items
}
