package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/downbeats/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCategoriesFetched MsgKind = iota
	MsgCategoryFetched
	MsgSubcategoryFetched
	MsgImpactFetched
	MsgMutationDone
	MsgBrowserOpened
)

type categoriesFetched struct {
	categories []models.Category
	err        error
}

type categoryFetched struct {
	detail *models.CategoryDetail
	err    error
}

type subcategoryFetched struct {
	subcategory *models.Subcategory
	err         error
}

type impactFetched struct {
	target target
	impact *models.DeleteImpact
	err    error
}

type mutationDone struct {
	status string
	err    error
}

// categoriesFetchedMsg is the constructor for [MsgCategoriesFetched]
func categoriesFetchedMsg(categories []models.Category, err error) Msg {
	return Msg{kind: MsgCategoriesFetched, data: categoriesFetched{categories, err}}
}

// categoryFetchedMsg is the constructor for [MsgCategoryFetched]
func categoryFetchedMsg(detail *models.CategoryDetail, err error) Msg {
	return Msg{kind: MsgCategoryFetched, data: categoryFetched{detail, err}}
}

// subcategoryFetchedMsg is the constructor for [MsgSubcategoryFetched]
func subcategoryFetchedMsg(sub *models.Subcategory, err error) Msg {
	return Msg{kind: MsgSubcategoryFetched, data: subcategoryFetched{sub, err}}
}

// impactFetchedMsg is the constructor for [MsgImpactFetched]
func impactFetchedMsg(t target, impact *models.DeleteImpact, err error) Msg {
	return Msg{kind: MsgImpactFetched, data: impactFetched{t, impact, err}}
}

// mutationDoneMsg is the constructor for [MsgMutationDone]
func mutationDoneMsg(status string, err error) Msg {
	return Msg{kind: MsgMutationDone, data: mutationDone{status, err}}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: err}
}
