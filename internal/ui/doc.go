// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI browses the Downbeats hierarchy one level per request:
//  1. [CategoryListView] : All categories
//  2. [CategoryView] : A category's top-level subcategories and direct soundtracks
//  3. [SubcategoryView] : A subcategory's children and soundtracks
//  4. [ConfirmView] : Delete confirmation with the cascade counts fetched just before asking
//  5. [FormView] : Create and edit forms built from bubbles textinputs
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Every API call runs as a [tea.Cmd]. While one is in flight the model ignores open, submit and delete keys,
// and failures are shown in an inline banner.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
