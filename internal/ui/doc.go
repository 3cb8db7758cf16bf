// Package ui implements an interactive terminal catalog browser using
// bubbletea's Elm architecture.
//
// The TUI walks the same browse tree the HTTP API exposes: the root menu,
// static listings and catalog entities, expanded lazily as the user drills
// down. A navigation stack keeps every visited node so esc always returns
// to the exact parent listing without a refetch.
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Expansion and playback resolution run as [tea.Cmd] functions so the
// interface never blocks on the catalog.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, p, r, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
