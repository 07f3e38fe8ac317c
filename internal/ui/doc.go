// Package ui implements an interactive song browser using bubbletea's Elm architecture.
//
// The TUI talks to a running server through [services.Service] and offers three views:
//  1. [ListView] : Browse a collection, tab switches between songs and todo
//  2. [DetailView] : Show every field of the selected song
//  3. [ConfirmView] : Confirm a move to the other collection or a delete
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Fetches and bulk operations run as [tea.Cmd] functions so the view never blocks on the network.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
