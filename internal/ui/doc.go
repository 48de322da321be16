// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the web client's routes:
//  1. [LoginView] : Sign in, optionally remembering the email address
//  2. [RegisterView] : Create an account, then return to sign in
//  3. [MoviesView] : Browse, search, sort and page through favorites, with add/edit, delete and detail dialogs
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Network work never runs inside Update: forms and the [controller.Controller] hand back requests that run as
// [tea.Cmd]s, and their results come back as messages tagged with the form or controller that issued them.
//
// Keyboard navigation uses vim-style bindings on the table (j/k, h/l, a/e/d, /, q) with contextual help displayed
// via charmbracelet/bubbles/help. Inside forms, tab and shift+tab move between fields and esc backs out.
package ui
