// Package controller owns the movie collection and the dialogs that change it.
//
// A [Controller] is a single-owner state object. User actions (OpenAdd, SetField, Submit, ConfirmDelete, ...)
// mutate it directly; network work comes back as an [Op] that the caller runs wherever it likes (a tea.Cmd in
// the TUI, inline in the CLI) and whose [Outcome] is handed to [Controller.Apply].
//
// # Dialogs
//
// The active dialog is a single [Modal] value, so two dialogs can never be open together:
//
//	None -> Form(new)      OpenAdd
//	None -> Form(edit)     OpenEdit
//	None -> DeleteConfirm  OpenDelete
//	None -> ViewDetail     OpenView
//	any  -> None           Close, or a successful create/update/delete
//
// Opening a dialog while another is open returns [shared.ErrModalActive] and changes nothing. A form stays open
// on validation or service failure; a delete confirmation stays open on failure and raises the blocking alert.
//
// # Stale responses
//
// Every dialog opening starts a new session and every Load bumps a generation. Outcomes from an earlier session,
// a superseded load, or a detached controller are dropped.
//
// # Toasts
//
// One slot. A new toast replaces the old one and restarts its lifetime; [Controller.ExpireToast] only clears the
// generation it was scheduled for.
//
// # Table
//
// [Table] holds sort, column visibility, column filters, fuzzy search and pagination. It is applied to the
// collection on demand and never sent anywhere.
package controller
