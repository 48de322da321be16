// Package forms validates and submits the login and register forms.
//
// A [Schema] lists per-field [Rule]s; [Schema.Validate] runs them in order and keeps the first failure for each
// field. Forms revalidate on every [Form.Set], and editing a field clears the inline error left by a failed
// submit.
//
// Submitting is split in three so a UI loop never blocks on the network:
//
//	req, err := form.Begin() // validates, sets loading
//	outcome := req.Run(ctx)  // performs exactly one request, touches no form state
//	route := form.Finish(outcome)
//
// Submit does all three for callers that can block.
package forms
