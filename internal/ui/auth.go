package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinefav/internal/forms"
)

var authLabels = map[string]string{
	forms.FieldName:            "Name",
	forms.FieldEmail:           "Email",
	forms.FieldPassword:        "Password",
	forms.FieldConfirmPassword: "Confirm",
}

func (m *Model) enterLogin() {
	m.view = LoginView
	m.register = nil
	m.login = forms.NewLoginForm(m.opts.Auth, m.opts.Credentials, m.opts.Memory, m.opts.Email)
	m.login.Logger = m.logger
	m.authInputs = authInputs(&m.login.Form)

	m.authFocus = 0
	if m.login.Value(forms.FieldEmail) != "" {
		m.authFocus = 1
	}
	focusInput(m.authInputs, m.authFocus)
}

func (m *Model) enterRegister() {
	m.view = RegisterView
	m.login = nil
	m.notice = ""
	m.register = forms.NewRegisterForm(m.opts.Auth)
	m.authInputs = authInputs(&m.register.Form)
	m.authFocus = 0
	focusInput(m.authInputs, 0)
}

func authInputs(f *forms.Form) []textinput.Model {
	fields := f.Fields()
	inputs := make([]textinput.Model, len(fields))
	for i, name := range fields {
		secret := name == forms.FieldPassword || name == forms.FieldConfirmPassword
		inputs[i] = newInput(strings.ToLower(authLabels[name]), secret)
		inputs[i].SetValue(f.Value(name))
	}
	return inputs
}

// authForm returns the form behind the active auth view.
func (m *Model) authForm() *forms.Form {
	if m.view == RegisterView {
		return &m.register.Form
	}
	return &m.login.Form
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.toggle):
		m.login.Remember = !m.login.Remember
		return nil
	case key.Matches(msg, m.keys.register):
		m.enterRegister()
		return nil
	case key.Matches(msg, m.keys.submit):
		req, err := m.login.Begin()
		if err != nil {
			return nil
		}
		ctx, form := m.ctx, m.login
		return func() tea.Msg { return loginDoneMsg(form, req.Run(ctx)) }
	}
	return m.updateAuthInputs(msg)
}

func (m *Model) handleRegisterKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		m.enterLogin()
		return nil
	case key.Matches(msg, m.keys.submit):
		req, err := m.register.Begin()
		if err != nil {
			return nil
		}
		ctx, form := m.ctx, m.register
		return func() tea.Msg { return registerDoneMsg(form, req.Run(ctx)) }
	}
	return m.updateAuthInputs(msg)
}

// updateAuthInputs moves focus or edits the focused field, revalidating the form on every change.
func (m *Model) updateAuthInputs(msg tea.KeyMsg) tea.Cmd {
	f := m.authForm()
	if f.Loading() {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.next):
		m.authFocus = wrapFocus(m.authFocus, 1, len(m.authInputs))
		focusInput(m.authInputs, m.authFocus)
		return nil
	case key.Matches(msg, m.keys.prev):
		m.authFocus = wrapFocus(m.authFocus, -1, len(m.authInputs))
		focusInput(m.authInputs, m.authFocus)
		return nil
	}

	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	name := f.Fields()[m.authFocus]
	if v := m.authInputs[m.authFocus].Value(); v != f.Value(name) {
		f.Set(name, v)
	}
	return cmd
}

// finishAuth applies a finished request to the form that sent it and follows the returned route.
func (m *Model) finishAuth(done authDone) tea.Cmd {
	var route forms.Route
	switch {
	case done.login != nil && done.login == m.login:
		route = m.login.Finish(done.outcome)
	case done.register != nil && done.register == m.register:
		route = m.register.Finish(done.outcome)
	default:
		return nil
	}

	if done.outcome.Err != nil {
		m.logger.Warn("auth request failed", "view", m.view, "err", done.outcome.Err)
	}

	switch route {
	case forms.RouteMovies:
		m.logger.Info("signed in")
		return m.enterMovies()
	case forms.RouteLogin:
		m.enterLogin()
		m.notice = "Account created. Please sign in."
	}
	return nil
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Sign in to Cinefav"))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(styles.ok.Render(m.notice) + "\n\n")
	}

	m.renderAuthFields(&b, &m.login.Form)

	check := "[ ]"
	if m.login.Remember {
		check = "[x]"
	}
	fmt.Fprintf(&b, "\n%s Remember me\n", check)

	m.renderAuthStatus(&b, &m.login.Form, "Signing in...")
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.submit, m.keys.toggle, m.keys.register, m.keys.exit}))
	return m.center(styles.modal.Render(b.String()))
}

func (m *Model) renderRegister() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Create an account"))
	b.WriteString("\n")

	m.renderAuthFields(&b, &m.register.Form)
	m.renderAuthStatus(&b, &m.register.Form, "Creating account...")
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.submit, m.keys.back, m.keys.exit}))
	return m.center(styles.modal.Render(b.String()))
}

func (m *Model) renderAuthFields(b *strings.Builder, f *forms.Form) {
	for i, name := range f.Fields() {
		b.WriteString(label(authLabels[name], i == m.authFocus))
		b.WriteString(m.authInputs[i].View())
		if f.Dirty() {
			b.WriteString(fieldError(f.FieldError(name)))
		}
		b.WriteString("\n")
	}
}

func (m *Model) renderAuthStatus(b *strings.Builder, f *forms.Form, loading string) {
	switch {
	case f.Loading():
		b.WriteString("\n" + styles.warn.Render(loading) + "\n")
	case f.Error() != "":
		b.WriteString("\n" + styles.err.Render(f.Error()) + "\n")
	}
}
