package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinefav/internal/controller"
	"github.com/desertthunder/cinefav/internal/forms"
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
	MsgAuthDone MsgKind = iota
	MsgOpDone
	MsgToastExpired
	MsgPosterOpened
)

// authDone carries a finished login or register request back to the form that issued it.
type authDone struct {
	login    *forms.LoginForm
	register *forms.RegisterForm
	outcome  forms.Outcome
}

// opDone carries a finished controller op back to the controller that issued it.
type opDone struct {
	ctrl    *controller.Controller
	outcome controller.Outcome
}

// loginDoneMsg is the constructor for [MsgAuthDone] from the login form
func loginDoneMsg(f *forms.LoginForm, o forms.Outcome) Msg {
	return Msg{kind: MsgAuthDone, data: authDone{login: f, outcome: o}}
}

// registerDoneMsg is the constructor for [MsgAuthDone] from the register form
func registerDoneMsg(f *forms.RegisterForm, o forms.Outcome) Msg {
	return Msg{kind: MsgAuthDone, data: authDone{register: f, outcome: o}}
}

// opDoneMsg is the constructor for [MsgOpDone]
func opDoneMsg(c *controller.Controller, o controller.Outcome) Msg {
	return Msg{kind: MsgOpDone, data: opDone{ctrl: c, outcome: o}}
}

// toastExpiredMsg is the constructor for [MsgToastExpired]
func toastExpiredMsg(gen uint64) Msg {
	return Msg{kind: MsgToastExpired, data: gen}
}

// posterOpenedMsg is the constructor for [MsgPosterOpened]
func posterOpenedMsg(err error) Msg {
	return Msg{kind: MsgPosterOpened, data: err}
}
