package forms

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinefav/internal/services"
	"github.com/desertthunder/cinefav/internal/shared"
)

// Route is a client-side navigation target.
type Route string

const (
	RouteNone     Route = ""
	RouteLogin    Route = "/"
	RouteRegister Route = "/register"
	RouteMovies   Route = "/movies"
)

// GenericError is shown when a request fails without a usable message from the service.
const GenericError = "Something went wrong. Please try again."

// Field names shared by the login and register forms.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// EmailMemory persists the address of a user who asked to be remembered.
type EmailMemory interface {
	RememberEmail(ctx context.Context, email string) error
	ForgetEmail(ctx context.Context) error
}

// LoginSchema validates the login form.
var LoginSchema = Schema{
	{Name: FieldEmail, Rules: []Rule{Required("Email is required"), Email("Invalid email format")}},
	{Name: FieldPassword, Rules: []Rule{Required("Password is required")}},
}

// RegisterSchema validates the register form. The name field carries no rules.
var RegisterSchema = Schema{
	{Name: FieldName},
	{Name: FieldEmail, Rules: []Rule{Required("Email is required"), Email("Invalid email format")}},
	{Name: FieldPassword, Rules: []Rule{Required("Password is required")}},
	{Name: FieldConfirmPassword, Rules: []Rule{
		Required("Confirm Password is required"),
		MatchField(FieldPassword, "Passwords must match"),
	}},
}

// Form holds values, validation and submit state for one auth form.
type Form struct {
	schema  Schema
	initial map[string]string
	values  map[string]string
	result  Result
	loading bool
	err     string
}

func newForm(schema Schema, initial map[string]string) Form {
	f := Form{schema: schema, initial: map[string]string{}, values: map[string]string{}}
	for _, field := range schema {
		f.initial[field.Name] = initial[field.Name]
		f.values[field.Name] = initial[field.Name]
	}
	f.result = schema.Validate(f.values)
	return f
}

// Fields returns the field names in display order.
func (f *Form) Fields() []string {
	names := make([]string, len(f.schema))
	for i, field := range f.schema {
		names[i] = field.Name
	}
	return names
}

// Set changes a field, revalidates, and clears the inline form error.
func (f *Form) Set(name, value string) {
	f.values[name] = value
	f.result = f.schema.Validate(f.values)
	f.err = ""
}

func (f *Form) Value(name string) string      { return f.values[name] }
func (f *Form) FieldError(name string) string { return f.result.Errors[name] }
func (f *Form) Valid() bool                   { return f.result.Valid }
func (f *Form) Loading() bool                 { return f.loading }

// Error is the inline message from the last failed submit.
func (f *Form) Error() string { return f.err }

// Dirty reports whether any value differs from its initial value.
func (f *Form) Dirty() bool {
	for k, v := range f.values {
		if f.initial[k] != v {
			return true
		}
	}
	return false
}

// CanSubmit reports whether the submit control is enabled.
func (f *Form) CanSubmit() bool { return f.canSubmit(f.Dirty()) }

func (f *Form) canSubmit(dirty bool) bool {
	return !f.loading && f.result.Valid && dirty
}

func (f *Form) begin(dirty bool) error {
	switch {
	case f.loading:
		return shared.ErrBusy
	case !f.result.Valid:
		return fmt.Errorf("%w: form has errors", shared.ErrInvalidInput)
	case !dirty:
		return fmt.Errorf("%w: form is unchanged", shared.ErrInvalidInput)
	}
	f.loading = true
	f.err = ""
	return nil
}

// Outcome is the result of an auth request, applied back onto its form with Finish.
type Outcome struct {
	Route   Route
	Message string // inline error, empty on success
	Err     error
}

// Request is a pending auth submit. Run it off the UI loop and hand the outcome to Finish.
type Request struct {
	run func(ctx context.Context) Outcome
}

func (r *Request) Run(ctx context.Context) Outcome { return r.run(ctx) }

func (f *Form) finish(o Outcome) Route {
	f.loading = false
	if o.Err != nil {
		f.err = o.Message
		return RouteNone
	}
	return o.Route
}

// failure turns a request error into the inline message: the service's own message when it sent one.
func failure(err error) Outcome {
	if apiErr, ok := services.IsRejection(err); ok && apiErr.Message != "" {
		return Outcome{Message: apiErr.Message, Err: err}
	}
	return Outcome{Message: GenericError, Err: err}
}

// LoginForm collects credentials and stores the returned token.
type LoginForm struct {
	Form
	Remember bool
	Logger   *log.Logger // receives failures to save the remembered email; may be nil

	initialRemember bool
	auth            services.Authenticator
	creds           services.CredentialProvider
	memory          EmailMemory
}

// NewLoginForm builds a login form. A non-empty email pre-fills the field. memory may be nil.
func NewLoginForm(auth services.Authenticator, creds services.CredentialProvider, memory EmailMemory, email string) *LoginForm {
	return &LoginForm{
		Form:            newForm(LoginSchema, map[string]string{FieldEmail: email}),
		Remember:        email != "",
		initialRemember: email != "",
		auth:            auth,
		creds:           creds,
		memory:          memory,
	}
}

// Dirty also counts a changed remember choice.
func (f *LoginForm) Dirty() bool { return f.Form.Dirty() || f.Remember != f.initialRemember }

// CanSubmit reports whether the submit control is enabled.
func (f *LoginForm) CanSubmit() bool { return f.canSubmit(f.Dirty()) }

// Begin validates and marks the form loading.
func (f *LoginForm) Begin() (*Request, error) {
	if err := f.begin(f.Dirty()); err != nil {
		return nil, err
	}

	req := services.LoginRequest{Email: f.values[FieldEmail], Password: f.values[FieldPassword], Remember: f.Remember}
	auth, creds, memory, logger := f.auth, f.creds, f.memory, f.Logger

	return &Request{run: func(ctx context.Context) Outcome {
		token, err := auth.Login(ctx, req)
		if err != nil {
			return failure(err)
		}
		if err := creds.SetToken(ctx, token); err != nil {
			return Outcome{Message: GenericError, Err: err}
		}
		if memory != nil {
			var err error
			if req.Remember {
				err = memory.RememberEmail(ctx, req.Email)
			} else {
				err = memory.ForgetEmail(ctx)
			}
			if err != nil && logger != nil {
				logger.Warn("failed to update remembered email", "remember", req.Remember, "err", err)
			}
		}
		return Outcome{Route: RouteMovies}
	}}, nil
}

// Finish clears loading and returns the route to navigate to, or [RouteNone] on failure.
func (f *LoginForm) Finish(o Outcome) Route { return f.finish(o) }

// Submit runs Begin, the request and Finish in one call.
func (f *LoginForm) Submit(ctx context.Context) (Route, error) {
	req, err := f.Begin()
	if err != nil {
		return RouteNone, err
	}
	o := req.Run(ctx)
	return f.Finish(o), o.Err
}

// RegisterForm collects a new account.
type RegisterForm struct {
	Form
	auth services.Authenticator
}

// NewRegisterForm builds an empty register form.
func NewRegisterForm(auth services.Authenticator) *RegisterForm {
	return &RegisterForm{Form: newForm(RegisterSchema, nil), auth: auth}
}

// Begin validates and marks the form loading.
func (f *RegisterForm) Begin() (*Request, error) {
	if err := f.begin(f.Dirty()); err != nil {
		return nil, err
	}

	req := services.RegisterRequest{
		Name:            f.values[FieldName],
		Email:           f.values[FieldEmail],
		Password:        f.values[FieldPassword],
		ConfirmPassword: f.values[FieldConfirmPassword],
	}
	auth := f.auth

	return &Request{run: func(ctx context.Context) Outcome {
		if err := auth.Register(ctx, req); err != nil {
			return failure(err)
		}
		return Outcome{Route: RouteLogin}
	}}, nil
}

// Finish clears loading and returns the route to navigate to, or [RouteNone] on failure.
func (f *RegisterForm) Finish(o Outcome) Route { return f.finish(o) }

// Submit runs Begin, the request and Finish in one call.
func (f *RegisterForm) Submit(ctx context.Context) (Route, error) {
	req, err := f.Begin()
	if err != nil {
		return RouteNone, err
	}
	o := req.Run(ctx)
	return f.Finish(o), o.Err
}

// IsFormError reports whether err came from local validation rather than the network.
func IsFormError(err error) bool {
	return errors.Is(err, shared.ErrInvalidInput) || errors.Is(err, shared.ErrBusy)
}
