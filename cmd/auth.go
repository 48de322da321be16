package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cinefav/internal/forms"
	"github.com/desertthunder/cinefav/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login validates the credentials with the login form and stores the returned token.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	email := cmd.String("email")
	remembered, _ := r.store.RememberedEmail(ctx)
	if email == "" {
		email = remembered
	}

	form := forms.NewLoginForm(r.catalog, r.store, r.store, remembered)
	form.Set(forms.FieldEmail, email)
	form.Set(forms.FieldPassword, cmd.String("password"))
	form.Remember = cmd.Bool("remember")
	form.Logger = r.logger

	r.logger.Info("signing in", "email", email)
	route, err := form.Submit(ctx)
	if err != nil {
		return formError(&form.Form, err)
	}

	r.logger.Debug("signed in", "route", route)
	return r.writePlain("✓ Signed in as %s\n", email)
}

// Register creates an account with the register form.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	form := forms.NewRegisterForm(r.catalog)
	form.Set(forms.FieldName, cmd.String("name"))
	form.Set(forms.FieldEmail, cmd.String("email"))
	form.Set(forms.FieldPassword, cmd.String("password"))
	form.Set(forms.FieldConfirmPassword, cmd.String("confirm-password"))

	r.logger.Info("registering account", "email", cmd.String("email"))
	if _, err := form.Submit(ctx); err != nil {
		return formError(&form.Form, err)
	}

	r.writePlain("✓ Account created\n")
	return r.writePlain("Run 'cinefav login --email %s' to sign in\n", cmd.String("email"))
}

// Logout forgets the stored token.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}
	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	r.logger.Info("signed out")
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports whether a token is stored and, for JWTs, when it expires.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	token, err := r.store.Token(ctx)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("✗ Not authenticated\nRun 'cinefav login' to sign in\n")
	}
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	r.writePlain("Service: %s\n", r.api.BaseURL())
	if email, err := r.store.RememberedEmail(ctx); err == nil && email != "" {
		r.writePlain("Email: %s\n", email)
	}

	claims, err := shared.InspectToken(token)
	if err != nil {
		r.logger.Debug("token expiry unknown", "err", err)
		return r.writePlain("Authentication: ✓ Authenticated (expiry unknown)\n")
	}

	switch {
	case claims.Expired(time.Now()):
		return r.writePlain("Authentication: ✗ Token expired at %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	case claims.ExpiresAt.IsZero():
		return r.writePlain("Authentication: ✓ Authenticated (no expiry)\n")
	default:
		return r.writePlain("Authentication: ✓ Authenticated until %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
}

// formError turns a failed submit into a CLI error carrying the form's message.
func formError(f *forms.Form, err error) error {
	if forms.IsFormError(err) {
		for _, name := range f.Fields() {
			if msg := f.FieldError(name); msg != "" {
				return fmt.Errorf("%w: %s", shared.ErrInvalidInput, msg)
			}
		}
		return err
	}
	if msg := f.Error(); msg != "" {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
	}
	return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
}
