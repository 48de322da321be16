// package services defines the interfaces and HTTP clients for the movie favorites service
package services

import (
	"context"

	"github.com/desertthunder/cinefav/internal/models"
)

// CredentialProvider is the narrow view of the credential store used by the API client.
//
// Implemented by repositories.CredentialRepository and an in-memory store in tests.
type CredentialProvider interface {
	// Token returns the current bearer token, or shared.ErrNotAuthenticated when there is none.
	Token(ctx context.Context) (string, error)

	// SetToken replaces the bearer token.
	SetToken(ctx context.Context, token string) error

	// Clear forgets the bearer token.
	Clear(ctx context.Context) error
}

// Catalog is the authorized CRUD surface of the movie favorites service.
type Catalog interface {
	// List fetches every record (GET /getAll).
	List(ctx context.Context) ([]models.Movie, error)

	// Create uploads a new record with its poster (POST /addFav).
	Create(ctx context.Context, movie models.Movie, image models.Image) error

	// Update replaces a record (POST /updateFav). A nil image keeps the stored poster.
	Update(ctx context.Context, movie models.Movie, image *models.Image) error

	// Delete removes a record by id (POST /deleteFav).
	Delete(ctx context.Context, id int) error
}

// Authenticator is the anonymous account surface of the service.
type Authenticator interface {
	// Login exchanges credentials for a bearer token (POST /login).
	Login(ctx context.Context, req LoginRequest) (string, error)

	// Register creates an account (POST /register).
	Register(ctx context.Context, req RegisterRequest) error
}

// LoginRequest holds the login form fields.
type LoginRequest struct {
	Email    string
	Password string
	Remember bool
}

// RegisterRequest holds the registration form fields.
type RegisterRequest struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Service endpoints.
const (
	PathList     = "/getAll"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathCreate   = "/addFav"
	PathUpdate   = "/updateFav"
	PathDelete   = "/deleteFav"
)
