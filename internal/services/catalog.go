package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/desertthunder/cinefav/internal/models"
	"github.com/desertthunder/cinefav/internal/shared"
)

// APIError is a request the service answered with a non-success status.
type APIError struct {
	StatusCode int
	Message    string // the body's "message", empty when absent
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("service returned status %d: %s", e.StatusCode, e.Message)
}

// IsRejection reports whether err is an [*APIError] and returns it.
func IsRejection(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// CatalogService implements [Catalog] and [Authenticator] against the movie favorites service.
type CatalogService struct {
	api *APIService
}

// NewCatalogService wraps api.
func NewCatalogService(api *APIService) *CatalogService {
	return &CatalogService{api: api}
}

// List fetches every record in the order the service returns them. A body without "data" yields an empty list.
func (s *CatalogService) List(ctx context.Context) ([]models.Movie, error) {
	resp, err := s.api.Get(ctx, PathList, true)
	if err != nil {
		return nil, transportError(err)
	}
	if !resp.OK() {
		return nil, rejection(resp)
	}

	var list models.ListResponse
	if err := resp.Decode(&list); err != nil {
		return nil, transportError(err)
	}
	if list.Data == nil {
		return []models.Movie{}, nil
	}
	return list.Data, nil
}

// Create uploads a new record together with its poster.
func (s *CatalogService) Create(ctx context.Context, movie models.Movie, image models.Image) error {
	form := NewMultipartForm().
		Fields(movie.FormValues(false)).
		File(models.FieldImage, image)

	return s.write(ctx, PathCreate, form)
}

// Update replaces a record. The image part is sent only when image is non-nil.
func (s *CatalogService) Update(ctx context.Context, movie models.Movie, image *models.Image) error {
	form := NewMultipartForm().Fields(movie.FormValues(true))
	if image != nil {
		form.File(models.FieldImage, *image)
	}

	return s.write(ctx, PathUpdate, form)
}

// Delete removes the record with the given id.
func (s *CatalogService) Delete(ctx context.Context, id int) error {
	resp, err := s.api.PostJSON(ctx, PathDelete, models.DeleteRequest{ID: id}, true)
	if err != nil {
		return transportError(err)
	}
	if !resp.OK() {
		return rejection(resp)
	}
	return nil
}

// Login exchanges credentials for a bearer token. Only a 200 carrying a non-empty accessToken succeeds.
func (s *CatalogService) Login(ctx context.Context, req LoginRequest) (string, error) {
	form := NewMultipartForm().
		Field("email", req.Email).
		Field("password", req.Password).
		Field("remember", rememberValue(req.Remember))

	resp, err := s.api.PostMultipart(ctx, PathLogin, form, false)
	if err != nil {
		return "", transportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", rejection(resp)
	}

	var login models.LoginResponse
	if err := resp.Decode(&login); err != nil {
		return "", transportError(err)
	}
	if login.AccessToken == "" {
		return "", fmt.Errorf("%w: response has no access token", shared.ErrAPIRequest)
	}
	return login.AccessToken, nil
}

// Register creates an account. Only a 200 succeeds.
func (s *CatalogService) Register(ctx context.Context, req RegisterRequest) error {
	form := NewMultipartForm().
		Field("name", req.Name).
		Field("email", req.Email).
		Field("password", req.Password).
		Field("confirmPassword", req.ConfirmPassword)

	resp, err := s.api.PostMultipart(ctx, PathRegister, form, false)
	if err != nil {
		return transportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return rejection(resp)
	}
	return nil
}

// Find lists the catalog and returns the record with id.
func (s *CatalogService) Find(ctx context.Context, id int) (models.Movie, error) {
	movies, err := s.List(ctx)
	if err != nil {
		return models.Movie{}, err
	}
	for _, m := range movies {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Movie{}, fmt.Errorf("%w: id %s", shared.ErrMovieNotFound, strconv.Itoa(id))
}

func (s *CatalogService) write(ctx context.Context, path string, form *MultipartForm) error {
	resp, err := s.api.PostMultipart(ctx, path, form, true)
	if err != nil {
		return transportError(err)
	}
	if !resp.OK() {
		return rejection(resp)
	}
	return nil
}

func rejection(resp *APIResponse) error {
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Message()}
}

func transportError(err error) error {
	return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
}

func rememberValue(remember bool) string {
	if remember {
		return "true"
	}
	return ""
}
