package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/desertthunder/cinefav/internal/models"
	"github.com/desertthunder/cinefav/internal/shared"
	tu "github.com/desertthunder/cinefav/internal/testing"
)

func dune() models.Movie {
	return models.Movie{
		ID: 1, Title: "Dune", Type: models.KindMovie, Director: "Villeneuve", Budget: "$165M",
		Location: "Budapest", Duration: 155, Time: "20:00", Image: "http://x/dune.jpg",
	}
}

func newCatalog(t *testing.T, movies ...models.Movie) (*CatalogService, *tu.FakeCatalog, *tu.MemoryCredentials) {
	t.Helper()
	fake := tu.NewFakeCatalog(t, "tok", movies...)
	creds := tu.NewMemoryCredentials("tok")
	api := NewAPIService(APIOpts{BaseURL: fake.URL(), Credentials: creds})
	return NewCatalogService(api), fake, creds
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()

	t.Run("List", func(t *testing.T) {
		t.Run("Decodes Records In Order", func(t *testing.T) {
			second := dune()
			second.ID, second.Title = 2, "Arrival"
			svc, fake, _ := newCatalog(t, dune(), second)

			movies, err := svc.List(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(movies) != 2 || movies[0] != dune() || movies[1].Title != "Arrival" {
				t.Errorf("unexpected movies %+v", movies)
			}

			reqs := fake.RequestsTo(PathList)
			if len(reqs) != 1 || reqs[0].Method != http.MethodGet || reqs[0].Auth != "Bearer tok" {
				t.Errorf("unexpected list request %+v", reqs)
			}
		})

		t.Run("Missing Data Is Empty", func(t *testing.T) {
			svc, fake, _ := newCatalog(t)
			fake.Reply(PathList, http.StatusOK, `{}`)

			movies, err := svc.List(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if movies == nil || len(movies) != 0 {
				t.Errorf("expected empty non-nil list, got %#v", movies)
			}
		})

		t.Run("Rejection", func(t *testing.T) {
			svc, fake, _ := newCatalog(t)
			fake.Reply(PathList, http.StatusInternalServerError, `{"message":"db down"}`)

			_, err := svc.List(ctx)
			apiErr, ok := IsRejection(err)
			if !ok {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != 500 || apiErr.Message != "db down" {
				t.Errorf("unexpected APIError %+v", apiErr)
			}
		})

		t.Run("Malformed Body Is A Transport Failure", func(t *testing.T) {
			svc, fake, _ := newCatalog(t)
			fake.Reply(PathList, http.StatusOK, `not json`)

			_, err := svc.List(ctx)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if _, ok := IsRejection(err); ok {
				t.Error("malformed body must not be a rejection")
			}
		})

		t.Run("Not Authenticated", func(t *testing.T) {
			svc, fake, creds := newCatalog(t)
			_ = creds.Clear(ctx)

			_, err := svc.List(ctx)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if len(fake.Requests()) != 0 {
				t.Error("expected no request without a token")
			}
		})
	})

	t.Run("Create", func(t *testing.T) {
		svc, fake, _ := newCatalog(t)
		m := dune()
		m.ID = 0
		img := models.Image{Name: "dune.png", ContentType: "image/png", Data: []byte("png")}

		if err := svc.Create(ctx, m, img); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		reqs := fake.RequestsTo(PathCreate)
		if len(reqs) != 1 {
			t.Fatalf("expected one create request, got %d", len(reqs))
		}
		req := reqs[0]
		for _, f := range models.RequiredFields {
			if req.Fields[f] != m.Get(f) {
				t.Errorf("field %s: expected %q, got %q", f, m.Get(f), req.Fields[f])
			}
		}
		if req.HasField(models.FieldID) {
			t.Error("create must not send an id")
		}
		if file := req.Files[models.FieldImage]; file.Name != "dune.png" || string(file.Data) != "png" {
			t.Errorf("unexpected image part %+v", file)
		}
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("Without New Image Omits The Part", func(t *testing.T) {
			svc, fake, _ := newCatalog(t, dune())
			m := dune()
			m.Title = "Dune: Part One"

			if err := svc.Update(ctx, m, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			req := fake.RequestsTo(PathUpdate)[0]
			if req.Fields[models.FieldID] != "1" {
				t.Errorf("expected id 1, got %q", req.Fields[models.FieldID])
			}
			if req.HasField(models.FieldImage) {
				t.Error("expected no image field when no new image was attached")
			}
			if got := fake.Movies()[0]; got.Image != dune().Image || got.Title != "Dune: Part One" {
				t.Errorf("stored image should be preserved, got %+v", got)
			}
		})

		t.Run("With New Image", func(t *testing.T) {
			svc, fake, _ := newCatalog(t, dune())
			img := models.Image{Name: "new.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}

			if err := svc.Update(ctx, dune(), &img); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			req := fake.RequestsTo(PathUpdate)[0]
			if req.Files[models.FieldImage].ContentType != "image/jpeg" {
				t.Errorf("expected image/jpeg part, got %+v", req.Files[models.FieldImage])
			}
		})

		t.Run("Rejection Without Message", func(t *testing.T) {
			svc, fake, _ := newCatalog(t, dune())
			fake.Reply(PathUpdate, http.StatusBadRequest, `oops`)

			err := svc.Update(ctx, dune(), nil)
			apiErr, ok := IsRejection(err)
			if !ok || apiErr.Message != "" {
				t.Errorf("expected APIError without message, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Sends JSON Id", func(t *testing.T) {
			svc, fake, _ := newCatalog(t, dune())

			if err := svc.Delete(ctx, 1); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			req := fake.RequestsTo(PathDelete)[0]
			if req.ContentType != "application/json" || req.JSON["id"] != float64(1) {
				t.Errorf("unexpected delete request %+v", req)
			}
			if len(fake.Movies()) != 0 {
				t.Error("expected movie removed server side")
			}
		})

		t.Run("Non 2xx", func(t *testing.T) {
			svc, _, _ := newCatalog(t)
			if _, ok := IsRejection(svc.Delete(ctx, 7)); !ok {
				t.Error("expected rejection for unknown id")
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			svc, fake, _ := newCatalog(t)

			token, err := svc.Login(ctx, LoginRequest{Email: "a@b.co", Password: "pw", Remember: true})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token != "tok" {
				t.Errorf("expected tok, got %q", token)
			}

			req := fake.RequestsTo(PathLogin)[0]
			if req.Auth != "" {
				t.Error("login must be anonymous")
			}
			if req.Fields["email"] != "a@b.co" || req.Fields["password"] != "pw" || req.Fields["remember"] != "true" {
				t.Errorf("unexpected login fields %v", req.Fields)
			}
		})

		t.Run("Rejected With Message", func(t *testing.T) {
			svc, fake, _ := newCatalog(t)
			fake.Reply(PathLogin, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)

			_, err := svc.Login(ctx, LoginRequest{Email: "a@b.co", Password: "x"})
			apiErr, ok := IsRejection(err)
			if !ok || apiErr.Message != "Invalid credentials" {
				t.Errorf("expected rejection with message, got %v", err)
			}
		})

		t.Run("Non 200 Success Status Is Rejected", func(t *testing.T) {
			svc, fake, _ := newCatalog(t)
			fake.Reply(PathLogin, http.StatusCreated, `{"accessToken":"x"}`)

			if _, ok := IsRejection(func() error { _, err := svc.Login(ctx, LoginRequest{}); return err }()); !ok {
				t.Error("expected 201 to be treated as a rejection")
			}
		})

		t.Run("Missing Token", func(t *testing.T) {
			svc, fake, _ := newCatalog(t)
			fake.Reply(PathLogin, http.StatusOK, `{}`)

			_, err := svc.Login(ctx, LoginRequest{Email: "a@b.co", Password: "pw"})
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("Register", func(t *testing.T) {
		svc, fake, _ := newCatalog(t)

		req := RegisterRequest{Name: "Ann", Email: "a@b.co", Password: "pw", ConfirmPassword: "pw"}
		if err := svc.Register(ctx, req); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		sent := fake.RequestsTo(PathRegister)[0]
		if sent.Fields["name"] != "Ann" || sent.Fields["confirmPassword"] != "pw" {
			t.Errorf("unexpected register fields %v", sent.Fields)
		}

		req.ConfirmPassword = "other"
		if _, ok := IsRejection(svc.Register(ctx, req)); !ok {
			t.Error("expected rejection for mismatched passwords")
		}
	})

	t.Run("Find", func(t *testing.T) {
		svc, _, _ := newCatalog(t, dune())

		m, err := svc.Find(ctx, 1)
		if err != nil || m.Title != "Dune" {
			t.Errorf("expected Dune, got %+v (%v)", m, err)
		}
		if _, err := svc.Find(ctx, 99); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		api := NewAPIService(APIOpts{
			BaseURL:     "http://example.com",
			Transport:   tu.NewMockRoundTripper(nil, errors.New("connection refused")),
			Credentials: tu.NewMemoryCredentials("tok"),
		})
		svc := NewCatalogService(api)

		err := svc.Delete(ctx, 1)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if _, ok := IsRejection(err); ok {
			t.Error("transport failure must not be a rejection")
		}
	})
}
