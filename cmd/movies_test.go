package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/cinefav/internal/controller"
	"github.com/desertthunder/cinefav/internal/models"
	"github.com/desertthunder/cinefav/internal/services"
	"github.com/desertthunder/cinefav/internal/shared"
	"github.com/desertthunder/cinefav/internal/tasks"
	tu "github.com/desertthunder/cinefav/internal/testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func seedMovies() []models.Movie {
	return []models.Movie{
		{ID: 1, Title: "Heat", Type: models.KindMovie, Director: "Michael Mann", Budget: "$60M", Location: "Los Angeles", Duration: 170, Time: "1995", Image: "http://fake/heat.jpg"},
		{ID: 2, Title: "Arrival", Type: models.KindMovie, Director: "Denis Villeneuve", Budget: "$47M", Location: "Montreal", Duration: 116, Time: "2016"},
		{ID: 3, Title: "Dark", Type: models.KindTVShow, Director: "Baran bo Odar", Budget: "$10M", Location: "Berlin", Duration: 60, Time: "2017"},
	}
}

func writeImage(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	tu.MustWriteFile(t, path, data)
	return path
}

func TestMoviesList(t *testing.T) {
	t.Run("renders a table of the first page", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := h.out.String()
		for _, want := range []string{"Title", "Director", "Heat", "Arrival", "Dark", "2h 50m", "page 1/1 • 3 of 3 favorites"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}

		reqs := h.fake.RequestsTo(services.PathList)
		if len(reqs) != 1 || reqs[0].Auth != "Bearer "+testToken {
			t.Errorf("expected one authorized list request, got %+v", reqs)
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		h := newHarness(t, testToken)

		if err := h.run("movies", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if h.out.String() != "No data available\n" {
			t.Errorf("unexpected output %q", h.out.String())
		}
	})

	t.Run("json output with sort and paging", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		err := h.run("movies", "list", "--json", "--sort", "title", "--desc", "--page-size", "2", "--page", "2")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var got listOutput
		if err := json.Unmarshal(h.out.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode output %q: %v", h.out.String(), err)
		}
		if got.Page != 2 || got.Pages != 2 || got.Total != 3 {
			t.Errorf("unexpected paging %+v", got)
		}
		if len(got.Movies) != 1 || got.Movies[0].Title != "Arrival" {
			t.Errorf("expected Arrival on the last page, got %+v", got.Movies)
		}
	})

	t.Run("filters and search", func(t *testing.T) {
		tests := []struct {
			name  string
			args  []string
			want  []string
			total int
		}{
			{name: "filter by type", args: []string{"--filter", "type=tv show"}, want: []string{"Dark"}, total: 1},
			{name: "filter by title column name", args: []string{"--filter", "Title=ar"}, want: []string{"Arrival", "Dark"}, total: 2},
			{name: "two filters", args: []string{"--filter", "type=movie", "--filter", "location=los"}, want: []string{"Heat"}, total: 1},
			{name: "fuzzy search", args: []string{"--search", "villeneuve"}, want: []string{"Arrival"}, total: 1},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h := newHarness(t, testToken, seedMovies()...)

				args := append([]string{"movies", "list", "--json"}, tt.args...)
				if err := h.run(args...); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}

				var got listOutput
				if err := json.Unmarshal(h.out.Bytes(), &got); err != nil {
					t.Fatalf("failed to decode output: %v", err)
				}
				if got.Total != tt.total {
					t.Errorf("expected %d rows, got %d", tt.total, got.Total)
				}
				for i, title := range tt.want {
					if i >= len(got.Movies) || got.Movies[i].Title != title {
						t.Errorf("expected %v, got %+v", tt.want, got.Movies)
						break
					}
				}
			})
		}
	})

	t.Run("hidden columns are left out", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "list", "--hide", "director", "--hide", "budget"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.out.String()
		if strings.Contains(out, "Director") || strings.Contains(out, "Michael Mann") {
			t.Errorf("expected director column to be hidden:\n%s", out)
		}
		if !strings.Contains(out, "Heat") {
			t.Errorf("expected titles to remain:\n%s", out)
		}
	})

	t.Run("rejects bad flags", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want error
		}{
			{name: "filter without value", args: []string{"--filter", "title"}, want: shared.ErrInvalidFlag},
			{name: "unknown filter column", args: []string{"--filter", "rating=5"}, want: shared.ErrInvalidArgument},
			{name: "unknown sort column", args: []string{"--sort", "rating"}, want: shared.ErrInvalidArgument},
			{name: "unknown hidden column", args: []string{"--hide", "rating"}, want: shared.ErrInvalidArgument},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h := newHarness(t, testToken, seedMovies()...)

				err := h.run(append([]string{"movies", "list"}, tt.args...)...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("requires a stored token", func(t *testing.T) {
		h := newHarness(t, "", seedMovies()...)

		err := h.run("movies", "list")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if len(h.fake.RequestsTo(services.PathList)) != 0 {
			t.Error("expected no list request without a token")
		}
	})
}

func TestMoviesView(t *testing.T) {
	t.Run("prints the record", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "view", "--id", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := h.out.String()
		for _, want := range []string{"Arrival", "Denis Villeneuve", "1h 56m", "Montreal"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
		if len(h.opened) != 0 {
			t.Error("expected nothing to be opened")
		}
	})

	t.Run("opens the poster", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "view", "--id", "1", "--open"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(h.opened) != 1 || h.opened[0] != "http://fake/heat.jpg" {
			t.Errorf("expected poster to be opened, got %v", h.opened)
		}
	})

	t.Run("refuses to open a missing poster", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "view", "--id", "2", "--open"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "view", "--id", "99"); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})
}

func TestMoviesAdd(t *testing.T) {
	addArgs := func(image string) []string {
		return []string{
			"movies", "add",
			"--title", "Parasite",
			"--type", "movie",
			"--director", "Bong Joon-ho",
			"--budget", "$11M",
			"--location", "Seoul",
			"--duration", "132",
			"--time", "2019",
			"--image", image,
		}
	}

	t.Run("uploads the record and refreshes", func(t *testing.T) {
		h := newHarness(t, testToken)
		image := writeImage(t, "parasite.png", pngHeader)

		if err := h.run(addArgs(image)...); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.out.String(), "✓ "+controller.MsgAdded) {
			t.Errorf("unexpected output %q", h.out.String())
		}

		reqs := h.fake.RequestsTo(services.PathCreate)
		if len(reqs) != 1 {
			t.Fatalf("expected one create request, got %d", len(reqs))
		}
		req := reqs[0]
		if req.Fields["type"] != models.KindMovie {
			t.Errorf("expected canonical type, got %q", req.Fields["type"])
		}
		if req.Fields["duration"] != "132" {
			t.Errorf("expected duration 132, got %q", req.Fields["duration"])
		}
		if req.HasField("id") {
			t.Error("expected no id on create")
		}
		file, ok := req.Files["image"]
		if !ok || file.Name != "parasite.png" || file.ContentType != "image/png" {
			t.Errorf("expected png upload, got %+v", file)
		}

		if n := len(h.fake.RequestsTo(services.PathList)); n != 1 {
			t.Errorf("expected one refresh after the write, got %d", n)
		}
		if movies := h.fake.Movies(); len(movies) != 1 || movies[0].Title != "Parasite" {
			t.Errorf("expected the movie to be stored, got %+v", movies)
		}
	})

	t.Run("rejects a file that is not an image", func(t *testing.T) {
		h := newHarness(t, testToken)
		notes := writeImage(t, "notes.txt", []byte("just some text"))

		err := h.run(addArgs(notes)...)
		if err == nil || !strings.Contains(err.Error(), controller.MsgNotAnImage) {
			t.Errorf("expected not-an-image error, got %v", err)
		}
		if len(h.fake.RequestsTo(services.PathCreate)) != 0 {
			t.Error("expected no create request")
		}
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		h := newHarness(t, testToken)
		args := addArgs(writeImage(t, "p.png", pngHeader))
		args[5] = "documentary"

		if err := h.run(args...); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("requires every field", func(t *testing.T) {
		h := newHarness(t, testToken)
		args := addArgs(writeImage(t, "p.png", pngHeader))
		args[9] = "   "

		err := h.run(args...)
		if err != nil {
			t.Fatalf("whitespace counts as a value, got %v", err)
		}

		h2 := newHarness(t, testToken)
		args = addArgs(writeImage(t, "p.png", pngHeader))
		args[13] = "ninety"

		err = h2.run(args...)
		if !errors.Is(err, shared.ErrInvalidInput) || !strings.Contains(err.Error(), controller.MsgRequired) {
			t.Errorf("expected required-fields error, got %v", err)
		}
		if len(h2.fake.RequestsTo(services.PathCreate)) != 0 {
			t.Error("expected no create request")
		}
	})

	t.Run("reports the service message", func(t *testing.T) {
		h := newHarness(t, testToken)
		h.fake.Reply(services.PathCreate, http.StatusBadRequest, `{"message":"Title already exists"}`)

		err := h.run(addArgs(writeImage(t, "p.png", pngHeader))...)
		if err == nil || !strings.Contains(err.Error(), "Title already exists") {
			t.Errorf("expected service message, got %v", err)
		}
		if n := len(h.fake.RequestsTo(services.PathList)); n != 0 {
			t.Errorf("expected no refresh after a failure, got %d", n)
		}
	})

	t.Run("falls back when the service sends no message", func(t *testing.T) {
		h := newHarness(t, testToken)
		h.fake.Reply(services.PathCreate, http.StatusInternalServerError, "")

		err := h.run(addArgs(writeImage(t, "p.png", pngHeader))...)
		if err == nil || !strings.Contains(err.Error(), controller.MsgAddFailed) {
			t.Errorf("expected %q, got %v", controller.MsgAddFailed, err)
		}
	})
}

func TestMoviesUpdate(t *testing.T) {
	t.Run("keeps unset fields and the stored poster", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "update", "--id", "1", "--title", "Heat (Director's Cut)"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.out.String(), "✓ "+controller.MsgUpdated) {
			t.Errorf("unexpected output %q", h.out.String())
		}

		reqs := h.fake.RequestsTo(services.PathUpdate)
		if len(reqs) != 1 {
			t.Fatalf("expected one update request, got %d", len(reqs))
		}
		req := reqs[0]
		if req.Fields["id"] != "1" || req.Fields["director"] != "Michael Mann" || req.Fields["duration"] != "170" {
			t.Errorf("expected stored values to be sent, got %v", req.Fields)
		}
		if req.HasField("image") {
			t.Error("expected no image part when none was given")
		}

		updated := h.fake.Movies()[0]
		if updated.Title != "Heat (Director's Cut)" || updated.Image != "http://fake/heat.jpg" {
			t.Errorf("unexpected stored record %+v", updated)
		}
	})

	t.Run("uploads a new poster", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "update", "--id", "2", "--image", writeImage(t, "arrival.png", pngHeader)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if img := h.fake.Movies()[1].Image; img != "http://fake/arrival.png" {
			t.Errorf("expected new poster, got %q", img)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "update", "--id", "42", "--title", "x"); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
		if len(h.fake.RequestsTo(services.PathUpdate)) != 0 {
			t.Error("expected no update request")
		}
	})
}

func TestMoviesDelete(t *testing.T) {
	t.Run("with --yes", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "delete", "--id", "3", "--yes"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.out.String(), `✓ Deleted "Dark"`) {
			t.Errorf("unexpected output %q", h.out.String())
		}
		if len(h.fake.Movies()) != 2 {
			t.Errorf("expected two movies left, got %d", len(h.fake.Movies()))
		}

		reqs := h.fake.RequestsTo(services.PathDelete)
		if len(reqs) != 1 || !strings.HasPrefix(reqs[0].ContentType, "application/json") {
			t.Errorf("expected one JSON delete request, got %+v", reqs)
		}
	})

	t.Run("asks for confirmation", func(t *testing.T) {
		tests := []struct {
			name    string
			answer  string
			deleted bool
		}{
			{name: "confirmed", answer: "y\n", deleted: true},
			{name: "declined", answer: "n\n", deleted: false},
			{name: "no answer", answer: "", deleted: false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h := newHarness(t, testToken, seedMovies()...)
				h.runner.input = strings.NewReader(tt.answer)

				if err := h.run("movies", "delete", "--id", "1"); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if !strings.Contains(h.out.String(), `Are you sure you want to delete "Heat"?`) {
					t.Errorf("expected prompt, got %q", h.out.String())
				}

				sent := len(h.fake.RequestsTo(services.PathDelete)) == 1
				if sent != tt.deleted {
					t.Errorf("expected delete sent=%v, got %v", tt.deleted, sent)
				}
			})
		}
	})

	t.Run("reports a failed delete", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)
		h.fake.Reply(services.PathDelete, http.StatusInternalServerError, "")

		err := h.run("movies", "delete", "--id", "1", "--yes")
		if err == nil || !strings.Contains(err.Error(), controller.MsgDeleteFailed) {
			t.Errorf("expected %q, got %v", controller.MsgDeleteFailed, err)
		}
		if len(h.fake.Movies()) != 3 {
			t.Error("expected nothing to be deleted")
		}
	})
}

func TestMoviesExport(t *testing.T) {
	t.Run("writes the filtered rows", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)
		path := filepath.Join(t.TempDir(), "out", "favorites.md")

		if err := h.run("movies", "export", "--format", "md", "--output", path, "--filter", "type=movie", "--sort", "title"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.out.String(), "✓ Exported 2 favorites to "+path) {
			t.Errorf("unexpected output %q", h.out.String())
		}

		content := tu.MustReadFile(t, path)
		if strings.Contains(content, "Dark") {
			t.Error("expected filtered row to be left out")
		}
		arrival, heat := strings.Index(content, "Arrival"), strings.Index(content, "Heat")
		if arrival < 0 || heat < 0 || arrival > heat {
			t.Errorf("expected sorted rows in export:\n%s", content)
		}
	})

	t.Run("rejects unknown formats before loading", func(t *testing.T) {
		h := newHarness(t, testToken, seedMovies()...)

		if err := h.run("movies", "export", "--format", "xlsx"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if len(h.fake.Requests()) != 0 {
			t.Error("expected no request")
		}
	})
}

func TestMoviesPoster(t *testing.T) {
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/heat.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngHeader)
	}))
	defer images.Close()

	movies := seedMovies()
	movies[0].Image = images.URL + "/heat.png"
	movies[1].Image = images.URL + "/missing.png"

	t.Run("saves the poster", func(t *testing.T) {
		h := newHarness(t, testToken, movies...)
		path := filepath.Join(t.TempDir(), "heat.png")

		if err := h.run("movies", "poster", "--id", "1", "--output", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := tu.MustReadFile(t, path); got != string(pngHeader) {
			t.Errorf("unexpected poster bytes %q", got)
		}
	})

	t.Run("reports download failures", func(t *testing.T) {
		h := newHarness(t, testToken, movies...)

		err := h.run("movies", "poster", "--id", "2", "--output", filepath.Join(t.TempDir(), "x.png"))
		if err == nil || !strings.Contains(err.Error(), "status 404") {
			t.Errorf("expected 404 error, got %v", err)
		}
	})
}

func TestMoviesPosters(t *testing.T) {
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/heat.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngHeader)
	}))
	defer images.Close()

	t.Run("downloads the filtered collection", func(t *testing.T) {
		movies := seedMovies()
		movies[0].Image = images.URL + "/heat.png"
		h := newHarness(t, testToken, movies...)
		dir := t.TempDir()

		if err := h.run("movies", "posters", "--output-dir", dir, "--filter", "type=Movie"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got := tu.MustReadFile(t, filepath.Join(dir, "1_heat.png")); got != string(pngHeader) {
			t.Errorf("unexpected poster bytes %q", got)
		}
		if _, err := os.Stat(filepath.Join(dir, tasks.ManifestName)); err != nil {
			t.Errorf("expected manifest: %v", err)
		}
		if out := h.out.String(); !strings.Contains(out, "1 downloaded, 1 skipped, 0 failed") {
			t.Errorf("unexpected summary %q", out)
		}
	})

	t.Run("fails when a download fails", func(t *testing.T) {
		movies := seedMovies()
		movies[0].Image = images.URL + "/missing.png"
		h := newHarness(t, testToken, movies...)

		err := h.run("movies", "posters", "--output-dir", t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "1 posters failed") {
			t.Errorf("expected failure count, got %v", err)
		}
		if !strings.Contains(h.out.String(), "0 downloaded, 2 skipped, 1 failed") {
			t.Errorf("unexpected summary %q", h.out.String())
		}
	})
}
