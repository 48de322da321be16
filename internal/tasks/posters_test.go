package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/cinefav/internal/models"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newImageServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.HasPrefix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestDownloadPosters(t *testing.T) {
	srv, _ := newImageServer(t)

	tests := []struct {
		name           string
		movies         []models.Movie
		wantDownloaded int
		wantSkipped    int
		wantFailed     int
	}{
		{
			name: "all posters",
			movies: []models.Movie{
				{ID: 1, Title: "Heat", Image: srv.URL + "/heat.png"},
				{ID: 2, Title: "Arrival", Image: srv.URL + "/arrival.jpg"},
			},
			wantDownloaded: 2,
		},
		{
			name: "skips movies without a remote image",
			movies: []models.Movie{
				{ID: 1, Title: "Heat", Image: srv.URL + "/heat.png"},
				{ID: 2, Title: "Arrival"},
				{ID: 3, Title: "Dark", Image: "data:image/png;base64,iVBORw0KGgo="},
			},
			wantDownloaded: 1,
			wantSkipped:    2,
		},
		{
			name: "records failures without stopping",
			movies: []models.Movie{
				{ID: 1, Title: "Heat", Image: srv.URL + "/missing/heat.png"},
				{ID: 2, Title: "Arrival", Image: srv.URL + "/arrival.jpg"},
			},
			wantDownloaded: 1,
			wantFailed:     1,
		},
		{
			name: "empty collection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			progressCh := make(chan ProgressUpdate, 100)

			result, err := DownloadPosters(context.Background(), progressCh, tt.movies, PosterOpts{
				OutputDir:  dir,
				NumWorkers: 2,
				RateLimit:  100,
				Client:     srv.Client(),
			})
			close(progressCh)

			if err != nil {
				t.Fatalf("DownloadPosters() error = %v", err)
			}
			if result.Total != len(tt.movies) {
				t.Errorf("Total = %d, want %d", result.Total, len(tt.movies))
			}
			if result.Downloaded != tt.wantDownloaded {
				t.Errorf("Downloaded = %d, want %d", result.Downloaded, tt.wantDownloaded)
			}
			if result.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %d, want %d", result.Skipped, tt.wantSkipped)
			}
			if result.Failed != tt.wantFailed {
				t.Errorf("Failed = %d, want %d", result.Failed, tt.wantFailed)
			}

			for i, res := range result.Results {
				if res.MovieID != tt.movies[i].ID {
					t.Errorf("result %d is movie %d, want %d", i, res.MovieID, tt.movies[i].ID)
				}
				if !res.Success() {
					continue
				}
				data, err := os.ReadFile(res.File)
				if err != nil {
					t.Errorf("poster %s not written: %v", res.File, err)
				} else if string(data) != string(pngBytes) {
					t.Errorf("poster %s has unexpected contents", res.File)
				}
			}

			manifestData, err := os.ReadFile(filepath.Join(dir, ManifestName))
			if err != nil {
				t.Fatalf("failed to read manifest: %v", err)
			}
			if result.ManifestPath != filepath.Join(dir, ManifestName) {
				t.Errorf("ManifestPath = %s", result.ManifestPath)
			}

			var manifest PosterDownloadResult
			if err := json.Unmarshal(manifestData, &manifest); err != nil {
				t.Fatalf("failed to parse manifest: %v", err)
			}
			if manifest.Total != len(tt.movies) || len(manifest.Results) != len(tt.movies) {
				t.Errorf("manifest total = %d with %d posters, want %d", manifest.Total, len(manifest.Results), len(tt.movies))
			}
			if manifest.GeneratedAt.IsZero() {
				t.Error("manifest should record when it was generated")
			}
		})
	}

	t.Run("defaults the output directory", func(t *testing.T) {
		t.Chdir(t.TempDir())

		result, err := DownloadPosters(context.Background(), nil, nil, PosterOpts{})
		if err != nil {
			t.Fatalf("DownloadPosters() error = %v", err)
		}
		if !strings.HasPrefix(result.OutputDirectory, "posters_") {
			t.Errorf("OutputDirectory = %s, want posters_ prefix", result.OutputDirectory)
		}
	})

	t.Run("stops when cancelled", func(t *testing.T) {
		srv, hits := newImageServer(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		movies := []models.Movie{
			{ID: 1, Title: "Heat", Image: srv.URL + "/heat.png"},
			{ID: 2, Title: "Arrival", Image: srv.URL + "/arrival.png"},
		}
		_, err := DownloadPosters(ctx, nil, movies, PosterOpts{OutputDir: t.TempDir(), RateLimit: 100})
		if err == nil {
			t.Fatal("expected cancellation error")
		}
		if hits.Load() != 0 {
			t.Errorf("expected no downloads, got %d", hits.Load())
		}
	})

	t.Run("cancelled while skipping", func(t *testing.T) {
		for run := 0; run < 5; run++ {
			ctx, cancel := context.WithCancel(context.Background())
			images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				cancel()
				w.Write(pngBytes)
			}))

			movies := []models.Movie{
				{ID: 1, Title: "Heat", Image: images.URL + "/heat.png"},
				{ID: 2, Title: "Arrival", Image: images.URL + "/arrival.png"},
			}
			for i := 0; i < 50000; i++ {
				movies = append(movies, models.Movie{ID: 3 + i, Title: "No poster"})
			}

			result, err := DownloadPosters(ctx, nil, movies, PosterOpts{
				OutputDir:  t.TempDir(),
				NumWorkers: 1,
				RateLimit:  1e9,
				Client:     images.Client(),
			})
			images.Close()
			cancel()

			if err == nil {
				t.Fatalf("run %d: expected cancellation error", run)
			}
			if !errors.Is(err, context.Canceled) {
				t.Errorf("run %d: expected context.Canceled, got %v", run, err)
			}
			if result == nil || len(result.Results) > len(movies) {
				t.Errorf("run %d: unexpected partial result %+v", run, result)
			}
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		progressCh := make(chan ProgressUpdate, 100)
		movies := []models.Movie{
			{ID: 1, Title: "Heat", Image: srv.URL + "/heat.png"},
			{ID: 2, Title: "Arrival"},
		}

		if _, err := DownloadPosters(context.Background(), progressCh, movies, PosterOpts{OutputDir: t.TempDir(), RateLimit: 100, Client: srv.Client()}); err != nil {
			t.Fatalf("DownloadPosters() error = %v", err)
		}
		close(progressCh)

		phases := map[Phase]int{}
		for u := range progressCh {
			phases[u.Phase]++
		}
		for _, p := range []Phase{QueuePoster, DownloadPoster, SkipPoster, WriteManifest} {
			if phases[p] != 1 {
				t.Errorf("expected one %s update, got %d", p, phases[p])
			}
		}
	})
}

func TestPosterFileName(t *testing.T) {
	tests := []struct {
		name  string
		movie models.Movie
		want  string
	}{
		{name: "slug and extension", movie: models.Movie{ID: 12, Title: "The Dark Knight", Image: "https://img.example.com/p/tdk.PNG"}, want: "12_the-dark-knight.png"},
		{name: "query string ignored", movie: models.Movie{ID: 3, Title: "Heat", Image: "https://img.example.com/heat.webp?size=large"}, want: "3_heat.webp"},
		{name: "default extension", movie: models.Movie{ID: 4, Title: "Arrival", Image: "https://img.example.com/poster"}, want: "4_arrival.jpg"},
		{name: "punctuation collapsed", movie: models.Movie{ID: 5, Title: "  Mad Max: Fury Road!! ", Image: "https://x/y.jpg"}, want: "5_mad-max-fury-road.jpg"},
		{name: "no usable title", movie: models.Movie{ID: 6, Title: "???", Image: "https://x/y.gif"}, want: "6.gif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PosterFileName(tt.movie); got != tt.want {
				t.Errorf("PosterFileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{
		QueuePoster:    "queue_poster",
		DownloadPoster: "download_poster",
		SkipPoster:     "skip_poster",
		WriteManifest:  "write_manifest",
		Phase(99):      "",
	} {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}

func TestSendProgress(t *testing.T) {
	t.Run("nil channel", func(t *testing.T) {
		sendProgress(nil, ProgressUpdate{Message: "dropped"})
	})

	t.Run("full channel does not block", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		sendProgress(ch, ProgressUpdate{Message: "first"})
		sendProgress(ch, ProgressUpdate{Message: "second"})
		if got := (<-ch).Message; got != "first" {
			t.Errorf("expected first update, got %q", got)
		}
	})
}
