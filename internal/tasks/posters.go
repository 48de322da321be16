package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/desertthunder/cinefav/internal/formatter"
	"github.com/desertthunder/cinefav/internal/models"
	"golang.org/x/time/rate"
)

const ManifestName = "manifest.json"

// PosterOpts contains configuration for bulk poster downloads.
type PosterOpts struct {
	OutputDir  string       // Base output directory (default: posters_{epoch})
	NumWorkers int          // Concurrent workers (default: 5, max: 10)
	RateLimit  float64      // Downloads started per second (default: 5)
	Client     *http.Client // HTTP client for image requests (nil uses a 30 second timeout)
}

// PosterResult is the outcome for a single movie.
type PosterResult struct {
	MovieID int    `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	File    string `json:"file,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`

	index int
}

// Success reports whether the poster was written to disk.
func (r PosterResult) Success() bool { return r.File != "" && r.Error == "" }

// PosterDownloadResult summarizes a bulk download.
type PosterDownloadResult struct {
	Total           int            `json:"total"`
	Downloaded      int            `json:"downloaded"`
	Skipped         int            `json:"skipped"`
	Failed          int            `json:"failed"`
	OutputDirectory string         `json:"-"`
	ManifestPath    string         `json:"-"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Results         []PosterResult `json:"posters"`
}

type posterJob struct {
	index int
	movie models.Movie
}

// DownloadPosters saves the poster of every movie concurrently with rate limiting and progress tracking.
//
// Movies whose image is empty or only a local preview are skipped. Failures are recorded per movie and do not
// stop the rest of the batch. Results keep the order of movies.
func DownloadPosters(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	movies []models.Movie,
	opts PosterOpts,
) (*PosterDownloadResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("posters_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &PosterDownloadResult{
		Total:           len(movies),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PosterResult, 0, len(movies)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan posterJob, len(movies))
	results := make(chan PosterResult, len(movies))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go posterWorker(ctx, &wg, jobs, results, opts)
	}

	// The producer sends skipped results too; results closes only after it returns.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, m := range movies {
			if ctx.Err() != nil {
				return
			}
			if !hasRemoteImage(m) {
				results <- PosterResult{MovieID: m.ID, Title: m.Title, Skipped: true, index: i}
				continue
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			jobs <- posterJob{index: i, movie: m}
			sendProgress(prog, queuedPosterUpdate(i+1, len(movies), m))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		switch {
		case res.Skipped:
			result.Skipped++
			sendProgress(prog, posterSkippedUpdate(completed, len(movies), res))
		case res.Success():
			result.Downloaded++
			sendProgress(prog, posterSavedUpdate(completed, len(movies), res))
		default:
			result.Failed++
			sendProgress(prog, posterFailedUpdate(completed, len(movies), res))
		}
	}

	slices.SortFunc(result.Results, func(a, b PosterResult) int { return a.index - b.index })

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("poster download interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("download completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// posterWorker saves posters from the jobs channel until it is closed or ctx is done.
func posterWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan posterJob,
	results chan<- PosterResult,
	opts PosterOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := PosterResult{MovieID: job.movie.ID, Title: job.movie.Title, URL: job.movie.Image, index: job.index}
		dest := filepath.Join(opts.OutputDir, PosterFileName(job.movie))
		if file, err := formatter.SavePoster(ctx, opts.Client, job.movie, dest); err != nil {
			res.Error = err.Error()
		} else {
			res.File = file
		}
		results <- res
	}
}

func writeManifest(result *PosterDownloadResult, path string) error {
	result.GeneratedAt = time.Now().UTC()
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func hasRemoteImage(m models.Movie) bool {
	return strings.HasPrefix(m.Image, "http://") || strings.HasPrefix(m.Image, "https://")
}

// PosterFileName builds a stable file name such as "12_the-dark-knight.jpg".
//
// The extension comes from the image URL's path and defaults to ".jpg".
func PosterFileName(m models.Movie) string {
	ext := ".jpg"
	if u, err := url.Parse(m.Image); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" && len(e) <= 5 {
			ext = e
		}
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(m.Title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return fmt.Sprintf("%d%s", m.ID, ext)
	}
	return fmt.Sprintf("%d_%s%s", m.ID, slug, ext)
}
