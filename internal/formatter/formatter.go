// package formatter provides functions to export the movie collection to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/cinefav/internal/models"
	"github.com/desertthunder/cinefav/internal/shared"
)

// Format is an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat accepts csv, md/markdown and txt/text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
}

var headers = []string{"ID", "Title", "Type", "Director", "Budget", "Location", "Duration", "Time", "Image"}

// ExportToCSV converts movies to CSV with columns: ID, Title, Type, Director, Budget, Location, Duration, Time, Image
func ExportToCSV(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range movies {
		record := []string{
			strconv.Itoa(m.ID),
			m.Title,
			m.Type,
			m.Director,
			m.Budget,
			m.Location,
			strconv.Itoa(m.Duration),
			m.Time,
			m.Image,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders movies as a Markdown table under a heading.
func ExportToMarkdown(movies []models.Movie, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Favorites"
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Entries**: %d\n\n", len(movies))

	buf.WriteString("| " + strings.Join(headers[1:], " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(headers)-1) + "\n")

	for _, m := range movies {
		image := ""
		if m.Image != "" && !strings.HasPrefix(m.Image, "data:") {
			image = fmt.Sprintf("![%s](%s)", mdEscape(m.Title), m.Image)
		}
		cells := []string{m.Title, m.Type, m.Director, m.Budget, m.Location, FormatDuration(m.Duration), m.Time}
		for i := range cells {
			cells[i] = mdEscape(cells[i])
		}
		cells = append(cells, image)
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts movies to numbered plain text lines.
func ExportToText(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Favorites: %d\n\n", len(movies))
	for i, m := range movies {
		fmt.Fprintf(&buf, "%d. %s (%s) - %s [%s]\n", i+1, m.Title, m.Type, m.Director, FormatDuration(m.Duration))
		fmt.Fprintf(&buf, "   %s, %s, %s\n", m.Budget, m.Location, m.Time)
	}

	return buf.Bytes(), nil
}

// Export renders movies in format.
func Export(format Format, movies []models.Movie) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(movies)
	case FormatMarkdown:
		return ExportToMarkdown(movies, "")
	case FormatText:
		return ExportToText(movies)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
}

// WriteExport renders movies and writes them to path, defaulting to favorites.{format}.
func WriteExport(format Format, movies []models.Movie, path string) (string, error) {
	if path == "" {
		path = "favorites." + string(format)
	}

	data, err := Export(format, movies)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// FormatDuration renders minutes as "2h 35m". Zero renders as "-".
func FormatDuration(minutes int) string {
	switch {
	case minutes <= 0:
		return "-"
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes%60 == 0:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes.
//
// A nil client uses one with a 30 second timeout.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if strings.HasPrefix(url, "data:") {
		return nil, fmt.Errorf("%w: poster has not been uploaded yet", shared.ErrInvalidArgument)
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// SavePoster downloads a movie's poster to path. An empty path uses the URL's base name.
func SavePoster(ctx context.Context, client *http.Client, movie models.Movie, path string) (string, error) {
	data, err := DownloadImage(ctx, client, movie.Image)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = filepath.Base(movie.Image)
		if path == "." || path == "/" {
			path = fmt.Sprintf("poster_%d", movie.ID)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write poster: %w", err)
	}
	return path, nil
}
