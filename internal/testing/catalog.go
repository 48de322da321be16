package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/cinefav/internal/models"
)

// RecordedRequest is one request as seen by [FakeCatalog].
type RecordedRequest struct {
	Method      string
	Path        string
	Auth        string // raw Authorization header
	RequestID   string
	Accept      string
	ContentType string
	Fields      map[string]string
	Files       map[string]RecordedFile
	JSON        map[string]any
}

// RecordedFile is a multipart file part.
type RecordedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// HasField reports whether a multipart text or file part named name was sent.
func (r RecordedRequest) HasField(name string) bool {
	if _, ok := r.Fields[name]; ok {
		return true
	}
	_, ok := r.Files[name]
	return ok
}

// Reply is a canned response for one path.
type Reply struct {
	Status int
	Body   string // raw body; empty writes nothing
}

// FakeCatalog is an in-process movie favorites service.
//
// It implements the happy paths of every endpoint, records every request, and lets tests override the reply for
// any path.
type FakeCatalog struct {
	Server *httptest.Server

	mu       sync.Mutex
	movies   []models.Movie
	nextID   int
	token    string
	replies  map[string]Reply
	requests []RecordedRequest
}

// NewFakeCatalog starts a fake service seeded with movies. Authorized endpoints require "Bearer <token>".
// The server is closed when the test ends.
func NewFakeCatalog(t *testing.T, token string, movies ...models.Movie) *FakeCatalog {
	t.Helper()

	f := &FakeCatalog{
		movies:  append([]models.Movie{}, movies...),
		token:   token,
		replies: map[string]Reply{},
		nextID:  1,
	}
	for _, m := range movies {
		if m.ID >= f.nextID {
			f.nextID = m.ID + 1
		}
	}

	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server base URL.
func (f *FakeCatalog) URL() string { return f.Server.URL }

// Reply overrides the response for path.
func (f *FakeCatalog) Reply(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[path] = Reply{Status: status, Body: body}
}

// Requests returns a copy of every request received so far.
func (f *FakeCatalog) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest{}, f.requests...)
}

// RequestsTo returns the recorded requests for path.
func (f *FakeCatalog) RequestsTo(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Movies returns the server-side collection.
func (f *FakeCatalog) Movies() []models.Movie {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Movie{}, f.movies...)
}

func (f *FakeCatalog) handle(w http.ResponseWriter, r *http.Request) {
	rec := record(r)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, rec)

	if reply, ok := f.replies[r.URL.Path]; ok {
		w.WriteHeader(reply.Status)
		if reply.Body != "" {
			io.WriteString(w, reply.Body)
		}
		return
	}

	switch r.URL.Path {
	case "/login":
		if rec.Fields["email"] == "" || rec.Fields["password"] == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"accessToken": f.token})
		return
	case "/register":
		if rec.Fields["password"] != rec.Fields["confirmPassword"] {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Passwords do not match"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Registered"})
		return
	}

	if f.token != "" && rec.Auth != "Bearer "+f.token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}

	switch r.URL.Path {
	case "/getAll":
		writeJSON(w, http.StatusOK, models.ListResponse{Data: f.movies})
	case "/addFav":
		m := movieFromFields(rec.Fields)
		m.ID = f.nextID
		f.nextID++
		if file, ok := rec.Files[models.FieldImage]; ok {
			m.Image = "http://fake/" + file.Name
		}
		f.movies = append(f.movies, m)
		writeJSON(w, http.StatusCreated, m)
	case "/updateFav":
		m := movieFromFields(rec.Fields)
		for i := range f.movies {
			if f.movies[i].ID == m.ID {
				m.Image = f.movies[i].Image
				if file, ok := rec.Files[models.FieldImage]; ok {
					m.Image = "http://fake/" + file.Name
				}
				f.movies[i] = m
				writeJSON(w, http.StatusOK, m)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Movie not found"})
	case "/deleteFav":
		id, _ := rec.JSON["id"].(float64)
		for i := range f.movies {
			if f.movies[i].ID == int(id) {
				f.movies = append(f.movies[:i], f.movies[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		http.NotFound(w, r)
	}
}

func record(r *http.Request) RecordedRequest {
	rec := RecordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		Auth:        r.Header.Get("Authorization"),
		RequestID:   r.Header.Get("X-Request-ID"),
		Accept:      r.Header.Get("Accept"),
		ContentType: r.Header.Get("Content-Type"),
		Fields:      map[string]string{},
		Files:       map[string]RecordedFile{},
	}

	switch {
	case strings.HasPrefix(rec.ContentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return rec
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				rec.Fields[k] = v[0]
			}
		}
		for k, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			fh := headers[0]
			file, err := fh.Open()
			if err != nil {
				continue
			}
			data, _ := io.ReadAll(file)
			file.Close()
			rec.Files[k] = RecordedFile{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}
		}
	case strings.HasPrefix(rec.ContentType, "application/json"):
		_ = json.NewDecoder(r.Body).Decode(&rec.JSON)
	}
	return rec
}

func movieFromFields(fields map[string]string) models.Movie {
	id, _ := strconv.Atoi(fields[models.FieldID])
	m := models.Movie{ID: id}
	for _, f := range models.RequiredFields {
		_ = m.Set(f, fields[f])
	}
	return m
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
