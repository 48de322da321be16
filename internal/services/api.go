// API service for making raw HTTP requests to the movie favorites service
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinefav/internal/models"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// APIOpts configures an [APIService].
type APIOpts struct {
	BaseURL     string
	Transport   http.RoundTripper // base transport, defaults to [http.DefaultTransport]
	Timeout     time.Duration
	Credentials CredentialProvider
	RateLimit   float64 // requests per second, zero disables limiting
	Logger      *log.Logger
}

// APIService provides methods for making raw HTTP requests to the movie favorites service.
type APIService struct {
	baseURL string
	anon    *http.Client
	authed  *http.Client
}

// NewAPIService creates a new API service instance.
//
// Both clients share the request id, logging and rate limit middleware; the authorized client additionally
// injects the bearer token from opts.Credentials.
func NewAPIService(opts APIOpts) *APIService {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	common := Chain(opts.Transport,
		WithRequestID(),
		WithLogging(opts.Logger),
		WithRateLimit(NewLimiter(opts.RateLimit)),
	)

	return &APIService{
		baseURL: baseURL,
		anon:    &http.Client{Transport: common, Timeout: opts.Timeout},
		authed:  &http.Client{Transport: Chain(common, WithBearer(opts.Credentials)), Timeout: opts.Timeout},
	}
}

// BaseURL returns the normalized service root.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Message returns the body's "message" field, or "" when absent or not a string.
func (r *APIResponse) Message() string {
	if !r.IsJSON {
		return ""
	}
	obj, ok := r.JSONData.(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := obj["message"].(string)
	return msg
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Do sends req using the anonymous or authorized client and reads the full body.
func (a *APIService) Do(req *http.Request, auth bool) (*APIResponse, error) {
	client := a.anon
	if auth {
		client = a.authed
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string, auth bool) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return a.Do(req, auth)
}

// PostJSON performs a POST request with a JSON encoded payload.
func (a *APIService) PostJSON(ctx context.Context, path string, payload any, auth bool) (*APIResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return a.Do(req, auth)
}

// PostMultipart performs a POST request with a multipart/form-data body.
func (a *APIService) PostMultipart(ctx context.Context, path string, form *MultipartForm, auth bool) (*APIResponse, error) {
	body, contentType, err := form.Encode()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return a.Do(req, auth)
}

// MultipartForm accumulates ordered text fields and file parts.
type MultipartForm struct {
	fields [][2]string
	files  []filePart
}

type filePart struct {
	field string
	image models.Image
}

// NewMultipartForm starts an empty form.
func NewMultipartForm() *MultipartForm { return &MultipartForm{} }

// Field appends a text field.
func (f *MultipartForm) Field(name, value string) *MultipartForm {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// Fields appends each name/value pair in order.
func (f *MultipartForm) Fields(pairs [][2]string) *MultipartForm {
	f.fields = append(f.fields, pairs...)
	return f
}

// File appends a file part carrying the image's own content type.
func (f *MultipartForm) File(name string, image models.Image) *MultipartForm {
	f.files = append(f.files, filePart{field: name, image: image})
	return f
}

// Encode writes the form and returns the body and its Content-Type header value.
func (f *MultipartForm) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", kv[0], err)
		}
	}

	for _, fp := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fp.field, fp.image.Name))
		ct := fp.image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(fp.image.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
