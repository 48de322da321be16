// package models defines the data model for the movie favorites client
package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind is the category of a catalog entry.
type Kind = string

const (
	KindMovie  Kind = "Movie"
	KindTVShow Kind = "TV Show"
)

// Kinds lists the categories offered by the add/edit form, in display order.
var Kinds = []Kind{KindMovie, KindTVShow}

// Field names as they appear in JSON bodies and multipart forms.
const (
	FieldID       = "id"
	FieldTitle    = "title"
	FieldType     = "type"
	FieldDirector = "director"
	FieldBudget   = "budget"
	FieldLocation = "location"
	FieldDuration = "duration"
	FieldTime     = "time"
	FieldImage    = "image"
)

// RequiredFields are the form fields that must be non-empty before a create or update.
var RequiredFields = []string{FieldTitle, FieldType, FieldDirector, FieldBudget, FieldLocation, FieldDuration, FieldTime}

// Movie is a single favorites entry. ID zero means the record has not been persisted yet.
type Movie struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Type     Kind   `json:"type"`
	Director string `json:"director"`
	Budget   string `json:"budget"`
	Location string `json:"location"`
	Duration int    `json:"duration"` // minutes
	Time     string `json:"time"`
	Image    string `json:"image"` // remote URL, or a data URL preview of a pending upload
}

// IsNew reports whether the record has not been assigned an id by the service.
func (m Movie) IsNew() bool { return m.ID == 0 }

// Get returns the form representation of a field. Unknown names return "".
func (m Movie) Get(field string) string {
	switch field {
	case FieldID:
		return strconv.Itoa(m.ID)
	case FieldTitle:
		return m.Title
	case FieldType:
		return m.Type
	case FieldDirector:
		return m.Director
	case FieldBudget:
		return m.Budget
	case FieldLocation:
		return m.Location
	case FieldDuration:
		if m.Duration == 0 {
			return ""
		}
		return strconv.Itoa(m.Duration)
	case FieldTime:
		return m.Time
	case FieldImage:
		return m.Image
	}
	return ""
}

// Set assigns a field from its form representation.
//
// Duration input that is not an integer is stored as 0, which fails validation.
func (m *Movie) Set(field, value string) error {
	switch field {
	case FieldTitle:
		m.Title = value
	case FieldType:
		m.Type = value
	case FieldDirector:
		m.Director = value
	case FieldBudget:
		m.Budget = value
	case FieldLocation:
		m.Location = value
	case FieldDuration:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			n = 0
		}
		m.Duration = n
	case FieldTime:
		m.Time = value
	case FieldImage:
		m.Image = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// MissingFields returns the required fields that are empty, in [RequiredFields] order.
func (m Movie) MissingFields() []string {
	var missing []string
	for _, f := range RequiredFields {
		if f == FieldDuration {
			if m.Duration <= 0 {
				missing = append(missing, f)
			}
			continue
		}
		if m.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Validate checks the submission invariant.
func (m Movie) Validate() error {
	if missing := m.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// FormValues returns the multipart fields of a create (withID false) or update (withID true) request.
//
// The image is not included; it travels as a file part.
func (m Movie) FormValues(withID bool) [][2]string {
	values := make([][2]string, 0, len(RequiredFields)+1)
	if withID {
		values = append(values, [2]string{FieldID, strconv.Itoa(m.ID)})
	}
	for _, f := range RequiredFields {
		values = append(values, [2]string{f, m.Get(f)})
	}
	return values
}

// UnmarshalJSON accepts id and duration either as numbers or numeric strings.
func (m *Movie) UnmarshalJSON(data []byte) error {
	type plain Movie
	var aux struct {
		plain
		ID       json.RawMessage `json:"id"`
		Duration json.RawMessage `json:"duration"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*m = Movie(aux.plain)

	var err error
	if m.ID, err = flexibleInt(aux.ID); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	if m.Duration, err = flexibleInt(aux.Duration); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	return nil
}

func flexibleInt(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var n json.Number
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		if s == "" {
			return 0, nil
		}
		n = json.Number(s)
	} else if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}

	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return 0, err
		}
		i = int64(f)
	}
	return int(i), nil
}

// Image is a poster attached on the client and not yet uploaded.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewImage builds an Image, sniffing the content type from the bytes when the extension is not telling.
func NewImage(name string, data []byte) Image {
	ct := contentTypeByExt(filepath.Ext(name))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return Image{Name: filepath.Base(name), ContentType: ct, Data: data}
}

// IsImage reports whether the content type is an image/* type.
func (i Image) IsImage() bool { return strings.HasPrefix(i.ContentType, "image/") }

// DataURL renders the image as a base64 data URL, used as the form preview.
func (i Image) DataURL() string {
	return "data:" + i.ContentType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

func contentTypeByExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	}
	return ""
}

// ListResponse is the body of GET /getAll.
type ListResponse struct {
	Data []Movie `json:"data"`
}

// LoginResponse is the body of a successful POST /login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse is the error body returned by the service.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeleteRequest is the JSON body of POST /deleteFav.
type DeleteRequest struct {
	ID int `json:"id"`
}
