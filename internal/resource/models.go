package resource

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Defaults applied to optional upload fields.
const (
	DefaultType   = "notes"
	DefaultFolder = "Uncategorized"
)

// Categories always present in a grouped listing.
const (
	CategoryNotes     = "notes"
	CategoryQuestions = "questions"
)

// Status tracks a row through the upload saga.
type Status string

const (
	// StatusPending marks a row whose object upload has not been confirmed.
	StatusPending Status = "pending"
	// StatusReady marks a fully ingested resource.
	StatusReady Status = "ready"
)

// Resource is the metadata of one uploaded study resource.
type Resource struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	FileURL     string    `json:"fileUrl"`
	Year        string    `json:"year"`
	Subject     string    `json:"subject"`
	Course      string    `json:"course"`
	Type        string    `json:"type"`
	Folder      string    `json:"folder"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	ObjectKey   string    `json:"-"`
	Status      Status    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Fields are the descriptive form values sent alongside an upload.
type Fields struct {
	Title   string
	Year    string
	Subject string
	Course  string
	Type    string
	Folder  string
}

// Upload is a single file submitted for ingestion.
type Upload struct {
	Fields
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// withDefaults is the single place optional fields are defaulted:
// title falls back to the file name, type to "notes", folder to "Uncategorized".
// A blank value counts as absent; other values are kept exactly as submitted.
func (f Fields) withDefaults(filename string) Fields {
	if isBlank(f.Title) {
		f.Title = filename
	}
	if isBlank(f.Type) {
		f.Type = DefaultType
	}
	if isBlank(f.Folder) {
		f.Folder = DefaultFolder
	}
	return f
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Grouped is the browse view: category -> folder -> resources.
type Grouped map[string]map[string][]Resource

// GroupByCategory nests resources by type and folder, preserving input order
// inside each folder. The notes and questions categories are always present.
func GroupByCategory(list []Resource) Grouped {
	grouped := Grouped{
		CategoryNotes:     {},
		CategoryQuestions: {},
	}
	for _, r := range list {
		folders, ok := grouped[r.Type]
		if !ok {
			folders = map[string][]Resource{}
			grouped[r.Type] = folders
		}
		folders[r.Folder] = append(folders[r.Folder], r)
	}
	return grouped
}
