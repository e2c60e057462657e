package streetcodes

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("streetcode not found")
	ErrIndexTaken = errors.New("streetcode index already exists")
	ErrURLTaken   = errors.New("transliteration url already exists")
)

// Streetcode type discriminator. Person profiles carry the name fields,
// event profiles leave them empty.
const (
	TypePerson = "person"
	TypeEvent  = "event"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusDeleted   = "deleted"
)

type Streetcode struct {
	ID                 int64
	Index              int
	Type               string
	Title              string
	DateString         string
	Alias              string
	TransliterationURL string
	Status             string
	Teaser             string
	EventStartDate     *time.Time
	EventEndDate       *time.Time

	// Person-only fields.
	FirstName string
	LastName  string
	Rank      string

	ViewCount int64
	TagIDs    []int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Filters struct {
	Status string
	Type   string
	Query  string
	TagID  *int64
}

type Pagination struct {
	Limit int
	After string
}

type ListResult struct {
	Streetcodes []Streetcode
	NextCursor  string
}

// TagAssignment attaches a tag to a streetcode preserving the per-pair
// display order and visibility.
type TagAssignment struct {
	TagID     int64
	Index     int
	IsVisible bool
}

type CreateParams struct {
	Index              int    `validate:"required,gt=0"`
	Type               string `validate:"required,oneof=person event"`
	Title              string `validate:"required,max=100"`
	DateString         string `validate:"max=100"`
	Alias              string `validate:"max=50"`
	TransliterationURL string `validate:"required,max=150"`
	Teaser             string `validate:"max=650"`
	EventStartDate     *time.Time
	EventEndDate       *time.Time
	FirstName          string `validate:"max=50"`
	LastName           string `validate:"max=50"`
	Rank               string `validate:"max=50"`
	Tags               []TagAssignment
}

// UpdateParams carries full-replace update semantics: every field is written,
// absent optional values reset the column.
type UpdateParams = CreateParams

type Repository interface {
	List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error)
	GetByID(ctx context.Context, id int64) (*Streetcode, error)
	GetByIndex(ctx context.Context, index int) (*Streetcode, error)
	GetByTransliterationURL(ctx context.Context, url string) (*Streetcode, error)
	Create(ctx context.Context, params CreateParams) (*Streetcode, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Streetcode, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, onlyPublished bool) (int64, error)
}
