package toponyms

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("toponym not found")

// Coordinate is the optional geographic point owned one-to-one by a toponym.
type Coordinate struct {
	ID        int64
	Latitude  float64
	Longitude float64
}

type Toponym struct {
	ID             int64
	StreetName     string
	Community      string
	AdminRegionOld string
	AdminRegionNew string
	Gromada        string
	Coordinate     *Coordinate
}

type CreateParams struct {
	StreetName     string `validate:"required,max=150"`
	Community      string `validate:"max=150"`
	AdminRegionOld string `validate:"max=150"`
	AdminRegionNew string `validate:"max=150"`
	Gromada        string `validate:"max=150"`
	Latitude       *float64
	Longitude      *float64
}

type UpdateParams = CreateParams

type Repository interface {
	List(ctx context.Context, query string, limit int) ([]Toponym, error)
	GetByID(ctx context.Context, id int64) (*Toponym, error)
	ListByStreetcode(ctx context.Context, streetcodeID int64) ([]Toponym, error)
	Create(ctx context.Context, params CreateParams) (*Toponym, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Toponym, error)
	Delete(ctx context.Context, id int64) error
	Link(ctx context.Context, toponymID, streetcodeID int64) error
	Unlink(ctx context.Context, toponymID, streetcodeID int64) error
}
