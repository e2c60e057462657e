package facts

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("fact not found")

// Fact is a short illustrated story attached to a streetcode.
type Fact struct {
	ID           int64
	StreetcodeID int64
	Index        int
	Title        string
	FactContent  string
	ImageID      *int64
}

type CreateParams struct {
	StreetcodeID int64  `validate:"required,gt=0"`
	Index        int    `validate:"gte=0"`
	Title        string `validate:"required,max=68"`
	FactContent  string `validate:"required,max=600"`
	ImageID      *int64
}

type UpdateParams = CreateParams

type Repository interface {
	ListByStreetcode(ctx context.Context, streetcodeID int64) ([]Fact, error)
	GetByID(ctx context.Context, id int64) (*Fact, error)
	Create(ctx context.Context, params CreateParams) (*Fact, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Fact, error)
	Delete(ctx context.Context, id int64) error
}
