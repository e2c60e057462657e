package timeline

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("timeline item not found")

// Date view patterns control how the stored date renders on the client.
const (
	PatternYear      = "year"
	PatternMonthYear = "month_year"
	PatternDate      = "date"
)

type Item struct {
	ID              int64
	StreetcodeID    int64
	Date            time.Time
	DateViewPattern string
	Title           string
	Description     string
}

type CreateParams struct {
	StreetcodeID    int64     `validate:"required,gt=0"`
	Date            time.Time `validate:"required"`
	DateViewPattern string    `validate:"required,oneof=year month_year date"`
	Title           string    `validate:"required,max=60"`
	Description     string    `validate:"max=600"`
}

type UpdateParams = CreateParams

type Repository interface {
	ListByStreetcode(ctx context.Context, streetcodeID int64) ([]Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, params CreateParams) (*Item, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Item, error)
	Delete(ctx context.Context, id int64) error
}
