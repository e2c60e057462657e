package tags

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("tag not found")
	ErrTitleTaken = errors.New("tag title already exists")
)

type Tag struct {
	ID    int64
	Title string
}

// StreetcodeTag is a tag as attached to one streetcode, carrying the
// per-pair ordering and visibility metadata from the join row.
type StreetcodeTag struct {
	Tag
	Index     int
	IsVisible bool
}

type Repository interface {
	List(ctx context.Context) ([]Tag, error)
	GetByID(ctx context.Context, id int64) (*Tag, error)
	GetByTitle(ctx context.Context, title string) (*Tag, error)
	ListByStreetcode(ctx context.Context, streetcodeID int64) ([]StreetcodeTag, error)
	Create(ctx context.Context, title string) (*Tag, error)
	Update(ctx context.Context, id int64, title string) (*Tag, error)
	Delete(ctx context.Context, id int64) error
}
