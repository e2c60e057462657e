package sources

import (
	"context"
	"errors"
)

var (
	ErrCategoryNotFound = errors.New("source category not found")
	ErrContentNotFound  = errors.New("category content not found")
)

// Category groups external source links shown on a streetcode page.
type Category struct {
	ID      int64
	Title   string
	ImageID *int64
}

// CategoryContent is the free-text content tied to one
// streetcode/category pairing.
type CategoryContent struct {
	StreetcodeID int64
	CategoryID   int64
	Text         string
}

type CategoryParams struct {
	Title   string `validate:"required,max=100"`
	ImageID *int64
}

type ContentParams struct {
	StreetcodeID int64  `validate:"required,gt=0"`
	CategoryID   int64  `validate:"required,gt=0"`
	Text         string `validate:"required,max=4000"`
}

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategoriesByStreetcode(ctx context.Context, streetcodeID int64) ([]Category, error)
	CreateCategory(ctx context.Context, params CategoryParams) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, params CategoryParams) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	GetContent(ctx context.Context, streetcodeID, categoryID int64) (*CategoryContent, error)
	UpsertContent(ctx context.Context, params ContentParams) (*CategoryContent, error)
	DeleteContent(ctx context.Context, streetcodeID, categoryID int64) error
}
