package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/streetcode-platform/server/internal/sanitize"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) ListCategoriesByStreetcode(ctx context.Context, streetcodeID int64) ([]Category, error) {
	return s.repo.ListCategoriesByStreetcode(ctx, streetcodeID)
}

func (s *Service) CreateCategory(ctx context.Context, params CategoryParams) (*Category, error) {
	cleaned, err := s.prepareCategory(params)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateCategory(ctx, cleaned)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, params CategoryParams) (*Category, error) {
	cleaned, err := s.prepareCategory(params)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateCategory(ctx, id, cleaned)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) GetContent(ctx context.Context, streetcodeID, categoryID int64) (*CategoryContent, error) {
	return s.repo.GetContent(ctx, streetcodeID, categoryID)
}

// UpsertContent creates or replaces the free-text content for a
// streetcode/category pair. The category must exist first.
func (s *Service) UpsertContent(ctx context.Context, params ContentParams) (*CategoryContent, error) {
	params.Text = sanitize.HTML(params.Text)
	if err := s.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid category content: %w", err)
	}
	if _, err := s.repo.GetCategory(ctx, params.CategoryID); err != nil {
		return nil, err
	}
	return s.repo.UpsertContent(ctx, params)
}

func (s *Service) DeleteContent(ctx context.Context, streetcodeID, categoryID int64) error {
	return s.repo.DeleteContent(ctx, streetcodeID, categoryID)
}

func (s *Service) prepareCategory(params CategoryParams) (CategoryParams, error) {
	params.Title = sanitize.Text(strings.TrimSpace(params.Title))
	if err := s.validate.Struct(params); err != nil {
		return CategoryParams{}, fmt.Errorf("invalid source category: %w", err)
	}
	return params, nil
}
