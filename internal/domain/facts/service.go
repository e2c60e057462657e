package facts

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

func (s *Service) ListByStreetcode(ctx context.Context, streetcodeID int64) ([]Fact, error) {
	return s.repo.ListByStreetcode(ctx, streetcodeID)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Fact, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Fact, error) {
	cleaned, err := s.prepare(params)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, cleaned)
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Fact, error) {
	cleaned, err := s.prepare(params)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, cleaned)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) prepare(params CreateParams) (CreateParams, error) {
	params.Title = sanitize.Text(strings.TrimSpace(params.Title))
	params.FactContent = sanitize.HTML(params.FactContent)
	if err := s.validate.Struct(params); err != nil {
		return CreateParams{}, fmt.Errorf("invalid fact: %w", err)
	}
	return params, nil
}
