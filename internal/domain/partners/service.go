package partners

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

func (s *Service) List(ctx context.Context) ([]Partner, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Partner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByStreetcode(ctx context.Context, streetcodeID int64) ([]Partner, error) {
	return s.repo.ListByStreetcode(ctx, streetcodeID)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Partner, error) {
	cleaned, err := s.prepare(params)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, cleaned)
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Partner, error) {
	cleaned, err := s.prepare(params)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, cleaned)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Link(ctx context.Context, partnerID, streetcodeID int64) error {
	return s.repo.Link(ctx, partnerID, streetcodeID)
}

func (s *Service) Unlink(ctx context.Context, partnerID, streetcodeID int64) error {
	return s.repo.Unlink(ctx, partnerID, streetcodeID)
}

func (s *Service) prepare(params CreateParams) (CreateParams, error) {
	params.Title = sanitize.Text(strings.TrimSpace(params.Title))
	params.Description = sanitize.HTML(params.Description)
	params.URLTitle = sanitize.Text(strings.TrimSpace(params.URLTitle))
	params.TargetURL = strings.TrimSpace(params.TargetURL)
	for i := range params.SourceLinks {
		params.SourceLinks[i].TargetURL = strings.TrimSpace(params.SourceLinks[i].TargetURL)
	}

	if err := s.validate.Struct(params); err != nil {
		return CreateParams{}, fmt.Errorf("invalid partner: %w", err)
	}
	return params, nil
}
