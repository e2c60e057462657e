package toponyms

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

func (s *Service) List(ctx context.Context, query string, limit int) ([]Toponym, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, strings.TrimSpace(query), limit)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Toponym, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByStreetcode(ctx context.Context, streetcodeID int64) ([]Toponym, error) {
	return s.repo.ListByStreetcode(ctx, streetcodeID)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Toponym, error) {
	cleaned, err := s.prepare(params)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, cleaned)
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Toponym, error) {
	cleaned, err := s.prepare(params)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, cleaned)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Link(ctx context.Context, toponymID, streetcodeID int64) error {
	return s.repo.Link(ctx, toponymID, streetcodeID)
}

func (s *Service) Unlink(ctx context.Context, toponymID, streetcodeID int64) error {
	return s.repo.Unlink(ctx, toponymID, streetcodeID)
}

func (s *Service) prepare(params CreateParams) (CreateParams, error) {
	params.StreetName = sanitize.Text(strings.TrimSpace(params.StreetName))
	params.Community = sanitize.Text(strings.TrimSpace(params.Community))
	params.AdminRegionOld = sanitize.Text(strings.TrimSpace(params.AdminRegionOld))
	params.AdminRegionNew = sanitize.Text(strings.TrimSpace(params.AdminRegionNew))
	params.Gromada = sanitize.Text(strings.TrimSpace(params.Gromada))

	if err := s.validate.Struct(params); err != nil {
		return CreateParams{}, fmt.Errorf("invalid toponym: %w", err)
	}
	if (params.Latitude == nil) != (params.Longitude == nil) {
		return CreateParams{}, fmt.Errorf("invalid toponym: latitude and longitude must be provided together")
	}
	if params.Latitude != nil {
		if *params.Latitude < -90 || *params.Latitude > 90 {
			return CreateParams{}, fmt.Errorf("invalid toponym: latitude out of range")
		}
		if *params.Longitude < -180 || *params.Longitude > 180 {
			return CreateParams{}, fmt.Errorf("invalid toponym: longitude out of range")
		}
	}
	return params, nil
}
