package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/streetcode-platform/server/internal/sanitize"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Tag, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Tag, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByStreetcode returns the streetcode's tags in join-row order.
func (s *Service) ListByStreetcode(ctx context.Context, streetcodeID int64) ([]StreetcodeTag, error) {
	return s.repo.ListByStreetcode(ctx, streetcodeID)
}

func (s *Service) Create(ctx context.Context, title string) (*Tag, error) {
	cleaned, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByTitle(ctx, cleaned); err == nil && existing != nil {
		return nil, ErrTitleTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.repo.Create(ctx, cleaned)
}

func (s *Service) Update(ctx context.Context, id int64, title string) (*Tag, error) {
	cleaned, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, cleaned)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func cleanTitle(title string) (string, error) {
	cleaned := sanitize.Text(strings.TrimSpace(title))
	if cleaned == "" {
		return "", fmt.Errorf("tag title is required")
	}
	if len(cleaned) > 50 {
		return "", fmt.Errorf("tag title must be at most 50 characters")
	}
	return cleaned, nil
}
