package streetcodes

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
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

func (s *Service) List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error) {
	return s.repo.List(ctx, filters, pagination)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Streetcode, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByIndex(ctx context.Context, index int) (*Streetcode, error) {
	return s.repo.GetByIndex(ctx, index)
}

func (s *Service) GetByTransliterationURL(ctx context.Context, rawURL string) (*Streetcode, error) {
	return s.repo.GetByTransliterationURL(ctx, strings.TrimSpace(rawURL))
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Streetcode, error) {
	cleaned, err := s.prepare(params)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, cleaned)
}

// Update replaces the full streetcode record, including its tag assignments.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Streetcode, error) {
	cleaned, err := s.prepare(params)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, cleaned)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case StatusDraft, StatusPublished, StatusDeleted:
	default:
		return FilterError{Field: "status", Message: "must be one of draft, published, deleted"}
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context, onlyPublished bool) (int64, error) {
	return s.repo.Count(ctx, onlyPublished)
}

func (s *Service) prepare(params CreateParams) (CreateParams, error) {
	params.Title = sanitize.Text(strings.TrimSpace(params.Title))
	params.Alias = sanitize.Text(strings.TrimSpace(params.Alias))
	params.DateString = sanitize.Text(strings.TrimSpace(params.DateString))
	params.FirstName = sanitize.Text(strings.TrimSpace(params.FirstName))
	params.LastName = sanitize.Text(strings.TrimSpace(params.LastName))
	params.Rank = sanitize.Text(strings.TrimSpace(params.Rank))
	params.TransliterationURL = strings.TrimSpace(params.TransliterationURL)
	params.Teaser = sanitize.HTML(params.Teaser)

	if err := s.validate.Struct(params); err != nil {
		return CreateParams{}, FilterError{Field: "streetcode", Message: err.Error()}
	}
	if params.Type == TypePerson && (params.FirstName == "" || params.LastName == "") {
		return CreateParams{}, FilterError{Field: "first_name,last_name", Message: "required for person streetcodes"}
	}
	if params.Type == TypeEvent && (params.FirstName != "" || params.LastName != "" || params.Rank != "") {
		return CreateParams{}, FilterError{Field: "first_name,last_name,rank", Message: "not allowed for event streetcodes"}
	}
	if params.EventStartDate != nil && params.EventEndDate != nil && params.EventEndDate.Before(*params.EventStartDate) {
		return CreateParams{}, FilterError{Field: "event_end_date", Message: "must not precede event_start_date"}
	}
	return params, nil
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func ParseFilters(values url.Values) (Filters, Pagination, error) {
	filters := Filters{}
	pagination := Pagination{Limit: 50}

	filters.Query = strings.TrimSpace(values.Get("q"))

	status := strings.TrimSpace(values.Get("status"))
	switch status {
	case "", StatusDraft, StatusPublished, StatusDeleted:
		filters.Status = status
	default:
		return filters, pagination, FilterError{Field: "status", Message: "must be one of draft, published, deleted"}
	}

	kind := strings.TrimSpace(values.Get("type"))
	switch kind {
	case "", TypePerson, TypeEvent:
		filters.Type = kind
	default:
		return filters, pagination, FilterError{Field: "type", Message: "must be person or event"}
	}

	if rawTag := strings.TrimSpace(values.Get("tag")); rawTag != "" {
		tagID, err := strconv.ParseInt(rawTag, 10, 64)
		if err != nil || tagID < 1 {
			return filters, pagination, FilterError{Field: "tag", Message: "must be a positive number"}
		}
		filters.TagID = &tagID
	}

	limit, err := parseLimit(values)
	if err != nil {
		return filters, pagination, err
	}
	pagination.Limit = limit
	pagination.After = strings.TrimSpace(values.Get("after"))

	return filters, pagination, nil
}

func parseLimit(values url.Values) (int, error) {
	limit := 50
	rawLimit := strings.TrimSpace(values.Get("limit"))
	if rawLimit == "" {
		return limit, nil
	}
	parsed, err := strconv.Atoi(rawLimit)
	if err != nil {
		return 0, FilterError{Field: "limit", Message: "must be a number"}
	}
	if parsed < 1 || parsed > 200 {
		return 0, FilterError{Field: "limit", Message: "must be between 1 and 200"}
	}
	return parsed, nil
}
