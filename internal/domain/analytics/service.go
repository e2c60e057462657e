package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/streetcode-platform/server/internal/domain/ids"
	"github.com/streetcode-platform/server/internal/sanitize"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) CreateCoordinate(ctx context.Context, streetcodeID int64, latitude, longitude float64) (*Coordinate, error) {
	if latitude < -90 || latitude > 90 {
		return nil, fmt.Errorf("invalid coordinate: latitude out of range")
	}
	if longitude < -180 || longitude > 180 {
		return nil, fmt.Errorf("invalid coordinate: longitude out of range")
	}
	return s.repo.CreateCoordinate(ctx, streetcodeID, latitude, longitude)
}

func (s *Service) GetCoordinate(ctx context.Context, id int64) (*Coordinate, error) {
	return s.repo.GetCoordinate(ctx, id)
}

func (s *Service) ListCoordinatesByStreetcode(ctx context.Context, streetcodeID int64) ([]Coordinate, error) {
	return s.repo.ListCoordinatesByStreetcode(ctx, streetcodeID)
}

func (s *Service) DeleteCoordinate(ctx context.Context, id int64) error {
	return s.repo.DeleteCoordinate(ctx, id)
}

// CreateRecord mints a QR id and creates the statistic record with its
// counter at zero. The target coordinate must exist and must belong to the
// submitted streetcode.
func (s *Service) CreateRecord(ctx context.Context, params CreateRecordParams) (*StatisticRecord, error) {
	params.Address = sanitize.Text(strings.TrimSpace(params.Address))
	if err := s.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid statistic record: %w", err)
	}

	coordinate, err := s.repo.GetCoordinate(ctx, params.CoordinateID)
	if err != nil {
		return nil, err
	}
	if coordinate.StreetcodeID != params.StreetcodeID {
		return nil, fmt.Errorf("invalid statistic record: coordinate %d does not belong to streetcode %d", params.CoordinateID, params.StreetcodeID)
	}

	qrID, err := ids.NewQrID()
	if err != nil {
		return nil, fmt.Errorf("mint qr id: %w", err)
	}
	return s.repo.CreateRecord(ctx, params, qrID)
}

// TouchByQr records one scan and returns the current record.
func (s *Service) TouchByQr(ctx context.Context, qrID string) (*StatisticRecord, error) {
	if err := ids.ValidateQrID(qrID); err != nil {
		return nil, err
	}
	return s.repo.TouchRecordByQr(ctx, strings.ToUpper(strings.TrimSpace(qrID)))
}

func (s *Service) GetRecord(ctx context.Context, id int64) (*StatisticRecord, error) {
	return s.repo.GetRecord(ctx, id)
}

func (s *Service) ListRecordsByStreetcode(ctx context.Context, streetcodeID int64) ([]StatisticRecord, error) {
	return s.repo.ListRecordsByStreetcode(ctx, streetcodeID)
}

func (s *Service) ExistsByQr(ctx context.Context, qrID string) (bool, error) {
	if err := ids.ValidateQrID(qrID); err != nil {
		return false, err
	}
	return s.repo.ExistsByQr(ctx, strings.ToUpper(strings.TrimSpace(qrID)))
}

func (s *Service) DeleteRecord(ctx context.Context, id int64) error {
	return s.repo.DeleteRecord(ctx, id)
}
