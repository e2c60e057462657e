package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/domain/analytics"
)

var _ analytics.Repository = (*AnalyticsRepository)(nil)

type AnalyticsRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *AnalyticsRepository) CreateCoordinate(ctx context.Context, streetcodeID int64, latitude, longitude float64) (*analytics.Coordinate, error) {
	queryer := r.queryer()
	var coordinate analytics.Coordinate
	err := queryer.QueryRow(ctx, `
INSERT INTO streetcode_coordinates (streetcode_id, latitude, longitude)
VALUES ($1, $2, $3)
RETURNING id, streetcode_id, latitude, longitude
`, streetcodeID, latitude, longitude).Scan(
		&coordinate.ID,
		&coordinate.StreetcodeID,
		&coordinate.Latitude,
		&coordinate.Longitude,
	)
	if err != nil {
		return nil, fmt.Errorf("create coordinate: %w", err)
	}
	return &coordinate, nil
}

func (r *AnalyticsRepository) GetCoordinate(ctx context.Context, id int64) (*analytics.Coordinate, error) {
	queryer := r.queryer()
	var coordinate analytics.Coordinate
	err := queryer.QueryRow(ctx, `
SELECT id, streetcode_id, latitude, longitude FROM streetcode_coordinates WHERE id = $1
`, id).Scan(
		&coordinate.ID,
		&coordinate.StreetcodeID,
		&coordinate.Latitude,
		&coordinate.Longitude,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, analytics.ErrCoordinateNotFound
		}
		return nil, fmt.Errorf("get coordinate: %w", err)
	}
	return &coordinate, nil
}

func (r *AnalyticsRepository) ListCoordinatesByStreetcode(ctx context.Context, streetcodeID int64) ([]analytics.Coordinate, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT id, streetcode_id, latitude, longitude
  FROM streetcode_coordinates
 WHERE streetcode_id = $1
 ORDER BY id ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list coordinates: %w", err)
	}
	defer rows.Close()

	items := make([]analytics.Coordinate, 0)
	for rows.Next() {
		var coordinate analytics.Coordinate
		if err := rows.Scan(&coordinate.ID, &coordinate.StreetcodeID, &coordinate.Latitude, &coordinate.Longitude); err != nil {
			return nil, fmt.Errorf("scan coordinate: %w", err)
		}
		items = append(items, coordinate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coordinates: %w", err)
	}
	return items, nil
}

func (r *AnalyticsRepository) DeleteCoordinate(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM streetcode_coordinates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coordinate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return analytics.ErrCoordinateNotFound
	}
	return nil
}

func (r *AnalyticsRepository) CreateRecord(ctx context.Context, params analytics.CreateRecordParams, qrID string) (*analytics.StatisticRecord, error) {
	queryer := r.queryer()
	var record analytics.StatisticRecord
	err := queryer.QueryRow(ctx, `
INSERT INTO statistic_records (qr_id, coordinate_id, streetcode_id, address, count)
VALUES ($1, $2, $3, $4, 0)
RETURNING id, qr_id, coordinate_id, streetcode_id, address, count
`, qrID, params.CoordinateID, params.StreetcodeID, params.Address).Scan(
		&record.ID,
		&record.QrID,
		&record.CoordinateID,
		&record.StreetcodeID,
		&record.Address,
		&record.Count,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, analytics.ErrCoordinateTaken
		}
		return nil, fmt.Errorf("create statistic record: %w", err)
	}
	return &record, nil
}

func (r *AnalyticsRepository) TouchRecordByQr(ctx context.Context, qrID string) (*analytics.StatisticRecord, error) {
	queryer := r.queryer()
	var record analytics.StatisticRecord
	err := queryer.QueryRow(ctx, `
UPDATE statistic_records
   SET count = count + 1
 WHERE qr_id = $1
RETURNING id, qr_id, coordinate_id, streetcode_id, address, count
`, qrID).Scan(
		&record.ID,
		&record.QrID,
		&record.CoordinateID,
		&record.StreetcodeID,
		&record.Address,
		&record.Count,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, analytics.ErrRecordNotFound
		}
		return nil, fmt.Errorf("touch statistic record: %w", err)
	}
	return &record, nil
}

func (r *AnalyticsRepository) GetRecord(ctx context.Context, id int64) (*analytics.StatisticRecord, error) {
	queryer := r.queryer()
	var record analytics.StatisticRecord
	err := queryer.QueryRow(ctx, `
SELECT id, qr_id, coordinate_id, streetcode_id, address, count
  FROM statistic_records
 WHERE id = $1
`, id).Scan(
		&record.ID,
		&record.QrID,
		&record.CoordinateID,
		&record.StreetcodeID,
		&record.Address,
		&record.Count,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, analytics.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get statistic record: %w", err)
	}
	return &record, nil
}

func (r *AnalyticsRepository) ListRecordsByStreetcode(ctx context.Context, streetcodeID int64) ([]analytics.StatisticRecord, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT id, qr_id, coordinate_id, streetcode_id, address, count
  FROM statistic_records
 WHERE streetcode_id = $1
 ORDER BY id ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list statistic records: %w", err)
	}
	defer rows.Close()

	items := make([]analytics.StatisticRecord, 0)
	for rows.Next() {
		var record analytics.StatisticRecord
		if err := rows.Scan(&record.ID, &record.QrID, &record.CoordinateID, &record.StreetcodeID, &record.Address, &record.Count); err != nil {
			return nil, fmt.Errorf("scan statistic record: %w", err)
		}
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statistic records: %w", err)
	}
	return items, nil
}

func (r *AnalyticsRepository) ExistsByQr(ctx context.Context, qrID string) (bool, error) {
	queryer := r.queryer()
	var exists bool
	err := queryer.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM statistic_records WHERE qr_id = $1)
`, qrID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check statistic record: %w", err)
	}
	return exists, nil
}

func (r *AnalyticsRepository) DeleteRecord(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM statistic_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete statistic record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return analytics.ErrRecordNotFound
	}
	return nil
}

func (r *AnalyticsRepository) queryer() dbQueryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
