package analytics

import (
	"context"
	"errors"
)

var (
	ErrCoordinateNotFound = errors.New("coordinate not found")
	ErrRecordNotFound     = errors.New("statistic record not found")
	// ErrCoordinateTaken is returned when a second statistic record targets a
	// coordinate that already owns one.
	ErrCoordinateTaken = errors.New("coordinate already has a statistic record")
)

// Coordinate is a geographic point pinned to a streetcode on the map.
type Coordinate struct {
	ID           int64
	StreetcodeID int64
	Latitude     float64
	Longitude    float64
}

// StatisticRecord counts QR scans at one coordinate. Count is append-only.
type StatisticRecord struct {
	ID           int64
	QrID         string
	CoordinateID int64
	StreetcodeID int64
	Address      string
	Count        int64
}

type CreateRecordParams struct {
	StreetcodeID int64  `validate:"required,gt=0"`
	CoordinateID int64  `validate:"required,gt=0"`
	Address      string `validate:"required,max=150"`
}

type Repository interface {
	CreateCoordinate(ctx context.Context, streetcodeID int64, latitude, longitude float64) (*Coordinate, error)
	GetCoordinate(ctx context.Context, id int64) (*Coordinate, error)
	ListCoordinatesByStreetcode(ctx context.Context, streetcodeID int64) ([]Coordinate, error)
	DeleteCoordinate(ctx context.Context, id int64) error

	CreateRecord(ctx context.Context, params CreateRecordParams, qrID string) (*StatisticRecord, error)
	// TouchRecordByQr returns the record for a scanned QR code and increments
	// its counter in the same statement.
	TouchRecordByQr(ctx context.Context, qrID string) (*StatisticRecord, error)
	GetRecord(ctx context.Context, id int64) (*StatisticRecord, error)
	ListRecordsByStreetcode(ctx context.Context, streetcodeID int64) ([]StatisticRecord, error)
	ExistsByQr(ctx context.Context, qrID string) (bool, error)
	DeleteRecord(ctx context.Context, id int64) error
}
