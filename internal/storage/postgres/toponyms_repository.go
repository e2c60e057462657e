package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/domain/toponyms"
)

var _ toponyms.Repository = (*ToponymRepository)(nil)

type ToponymRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const toponymColumns = `t.id, t.street_name, t.community, t.admin_region_old, t.admin_region_new,
       t.gromada, c.id, c.latitude, c.longitude`

const toponymJoin = `
  FROM toponyms t
  LEFT JOIN toponym_coordinates c ON c.toponym_id = t.id`

func scanToponym(scanner pgx.Row) (toponyms.Toponym, error) {
	var (
		toponym   toponyms.Toponym
		community *string
		regionOld *string
		regionNew *string
		gromada   *string
		coordID   *int64
		latitude  *float64
		longitude *float64
	)
	err := scanner.Scan(
		&toponym.ID,
		&toponym.StreetName,
		&community,
		&regionOld,
		&regionNew,
		&gromada,
		&coordID,
		&latitude,
		&longitude,
	)
	if err != nil {
		return toponyms.Toponym{}, err
	}
	toponym.Community = derefString(community)
	toponym.AdminRegionOld = derefString(regionOld)
	toponym.AdminRegionNew = derefString(regionNew)
	toponym.Gromada = derefString(gromada)
	if coordID != nil && latitude != nil && longitude != nil {
		toponym.Coordinate = &toponyms.Coordinate{ID: *coordID, Latitude: *latitude, Longitude: *longitude}
	}
	return toponym, nil
}

func (r *ToponymRepository) List(ctx context.Context, query string, limit int) ([]toponyms.Toponym, error) {
	queryer := r.queryer()
	if limit <= 0 {
		limit = 50
	}
	rows, err := queryer.Query(ctx, `
SELECT `+toponymColumns+toponymJoin+`
 WHERE ($1 = '' OR t.street_name ILIKE '%' || $1 || '%' OR t.community ILIKE '%' || $1 || '%')
 ORDER BY t.street_name ASC, t.id ASC
 LIMIT $2
`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list toponyms: %w", err)
	}
	defer rows.Close()

	items := make([]toponyms.Toponym, 0)
	for rows.Next() {
		toponym, err := scanToponym(rows)
		if err != nil {
			return nil, fmt.Errorf("scan toponym: %w", err)
		}
		items = append(items, toponym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate toponyms: %w", err)
	}
	return items, nil
}

func (r *ToponymRepository) GetByID(ctx context.Context, id int64) (*toponyms.Toponym, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT `+toponymColumns+toponymJoin+`
 WHERE t.id = $1
`, id)

	toponym, err := scanToponym(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, toponyms.ErrNotFound
		}
		return nil, fmt.Errorf("get toponym: %w", err)
	}
	return &toponym, nil
}

func (r *ToponymRepository) ListByStreetcode(ctx context.Context, streetcodeID int64) ([]toponyms.Toponym, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT `+toponymColumns+toponymJoin+`
  JOIN streetcode_toponyms link ON link.toponym_id = t.id
 WHERE link.streetcode_id = $1
 ORDER BY t.street_name ASC, t.id ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list streetcode toponyms: %w", err)
	}
	defer rows.Close()

	items := make([]toponyms.Toponym, 0)
	for rows.Next() {
		toponym, err := scanToponym(rows)
		if err != nil {
			return nil, fmt.Errorf("scan streetcode toponym: %w", err)
		}
		items = append(items, toponym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streetcode toponyms: %w", err)
	}
	return items, nil
}

func (r *ToponymRepository) Create(ctx context.Context, params toponyms.CreateParams) (*toponyms.Toponym, error) {
	queryer := r.queryer()
	var id int64
	err := queryer.QueryRow(ctx, `
INSERT INTO toponyms (street_name, community, admin_region_old, admin_region_new, gromada)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`,
		params.StreetName,
		nullIfEmpty(params.Community),
		nullIfEmpty(params.AdminRegionOld),
		nullIfEmpty(params.AdminRegionNew),
		nullIfEmpty(params.Gromada),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create toponym: %w", err)
	}

	if err := r.upsertCoordinate(ctx, id, params.Latitude, params.Longitude); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ToponymRepository) Update(ctx context.Context, id int64, params toponyms.UpdateParams) (*toponyms.Toponym, error) {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
UPDATE toponyms
   SET street_name = $2,
       community = $3,
       admin_region_old = $4,
       admin_region_new = $5,
       gromada = $6
 WHERE id = $1
`,
		id,
		params.StreetName,
		nullIfEmpty(params.Community),
		nullIfEmpty(params.AdminRegionOld),
		nullIfEmpty(params.AdminRegionNew),
		nullIfEmpty(params.Gromada),
	)
	if err != nil {
		return nil, fmt.Errorf("update toponym: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, toponyms.ErrNotFound
	}

	if err := r.upsertCoordinate(ctx, id, params.Latitude, params.Longitude); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// upsertCoordinate keeps the one-to-one coordinate row in step with the
// toponym: nil lat/lon removes it, values replace it.
func (r *ToponymRepository) upsertCoordinate(ctx context.Context, toponymID int64, latitude, longitude *float64) error {
	queryer := r.queryer()
	if latitude == nil || longitude == nil {
		if _, err := queryer.Exec(ctx, `DELETE FROM toponym_coordinates WHERE toponym_id = $1`, toponymID); err != nil {
			return fmt.Errorf("clear toponym coordinate: %w", err)
		}
		return nil
	}
	_, err := queryer.Exec(ctx, `
INSERT INTO toponym_coordinates (toponym_id, latitude, longitude)
VALUES ($1, $2, $3)
ON CONFLICT (toponym_id) DO UPDATE SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude
`, toponymID, *latitude, *longitude)
	if err != nil {
		return fmt.Errorf("upsert toponym coordinate: %w", err)
	}
	return nil
}

func (r *ToponymRepository) Delete(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM toponyms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete toponym: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return toponyms.ErrNotFound
	}
	return nil
}

func (r *ToponymRepository) Link(ctx context.Context, toponymID, streetcodeID int64) error {
	queryer := r.queryer()
	_, err := queryer.Exec(ctx, `
INSERT INTO streetcode_toponyms (toponym_id, streetcode_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, toponymID, streetcodeID)
	if err != nil {
		return fmt.Errorf("link toponym: %w", err)
	}
	return nil
}

func (r *ToponymRepository) Unlink(ctx context.Context, toponymID, streetcodeID int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
DELETE FROM streetcode_toponyms WHERE toponym_id = $1 AND streetcode_id = $2
`, toponymID, streetcodeID)
	if err != nil {
		return fmt.Errorf("unlink toponym: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return toponyms.ErrNotFound
	}
	return nil
}

func (r *ToponymRepository) queryer() dbQueryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
