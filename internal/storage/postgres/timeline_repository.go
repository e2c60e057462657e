package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/domain/timeline"
)

var _ timeline.Repository = (*TimelineRepository)(nil)

type TimelineRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func scanTimelineItem(scanner pgx.Row) (timeline.Item, error) {
	var (
		item        timeline.Item
		date        pgtype.Timestamptz
		description *string
	)
	err := scanner.Scan(
		&item.ID,
		&item.StreetcodeID,
		&date,
		&item.DateViewPattern,
		&item.Title,
		&description,
	)
	if err != nil {
		return timeline.Item{}, err
	}
	if date.Valid {
		item.Date = date.Time
	}
	item.Description = derefString(description)
	return item, nil
}

func (r *TimelineRepository) ListByStreetcode(ctx context.Context, streetcodeID int64) ([]timeline.Item, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT id, streetcode_id, happened_at, date_view_pattern, title, description
  FROM timeline_items
 WHERE streetcode_id = $1
 ORDER BY happened_at ASC, id ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list timeline items: %w", err)
	}
	defer rows.Close()

	items := make([]timeline.Item, 0)
	for rows.Next() {
		item, err := scanTimelineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timeline item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline items: %w", err)
	}
	return items, nil
}

func (r *TimelineRepository) GetByID(ctx context.Context, id int64) (*timeline.Item, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT id, streetcode_id, happened_at, date_view_pattern, title, description
  FROM timeline_items
 WHERE id = $1
`, id)

	item, err := scanTimelineItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, timeline.ErrNotFound
		}
		return nil, fmt.Errorf("get timeline item: %w", err)
	}
	return &item, nil
}

func (r *TimelineRepository) Create(ctx context.Context, params timeline.CreateParams) (*timeline.Item, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
INSERT INTO timeline_items (streetcode_id, happened_at, date_view_pattern, title, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, streetcode_id, happened_at, date_view_pattern, title, description
`,
		params.StreetcodeID,
		params.Date,
		params.DateViewPattern,
		params.Title,
		nullIfEmpty(params.Description),
	)

	item, err := scanTimelineItem(row)
	if err != nil {
		return nil, fmt.Errorf("create timeline item: %w", err)
	}
	return &item, nil
}

func (r *TimelineRepository) Update(ctx context.Context, id int64, params timeline.UpdateParams) (*timeline.Item, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
UPDATE timeline_items
   SET streetcode_id = $2,
       happened_at = $3,
       date_view_pattern = $4,
       title = $5,
       description = $6
 WHERE id = $1
RETURNING id, streetcode_id, happened_at, date_view_pattern, title, description
`,
		id,
		params.StreetcodeID,
		params.Date,
		params.DateViewPattern,
		params.Title,
		nullIfEmpty(params.Description),
	)

	item, err := scanTimelineItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, timeline.ErrNotFound
		}
		return nil, fmt.Errorf("update timeline item: %w", err)
	}
	return &item, nil
}

func (r *TimelineRepository) Delete(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM timeline_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timeline item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timeline.ErrNotFound
	}
	return nil
}

func (r *TimelineRepository) queryer() dbQueryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
