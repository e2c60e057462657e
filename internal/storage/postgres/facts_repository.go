package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/domain/facts"
)

var _ facts.Repository = (*FactRepository)(nil)

type FactRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *FactRepository) ListByStreetcode(ctx context.Context, streetcodeID int64) ([]facts.Fact, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT id, streetcode_id, index, title, fact_content, image_id
  FROM facts
 WHERE streetcode_id = $1
 ORDER BY index ASC, id ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	defer rows.Close()

	items := make([]facts.Fact, 0)
	for rows.Next() {
		var fact facts.Fact
		if err := rows.Scan(&fact.ID, &fact.StreetcodeID, &fact.Index, &fact.Title, &fact.FactContent, &fact.ImageID); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		items = append(items, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facts: %w", err)
	}
	return items, nil
}

func (r *FactRepository) GetByID(ctx context.Context, id int64) (*facts.Fact, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT id, streetcode_id, index, title, fact_content, image_id
  FROM facts
 WHERE id = $1
`, id)

	var fact facts.Fact
	if err := row.Scan(&fact.ID, &fact.StreetcodeID, &fact.Index, &fact.Title, &fact.FactContent, &fact.ImageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, facts.ErrNotFound
		}
		return nil, fmt.Errorf("get fact: %w", err)
	}
	return &fact, nil
}

func (r *FactRepository) Create(ctx context.Context, params facts.CreateParams) (*facts.Fact, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
INSERT INTO facts (streetcode_id, index, title, fact_content, image_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, streetcode_id, index, title, fact_content, image_id
`, params.StreetcodeID, params.Index, params.Title, params.FactContent, params.ImageID)

	var fact facts.Fact
	if err := row.Scan(&fact.ID, &fact.StreetcodeID, &fact.Index, &fact.Title, &fact.FactContent, &fact.ImageID); err != nil {
		return nil, fmt.Errorf("create fact: %w", err)
	}
	return &fact, nil
}

func (r *FactRepository) Update(ctx context.Context, id int64, params facts.UpdateParams) (*facts.Fact, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
UPDATE facts
   SET streetcode_id = $2,
       index = $3,
       title = $4,
       fact_content = $5,
       image_id = $6
 WHERE id = $1
RETURNING id, streetcode_id, index, title, fact_content, image_id
`, id, params.StreetcodeID, params.Index, params.Title, params.FactContent, params.ImageID)

	var fact facts.Fact
	if err := row.Scan(&fact.ID, &fact.StreetcodeID, &fact.Index, &fact.Title, &fact.FactContent, &fact.ImageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, facts.ErrNotFound
		}
		return nil, fmt.Errorf("update fact: %w", err)
	}
	return &fact, nil
}

func (r *FactRepository) Delete(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM facts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete fact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return facts.ErrNotFound
	}
	return nil
}

func (r *FactRepository) queryer() dbQueryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
