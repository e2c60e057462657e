package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/domain/tags"
)

var _ tags.Repository = (*TagRepository)(nil)

type TagRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *TagRepository) List(ctx context.Context) ([]tags.Tag, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `SELECT id, title FROM tags ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	items := make([]tags.Tag, 0)
	for rows.Next() {
		var tag tags.Tag
		if err := rows.Scan(&tag.ID, &tag.Title); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return items, nil
}

func (r *TagRepository) GetByID(ctx context.Context, id int64) (*tags.Tag, error) {
	queryer := r.queryer()
	var tag tags.Tag
	err := queryer.QueryRow(ctx, `SELECT id, title FROM tags WHERE id = $1`, id).Scan(&tag.ID, &tag.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tags.ErrNotFound
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &tag, nil
}

func (r *TagRepository) GetByTitle(ctx context.Context, title string) (*tags.Tag, error) {
	queryer := r.queryer()
	var tag tags.Tag
	err := queryer.QueryRow(ctx, `SELECT id, title FROM tags WHERE lower(title) = lower($1)`, title).Scan(&tag.ID, &tag.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tags.ErrNotFound
		}
		return nil, fmt.Errorf("get tag by title: %w", err)
	}
	return &tag, nil
}

func (r *TagRepository) ListByStreetcode(ctx context.Context, streetcodeID int64) ([]tags.StreetcodeTag, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT t.id, t.title, st.index, st.is_visible
  FROM tags t
  JOIN streetcode_tags st ON st.tag_id = t.id
 WHERE st.streetcode_id = $1
 ORDER BY st.index ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list streetcode tags: %w", err)
	}
	defer rows.Close()

	items := make([]tags.StreetcodeTag, 0)
	for rows.Next() {
		var tag tags.StreetcodeTag
		if err := rows.Scan(&tag.ID, &tag.Title, &tag.Index, &tag.IsVisible); err != nil {
			return nil, fmt.Errorf("scan streetcode tag: %w", err)
		}
		items = append(items, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streetcode tags: %w", err)
	}
	return items, nil
}

func (r *TagRepository) Create(ctx context.Context, title string) (*tags.Tag, error) {
	queryer := r.queryer()
	var tag tags.Tag
	err := queryer.QueryRow(ctx, `
INSERT INTO tags (title) VALUES ($1) RETURNING id, title
`, title).Scan(&tag.ID, &tag.Title)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, tags.ErrTitleTaken
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &tag, nil
}

func (r *TagRepository) Update(ctx context.Context, id int64, title string) (*tags.Tag, error) {
	queryer := r.queryer()
	var tag tags.Tag
	err := queryer.QueryRow(ctx, `
UPDATE tags SET title = $2 WHERE id = $1 RETURNING id, title
`, id, title).Scan(&tag.ID, &tag.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tags.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, tags.ErrTitleTaken
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}
	return &tag, nil
}

func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tags.ErrNotFound
	}
	return nil
}

func (r *TagRepository) queryer() dbQueryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
