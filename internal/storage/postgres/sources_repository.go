package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/domain/sources"
)

var _ sources.Repository = (*SourceRepository)(nil)

type SourceRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *SourceRepository) ListCategories(ctx context.Context) ([]sources.Category, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT id, title, image_id FROM source_categories ORDER BY title ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list source categories: %w", err)
	}
	defer rows.Close()

	items := make([]sources.Category, 0)
	for rows.Next() {
		var category sources.Category
		if err := rows.Scan(&category.ID, &category.Title, &category.ImageID); err != nil {
			return nil, fmt.Errorf("scan source category: %w", err)
		}
		items = append(items, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source categories: %w", err)
	}
	return items, nil
}

func (r *SourceRepository) GetCategory(ctx context.Context, id int64) (*sources.Category, error) {
	queryer := r.queryer()
	var category sources.Category
	err := queryer.QueryRow(ctx, `
SELECT id, title, image_id FROM source_categories WHERE id = $1
`, id).Scan(&category.ID, &category.Title, &category.ImageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sources.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get source category: %w", err)
	}
	return &category, nil
}

func (r *SourceRepository) ListCategoriesByStreetcode(ctx context.Context, streetcodeID int64) ([]sources.Category, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT c.id, c.title, c.image_id
  FROM source_categories c
  JOIN source_category_contents sc ON sc.category_id = c.id
 WHERE sc.streetcode_id = $1
 ORDER BY c.title ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list streetcode source categories: %w", err)
	}
	defer rows.Close()

	items := make([]sources.Category, 0)
	for rows.Next() {
		var category sources.Category
		if err := rows.Scan(&category.ID, &category.Title, &category.ImageID); err != nil {
			return nil, fmt.Errorf("scan streetcode source category: %w", err)
		}
		items = append(items, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streetcode source categories: %w", err)
	}
	return items, nil
}

func (r *SourceRepository) CreateCategory(ctx context.Context, params sources.CategoryParams) (*sources.Category, error) {
	queryer := r.queryer()
	var category sources.Category
	err := queryer.QueryRow(ctx, `
INSERT INTO source_categories (title, image_id)
VALUES ($1, $2)
RETURNING id, title, image_id
`, params.Title, params.ImageID).Scan(&category.ID, &category.Title, &category.ImageID)
	if err != nil {
		return nil, fmt.Errorf("create source category: %w", err)
	}
	return &category, nil
}

func (r *SourceRepository) UpdateCategory(ctx context.Context, id int64, params sources.CategoryParams) (*sources.Category, error) {
	queryer := r.queryer()
	var category sources.Category
	err := queryer.QueryRow(ctx, `
UPDATE source_categories SET title = $2, image_id = $3 WHERE id = $1
RETURNING id, title, image_id
`, id, params.Title, params.ImageID).Scan(&category.ID, &category.Title, &category.ImageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sources.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update source category: %w", err)
	}
	return &category, nil
}

func (r *SourceRepository) DeleteCategory(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM source_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete source category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sources.ErrCategoryNotFound
	}
	return nil
}

func (r *SourceRepository) GetContent(ctx context.Context, streetcodeID, categoryID int64) (*sources.CategoryContent, error) {
	queryer := r.queryer()
	var content sources.CategoryContent
	err := queryer.QueryRow(ctx, `
SELECT streetcode_id, category_id, text
  FROM source_category_contents
 WHERE streetcode_id = $1 AND category_id = $2
`, streetcodeID, categoryID).Scan(&content.StreetcodeID, &content.CategoryID, &content.Text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sources.ErrContentNotFound
		}
		return nil, fmt.Errorf("get category content: %w", err)
	}
	return &content, nil
}

func (r *SourceRepository) UpsertContent(ctx context.Context, params sources.ContentParams) (*sources.CategoryContent, error) {
	queryer := r.queryer()
	var content sources.CategoryContent
	err := queryer.QueryRow(ctx, `
INSERT INTO source_category_contents (streetcode_id, category_id, text)
VALUES ($1, $2, $3)
ON CONFLICT (streetcode_id, category_id) DO UPDATE SET text = EXCLUDED.text
RETURNING streetcode_id, category_id, text
`, params.StreetcodeID, params.CategoryID, params.Text).Scan(&content.StreetcodeID, &content.CategoryID, &content.Text)
	if err != nil {
		return nil, fmt.Errorf("upsert category content: %w", err)
	}
	return &content, nil
}

func (r *SourceRepository) DeleteContent(ctx context.Context, streetcodeID, categoryID int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
DELETE FROM source_category_contents WHERE streetcode_id = $1 AND category_id = $2
`, streetcodeID, categoryID)
	if err != nil {
		return fmt.Errorf("delete category content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sources.ErrContentNotFound
	}
	return nil
}

func (r *SourceRepository) queryer() dbQueryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
