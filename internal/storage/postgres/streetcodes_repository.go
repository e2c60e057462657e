package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/api/pagination"
	"github.com/streetcode-platform/server/internal/domain/streetcodes"
)

var _ streetcodes.Repository = (*StreetcodeRepository)(nil)

type StreetcodeRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const streetcodeColumns = `s.id, s.index, s.streetcode_type, s.title, s.date_string, s.alias,
       s.transliteration_url, s.status, s.teaser, s.event_start_date, s.event_end_date,
       s.first_name, s.last_name, s.rank, s.view_count, s.created_at, s.updated_at`

const streetcodeReturning = `id, index, streetcode_type, title, date_string, alias,
       transliteration_url, status, teaser, event_start_date, event_end_date,
       first_name, last_name, rank, view_count, created_at, updated_at`

type streetcodeRow struct {
	ID                 int64
	Index              int
	Type               string
	Title              string
	DateString         *string
	Alias              *string
	TransliterationURL string
	Status             string
	Teaser             *string
	EventStartDate     pgtype.Timestamptz
	EventEndDate       pgtype.Timestamptz
	FirstName          *string
	LastName           *string
	Rank               *string
	ViewCount          int64
	CreatedAt          pgtype.Timestamptz
	UpdatedAt          pgtype.Timestamptz
}

func (row *streetcodeRow) scan(scanner pgx.Row) error {
	return scanner.Scan(
		&row.ID,
		&row.Index,
		&row.Type,
		&row.Title,
		&row.DateString,
		&row.Alias,
		&row.TransliterationURL,
		&row.Status,
		&row.Teaser,
		&row.EventStartDate,
		&row.EventEndDate,
		&row.FirstName,
		&row.LastName,
		&row.Rank,
		&row.ViewCount,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
}

func (row *streetcodeRow) toDomain() streetcodes.Streetcode {
	code := streetcodes.Streetcode{
		ID:                 row.ID,
		Index:              row.Index,
		Type:               row.Type,
		Title:              row.Title,
		DateString:         derefString(row.DateString),
		Alias:              derefString(row.Alias),
		TransliterationURL: row.TransliterationURL,
		Status:             row.Status,
		Teaser:             derefString(row.Teaser),
		FirstName:          derefString(row.FirstName),
		LastName:           derefString(row.LastName),
		Rank:               derefString(row.Rank),
		ViewCount:          row.ViewCount,
	}
	if row.EventStartDate.Valid {
		value := row.EventStartDate.Time
		code.EventStartDate = &value
	}
	if row.EventEndDate.Valid {
		value := row.EventEndDate.Time
		code.EventEndDate = &value
	}
	if row.CreatedAt.Valid {
		code.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		code.UpdatedAt = row.UpdatedAt.Time
	}
	return code
}

func (r *StreetcodeRepository) List(ctx context.Context, filters streetcodes.Filters, paginationArgs streetcodes.Pagination) (streetcodes.ListResult, error) {
	queryer := r.queryer()

	var cursorTimestamp *time.Time
	var cursorID *int64
	if strings.TrimSpace(paginationArgs.After) != "" {
		cursor, err := pagination.Decode(paginationArgs.After)
		if err != nil {
			return streetcodes.ListResult{}, err
		}
		ts := cursor.Timestamp.UTC()
		cursorTimestamp = &ts
		id := cursor.ID
		cursorID = &id
	}

	limit := paginationArgs.Limit
	if limit <= 0 {
		limit = 50
	}
	limitPlusOne := limit + 1

	rows, err := queryer.Query(ctx, `
SELECT `+streetcodeColumns+`
  FROM streetcodes s
 WHERE ($1 = '' OR s.status = $1)
   AND ($2 = '' OR s.streetcode_type = $2)
   AND ($3 = '' OR s.title ILIKE '%' || $3 || '%' OR s.teaser ILIKE '%' || $3 || '%'
        OR s.first_name ILIKE '%' || $3 || '%' OR s.last_name ILIKE '%' || $3 || '%')
   AND ($4::bigint IS NULL OR EXISTS (
     SELECT 1 FROM streetcode_tags st WHERE st.streetcode_id = s.id AND st.tag_id = $4
   ))
   AND (
     $5::timestamptz IS NULL OR
     s.created_at > $5::timestamptz OR
     (s.created_at = $5::timestamptz AND s.id > $6)
   )
 ORDER BY s.created_at ASC, s.id ASC
 LIMIT $7
`,
		filters.Status,
		filters.Type,
		filters.Query,
		filters.TagID,
		cursorTimestamp,
		cursorID,
		limitPlusOne,
	)
	if err != nil {
		return streetcodes.ListResult{}, fmt.Errorf("list streetcodes: %w", err)
	}
	defer rows.Close()

	items := make([]streetcodes.Streetcode, 0, limitPlusOne)
	for rows.Next() {
		var row streetcodeRow
		if err := row.scan(rows); err != nil {
			return streetcodes.ListResult{}, fmt.Errorf("scan streetcodes: %w", err)
		}
		items = append(items, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return streetcodes.ListResult{}, fmt.Errorf("iterate streetcodes: %w", err)
	}

	result := streetcodes.ListResult{}
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		if !last.CreatedAt.IsZero() {
			result.NextCursor = pagination.Encode(last.CreatedAt, last.ID)
		}
	}

	for i := range items {
		tagIDs, err := r.tagIDsFor(ctx, items[i].ID)
		if err != nil {
			return streetcodes.ListResult{}, err
		}
		items[i].TagIDs = tagIDs
	}

	result.Streetcodes = items
	return result, nil
}

func (r *StreetcodeRepository) GetByID(ctx context.Context, id int64) (*streetcodes.Streetcode, error) {
	return r.getBy(ctx, `s.id = $1`, id)
}

func (r *StreetcodeRepository) GetByIndex(ctx context.Context, index int) (*streetcodes.Streetcode, error) {
	return r.getBy(ctx, `s.index = $1`, index)
}

func (r *StreetcodeRepository) GetByTransliterationURL(ctx context.Context, url string) (*streetcodes.Streetcode, error) {
	return r.getBy(ctx, `s.transliteration_url = $1`, url)
}

func (r *StreetcodeRepository) getBy(ctx context.Context, predicate string, arg any) (*streetcodes.Streetcode, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT `+streetcodeColumns+`
  FROM streetcodes s
 WHERE `+predicate+`
`, arg)

	var data streetcodeRow
	if err := data.scan(row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, streetcodes.ErrNotFound
		}
		return nil, fmt.Errorf("get streetcode: %w", err)
	}

	code := data.toDomain()
	tagIDs, err := r.tagIDsFor(ctx, code.ID)
	if err != nil {
		return nil, err
	}
	code.TagIDs = tagIDs
	return &code, nil
}

func (r *StreetcodeRepository) Create(ctx context.Context, params streetcodes.CreateParams) (*streetcodes.Streetcode, error) {
	var created *streetcodes.Streetcode
	err := r.inTx(ctx, func(txr *StreetcodeRepository) error {
		var err error
		created, err = txr.create(ctx, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *StreetcodeRepository) create(ctx context.Context, params streetcodes.CreateParams) (*streetcodes.Streetcode, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
INSERT INTO streetcodes (index, streetcode_type, title, date_string, alias,
       transliteration_url, status, teaser, event_start_date, event_end_date,
       first_name, last_name, rank)
VALUES ($1, $2, $3, $4, $5, $6, 'draft', $7, $8, $9, $10, $11, $12)
RETURNING `+streetcodeReturning+`
`,
		params.Index,
		params.Type,
		params.Title,
		nullIfEmpty(params.DateString),
		nullIfEmpty(params.Alias),
		params.TransliterationURL,
		nullIfEmpty(params.Teaser),
		params.EventStartDate,
		params.EventEndDate,
		nullIfEmpty(params.FirstName),
		nullIfEmpty(params.LastName),
		nullIfEmpty(params.Rank),
	)

	var data streetcodeRow
	if err := data.scan(row); err != nil {
		switch violatedConstraint(err) {
		case "streetcodes_index_unique":
			return nil, streetcodes.ErrIndexTaken
		case "streetcodes_transliteration_url_unique":
			return nil, streetcodes.ErrURLTaken
		}
		return nil, fmt.Errorf("create streetcode: %w", err)
	}

	if err := r.replaceTags(ctx, data.ID, params.Tags); err != nil {
		return nil, err
	}

	code := data.toDomain()
	code.TagIDs = assignedTagIDs(params.Tags)
	return &code, nil
}

func (r *StreetcodeRepository) Update(ctx context.Context, id int64, params streetcodes.UpdateParams) (*streetcodes.Streetcode, error) {
	var updated *streetcodes.Streetcode
	err := r.inTx(ctx, func(txr *StreetcodeRepository) error {
		var err error
		updated, err = txr.update(ctx, id, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *StreetcodeRepository) update(ctx context.Context, id int64, params streetcodes.UpdateParams) (*streetcodes.Streetcode, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
UPDATE streetcodes
   SET index = $2,
       streetcode_type = $3,
       title = $4,
       date_string = $5,
       alias = $6,
       transliteration_url = $7,
       teaser = $8,
       event_start_date = $9,
       event_end_date = $10,
       first_name = $11,
       last_name = $12,
       rank = $13,
       updated_at = now()
 WHERE id = $1
RETURNING `+streetcodeReturning+`
`,
		id,
		params.Index,
		params.Type,
		params.Title,
		nullIfEmpty(params.DateString),
		nullIfEmpty(params.Alias),
		params.TransliterationURL,
		nullIfEmpty(params.Teaser),
		params.EventStartDate,
		params.EventEndDate,
		nullIfEmpty(params.FirstName),
		nullIfEmpty(params.LastName),
		nullIfEmpty(params.Rank),
	)

	var data streetcodeRow
	if err := data.scan(row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, streetcodes.ErrNotFound
		}
		switch violatedConstraint(err) {
		case "streetcodes_index_unique":
			return nil, streetcodes.ErrIndexTaken
		case "streetcodes_transliteration_url_unique":
			return nil, streetcodes.ErrURLTaken
		}
		return nil, fmt.Errorf("update streetcode: %w", err)
	}

	if err := r.replaceTags(ctx, id, params.Tags); err != nil {
		return nil, err
	}

	code := data.toDomain()
	code.TagIDs = assignedTagIDs(params.Tags)
	return &code, nil
}

func (r *StreetcodeRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
UPDATE streetcodes SET status = $2, updated_at = now() WHERE id = $1
`, id, status)
	if err != nil {
		return fmt.Errorf("update streetcode status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return streetcodes.ErrNotFound
	}
	return nil
}

func (r *StreetcodeRepository) Delete(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM streetcodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete streetcode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return streetcodes.ErrNotFound
	}
	return nil
}

func (r *StreetcodeRepository) Count(ctx context.Context, onlyPublished bool) (int64, error) {
	queryer := r.queryer()
	var count int64
	err := queryer.QueryRow(ctx, `
SELECT count(*) FROM streetcodes WHERE $1 = false OR status = 'published'
`, onlyPublished).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count streetcodes: %w", err)
	}
	return count, nil
}

func (r *StreetcodeRepository) replaceTags(ctx context.Context, streetcodeID int64, assignments []streetcodes.TagAssignment) error {
	queryer := r.queryer()
	if _, err := queryer.Exec(ctx, `DELETE FROM streetcode_tags WHERE streetcode_id = $1`, streetcodeID); err != nil {
		return fmt.Errorf("clear streetcode tags: %w", err)
	}
	for _, assignment := range assignments {
		_, err := queryer.Exec(ctx, `
INSERT INTO streetcode_tags (streetcode_id, tag_id, index, is_visible)
VALUES ($1, $2, $3, $4)
`, streetcodeID, assignment.TagID, assignment.Index, assignment.IsVisible)
		if err != nil {
			return fmt.Errorf("assign streetcode tag: %w", err)
		}
	}
	return nil
}

func (r *StreetcodeRepository) tagIDsFor(ctx context.Context, streetcodeID int64) ([]int64, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT tag_id FROM streetcode_tags WHERE streetcode_id = $1 ORDER BY index ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list streetcode tag ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan streetcode tag id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streetcode tag ids: %w", err)
	}
	return ids, nil
}

func assignedTagIDs(assignments []streetcodes.TagAssignment) []int64 {
	if len(assignments) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.TagID)
	}
	return ids
}

func (r *StreetcodeRepository) queryer() dbQueryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// inTx runs fn against a tx-bound copy so the streetcode row and its tag
// assignments commit together. A repository already inside a transaction
// reuses it.
func (r *StreetcodeRepository) inTx(ctx context.Context, fn func(*StreetcodeRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&StreetcodeRepository{pool: r.pool, tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
