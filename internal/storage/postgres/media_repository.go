package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/domain/media"
)

var _ media.Repository = (*MediaRepository)(nil)

type MediaRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func scanImage(scanner pgx.Row) (media.Image, error) {
	var (
		image media.Image
		title *string
		alt   *string
	)
	if err := scanner.Scan(&image.ID, &image.BlobName, &image.MimeType, &title, &alt); err != nil {
		return media.Image{}, err
	}
	image.Title = derefString(title)
	image.Alt = derefString(alt)
	return image, nil
}

func (r *MediaRepository) GetImage(ctx context.Context, id int64) (*media.Image, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT id, blob_name, mime_type, title, alt FROM images WHERE id = $1
`, id)

	image, err := scanImage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, media.ErrImageNotFound
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &image, nil
}

func (r *MediaRepository) ListImagesByStreetcode(ctx context.Context, streetcodeID int64) ([]media.Image, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT i.id, i.blob_name, i.mime_type, i.title, i.alt
  FROM images i
  JOIN streetcode_images link ON link.image_id = i.id
 WHERE link.streetcode_id = $1
 ORDER BY i.id ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list streetcode images: %w", err)
	}
	defer rows.Close()

	items := make([]media.Image, 0)
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan streetcode image: %w", err)
		}
		items = append(items, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streetcode images: %w", err)
	}
	return items, nil
}

func (r *MediaRepository) CreateImage(ctx context.Context, record media.ImageRecord) (*media.Image, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
INSERT INTO images (blob_name, mime_type, title, alt)
VALUES ($1, $2, $3, $4)
RETURNING id, blob_name, mime_type, title, alt
`, record.BlobName, record.MimeType, nullIfEmpty(record.Title), nullIfEmpty(record.Alt))

	image, err := scanImage(row)
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	return &image, nil
}

func (r *MediaRepository) LinkImage(ctx context.Context, imageID, streetcodeID int64) error {
	queryer := r.queryer()
	_, err := queryer.Exec(ctx, `
INSERT INTO streetcode_images (image_id, streetcode_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, imageID, streetcodeID)
	if err != nil {
		return fmt.Errorf("link image: %w", err)
	}
	return nil
}

func (r *MediaRepository) DeleteImage(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return media.ErrImageNotFound
	}
	return nil
}

func scanAudio(scanner pgx.Row) (media.Audio, error) {
	var (
		audio       media.Audio
		title       *string
		description *string
	)
	if err := scanner.Scan(&audio.ID, &audio.StreetcodeID, &audio.BlobName, &audio.MimeType, &title, &description); err != nil {
		return media.Audio{}, err
	}
	audio.Title = derefString(title)
	audio.Description = derefString(description)
	return audio, nil
}

func (r *MediaRepository) GetAudio(ctx context.Context, id int64) (*media.Audio, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT id, streetcode_id, blob_name, mime_type, title, description FROM audios WHERE id = $1
`, id)

	audio, err := scanAudio(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, media.ErrAudioNotFound
		}
		return nil, fmt.Errorf("get audio: %w", err)
	}
	return &audio, nil
}

func (r *MediaRepository) GetAudioByStreetcode(ctx context.Context, streetcodeID int64) (*media.Audio, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT id, streetcode_id, blob_name, mime_type, title, description
  FROM audios
 WHERE streetcode_id = $1
 ORDER BY id DESC
 LIMIT 1
`, streetcodeID)

	audio, err := scanAudio(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, media.ErrAudioNotFound
		}
		return nil, fmt.Errorf("get streetcode audio: %w", err)
	}
	return &audio, nil
}

func (r *MediaRepository) CreateAudio(ctx context.Context, record media.AudioRecord) (*media.Audio, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
INSERT INTO audios (streetcode_id, blob_name, mime_type, title, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, streetcode_id, blob_name, mime_type, title, description
`, record.StreetcodeID, record.BlobName, record.MimeType, nullIfEmpty(record.Title), nullIfEmpty(record.Description))

	audio, err := scanAudio(row)
	if err != nil {
		return nil, fmt.Errorf("create audio: %w", err)
	}
	return &audio, nil
}

func (r *MediaRepository) DeleteAudio(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM audios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete audio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return media.ErrAudioNotFound
	}
	return nil
}

func scanVideo(scanner pgx.Row) (media.Video, error) {
	var (
		video       media.Video
		title       *string
		description *string
	)
	if err := scanner.Scan(&video.ID, &video.StreetcodeID, &video.URL, &title, &description); err != nil {
		return media.Video{}, err
	}
	video.Title = derefString(title)
	video.Description = derefString(description)
	return video, nil
}

func (r *MediaRepository) GetVideo(ctx context.Context, id int64) (*media.Video, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
SELECT id, streetcode_id, url, title, description FROM videos WHERE id = $1
`, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, media.ErrVideoNotFound
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	return &video, nil
}

func (r *MediaRepository) ListVideosByStreetcode(ctx context.Context, streetcodeID int64) ([]media.Video, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT id, streetcode_id, url, title, description
  FROM videos
 WHERE streetcode_id = $1
 ORDER BY id ASC
`, streetcodeID)
	if err != nil {
		return nil, fmt.Errorf("list streetcode videos: %w", err)
	}
	defer rows.Close()

	items := make([]media.Video, 0)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan streetcode video: %w", err)
		}
		items = append(items, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streetcode videos: %w", err)
	}
	return items, nil
}

func (r *MediaRepository) CreateVideo(ctx context.Context, params media.VideoParams) (*media.Video, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
INSERT INTO videos (streetcode_id, url, title, description)
VALUES ($1, $2, $3, $4)
RETURNING id, streetcode_id, url, title, description
`, params.StreetcodeID, params.URL, nullIfEmpty(params.Title), nullIfEmpty(params.Description))

	video, err := scanVideo(row)
	if err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}
	return &video, nil
}

func (r *MediaRepository) UpdateVideo(ctx context.Context, id int64, params media.VideoParams) (*media.Video, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
UPDATE videos
   SET streetcode_id = $2,
       url = $3,
       title = $4,
       description = $5
 WHERE id = $1
RETURNING id, streetcode_id, url, title, description
`, id, params.StreetcodeID, params.URL, nullIfEmpty(params.Title), nullIfEmpty(params.Description))

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, media.ErrVideoNotFound
		}
		return nil, fmt.Errorf("update video: %w", err)
	}
	return &video, nil
}

func (r *MediaRepository) DeleteVideo(ctx context.Context, id int64) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return media.ErrVideoNotFound
	}
	return nil
}

func (r *MediaRepository) queryer() dbQueryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
