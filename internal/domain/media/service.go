package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/streetcode-platform/server/internal/blob"
	"github.com/streetcode-platform/server/internal/sanitize"
)

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"audio/mpeg": ".mp3",
	"audio/ogg":  ".ogg",
	"audio/wav":  ".wav",
}

type UploadImageParams struct {
	Title    string `validate:"max=100"`
	Alt      string `validate:"max=200"`
	MimeType string `validate:"required,oneof=image/jpeg image/png image/webp image/gif"`
	Base64   string `validate:"required"`
}

type UploadAudioParams struct {
	StreetcodeID *int64
	Title        string `validate:"max=100"`
	Description  string `validate:"max=400"`
	MimeType     string `validate:"required,oneof=audio/mpeg audio/ogg audio/wav"`
	Base64       string `validate:"required"`
}

type Service struct {
	repo     Repository
	blobs    blob.Storage
	logger   zerolog.Logger
	validate *validator.Validate
}

func NewService(repo Repository, blobs blob.Storage, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		blobs:    blobs,
		logger:   logger.With().Str("component", "media").Logger(),
		validate: validator.New(),
	}
}

// GetImage returns image metadata plus the base64 payload from blob storage.
func (s *Service) GetImage(ctx context.Context, id int64) (*Image, string, error) {
	image, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.blobs.FindBase64(ctx, image.BlobName)
	if err != nil {
		return nil, "", fmt.Errorf("image %d payload: %w", id, err)
	}
	return image, payload, nil
}

func (s *Service) ListImagesByStreetcode(ctx context.Context, streetcodeID int64) ([]Image, error) {
	return s.repo.ListImagesByStreetcode(ctx, streetcodeID)
}

func (s *Service) UploadImage(ctx context.Context, params UploadImageParams) (*Image, error) {
	params.Title = sanitize.Text(strings.TrimSpace(params.Title))
	params.Alt = sanitize.Text(strings.TrimSpace(params.Alt))
	if err := s.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}

	blobName := uuid.NewString() + mimeExtensions[params.MimeType]
	if err := s.blobs.SaveBase64(ctx, blobName, params.Base64); err != nil {
		return nil, fmt.Errorf("save image blob: %w", err)
	}

	image, err := s.repo.CreateImage(ctx, ImageRecord{
		BlobName: blobName,
		MimeType: params.MimeType,
		Title:    params.Title,
		Alt:      params.Alt,
	})
	if err != nil {
		if cleanupErr := s.blobs.Delete(ctx, blobName); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("blob", blobName).Msg("orphaned image blob after failed insert")
		}
		return nil, err
	}
	return image, nil
}

func (s *Service) LinkImage(ctx context.Context, imageID, streetcodeID int64) error {
	if _, err := s.repo.GetImage(ctx, imageID); err != nil {
		return err
	}
	return s.repo.LinkImage(ctx, imageID, streetcodeID)
}

func (s *Service) DeleteImage(ctx context.Context, id int64) error {
	image, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteImage(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, image.BlobName); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.logger.Warn().Err(err).Str("blob", image.BlobName).Msg("image row deleted but blob removal failed")
	}
	return nil
}

func (s *Service) GetAudio(ctx context.Context, id int64) (*Audio, string, error) {
	audio, err := s.repo.GetAudio(ctx, id)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.blobs.FindBase64(ctx, audio.BlobName)
	if err != nil {
		return nil, "", fmt.Errorf("audio %d payload: %w", id, err)
	}
	return audio, payload, nil
}

func (s *Service) GetAudioByStreetcode(ctx context.Context, streetcodeID int64) (*Audio, error) {
	return s.repo.GetAudioByStreetcode(ctx, streetcodeID)
}

func (s *Service) UploadAudio(ctx context.Context, params UploadAudioParams) (*Audio, error) {
	params.Title = sanitize.Text(strings.TrimSpace(params.Title))
	params.Description = sanitize.Text(strings.TrimSpace(params.Description))
	if err := s.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid audio: %w", err)
	}

	blobName := uuid.NewString() + mimeExtensions[params.MimeType]
	if err := s.blobs.SaveBase64(ctx, blobName, params.Base64); err != nil {
		return nil, fmt.Errorf("save audio blob: %w", err)
	}

	audio, err := s.repo.CreateAudio(ctx, AudioRecord{
		StreetcodeID: params.StreetcodeID,
		BlobName:     blobName,
		MimeType:     params.MimeType,
		Title:        params.Title,
		Description:  params.Description,
	})
	if err != nil {
		if cleanupErr := s.blobs.Delete(ctx, blobName); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("blob", blobName).Msg("orphaned audio blob after failed insert")
		}
		return nil, err
	}
	return audio, nil
}

func (s *Service) DeleteAudio(ctx context.Context, id int64) error {
	audio, err := s.repo.GetAudio(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAudio(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, audio.BlobName); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.logger.Warn().Err(err).Str("blob", audio.BlobName).Msg("audio row deleted but blob removal failed")
	}
	return nil
}

func (s *Service) GetVideo(ctx context.Context, id int64) (*Video, error) {
	return s.repo.GetVideo(ctx, id)
}

func (s *Service) ListVideosByStreetcode(ctx context.Context, streetcodeID int64) ([]Video, error) {
	return s.repo.ListVideosByStreetcode(ctx, streetcodeID)
}

func (s *Service) CreateVideo(ctx context.Context, params VideoParams) (*Video, error) {
	cleaned, err := s.prepareVideo(params)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateVideo(ctx, cleaned)
}

func (s *Service) UpdateVideo(ctx context.Context, id int64, params VideoParams) (*Video, error) {
	cleaned, err := s.prepareVideo(params)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateVideo(ctx, id, cleaned)
}

func (s *Service) DeleteVideo(ctx context.Context, id int64) error {
	return s.repo.DeleteVideo(ctx, id)
}

func (s *Service) prepareVideo(params VideoParams) (VideoParams, error) {
	params.Title = sanitize.Text(strings.TrimSpace(params.Title))
	params.Description = sanitize.HTML(params.Description)
	params.URL = strings.TrimSpace(params.URL)
	if err := s.validate.Struct(params); err != nil {
		return VideoParams{}, fmt.Errorf("invalid video: %w", err)
	}
	return params, nil
}
