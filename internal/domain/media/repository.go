package media

import (
	"context"
	"errors"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrAudioNotFound = errors.New("audio not found")
	ErrVideoNotFound = errors.New("video not found")
)

// Image metadata. Bytes live in blob storage under BlobName.
type Image struct {
	ID       int64
	BlobName string
	MimeType string
	Title    string
	Alt      string
}

type Audio struct {
	ID           int64
	StreetcodeID *int64
	BlobName     string
	MimeType     string
	Title        string
	Description  string
}

// Video stores an external URL, not a blob.
type Video struct {
	ID           int64
	StreetcodeID int64
	URL          string
	Title        string
	Description  string
}

type ImageRecord struct {
	BlobName string
	MimeType string
	Title    string
	Alt      string
}

type AudioRecord struct {
	StreetcodeID *int64
	BlobName     string
	MimeType     string
	Title        string
	Description  string
}

type VideoParams struct {
	StreetcodeID int64  `validate:"required,gt=0"`
	URL          string `validate:"required,url,max=255"`
	Title        string `validate:"max=100"`
	Description  string `validate:"max=400"`
}

type Repository interface {
	GetImage(ctx context.Context, id int64) (*Image, error)
	ListImagesByStreetcode(ctx context.Context, streetcodeID int64) ([]Image, error)
	CreateImage(ctx context.Context, record ImageRecord) (*Image, error)
	LinkImage(ctx context.Context, imageID, streetcodeID int64) error
	DeleteImage(ctx context.Context, id int64) error

	GetAudio(ctx context.Context, id int64) (*Audio, error)
	GetAudioByStreetcode(ctx context.Context, streetcodeID int64) (*Audio, error)
	CreateAudio(ctx context.Context, record AudioRecord) (*Audio, error)
	DeleteAudio(ctx context.Context, id int64) error

	GetVideo(ctx context.Context, id int64) (*Video, error)
	ListVideosByStreetcode(ctx context.Context, streetcodeID int64) ([]Video, error)
	CreateVideo(ctx context.Context, params VideoParams) (*Video, error)
	UpdateVideo(ctx context.Context, id int64, params VideoParams) (*Video, error)
	DeleteVideo(ctx context.Context, id int64) error
}
