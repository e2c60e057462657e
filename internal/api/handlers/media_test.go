package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/media"
)

type stubMediaRepo struct {
	media.Repository

	nextVideoID int64
	videos      map[int64]media.Video
}

func newStubMediaRepo() *stubMediaRepo {
	return &stubMediaRepo{videos: map[int64]media.Video{}}
}

func (s *stubMediaRepo) GetVideo(_ context.Context, id int64) (*media.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return nil, media.ErrVideoNotFound
	}
	return &video, nil
}

func (s *stubMediaRepo) ListVideosByStreetcode(_ context.Context, streetcodeID int64) ([]media.Video, error) {
	var items []media.Video
	for _, video := range s.videos {
		if video.StreetcodeID == streetcodeID {
			items = append(items, video)
		}
	}
	return items, nil
}

func (s *stubMediaRepo) CreateVideo(_ context.Context, params media.VideoParams) (*media.Video, error) {
	s.nextVideoID++
	video := media.Video{
		ID:           s.nextVideoID,
		StreetcodeID: params.StreetcodeID,
		URL:          params.URL,
		Title:        params.Title,
		Description:  params.Description,
	}
	s.videos[video.ID] = video
	return &video, nil
}

func (s *stubMediaRepo) UpdateVideo(_ context.Context, id int64, params media.VideoParams) (*media.Video, error) {
	if _, ok := s.videos[id]; !ok {
		return nil, media.ErrVideoNotFound
	}
	video := media.Video{
		ID:           id,
		StreetcodeID: params.StreetcodeID,
		URL:          params.URL,
		Title:        params.Title,
		Description:  params.Description,
	}
	s.videos[id] = video
	return &video, nil
}

func (s *stubMediaRepo) DeleteVideo(_ context.Context, id int64) error {
	if _, ok := s.videos[id]; !ok {
		return media.ErrVideoNotFound
	}
	delete(s.videos, id)
	return nil
}

func newMediaHandler() *MediaHandler {
	return NewMediaHandler(media.NewService(newStubMediaRepo(), nil, zerolog.Nop()))
}

func TestVideoCreateGetRoundTrip(t *testing.T) {
	h := newMediaHandler()

	body := `{
		"streetcode_id": 5,
		"url": "https://www.youtube.com/watch?v=abc123",
		"title": "Documentary",
		"description": "Archival footage"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", strings.NewReader(body))
	res := httptest.NewRecorder()
	h.CreateVideo(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	var created videoResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	require.NotZero(t, created.ID)
	require.Equal(t, int64(5), created.StreetcodeID)

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/videos/1", nil)
	getReq.SetPathValue("id", "1")
	getRes := httptest.NewRecorder()
	h.GetVideo(getRes, getReq)
	require.Equal(t, http.StatusOK, getRes.Code)

	var fetched videoResponse
	require.NoError(t, json.NewDecoder(getRes.Body).Decode(&fetched))
	require.Equal(t, created, fetched)
}

func TestVideoGetMissingNamesID(t *testing.T) {
	h := newMediaHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/77", nil)
	req.SetPathValue("id", "77")
	res := httptest.NewRecorder()
	h.GetVideo(res, req)
	require.Equal(t, http.StatusNotFound, res.Code)

	var pd problem.ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&pd))
	require.Equal(t, problem.TypeNotFound, pd.Type)
	require.Contains(t, pd.Detail, "77")
}

func TestVideoCreateRejectsBadURL(t *testing.T) {
	h := newMediaHandler()

	body := `{"streetcode_id": 5, "url": "not a url"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", strings.NewReader(body))
	res := httptest.NewRecorder()
	h.CreateVideo(res, req)
	require.Equal(t, http.StatusBadRequest, res.Code)
}
