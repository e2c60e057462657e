package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streetcode-platform/server/internal/domain/tags"
)

type stubTagsRepo struct {
	nextID int64
	items  map[int64]tags.Tag
}

func newStubTagsRepo() *stubTagsRepo {
	return &stubTagsRepo{items: map[int64]tags.Tag{}}
}

func (s *stubTagsRepo) List(_ context.Context) ([]tags.Tag, error) {
	var items []tags.Tag
	for _, tag := range s.items {
		items = append(items, tag)
	}
	return items, nil
}

func (s *stubTagsRepo) GetByID(_ context.Context, id int64) (*tags.Tag, error) {
	tag, ok := s.items[id]
	if !ok {
		return nil, tags.ErrNotFound
	}
	return &tag, nil
}

func (s *stubTagsRepo) GetByTitle(_ context.Context, title string) (*tags.Tag, error) {
	for _, tag := range s.items {
		if strings.EqualFold(tag.Title, title) {
			return &tag, nil
		}
	}
	return nil, tags.ErrNotFound
}

func (s *stubTagsRepo) ListByStreetcode(_ context.Context, _ int64) ([]tags.StreetcodeTag, error) {
	return nil, nil
}

func (s *stubTagsRepo) Create(_ context.Context, title string) (*tags.Tag, error) {
	for _, tag := range s.items {
		if strings.EqualFold(tag.Title, title) {
			return nil, tags.ErrTitleTaken
		}
	}
	s.nextID++
	tag := tags.Tag{ID: s.nextID, Title: title}
	s.items[tag.ID] = tag
	return &tag, nil
}

func (s *stubTagsRepo) Update(_ context.Context, id int64, title string) (*tags.Tag, error) {
	if _, ok := s.items[id]; !ok {
		return nil, tags.ErrNotFound
	}
	tag := tags.Tag{ID: id, Title: title}
	s.items[id] = tag
	return &tag, nil
}

func (s *stubTagsRepo) Delete(_ context.Context, id int64) error {
	if _, ok := s.items[id]; !ok {
		return tags.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func newTagsHandler() *TagsHandler {
	return NewTagsHandler(tags.NewService(newStubTagsRepo()))
}

func TestTagCreateGetRoundTrip(t *testing.T) {
	h := newTagsHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tags", strings.NewReader(`{"title": "Cossacks"}`))
	res := httptest.NewRecorder()
	h.Create(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	var created tagResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	require.Equal(t, "Cossacks", created.Title)

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/tags/1", nil)
	getReq.SetPathValue("id", "1")
	getRes := httptest.NewRecorder()
	h.Get(getRes, getReq)
	require.Equal(t, http.StatusOK, getRes.Code)

	var fetched tagResponse
	require.NoError(t, json.NewDecoder(getRes.Body).Decode(&fetched))
	require.Equal(t, created, fetched)
}

func TestTagDuplicateTitleConflicts(t *testing.T) {
	h := newTagsHandler()

	first := httptest.NewRecorder()
	h.Create(first, httptest.NewRequest(http.MethodPost, "/api/v1/tags", strings.NewReader(`{"title": "Cossacks"}`)))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	h.Create(second, httptest.NewRequest(http.MethodPost, "/api/v1/tags", strings.NewReader(`{"title": "Cossacks"}`)))
	require.Equal(t, http.StatusConflict, second.Code)
}

func TestTagDeleteMissingNamesID(t *testing.T) {
	h := newTagsHandler()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tags/9", nil)
	req.SetPathValue("id", "9")
	res := httptest.NewRecorder()
	h.Delete(res, req)
	require.Equal(t, http.StatusNotFound, res.Code)
}
