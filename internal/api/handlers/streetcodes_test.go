package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/streetcodes"
)

type stubStreetcodesRepo struct {
	nextID int64
	items  map[int64]streetcodes.Streetcode
}

func newStubStreetcodesRepo() *stubStreetcodesRepo {
	return &stubStreetcodesRepo{items: map[int64]streetcodes.Streetcode{}}
}

func fromParams(id int64, params streetcodes.CreateParams, status string) streetcodes.Streetcode {
	tagIDs := make([]int64, 0, len(params.Tags))
	for _, tag := range params.Tags {
		tagIDs = append(tagIDs, tag.TagID)
	}
	now := time.Now().UTC()
	return streetcodes.Streetcode{
		ID:                 id,
		Index:              params.Index,
		Type:               params.Type,
		Title:              params.Title,
		DateString:         params.DateString,
		Alias:              params.Alias,
		TransliterationURL: params.TransliterationURL,
		Status:             status,
		Teaser:             params.Teaser,
		EventStartDate:     params.EventStartDate,
		EventEndDate:       params.EventEndDate,
		FirstName:          params.FirstName,
		LastName:           params.LastName,
		Rank:               params.Rank,
		TagIDs:             tagIDs,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func (s *stubStreetcodesRepo) List(_ context.Context, _ streetcodes.Filters, _ streetcodes.Pagination) (streetcodes.ListResult, error) {
	result := streetcodes.ListResult{}
	for _, item := range s.items {
		result.Streetcodes = append(result.Streetcodes, item)
	}
	return result, nil
}

func (s *stubStreetcodesRepo) GetByID(_ context.Context, id int64) (*streetcodes.Streetcode, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, streetcodes.ErrNotFound
	}
	return &item, nil
}

func (s *stubStreetcodesRepo) GetByIndex(_ context.Context, index int) (*streetcodes.Streetcode, error) {
	for _, item := range s.items {
		if item.Index == index {
			return &item, nil
		}
	}
	return nil, streetcodes.ErrNotFound
}

func (s *stubStreetcodesRepo) GetByTransliterationURL(_ context.Context, url string) (*streetcodes.Streetcode, error) {
	for _, item := range s.items {
		if item.TransliterationURL == url {
			return &item, nil
		}
	}
	return nil, streetcodes.ErrNotFound
}

func (s *stubStreetcodesRepo) Create(_ context.Context, params streetcodes.CreateParams) (*streetcodes.Streetcode, error) {
	for _, item := range s.items {
		if item.Index == params.Index {
			return nil, streetcodes.ErrIndexTaken
		}
		if item.TransliterationURL == params.TransliterationURL {
			return nil, streetcodes.ErrURLTaken
		}
	}
	s.nextID++
	item := fromParams(s.nextID, params, streetcodes.StatusDraft)
	s.items[item.ID] = item
	return &item, nil
}

func (s *stubStreetcodesRepo) Update(_ context.Context, id int64, params streetcodes.UpdateParams) (*streetcodes.Streetcode, error) {
	existing, ok := s.items[id]
	if !ok {
		return nil, streetcodes.ErrNotFound
	}
	item := fromParams(id, params, existing.Status)
	item.CreatedAt = existing.CreatedAt
	s.items[id] = item
	return &item, nil
}

func (s *stubStreetcodesRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	item, ok := s.items[id]
	if !ok {
		return streetcodes.ErrNotFound
	}
	item.Status = status
	s.items[id] = item
	return nil
}

func (s *stubStreetcodesRepo) Delete(_ context.Context, id int64) error {
	if _, ok := s.items[id]; !ok {
		return streetcodes.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *stubStreetcodesRepo) Count(_ context.Context, onlyPublished bool) (int64, error) {
	var count int64
	for _, item := range s.items {
		if onlyPublished && item.Status != streetcodes.StatusPublished {
			continue
		}
		count++
	}
	return count, nil
}

func newStreetcodesHandler() (*StreetcodesHandler, *stubStreetcodesRepo) {
	repo := newStubStreetcodesRepo()
	return NewStreetcodesHandler(streetcodes.NewService(repo)), repo
}

func personCreateBody() string {
	return `{
		"index": 7,
		"type": "person",
		"title": "Taras Shevchenko",
		"date_string": "9 March 1814 - 10 March 1861",
		"alias": "Kobzar",
		"transliteration_url": "taras-shevchenko",
		"teaser": "Poet and painter",
		"first_name": "Taras",
		"last_name": "Shevchenko",
		"rank": "poet",
		"tags": [{"tag_id": 3, "index": 1, "is_visible": true}]
	}`
}

func TestStreetcodeCreateGetRoundTrip(t *testing.T) {
	h, _ := newStreetcodesHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/streetcodes", strings.NewReader(personCreateBody()))
	res := httptest.NewRecorder()
	h.Create(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	var created streetcodeResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	require.NotZero(t, created.ID)
	require.Equal(t, "person", created.Type)
	require.Equal(t, "draft", created.Status)
	require.Equal(t, "Taras", created.FirstName)
	require.Equal(t, "Shevchenko", created.LastName)
	require.Equal(t, "poet", created.Rank)
	require.Equal(t, []int64{3}, created.TagIDs)

	getReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/streetcodes/%d", created.ID), nil)
	getReq.SetPathValue("id", fmt.Sprintf("%d", created.ID))
	getRes := httptest.NewRecorder()
	h.Get(getRes, getReq)
	require.Equal(t, http.StatusOK, getRes.Code)

	var fetched streetcodeResponse
	require.NoError(t, json.NewDecoder(getRes.Body).Decode(&fetched))
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, 7, fetched.Index)
	require.Equal(t, "Taras Shevchenko", fetched.Title)
	require.Equal(t, "Kobzar", fetched.Alias)
	require.Equal(t, "taras-shevchenko", fetched.TransliterationURL)
	require.Equal(t, "Taras", fetched.FirstName)
	require.Equal(t, "Shevchenko", fetched.LastName)
}

func TestStreetcodeGetMissingNamesID(t *testing.T) {
	h, _ := newStreetcodesHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/streetcodes/42", nil)
	req.SetPathValue("id", "42")
	res := httptest.NewRecorder()
	h.Get(res, req)
	require.Equal(t, http.StatusNotFound, res.Code)

	var pd problem.ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&pd))
	require.Equal(t, problem.TypeNotFound, pd.Type)
	require.Contains(t, pd.Detail, "42")
}

func TestStreetcodeCreateEventRejectsPersonFields(t *testing.T) {
	h, _ := newStreetcodesHandler()

	body := `{
		"index": 3,
		"type": "event",
		"title": "Independence Day",
		"transliteration_url": "independence-day",
		"first_name": "Taras"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/streetcodes", strings.NewReader(body))
	res := httptest.NewRecorder()
	h.Create(res, req)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestStreetcodeCreatePersonRequiresNames(t *testing.T) {
	h, _ := newStreetcodesHandler()

	body := `{
		"index": 4,
		"type": "person",
		"title": "Unnamed",
		"transliteration_url": "unnamed"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/streetcodes", strings.NewReader(body))
	res := httptest.NewRecorder()
	h.Create(res, req)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestStreetcodeDuplicateIndexConflicts(t *testing.T) {
	h, _ := newStreetcodesHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/streetcodes", strings.NewReader(personCreateBody()))
	res := httptest.NewRecorder()
	h.Create(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	dupReq := httptest.NewRequest(http.MethodPost, "/api/v1/streetcodes", strings.NewReader(personCreateBody()))
	dupRes := httptest.NewRecorder()
	h.Create(dupRes, dupReq)
	require.Equal(t, http.StatusConflict, dupRes.Code)

	var pd problem.ProblemDetails
	require.NoError(t, json.NewDecoder(dupRes.Body).Decode(&pd))
	require.Equal(t, problem.TypeConflict, pd.Type)
}

func TestStreetcodeUpdateStatusAndCount(t *testing.T) {
	h, repo := newStreetcodesHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/streetcodes", strings.NewReader(personCreateBody()))
	res := httptest.NewRecorder()
	h.Create(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	statusReq := httptest.NewRequest(http.MethodPatch, "/api/v1/streetcodes/1/status", strings.NewReader(`{"status": "published"}`))
	statusReq.SetPathValue("id", "1")
	statusRes := httptest.NewRecorder()
	h.UpdateStatus(statusRes, statusReq)
	require.Equal(t, http.StatusNoContent, statusRes.Code)
	require.Equal(t, streetcodes.StatusPublished, repo.items[1].Status)

	countReq := httptest.NewRequest(http.MethodGet, "/api/v1/streetcodes/count?published=true", nil)
	countRes := httptest.NewRecorder()
	h.Count(countRes, countReq)
	require.Equal(t, http.StatusOK, countRes.Code)

	var payload countResponse
	require.NoError(t, json.NewDecoder(countRes.Body).Decode(&payload))
	require.Equal(t, int64(1), payload.Count)
}

func TestStreetcodeUpdateStatusRejectsUnknown(t *testing.T) {
	h, _ := newStreetcodesHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/streetcodes", strings.NewReader(personCreateBody()))
	res := httptest.NewRecorder()
	h.Create(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	statusReq := httptest.NewRequest(http.MethodPatch, "/api/v1/streetcodes/1/status", strings.NewReader(`{"status": "archived"}`))
	statusReq.SetPathValue("id", "1")
	statusRes := httptest.NewRecorder()
	h.UpdateStatus(statusRes, statusReq)
	require.Equal(t, http.StatusBadRequest, statusRes.Code)
}
