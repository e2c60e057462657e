package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/toponyms"
)

type stubToponymsRepo struct {
	nextID int64
	items  map[int64]toponyms.Toponym
	links  map[int64][]int64
}

func newStubToponymsRepo() *stubToponymsRepo {
	return &stubToponymsRepo{
		items: map[int64]toponyms.Toponym{},
		links: map[int64][]int64{},
	}
}

func (s *stubToponymsRepo) List(_ context.Context, query string, _ int) ([]toponyms.Toponym, error) {
	var out []toponyms.Toponym
	for _, item := range s.items {
		if query == "" || strings.Contains(item.StreetName, query) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubToponymsRepo) GetByID(_ context.Context, id int64) (*toponyms.Toponym, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, toponyms.ErrNotFound
	}
	return &item, nil
}

func (s *stubToponymsRepo) ListByStreetcode(_ context.Context, streetcodeID int64) ([]toponyms.Toponym, error) {
	var out []toponyms.Toponym
	for toponymID, streetcodeIDs := range s.links {
		for _, scID := range streetcodeIDs {
			if scID == streetcodeID {
				out = append(out, s.items[toponymID])
			}
		}
	}
	return out, nil
}

func toponymFromParams(id int64, params toponyms.CreateParams) toponyms.Toponym {
	item := toponyms.Toponym{
		ID:             id,
		StreetName:     params.StreetName,
		Community:      params.Community,
		AdminRegionOld: params.AdminRegionOld,
		AdminRegionNew: params.AdminRegionNew,
		Gromada:        params.Gromada,
	}
	if params.Latitude != nil && params.Longitude != nil {
		item.Coordinate = &toponyms.Coordinate{ID: id, Latitude: *params.Latitude, Longitude: *params.Longitude}
	}
	return item
}

func (s *stubToponymsRepo) Create(_ context.Context, params toponyms.CreateParams) (*toponyms.Toponym, error) {
	s.nextID++
	item := toponymFromParams(s.nextID, params)
	s.items[item.ID] = item
	return &item, nil
}

func (s *stubToponymsRepo) Update(_ context.Context, id int64, params toponyms.UpdateParams) (*toponyms.Toponym, error) {
	if _, ok := s.items[id]; !ok {
		return nil, toponyms.ErrNotFound
	}
	item := toponymFromParams(id, params)
	s.items[id] = item
	return &item, nil
}

func (s *stubToponymsRepo) Delete(_ context.Context, id int64) error {
	if _, ok := s.items[id]; !ok {
		return toponyms.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *stubToponymsRepo) Link(_ context.Context, toponymID, streetcodeID int64) error {
	if _, ok := s.items[toponymID]; !ok {
		return toponyms.ErrNotFound
	}
	s.links[toponymID] = append(s.links[toponymID], streetcodeID)
	return nil
}

func (s *stubToponymsRepo) Unlink(_ context.Context, toponymID, streetcodeID int64) error {
	for i, scID := range s.links[toponymID] {
		if scID == streetcodeID {
			s.links[toponymID] = append(s.links[toponymID][:i], s.links[toponymID][i+1:]...)
			return nil
		}
	}
	return toponyms.ErrNotFound
}

func newToponymsHandler() *ToponymsHandler {
	return NewToponymsHandler(toponyms.NewService(newStubToponymsRepo()))
}

func TestToponymCreateGetRoundTrip(t *testing.T) {
	h := newToponymsHandler()

	body := `{
		"street_name": "Khreshchatyk Street",
		"community": "Kyiv",
		"admin_region_new": "Kyiv Oblast",
		"latitude": 50.447,
		"longitude": 30.522
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/toponyms", strings.NewReader(body))
	res := httptest.NewRecorder()
	h.Create(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	var created toponymResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	require.NotZero(t, created.ID)
	require.Equal(t, "Khreshchatyk Street", created.StreetName)
	require.NotNil(t, created.Coordinate)
	require.InDelta(t, 50.447, created.Coordinate.Latitude, 1e-6)

	getReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/toponyms/%d", created.ID), nil)
	getReq.SetPathValue("id", fmt.Sprintf("%d", created.ID))
	getRes := httptest.NewRecorder()
	h.Get(getRes, getReq)
	require.Equal(t, http.StatusOK, getRes.Code)

	var fetched toponymResponse
	require.NoError(t, json.NewDecoder(getRes.Body).Decode(&fetched))
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, "Kyiv", fetched.Community)
}

func TestToponymLinkMissingNamesIDs(t *testing.T) {
	h := newToponymsHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/toponyms/3/streetcodes/9", nil)
	req.SetPathValue("id", "3")
	req.SetPathValue("streetcodeId", "9")
	res := httptest.NewRecorder()
	h.Link(res, req)
	require.Equal(t, http.StatusNotFound, res.Code)

	var pd problem.ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&pd))
	require.Equal(t, problem.TypeNotFound, pd.Type)
	require.Contains(t, pd.Detail, "3")
	require.Contains(t, pd.Detail, "9")
}
