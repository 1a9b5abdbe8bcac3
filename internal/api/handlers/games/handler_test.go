package games

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Gamedex/internal/core/games"
)

// stubService implements games.Service with overridable functions.
type stubService struct {
	search    func(ctx context.Context, term string, limit, offset int) ([]games.Game, error)
	trending  func(ctx context.Context, limit, offset int) ([]games.Game, error)
	detail    func(ctx context.Context, id int64) (*games.Game, error)
	recommend func(ctx context.Context, id int64, limit int) ([]games.Game, error)
	bulk      func(ctx context.Context, ids []int64) ([]games.Game, error)
}

func (s *stubService) Search(ctx context.Context, term string, limit, offset int) ([]games.Game, error) {
	if s.search != nil {
		return s.search(ctx, term, limit, offset)
	}
	return []games.Game{}, nil
}

func (s *stubService) Trending(ctx context.Context, limit, offset int) ([]games.Game, error) {
	if s.trending != nil {
		return s.trending(ctx, limit, offset)
	}
	return []games.Game{}, nil
}

func (s *stubService) Discover(ctx context.Context, req games.DiscoverRequest) ([]games.Game, error) {
	return []games.Game{}, nil
}

func (s *stubService) Taxonomy(ctx context.Context, resource string) ([]games.TaxonomyEntry, error) {
	return []games.TaxonomyEntry{}, nil
}

func (s *stubService) Detail(ctx context.Context, id int64) (*games.Game, error) {
	if s.detail != nil {
		return s.detail(ctx, id)
	}
	return nil, nil
}

func (s *stubService) Recommend(ctx context.Context, id int64, limit int) ([]games.Game, error) {
	if s.recommend != nil {
		return s.recommend(ctx, id, limit)
	}
	return nil, nil
}

func (s *stubService) Bulk(ctx context.Context, ids []int64) ([]games.Game, error) {
	if s.bulk != nil {
		return s.bulk(ctx, ids)
	}
	return []games.Game{}, nil
}

func (s *stubService) MultiQuery(ctx context.Context, body string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func doQuery(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/games", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleQuery(rec, req)
	return rec
}

func TestHandleQueryRejectsMalformedBody(t *testing.T) {
	h := NewHandler(&stubService{})

	rec := doQuery(h, `{"mode": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "InvalidRequest", body.Error)
}

func TestHandleQueryRejectsUnknownMode(t *testing.T) {
	h := NewHandler(&stubService{})

	rec := doQuery(h, `{"mode":"firehose"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doQuery(h, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQueryValidationErrorsAre400(t *testing.T) {
	h := NewHandler(&stubService{
		search: func(ctx context.Context, term string, limit, offset int) ([]games.Game, error) {
			return nil, &games.ValidationError{Field: "term", Reason: "must be between 1 and 100 characters"}
		},
	})

	rec := doQuery(h, `{"mode":"search","term":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "term")
}

func TestHandleQueryDetailNotFoundReturnsNullWith404(t *testing.T) {
	h := NewHandler(&stubService{})

	rec := doQuery(h, `{"mode":"detail","id":99999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestHandleQueryBulkBoundsEnforcedBeforeService(t *testing.T) {
	called := false
	h := NewHandler(&stubService{
		bulk: func(ctx context.Context, ids []int64) ([]games.Game, error) {
			called = true
			return []games.Game{}, nil
		},
	})

	rec := doQuery(h, `{"mode":"bulk","ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestHandleQueryCacheControlPerMode(t *testing.T) {
	h := NewHandler(&stubService{
		trending: func(ctx context.Context, limit, offset int) ([]games.Game, error) {
			return []games.Game{{ID: 1}}, nil
		},
		detail: func(ctx context.Context, id int64) (*games.Game, error) {
			return &games.Game{ID: id}, nil
		},
	})

	rec := doQuery(h, `{"mode":"trending"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "stale-while-revalidate")

	rec = doQuery(h, `{"mode":"search","term":"hades"}`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = doQuery(h, `{"mode":"detail","id":7}`)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "s-maxage=3600")

	rec = doQuery(h, `{"mode":"taxonomy","resource":"genres"}`)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "s-maxage=86400")
}

func TestHandleQueryUpstreamErrorMapping(t *testing.T) {
	h := NewHandler(&stubService{
		trending: func(ctx context.Context, limit, offset int) ([]games.Game, error) {
			return nil, &games.UpstreamError{Status: http.StatusTooManyRequests}
		},
		detail: func(ctx context.Context, id int64) (*games.Game, error) {
			return nil, &games.UpstreamError{Status: http.StatusServiceUnavailable, Body: "upstream down"}
		},
	})

	rec := doQuery(h, `{"mode":"trending"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = doQuery(h, `{"mode":"detail","id":7}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "503", "upstream status is preserved in the message")
}

func TestHandleQueryRecommendEmptyListIs200(t *testing.T) {
	h := NewHandler(&stubService{
		recommend: func(ctx context.Context, id int64, limit int) ([]games.Game, error) {
			return []games.Game{}, nil
		},
	})

	rec := doQuery(h, `{"mode":"recommend","id":7}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
