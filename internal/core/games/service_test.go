package games

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstreamRecorder captures every query the gateway issues so tests can
// assert on query shapes and call counts.
type upstreamRecorder struct {
	mu    sync.Mutex
	calls []upstreamCall
}

type upstreamCall struct {
	resource string
	query    string
}

func (r *upstreamRecorder) record(resource, query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, upstreamCall{resource: resource, query: query})
}

func (r *upstreamRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *upstreamRecorder) resources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.resource
	}
	return out
}

// newTestService spins up fake identity-provider and upstream servers and
// builds a gateway against them. respond maps (resource, query) to a JSON
// response body.
func newTestService(t *testing.T, ttl time.Duration, respond func(resource, query string) string) (Service, *upstreamRecorder) {
	t.Helper()

	var exchanges atomic.Int64
	tokenTS := newTokenServer(t, &exchanges)

	rec := &upstreamRecorder{}
	upstreamTS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		resource := strings.TrimPrefix(r.URL.Path, "/")
		rec.record(resource, string(body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, respond(resource, string(body)))
	}))
	t.Cleanup(upstreamTS.Close)

	svc := NewService(Config{
		BaseURL:         upstreamTS.URL,
		OAuthURL:        tokenTS.URL,
		ClientID:        "client-id",
		ClientSecret:    "client-secret",
		TrendingTTL:     ttl,
		HTTPBackoffBase: time.Millisecond,
		NetBackoffBase:  time.Millisecond,
	})
	return svc, rec
}

func emptyList(string, string) string { return "[]" }

func TestSearchValidation(t *testing.T) {
	svc, rec := newTestService(t, 0, emptyList)
	ctx := context.Background()

	_, err := svc.Search(ctx, "", 12, 0)
	assert.True(t, IsValidationError(err))

	_, err = svc.Search(ctx, strings.Repeat("z", 101), 12, 0)
	assert.True(t, IsValidationError(err))

	_, err = svc.Search(ctx, "zelda", 51, 0)
	assert.True(t, IsValidationError(err))

	_, err = svc.Search(ctx, "zelda", 12, -1)
	assert.True(t, IsValidationError(err))

	assert.Zero(t, rec.count(), "validation failures must not reach the upstream")
}

func TestSearchAppliesDefaultsAndNormalizes(t *testing.T) {
	svc, rec := newTestService(t, 0, func(resource, query string) string {
		return `[{"id":1,"name":"Celeste","cover":{"id":9,"url":"//images.example.com/t_thumb/co1.jpg"}}]`
	})

	games, err := svc.Search(context.Background(), "celeste", 0, 0)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "https://images.example.com/t_cover_big/co1.jpg", games[0].Cover.URL)

	require.Equal(t, 1, rec.count())
	assert.Contains(t, rec.calls[0].query, "limit 12;", "limit defaults to 12")
}

func TestBulkEmptyFilteredSetSkipsUpstream(t *testing.T) {
	svc, rec := newTestService(t, 0, emptyList)

	games, err := svc.Bulk(context.Background(), []int64{0, -4})
	require.NoError(t, err)
	assert.Empty(t, games)
	assert.Zero(t, rec.count(), "no upstream call for an empty filtered id set")
}

func TestBulkDeduplicatesIDs(t *testing.T) {
	svc, rec := newTestService(t, 0, emptyList)

	_, err := svc.Bulk(context.Background(), []int64{9, 3, 9, -1, 3})
	require.NoError(t, err)
	require.Equal(t, 1, rec.count())
	assert.Contains(t, rec.calls[0].query, "where id = (9,3);")
}

func TestTrendingCacheAbsorbsRepeatRequests(t *testing.T) {
	svc, rec := newTestService(t, 100*time.Millisecond, func(resource, query string) string {
		return `[{"id":5,"name":"Hades"}]`
	})
	ctx := context.Background()

	_, err := svc.Trending(ctx, 12, 0)
	require.NoError(t, err)
	_, err = svc.Trending(ctx, 12, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count(), "second request within the TTL is served from cache")

	// Different pagination is a different cache entry.
	_, err = svc.Trending(ctx, 12, 12)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.count())

	time.Sleep(150 * time.Millisecond)
	_, err = svc.Trending(ctx, 12, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.count(), "expired entry triggers a fresh upstream call")
}

func TestDetailNotFoundReturnsNil(t *testing.T) {
	svc, _ := newTestService(t, 0, emptyList)

	game, err := svc.Detail(context.Background(), 99999)
	require.NoError(t, err)
	assert.Nil(t, game)
}

func TestDetailNormalizesToLargeTiers(t *testing.T) {
	svc, _ := newTestService(t, 0, func(resource, query string) string {
		return `[{"id":7,"name":"Control","cover":{"url":"//images.example.com/t_thumb/co7.jpg"},` +
			`"screenshots":[{"url":"//images.example.com/t_thumb/sc7.jpg"}],"similar_games":[3,3,9]}]`
	})

	game, err := svc.Detail(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, "https://images.example.com/t_1080p/co7.jpg", game.Cover.URL)
	assert.Equal(t, "https://images.example.com/t_screenshot_huge/sc7.jpg", game.Screenshots[0].URL)
	assert.Equal(t, IDList{3, 9}, game.SimilarGames)
}

func TestRecommendUsesSimilarGamesFirst(t *testing.T) {
	svc, rec := newTestService(t, 0, func(resource, query string) string {
		if strings.Contains(query, "fields genres, similar_games") {
			return `[{"id":7,"genres":[4,5],"similar_games":[3,3,9]}]`
		}
		return `[{"id":3},{"id":9}]`
	})

	games, err := svc.Recommend(context.Background(), 7, 12)
	require.NoError(t, err)
	assert.Len(t, games, 2)

	require.Equal(t, 2, rec.count())
	assert.Contains(t, rec.calls[1].query, "where id = (3,9);", "similar ids are bulk fetched")
}

func TestRecommendFallsBackToGenres(t *testing.T) {
	svc, rec := newTestService(t, 0, func(resource, query string) string {
		if strings.Contains(query, "fields genres, similar_games") {
			return `[{"id":7,"genres":[4,5],"similar_games":[]}]`
		}
		return `[{"id":2,"total_rating":90,"total_rating_count":50},` +
			`{"id":4,"total_rating":90,"total_rating_count":900},` +
			`{"id":6,"total_rating":95,"total_rating_count":10}]`
	})

	games, err := svc.Recommend(context.Background(), 7, 12)
	require.NoError(t, err)

	require.Equal(t, 2, rec.count())
	assert.Contains(t, rec.calls[1].query, "genres = (4,5)")
	assert.Contains(t, rec.calls[1].query, "id != 7")
	assert.NotContains(t, rec.resources(), resourcePopularity,
		"genre branch must win over the popularity feed")

	// Rating descending, vote count breaking the tie.
	require.Len(t, games, 3)
	assert.Equal(t, int64(6), games[0].ID)
	assert.Equal(t, int64(4), games[1].ID)
	assert.Equal(t, int64(2), games[2].ID)
}

func TestRecommendPopularityFeedPreservesFeedOrder(t *testing.T) {
	svc, rec := newTestService(t, 0, func(resource, query string) string {
		switch {
		case strings.Contains(query, "fields genres, similar_games"):
			return `[{"id":7,"genres":[],"similar_games":[]}]`
		case resource == resourcePopularity:
			return `[{"game_id":30,"value":9.1},{"game_id":10,"value":8.2},{"game_id":20,"value":7.3}]`
		default:
			// Bulk fetch returns the records in a different order.
			return `[{"id":10},{"id":20},{"id":30}]`
		}
	})

	games, err := svc.Recommend(context.Background(), 7, 12)
	require.NoError(t, err)

	require.Len(t, games, 3)
	assert.Equal(t, int64(30), games[0].ID)
	assert.Equal(t, int64(10), games[1].ID)
	assert.Equal(t, int64(20), games[2].ID)

	assert.Contains(t, rec.resources(), resourcePopularity)
}

func TestRecommendMissingSourceReturnsNil(t *testing.T) {
	svc, _ := newTestService(t, 0, emptyList)

	games, err := svc.Recommend(context.Background(), 424242, 12)
	require.NoError(t, err)
	assert.Nil(t, games)
}

func TestTaxonomyValidatesResource(t *testing.T) {
	svc, rec := newTestService(t, 0, emptyList)

	_, err := svc.Taxonomy(context.Background(), "publishers")
	assert.True(t, IsValidationError(err))
	assert.Zero(t, rec.count())

	_, err = svc.Taxonomy(context.Background(), ResourceGenres)
	require.NoError(t, err)
	require.Equal(t, 1, rec.count())
	assert.Equal(t, ResourceGenres, rec.calls[0].resource)
}

func TestMultiQueryPassesBodyVerbatim(t *testing.T) {
	const body = `query games "a" { fields name; }; query genres "b" { fields name; };`

	svc, rec := newTestService(t, 0, func(resource, query string) string {
		return `[{"name":"a","result":[]}]`
	})

	out, err := svc.MultiQuery(context.Background(), body)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"a","result":[]}]`, string(out))

	require.Equal(t, 1, rec.count())
	assert.Equal(t, resourceMultiQuery, rec.calls[0].resource)
	assert.Equal(t, body, rec.calls[0].query)

	_, err = svc.MultiQuery(context.Background(), "   ")
	assert.True(t, IsValidationError(err))
}
