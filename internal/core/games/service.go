package games

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"
)

// Default upstream endpoints. Both can be overridden through Config for
// self-hosted proxies and tests.
const (
	DefaultBaseURL  = "https://api.igdb.com/v4"
	DefaultOAuthURL = "https://id.twitch.tv/oauth2/token"
)

// Upstream resources queried by the gateway.
const (
	resourceGames      = "games"
	resourcePopularity = "popularity_primitives"
	resourceMultiQuery = "multiquery"
)

// Config carries everything the gateway needs at construction. Zero
// values fall back to production defaults.
type Config struct {
	BaseURL      string
	OAuthURL     string
	ClientID     string
	ClientSecret string

	// HTTPClient, TrendingTTL and the backoff bases exist so tests can
	// run against local servers without real waits.
	HTTPClient      *http.Client
	TrendingTTL     time.Duration
	HTTPBackoffBase time.Duration
	NetBackoffBase  time.Duration
}

// gameService is the long-lived gateway instance. Token cache, admission
// state, and the trending cache all live here rather than in package
// globals so lifecycle and synchronization stay explicit.
type gameService struct {
	client *upstreamClient
	cache  *trendingCache
	flight singleflight.Group
}

// NewService builds the gateway. Construct one per process at startup
// and inject it into handlers.
func NewService(cfg Config) Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = DefaultOAuthURL
	}

	tokens := newTokenManager(cfg.OAuthURL, cfg.ClientID, cfg.ClientSecret, cfg.HTTPClient)
	adm := newAdmission(upstreamRequestsPerSecond, upstreamBurst, upstreamMaxInFlight)
	client := newUpstreamClient(cfg.BaseURL, cfg.ClientID, tokens, adm,
		cfg.HTTPBackoffBase, cfg.NetBackoffBase, cfg.HTTPClient)

	return &gameService{
		client: client,
		cache:  newTrendingCache(cfg.TrendingTTL),
	}
}

// normalizePagination applies the shared limit/offset defaults and bounds.
func normalizePagination(limit, offset int) (int, int, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || limit > MaxLimit {
		return 0, 0, &ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxLimit)}
	}
	if offset < 0 {
		return 0, 0, &ValidationError{Field: "offset", Reason: "must not be negative"}
	}
	return limit, offset, nil
}

func (s *gameService) Search(ctx context.Context, term string, limit, offset int) ([]Game, error) {
	if n := utf8.RuneCountInString(term); n < 1 || n > 100 {
		return nil, &ValidationError{Field: "term", Reason: "must be between 1 and 100 characters"}
	}
	limit, offset, err := normalizePagination(limit, offset)
	if err != nil {
		return nil, err
	}

	body, err := s.client.Send(ctx, resourceGames, buildSearchQuery(term, limit, offset))
	if err != nil {
		return nil, err
	}
	list, err := decodeGames(body)
	if err != nil {
		return nil, err
	}
	return normalizeGameList(list), nil
}

func (s *gameService) Trending(ctx context.Context, limit, offset int) ([]Game, error) {
	limit, offset, err := normalizePagination(limit, offset)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.get(limit, offset); ok {
		return cached, nil
	}

	// Concurrent misses for the same page collapse into one upstream call.
	v, err, _ := s.flight.Do(trendingKey(limit, offset), func() (interface{}, error) {
		if cached, ok := s.cache.get(limit, offset); ok {
			return cached, nil
		}
		body, err := s.client.Send(ctx, resourceGames, buildTrendingQuery(limit, offset))
		if err != nil {
			return nil, err
		}
		list, err := decodeGames(body)
		if err != nil {
			return nil, err
		}
		list = normalizeGameList(list)
		s.cache.set(limit, offset, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Game), nil
}

func (s *gameService) Discover(ctx context.Context, req DiscoverRequest) ([]Game, error) {
	if req.Sort != "" && !isAllowedSort(req.Sort) {
		return nil, &ValidationError{Field: "sort", Reason: "must be one of: " + strings.Join(discoverSorts, ", ")}
	}
	if y := req.Filters.Year; y != 0 && (y < 1950 || y > 2100) {
		return nil, &ValidationError{Field: "filters.year", Reason: "must be between 1950 and 2100"}
	}
	if req.Filters.RatingMin < 0 || req.Filters.RatingMin > 100 {
		return nil, &ValidationError{Field: "filters.ratingMin", Reason: "must be between 0 and 100"}
	}

	var err error
	req.Limit, req.Offset, err = normalizePagination(req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	body, err := s.client.Send(ctx, resourceGames, buildDiscoverQuery(req))
	if err != nil {
		return nil, err
	}
	list, err := decodeGames(body)
	if err != nil {
		return nil, err
	}
	return normalizeGameList(list), nil
}

func isAllowedSort(sortExpr string) bool {
	for _, allowed := range discoverSorts {
		if sortExpr == allowed {
			return true
		}
	}
	return false
}

func (s *gameService) Taxonomy(ctx context.Context, resource string) ([]TaxonomyEntry, error) {
	query, ok := taxonomyQueries[resource]
	if !ok {
		return nil, &ValidationError{Field: "resource", Reason: "must be one of: genres, platforms, game_modes, themes"}
	}

	body, err := s.client.Send(ctx, resource, query)
	if err != nil {
		return nil, err
	}

	var entries []TaxonomyEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", resource, err)
	}
	return normalizeTaxonomy(entries), nil
}

func (s *gameService) Detail(ctx context.Context, id int64) (*Game, error) {
	if id <= 0 {
		return nil, &ValidationError{Field: "id", Reason: "must be a positive integer"}
	}

	body, err := s.client.Send(ctx, resourceGames, buildDetailQuery(id))
	if err != nil {
		return nil, err
	}
	list, err := decodeGames(body)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		// Entity-shaped absence, not an error.
		return nil, nil
	}
	return normalizeGameDetail(&list[0]), nil
}

// Recommend walks a three-tier fallback: the source game's own similar
// list, then a shared-genre query, then the global popularity feed.
func (s *gameService) Recommend(ctx context.Context, id int64, limit int) ([]Game, error) {
	if id <= 0 {
		return nil, &ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	limit, _, err := normalizePagination(limit, 0)
	if err != nil {
		return nil, err
	}

	body, err := s.client.Send(ctx, resourceGames, buildRecommendSeedQuery(id))
	if err != nil {
		return nil, err
	}
	var seeds []recommendSeed
	if err := json.Unmarshal(body, &seeds); err != nil {
		return nil, fmt.Errorf("failed to decode recommendation seed: %w", err)
	}
	if len(seeds) == 0 {
		return nil, nil
	}
	seed := seeds[0]

	if similar := dedupeIDs(seed.SimilarGames); len(similar) > 0 {
		if len(similar) > limit {
			similar = similar[:limit]
		}
		return s.Bulk(ctx, similar)
	}

	if len(seed.Genres) > 0 {
		return s.recommendByGenres(ctx, seed.Genres, id, limit)
	}

	return s.recommendByPopularity(ctx, limit)
}

func (s *gameService) recommendByGenres(ctx context.Context, genres IDList, excludeID int64, limit int) ([]Game, error) {
	body, err := s.client.Send(ctx, resourceGames, buildGenreRecommendQuery(genres, excludeID, limit))
	if err != nil {
		return nil, err
	}
	list, err := decodeGames(body)
	if err != nil {
		return nil, err
	}
	list = normalizeGameList(list)

	// The upstream sorts by rating only; break ties on vote count here.
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].TotalRating != list[j].TotalRating {
			return list[i].TotalRating > list[j].TotalRating
		}
		return list[i].TotalRatingCount > list[j].TotalRatingCount
	})
	return list, nil
}

// recommendByPopularity fetches the raw popularity feed, bulk-fetches
// the games behind it, and reorders the records back into feed order
// since bulk fetches do not guarantee ordering.
func (s *gameService) recommendByPopularity(ctx context.Context, limit int) ([]Game, error) {
	body, err := s.client.Send(ctx, resourcePopularity, buildPopularityQuery(limit))
	if err != nil {
		return nil, err
	}
	var feed []popularityPrimitive
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to decode popularity feed: %w", err)
	}

	ids := make(IDList, 0, len(feed))
	for _, p := range feed {
		if p.GameID > 0 {
			ids = append(ids, p.GameID)
		}
	}
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return []Game{}, nil
	}

	fetched, err := s.Bulk(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]Game, len(fetched))
	for _, g := range fetched {
		byID[g.ID] = g
	}
	ordered := make([]Game, 0, len(ids))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			ordered = append(ordered, g)
		}
	}
	return ordered, nil
}

func (s *gameService) Bulk(ctx context.Context, ids []int64) ([]Game, error) {
	filtered := make(IDList, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			filtered = append(filtered, id)
		}
	}
	filtered = dedupeIDs(filtered)
	if len(filtered) == 0 {
		return []Game{}, nil
	}
	if len(filtered) > MaxLimit {
		filtered = filtered[:MaxLimit]
	}

	body, err := s.client.Send(ctx, resourceGames, buildBulkQuery(filtered))
	if err != nil {
		return nil, err
	}
	list, err := decodeGames(body)
	if err != nil {
		return nil, err
	}
	return normalizeGameList(list), nil
}

func (s *gameService) MultiQuery(ctx context.Context, body string) (json.RawMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &ValidationError{Field: "body", Reason: "must be a non-empty query"}
	}

	resp, err := s.client.Send(ctx, resourceMultiQuery, body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp), nil
}

func decodeGames(body []byte) ([]Game, error) {
	var list []Game
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return list, nil
}
