package games

import (
	"context"
	"encoding/json"
)

// Service is the upstream gateway: every catalog read the application
// performs goes through one of these operations. Implementations enforce
// validation, admission limits, retry, caching, and normalization so
// callers never talk to the game database directly.
type Service interface {
	// Search runs a free-text title search. The term must be 1-100
	// characters.
	Search(ctx context.Context, term string, limit, offset int) ([]Game, error)

	// Trending lists games by popularity count, served from a short-TTL
	// cache when fresh.
	Trending(ctx context.Context, limit, offset int) ([]Game, error)

	// Discover lists games matching the optional filters, sorted by one
	// of the allow-listed sort expressions.
	Discover(ctx context.Context, req DiscoverRequest) ([]Game, error)

	// Taxonomy lists one of the fixed catalog taxonomies: genres,
	// platforms, game_modes, or themes.
	Taxonomy(ctx context.Context, resource string) ([]TaxonomyEntry, error)

	// Detail fetches one game with the expanded field set. Returns
	// (nil, nil) when the id does not exist upstream.
	Detail(ctx context.Context, id int64) (*Game, error)

	// Recommend suggests games related to the given one, falling back
	// from the game's similar list, to shared genres, to the global
	// popularity feed. Returns (nil, nil) when the id does not exist.
	Recommend(ctx context.Context, id int64, limit int) ([]Game, error)

	// Bulk fetches summary records for a set of ids. Ids that are not
	// positive are dropped; an empty filtered set returns an empty slice
	// without an upstream call.
	Bulk(ctx context.Context, ids []int64) ([]Game, error)

	// MultiQuery forwards a pre-built multi-query body verbatim and
	// returns the upstream response as-is.
	MultiQuery(ctx context.Context, body string) (json.RawMessage, error)
}
