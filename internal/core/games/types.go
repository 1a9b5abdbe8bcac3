package games

import (
	"encoding/json"
	"math"
)

// Pagination bounds shared by the list-returning operations
const (
	DefaultLimit = 12
	MaxLimit     = 50
)

// Taxonomy resources the upstream exposes for catalog filtering
const (
	ResourceGenres    = "genres"
	ResourcePlatforms = "platforms"
	ResourceGameModes = "game_modes"
	ResourceThemes    = "themes"
)

// Image is a nested upstream image reference. URL is rewritten to a
// fully-qualified, size-selected CDN form during normalization.
type Image struct {
	ID  int64  `json:"id,omitempty"`
	URL string `json:"url,omitempty"`
}

// NamedEntry covers the simple id+name upstream entities (genres,
// game modes, themes, companies).
type NamedEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// Platform includes the logo image so platform rows can render icons.
type Platform struct {
	ID           int64  `json:"id"`
	Name         string `json:"name,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
	PlatformLogo *Image `json:"platform_logo,omitempty"`
}

// Video is an external trailer/clip reference.
type Video struct {
	ID      int64  `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	VideoID string `json:"video_id,omitempty"`
}

// Website is an external link attached to a game.
type Website struct {
	ID       int64  `json:"id,omitempty"`
	URL      string `json:"url,omitempty"`
	Category int    `json:"category,omitempty"`
}

// InvolvedCompany links a company to a game with its role flags.
type InvolvedCompany struct {
	ID        int64       `json:"id,omitempty"`
	Company   *NamedEntry `json:"company,omitempty"`
	Developer bool        `json:"developer,omitempty"`
	Publisher bool        `json:"publisher,omitempty"`
}

// IDList decodes an upstream id array tolerantly: non-finite,
// non-positive, and fractional values are dropped instead of failing
// the whole payload.
type IDList []int64

func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v <= 0 || v != math.Trunc(v) {
			continue
		}
		ids = append(ids, int64(v))
	}
	*l = ids
	return nil
}

// Game is the upstream game entity as served to clients. List queries
// populate the summary fields; detail queries additionally populate
// the expanded media/company fields.
type Game struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name,omitempty"`
	Summary           string            `json:"summary,omitempty"`
	Cover             *Image            `json:"cover,omitempty"`
	FirstReleaseDate  int64             `json:"first_release_date,omitempty"`
	TotalRating       float64           `json:"total_rating,omitempty"`
	TotalRatingCount  int64             `json:"total_rating_count,omitempty"`
	Rating            float64           `json:"rating,omitempty"`
	RatingCount       int64             `json:"rating_count,omitempty"`
	AggregatedRating  float64           `json:"aggregated_rating,omitempty"`
	Genres            []NamedEntry      `json:"genres,omitempty"`
	Platforms         []Platform        `json:"platforms,omitempty"`
	GameModes         []NamedEntry      `json:"game_modes,omitempty"`
	Themes            []NamedEntry      `json:"themes,omitempty"`
	Screenshots       []Image           `json:"screenshots,omitempty"`
	Videos            []Video           `json:"videos,omitempty"`
	Websites          []Website         `json:"websites,omitempty"`
	InvolvedCompanies []InvolvedCompany `json:"involved_companies,omitempty"`
	SimilarGames      IDList            `json:"similar_games,omitempty"`
}

// TaxonomyEntry is one row of a taxonomy listing (genre, platform,
// game mode, or theme).
type TaxonomyEntry struct {
	ID           int64  `json:"id"`
	Name         string `json:"name,omitempty"`
	Slug         string `json:"slug,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
	PlatformLogo *Image `json:"platform_logo,omitempty"`
}

// DiscoverFilters narrows a discover query. All fields are optional;
// zero values mean "no filter".
type DiscoverFilters struct {
	Genres    []int64 `json:"genres,omitempty"`
	Platforms []int64 `json:"platforms,omitempty"`
	Year      int     `json:"year,omitempty"`
	RatingMin float64 `json:"ratingMin,omitempty"`
}

// DiscoverRequest is the validated input for the discover operation.
type DiscoverRequest struct {
	Filters DiscoverFilters `json:"filters"`
	Sort    string          `json:"sort,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// recommendSeed is the minimal projection of the source game needed to
// pick a recommendation strategy.
type recommendSeed struct {
	ID           int64  `json:"id"`
	Genres       IDList `json:"genres,omitempty"`
	SimilarGames IDList `json:"similar_games,omitempty"`
}

// popularityPrimitive is one row of the upstream's raw popularity feed,
// used as the last-resort recommendation source.
type popularityPrimitive struct {
	GameID int64   `json:"game_id"`
	Value  float64 `json:"value,omitempty"`
}
