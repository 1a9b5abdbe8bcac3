package games

import (
	"fmt"
	"strings"
	"time"
)

// listFields is the summary projection used by every list view.
const listFields = "name, cover.url, first_release_date, total_rating, total_rating_count, genres.name, platforms.abbreviation"

// detailFields is the expanded projection for a single game page.
const detailFields = "name, summary, first_release_date, total_rating, total_rating_count, rating, rating_count, aggregated_rating, " +
	"cover.url, screenshots.url, videos.name, videos.video_id, websites.url, websites.category, " +
	"genres.name, platforms.name, platforms.platform_logo.url, game_modes.name, themes.name, " +
	"involved_companies.company.name, involved_companies.developer, involved_companies.publisher, similar_games"

// discoverSorts is the allow-list of sort expressions discover accepts.
// The first entry is the default.
var discoverSorts = []string{
	"total_rating desc",
	"first_release_date desc",
	"total_rating_count desc",
}

// escapeTerm neutralizes embedded quotes so a free-text search term can
// be placed inside the query language's quoted string literal.
func escapeTerm(term string) string {
	return strings.ReplaceAll(term, `"`, `\"`)
}

// joinIDs renders an id list as the query language's (1,2,3) tuple form.
func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func buildSearchQuery(term string, limit, offset int) string {
	return fmt.Sprintf(`search "%s"; fields %s; where cover != null; limit %d; offset %d;`,
		escapeTerm(term), listFields, limit, offset)
}

func buildTrendingQuery(limit, offset int) string {
	return fmt.Sprintf(`fields %s; where cover != null & total_rating_count != null; sort total_rating_count desc; limit %d; offset %d;`,
		listFields, limit, offset)
}

// buildDiscoverQuery assembles a conjunctive filter from the optional
// discover filters. A release year filters on the UTC-midnight bounds of
// [year, year+1).
func buildDiscoverQuery(req DiscoverRequest) string {
	var clauses []string

	if len(req.Filters.Genres) > 0 {
		clauses = append(clauses, "genres = "+joinIDs(req.Filters.Genres))
	}
	if len(req.Filters.Platforms) > 0 {
		clauses = append(clauses, "platforms = "+joinIDs(req.Filters.Platforms))
	}
	if req.Filters.Year != 0 {
		from := time.Date(req.Filters.Year, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
		to := time.Date(req.Filters.Year+1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
		clauses = append(clauses, fmt.Sprintf("first_release_date >= %d", from))
		clauses = append(clauses, fmt.Sprintf("first_release_date < %d", to))
	}
	if req.Filters.RatingMin > 0 {
		clauses = append(clauses, fmt.Sprintf("total_rating >= %g", req.Filters.RatingMin))
	}

	sort := req.Sort
	if sort == "" {
		sort = discoverSorts[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "fields %s; ", listFields)
	if len(clauses) > 0 {
		fmt.Fprintf(&b, "where %s; ", strings.Join(clauses, " & "))
	}
	fmt.Fprintf(&b, "sort %s; limit %d; offset %d;", sort, req.Limit, req.Offset)
	return b.String()
}

// taxonomyQueries holds the fixed per-resource field/sort/limit
// templates. Platforms carry logos and are a much larger set than the
// other taxonomies.
var taxonomyQueries = map[string]string{
	ResourceGenres:    "fields name, slug; sort name asc; limit 50;",
	ResourcePlatforms: "fields name, abbreviation, platform_logo.url; sort name asc; limit 200;",
	ResourceGameModes: "fields name, slug; sort name asc; limit 50;",
	ResourceThemes:    "fields name, slug; sort name asc; limit 50;",
}

func buildDetailQuery(id int64) string {
	return fmt.Sprintf("fields %s; where id = %d;", detailFields, id)
}

func buildRecommendSeedQuery(id int64) string {
	return fmt.Sprintf("fields genres, similar_games; where id = %d;", id)
}

// buildGenreRecommendQuery finds the highest-rated games sharing at
// least one genre with the source game, excluding the source itself.
func buildGenreRecommendQuery(genres []int64, excludeID int64, limit int) string {
	return fmt.Sprintf("fields %s; where genres = %s & id != %d & cover != null; sort total_rating desc; limit %d;",
		listFields, joinIDs(genres), excludeID, limit)
}

func buildPopularityQuery(limit int) string {
	return fmt.Sprintf("fields game_id, value; sort value desc; limit %d;", limit)
}

func buildBulkQuery(ids []int64) string {
	return fmt.Sprintf("fields %s; where id = %s; limit %d;", listFields, joinIDs(ids), len(ids))
}
