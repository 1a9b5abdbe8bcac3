package games

import (
	"regexp"
	"strings"
)

// CDN size tokens substituted into image URLs. List views get the small
// cover form; the detail page gets the large tiers.
const (
	sizeCoverList   = "cover_big"
	sizeCoverDetail = "1080p"
	sizeScreenshot  = "screenshot_huge"
	sizeLogo        = "logo_med"
)

// imageSizeRe matches the size-token path segment embedded in upstream
// image URLs, e.g. the "t_thumb" in //images.../t_thumb/co1wyy.jpg.
var imageSizeRe = regexp.MustCompile(`t_[a-z0-9_]+`)

// normalizeImageURL rewrites an upstream image URL into a fully
// qualified HTTPS URL at the requested size. It is total: any input,
// including an empty one, yields a well-formed URL or the empty string.
// Applying it twice is a no-op.
func normalizeImageURL(raw, size string) string {
	if raw == "" {
		return ""
	}
	u := raw
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return imageSizeRe.ReplaceAllString(u, "t_"+size)
}

// normalizeGameList rewrites image URLs on a list of summary records
// in place and returns the slice for chaining.
func normalizeGameList(list []Game) []Game {
	for i := range list {
		normalizeGameImages(&list[i], sizeCoverList)
	}
	return list
}

// normalizeGameDetail applies the large image tiers and cleans up the
// similar-games id list.
func normalizeGameDetail(g *Game) *Game {
	normalizeGameImages(g, sizeCoverDetail)
	for i := range g.Screenshots {
		g.Screenshots[i].URL = normalizeImageURL(g.Screenshots[i].URL, sizeScreenshot)
	}
	g.SimilarGames = dedupeIDs(g.SimilarGames)
	return g
}

func normalizeGameImages(g *Game, coverSize string) {
	if g.Cover != nil {
		g.Cover.URL = normalizeImageURL(g.Cover.URL, coverSize)
	}
	for i := range g.Platforms {
		if g.Platforms[i].PlatformLogo != nil {
			g.Platforms[i].PlatformLogo.URL = normalizeImageURL(g.Platforms[i].PlatformLogo.URL, sizeLogo)
		}
	}
}

func normalizeTaxonomy(entries []TaxonomyEntry) []TaxonomyEntry {
	for i := range entries {
		if entries[i].PlatformLogo != nil {
			entries[i].PlatformLogo.URL = normalizeImageURL(entries[i].PlatformLogo.URL, sizeLogo)
		}
	}
	return entries
}

// dedupeIDs removes duplicates while preserving first-seen order.
// Non-positive values were already dropped during decoding.
func dedupeIDs(ids IDList) IDList {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
