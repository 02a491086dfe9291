package ingest

import "regexp"

var (
	// Anchor targets shaped like ./projects/{slug} or /agent-hackathon/projects/{slug}.
	projectLinkRe = regexp.MustCompile(`href="(?:\./projects/|/agent-hackathon/projects/)([^"]+)"`)
	// Looser fallback for when the listing markup changes shape.
	projectLinkAltRe = regexp.MustCompile(`/projects/([a-z0-9-]+)`)
)

// DiscoverSlugs extracts the set of candidate project slugs from a listing
// page. The primary anchor pattern is tried first; when it yields nothing,
// a looser substring pattern is applied. An empty result means "nothing to
// fetch", not a failure — callers must not treat it as an error.
func DiscoverSlugs(html string) map[string]struct{} {
	slugs := make(map[string]struct{})

	for _, m := range projectLinkRe.FindAllStringSubmatch(html, -1) {
		slugs[m[1]] = struct{}{}
	}

	if len(slugs) == 0 {
		for _, m := range projectLinkAltRe.FindAllStringSubmatch(html, -1) {
			slugs[m[1]] = struct{}{}
		}
	}

	return slugs
}
