package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The source markup is unversioned and inconsistent, so every field is
// extracted by a chain of fallible patterns evaluated in priority order;
// the first success wins and a sentinel/default is the terminal fallback.

var (
	titleTagRe     = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)
	titleSuffixRe  = regexp.MustCompile(`(?i)\s*\|\s*(?:Colosseum|Agent Hackathon)\s*$`)
	genericTitleRe = regexp.MustCompile(`(?i)^Project\s*\|`)
	h1Re           = regexp.MustCompile(`(?i)<h1[^>]*>([^<]+)</h1>`)

	// Description lives between the "Description" heading and the next
	// known section boundary. Two looser shapes follow for markup drift.
	descBlockRe = regexp.MustCompile(`(?is)Description.*?</h[^>]*>(.*?)(?:Links|Team Members|</section|</article)`)
	descDivRe   = regexp.MustCompile(`(?is)Description[^<]*</h[^>]*>.*?<div[^>]*>(.*?)</div>`)
	descPRe     = regexp.MustCompile(`(?is)Description.*?<p[^>]*>(.*?)</p>`)

	// Team patterns restricted to identifier-safe characters so they never
	// capture unrelated tag text.
	teamByRe    = regexp.MustCompile(`(?i)by\s*([a-z0-9_-]+)(?:\s*\||\s*Team:|['\s]|$)`)
	teamLabelRe = regexp.MustCompile(`(?i)Team:\s*([a-z0-9_-]+)`)

	voteTripletRe = regexp.MustCompile(`(\d+)\s+(\d+)\s+(\d+)`)

	repoLinkRe   = regexp.MustCompile(`(?i)href="(https://github\.com[^"]+)"`)
	demoAfterRe  = regexp.MustCompile(`(?is)Technical\s*Demo.*?href="(https?://[^"]+)"`)
	demoBeforeRe = regexp.MustCompile(`(?is)href="(https?://[^"]+)"[^>]*>.*?Technical\s*Demo`)

	// $SYMBOL: BASE58 where the address uses the Bitcoin/Solana alphabet.
	tokenAddressRe = regexp.MustCompile(`\$[A-Za-z0-9]+\s*:\s*[1-9A-HJ-NP-Za-km-z]{32,44}`)
	tokenSepRe     = regexp.MustCompile(`\s*:\s*`)

	memberJoinedRe = regexp.MustCompile(`([A-Za-z0-9_-]+)\s*Joined\s*(\d{1,2}/\d{1,2}/\d{4})`)
)

// knownCategories is the fixed tag vocabulary; matches preserve this order.
var knownCategories = []string{
	"Trading", "DeFi", "AI", "NFT", "Gaming",
	"Social", "Infrastructure", "DAO", "Payments", "New Markets",
}

var categoryRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(knownCategories))
	for _, name := range knownCategories {
		pattern := `(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(name), ` `, `\s+`) + `\b`
		res[name] = regexp.MustCompile(pattern)
	}
	return res
}()

const descMinLength = 30

// ParseProjectPage heuristically extracts a canonical Project from one raw
// detail-page document. It is a pure function; any panic inside a heuristic
// is recovered and reported as an error so the caller can skip the record.
func ParseProjectPage(html, slug, siteURL string) (p Project, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse %s: %v", slug, r)
		}
	}()

	title := extractTitle(html, slug)

	p = Project{
		Title:              title,
		Description:        extractDescription(html),
		TeamName:           extractTeamName(html),
		Status:             extractStatus(html),
		ColosseumURL:       fmt.Sprintf("%s/%s", siteURL, slug),
		ColosseumProjectID: slug,
		Slug:               GenerateSlug(title),
		Categories:         extractCategories(HTMLToText(html)),
		RepositoryURL:      extractRepositoryURL(html),
		DemoURL:            extractDemoURL(html),
		TokenAddress:       extractTokenAddress(html),
	}

	p.HumanVotes, p.AgentVotes, p.TotalVotes = extractVotes(html)
	p.TeamMembers = extractTeamMembers(html, p.TeamName)

	return p, nil
}

// extractTitle prefers the <title> tag with known brand suffixes stripped;
// when the cleaned result is empty or a generic placeholder it falls through
// to the first short, non-placeholder <h1>. The slug is the last resort.
func extractTitle(html, slug string) string {
	if m := titleTagRe.FindStringSubmatch(html); m != nil {
		raw := titleSuffixRe.ReplaceAllString(cleanText(m[1]), "")
		if raw != "" && !genericTitleRe.MatchString(raw) {
			return raw
		}
	}

	for _, m := range h1Re.FindAllStringSubmatch(html, -1) {
		t := titleSuffixRe.ReplaceAllString(cleanText(m[1]), "")
		if t != "" && len(t) < 80 && !genericTitleRe.MatchString(t) {
			return t
		}
	}

	return slug
}

func extractDescription(html string) string {
	for _, re := range []*regexp.Regexp{descBlockRe, descDivRe, descPRe} {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		desc := stripTags(m[1])
		if len(desc) >= descMinLength {
			return desc
		}
	}
	return NoDescription
}

func extractTeamName(html string) string {
	if m := teamByRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	if m := teamLabelRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return UnknownTeam
}

// extractVotes scans the raw markup for triples of small integers and takes
// the last one as the (human, agent, total) reading: vote widgets render
// after structural content, so the final triple in document order is most
// likely the real counter. The scan runs on raw markup: tags between
// unrelated numbers keep them from forming accidental triples. When the
// last two triples are identical the total is rendered twice; take the
// larger third component to survive a transient stale value.
func extractVotes(html string) (human, agent, total int) {
	var triplets [][3]int
	for _, m := range voteTripletRe.FindAllStringSubmatch(html, -1) {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		c, _ := strconv.Atoi(m[3])
		if a <= 1000 && b <= 1000 && c <= 1000 {
			triplets = append(triplets, [3]int{a, b, c})
		}
	}

	if len(triplets) == 0 {
		return 0, 0, 0
	}

	last := triplets[len(triplets)-1]
	human, agent, total = last[0], last[1], last[2]

	if len(triplets) >= 2 {
		prev := triplets[len(triplets)-2]
		if prev == last && prev[2] > total {
			total = prev[2]
		}
	}

	return human, agent, total
}

// extractStatus flags Draft on a bare substring match. Known-coarse:
// unrelated text containing the word "draft" will false-positive.
func extractStatus(html string) string {
	if strings.Contains(strings.ToLower(html), "draft") {
		return StatusDraft
	}
	return StatusPublished
}

// extractCategories matches the vocabulary against the text rendering of
// the page so words inside class attributes and URLs never count as tags.
func extractCategories(text string) []string {
	var categories []string
	for _, name := range knownCategories {
		if categoryRes[name].MatchString(text) {
			categories = appendUnique(categories, name)
		}
	}
	return categories
}

func extractRepositoryURL(html string) string {
	if m := repoLinkRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

func extractDemoURL(html string) string {
	if m := demoAfterRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	if m := demoBeforeRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

func extractTokenAddress(html string) string {
	m := tokenAddressRe.FindString(html)
	if m == "" {
		return ""
	}
	return strings.TrimSpace(tokenSepRe.ReplaceAllString(m, ": "))
}

// extractTeamMembers collects "{name}Joined {M/D/YYYY}" fragments, reformatted
// for display. When none are present the resolved team name stands in as the
// single member, unless it is itself the unknown-team sentinel.
func extractTeamMembers(html, teamName string) []string {
	var members []string
	for _, m := range memberJoinedRe.FindAllStringSubmatch(html, -1) {
		name := cleanText(m[1])
		if len(name) > 0 && len(name) < 50 {
			members = append(members, fmt.Sprintf("%s — Joined %s", name, m[2]))
		}
	}

	if len(members) == 0 && teamName != UnknownTeam {
		members = append(members, teamName)
	}

	return members
}
