package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// normalizeSpace collapses runs of whitespace into single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// cleanText decodes common HTML entities and normalizes whitespace.
func cleanText(s string) string {
	return normalizeSpace(entityReplacer.Replace(s))
}

var stripPolicy = bluemonday.StrictPolicy()

// stripTags removes all markup from an HTML fragment, returning clean text.
func stripTags(html string) string {
	return cleanText(stripPolicy.Sanitize(html))
}

// HTMLToText converts a full HTML document to plain text.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanText(html)
	}
	return cleanText(doc.Text())
}

// sanitizeUTF8 removes invalid UTF-8 byte sequences that cause PostgreSQL errors.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[\s_-]+`)
	slugTrimRe     = regexp.MustCompile(`^-+|-+$`)
)

// GenerateSlug derives a URL-safe slug from a display title:
// "My Cool Project" -> "my-cool-project".
func GenerateSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return slugTrimRe.ReplaceAllString(s, "")
}

// appendUnique appends a string to a slice if it doesn't already exist (case-insensitive).
func appendUnique(list []string, v string) []string {
	vClean := strings.TrimSpace(v)
	if vClean == "" {
		return list
	}

	vLower := strings.ToLower(vClean)
	for _, existing := range list {
		if strings.ToLower(existing) == vLower {
			return list
		}
	}
	return append(list, vClean)
}
