package fetcher

import (
	"regexp"
	"strings"
)

// maxBodyChars caps how much of an item body rides along with its title when
// building classifier input.
const maxBodyChars = 200

var (
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
	wordPattern = regexp.MustCompile(`[a-zA-Z0-9]{3,}`)
)

// StripTags removes markup tags from feed descriptions.
func StripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// MatchesAny reports whether any keyword appears as a case-insensitive
// substring of the title/body pair. An empty keyword list matches everything.
// Coarse on purpose: false positives are acceptable, the classifier sees a
// little noise; false negatives are an accepted limitation.
func MatchesAny(title, body string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	haystack := strings.ToLower(title + " " + body)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// QueryKeywords extracts the lowercased alphanumeric tokens of length >= 3
// from a free-text query, the relevance keywords for query-mode fetches.
func QueryKeywords(query string) []string {
	words := wordPattern.FindAllString(query, -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToLower(w))
	}
	return out
}

// combineText joins a title with its truncated body into the analyzable text.
func combineText(title, body string) string {
	if body == "" {
		return title
	}
	return title + " — " + truncateRunes(body, maxBodyChars)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
