package sentiment

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	mdLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?://[^\s\)]+)\)`)
	urlPattern    = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlPattern   = regexp.MustCompile(`<[^>]+>`)
)

// RemoveLinks keeps markdown link text and drops bare URLs, which carry no
// sentiment and skew lexicon-based scoring.
func RemoveLinks(input string) string {
	input = mdLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// Normalize renders Reddit-style markdown to plain text before the model
// sees it: formatting tags and links out, whitespace collapsed.
func Normalize(input string) string {
	rendered := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := htmlPattern.ReplaceAllString(string(rendered), " ")
	plain = strings.Join(strings.Fields(plain), " ")

	return strings.TrimSpace(RemoveLinks(plain))
}
