// Package topics holds the registry of tracked tokens. Both the token-keyed
// fetch and the query-mode subreddit fallback consult the same table, so a
// token's home subreddit and its keyword list are defined exactly once.
package topics

import "strings"

// Topic binds a token to its fixed forum source and relevance keywords.
type Topic struct {
	Token     string
	Subreddit string
	Keywords  []string
}

var registry = map[string]Topic{
	"MONAD": {Token: "MONAD", Subreddit: "monad", Keywords: []string{"monad"}},
	"BTC":   {Token: "BTC", Subreddit: "Bitcoin", Keywords: []string{"bitcoin", "btc"}},
	"ETH":   {Token: "ETH", Subreddit: "ethereum", Keywords: []string{"ethereum", "eth", "vitalik"}},
}

// detectOrder fixes the priority of substring triggers when a query mentions
// more than one token.
var detectOrder = []string{"MONAD", "BTC", "ETH"}

// Lookup returns the registry entry for a token symbol.
func Lookup(token string) (Topic, bool) {
	topic, ok := registry[strings.ToUpper(strings.TrimSpace(token))]
	return topic, ok
}

// Tokens lists the tracked token symbols in registry priority order.
func Tokens() []string {
	out := make([]string, len(detectOrder))
	copy(out, detectOrder)
	return out
}

// Detect infers a tracked token from free-text by substring match against the
// token's keyword list. Deliberately coarse: "ethereum merge upgrade" maps to
// ETH, anything without a trigger maps to nothing.
func Detect(query string) (Topic, bool) {
	q := strings.ToLower(query)
	for _, token := range detectOrder {
		topic := registry[token]
		for _, kw := range topic.Keywords {
			if strings.Contains(q, kw) {
				return topic, true
			}
		}
	}
	return Topic{}, false
}
