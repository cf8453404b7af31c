package models

import "time"

// OriginKind identifies which kind of upstream produced a SignalRecord.
type OriginKind string

const (
	OriginForum OriginKind = "FORUM"
	OriginFeed  OriginKind = "FEED"
)

// SignalRecord is one normalized unit of text evidence. Text is the field the
// classifier consumes: the title plus a truncated body when one exists.
type SignalRecord struct {
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	URL         string     `json:"url"`
	SourceName  string     `json:"source_name"`
	Origin      OriginKind `json:"origin_kind"`
	Upvotes     int        `json:"upvotes,omitempty"`
	PublishedAt time.Time  `json:"published_at,omitempty"`
	Age         string     `json:"age"`
}

// FetchResult is the output of one aggregation fetch. ForumOK and FeedOK
// report whether a stream contributed any items, not whether its HTTP call
// succeeded: a call can succeed and still yield nothing relevant.
type FetchResult struct {
	ForumItems    []SignalRecord `json:"forum_items"`
	FeedItems     []SignalRecord `json:"feed_items"`
	CombinedTexts []string       `json:"combined_texts"`
	ForumOK       bool           `json:"forum_ok"`
	FeedOK        bool           `json:"feed_ok"`
	Total         int            `json:"total"`
}

// BuildFetchResult assembles a FetchResult. The combined ordering is fixed
// here, forum items before feed items, so callers cannot reorder it by
// fetching sources in a different sequence.
func BuildFetchResult(forum, feed []SignalRecord) FetchResult {
	texts := make([]string, 0, len(forum)+len(feed))
	for _, rec := range forum {
		texts = append(texts, rec.Text)
	}
	for _, rec := range feed {
		texts = append(texts, rec.Text)
	}

	return FetchResult{
		ForumItems:    forum,
		FeedItems:     feed,
		CombinedTexts: texts,
		ForumOK:       len(forum) > 0,
		FeedOK:        len(feed) > 0,
		Total:         len(texts),
	}
}
