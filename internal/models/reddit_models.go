package models

// RedditListing mirrors the shape of Reddit's public JSON listing endpoints,
// shared by subreddit hot listings and sitewide search.
type RedditListing struct {
	Data RedditListingData `json:"data"`
}

type RedditListingData struct {
	After    string        `json:"after"`
	Children []RedditChild `json:"children"`
}

type RedditChild struct {
	Data RedditPostData `json:"data"`
}

type RedditPostData struct {
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	Ups        int     `json:"ups"`
	CreatedUTC float64 `json:"created_utc"`
	Stickied   bool    `json:"stickied"`
}
