// ABOUTME: Canonical feed document produced by the RSS-family parser
// ABOUTME: Keeps raw and resolved timestamps as strings; date interpretation happens downstream

package domain

// Format identifies the syndication dialect a document was parsed from
type Format string

const (
	FormatRSS  Format = "rss"
	FormatRDF  Format = "rdf"
	FormatAtom Format = "atom"
	FormatJSON Format = "json"
	FormatOPML Format = "opml"
)

// FeedDocument is a parsed RSS, RSS 1.0 or Atom document
type FeedDocument struct {
	Format  Format     `json:"format"`
	Version string     `json:"version,omitempty"`
	Channel Channel    `json:"channel"`
	Items   []FeedItem `json:"items"`
}

// Channel holds feed-level metadata
type Channel struct {
	Title       string   `json:"title,omitempty"`
	Link        string   `json:"link,omitempty"`
	Description string   `json:"description,omitempty"`
	Language    string   `json:"language,omitempty"`
	Copyright   string   `json:"copyright,omitempty"`
	Generator   string   `json:"generator,omitempty"`
	Categories  []string `json:"categories,omitempty"`

	// Self is the href of the first atom:link with rel="self"
	Self string `json:"self,omitempty"`

	Authors []Author `json:"authors,omitempty"`
	Image   *Image   `json:"image,omitempty"`

	PubDate     string `json:"pubDate,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Author is a person credited on a channel or item
type Author struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Link  string `json:"link,omitempty"`
}

// Image describes a channel or item image.
// Width and Height are 0 when missing or not numeric.
type Image struct {
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}
