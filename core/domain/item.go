// ABOUTME: FeedItem domain model represents an individual entry within a feed
// ABOUTME: Carries enclosure, image and author data normalized across RSS dialects

package domain

// FeedItem represents an individual item/entry in a feed
type FeedItem struct {
	// ID is the guid (RSS) or id (Atom) of the item
	ID string `json:"id,omitempty"`

	Title string `json:"title,omitempty"`
	Link  string `json:"link,omitempty"`

	// Description is the summary; Content is content:encoded or Atom content
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`

	// Summary is a plain-text rendering filled in during ingestion
	Summary string `json:"summary,omitempty"`

	Comments   string   `json:"comments,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Authors    []Author `json:"authors,omitempty"`

	Enclosure *Enclosure `json:"enclosure,omitempty"`
	Image     *Image     `json:"image,omitempty"`

	// PubDate is the raw <pubDate>; PublishedAt and UpdatedAt are resolved
	// across namespaces and left unparsed.
	PubDate     string `json:"pubDate,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Enclosure represents media attachment information
type Enclosure struct {
	URL    string `json:"url,omitempty"`
	Type   string `json:"type,omitempty"`
	Length int64  `json:"length"`
}

// IsValid reports whether the item can be shown to a reader
func (fi *FeedItem) IsValid() bool {
	if fi.Title == "" && fi.Description == "" && fi.Content == "" {
		return false
	}

	return fi.Link != "" || fi.ID != "" || fi.Enclosure != nil
}
