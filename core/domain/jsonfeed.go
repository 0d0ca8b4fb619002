// ABOUTME: JSON Feed domain model shared by the loose and strict parsers
// ABOUTME: Pointer fields distinguish an absent numeric value from zero

package domain

// JSON Feed version identifiers
const (
	JSONFeedVersion1  = "https://jsonfeed.org/version/1"
	JSONFeedVersion11 = "https://jsonfeed.org/version/1.1"
)

// JSONFeed is a parsed JSON Feed document
type JSONFeed struct {
	Version     string           `json:"version,omitempty"`
	Title       string           `json:"title,omitempty"`
	HomePageURL string           `json:"home_page_url,omitempty"`
	FeedURL     string           `json:"feed_url,omitempty"`
	Description string           `json:"description,omitempty"`
	UserComment string           `json:"user_comment,omitempty"`
	NextURL     string           `json:"next_url,omitempty"`
	Icon        string           `json:"icon,omitempty"`
	Favicon     string           `json:"favicon,omitempty"`
	Language    string           `json:"language,omitempty"`
	Expired     *bool            `json:"expired,omitempty"`
	Author      *JSONFeedAuthor  `json:"author,omitempty"`
	Authors     []JSONFeedAuthor `json:"authors,omitempty"`
	Hubs        []JSONFeedHub    `json:"hubs,omitempty"`
	Items       []JSONFeedItem   `json:"items"`
}

// JSONFeedItem is one entry of a JSON Feed
type JSONFeedItem struct {
	ID            string               `json:"id,omitempty"`
	URL           string               `json:"url,omitempty"`
	ExternalURL   string               `json:"external_url,omitempty"`
	Title         string               `json:"title,omitempty"`
	ContentHTML   string               `json:"content_html,omitempty"`
	ContentText   string               `json:"content_text,omitempty"`
	Summary       string               `json:"summary,omitempty"`
	Image         string               `json:"image,omitempty"`
	BannerImage   string               `json:"banner_image,omitempty"`
	DatePublished string               `json:"date_published,omitempty"`
	DateModified  string               `json:"date_modified,omitempty"`
	Language      string               `json:"language,omitempty"`
	Tags          []string             `json:"tags,omitempty"`
	Author        *JSONFeedAuthor      `json:"author,omitempty"`
	Authors       []JSONFeedAuthor     `json:"authors,omitempty"`
	Attachments   []JSONFeedAttachment `json:"attachments,omitempty"`
}

// JSONFeedAuthor identifies the author of a feed or item
type JSONFeedAuthor struct {
	Name   string `json:"name,omitempty"`
	URL    string `json:"url,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// JSONFeedAttachment is a related resource such as a podcast episode
type JSONFeedAttachment struct {
	URL               string   `json:"url,omitempty"`
	MimeType          string   `json:"mime_type,omitempty"`
	Title             string   `json:"title,omitempty"`
	SizeInBytes       *int64   `json:"size_in_bytes,omitempty"`
	DurationInSeconds *float64 `json:"duration_in_seconds,omitempty"`
}

// JSONFeedHub is a real-time subscription endpoint
type JSONFeedHub struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// AllAuthors merges the v1 singular author and the v1.1 authors list
func (f *JSONFeed) AllAuthors() []JSONFeedAuthor {
	return mergeAuthors(f.Author, f.Authors)
}

// AllAuthors merges the v1 singular author and the v1.1 authors list
func (i *JSONFeedItem) AllAuthors() []JSONFeedAuthor {
	return mergeAuthors(i.Author, i.Authors)
}

func mergeAuthors(single *JSONFeedAuthor, list []JSONFeedAuthor) []JSONFeedAuthor {
	out := make([]JSONFeedAuthor, 0, len(list)+1)
	out = append(out, list...)
	if single != nil {
		out = append(out, *single)
	}
	return out
}
