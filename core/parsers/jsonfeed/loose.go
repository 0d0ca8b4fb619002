// ABOUTME: Lenient JSON Feed reader accepting v1 and v1.1 shapes interchangeably
// ABOUTME: Drops unknown or wrongly typed properties instead of failing

package jsonfeed

import (
	"errors"
	"strconv"

	"digests-ingest/core/domain"
	"digests-ingest/pkg/record"
	"digests-ingest/pkg/utils/parse"
)

// ErrNotObject is returned when the top-level JSON value is not an object
var ErrNotObject = errors.New("jsonfeed: top-level value must be an object")

// ParseLooseBytes decodes data and parses it leniently
func ParseLooseBytes(data []byte) (*domain.JSONFeed, error) {
	v, err := record.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return ParseLoose(v)
}

// ParseLoose builds a JSONFeed from a decoded JSON value.
// Every field is optional and malformed URLs pass through unchanged.
func ParseLoose(v record.Value) (*domain.JSONFeed, error) {
	m, ok := v.Map()
	if !ok {
		return nil, ErrNotObject
	}
	return feedFromMap(m), nil
}

func feedFromMap(m *record.Map) *domain.JSONFeed {
	feed := &domain.JSONFeed{
		Version:     str(m, "version"),
		Title:       str(m, "title"),
		HomePageURL: str(m, "home_page_url"),
		FeedURL:     str(m, "feed_url"),
		Description: str(m, "description"),
		UserComment: str(m, "user_comment"),
		NextURL:     str(m, "next_url"),
		Icon:        str(m, "icon"),
		Favicon:     str(m, "favicon"),
		Language:    str(m, "language"),
		Author:      authorOf(m),
		Authors:     authorsOf(m),
		Items:       []domain.JSONFeedItem{},
	}

	if v, ok := m.Get("expired"); ok {
		if b, isBool := v.Boolean(); isBool {
			feed.Expired = &b
		}
	}

	for _, hv := range list(m, "hubs") {
		hm, ok := hv.Map()
		if !ok {
			continue
		}
		feed.Hubs = append(feed.Hubs, domain.JSONFeedHub{
			Type: str(hm, "type"),
			URL:  str(hm, "url"),
		})
	}

	for _, iv := range list(m, "items") {
		im, ok := iv.Map()
		if !ok {
			continue
		}
		feed.Items = append(feed.Items, itemFromMap(im))
	}

	return feed
}

func itemFromMap(m *record.Map) domain.JSONFeedItem {
	item := domain.JSONFeedItem{
		ID:            idOf(m),
		URL:           str(m, "url"),
		ExternalURL:   str(m, "external_url"),
		Title:         str(m, "title"),
		ContentHTML:   str(m, "content_html"),
		ContentText:   str(m, "content_text"),
		Summary:       str(m, "summary"),
		Image:         str(m, "image"),
		BannerImage:   str(m, "banner_image"),
		DatePublished: str(m, "date_published"),
		DateModified:  str(m, "date_modified"),
		Language:      str(m, "language"),
		Author:        authorOf(m),
		Authors:       authorsOf(m),
	}

	for _, tv := range list(m, "tags") {
		if tag, ok := tv.Str(); ok {
			item.Tags = append(item.Tags, tag)
		}
	}

	for _, av := range list(m, "attachments") {
		am, ok := av.Map()
		if !ok {
			continue
		}
		item.Attachments = append(item.Attachments, attachmentFromMap(am))
	}

	return item
}

func attachmentFromMap(m *record.Map) domain.JSONFeedAttachment {
	att := domain.JSONFeedAttachment{
		URL:      str(m, "url"),
		MimeType: str(m, "mime_type"),
		Title:    str(m, "title"),
	}

	if v, ok := m.Get("size_in_bytes"); ok {
		size := int64(0)
		if n, isNum := v.Num(); isNum {
			size = int64(n)
		} else if s, isStr := v.Str(); isStr {
			size = parse.Int64OrZero(s)
		}
		att.SizeInBytes = &size
	}

	if v, ok := m.Get("duration_in_seconds"); ok {
		duration := 0.0
		if n, isNum := v.Num(); isNum {
			duration = n
		} else if s, isStr := v.Str(); isStr {
			if f, parsed := parse.Float(s); parsed {
				duration = f
			}
		}
		att.DurationInSeconds = &duration
	}

	return att
}

func authorOf(m *record.Map) *domain.JSONFeedAuthor {
	v, ok := m.Get("author")
	if !ok {
		return nil
	}
	am, ok := v.Map()
	if !ok {
		return nil
	}
	a := authorFromMap(am)
	return &a
}

func authorsOf(m *record.Map) []domain.JSONFeedAuthor {
	var out []domain.JSONFeedAuthor
	for _, av := range list(m, "authors") {
		if am, ok := av.Map(); ok {
			out = append(out, authorFromMap(am))
		}
	}
	return out
}

func authorFromMap(m *record.Map) domain.JSONFeedAuthor {
	return domain.JSONFeedAuthor{
		Name:   str(m, "name"),
		URL:    str(m, "url"),
		Avatar: str(m, "avatar"),
	}
}

// idOf accepts string ids and coerces numeric ones
func idOf(m *record.Map) string {
	v, ok := m.Get("id")
	if !ok {
		return ""
	}
	if s, isStr := v.Str(); isStr {
		return s
	}
	if n, isNum := v.Num(); isNum {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

func str(m *record.Map, key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.Str()
	return s
}

func list(m *record.Map, key string) []record.Value {
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	items, _ := v.Items()
	return items
}
