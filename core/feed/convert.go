package feed

import (
	"digests-ingest/core/domain"
)

// FromJSONFeed maps a JSON Feed onto the canonical document shape
func FromJSONFeed(f *domain.JSONFeed) *domain.FeedDocument {
	doc := &domain.FeedDocument{
		Format:  domain.FormatJSON,
		Version: f.Version,
		Channel: domain.Channel{
			Title:       f.Title,
			Link:        f.HomePageURL,
			Description: f.Description,
			Language:    f.Language,
			Self:        f.FeedURL,
			Authors:     jsonAuthors(f.AllAuthors()),
		},
		Items: make([]domain.FeedItem, 0, len(f.Items)),
	}

	if icon := firstNonEmpty(f.Icon, f.Favicon); icon != "" {
		doc.Channel.Image = &domain.Image{URL: icon, Title: f.Title, Link: f.HomePageURL}
	}

	for i := range f.Items {
		doc.Items = append(doc.Items, jsonItem(&f.Items[i]))
	}
	return doc
}

func jsonItem(it *domain.JSONFeedItem) domain.FeedItem {
	item := domain.FeedItem{
		ID:          it.ID,
		Title:       it.Title,
		Link:        firstNonEmpty(it.URL, it.ExternalURL),
		Description: it.Summary,
		Content:     firstNonEmpty(it.ContentHTML, it.ContentText),
		Categories:  it.Tags,
		Authors:     jsonAuthors(it.AllAuthors()),
		PublishedAt: it.DatePublished,
		UpdatedAt:   it.DateModified,
	}

	if img := firstNonEmpty(it.Image, it.BannerImage); img != "" {
		item.Image = &domain.Image{URL: img}
	}

	if len(it.Attachments) > 0 {
		att := it.Attachments[0]
		item.Enclosure = &domain.Enclosure{URL: att.URL, Type: att.MimeType}
		if att.SizeInBytes != nil {
			item.Enclosure.Length = *att.SizeInBytes
		}
	}
	return item
}

func jsonAuthors(in []domain.JSONFeedAuthor) []domain.Author {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Author, 0, len(in))
	for _, a := range in {
		out = append(out, domain.Author{Name: a.Name, Link: a.URL})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
