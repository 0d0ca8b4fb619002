// ABOUTME: RSS-family parser normalizing RSS 2.0, RSS 1.0 and Atom into one document shape
// ABOUTME: Resolves competing namespace fields (Atom, Dublin Core, Media, iTunes) by priority

package rss

import (
	"fmt"
	"strings"

	"digests-ingest/core/domain"
	"digests-ingest/pkg/record"
	"digests-ingest/pkg/utils/parse"
)

// UnsupportedRootError is returned when the XML root is not rss, rdf:RDF or feed
type UnsupportedRootError struct {
	Root string
}

// Error implements the error interface
func (e *UnsupportedRootError) Error() string {
	return fmt.Sprintf("rss: unsupported root element <%s>", e.Root)
}

// Parse converts an RSS-family XML document into a FeedDocument.
// Every field is optional; unknown elements are ignored.
func Parse(data []byte) (*domain.FeedDocument, error) {
	rootName, root, err := buildTree(data)
	if err != nil {
		return nil, err
	}

	rootIx := record.NewIndex(root)
	doc := &domain.FeedDocument{Items: []domain.FeedItem{}}

	var channel record.Value
	var items record.Value

	switch strings.ToLower(localName(rootName)) {
	case "rss":
		doc.Format = domain.FormatRSS
		doc.Version = attrOf(root, "version")
		channel = firstOf(rootIx, "channel")
		items, _ = record.NewIndex(channel).Get("item")
	case "rdf":
		doc.Format = domain.FormatRDF
		doc.Version = "1.0"
		channel = firstOf(rootIx, "channel")
		items, _ = rootIx.Get("item")
		if len(elements(items)) == 0 {
			items, _ = record.NewIndex(channel).Get("item")
		}
	case "feed":
		doc.Format = domain.FormatAtom
		doc.Version = attrOf(root, "version")
		if doc.Version == "" {
			doc.Version = "1.0"
		}
		channel = root
		items, _ = rootIx.Get("entry")
	default:
		return nil, &UnsupportedRootError{Root: rootName}
	}

	doc.Channel = normalizeChannel(channel, doc.Format)
	for _, item := range elements(items) {
		doc.Items = append(doc.Items, normalizeItem(item, doc.Format))
	}

	return doc, nil
}

func normalizeChannel(v record.Value, format domain.Format) domain.Channel {
	ix := record.NewIndex(v)

	ch := domain.Channel{
		Title:       text(ix, "title"),
		Link:        linkOf(ix),
		Description: text(ix, "description", "subtitle", "itunes:summary", "dc:description"),
		Language:    text(ix, "language", "dc:language"),
		Copyright:   text(ix, "copyright", "rights", "dc:rights"),
		Generator:   text(ix, "generator"),
		Categories:  categoriesOf(ix),
		Authors:     authorsOf(ix),
		Image:       firstImage(ix, "image", "itunes:image", "logo", "icon"),
		PubDate:     text(ix, "pubDate"),
		PublishedAt: text(ix, publishedKeys...),
		UpdatedAt:   text(ix, updatedKeys...),
	}

	if atomLinks, ok := ix.Get("atom:link"); ok {
		ch.Self = selfHref(atomLinks)
	} else if format == domain.FormatAtom {
		if links, ok := ix.Get("link"); ok {
			ch.Self = selfHref(record.List(elements(links)...))
		}
	}

	return ch
}

func normalizeItem(v record.Value, format domain.Format) domain.FeedItem {
	ix := record.NewIndex(v)

	item := domain.FeedItem{
		ID:          text(ix, "guid", "id"),
		Title:       text(ix, "title"),
		Link:        linkOf(ix),
		Description: text(ix, "description", "summary", "itunes:summary"),
		Content:     text(ix, "content:encoded", "content"),
		Comments:    text(ix, "comments"),
		Categories:  categoriesOf(ix),
		Authors:     authorsOf(ix),
		Enclosure:   enclosureOf(ix, format),
		Image:       firstImage(ix, "image", "itunes:image", "media:thumbnail", "media:content"),
		PubDate:     text(ix, "pubDate"),
		PublishedAt: text(ix, publishedKeys...),
		UpdatedAt:   text(ix, updatedKeys...),
	}

	return item
}

// text resolves the first candidate and returns its text
func text(ix *record.Index, candidates ...string) string {
	v, ok := ix.Resolve(candidates...)
	if !ok {
		return ""
	}
	return textOf(v)
}

func firstOf(ix *record.Index, name string) record.Value {
	v, ok := ix.Get(name)
	if !ok {
		return record.Null()
	}
	return firstElement(v)
}

func localName(qualified string) string {
	if i := strings.LastIndexByte(qualified, ':'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// selfHref returns the href of the first atom:link with rel="self".
// Only a non-empty list is considered.
func selfHref(links record.Value) string {
	items, ok := links.Items()
	if !ok || len(items) == 0 {
		return ""
	}
	for _, link := range items {
		if attrOf(link, "rel") == "self" {
			return attrOf(link, "href")
		}
	}
	return ""
}

// linkOf reads an RSS text link or the alternate link of an Atom entry
func linkOf(ix *record.Index) string {
	v, ok := ix.Get("link")
	if !ok {
		return ""
	}
	for _, el := range elements(v) {
		if s := textOf(el); s != "" {
			return s
		}
	}
	for _, el := range elements(v) {
		rel := attrOf(el, "rel")
		if rel == "" || rel == "alternate" {
			if href := attrOf(el, "href"); href != "" {
				return href
			}
		}
	}
	return ""
}

func categoriesOf(ix *record.Index) []string {
	v, ok := ix.Get("category")
	if !ok {
		return nil
	}
	var out []string
	for _, el := range elements(v) {
		name := textOf(el)
		if name == "" {
			name = attrOf(el, "term")
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// authorsOf concatenates <author> entries (name, email, link) and
// <itunes:author> entries (name only)
func authorsOf(ix *record.Index) []domain.Author {
	var out []domain.Author

	if v, ok := ix.Get("author"); ok {
		for _, el := range elements(v) {
			if a := authorFromElement(el); a != (domain.Author{}) {
				out = append(out, a)
			}
		}
	}

	if v, ok := ix.Get("itunes:author"); ok {
		for _, el := range elements(v) {
			if name := textOf(el); name != "" {
				out = append(out, domain.Author{Name: name})
			}
		}
	}

	return out
}

func authorFromElement(el record.Value) domain.Author {
	ix := record.NewIndex(el)
	a := domain.Author{
		Name:  text(ix, "name"),
		Email: text(ix, "email"),
		Link:  text(ix, "uri", "link", "url"),
	}
	if a != (domain.Author{}) {
		return a
	}
	return splitAuthorText(textOf(el))
}

// splitAuthorText understands the RSS "email (Name)" convention
func splitAuthorText(s string) domain.Author {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Author{}
	}
	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		email := strings.TrimSpace(s[:open])
		if strings.Contains(email, "@") && !strings.ContainsAny(email, " \t") {
			return domain.Author{
				Name:  strings.TrimSpace(s[open+1 : len(s)-1]),
				Email: email,
			}
		}
	}
	if strings.Contains(s, "@") && !strings.ContainsAny(s, " \t") {
		return domain.Author{Email: s}
	}
	return domain.Author{Name: s}
}

// firstImage tries each candidate in order and returns the first usable image
func firstImage(ix *record.Index, candidates ...string) *domain.Image {
	for _, name := range candidates {
		v, ok := ix.Get(name)
		if !ok {
			continue
		}
		for _, el := range elements(v) {
			if name == "media:content" && !isImageMedia(el) {
				continue
			}
			if img := imageOf(el); img != nil {
				return img
			}
		}
	}
	return nil
}

func isImageMedia(el record.Value) bool {
	return attrOf(el, "medium") == "image" || strings.HasPrefix(attrOf(el, "type"), "image/")
}

func imageOf(el record.Value) *domain.Image {
	ix := record.NewIndex(el)

	img := &domain.Image{
		URL:         text(ix, "url"),
		Title:       text(ix, "title"),
		Link:        text(ix, "link"),
		Description: text(ix, "description"),
	}
	if img.URL == "" {
		img.URL = attrOf(el, "url")
	}
	if img.URL == "" {
		img.URL = attrOf(el, "href")
	}
	if img.URL == "" {
		img.URL = attrOf(el, "rdf:resource")
	}
	if img.URL == "" {
		img.URL = textOf(el)
	}

	width := text(ix, "width")
	if width == "" {
		width = attrOf(el, "width")
	}
	height := text(ix, "height")
	if height == "" {
		height = attrOf(el, "height")
	}
	img.Width = parse.IntOrZero(width)
	img.Height = parse.IntOrZero(height)

	if img.URL == "" && img.Title == "" && img.Link == "" {
		return nil
	}
	return img
}

func enclosureOf(ix *record.Index, format domain.Format) *domain.Enclosure {
	if v, ok := ix.Get("enclosure"); ok {
		el := firstElement(v)
		return &domain.Enclosure{
			URL:    attrOf(el, "url"),
			Type:   attrOf(el, "type"),
			Length: parse.Int64OrZero(attrOf(el, "length")),
		}
	}

	if format != domain.FormatAtom {
		return nil
	}
	links, ok := ix.Get("link")
	if !ok {
		return nil
	}
	for _, el := range elements(links) {
		if attrOf(el, "rel") == "enclosure" {
			return &domain.Enclosure{
				URL:    attrOf(el, "href"),
				Type:   attrOf(el, "type"),
				Length: parse.Int64OrZero(attrOf(el, "length")),
			}
		}
	}
	return nil
}
