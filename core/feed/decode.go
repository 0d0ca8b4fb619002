// ABOUTME: Format detection and decoding of fetched bodies into batches
// ABOUTME: RSS, RDF and Atom share one parser; JSON Feed is mapped onto the same document shape

package feed

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"digests-ingest/core/domain"
	"digests-ingest/core/errors"
	"digests-ingest/core/parsers/jsonfeed"
	"digests-ingest/core/parsers/opml"
	"digests-ingest/core/parsers/rss"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"
)

// DetectFormat identifies the dialect of a body.
// RSS 1.0 and Atom are reported by their own formats even though they share a parser.
func DetectFormat(data []byte) (domain.Format, bool) {
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeJSON:
		return domain.FormatJSON, true
	case gofeed.FeedTypeAtom:
		return domain.FormatAtom, true
	case gofeed.FeedTypeRSS:
		if strings.EqualFold(rootElement(data), "RDF") {
			return domain.FormatRDF, true
		}
		return domain.FormatRSS, true
	}

	if strings.EqualFold(rootElement(data), "opml") {
		return domain.FormatOPML, true
	}
	return "", false
}

// rootElement returns the local name of the first XML element, or ""
func rootElement(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := dec.RawToken()
		if err != nil {
			return ""
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local
		}
	}
}

// Decoder turns raw bodies into batches
type Decoder struct {
	// Strict validates JSON Feed and OPML documents against their versioned schemas
	Strict bool
}

// Decode parses data in whichever supported format it is written in.
// The returned batch has Format and either Document or Subscriptions set.
func (d Decoder) Decode(data []byte) (*domain.Batch, error) {
	format, ok := DetectFormat(data)
	if !ok {
		return nil, &errors.ValidationError{Field: "body", Message: "unrecognized feed format"}
	}
	return d.DecodeAs(format, data)
}

// DecodeAs parses data as the given format
func (d Decoder) DecodeAs(format domain.Format, data []byte) (*domain.Batch, error) {
	batch := &domain.Batch{Format: format}

	switch format {
	case domain.FormatRSS, domain.FormatRDF, domain.FormatAtom:
		doc, err := rss.Parse(data)
		if err != nil {
			return nil, err
		}
		batch.Format = doc.Format
		batch.Document = doc

	case domain.FormatJSON:
		parse := jsonfeed.ParseLooseBytes
		if d.Strict {
			parse = jsonfeed.ParseStrictBytes
		}
		f, err := parse(data)
		if err != nil {
			return nil, err
		}
		batch.Document = FromJSONFeed(f)

	case domain.FormatOPML:
		doc, err := opml.ParseBytes(data)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, &errors.ValidationError{Field: "body", Message: "empty OPML document"}
		}
		if d.Strict {
			if _, err := opml.Validate(doc); err != nil {
				return nil, err
			}
		}
		batch.Subscriptions = doc.Body.Outlines

	default:
		return nil, &errors.ValidationError{Field: "format", Message: "unsupported format " + string(format)}
	}

	return batch, nil
}

// ReadAndDecode reads r fully and decodes it
func (d Decoder) ReadAndDecode(r io.Reader) (*domain.Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapError(err, "failed to read feed")
	}
	return d.Decode(data)
}
