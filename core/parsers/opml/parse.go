// ABOUTME: Lenient OPML reader producing an open attribute-bag outline tree
// ABOUTME: Any outline depth is accepted and unknown attributes are kept verbatim

package opml

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"digests-ingest/core/domain"
	"golang.org/x/net/html/charset"
)

// Parse reads an OPML document of any version.
// Empty or whitespace-only input yields (nil, nil): an unreachable or blank
// subscription list is not an error.
func Parse(text string) (*domain.OpmlDocument, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return ParseBytes([]byte(text))
}

// ParseBytes is Parse for raw bytes in any declared charset.
// Attribute and head names keep the prefix written in the document, e.g. "podcast:guid".
func ParseBytes(data []byte) (*domain.OpmlDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel
	r := &reader{dec: dec}

	root, err := r.root()
	if err != nil {
		return nil, fmt.Errorf("opml: %w", err)
	}
	if root.Name.Local != "opml" {
		return nil, fmt.Errorf("opml: expected element type <opml> but have <%s>", qualifiedName(root.Name))
	}

	doc := &domain.OpmlDocument{
		Version: attrValue(root, "version"),
		Head:    make(map[string]string),
	}
	if err := r.document(doc); err != nil {
		return nil, fmt.Errorf("opml: %w", err)
	}
	if doc.Body.Outlines == nil {
		doc.Body.Outlines = []domain.OpmlOutline{}
	}

	return doc, nil
}

// reader walks raw tokens so namespace prefixes survive untranslated
type reader struct {
	dec *xml.Decoder
}

func (r *reader) next() (xml.Token, error) {
	tok, err := r.dec.RawToken()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

func (r *reader) root() (xml.StartElement, error) {
	for {
		tok, err := r.dec.RawToken()
		if err == io.EOF {
			return xml.StartElement{}, errors.New("document has no root element")
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// document reads the children of <opml> up to its end tag
func (r *reader) document(doc *domain.OpmlDocument) error {
	for {
		tok, err := r.next()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch qualifiedName(t.Name) {
			case "head":
				err = r.head(doc.Head)
			case "body":
				doc.Body.Outlines, err = r.outlines()
			default:
				err = r.skip()
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (r *reader) head(head map[string]string) error {
	for {
		tok, err := r.next()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			text, err := r.text()
			if err != nil {
				return err
			}
			head[qualifiedName(t.Name)] = strings.TrimSpace(text)
		case xml.EndElement:
			return nil
		}
	}
}

// outlines reads <outline> children up to the enclosing end tag; other elements are skipped
func (r *reader) outlines() ([]domain.OpmlOutline, error) {
	var out []domain.OpmlOutline
	for {
		tok, err := r.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if qualifiedName(t.Name) != "outline" {
				if err := r.skip(); err != nil {
					return nil, err
				}
				continue
			}
			o := domain.OpmlOutline{Attributes: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				o.Attributes[qualifiedName(a.Name)] = a.Value
			}
			if o.Outlines, err = r.outlines(); err != nil {
				return nil, err
			}
			out = append(out, o)
		case xml.EndElement:
			return out, nil
		}
	}
}

// text returns the element's own character data and consumes its end tag
func (r *reader) text() (string, error) {
	var b strings.Builder
	depth := 0
	for {
		tok, err := r.next()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if depth == 0 {
				b.Write(t)
			}
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return b.String(), nil
			}
			depth--
		}
	}
}

func (r *reader) skip() error {
	_, err := r.text()
	return err
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func attrValue(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if qualifiedName(a.Name) == name {
			return a.Value
		}
	}
	return ""
}

// Canonical renders doc as indented JSON with sorted attribute keys.
// The output is stable across runs and is what golden files store.
func Canonical(doc interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
