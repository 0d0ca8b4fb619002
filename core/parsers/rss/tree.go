// ABOUTME: Converts RSS, RDF and Atom XML into a loosely typed record tree
// ABOUTME: Keeps attributes, element text and namespaced children side by side

package rss

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"digests-ingest/pkg/record"
	"golang.org/x/net/html/charset"
)

const (
	attrPrefix = "@_"
	textKey    = "#text"
)

// ErrNoRootElement is returned when the input holds no XML element at all
var ErrNoRootElement = errors.New("rss: document has no root element")

// multiValued elements are always stored as lists, even with a single occurrence
var multiValued = map[string]bool{
	"item":          true,
	"entry":         true,
	"category":      true,
	"author":        true,
	"itunes:author": true,
	"atom:link":     true,
}

type frame struct {
	name string
	m    *record.Map
	text strings.Builder
}

// buildTree tokenizes data and returns the root element name and its record.
// Entities are decoded once, by the tokenizer.
// Unclosed elements at end of input are closed implicitly.
func buildTree(data []byte) (string, record.Value, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	var (
		stack    []*frame
		rootName string
		root     record.Value
		haveRoot bool
	)

	closeTop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if text := strings.TrimSpace(top.text.String()); text != "" {
			top.m.Set(textKey, record.String(text))
		}
		value := record.Object(top.m)

		if len(stack) == 0 {
			if !haveRoot {
				rootName, root, haveRoot = top.name, value, true
			}
			return
		}
		addChild(stack[len(stack)-1].m, top.name, value)
	}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			if haveRoot || len(stack) > 0 {
				// keep what was read before the syntax error
				break
			}
			return "", record.Value{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if haveRoot && len(stack) == 0 {
				continue
			}
			f := &frame{name: qualifiedName(t.Name), m: record.NewMap()}
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns") {
					continue
				}
				f.m.Set(attrPrefix+qualifiedName(attr.Name), record.String(attr.Value))
			}
			stack = append(stack, f)
		case xml.EndElement:
			if len(stack) > 0 {
				closeTop()
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	for len(stack) > 0 {
		closeTop()
	}

	if !haveRoot {
		return "", record.Value{}, ErrNoRootElement
	}
	return rootName, root, nil
}

// qualifiedName keeps the document's own prefix, e.g. "dc:date"
func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func addChild(parent *record.Map, name string, v record.Value) {
	existing, ok := parent.Get(name)
	if !ok {
		if multiValued[name] {
			parent.Set(name, record.List(v))
		} else {
			parent.Set(name, v)
		}
		return
	}

	if items, isList := existing.Items(); isList {
		parent.Set(name, record.List(append(items, v)...))
		return
	}
	parent.Set(name, record.List(existing, v))
}

// textOf returns the text of an element, or of the first element with text in a list
func textOf(v record.Value) string {
	switch v.Kind() {
	case record.KindMap:
		m, _ := v.Map()
		if t, ok := m.Get(textKey); ok {
			s, _ := t.Text()
			return s
		}
		return ""
	case record.KindList:
		items, _ := v.Items()
		for _, item := range items {
			if s := textOf(item); s != "" {
				return s
			}
		}
		return ""
	}
	s, _ := v.Text()
	return s
}

// attrOf reads an attribute of an element, or of the first element of a list
func attrOf(v record.Value, name string) string {
	if items, ok := v.Items(); ok {
		if len(items) == 0 {
			return ""
		}
		v = items[0]
	}
	m, ok := v.Map()
	if !ok {
		return ""
	}
	if a, ok := m.Get(attrPrefix + name); ok {
		s, _ := a.Text()
		return s
	}
	return ""
}

// elements flattens a single element or a list of elements
func elements(v record.Value) []record.Value {
	if items, ok := v.Items(); ok {
		return items
	}
	if v.Kind() == record.KindMap {
		return []record.Value{v}
	}
	return nil
}

func firstElement(v record.Value) record.Value {
	els := elements(v)
	if len(els) == 0 {
		return record.Null()
	}
	return els[0]
}
