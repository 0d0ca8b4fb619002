// ABOUTME: Validating JSON Feed parser with one constructor per declared version
// ABOUTME: Collects every offending field path before rejecting the document

package jsonfeed

import (
	"fmt"
	"strconv"

	"digests-ingest/core/domain"
	"digests-ingest/core/errors"
	"digests-ingest/pkg/record"
	"github.com/go-playground/validator/v10"
)

const schemaName = "jsonfeed"

var validate = validator.New()

// ParseStrictBytes decodes data and validates it
func ParseStrictBytes(data []byte) (*domain.JSONFeed, error) {
	v, err := record.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return ParseStrict(v)
}

// ParseStrict validates v against the JSON Feed version it declares.
// Violations are returned together as an *errors.SchemaError.
func ParseStrict(v record.Value) (*domain.JSONFeed, error) {
	m, ok := v.Map()
	if !ok {
		return nil, ErrNotObject
	}

	version, _ := m.Get("version")
	s, _ := version.Str()
	switch s {
	case domain.JSONFeedVersion1:
		return newV1(m)
	case domain.JSONFeedVersion11:
		return newV11(m)
	case "":
		return nil, schemaError(errors.FieldIssue{Path: "version", Message: "is required"})
	default:
		return nil, schemaError(errors.FieldIssue{Path: "version", Message: fmt.Sprintf("unsupported version %q", s)})
	}
}

// newV1 accepts a singular author; authors and language are not part of v1
func newV1(m *record.Map) (*domain.JSONFeed, error) {
	c := &checker{}
	c.feed(m, false)
	if err := c.err(); err != nil {
		return nil, err
	}

	feed := feedFromMap(m)
	feed.Authors = nil
	feed.Language = ""
	for i := range feed.Items {
		feed.Items[i].Authors = nil
		feed.Items[i].Language = ""
	}
	return feed, nil
}

// newV11 adds the authors array and language. The deprecated author object is still accepted.
func newV11(m *record.Map) (*domain.JSONFeed, error) {
	c := &checker{}
	c.feed(m, true)
	if err := c.err(); err != nil {
		return nil, err
	}
	return feedFromMap(m), nil
}

func schemaError(issues ...errors.FieldIssue) error {
	return &errors.SchemaError{Schema: schemaName, Issues: issues}
}

// checker accumulates issues in document order
type checker struct {
	issues []errors.FieldIssue
}

func (c *checker) add(path, format string, args ...interface{}) {
	c.issues = append(c.issues, errors.FieldIssue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) err() error {
	if len(c.issues) == 0 {
		return nil
	}
	return schemaError(c.issues...)
}

func (c *checker) feed(m *record.Map, v11 bool) {
	c.str(m, "title", "title", true)
	c.url(m, "home_page_url", "home_page_url")
	c.url(m, "feed_url", "feed_url")
	c.str(m, "description", "description", false)
	c.str(m, "user_comment", "user_comment", false)
	c.url(m, "next_url", "next_url")
	c.url(m, "icon", "icon")
	c.url(m, "favicon", "favicon")
	if v, ok := m.Get("expired"); ok {
		if _, isBool := v.Boolean(); !isBool {
			c.add("expired", "expected boolean")
		}
	}
	c.authors(m, "", v11)
	if v11 {
		c.str(m, "language", "language", false)
	}

	if hubs, ok := c.array(m, "hubs", "hubs", false); ok {
		for i, hv := range hubs {
			path := "hubs." + strconv.Itoa(i)
			hm, isMap := hv.Map()
			if !isMap {
				c.add(path, "expected object")
				continue
			}
			c.str(hm, "type", path+".type", true)
			c.urlRequired(hm, "url", path+".url")
		}
	}

	items, ok := c.array(m, "items", "items", true)
	if !ok {
		return
	}
	for i, iv := range items {
		path := "items." + strconv.Itoa(i)
		im, isMap := iv.Map()
		if !isMap {
			c.add(path, "expected object")
			continue
		}
		c.item(im, path, v11)
	}
}

func (c *checker) item(m *record.Map, path string, v11 bool) {
	c.str(m, "id", path+".id", true)
	c.url(m, "url", path+".url")
	c.url(m, "external_url", path+".external_url")
	c.str(m, "title", path+".title", false)
	c.str(m, "content_html", path+".content_html", false)
	c.str(m, "content_text", path+".content_text", false)
	c.str(m, "summary", path+".summary", false)
	c.url(m, "image", path+".image")
	c.url(m, "banner_image", path+".banner_image")
	c.str(m, "date_published", path+".date_published", false)
	c.str(m, "date_modified", path+".date_modified", false)
	c.authors(m, path+".", v11)
	if v11 {
		c.str(m, "language", path+".language", false)
	}

	if tags, ok := c.array(m, "tags", path+".tags", false); ok {
		for i, tv := range tags {
			if _, isStr := tv.Str(); !isStr {
				c.add(fmt.Sprintf("%s.tags.%d", path, i), "expected string")
			}
		}
	}

	if atts, ok := c.array(m, "attachments", path+".attachments", false); ok {
		for i, av := range atts {
			apath := fmt.Sprintf("%s.attachments.%d", path, i)
			am, isMap := av.Map()
			if !isMap {
				c.add(apath, "expected object")
				continue
			}
			c.urlRequired(am, "url", apath+".url")
			c.str(am, "mime_type", apath+".mime_type", true)
			c.str(am, "title", apath+".title", false)
			c.number(am, "size_in_bytes", apath+".size_in_bytes")
			c.number(am, "duration_in_seconds", apath+".duration_in_seconds")
		}
	}
}

func (c *checker) authors(m *record.Map, prefix string, v11 bool) {
	if v, ok := m.Get("author"); ok {
		c.author(v, prefix+"author")
	}
	if !v11 {
		return
	}
	authors, ok := c.array(m, "authors", prefix+"authors", false)
	if !ok {
		return
	}
	for i, av := range authors {
		c.author(av, fmt.Sprintf("%sauthors.%d", prefix, i))
	}
}

func (c *checker) author(v record.Value, path string) {
	am, ok := v.Map()
	if !ok {
		c.add(path, "expected object")
		return
	}
	c.str(am, "name", path+".name", false)
	c.url(am, "url", path+".url")
	c.url(am, "avatar", path+".avatar")
}

func (c *checker) str(m *record.Map, key, path string, required bool) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		if required {
			c.add(path, "is required")
		}
		return "", false
	}
	s, isStr := v.Str()
	if !isStr {
		c.add(path, "expected string, got %s", v.Kind())
		return "", false
	}
	return s, true
}

func (c *checker) url(m *record.Map, key, path string) {
	if s, ok := c.str(m, key, path, false); ok {
		c.checkURL(s, path)
	}
}

func (c *checker) urlRequired(m *record.Map, key, path string) {
	if s, ok := c.str(m, key, path, true); ok {
		c.checkURL(s, path)
	}
}

func (c *checker) checkURL(s, path string) {
	if err := validate.Var(s, "required,url"); err != nil {
		c.add(path, "invalid URL %q", s)
	}
}

func (c *checker) number(m *record.Map, key, path string) {
	v, ok := m.Get(key)
	if !ok {
		return
	}
	if _, isNum := v.Num(); !isNum {
		c.add(path, "expected number, got %s", v.Kind())
	}
}

func (c *checker) array(m *record.Map, key, path string, required bool) ([]record.Value, bool) {
	v, ok := m.Get(key)
	if !ok {
		if required {
			c.add(path, "is required")
		}
		return nil, false
	}
	items, isList := v.Items()
	if !isList {
		c.add(path, "expected array, got %s", v.Kind())
		return nil, false
	}
	return items, true
}
