package opml

import (
	"fmt"
	"strconv"
	"time"

	"digests-ingest/core/domain"
	"digests-ingest/core/errors"
	"digests-ingest/pkg/utils/parse"
)

const schemaName = "opml"

// Attributes kept for typed OPML 2.0 outlines
var (
	rssAttributes = []string{
		"text", "title", "description", "htmlUrl", "language", "version",
		"created", "category", "isComment", "isBreakpoint", "xmlUrl", "type",
	}

	linkAttributes = []string{"text", "created", "category", "isComment", "isBreakpoint", "url", "type"}
)

var dateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	time.RFC822,
	time.RFC822Z,
	time.RFC3339,
}

// ParseStrict parses text and validates it against its declared version.
// Empty input yields (nil, nil) like Parse.
func ParseStrict(text string) (domain.StrictOpml, error) {
	doc, err := Parse(text)
	if err != nil || doc == nil {
		return nil, err
	}
	return Validate(doc)
}

// Validate narrows a loose document to the OPML 1.x or 2.0 shape.
// All violations are reported together as an *errors.SchemaError.
func Validate(doc *domain.OpmlDocument) (domain.StrictOpml, error) {
	if doc == nil {
		return nil, &errors.SchemaError{Schema: schemaName, Issues: []errors.FieldIssue{{Path: "", Message: "document is empty"}}}
	}

	v := &validator{}
	var out domain.StrictOpml

	switch doc.Version {
	case "1.0", "1.1":
		out = &domain.OpmlV1{
			Version:  doc.Version,
			Head:     copyHead(doc.Head),
			Outlines: v.outlinesV1(doc.Body.Outlines, "body.outlines"),
		}
	case "2.0":
		out = &domain.OpmlV2{
			Version:  doc.Version,
			Head:     v.headV2(doc.Head),
			Outlines: v.outlinesV2(doc.Body.Outlines, "body.outlines"),
		}
	case "":
		v.add("version", "is required")
	default:
		v.add("version", "unsupported version %q", doc.Version)
	}

	if len(v.issues) > 0 {
		return nil, &errors.SchemaError{Schema: schemaName, Issues: v.issues}
	}
	return out, nil
}

type validator struct {
	issues []errors.FieldIssue
}

func (v *validator) add(path, format string, args ...interface{}) {
	v.issues = append(v.issues, errors.FieldIssue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) outlinesV1(in []domain.OpmlOutline, path string) []domain.OutlineV1 {
	out := make([]domain.OutlineV1, 0, len(in))
	for i, o := range in {
		p := path + "." + strconv.Itoa(i)
		v.flags(o, p)
		out = append(out, domain.OutlineV1{
			Text:         o.Attr("text"),
			Type:         o.Attr("type"),
			IsComment:    o.Attr("isComment"),
			IsBreakpoint: o.Attr("isBreakpoint"),
			Outlines:     v.childrenV1(o.Outlines, p+".outlines"),
		})
	}
	return out
}

func (v *validator) childrenV1(in []domain.OpmlOutline, path string) []domain.OutlineV1 {
	if len(in) == 0 {
		return nil
	}
	return v.outlinesV1(in, path)
}

func (v *validator) outlinesV2(in []domain.OpmlOutline, path string) []domain.OutlineV2 {
	out := make([]domain.OutlineV2, 0, len(in))
	for i, o := range in {
		p := path + "." + strconv.Itoa(i)
		v.flags(o, p)

		outline := domain.OutlineV2{}
		typ, typed := o.Attributes["type"]
		switch {
		case !typed:
			outline.Kind = domain.OutlineUntyped
			outline.Attributes = copyHead(o.Attributes)
		case typ == "rss":
			outline.Kind = domain.OutlineRSS
			v.required(o, "xmlUrl", p)
			outline.Attributes = pick(o.Attributes, rssAttributes)
		case typ == "link" || typ == "include":
			outline.Kind = domain.OutlineKind(typ)
			v.required(o, "url", p)
			outline.Attributes = pick(o.Attributes, linkAttributes)
		default:
			v.add(p+".type", "unsupported outline type %q", typ)
			continue
		}

		if len(o.Outlines) > 0 {
			outline.Outlines = v.outlinesV2(o.Outlines, p+".outlines")
		}
		out = append(out, outline)
	}
	return out
}

func (v *validator) headV2(head map[string]string) domain.HeadV2 {
	h := domain.HeadV2{
		Title:          head["title"],
		DateCreated:    v.date(head, "dateCreated"),
		DateModified:   v.date(head, "dateModified"),
		OwnerName:      head["ownerName"],
		OwnerEmail:     head["ownerEmail"],
		OwnerID:        head["ownerId"],
		Docs:           head["docs"],
		ExpansionState: head["expansionState"],
	}
	h.VertScrollState = v.integer(head, "vertScrollState")
	h.WindowTop = v.integer(head, "windowTop")
	h.WindowLeft = v.integer(head, "windowLeft")
	h.WindowBottom = v.integer(head, "windowBottom")
	h.WindowRight = v.integer(head, "windowRight")
	return h
}

func (v *validator) date(head map[string]string, key string) string {
	s := head[key]
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return s
		}
	}
	v.add("head."+key, "invalid date %q", s)
	return ""
}

func (v *validator) integer(head map[string]string, key string) *int {
	s, ok := head[key]
	if !ok || s == "" {
		return nil
	}
	n, ok := parse.Int(s)
	if !ok {
		v.add("head."+key, "expected integer, got %q", s)
		return nil
	}
	return &n
}

// flags checks the boolean attributes, which OPML encodes as literal strings
func (v *validator) flags(o domain.OpmlOutline, path string) {
	for _, name := range []string{"isComment", "isBreakpoint"} {
		s, ok := o.Attributes[name]
		if ok && s != "true" && s != "false" {
			v.add(path+"."+name, "must be \"true\" or \"false\", got %q", s)
		}
	}
}

func (v *validator) required(o domain.OpmlOutline, name, path string) {
	if o.Attributes[name] == "" {
		v.add(path+"."+name, "is required")
	}
}

func pick(attrs map[string]string, allowed []string) map[string]string {
	out := make(map[string]string, len(allowed))
	for _, name := range allowed {
		if s, ok := attrs[name]; ok {
			out[name] = s
		}
	}
	return out
}

func copyHead(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, s := range in {
		out[k] = s
	}
	return out
}
