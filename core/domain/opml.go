// ABOUTME: OPML outline trees in their loose and version-validated shapes
// ABOUTME: Strict documents form a small sealed union keyed by OPML version

package domain

// OpmlDocument is a loosely parsed OPML document.
// Every attribute is kept verbatim as a string.
type OpmlDocument struct {
	Version string            `json:"version,omitempty"`
	Head    map[string]string `json:"head"`
	Body    OpmlBody          `json:"body"`
}

// OpmlBody holds the top-level outlines
type OpmlBody struct {
	Outlines []OpmlOutline `json:"outlines"`
}

// OpmlOutline is one node of the outline tree
type OpmlOutline struct {
	Attributes map[string]string `json:"attributes"`
	Outlines   []OpmlOutline     `json:"outlines,omitempty"`
}

// Attr returns an attribute value or ""
func (o OpmlOutline) Attr(name string) string {
	return o.Attributes[name]
}

// StrictOpml is implemented by OpmlV1 and OpmlV2
type StrictOpml interface {
	OpmlVersion() string
}

// OpmlV1 is a validated OPML 1.0 or 1.1 document
type OpmlV1 struct {
	Version  string            `json:"version"`
	Head     map[string]string `json:"head"`
	Outlines []OutlineV1       `json:"outlines"`
}

// OpmlVersion implements StrictOpml
func (d *OpmlV1) OpmlVersion() string { return d.Version }

// OutlineV1 keeps only the attributes OPML 1.x defines.
// IsComment and IsBreakpoint are the literal strings "true" or "false" when set.
type OutlineV1 struct {
	Text         string      `json:"text,omitempty"`
	Type         string      `json:"type,omitempty"`
	IsComment    string      `json:"isComment,omitempty"`
	IsBreakpoint string      `json:"isBreakpoint,omitempty"`
	Outlines     []OutlineV1 `json:"outlines,omitempty"`
}

// OpmlV2 is a validated OPML 2.0 document
type OpmlV2 struct {
	Version  string      `json:"version"`
	Head     HeadV2      `json:"head"`
	Outlines []OutlineV2 `json:"outlines"`
}

// OpmlVersion implements StrictOpml
func (d *OpmlV2) OpmlVersion() string { return d.Version }

// HeadV2 is the typed OPML 2.0 head
type HeadV2 struct {
	Title           string `json:"title,omitempty"`
	DateCreated     string `json:"dateCreated,omitempty"`
	DateModified    string `json:"dateModified,omitempty"`
	OwnerName       string `json:"ownerName,omitempty"`
	OwnerEmail      string `json:"ownerEmail,omitempty"`
	OwnerID         string `json:"ownerId,omitempty"`
	Docs            string `json:"docs,omitempty"`
	ExpansionState  string `json:"expansionState,omitempty"`
	VertScrollState *int   `json:"vertScrollState,omitempty"`
	WindowTop       *int   `json:"windowTop,omitempty"`
	WindowLeft      *int   `json:"windowLeft,omitempty"`
	WindowBottom    *int   `json:"windowBottom,omitempty"`
	WindowRight     *int   `json:"windowRight,omitempty"`
}

// OutlineKind discriminates OPML 2.0 outlines
type OutlineKind string

const (
	OutlineRSS     OutlineKind = "rss"
	OutlineLink    OutlineKind = "link"
	OutlineInclude OutlineKind = "include"
	OutlineUntyped OutlineKind = "untyped"
)

// OutlineV2 is one validated OPML 2.0 outline.
// Attributes holds only the fields allowed for its Kind; untyped outlines keep all of them.
type OutlineV2 struct {
	Kind       OutlineKind       `json:"kind"`
	Attributes map[string]string `json:"attributes"`
	Outlines   []OutlineV2       `json:"outlines,omitempty"`
}

// XMLURL returns the subscription URL of an rss outline
func (o OutlineV2) XMLURL() string {
	if o.Kind != OutlineRSS {
		return ""
	}
	return o.Attributes["xmlUrl"]
}
