// ABOUTME: Bot-defense detection for fetched pages and requested URLs
// ABOUTME: Signatures match body markers, page titles and URL glob patterns

package fetch

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"digests-ingest/core/errors"
	"github.com/PuerkitoBio/goquery"
	"github.com/gobwas/glob"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"
)

// GuardSignature is a named bot-defense pattern.
// Markers are matched case-insensitively as substrings.
type GuardSignature struct {
	Name         string   `yaml:"name"`
	BodyMarkers  []string `yaml:"body_markers"`
	TitleMarkers []string `yaml:"title_markers"`
	URLPatterns  []string `yaml:"url_patterns"`
}

// DefaultSignatures returns the built-in signatures
func DefaultSignatures() []GuardSignature {
	return []GuardSignature{
		{
			Name:         "cloudflare",
			BodyMarkers:  []string{"cf-browser-verification", "cf_chl_opt", "cf-challenge-running"},
			TitleMarkers: []string{"just a moment...", "attention required! | cloudflare"},
			URLPatterns:  []string{"*/cdn-cgi/challenge-platform/*", "*/cdn-cgi/l/chk_captcha*"},
		},
		{
			Name:        "datadome",
			BodyMarkers: []string{"geo.captcha-delivery.com", "ct.captcha-delivery.com"},
			URLPatterns: []string{"*://geo.captcha-delivery.com/*", "*://*.captcha-delivery.com/*"},
		},
		{
			Name:         "perimeterx",
			BodyMarkers:  []string{"_pxcaptcha", "px-captcha", "captcha.px-cdn.net"},
			TitleMarkers: []string{"access to this page has been denied"},
			URLPatterns:  []string{"*://captcha.px-cdn.net/*"},
		},
		{
			Name:        "incapsula",
			BodyMarkers: []string{"_incapsula_resource", "incapsula incident id"},
			URLPatterns: []string{"*/_incapsula_resource*"},
		},
		{
			Name:         "sucuri",
			BodyMarkers:  []string{"sucuri website firewall", "sucuri-cloudproxy"},
			TitleMarkers: []string{"sucuri website firewall"},
		},
		{
			Name:         "vercel",
			BodyMarkers:  []string{"vercel security checkpoint"},
			TitleMarkers: []string{"vercel security checkpoint"},
			URLPatterns:  []string{"*/.well-known/vercel/security/*"},
		},
		{
			Name:        "awswaf",
			BodyMarkers: []string{"aws-waf-token", "awswaf.com/"},
			URLPatterns: []string{"*.awswaf.com/*"},
		},
		{
			Name:        "akamai",
			BodyMarkers: []string{"errors.edgesuite.net", "akamai bot manager"},
		},
	}
}

type signatureFile struct {
	Signatures []GuardSignature `yaml:"signatures"`
}

// LoadSignatures reads extra signatures from a YAML file of the form
//
//	signatures:
//	  - name: examplewaf
//	    body_markers: ["examplewaf challenge"]
//	    url_patterns: ["*://challenge.example.net/*"]
func LoadSignatures(path string) ([]GuardSignature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, "failed to read guard signatures")
	}
	return ParseSignatures(data)
}

// ParseSignatures decodes the YAML signature format
func ParseSignatures(data []byte) ([]GuardSignature, error) {
	var file signatureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapError(err, "invalid guard signature file")
	}
	for i, sig := range file.Signatures {
		if sig.Name == "" {
			return nil, &errors.ValidationError{Field: fmt.Sprintf("signatures.%d.name", i), Message: "is required"}
		}
	}
	return file.Signatures, nil
}

type compiledSignature struct {
	name  string
	body  []string
	title []string
	urls  []glob.Glob
}

// GuardDetector matches attempts against a fixed set of signatures
type GuardDetector struct {
	signatures []compiledSignature
}

// NewGuardDetector compiles sigs. Signatures are tried in the order given.
func NewGuardDetector(sigs ...GuardSignature) (*GuardDetector, error) {
	d := &GuardDetector{signatures: make([]compiledSignature, 0, len(sigs))}
	for _, sig := range sigs {
		c := compiledSignature{
			name:  sig.Name,
			body:  lowerAll(sig.BodyMarkers),
			title: lowerAll(sig.TitleMarkers),
		}
		for _, pattern := range sig.URLPatterns {
			g, err := glob.Compile(strings.ToLower(pattern))
			if err != nil {
				return nil, errors.WrapError(err, fmt.Sprintf("invalid url pattern %q in signature %s", pattern, sig.Name))
			}
			c.urls = append(c.urls, g)
		}
		d.signatures = append(d.signatures, c)
	}
	return d, nil
}

// Check returns a guard error when the attempt's URLs or body match a signature
func (d *GuardDetector) Check(a *Attempt) error {
	if name, ok := d.MatchURL(a.URL); ok {
		return &errors.GuardedURLError{URL: a.URL, Signature: name}
	}
	if a.Result == nil {
		return nil
	}
	if a.Result.FinalURL != "" && a.Result.FinalURL != a.URL {
		if name, ok := d.MatchURL(a.Result.FinalURL); ok {
			return &errors.GuardedURLError{URL: a.URL, Signature: name}
		}
	}
	if name, ok := d.MatchBody(a.Result.Body); ok {
		return &errors.GuardedPageError{URL: a.URL, Signature: name}
	}
	return nil
}

// MatchURL returns the first signature whose URL patterns match rawURL
func (d *GuardDetector) MatchURL(rawURL string) (string, bool) {
	u := strings.ToLower(rawURL)
	for _, sig := range d.signatures {
		for _, g := range sig.urls {
			if g.Match(u) {
				return sig.name, true
			}
		}
	}
	return "", false
}

// MatchBody returns the first signature found in a page body.
// Bodies that are recognizable feeds are never treated as challenge pages.
func (d *GuardDetector) MatchBody(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	if gofeed.DetectFeedType(bytes.NewReader(body)) != gofeed.FeedTypeUnknown {
		return "", false
	}

	lowered := strings.ToLower(string(body))
	title := pageTitle(body)

	for _, sig := range d.signatures {
		for _, marker := range sig.body {
			if strings.Contains(lowered, marker) {
				return sig.name, true
			}
		}
		if title == "" {
			continue
		}
		for _, marker := range sig.title {
			if strings.Contains(title, marker) {
				return sig.name, true
			}
		}
	}
	return "", false
}

// pageTitle returns the lower-cased <title> of an HTML page, or ""
func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}
