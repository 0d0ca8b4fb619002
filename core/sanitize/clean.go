// ABOUTME: Strips script blocks, style blocks and comments from HTML text
// ABOUTME: Works on byte ranges without building a DOM or decoding entities

package sanitize

import (
	"sort"
	"strings"
)

// CleanOptions toggles each removal category independently
type CleanOptions struct {
	StripScripts  bool
	StripStyles   bool
	StripComments bool
}

// DefaultCleanOptions enables every category
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{StripScripts: true, StripStyles: true, StripComments: true}
}

// span is a half-open byte range [start, end)
type span struct {
	start, end int
}

// CleanHTML removes the enabled categories from html.
//
// Matching is ASCII case-insensitive and purely textual. Known limits:
// entity-encoded tags are left alone, a literal </script> inside a script
// string ends the block, CDATA is not recognized, same-kind nesting is not
// balanced, and whitespace inside the opening delimiter ("<  script") is not
// recognized as a tag. Scans repeat until nothing matches, so the result is
// stable under a second call. If nothing matches, html is returned as is.
func CleanHTML(html string, opts CleanOptions) string {
	// removing a range can join the halves of a new tag, so repeat until stable
	for {
		cleaned, changed := cleanOnce(html, opts)
		if !changed {
			return html
		}
		html = cleaned
	}
}

// cleanOnce removes every range found in one scan of html
func cleanOnce(html string, opts CleanOptions) (string, bool) {
	var ranges []span
	if opts.StripScripts {
		ranges = appendElementRanges(ranges, html, "<script", "</script>")
	}
	if opts.StripStyles {
		ranges = appendElementRanges(ranges, html, "<style", "</style>")
	}
	if opts.StripComments {
		ranges = appendCommentRanges(ranges, html)
	}
	if len(ranges) == 0 {
		return html, false
	}

	ranges = mergeRanges(ranges)

	var b strings.Builder
	b.Grow(len(html))
	last := 0
	for _, r := range ranges {
		b.WriteString(html[last:r.start])
		last = r.end
	}
	b.WriteString(html[last:])
	return b.String(), true
}

// appendElementRanges finds every open marker and the end of its element.
// A self-closing opening tag removes only the tag; an unclosed element runs to the end.
func appendElementRanges(ranges []span, html, open, closeTag string) []span {
	pos := 0
	for {
		start := indexFold(html, open, pos)
		if start < 0 {
			return ranges
		}

		tagEnd := strings.IndexByte(html[start+len(open):], '>')
		if tagEnd < 0 {
			return append(ranges, span{start, len(html)})
		}
		tagEnd += start + len(open)

		if selfClosing(html, start+len(open), tagEnd) {
			ranges = append(ranges, span{start, tagEnd + 1})
			pos = tagEnd + 1
			continue
		}

		closeAt := indexFold(html, closeTag, tagEnd+1)
		if closeAt < 0 {
			return append(ranges, span{start, len(html)})
		}
		end := closeAt + len(closeTag)
		ranges = append(ranges, span{start, end})
		pos = end
	}
}

// selfClosing reports whether the tag ending at gt ends with "/", ignoring whitespace
func selfClosing(html string, from, gt int) bool {
	for i := gt - 1; i >= from; i-- {
		switch html[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case '/':
			return true
		default:
			return false
		}
	}
	return false
}

func appendCommentRanges(ranges []span, html string) []span {
	pos := 0
	for {
		start := strings.Index(html[pos:], "<!--")
		if start < 0 {
			return ranges
		}
		start += pos

		closeAt := strings.Index(html[start+4:], "-->")
		if closeAt < 0 {
			return append(ranges, span{start, len(html)})
		}
		end := start + 4 + closeAt + 3
		ranges = append(ranges, span{start, end})
		pos = end
	}
}

// mergeRanges sorts ranges by start and joins overlapping or adjacent ones
func mergeRanges(ranges []span) []span {
	if len(ranges) == 0 {
		return ranges
	}

	sorted := make([]span, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end < sorted[j].end
	})

	merged := sorted[:1]
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// indexFold is strings.Index with ASCII-only case folding on byte codes.
// needle must already be lower case.
func indexFold(s, needle string, from int) int {
	n := len(needle)
	for i := from; i+n <= len(s); i++ {
		j := 0
		for ; j < n; j++ {
			if lowerASCII(s[i+j]) != needle[j] {
				break
			}
		}
		if j == n {
			return i
		}
	}
	return -1
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
