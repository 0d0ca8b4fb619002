package opml

import (
	"os"
	"path/filepath"
	"testing"

	"digests-ingest/core/domain"
	"digests-ingest/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtures = []string{"category", "directory", "places", "script", "countries", "subscriptions"}

func TestParse_EmptyInputIsAbsent(t *testing.T) {
	for _, in := range []string{"", "  \n\t"} {
		doc, err := Parse(in)
		assert.NoError(t, err)
		assert.Nil(t, doc)
	}

	strict, err := ParseStrict("")
	assert.NoError(t, err)
	assert.Nil(t, strict)
}

func TestParse_GoldenCanonicalOutput(t *testing.T) {
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			input, err := os.ReadFile(filepath.Join("testdata", name+".opml"))
			require.NoError(t, err)
			golden, err := os.ReadFile(filepath.Join("testdata", name+".golden.json"))
			require.NoError(t, err)

			doc, err := Parse(string(input))
			require.NoError(t, err)
			require.NotNil(t, doc)

			got, err := Canonical(doc)
			require.NoError(t, err)
			assert.Equal(t, string(golden), string(got))
		})
	}
}

func TestParse_FixturesValidateStrictly(t *testing.T) {
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			input, err := os.ReadFile(filepath.Join("testdata", name+".opml"))
			require.NoError(t, err)

			strict, err := ParseStrict(string(input))
			require.NoError(t, err)
			assert.NotEmpty(t, strict.OpmlVersion())
		})
	}
}

func TestParse_NestedOutlinesAndUnknownAttributes(t *testing.T) {
	doc, err := Parse(`<opml version="2.0"><head><title> Feeds </title></head><body>
		<outline text="Tech" x-color="blue">
			<outline text="Deep"><outline text="Deeper" type="rss" xmlUrl="https://example.com/rss"/></outline>
		</outline>
	</body></opml>`)
	require.NoError(t, err)

	assert.Equal(t, "2.0", doc.Version)
	assert.Equal(t, "Feeds", doc.Head["title"])
	require.Len(t, doc.Body.Outlines, 1)

	tech := doc.Body.Outlines[0]
	assert.Equal(t, "blue", tech.Attr("x-color"))
	deeper := tech.Outlines[0].Outlines[0]
	assert.Equal(t, "https://example.com/rss", deeper.Attr("xmlUrl"))
	assert.Empty(t, deeper.Outlines)
}

func TestParse_PrefixedAttributesKeepTheirPrefix(t *testing.T) {
	doc, err := Parse(`<opml version="2.0" xmlns:podcast="https://podcastindex.org/namespace/1.0">
		<head><title>Pods</title><podcast:owner>me</podcast:owner></head>
		<body>
			<outline text="a" type="rss" xmlUrl="http://x/f" podcast:guid="g-1" xml:lang="en" guid="plain"/>
		</body></opml>`)
	require.NoError(t, err)

	require.Len(t, doc.Body.Outlines, 1)
	assert.Equal(t, map[string]string{
		"text":         "a",
		"type":         "rss",
		"xmlUrl":       "http://x/f",
		"podcast:guid": "g-1",
		"xml:lang":     "en",
		"guid":         "plain",
	}, doc.Body.Outlines[0].Attributes)
	assert.Equal(t, "me", doc.Head["podcast:owner"])
	assert.Equal(t, "Pods", doc.Head["title"])
}

func TestParse_SkipsNonOutlineElements(t *testing.T) {
	doc, err := Parse(`<opml version="2.0"><head/><body>
		<note>ignored <outline text="hidden"/></note>
		<outline text="kept"/>
	</body></opml>`)
	require.NoError(t, err)

	require.Len(t, doc.Body.Outlines, 1)
	assert.Equal(t, "kept", doc.Body.Outlines[0].Attr("text"))
}

func TestParse_EmptyBody(t *testing.T) {
	doc, err := Parse(`<opml version="1.0"><head/><body/></opml>`)
	require.NoError(t, err)

	assert.NotNil(t, doc.Head)
	assert.NotNil(t, doc.Body.Outlines)
	assert.Empty(t, doc.Body.Outlines)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(`<rss version="2.0"></rss>`)
	assert.Error(t, err)

	_, err = Parse(`this is not xml`)
	assert.Error(t, err)

	_, err = Parse(`<opml version="2.0"><body><outline text="a">`)
	assert.Error(t, err, "truncated document")
}

func TestValidate_V2Subscriptions(t *testing.T) {
	input, err := os.ReadFile(filepath.Join("testdata", "subscriptions.opml"))
	require.NoError(t, err)

	strict, err := ParseStrict(string(input))
	require.NoError(t, err)

	v2, ok := strict.(*domain.OpmlV2)
	require.True(t, ok)
	require.NotNil(t, v2.Head.WindowTop)
	assert.Equal(t, 61, *v2.Head.WindowTop)
	assert.Equal(t, "Sat, 18 Jun 2005 12:11:52 GMT", v2.Head.DateCreated)

	require.Len(t, v2.Outlines, 5)
	assert.Equal(t, domain.OutlineRSS, v2.Outlines[0].Kind)
	assert.Equal(t, "http://news.com.com/2547-1_3-0-5.xml", v2.Outlines[0].XMLURL())
}

func TestValidate_V1KeepsOnlyKnownAttributes(t *testing.T) {
	strict, err := ParseStrict(`<opml version="1.0"><head><title>t</title></head><body>
		<outline text="a" type="link" url="https://example.com" isComment="false"/>
	</body></opml>`)
	require.NoError(t, err)

	v1, ok := strict.(*domain.OpmlV1)
	require.True(t, ok)
	assert.Equal(t, []domain.OutlineV1{{Text: "a", Type: "link", IsComment: "false"}}, v1.Outlines)
	assert.Equal(t, "t", v1.Head["title"])
}

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name  string
		opml  string
		paths []string
	}{
		{
			name:  "unsupported version",
			opml:  `<opml version="3.0"><body/></opml>`,
			paths: []string{"version"},
		},
		{
			name:  "missing version",
			opml:  `<opml><body/></opml>`,
			paths: []string{"version"},
		},
		{
			name:  "bad flag in v1",
			opml:  `<opml version="1.1"><body><outline text="x"><outline isBreakpoint="yes"/></outline></body></opml>`,
			paths: []string{"body.outlines.0.outlines.0.isBreakpoint"},
		},
		{
			name:  "rss without xmlUrl",
			opml:  `<opml version="2.0"><body><outline type="rss" text="x"/></body></opml>`,
			paths: []string{"body.outlines.0.xmlUrl"},
		},
		{
			name:  "link without url",
			opml:  `<opml version="2.0"><body><outline text="x"><outline type="include"/></outline></body></opml>`,
			paths: []string{"body.outlines.0.outlines.0.url"},
		},
		{
			name:  "unknown type",
			opml:  `<opml version="2.0"><body><outline type="howto" text="x"/></body></opml>`,
			paths: []string{"body.outlines.0.type"},
		},
		{
			name:  "bad head fields",
			opml:  `<opml version="2.0"><head><dateCreated>yesterday</dateCreated><windowTop>top</windowTop></head><body/></opml>`,
			paths: []string{"head.dateCreated", "head.windowTop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStrict(tt.opml)
			require.Error(t, err)
			assert.False(t, errors.IsRetryable(err))

			var schemaErr *errors.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.paths, schemaErr.Paths())
		})
	}
}

func TestValidate_NilDocument(t *testing.T) {
	_, err := Validate(nil)
	assert.True(t, errors.IsSchema(err))
}
