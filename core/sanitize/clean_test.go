package sanitize

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "all three categories",
			in:   `<!-- c --><script>s</script><style>t</style><div>k</div>`,
			want: `<div>k</div>`,
		},
		{
			name: "self-closing script",
			in:   `<script src="a.js" /><div>t</div>`,
			want: `<div>t</div>`,
		},
		{
			name: "self-closing with tab before gt",
			in:   "<p>a</p><SCRIPT src=\"x\"/\t><p>b</p>",
			want: "<p>a</p><p>b</p>",
		},
		{
			name: "mixed case tags",
			in:   `<p>x</p><ScRiPt type="text/javascript">alert(1)</sCrIpT><p>y</p>`,
			want: `<p>x</p><p>y</p>`,
		},
		{
			name: "unclosed script strips to end",
			in:   `<p>keep</p><script>var a = 1;`,
			want: `<p>keep</p>`,
		},
		{
			name: "unterminated opening tag strips to end",
			in:   `<p>keep</p><style media="x"`,
			want: `<p>keep</p>`,
		},
		{
			name: "unclosed comment strips to end",
			in:   `before<!-- never closed`,
			want: `before`,
		},
		{
			name: "comment nested in script is one span",
			in:   `a<script><!-- hidden --></script>b`,
			want: `ab`,
		},
		{
			name: "multiple blocks",
			in:   `<style>a{}</style>1<style>b{}</style>2<script>x</script>3`,
			want: `123`,
		},
		{
			name: "entity encoded tags are left alone",
			in:   `&lt;script&gt;alert(1)&lt;/script&gt;`,
			want: `&lt;script&gt;alert(1)&lt;/script&gt;`,
		},
		{
			name: "closing tag inside script string ends the block",
			in:   `<script>var s = "</script>";</script>after`,
			want: `";</script>after`,
		},
		{
			name: "whitespace inside the delimiter is not a tag",
			in:   `<  script  >x</script>`,
			want: `<  script  >x</script>`,
		},
		{
			name: "nothing to strip",
			in:   `<div>plain</div>`,
			want: `<div>plain</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanHTML(tt.in, DefaultCleanOptions()))
		})
	}
}

func TestCleanHTML_Toggles(t *testing.T) {
	in := `<!-- c --><script>s</script><style>t</style><div>k</div>`

	assert.Equal(t, in, CleanHTML(in, CleanOptions{}))
	assert.Equal(t, `<script>s</script><style>t</style><div>k</div>`, CleanHTML(in, CleanOptions{StripComments: true}))
	assert.Equal(t, `<!-- c --><style>t</style><div>k</div>`, CleanHTML(in, CleanOptions{StripScripts: true}))
	assert.Equal(t, `<!-- c --><script>s</script><div>k</div>`, CleanHTML(in, CleanOptions{StripStyles: true}))
}

func TestCleanHTML_Idempotent(t *testing.T) {
	inputs := []string{
		`<!-- c --><script>s</script><style>t</style><div>k</div>`,
		`<script src="a.js" /><div>t</div>`,
		`<p>a</p><!-- x --><p>b</p><script>`,
		`<div><style>p{}</style><span>z</span></div>`,
		`no markup at all`,
		`<scr<!-- x -->ipt>alert(1)</script><p>k</p>`,
		`<sty<script>x</script>le>p{}</style><b>b</b>`,
	}

	for _, in := range inputs {
		once := CleanHTML(in, DefaultCleanOptions())
		assert.Equal(t, once, CleanHTML(once, DefaultCleanOptions()), in)
	}
}

func TestCleanHTML_RejoinedTags(t *testing.T) {
	assert.Equal(t, "<p>k</p>", CleanHTML(`<scr<!-- x -->ipt>alert(1)</script><p>k</p>`, DefaultCleanOptions()))
	assert.Equal(t, "<b>b</b>", CleanHTML(`<sty<script>x</script>le>p{}</style><b>b</b>`, DefaultCleanOptions()))
}

func TestMergeRanges(t *testing.T) {
	got := mergeRanges([]span{{10, 20}, {0, 5}, {5, 8}, {15, 25}, {30, 31}, {12, 14}})
	assert.Equal(t, []span{{0, 8}, {10, 25}, {30, 31}}, got)

	assert.Empty(t, mergeRanges(nil))
}

func TestMergeRanges_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(12)
		in := make([]span, 0, n)
		for i := 0; i < n; i++ {
			start := rng.Intn(100)
			in = append(in, span{start, start + 1 + rng.Intn(15)})
		}

		out := mergeRanges(in)

		for i := 1; i < len(out); i++ {
			require.Less(t, out[i-1].end, out[i].start, "sorted and disjoint")
		}
		assert.Equal(t, coverage(in), coverage(out))
		assert.Equal(t, out, mergeRanges(out))
	}
}

func coverage(ranges []span) map[int]bool {
	covered := make(map[int]bool)
	for _, r := range ranges {
		for i := r.start; i < r.end; i++ {
			covered[i] = true
		}
	}
	return covered
}

func TestIndexFold(t *testing.T) {
	assert.Equal(t, 3, indexFold("abc<SCRIPT>", "<script", 0))
	assert.Equal(t, -1, indexFold("abc<SCRIPT>", "<script", 4))
	assert.Equal(t, -1, indexFold("<scr", "<script", 0))
}

func TestPlainText(t *testing.T) {
	in := `<p>Tom &amp; Jerry</p><script>alert("x")</script>
		<style>p { color: red }</style><!-- note --><p>are   <b>back</b></p>`

	assert.Equal(t, "Tom & Jerry are back", PlainText(in))
	assert.Equal(t, "", PlainText(""))
}

func TestSafeHTML(t *testing.T) {
	out := SafeHTML(`<p onclick="evil()">Hi <a href="https://example.com">there</a></p><script>x</script>`)

	assert.Contains(t, out, `<a href="https://example.com"`)
	assert.NotContains(t, out, "onclick")
	assert.False(t, strings.Contains(out, "<script"))
}
