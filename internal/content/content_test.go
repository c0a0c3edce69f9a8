package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"plain text", "hello world", "hello world"},
		{"trims", "  hello  ", "hello"},
		{"strips tags", "<b>bold</b> move", "bold move"},
		{"drops script body", "hi<script>alert(1)</script>", "hi"},
		{"keeps comparison", "a < b && c > d", "a < b && c > d"},
		{"keeps quotes", `she said "ok"`, `she said "ok"`},
		{"keeps typed entities", "&lt;b&gt;bold&lt;/b&gt;", "&lt;b&gt;bold&lt;/b&gt;"},
		{"keeps lone ampersand", "fish & chips", "fish & chips"},
		{"keeps named entity", "caf&eacute;", "caf&eacute;"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Clean(tc.in))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"&lt;b&gt;x&lt;/b&gt;",
		"<i>tag</i> &amp; text",
		"a < b && c > d",
		"&&amp;&lt;",
		"  spaced <br/> out  ",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)
	}
}

func TestRender(t *testing.T) {
	out := Render("**bold** and _em_")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<em>em</em>")
}

func TestRender_NoRawHTML(t *testing.T) {
	out := Render("<script>alert(1)</script>\n\n<img src=x onerror=alert(1)>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "onerror")
}

func TestRender_ExternalLinksOpenSafely(t *testing.T) {
	out := Render("[site](https://example.com)")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "noreferrer")
}
