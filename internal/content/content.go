// Package content cleans user-written text on the way in and renders it to
// safe HTML on the way out.
//
// Stored post and comment bodies are plain text with any markup stripped.
// Clients that want formatting read contentHtml, which is the body rendered
// as GitHub-flavoured markdown and then passed through a UGC sanitiser.
package content

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			htmlrenderer.WithHardWraps(),
			htmlrenderer.WithXHTML(),
		),
	)
	strict = bluemonday.StrictPolicy()
	ugc    = newUGCPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

// Clean strips every HTML tag from s and trims surrounding whitespace.
//
// Entities the user typed are kept literally: "&lt;b&gt;" is stored as
// typed, not decoded into a tag that a later edit would strip. Ampersands
// are escaped before sanitising so the tokenizer cannot decode them, and
// the strict policy's own escaping is undone afterwards. Clean is
// idempotent.
func Clean(s string) string {
	escaped := strings.ReplaceAll(s, "&", "&amp;")
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(escaped)))
}

// Render converts markdown to sanitised HTML. Raw HTML in the source is
// never passed through. On a conversion failure the escaped source is
// returned.
func Render(source string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return html.EscapeString(source)
	}
	return string(ugc.SanitizeBytes(buf.Bytes()))
}
