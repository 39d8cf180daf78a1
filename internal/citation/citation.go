// Package citation normalizes backend citation payloads for display.
//
// Backends attach retrieval sources to assistant messages with snippets that
// may contain backend-rendered HTML. The UI renders plain text only, so the
// snippet is reduced to text here, once, instead of in every renderer.
package citation

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/lantern-chat/lantern/internal/backend"
	"github.com/lantern-chat/lantern/internal/security"
)

// SnippetMaxRunes bounds the displayed snippet length. Truncation happens at
// a word boundary where possible.
const SnippetMaxRunes = 280

// Display is a citation ready for rendering.
type Display struct {
	SourceID string
	Title    string
	URI      string
	Snippet  string // plain text, truncated
	Score    float64
}

// Normalize converts a backend citation into its display form.
//
// Fallbacks when the backend leaves fields empty: the title falls back to
// the first heading or anchor text found in the snippet HTML, then to the
// URI; the URI falls back to the first anchor href in the snippet.
func Normalize(c backend.Citation) Display {
	d := Display{
		SourceID: c.SourceID,
		Title:    strings.TrimSpace(c.Title),
		URI:      strings.TrimSpace(c.URI),
		Score:    c.Score,
	}

	d.Snippet = Truncate(SnippetText(c.Snippet), SnippetMaxRunes)

	if d.Title == "" || d.URI == "" {
		title, href := snippetStructure(c.Snippet)
		if d.Title == "" {
			d.Title = title
		}
		if d.URI == "" {
			d.URI = href
		}
	}
	// Snippet anchors and backend payloads are untrusted; an unsafe URI
	// is dropped rather than rendered as a link.
	if d.URI != "" && security.ValidateLink(d.URI) != nil {
		d.URI = ""
	}
	if d.Title == "" {
		d.Title = d.URI
	}
	if d.Title == "" {
		d.Title = "Untitled source"
	}

	return d
}

// NormalizeAll converts a batch, preserving order.
func NormalizeAll(citations []backend.Citation) []Display {
	out := make([]Display, len(citations))
	for i, c := range citations {
		out[i] = Normalize(c)
	}
	return out
}

// SnippetText reduces snippet HTML to plain text. Script and style content
// is dropped entirely; runs of whitespace collapse to single spaces. Input
// without markup passes through unchanged apart from whitespace collapsing.
func SnippetText(snippet string) string {
	if snippet == "" {
		return ""
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(snippet))
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return collapseWhitespace(b.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}

// skippedTag reports whether a tag's text content must not be displayed.
func skippedTag(name string) bool {
	return name == "script" || name == "style"
}

// snippetStructure extracts a title candidate (first heading, then first
// anchor text) and the first anchor href from snippet HTML.
func snippetStructure(snippet string) (title, href string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		return "", ""
	}

	if heading := doc.Find("h1, h2, h3, h4").First(); heading.Length() > 0 {
		title = strings.TrimSpace(heading.Text())
	}

	if anchor := doc.Find("a[href]").First(); anchor.Length() > 0 {
		href, _ = anchor.Attr("href")
		if title == "" {
			title = strings.TrimSpace(anchor.Text())
		}
	}

	return title, href
}

// Truncate shortens s to at most maxRunes, preferring a word boundary and
// appending an ellipsis when anything was cut.
func Truncate(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}

	truncated := string(runes[:maxRunes])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > maxRunes/2 {
		truncated = truncated[:lastSpace]
	}
	return strings.TrimSpace(truncated) + "..."
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
