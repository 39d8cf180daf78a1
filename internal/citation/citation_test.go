package citation

import (
	"strings"
	"testing"

	"github.com/lantern-chat/lantern/internal/backend"
)

func TestSnippetText(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		want    string
	}{
		{
			name:    "plain text passes through",
			snippet: "retrieval augmented generation",
			want:    "retrieval augmented generation",
		},
		{
			name:    "markup stripped",
			snippet: "<p>The <em>index</em> is rebuilt nightly.</p>",
			want:    "The index is rebuilt nightly.",
		},
		{
			name:    "script content dropped",
			snippet: `<p>visible</p><script>alert("xss")</script>`,
			want:    "visible",
		},
		{
			name:    "style content dropped",
			snippet: "<style>p { color: red }</style><p>kept</p>",
			want:    "kept",
		},
		{
			name:    "nested script inside div",
			snippet: "<div>a<script>var x = 1;</script>b</div>",
			want:    "a b",
		},
		{
			name:    "whitespace collapsed",
			snippet: "<p>one</p>\n\n  <p>two</p>",
			want:    "one two",
		},
		{
			name:    "empty",
			snippet: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SnippetText(tt.snippet); got != tt.want {
				t.Errorf("SnippetText(%q) = %q, want %q", tt.snippet, got, tt.want)
			}
		})
	}
}

func TestNormalize_Fallbacks(t *testing.T) {
	tests := []struct {
		name      string
		citation  backend.Citation
		wantTitle string
		wantURI   string
	}{
		{
			name: "explicit fields win",
			citation: backend.Citation{
				Title:   "Runbook",
				URI:     "https://docs/runbook",
				Snippet: `<h2>Other Title</h2><a href="https://elsewhere">x</a>`,
			},
			wantTitle: "Runbook",
			wantURI:   "https://docs/runbook",
		},
		{
			name: "title from heading",
			citation: backend.Citation{
				Snippet: "<h2>Deployment Guide</h2><p>steps...</p>",
			},
			wantTitle: "Deployment Guide",
		},
		{
			name: "title and URI from anchor",
			citation: backend.Citation{
				Snippet: `<p>see <a href="https://docs/faq">the FAQ</a></p>`,
			},
			wantTitle: "the FAQ",
			wantURI:   "https://docs/faq",
		},
		{
			name: "title falls back to URI",
			citation: backend.Citation{
				URI:     "https://docs/plain",
				Snippet: "no markup here",
			},
			wantTitle: "https://docs/plain",
			wantURI:   "https://docs/plain",
		},
		{
			name:      "nothing available",
			citation:  backend.Citation{Snippet: "text only"},
			wantTitle: "Untitled source",
		},
		{
			name: "javascript URI dropped",
			citation: backend.Citation{
				Title: "Runbook",
				URI:   "javascript:alert(1)",
			},
			wantTitle: "Runbook",
			wantURI:   "",
		},
		{
			name: "unsafe anchor href dropped",
			citation: backend.Citation{
				Snippet: `<a href="javascript:alert(1)">click</a>`,
			},
			wantTitle: "click",
			wantURI:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.citation)
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.URI != tt.wantURI {
				t.Errorf("URI = %q, want %q", got.URI, tt.wantURI)
			}
		})
	}
}

func TestNormalize_TruncatesSnippet(t *testing.T) {
	long := strings.Repeat("retrieval ", 100)
	got := Normalize(backend.Citation{Snippet: long})

	if runes := len([]rune(got.Snippet)); runes > SnippetMaxRunes+3 {
		t.Errorf("snippet length = %d runes, want <= %d", runes, SnippetMaxRunes+3)
	}
	if !strings.HasSuffix(got.Snippet, "...") {
		t.Errorf("truncated snippet should end with ellipsis, got %q", got.Snippet)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{
			name:     "short string unchanged",
			input:    "hello",
			maxRunes: 10,
			want:     "hello",
		},
		{
			name:     "cuts at word boundary",
			input:    "alpha beta gamma delta",
			maxRunes: 12,
			want:     "alpha beta...",
		},
		{
			name:     "no boundary in second half cuts hard",
			input:    "abcdefghijklmnopqrstuvwxyz",
			maxRunes: 10,
			want:     "abcdefghij...",
		},
		{
			name:     "multibyte runes counted as runes",
			input:    "日本語のテキストです",
			maxRunes: 5,
			want:     "日本語のテ...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxRunes); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	got := NormalizeAll([]backend.Citation{
		{Title: "first"},
		{Title: "second"},
	})
	if len(got) != 2 || got[0].Title != "first" || got[1].Title != "second" {
		t.Errorf("NormalizeAll() = %+v, want order preserved", got)
	}
}
