package component

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/lantern-chat/lantern/internal/citation"
)

// MessageProps configures one chat bubble.
type MessageProps struct {
	ID        string
	Role      string // "user" or "assistant"
	Content   string
	Citations []citation.Display
}

// ChatPage renders the chat view: transcript plus input form.
func ChatPage(messages []MessageProps) g.Node {
	return h.Div(h.Class("chat"),
		h.Div(h.ID("transcript"), h.Class("transcript"),
			g.Map(messages, MessageBubble),
		),
		ChatInput(),
	)
}

// ChatInput renders the message form. app.js intercepts the submit and
// streams the reply over SSE.
func ChatInput() g.Node {
	return h.Form(h.ID("chat-form"), h.Class("chat-input"), h.Action("/chat/send"), h.Method("post"),
		h.Textarea(
			h.Name("message"),
			h.Placeholder("Ask about your documents..."),
			h.Rows("3"),
			h.Required(),
		),
		h.Button(h.Type("submit"), g.Text("Send")),
	)
}

// MessageBubble renders one transcript entry with its citations, if any.
func MessageBubble(msg MessageProps) g.Node {
	return h.Div(
		h.Class("message message-"+msg.Role),
		g.If(msg.ID != "", g.Attr("data-message-id", msg.ID)),
		h.Div(h.Class("message-content"), g.Text(msg.Content)),
		g.If(len(msg.Citations) > 0, CitationList(msg.Citations)),
	)
}

// CitationList renders the sources backing an assistant message.
func CitationList(citations []citation.Display) g.Node {
	return h.Div(h.Class("citations"),
		h.H4(g.Text("Sources")),
		g.Map(citations, CitationCard),
	)
}

// CitationCard renders one normalized citation.
func CitationCard(c citation.Display) g.Node {
	return h.Div(h.Class("citation"), g.Attr("data-source-id", c.SourceID),
		g.Iff(c.URI != "", func() g.Node {
			return h.A(h.Href(c.URI), h.Class("citation-title"), g.Text(c.Title))
		}),
		g.If(c.URI == "", h.Span(h.Class("citation-title"), g.Text(c.Title))),
		g.If(c.Snippet != "", h.P(h.Class("citation-snippet"), g.Text(c.Snippet))),
	)
}
