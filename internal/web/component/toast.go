package component

import (
	"fmt"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/lantern-chat/lantern/internal/toast"
)

// severityIcon maps severities to the glyph shown in the toast card.
var severityIcon = map[toast.Severity]string{
	toast.SeverityInfo:     "i",
	toast.SeverityWarning:  "!",
	toast.SeverityError:    "✕",
	toast.SeverityCritical: "‼",
}

// ToastRegion renders the full toast stack. The SSE stream replaces the
// region wholesale on every change, so eviction and dismissal need no
// client-side bookkeeping.
func ToastRegion(toasts []toast.Toast) g.Node {
	return h.Div(h.ID("toast-region"), h.Class("toast-region"), h.Aria("live", "polite"),
		g.Map(toasts, ToastCard),
	)
}

// ToastCard renders a single toast with its dismiss control.
func ToastCard(t toast.Toast) g.Node {
	return h.Div(
		h.Class("toast toast-"+string(t.Severity)),
		g.Attr("data-toast-id", t.ID),
		h.Role("status"),
		h.Span(h.Class("toast-icon"), g.Text(severityIcon[t.Severity])),
		h.Span(h.Class("toast-message"), g.Text(t.Message)),
		h.Button(
			h.Class("toast-dismiss"),
			h.Type("button"),
			h.Aria("label", "Dismiss notification"),
			g.Attr("data-dismiss", fmt.Sprintf("/toasts/dismiss/%s", t.ID)),
			g.Text("×"),
		),
	)
}
