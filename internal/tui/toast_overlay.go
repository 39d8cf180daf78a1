package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/lantern-chat/lantern/internal/toast"
)

// toastWidth is the fixed width of a rendered toast card.
const toastWidth = 40

// severityGlyph maps severities to the marker shown in the card.
var severityGlyph = map[toast.Severity]string{
	toast.SeverityInfo:     "ℹ",
	toast.SeverityWarning:  "⚠",
	toast.SeverityError:    "✗",
	toast.SeverityCritical: "‼",
}

// renderToastStack renders the active toasts right-aligned, oldest on top,
// matching the order the web region shows them.
func (m *Model) renderToastStack() string {
	if len(m.activeToasts) == 0 {
		return ""
	}

	width := m.width
	if width <= 0 {
		width = 80
	}

	cards := make([]string, 0, len(m.activeToasts))
	for _, t := range m.activeToasts {
		cards = append(cards, m.renderToastCard(t))
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, cards...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}

// renderToastCard renders one toast with its severity border.
func (m *Model) renderToastCard(t toast.Toast) string {
	var style lipgloss.Style
	switch t.Severity {
	case toast.SeverityWarning:
		style = m.styles.ToastWarning
	case toast.SeverityError:
		style = m.styles.ToastError
	case toast.SeverityCritical:
		style = m.styles.ToastCritical
	default:
		style = m.styles.ToastInfo
	}

	return style.Width(toastWidth).Render(severityGlyph[t.Severity] + " " + t.Message)
}
