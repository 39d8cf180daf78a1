package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Lantern amber for branding.
const lanternAmber = "#F2B04C"

// LANTERN ASCII art banner.
var lanternArt = []string{
	" ██╗      █████╗ ███╗   ██╗████████╗███████╗██████╗ ███╗   ██╗",
	" ██║     ██╔══██╗████╗  ██║╚══██╔══╝██╔════╝██╔══██╗████╗  ██║",
	" ██║     ███████║██╔██╗ ██║   ██║   █████╗  ██████╔╝██╔██╗ ██║",
	" ██║     ██╔══██║██║╚██╗██║   ██║   ██╔══╝  ██╔══██╗██║╚██╗██║",
	" ███████╗██║  ██║██║ ╚████║   ██║   ███████╗██║  ██║██║ ╚████║",
	" ╚══════╝╚═╝  ╚═╝╚═╝  ╚═══╝   ╚═╝   ╚══════╝╚═╝  ╚═╝╚═╝  ╚═══╝",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Tips      lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style
	StatusBar lipgloss.Style

	// Toast overlay styles keyed by severity class.
	ToastInfo     lipgloss.Style
	ToastWarning  lipgloss.Style
	ToastError    lipgloss.Style
	ToastCritical lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	toastBase := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)

	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(lanternAmber)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),

		ToastInfo:     toastBase.BorderForeground(lipgloss.Color("75")),
		ToastWarning:  toastBase.BorderForeground(lipgloss.Color("220")),
		ToastError:    toastBase.BorderForeground(lipgloss.Color("196")),
		ToastCritical: toastBase.BorderForeground(lipgloss.Color("161")).Bold(true),
	}
}

// RenderBanner returns the LANTERN ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range lanternArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips contains getting started tips displayed under the banner.
var welcomeTips = []string{
	"Tips for getting started:",
	"  • Ask questions about your indexed documents",
	"  • Use /help to see available commands",
	"  • Press Ctrl+C to cancel, Ctrl+D to exit",
	"  • Ctrl+X dismisses all notifications",
}

// RenderWelcomeTips returns styled welcome tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
