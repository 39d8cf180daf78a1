// Package component contains the gomponents building blocks for the web UI.
//
// Components are pure functions from props to nodes. They hold no state and
// never touch the request: handlers assemble props and hand them over. All
// text content goes through g.Text so user input is escaped on render.
package component

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// NavItem is one entry in the top navigation.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// LayoutProps configures the page shell.
type LayoutProps struct {
	Title string
	Nav   []NavItem
}

// Layout wraps content in the full HTML document shell.
func Layout(props LayoutProps, content ...g.Node) g.Node {
	title := props.Title
	if title == "" {
		title = "Lantern"
	}

	return h.Doctype(
		h.HTML(h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				h.TitleEl(g.Text(title)),
				h.Link(h.Rel("stylesheet"), h.Href("/static/css/app.css")),
			),
			h.Body(
				Navbar(props.Nav),
				h.Main(h.Class("content"), g.Group(content)),
				h.Div(h.ID("toast-region"), h.Class("toast-region"), h.Aria("live", "polite")),
				h.Script(h.Src("/static/js/app.js"), h.Defer()),
			),
		),
	)
}

// Navbar renders the top navigation bar.
func Navbar(items []NavItem) g.Node {
	return h.Nav(h.Class("navbar"),
		h.A(h.Class("brand"), h.Href("/"), g.Text("Lantern")),
		h.Ul(h.Class("nav-links"),
			g.Map(items, func(item NavItem) g.Node {
				return h.Li(
					h.A(
						h.Href(item.Href),
						g.If(item.Active, h.Class("active")),
						g.Text(item.Label),
					),
				)
			}),
		),
	)
}

// DefaultNav returns the standard navigation with the given path marked
// active.
func DefaultNav(activePath string) []NavItem {
	items := []NavItem{
		{Label: "Chat", Href: "/"},
		{Label: "Graph", Href: "/graph"},
		{Label: "Admin", Href: "/admin"},
		{Label: "Audit", Href: "/audit"},
	}
	for i := range items {
		items[i].Active = items[i].Href == activePath
	}
	return items
}
