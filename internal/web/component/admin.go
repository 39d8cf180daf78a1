package component

import (
	"fmt"
	"time"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/lantern-chat/lantern/internal/audit"
	"github.com/lantern-chat/lantern/internal/backend"
	"github.com/lantern-chat/lantern/internal/mcptools"
)

// AdminPage renders backend status, the reindex control, and the MCP tool
// servers with their toggles.
func AdminPage(status backend.Status, statusErr error, servers []mcptools.ServerState) g.Node {
	return h.Div(h.Class("admin"),
		h.Section(h.Class("panel"),
			h.H2(g.Text("Backend")),
			StatusPanel(status, statusErr),
			h.Form(h.Action("/admin/reindex"), h.Method("post"), h.Class("inline-form"),
				h.Button(h.Type("submit"), g.Text("Reindex documents")),
			),
		),
		h.Section(h.Class("panel"),
			h.H2(g.Text("MCP tool servers")),
			ServerTable(servers),
		),
	)
}

// StatusPanel renders the backend status summary, or the failure when the
// backend could not be reached.
func StatusPanel(status backend.Status, statusErr error) g.Node {
	if statusErr != nil {
		return h.P(h.Class("status status-down"),
			g.Text("Backend unreachable: "+statusErr.Error()),
		)
	}

	state := "degraded"
	if status.Healthy {
		state = "healthy"
	}
	return h.Dl(h.Class("status status-"+state),
		h.Dt(g.Text("State")), h.Dd(g.Text(state)),
		h.Dt(g.Text("Indexed documents")), h.Dd(g.Text(fmt.Sprintf("%d", status.IndexedDocs))),
		h.Dt(g.Text("Pending jobs")), h.Dd(g.Text(fmt.Sprintf("%d", status.PendingJobs))),
		g.If(status.BackendVersion != "",
			g.Group([]g.Node{h.Dt(g.Text("Version")), h.Dd(g.Text(status.BackendVersion))}),
		),
	)
}

// ServerTable renders every configured MCP server with its tools and a
// toggle form.
func ServerTable(servers []mcptools.ServerState) g.Node {
	if len(servers) == 0 {
		return h.P(h.Class("empty"), g.Text("No tool servers configured."))
	}

	return h.Table(h.Class("server-table"),
		h.THead(h.Tr(
			h.Th(g.Text("Server")),
			h.Th(g.Text("State")),
			h.Th(g.Text("Tools")),
			h.Th(g.Text("")),
		)),
		h.TBody(
			g.Map(servers, serverRow),
		),
	)
}

func serverRow(server mcptools.ServerState) g.Node {
	state := "disabled"
	switch {
	case server.Err != "":
		state = "failed"
	case server.Connected:
		state = "connected"
	case server.Enabled:
		state = "connecting"
	}

	action := "enable"
	label := "Enable"
	if server.Enabled {
		action = "disable"
		label = "Disable"
	}

	return h.Tr(g.Attr("data-server", server.Name),
		h.Td(g.Text(server.Name)),
		h.Td(h.Class("state-"+state),
			g.Text(state),
			g.If(server.Err != "", h.Small(h.Class("error"), g.Text(server.Err))),
		),
		h.Td(
			g.Map(server.Tools, func(tool mcptools.ToolInfo) g.Node {
				return h.Code(h.Class("tool"), g.Text(tool.Name))
			}),
		),
		h.Td(
			h.Form(h.Action(fmt.Sprintf("/admin/tools/%s/%s", server.Name, action)), h.Method("post"),
				h.Button(h.Type("submit"), g.Text(label)),
			),
		),
	)
}

// AuditPage renders the recent audit trail.
func AuditPage(entries []audit.Entry) g.Node {
	if len(entries) == 0 {
		return h.P(h.Class("empty"), g.Text("No audit entries yet."))
	}

	return h.Table(h.Class("audit-table"),
		h.THead(h.Tr(
			h.Th(g.Text("When")),
			h.Th(g.Text("Actor")),
			h.Th(g.Text("Action")),
			h.Th(g.Text("Target")),
		)),
		h.TBody(
			g.Map(entries, func(entry audit.Entry) g.Node {
				return h.Tr(
					h.Td(g.El("time", g.Attr("datetime", entry.At.Format(time.RFC3339)),
						g.Text(entry.At.Format("2006-01-02 15:04:05")))),
					h.Td(g.Text(entry.Actor)),
					h.Td(g.Text(entry.Action)),
					h.Td(g.Text(entry.Target)),
				)
			}),
		),
	)
}

// GraphPage renders the knowledge graph container. app.js fetches
// /graph/data and draws into the canvas.
func GraphPage() g.Node {
	return h.Div(h.Class("graph"),
		h.Form(h.ID("graph-form"), h.Class("inline-form"),
			h.Input(h.Type("text"), h.Name("node"), h.Placeholder("Node id")),
			h.Button(h.Type("submit"), g.Text("Explore")),
		),
		h.Div(h.ID("graph-view"), h.Class("graph-view")),
	)
}
