// Package static provides embedded static assets for the web UI.
package static

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
)

//go:embed css/*.css js/*.js
var assetsFS embed.FS

// Handler returns an http.Handler that serves embedded static assets.
// Panics if the embedded filesystem is corrupted, which should never happen
// at runtime since assets are embedded at compile time.
func Handler() http.Handler {
	sub, err := fs.Sub(assetsFS, ".")
	if err != nil {
		panic(fmt.Sprintf("static: failed to create sub-filesystem: %v", err))
	}
	return http.FileServer(http.FS(sub))
}
