//go:build !dev

package resources

import (
	"embed"
	"io/fs"
	"net/http"
)

// IsDev reports whether assets are read from disk.
const IsDev = false

//go:embed static/*
var staticFS embed.FS

// Handler serves the embedded static files.
func Handler() http.Handler {
	fsys, _ := fs.Sub(staticFS, "static")
	fileServer := http.FileServer(http.FS(fsys))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// embedded assets only change with the binary
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.StripPrefix(StaticPrefix, fileServer).ServeHTTP(w, r)
	})
}
