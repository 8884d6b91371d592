package common

import (
	"net/http"
	"strings"
)

// IsDatastar reports whether r was issued by the datastar client, which
// expects an SSE response instead of a full page.
func IsDatastar(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Datastar-Request"), "true")
}
