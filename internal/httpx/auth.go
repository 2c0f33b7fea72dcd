package httpx

import "net/http"

// Identity headers set by the upstream auth proxy. Account management and
// token verification live outside this service; we only consume the resolved
// ids.
const (
	headerUserID  = "X-User-ID"
	headerStaffID = "X-Staff-ID"
)

func userID(r *http.Request) string  { return r.Header.Get(headerUserID) }
func staffID(r *http.Request) string { return r.Header.Get(headerStaffID) }

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "UNAUTHORIZED", "message": "missing identity"})
}
