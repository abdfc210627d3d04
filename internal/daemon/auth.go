package daemon

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requireToken wraps handlers so they need the configured API token. An empty
// token disables the check. queryToken additionally accepts ?token=, which the
// overlay needs because browsers cannot set headers on page loads or websocket
// upgrades.
func requireToken(token string, queryToken bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if token == "" {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			if got := presentedToken(r, queryToken); got != "" && sameToken(got, token) {
				next(w, r)
				return
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="factwatch"`)
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		}
	}
}

func presentedToken(r *http.Request, queryToken bool) string {
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	if queryToken {
		return r.URL.Query().Get("token")
	}
	return ""
}

func sameToken(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
