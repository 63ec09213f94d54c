package auth

import (
	"net/http"
	"strings"
)

// ExtractStateToken reads the return state token from the callback request.
func ExtractStateToken(r *http.Request) string {
	// 1️⃣ Query string, as embedded in url_ok / url_ko
	if state := r.URL.Query().Get("state"); state != "" {
		return state
	}

	// 2️⃣ Authorization header (fallback, used by tooling)
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
