package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/creachadair/jrpc2"
)

const (
	bearerScheme = "Bearer "

	codeUnauthorized = jrpc2.Code(-32600)
)

// authFailure is the JSON-RPC error envelope sent with a 401, so RPC
// clients can decode it like any other error response.
type authFailure struct {
	Version string       `json:"jsonrpc"`
	Error   *jrpc2.Error `json:"error"`
	ID      any          `json:"id"`
}

// requireToken rejects requests whose Authorization header does not carry
// secret as a bearer token. An empty secret rejects every request.
func requireToken(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if validToken(secret, r.Header.Get("Authorization")) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("WWW-Authenticate", `Bearer realm="todostudio"`)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(authFailure{
			Version: "2.0",
			Error:   &jrpc2.Error{Code: codeUnauthorized, Message: "Unauthorized"},
		})
	})
}

func validToken(secret, authHeader string) bool {
	token, ok := strings.CutPrefix(authHeader, bearerScheme)
	if !ok || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(secret)) == 1
}

// BearerHeader returns the Authorization header value for token.
func BearerHeader(token string) string {
	return bearerScheme + token
}
