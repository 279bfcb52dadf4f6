package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// SecretHeader carries the shared secret on service API requests.
const SecretHeader = "X-Api-Key"

// CheckSharedSecret reports whether the request carries the configured
// shared secret. An unconfigured secret rejects everything. Comparison is
// constant time.
func CheckSharedSecret(r *http.Request, secret string) bool {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return false
	}
	got := strings.TrimSpace(r.Header.Get(SecretHeader))
	return subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}
