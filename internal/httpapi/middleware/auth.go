// Package middleware holds the gin middleware chain mounted by
// internal/httpapi.Router: authentication and rate limiting.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/blake2b"
)

const (
	apiKeyHeader   = "X-Api-Key"
	adminKeyHeader = "X-Admin-Key"
)

// Keys holds the server's configured API key and optional admin key.
// Comparisons hash both sides with BLAKE2b-256 before a constant-time
// comparison, the teacher's internal/infrastructure/keygen.HashSecret
// pattern, so key length never leaks through a header's wire size.
type Keys struct {
	apiKeyHash   [32]byte
	adminKeyHash [32]byte
	hasAdmin     bool
}

// NewKeys hashes the configured keys once at startup. adminKey may be empty,
// in which case admin-only routes always reject.
func NewKeys(apiKey, adminKey string) Keys {
	k := Keys{apiKeyHash: blake2b.Sum256([]byte(apiKey))}
	if adminKey != "" {
		k.adminKeyHash = blake2b.Sum256([]byte(adminKey))
		k.hasAdmin = true
	}
	return k
}

func (k Keys) matchesAPIKey(candidate string) bool {
	h := blake2b.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(h[:], k.apiKeyHash[:]) == 1
}

func (k Keys) matchesAdminKey(candidate string) bool {
	if !k.hasAdmin {
		return false
	}
	h := blake2b.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(h[:], k.adminKeyHash[:]) == 1
}

// RequireAPIKey rejects any request missing a valid X-Api-Key header.
func RequireAPIKey(keys Keys) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(apiKeyHeader)
		if key == "" || !keys.matchesAPIKey(key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status": "error", "message": "missing or invalid " + apiKeyHeader,
			})
			return
		}
		c.Next()
	}
}

// RequireAdminKey additionally rejects any request missing a valid
// X-Admin-Key header. Mounted only on destructive/config-mutating routes,
// behind RequireAPIKey.
func RequireAdminKey(keys Keys) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(adminKeyHeader)
		if key == "" || !keys.matchesAdminKey(key) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status": "error", "message": "missing or invalid " + adminKeyHeader,
			})
			return
		}
		c.Next()
	}
}
