package middleware

import "github.com/gin-gonic/gin"

// Security sets common HTTP security headers on every response, grounded
// in the pack's gin security-headers middleware.
func Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
