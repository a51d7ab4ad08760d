package web

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/pkg/id"
)

const requestIDHeader = "X-Request-ID"

// requestLogger logs each request with its duration and a request id.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := id.RequestID(c.GetHeader(requestIDHeader))
		c.Header(requestIDHeader, reqID)

		c.Next()

		log.Printf("HTTP %s %s [req:%s] status=%d duration=%v",
			c.Request.Method, c.Request.URL.Path, reqID, c.Writer.Status(), time.Since(start))
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// authMiddleware verifies the bearer token and stores the identity in the
// request context. Requests without a token continue anonymously and are
// rejected by the endpoints that need a caller.
func authMiddleware(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if tokens == nil || header == "" {
			c.Next()
			return
		}

		token, ok := auth.BearerToken(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "malformed authorization header"})
			return
		}
		identity, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), identity))
		c.Next()
	}
}
