package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	usernameKey = "username"
	sessionKey  = "session"
)

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// authMiddleware accepts "Authorization: Bearer <token>" and stores the
// username and session id in the gin context.
func (s *HTTPServer) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		username, session, err := s.users.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(usernameKey, username)
		c.Set(sessionKey, session)
		c.Next()
	}
}

func currentUser(c *gin.Context) string { return c.GetString(usernameKey) }

func currentSession(c *gin.Context) string { return c.GetString(sessionKey) }
