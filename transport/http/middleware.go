package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/whisperbox/core"
	"github.com/layer-3/whisperbox/ports"
)

const grantContextKey = "inboxGrant"

// AuthMiddleware validates inbox access tokens and stores the grant in the
// request context. Failures use the same generic denial as the signed path.
func AuthMiddleware(tokenizer ports.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
			return
		}

		grant, err := tokenizer.TokenToGrant(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
			return
		}

		c.Set(grantContextKey, grant)
		c.Next()
	}
}

// grantFromContext returns the grant set by AuthMiddleware, if any.
func grantFromContext(c *gin.Context) *core.Grant {
	v, ok := c.Get(grantContextKey)
	if !ok {
		return nil
	}
	grant, ok := v.(*core.Grant)
	if !ok {
		return nil
	}
	return grant
}
