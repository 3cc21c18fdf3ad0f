package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminContextKey = "studynotesAdmin"

// RequireAdmin rejects requests without a valid admin bearer token. A
// disabled verifier lets every request through.
func RequireAdmin(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !v.Enabled() {
			c.Next()
			return
		}

		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		claims, err := v.Validate(token)
		if err != nil {
			if errors.Is(err, ErrForbidden) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		c.Set(adminContextKey, claims)
		c.Next()
	}
}

// CurrentAdmin returns the claims stored by RequireAdmin.
func CurrentAdmin(c *gin.Context) (AdminClaims, bool) {
	value, exists := c.Get(adminContextKey)
	if !exists {
		return AdminClaims{}, false
	}
	claims, ok := value.(AdminClaims)
	return claims, ok
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
