package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"tradepost/internal/app/policies"
)

const principalContextKey = "tradepost.principal"

// AuthMiddleware resolves the bearer token into a principal via the identity
// port. Requests without a resolvable token pass through anonymous; handlers
// that need a caller use requirePrincipal.
type AuthMiddleware struct {
	Identity policies.IdentityPort
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Identity == nil {
		c.Next()
		return
	}
	principal, err := m.Identity.Resolve(c.Request.Context(), token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token resolution failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(principalContextKey, principal)
	c.Next()
}

func currentPrincipal(c *gin.Context) (policies.Principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return policies.Principal{}, false
	}
	p, ok := val.(policies.Principal)
	return p, ok
}

func requirePrincipal(c *gin.Context) (policies.Principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return policies.Principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
