package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	negotiationapp "tradepost/internal/app/handlers/negotiation"
	"tradepost/internal/domain/shared/fault"
)

// respondError maps domain fault kinds onto HTTP statuses. Partial deal
// completion still reports success shape with 200 semantics upstream, so it
// surfaces here as a 502 to tell clients the listing write needs a retry.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, negotiationapp.ErrPartialCompletion) {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	switch fault.KindOf(err) {
	case fault.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case fault.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case fault.KindInvalidOperation:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
