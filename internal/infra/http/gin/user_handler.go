package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tradepost/internal/app/dto"
	usersapp "tradepost/internal/app/handlers/users"
	"tradepost/internal/app/queries"
)

type UserHandler struct {
	Queries queries.Bus
}

func (h UserHandler) Profile(c *gin.Context) {
	q := usersapp.GetProfileQuery{UserID: c.Param("id")}
	result, err := queries.Ask[usersapp.GetProfileQuery, dto.UserProfile](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ UserHTTP = UserHandler{}
