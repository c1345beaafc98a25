package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tradepost/internal/app/commands"
	"tradepost/internal/app/dto"
	reviewsapp "tradepost/internal/app/handlers/reviews"
	"tradepost/internal/app/queries"
)

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type submitReviewRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Text   string `json:"text"`
}

func (h ReviewHandler) Submit(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reviewsapp.SubmitReviewCommand{
		ConversationID: c.Param("id"),
		ReviewerID:     user.ID,
		Rating:         req.Rating,
		Text:           req.Text,
	}
	result, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) Eligibility(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	q := reviewsapp.ReviewEligibilityQuery{ConversationID: c.Param("id"), ReviewerID: user.ID}
	result, err := queries.Ask[reviewsapp.ReviewEligibilityQuery, dto.ReviewEligibility](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewHandler) ListForUser(c *gin.Context) {
	q := reviewsapp.ListRevieweeReviewsQuery{RevieweeID: c.Param("id")}
	result, err := queries.Ask[reviewsapp.ListRevieweeReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReviewHTTP = ReviewHandler{}
