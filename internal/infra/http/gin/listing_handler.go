package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"tradepost/internal/app/commands"
	"tradepost/internal/app/dto"
	listingsapp "tradepost/internal/app/handlers/listings"
	"tradepost/internal/app/queries"
)

type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createListingRequest struct {
	Type          string     `json:"type" binding:"required"`
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	ImageURL      string     `json:"image_url"`
	Condition     string     `json:"condition"`
	PriceCents    *int64     `json:"price_cents"`
	TradeFor      string     `json:"trade_for"`
	LendStart     *time.Time `json:"lend_start"`
	LendEnd       *time.Time `json:"lend_end"`
	FoundLocation string     `json:"found_location"`
	FoundAt       *time.Time `json:"found_at"`
}

func (h ListingHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingsapp.CreateListingCommand{
		OwnerID:         user.ID,
		Type:            req.Type,
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Condition:       req.Condition,
		PriceCents:      req.PriceCents,
		TradeFor:        req.TradeFor,
		FoundLocation:   req.FoundLocation,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	if req.LendStart != nil {
		cmd.LendStart = *req.LendStart
	}
	if req.LendEnd != nil {
		cmd.LendEnd = *req.LendEnd
	}
	if req.FoundAt != nil {
		cmd.FoundAt = *req.FoundAt
	}
	result, err := commands.Dispatch[listingsapp.CreateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	q := listingsapp.GetListingQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[listingsapp.GetListingQuery, dto.Listing](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Delete(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := listingsapp.DeleteListingCommand{ListingID: c.Param("id"), CallerID: user.ID}
	result, err := commands.Dispatch[listingsapp.DeleteListingCommand, *listingsapp.DeleteListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Mine(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	q := listingsapp.ListOwnerListingsQuery{OwnerID: user.ID}
	result, err := queries.Ask[listingsapp.ListOwnerListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}
