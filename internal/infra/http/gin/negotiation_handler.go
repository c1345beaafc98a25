package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"tradepost/internal/app/commands"
	"tradepost/internal/app/dto"
	negotiationapp "tradepost/internal/app/handlers/negotiation"
	"tradepost/internal/app/queries"
)

type NegotiationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type openConversationRequest struct {
	ListingID      string `json:"listing_id" binding:"required"`
	CounterpartyID string `json:"counterparty_id"`
}

func (h NegotiationHandler) Open(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req openConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := negotiationapp.OpenConversationCommand{
		ListingID:       req.ListingID,
		CallerID:        user.ID,
		CounterpartyID:  req.CounterpartyID,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[negotiationapp.OpenConversationCommand, *dto.Conversation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h NegotiationHandler) Inbox(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := queries.Ask[negotiationapp.ListMyConversationsQuery, dto.ConversationCollection](
		c.Request.Context(), h.Queries, negotiationapp.ListMyConversationsQuery{CallerID: user.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h NegotiationHandler) Get(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	q := negotiationapp.GetConversationQuery{ConversationID: c.Param("id"), CallerID: user.ID}
	result, err := queries.Ask[negotiationapp.GetConversationQuery, dto.Conversation](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type sendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h NegotiationHandler) SendMessage(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := negotiationapp.SendMessageCommand{ConversationID: c.Param("id"), SenderID: user.ID, Body: req.Body}
	result, err := commands.Dispatch[negotiationapp.SendMessageCommand, *dto.ChatMessage](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h NegotiationHandler) ListMessages(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	q := negotiationapp.ListMessagesQuery{
		ConversationID: c.Param("id"),
		CallerID:       user.ID,
		Limit:          limit,
		Cursor:         c.Query("cursor"),
	}
	result, err := queries.Ask[negotiationapp.ListMessagesQuery, dto.ChatMessageList](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h NegotiationHandler) MarkRead(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := negotiationapp.MarkReadCommand{ConversationID: c.Param("id"), CallerID: user.ID}
	result, err := commands.Dispatch[negotiationapp.MarkReadCommand, *dto.Conversation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h NegotiationHandler) Finalize(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := negotiationapp.FinalizeCommand{ConversationID: c.Param("id"), CallerID: user.ID}
	result, err := commands.Dispatch[negotiationapp.FinalizeCommand, *dto.Conversation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h NegotiationHandler) RetractFinalize(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := negotiationapp.RetractFinalizeCommand{ConversationID: c.Param("id"), CallerID: user.ID}
	result, err := commands.Dispatch[negotiationapp.RetractFinalizeCommand, *dto.Conversation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type tradeOfferRequest struct {
	Title     string `json:"title" binding:"required"`
	ImageURL  string `json:"image_url"`
	Condition string `json:"condition"`
}

func (h NegotiationHandler) SetTradeOffer(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req tradeOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := negotiationapp.SetTradeOfferCommand{
		ConversationID: c.Param("id"),
		CallerID:       user.ID,
		Title:          req.Title,
		ImageURL:       req.ImageURL,
		Condition:      req.Condition,
	}
	result, err := commands.Dispatch[negotiationapp.SetTradeOfferCommand, *dto.Conversation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type submitClaimRequest struct {
	When    string `json:"when"`
	Where   string `json:"where"`
	Details string `json:"details"`
}

func (h NegotiationHandler) SubmitClaim(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req submitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := negotiationapp.SubmitClaimCommand{
		ConversationID: c.Param("id"),
		ClaimantID:     user.ID,
		When:           req.When,
		Where:          req.Where,
		Details:        req.Details,
	}
	result, err := commands.Dispatch[negotiationapp.SubmitClaimCommand, *dto.Claim](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h NegotiationHandler) ListClaims(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	q := negotiationapp.ListClaimsQuery{ConversationID: c.Param("id"), CallerID: user.ID}
	result, err := queries.Ask[negotiationapp.ListClaimsQuery, []dto.Claim](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": result})
}

type decideClaimRequest struct {
	Approve bool `json:"approve"`
}

func (h NegotiationHandler) DecideClaim(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req decideClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := negotiationapp.DecideClaimCommand{
		ConversationID: c.Param("id"),
		ClaimID:        c.Param("claimId"),
		DeciderID:      user.ID,
		Approve:        req.Approve,
	}
	result, err := commands.Dispatch[negotiationapp.DecideClaimCommand, *dto.Claim](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ NegotiationHTTP = NegotiationHandler{}
