package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"tradepost/internal/infra/config"
	"tradepost/internal/infra/obs"
)

type ListingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
	Mine(c *gin.Context)
}

type NegotiationHTTP interface {
	Open(c *gin.Context)
	Inbox(c *gin.Context)
	Get(c *gin.Context)
	SendMessage(c *gin.Context)
	ListMessages(c *gin.Context)
	MarkRead(c *gin.Context)
	Finalize(c *gin.Context)
	RetractFinalize(c *gin.Context)
	SetTradeOffer(c *gin.Context)
	SubmitClaim(c *gin.Context)
	ListClaims(c *gin.Context)
	DecideClaim(c *gin.Context)
}

type ReviewHTTP interface {
	Submit(c *gin.Context)
	Eligibility(c *gin.Context)
	ListForUser(c *gin.Context)
}

type UserHTTP interface {
	Profile(c *gin.Context)
}

type Handlers struct {
	Listing        ListingHTTP
	Negotiation    NegotiationHTTP
	Review         ReviewHTTP
	User           UserHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Listing != nil {
		api.POST("/listings", h.Listing.Create)
		api.GET("/listings/:id", h.Listing.Get)
		api.DELETE("/listings/:id", h.Listing.Delete)
		api.GET("/me/listings", h.Listing.Mine)
	}
	if h.Negotiation != nil {
		api.POST("/conversations", h.Negotiation.Open)
		api.GET("/conversations", h.Negotiation.Inbox)
		convGroup := api.Group("/conversations/:id")
		convGroup.GET("", h.Negotiation.Get)
		convGroup.POST("/messages", h.Negotiation.SendMessage)
		convGroup.GET("/messages", h.Negotiation.ListMessages)
		convGroup.POST("/read", h.Negotiation.MarkRead)
		convGroup.POST("/finalize", h.Negotiation.Finalize)
		convGroup.DELETE("/finalize", h.Negotiation.RetractFinalize)
		convGroup.PUT("/trade-offer", h.Negotiation.SetTradeOffer)
		convGroup.POST("/claims", h.Negotiation.SubmitClaim)
		convGroup.GET("/claims", h.Negotiation.ListClaims)
		convGroup.POST("/claims/:claimId/decision", h.Negotiation.DecideClaim)
	}
	if h.Review != nil {
		api.POST("/conversations/:id/reviews", h.Review.Submit)
		api.GET("/conversations/:id/review-eligibility", h.Review.Eligibility)
		api.GET("/users/:id/reviews", h.Review.ListForUser)
	}
	if h.User != nil {
		api.GET("/users/:id", h.User.Profile)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
