package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"tradepost/internal/app/commands"
	listingsapp "tradepost/internal/app/handlers/listings"
	negotiationapp "tradepost/internal/app/handlers/negotiation"
	reviewsapp "tradepost/internal/app/handlers/reviews"
	usersapp "tradepost/internal/app/handlers/users"
	"tradepost/internal/app/middleware"
	"tradepost/internal/app/outbox"
	"tradepost/internal/app/queries"
	"tradepost/internal/app/uow"
	"tradepost/internal/domain/listings"
	"tradepost/internal/infra/broker/kafka"
	"tradepost/internal/infra/config"
	mongodb "tradepost/internal/infra/db/mongo"
	ginserver "tradepost/internal/infra/http/gin"
	"tradepost/internal/infra/notify"
	"tradepost/internal/infra/obs"
	infraoutbox "tradepost/internal/infra/outbox"
	"tradepost/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.StorageMode = "memory"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if cfg.StorageMode == "memory" {
		fixturesPath := getenv("LISTING_FIXTURES", defaultListingFixturesPath())
		if err := app.loadListingFixtures(ctx, fixturesPath, logger); err != nil {
			logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	for _, run := range app.workers {
		go func(run func(context.Context) error) {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "error", err)
			}
		}(run)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	workers  []func(context.Context) error
	ready    func() error

	listingsRepo listings.Repository
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory  uow.UoWFactory
		outboxStore outbox.Outbox
		idStore     middleware.IdempotencyStore
		app         application
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		listingsRepo := mongodb.NewListingRepository(client.DB)
		factory := mongodb.Factory{
			DB:                client.DB,
			ListingsRepo:      listingsRepo,
			ConversationsRepo: mongodb.NewConversationRepository(client.DB),
			MessagesRepo:      mongodb.NewMessageRepository(client.DB),
			ClaimsRepo:        mongodb.NewClaimRepository(client.DB),
			ReviewsRepo:       mongodb.NewReviewRepository(client.DB),
			UsersRepo:         mongodb.NewUserRepository(client.DB),
		}
		store := infraoutbox.NewStore(client.DB)
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, fmt.Errorf("kafka producer: %w", err)
		}
		worker := &infraoutbox.Worker{
			Store:       store,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		app.workers = append(app.workers, worker.Run)

		fanout := notify.EventFanout{Notifier: notify.LogNotifier{Logger: logger}, Logger: logger}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "tradepost-notify", nil, fanout)
		if err != nil {
			return application{}, fmt.Errorf("kafka consumer: %w", err)
		}
		topics := []string{
			cfg.KafkaTopicPrefix + "conversation.events.v1",
			cfg.KafkaTopicPrefix + "listing.events.v1",
			cfg.KafkaTopicPrefix + "review.events.v1",
		}
		app.workers = append(app.workers, func(ctx context.Context) error {
			defer consumer.Close()
			return consumer.Run(ctx, topics)
		})

		uowFactory = factory
		outboxStore = store
		idStore = mongodb.NewIdempotencyStore(client.DB)
		app.listingsRepo = listingsRepo
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
	default:
		factory := memory.NewFactory()
		uowFactory = factory
		outboxStore = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
		app.listingsRepo = factory.ListingsRepo
		app.ready = func() error { return nil }
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, listingsapp.CreateListingCommand{}.Key(), &listingsapp.CreateListingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Logger: logger})
	commands.RegisterHandler(commandBus, listingsapp.DeleteListingCommand{}.Key(), &listingsapp.DeleteListingHandler{UoWFactory: uowFactory, Outbox: outboxStore, Logger: logger})
	commands.RegisterHandler(commandBus, negotiationapp.OpenConversationCommand{}.Key(), &negotiationapp.OpenConversationHandler{UoWFactory: uowFactory, Outbox: outboxStore, Logger: logger})
	commands.RegisterHandler(commandBus, negotiationapp.FinalizeCommand{}.Key(), &negotiationapp.FinalizeHandler{UoWFactory: uowFactory, Outbox: outboxStore, Logger: logger})
	commands.RegisterHandler(commandBus, negotiationapp.RetractFinalizeCommand{}.Key(), &negotiationapp.RetractFinalizeHandler{UoWFactory: uowFactory, Outbox: outboxStore, Logger: logger})
	commands.RegisterHandler(commandBus, negotiationapp.SendMessageCommand{}.Key(), &negotiationapp.SendMessageHandler{UoWFactory: uowFactory, Outbox: outboxStore, Logger: logger})
	commands.RegisterHandler(commandBus, negotiationapp.MarkReadCommand{}.Key(), &negotiationapp.MarkReadHandler{UoWFactory: uowFactory, Logger: logger})
	commands.RegisterHandler(commandBus, negotiationapp.SetTradeOfferCommand{}.Key(), &negotiationapp.SetTradeOfferHandler{UoWFactory: uowFactory, Logger: logger})
	commands.RegisterHandler(commandBus, negotiationapp.SubmitClaimCommand{}.Key(), &negotiationapp.SubmitClaimHandler{UoWFactory: uowFactory, Outbox: outboxStore, Logger: logger})
	commands.RegisterHandler(commandBus, negotiationapp.DecideClaimCommand{}.Key(), &negotiationapp.DecideClaimHandler{UoWFactory: uowFactory, Outbox: outboxStore, Logger: logger})
	commands.RegisterHandler(commandBus, reviewsapp.SubmitReviewCommand{}.Key(), &reviewsapp.SubmitReviewHandler{UoWFactory: uowFactory, Logger: logger})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingsapp.GetListingQuery{}.Key(), &listingsapp.GetListingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, listingsapp.ListOwnerListingsQuery{}.Key(), &listingsapp.ListOwnerListingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, negotiationapp.GetConversationQuery{}.Key(), &negotiationapp.GetConversationHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, negotiationapp.ListMyConversationsQuery{}.Key(), &negotiationapp.ListMyConversationsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, negotiationapp.ListMessagesQuery{}.Key(), &negotiationapp.ListMessagesHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, negotiationapp.ListClaimsQuery{}.Key(), &negotiationapp.ListClaimsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, reviewsapp.ReviewEligibilityQuery{}.Key(), &reviewsapp.ReviewEligibilityHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, reviewsapp.ListRevieweeReviewsQuery{}.Key(), &reviewsapp.ListRevieweeReviewsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, usersapp.GetProfileQuery{}.Key(), &usersapp.GetProfileHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	identity := memory.NewIdentityResolver()
	authMW := ginserver.AuthMiddleware{Identity: identity, Logger: logger}

	app.handlers = ginserver.Handlers{
		Listing:        ginserver.ListingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Negotiation:    ginserver.NegotiationHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Review:         ginserver.ReviewHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		User:           ginserver.UserHandler{Queries: queryBusWithMiddleware},
		AuthMiddleware: authMW.Handle,
	}
	return app, nil
}

func (a application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		listingType, err := listings.ParseType(fx.Type)
		if err != nil {
			logger.Error("fixture type invalid", "listing_id", fx.ID, "type", fx.Type)
			continue
		}
		params := listings.CreateParams{
			ID:          listings.ListingID(fx.ID),
			Owner:       listings.OwnerID(fx.Owner),
			Type:        listingType,
			Title:       fx.Title,
			Description: fx.Description,
			ImageURL:    fx.ImageURL,
			Condition:   fx.Condition,
			Now:         now,
		}
		switch listingType {
		case listings.TypeSell:
			params.Sell = &listings.SellDetails{PriceCents: fx.PriceCents}
		case listings.TypeTrade:
			params.Trade = &listings.TradeDetails{InterestedIn: fx.TradeFor}
		case listings.TypeLend:
			params.Lend = &listings.LendDetails{
				WindowStart: parseFixtureTime(fx.LendStart, now),
				WindowEnd:   parseFixtureTime(fx.LendEnd, now.Add(7*24*time.Hour)),
			}
		case listings.TypeLost:
			params.Lost = &listings.LostDetails{FoundLocation: fx.FoundLocation, FoundAt: parseFixtureTime(fx.FoundAt, now)}
		}

		listing, err := listings.NewListing(params)
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := a.listingsRepo.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID, "type", listing.Type)
	}
	return nil
}

type listingFixture struct {
	ID            string `json:"id"`
	Owner         string `json:"owner"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url"`
	Condition     string `json:"condition"`
	PriceCents    int64  `json:"price_cents"`
	TradeFor      string `json:"trade_for"`
	LendStart     string `json:"lend_start"`
	LendEnd       string `json:"lend_end"`
	FoundLocation string `json:"found_location"`
	FoundAt       string `json:"found_at"`
}

func parseFixtureTime(value string, fallback time.Time) time.Time {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return fallback
}

func defaultListingFixturesPath() string {
	return filepath.Join("data", "listings.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
