package router

import (
	"context"
	"net/http"
	"strings"

	"viralclip/docs"
	"viralclip/internal/api/v1/handler"
	"viralclip/internal/config"
	"viralclip/internal/database"
	"viralclip/internal/middleware"
	"viralclip/internal/pgmq"
	"viralclip/internal/pubsub"
	"viralclip/internal/repository"
	"viralclip/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"
)

// New wires repositories, services and handlers and returns the HTTP handler
// together with a function that releases its connections.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	// 1. Database: pgx pool for repositories, database/sql for pgmq
	pool, err := database.OpenPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := database.OpenSQL(ctx, cfg, database.DriverPgx)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	closers := []func(){pool.Close, func() { _ = sqlDB.Close() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// 2. Pub/Sub events
	var events *pubsub.EventPublisher
	if cfg.EventsEnabled() {
		pub, err := pubsub.NewPublisher(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = pub.Close() })
		events = pubsub.NewEventPublisher(pub, cfg.PubSubClipTopic)
		logger.Info().Str("topic", cfg.PubSubClipTopic).Msg("Clip events enabled")
	} else {
		events = pubsub.NewEventPublisher(pubsub.NopPublisher{}, "")
		logger.Warn().Msg("GCP_PROJECT_ID or PUBSUB_CLIP_TOPIC not set; clip events disabled")
	}

	// 3. Text generation
	apiKey, err := service.ResolveLLMAPIKey(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if apiKey == "" {
		logger.Warn().Msg("No LLM API key configured; clip analysis will use fallback content")
	}
	analyzer := service.NewAnalyzer(service.NewLLMClient(cfg, apiKey), logger)

	// 4. Repositories & services & handlers
	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepo(pool)
	tierRepo := repository.NewTierRepo(pool)
	usageRepo := repository.NewUsageRepo(pool)
	clipRepo := repository.NewClipRepo(pool)
	renderRepo := repository.NewRenderRepo(pool)
	prefsRepo := repository.NewPreferencesRepo(pool)

	userSvc := service.NewUserService(userRepo, prefsRepo, cfg.OwnerOpenID, logger)
	subSvc := service.NewSubscriptionService(tierRepo, userRepo, logger)
	stripeSvc := service.NewStripeService(cfg, userRepo, subSvc, logger)
	clipSvc := service.NewClipService(service.ClipServiceDeps{
		Tiers:    tierRepo,
		Usage:    usageRepo,
		Clips:    clipRepo,
		Renders:  renderRepo,
		Prefs:    prefsRepo,
		Analyzer: analyzer,
		Queue:    service.NewRenderQueue(pgmq.New(sqlDB), cfg.RenderQueueName),
		Events:   events,
	}, logger)

	clipHandler := handler.NewClipHandler(clipSvc, validate, logger)
	userHandler := handler.NewUserHandler(userSvc, validate, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(stripeSvc, subSvc, logger)
	healthHandler := handler.NewHealthHandler(pool, logger)

	// 5. Middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, logger)

	// 6. Routes
	apiV1Mux := http.NewServeMux()
	clipHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	userHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	subscriptionHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	healthHandler.RegisterRoutes(apiV1Mux)

	mux := http.NewServeMux()
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))
	healthHandler.RegisterRoutes(mux)
	mux.HandleFunc("GET /swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			http.Error(w, "swagger doc unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || strings.HasPrefix(r.URL.Path, "/v1/") || strings.HasPrefix(r.URL.Path, "/swagger/") {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/v1"+r.URL.Path, http.StatusMovedPermanently)
	})

	// 7. CORS and request logging
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: false,
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(mux)), cleanup, nil
}
