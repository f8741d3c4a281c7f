package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/podclip/backend/internal/config"
	"github.com/podclip/backend/internal/handler"
	appMiddleware "github.com/podclip/backend/internal/middleware"
	"github.com/podclip/backend/internal/repository"
	"github.com/podclip/backend/internal/service"
	"github.com/podclip/backend/internal/ws"
	"github.com/podclip/backend/pkg/crypto"
	"github.com/podclip/backend/pkg/llm"
	"github.com/podclip/backend/pkg/payment"
	"github.com/podclip/backend/pkg/podcastindex"
	"github.com/podclip/backend/pkg/transcript"
)

func main() {
	// Load .env file if present (for local development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Info("database connected & migrated")

	cipher, err := crypto.NewTokenCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("encryption error: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	chatRepo := repository.NewChatRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// External collaborators
	gateway := payment.NewHMACGateway(cfg.CheckoutBaseURL, cfg.PaymentPortalURL, cfg.WebhookSecret)
	directory := podcastindex.NewClient(cfg.PodcastAPIURL, cfg.PodcastAPIKey)
	transcripts := transcript.NewClient(cfg.TranscriptAPIURL, cfg.TranscriptAPIKey)
	model := llm.NewHTTPClient(cfg.ModelAPIURL, cfg.ModelAPIKey, cfg.ModelName)

	// Services
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPassword, userRepo)
	if err := authSvc.SeedAdmin(ctx); err != nil {
		log.Fatalf("admin seed error: %v", err)
	}

	quotaSvc := service.NewQuotaService(userRepo, subRepo)
	subSvc := service.NewSubscriptionService(subRepo, userRepo, gateway)
	summarySvc := service.NewSummaryService(quotaSvc, summaryRepo, transcripts, model)
	searchSvc := service.NewSearchService(quotaSvc, directory)
	chatSvc := service.NewChatService(chatRepo, model)
	settingsSvc := service.NewSettingsService(userRepo, cipher)

	// Background sweeps: monthly quota resets and subscription expiry
	sweepSvc := service.NewSweepService(userRepo, subRepo, cfg.SweepInterval)
	sweepSvc.Start(ctx)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	quotaHandler := handler.NewQuotaHandler(quotaSvc)
	plansHandler := handler.NewPlansHandler()
	billingHandler := handler.NewBillingHandler(subSvc, gateway)
	podcastHandler := handler.NewPodcastHandler(searchSvc)
	summaryHandler := handler.NewSummaryHandler(summarySvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	historyHandler := handler.NewHistoryHandler(historyRepo)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	userHandler := handler.NewUserHandler(authSvc)
	adminHandler := handler.NewAdminHandler(userRepo, summaryRepo, subRepo)
	healthHandler := handler.NewHealthHandler(db)
	wsChatHandler := ws.NewChatHandler(chatSvc, authSvc)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(appMiddleware.Recovery)
	r.Use(appMiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	r.Use(globalRL.Middleware())

	// Public routes (no auth)
	r.Get("/health", healthHandler.Check)
	r.Get("/api/plans", plansHandler.List)
	r.Post("/api/billing/webhook", billingHandler.Webhook) // Signed by the payment provider

	// Auth routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.StrictRateLimiter())
		r.Post("/api/auth/login", authHandler.Login)
	})

	// Protected API routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Auth(authSvc))

		// Auth
		r.Post("/api/auth/logout", authHandler.Logout)
		r.Get("/api/auth/me", authHandler.Me)

		// Quota
		r.Get("/api/quota", quotaHandler.Get)

		// Podcasts
		r.Get("/api/podcasts/search", podcastHandler.Search)

		// Summaries
		r.Post("/api/episodes/{id}/summary", summaryHandler.Create)
		r.Get("/api/summaries", summaryHandler.List)

		// Episode chat (REST fallback for the WebSocket endpoint)
		r.Post("/api/episodes/{id}/chat", chatHandler.Send)
		r.Get("/api/episodes/{id}/chat", chatHandler.History)

		// Listening history
		r.Put("/api/episodes/{id}/progress", historyHandler.SaveProgress)
		r.Get("/api/history", historyHandler.List)

		// Settings
		r.Put("/api/settings/export-token", settingsHandler.SaveExportToken)

		// Billing
		r.Post("/api/billing/checkout", billingHandler.CreateCheckout)
		r.Get("/api/billing/subscription", billingHandler.GetSubscription)
		r.Post("/api/billing/cancel", billingHandler.Cancel)
		r.Get("/api/billing/portal", billingHandler.Portal)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.AdminOnly)
			r.Get("/api/admin/stats", adminHandler.GetStats)
			r.Get("/api/admin/diagnostics/quota", adminHandler.QuotaDiagnostics)
			r.Get("/api/users", userHandler.List)
			r.Post("/api/users", userHandler.Create)
			r.Delete("/api/users/{id}", userHandler.Delete)
		})
	})

	// WebSocket chat (auth via query param)
	r.HandleFunc("/episodes/{episodeId}/chat", wsChatHandler.Handle)

	// Start server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// WriteTimeout must be 0 for WebSocket connections (they are long-lived)
		IdleTimeout: 120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Infof("Podclip backend listening at http://%s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
