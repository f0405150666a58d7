package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ensemble/internal/audit"
	eventhandler "ensemble/internal/event/handler"
	eventservice "ensemble/internal/event/service"
	eventstore "ensemble/internal/event/store"
	intakehandler "ensemble/internal/intake/handler"
	intakemetrics "ensemble/internal/intake/metrics"
	"ensemble/internal/intake/schema"
	intakeservice "ensemble/internal/intake/service"
	intakestore "ensemble/internal/intake/store"
	"ensemble/internal/platform/config"
	"ensemble/internal/platform/httpserver"
	"ensemble/internal/platform/logger"
	"ensemble/internal/platform/middleware"
	"ensemble/internal/platform/postgres"
	platformredis "ensemble/internal/platform/redis"
	"ensemble/internal/review/cache"
	reviewhandler "ensemble/internal/review/handler"
	reviewmetrics "ensemble/internal/review/metrics"
	reviewservice "ensemble/internal/review/service"
	registrationstore "ensemble/internal/review/store/registration"
	reviewerhandler "ensemble/internal/reviewer/handler"
	reviewerservice "ensemble/internal/reviewer/service"
	reviewerstore "ensemble/internal/reviewer/store"
	"ensemble/internal/reviewer/token"
)

// registrationStore is the union of what intake (writes) and review (reads
// plus guarded transitions) need from the registration store.
type registrationStore interface {
	intakeservice.RegistrationStore
	reviewservice.RegistrationStore
}

// main wires the stores, services, and HTTP surface together. Business logic
// lives in the internal service packages; this file only composes them.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Store selection: Postgres when configured, in-memory otherwise. The
	// in-memory mode is for local development and gets seed data.
	var (
		events        eventservice.EventStore
		registrations registrationStore
		reviewers     reviewerservice.ReviewerStore
		auditStore    audit.Store
	)
	if db != nil {
		events = eventstore.NewPostgres(db)
		registrations = registrationstore.NewPostgres(db)
		reviewers = reviewerstore.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
	} else {
		memEvents := eventstore.NewInMemory()
		eventstore.SeedDevEvents(memEvents)
		events = memEvents
		registrations = registrationstore.NewInMemory()
		reviewers = reviewerstore.NewInMemory()
		auditStore = audit.NewInMemory()
		log.Info("no POSTGRES_DSN set, using in-memory stores with seed data")
	}

	var sink audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	}
	publisher := audit.NewPublisher(auditStore, sink, log)

	intakeMetrics := intakemetrics.New()
	reviewMetrics := reviewmetrics.New()

	drafts := intakestore.NewInMemory(schema.Application(), cfg.DraftTTL)
	drafts.OnExpire(func(*intakestore.Session) {
		intakeMetrics.IncrementDraftsExpired()
	})
	go func() {
		if err := drafts.Run(ctx, time.Minute); err != nil && ctx.Err() == nil {
			log.Error("draft sweeper stopped", "error", err)
		}
	}()

	tokens := token.NewService(cfg.JWTSigningKey, cfg.SessionTTL)

	eventSvc := eventservice.New(events, eventservice.WithLogger(log))
	intakeSvc := intakeservice.New(drafts, events, registrations, schema.Application(),
		intakeservice.WithLogger(log),
		intakeservice.WithAuditPublisher(publisher),
		intakeservice.WithMetrics(intakeMetrics),
	)
	reviewOpts := []reviewservice.Option{
		reviewservice.WithLogger(log),
		reviewservice.WithAuditPublisher(publisher),
		reviewservice.WithMetrics(reviewMetrics),
	}
	if redisClient != nil {
		reviewOpts = append(reviewOpts,
			reviewservice.WithCache(cache.New(redisClient, config.RegistrationCacheTTL)))
	}
	reviewSvc := reviewservice.New(registrations, events, reviewOpts...)
	reviewerSvc := reviewerservice.New(reviewers, tokens,
		reviewerservice.WithLogger(log),
		reviewerservice.WithAuditPublisher(publisher),
	)

	if db == nil {
		seedDevReviewer(ctx, log, reviewerSvc)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.ClientMetadata)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		eventhandler.New(eventSvc, log).Register(r)
		intakehandler.New(intakeSvc, log).Register(r)
		reviewerhandler.New(reviewerSvc, log).Register(r)

		r.Route("/review", func(r chi.Router) {
			r.Use(middleware.RequireAuth(token.NewMiddlewareAdapter(tokens), log))
			reviewhandler.New(reviewSvc, log).Register(r)
		})
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// seedDevReviewer creates a console account for in-memory mode so the review
// endpoints are reachable without prior setup.
func seedDevReviewer(ctx context.Context, log *slog.Logger, svc *reviewerservice.Service) {
	email := os.Getenv("DEV_REVIEWER_EMAIL")
	if email == "" {
		email = "reviewer@ensemble.local"
	}
	password := os.Getenv("DEV_REVIEWER_PASSWORD")
	if password == "" {
		password = "let-me-in"
	}
	if _, err := svc.Register(ctx, email, "Dev Reviewer", password); err != nil {
		log.Error("seeding dev reviewer failed", "error", err)
		return
	}
	log.Info("seeded dev reviewer", "email", email)
}
