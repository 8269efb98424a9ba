// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/diego94js-source/event-weaver/internal/config"
	"github.com/diego94js-source/event-weaver/internal/database"
	"github.com/diego94js-source/event-weaver/internal/handler"
	"github.com/diego94js-source/event-weaver/internal/payment"
	"github.com/diego94js-source/event-weaver/internal/registration"
	"github.com/diego94js-source/event-weaver/internal/repository"
	"github.com/diego94js-source/event-weaver/internal/service"
)

func main() {
	ctx := context.Background()

	// ── 1. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 2. Connect to PostgreSQL and apply schema ─────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	// ── 3. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	attendeeRepo := repository.NewAttendeeRepository(pool)
	authorizer := payment.NewStripeAuthorizer(cfg.Stripe.SecretKey, cfg.Stripe.Currency)
	workflow := registration.NewWorkflow(eventRepo, attendeeRepo, authorizer, cfg.Stripe.Currency)
	eventSvc := service.NewEventService(eventRepo)
	attendeeSvc := service.NewAttendeeService(eventRepo, attendeeRepo)
	api := handler.NewAPI(eventSvc, attendeeSvc, workflow, cfg.Stripe.PublishableKey)

	// ── 4. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // public registration link, any origin

	// Health + client bootstrap
	r.Get("/health", handler.HealthCheck)
	r.Get("/config/stripe-key", api.StripeKey)

	// API routes
	r.Route("/events", func(r chi.Router) {
		r.Post("/", api.CreateEvent)
		r.Get("/", api.ListEvents)
		r.Get("/{id}", api.GetEvent)
		r.Patch("/{id}/status", api.UpdateEventStatus)
		r.Post("/{id}/register", api.StartRegistration)
		r.Post("/{id}/register/complete", api.CompleteRegistration)
		r.Get("/{id}/attendees", api.ListAttendees)
	})
	r.Post("/attendees/{id}/checkin", api.ToggleAttendance)

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
