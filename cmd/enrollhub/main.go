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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"enrollhub/internal/config"
	"enrollhub/internal/database"
	"enrollhub/internal/handler"
	"enrollhub/internal/mw"
	"enrollhub/internal/service"
	"enrollhub/internal/worker"
)

func main() {
	cfg := config.New()

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(context.Background(), db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	gateway := service.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	if !gateway.Configured() {
		slog.Warn("payment gateway credentials missing, payment endpoints disabled")
	}

	// Services
	catalog := service.DefaultCatalog()
	authSvc := service.NewAuthService(db)
	allocator := service.NewAllocator(db)
	checkoutSvc := service.NewCheckoutService(db, catalog, allocator)
	paymentSvc := service.NewPaymentService(db, gateway)
	enrollSvc := service.NewEnrollmentService(db, catalog)
	adminSvc := service.NewAdminService(db)

	// Worker
	cleanupWorker := worker.NewCleanupWorker(db)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/register", handler.RegisterHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/login", handler.LoginHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/logout", handler.LogoutHandler())
	r.Post("/api/create-order", handler.CreateOrderHandler(paymentSvc))
	r.Post("/api/verify-payment", handler.VerifyPaymentHandler(paymentSvc))
	r.Get("/api/enrollment/summary", handler.EnrollmentSummaryHandler(enrollSvc))
	r.Post("/api/admin/login", handler.AdminLoginHandler(cfg.AdminPassword, cfg.JWTSecret))

	// Works logged-in or anonymous; pricing is personalized when a token is present
	r.Group(func(r chi.Router) {
		r.Use(mw.OptionalAuthMiddleware(cfg.JWTSecret))

		r.Get("/api/checkout", handler.CheckoutHandler(checkoutSvc))
		r.Get("/api/user", handler.CurrentUserHandler(authSvc))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/api/my-plan", handler.MyPlanHandler(authSvc, enrollSvc))
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AdminMiddleware(cfg.JWTSecret))

		r.Get("/api/admin/users", handler.AdminListUsersHandler(adminSvc))
		r.Get("/api/admin/orders", handler.AdminListOrdersHandler(adminSvc))
		r.Post("/api/admin/delete/user/{id}", handler.AdminDeleteUserHandler(adminSvc))
		r.Post("/api/admin/delete/order/{id}", handler.AdminDeleteOrderHandler(adminSvc))
		r.Post("/api/admin/delete-all/{itemType}", handler.AdminDeleteAllHandler(adminSvc))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go cleanupWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
