package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"raffle-marketplace-platform/internal/config"
	"raffle-marketplace-platform/internal/database"
	"raffle-marketplace-platform/internal/handlers"
	"raffle-marketplace-platform/internal/middleware"
	"raffle-marketplace-platform/internal/repositories"
	"raffle-marketplace-platform/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection
	dbConfig := database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}

	db, err := database.NewConnection(dbConfig)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	// Run migrations on startup
	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Create session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db.DB)
	raffleRepo := repositories.NewRaffleRepository(db.DB)
	ticketRepo := repositories.NewTicketRepository(db.DB)
	transactionRepo := repositories.NewTransactionRepository(db.DB)
	drawRepo := repositories.NewDrawRepository(db.DB)

	// Initialize services
	notifier := services.NewLogNotifier()
	paymentService := services.NewMockPaymentService(cfg.Payment.Gateway)

	userService := services.NewUserService(userRepo)
	raffleService := services.NewRaffleService(raffleRepo, userRepo, notifier)
	inventoryService := services.NewInventoryService(ticketRepo, raffleRepo, cfg.Reservation.TTL)
	purchaseService := services.NewPurchaseService(raffleRepo, ticketRepo, transactionRepo, userRepo, inventoryService, paymentService, notifier)
	drawService := services.NewDrawService(drawRepo, raffleRepo, ticketRepo, notifier)

	// Sold-out raffles with auto draw enabled trigger the draw engine from
	// the purchase path
	purchaseService.SetDrawTrigger(drawService)

	// Start the reservation sweeper
	sweeper := services.NewReservationSweeper(inventoryService, cfg.Reservation.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(userService, sessionStore)
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, sessionStore)
	raffleHandler := handlers.NewRaffleHandler(raffleService, inventoryService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	drawHandler := handlers.NewDrawHandler(drawService)
	adminHandler := handlers.NewAdminHandler(raffleService, userService)

	// Initialize router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(authMiddleware.LoadUser)

	r.Route("/api", func(r chi.Router) {
		// Authentication
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware).Post("/register", authHandler.Register)
			r.With(loginLimiter.Middleware).Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		// Public raffle endpoints
		r.Get("/raffles", raffleHandler.List)
		r.Get("/raffles/{id}", raffleHandler.Get)
		r.Get("/raffles/{id}/availability", raffleHandler.Availability)
		r.Get("/raffles/{id}/draws", drawHandler.ListByRaffle)
		r.Get("/draws/{id}", drawHandler.Get)
		r.Get("/draws/{id}/audit", drawHandler.Audit)

		// Creator endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			r.Post("/raffles", raffleHandler.Create)
			r.Put("/raffles/{id}", raffleHandler.Update)
			r.Delete("/raffles/{id}", raffleHandler.Delete)
			r.Post("/raffles/{id}/submit", raffleHandler.Submit)
			r.Post("/raffles/{id}/cancel", raffleHandler.Cancel)
			r.Post("/raffles/{id}/draws", drawHandler.Schedule)
			r.Post("/draws/{id}/cancel", drawHandler.Cancel)

			r.Post("/purchases", purchaseHandler.Purchase)
			r.Get("/purchases", purchaseHandler.List)
			r.Get("/purchases/{id}", purchaseHandler.Get)
			r.Post("/purchases/{id}/refund", purchaseHandler.Refund)

			r.Post("/wallet/deposit", purchaseHandler.Deposit)
			r.Post("/wallet/withdraw", purchaseHandler.Withdraw)
		})

		// Gateway webhook endpoints. In production these are authenticated by
		// gateway signature instead of a user session.
		r.Post("/purchases/{id}/confirm", purchaseHandler.Confirm)
		r.Post("/purchases/{id}/fail", purchaseHandler.Fail)

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAdmin)

			r.Post("/admin/raffles/{id}/approve", adminHandler.ApproveRaffle)
			r.Post("/admin/raffles/{id}/reject", adminHandler.RejectRaffle)
			r.Post("/admin/raffles/{id}/feature", adminHandler.ToggleFeatured)
			r.Post("/admin/raffles/{id}/complete", adminHandler.CompleteRaffle)
			r.Post("/admin/users/{id}/verify", adminHandler.VerifyUser)
			r.Post("/draws/{id}/execute", drawHandler.Execute)
			r.Post("/draws/{id}/verify", drawHandler.Verify)
		})
	})

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := server.Close(); err != nil {
		log.Printf("Server close error: %v", err)
	}
}
