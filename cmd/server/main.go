package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"parkease/internal/api"
	"parkease/internal/auth"
	"parkease/internal/db"
	"parkease/internal/repository"
	"parkease/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	lotRepo := repository.NewLotRepository(database)
	reservationRepo := repository.NewReservationRepository(database)
	jobRepo := repository.NewJobRepository(database)

	adminUser := envOr("ADMIN_USERNAME", "admin")
	adminEmail := envOr("ADMIN_EMAIL", "admin@parkease.local")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Fatal("ADMIN_PASSWORD not set")
	}
	if err := userRepo.EnsureAdmin(adminUser, adminEmail, adminPassword); err != nil {
		log.Fatalf("Failed to ensure admin account: %v", err)
	}

	sender := service.NewSenderService()
	authSvc := service.NewAuthService(userRepo)
	lotSvc := service.NewLotService(lotRepo)
	reservationSvc := service.NewReservationService(reservationRepo, lotRepo, sender)
	sweeper := service.NewSweeperService(jobRepo, sender, sweepMaxAge())

	authHandler := api.NewAuthHandler(authSvc)
	userHandler := api.NewUserHandler(reservationSvc, lotSvc, sweeper)
	adminHandler := api.NewAdminHandler(lotSvc, reservationSvc, sweeper, userRepo)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	// User endpoints (authenticated)
	user := r.PathPrefix("/api").Subrouter()
	user.Use(auth.Middleware)
	user.HandleFunc("/lots", userHandler.ListLots).Methods("GET")
	user.HandleFunc("/reservations", userHandler.Reserve).Methods("POST")
	user.HandleFunc("/reservations/{id}/occupy", userHandler.ConfirmOccupancy).Methods("POST")
	user.HandleFunc("/reservations/{id}/release", userHandler.Release).Methods("POST")
	user.HandleFunc("/history", userHandler.History).Methods("GET")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(auth.Middleware, auth.RequireAdmin)
	admin.HandleFunc("/lots", adminHandler.CreateLot).Methods("POST")
	admin.HandleFunc("/lots/{id}", adminHandler.UpdateLot).Methods("PUT")
	admin.HandleFunc("/lots/{id}", adminHandler.DeleteLot).Methods("DELETE")
	admin.HandleFunc("/lots/{id}/spots", adminHandler.ListSpots).Methods("GET")
	admin.HandleFunc("/lots/{id}/history", adminHandler.LotHistory).Methods("GET")
	admin.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{id}/history", adminHandler.UserHistory).Methods("GET")
	admin.HandleFunc("/summary", adminHandler.Summary).Methods("GET")

	// Scheduled sweep alongside the opportunistic ones on dashboard loads.
	c := cron.New()
	if _, err := c.AddFunc(envOr("SWEEP_SCHEDULE", "@every 15m"), func() {
		closed, err := sweeper.Sweep()
		if err != nil {
			log.Printf("Scheduled sweep failed: %v", err)
			return
		}
		if closed > 0 {
			log.Printf("Scheduled sweep closed %d reservation(s)", closed)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{envOr("CORS_ORIGIN", "*")}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := envOr("PORT", "8080")
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, cors(r))))
}

func envOr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func sweepMaxAge() time.Duration {
	raw := os.Getenv("SWEEP_MAX_AGE_HOURS")
	if raw == "" {
		return service.DefaultMaxAge
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		log.Printf("Invalid SWEEP_MAX_AGE_HOURS %q, using default", raw)
		return service.DefaultMaxAge
	}
	return time.Duration(hours) * time.Hour
}
