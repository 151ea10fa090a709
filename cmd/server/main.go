package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Dias221467/Internship_Manager/internal/config"
	"github.com/Dias221467/Internship_Manager/internal/database"
	"github.com/Dias221467/Internship_Manager/internal/handlers"
	"github.com/Dias221467/Internship_Manager/internal/hub"
	"github.com/Dias221467/Internship_Manager/internal/repository"
	cronjobs "github.com/Dias221467/Internship_Manager/internal/scheduler"
	"github.com/Dias221467/Internship_Manager/internal/services"
	"github.com/Dias221467/Internship_Manager/pkg/logger"
	"github.com/Dias221467/Internship_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	notificationRepo := repository.NewNotificationRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := notificationRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	// --- Push hub ---
	notificationHub := hub.NewHub()
	go notificationHub.Heartbeat(30 * time.Second)

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo, notificationHub)

	// --- Handlers ---
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	hubHandler := handlers.NewNotificationHubHandler(notificationHub, cfg.JWTSecret)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Notification routes (authenticated users, scoped to the caller)
	protectedRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedRoutes.HandleFunc("", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	protectedRoutes.HandleFunc("/unread", notificationHandler.GetUnreadNotificationsHandler).Methods("GET")
	protectedRoutes.HandleFunc("/unread/count", notificationHandler.GetUnreadCountHandler).Methods("GET")
	protectedRoutes.HandleFunc("/read-all", notificationHandler.MarkAllAsReadHandler).Methods("PUT")
	protectedRoutes.HandleFunc("/{id}", notificationHandler.GetNotificationHandler).Methods("GET")
	protectedRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("PUT")
	protectedRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Producer route (only admins and HR create notifications for others)
	producerRoutes := router.PathPrefix("/notifications").Subrouter()
	producerRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	producerRoutes.Use(middleware.RequireRole("admin", "hr"))
	producerRoutes.HandleFunc("", notificationHandler.CreateNotificationHandler).Methods("POST")

	// Push channel endpoint (token as query parameter)
	router.HandleFunc("/notificationHub", hubHandler.ServeWS).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Retention sweep
	cronjobs.StartNotificationCronJobs(notificationService, cfg.RetentionDays)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
