package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/coopsoc/lending-engine/internal/config"
	"github.com/coopsoc/lending-engine/internal/handler"
	"github.com/coopsoc/lending-engine/internal/service"
	"github.com/coopsoc/lending-engine/internal/store"
	"github.com/coopsoc/lending-engine/pkg/response"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the document store
	documentStore, redisClient, cleanup, err := initStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}
	defer cleanup()

	// Initialize repositories and service
	memberRepo := store.NewMemberRepository(documentStore, cfg.Store.MembersKey)
	chequeRepo := store.NewChequeRepository(documentStore, cfg.Store.ChequesKey)

	lendingService := service.NewLendingService(memberRepo, chequeRepo, redisClient, cfg)
	lendingHandler := handler.NewLendingHandler(lendingService)
	healthHandler := handler.NewHealthHandler(documentStore, cfg.GetHealthTimeout())

	// Setup routes
	router := setupRoutes(lendingHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	go func() {
		log.Printf("Server starting on %s (store driver: %s)", server.Addr, cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initStore(cfg *config.Config) (store.DocumentStore, *redis.Client, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

		pgStore, err := store.NewPostgresStore(db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return pgStore, nil, func() { db.Close() }, nil

	default:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return store.NewRedisStore(client), client, func() { client.Close() }, nil
	}
}

func setupRoutes(lendingHandler *handler.LendingHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware)

	// Health checks
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/members", lendingHandler.RegisterMember).Methods("POST")
	api.HandleFunc("/members", lendingHandler.ListMembers).Methods("GET")
	api.HandleFunc("/members/{memberId}/loans", lendingHandler.ApplyLoan).Methods("POST")

	api.HandleFunc("/loans", lendingHandler.ListLoans).Methods("GET")
	api.HandleFunc("/loans/{loanId}/approve", lendingHandler.ApproveLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}/reject", lendingHandler.RejectLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}/repayments/{index}/pay", lendingHandler.MarkInstallmentPaid).Methods("POST")
	api.HandleFunc("/loans/{loanId}/schedule", lendingHandler.GetSchedule).Methods("GET")
	api.HandleFunc("/loans/{loanId}/outstanding", lendingHandler.GetOutstanding).Methods("GET")

	api.HandleFunc("/cheques", lendingHandler.LogCheque).Methods("POST")
	api.HandleFunc("/cheques", lendingHandler.ListCheques).Methods("GET")

	return router
}
