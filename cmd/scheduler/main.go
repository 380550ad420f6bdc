package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/coopsoc/lending-engine/internal/config"
	"github.com/coopsoc/lending-engine/internal/service"
	"github.com/coopsoc/lending-engine/internal/store"
)

func main() {
	log.Println("Starting lending scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	documentStore, redisClient, cleanup, err := initStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}
	defer cleanup()

	memberRepo := store.NewMemberRepository(documentStore, cfg.Store.MembersKey)
	chequeRepo := store.NewChequeRepository(documentStore, cfg.Store.ChequesKey)
	lendingService := service.NewLendingService(memberRepo, chequeRepo, redisClient, cfg)

	// Initialize cron scheduler in the society's timezone
	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.GetSchedulerLocation()))

	if _, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		runOverdueReport(lendingService)
	}); err != nil {
		log.Fatalf("Error scheduling overdue report job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

// runOverdueReport scans approved loans for installments past due and
// logs a summary. The member document is never written by this job;
// per-loan counts land in the redis overdue cache for the display
// layer.
func runOverdueReport(svc *service.LendingService) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := svc.OverdueReport(ctx, time.Now())
	if err != nil {
		log.Printf("Overdue report failed: %v", err)
		return
	}

	if len(report) == 0 {
		log.Println("Overdue report: no overdue installments")
		return
	}

	for _, entry := range report {
		log.Printf("Overdue report: loan %s (%s) has %d overdue installment(s)",
			entry.LoanID, entry.MemberName, entry.OverdueCount)
	}
}

func initStore(cfg *config.Config) (store.DocumentStore, *redis.Client, func(), error) {
	// The redis client is always created here: even with the postgres
	// document store, the overdue cache lives in redis.
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if cfg.Store.Driver == config.StoreDriverPostgres {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			client.Close()
			return nil, nil, nil, err
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

		pgStore, err := store.NewPostgresStore(db)
		if err != nil {
			db.Close()
			client.Close()
			return nil, nil, nil, err
		}
		return pgStore, client, func() { db.Close(); client.Close() }, nil
	}

	return store.NewRedisStore(client), client, func() { client.Close() }, nil
}
