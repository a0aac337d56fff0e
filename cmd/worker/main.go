package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gorm.io/gorm"

	"societypay_echo/internal/services"
	"societypay_echo/internal/tasks"
)

const (
	defaultSweepRule = "FREQ=HOURLY"
	defaultStaleTTL  = 24 * time.Hour
)

// The worker sweeps abandoned gateway sessions: pending transactions older
// than the TTL are marked expired so dashboards and audits can tell an
// abandoned checkout from one that is still in flight.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	staleTTL := defaultStaleTTL
	if raw := os.Getenv("TRANSACTION_STALE_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid TRANSACTION_STALE_TTL: %v", err)
		}
		staleTTL = parsed
	}

	ruleStr := os.Getenv("SWEEP_RRULE")
	if ruleStr == "" {
		ruleStr = defaultSweepRule
	}
	rule, err := rrule.StrToRRule(ruleStr)
	if err != nil {
		log.Fatalf("Invalid SWEEP_RRULE %q: %v", ruleStr, err)
	}
	rule.DTStart(time.Now().UTC())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down worker...")
		cancel()
	}()

	log.Printf("Worker started. Sweep cadence %q, stale TTL %s", ruleStr, staleTTL)

	// Run once on start, then follow the recurrence rule.
	sweep(db, staleTTL)

	for {
		next := rule.After(time.Now().UTC(), false)
		if next.IsZero() {
			log.Println("Recurrence rule has no further occurrences, stopping")
			return
		}
		select {
		case <-time.After(time.Until(next)):
			sweep(db, staleTTL)
		case <-ctx.Done():
			return
		}
	}
}

func sweep(db *gorm.DB, staleTTL time.Duration) {
	expired, err := tasks.ExpireStaleTransactions(db, staleTTL)
	if err != nil {
		log.Printf("Error expiring stale transactions: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Expired %d stale pending transactions", expired)
	}
}
