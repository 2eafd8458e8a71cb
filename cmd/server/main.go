package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"ticket-ledger/internal/config"
	"ticket-ledger/internal/database"
	"ticket-ledger/internal/handler"
	"ticket-ledger/internal/ledger"
	"ticket-ledger/internal/payout"
	"ticket-ledger/internal/queue"
	"ticket-ledger/internal/repository"
	"ticket-ledger/internal/router"
)

func main() {
	// Load .env when present; real deployments set the environment
	// directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	// Restore the ledger from its durable store before serving.
	led := ledger.New(repository.NewLedgerStore(db), payout.NewBankTransfer())
	if err := led.Load(context.Background()); err != nil {
		log.Fatalf("restore ledger: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	// The notification consumer keeps the audit log current; it
	// reconnects on its own and never takes the server down.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, cfg,
		handler.NewAuthHandler(cfg, repository.NewAccountRepo(db)),
		handler.NewLedgerHandler(led),
		rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
