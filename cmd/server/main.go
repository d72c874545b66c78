package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/event-ticketing/internal/clock"      // Injectable time source
	"github.com/iliyamo/event-ticketing/internal/config"     // Internal config loader
	"github.com/iliyamo/event-ticketing/internal/database"   // MySQL connection pool
	"github.com/iliyamo/event-ticketing/internal/handler"    // HTTP handlers
	"github.com/iliyamo/event-ticketing/internal/middleware" // Rate limit and cache middleware
	"github.com/iliyamo/event-ticketing/internal/queue"      // Ticket-issued consumer
	"github.com/iliyamo/event-ticketing/internal/repository" // Data access layer
	"github.com/iliyamo/event-ticketing/internal/router"     // Route registration
	"github.com/iliyamo/event-ticketing/internal/service"    // Ticket issuance service
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; middleware degrades to pass-through

	performerRepo := repository.NewPerformerRepo(db)
	eventRepo := repository.NewEventRepo(db)
	ticketRepo := repository.NewTicketRepo(db)

	store := repository.NewIssuanceStore(db, eventRepo, ticketRepo)
	ticketSvc := service.NewTicketService(store, clock.NewSystem(), service.NewRabbitPublisher())

	performerHandler := handler.NewPerformerHandler(performerRepo)
	eventHandler := handler.NewEventHandler(eventRepo, ticketRepo)
	ticketHandler := handler.NewTicketHandler(ticketRepo, ticketSvc)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	browseCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterPerformers(e, performerHandler, browseCache)
	router.RegisterEvents(e, eventHandler, browseCache)
	router.RegisterTickets(e, ticketHandler)

	// Drain ticket.issued notifications in the background. The consumer
	// reconnects on broker failures and never takes the server down.
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket-consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
