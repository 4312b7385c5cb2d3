package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/voyagehub/reservation-checkout/internal/config"
	"github.com/voyagehub/reservation-checkout/internal/database"
	"github.com/voyagehub/reservation-checkout/internal/handler"
	"github.com/voyagehub/reservation-checkout/internal/middleware"
	"github.com/voyagehub/reservation-checkout/internal/orderdesk"
	"github.com/voyagehub/reservation-checkout/internal/queue"
	"github.com/voyagehub/reservation-checkout/internal/repository"
	"github.com/voyagehub/reservation-checkout/internal/router"
	"github.com/voyagehub/reservation-checkout/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()
	syncCfg := config.LoadSyncConfig()
	checkoutCfg := config.LoadCheckoutConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; summary cache and rate limiting disabled")
	}

	// Repositories
	reservations := repository.NewReservationRepo(db)
	statuses := repository.NewStatusRepo(db)
	travelers := repository.NewTravelerRepo(db)
	rooms := repository.NewRoomAssignmentRepo(db)

	// Core services
	notifier := service.NewQueueNotifier()
	machine := service.NewStatusMachine(statuses, reservations)
	reconciler := service.NewTravelerReconciler(travelers, reservations)
	validator := service.NewRoomValidator()
	desk := orderdesk.New(syncCfg.BaseURL, syncCfg.RequestTimeout)
	coordinator := service.NewSyncCoordinator(desk, reservations, reservations, notifier, syncCfg)
	gate := service.NewCheckoutGate(reconciler, travelers, rooms, validator, machine, reservations, notifier, checkoutCfg)

	// Background consumer turning notification events into log lines
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	identity := middleware.BearerIdentity(cfg.JWTSecret)
	summaryCache := middleware.NewSummaryCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewFixedWindowLimiter(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterReservations(e,
		handler.NewReservationHandler(reservations, statuses, machine),
		handler.NewTravelerHandler(travelers, reconciler),
		handler.NewRoomHandler(rooms, validator),
		handler.NewCheckoutHandler(gate),
		identity, summaryCache,
	)
	router.RegisterSync(e, handler.NewSyncHandler(coordinator), identity, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
