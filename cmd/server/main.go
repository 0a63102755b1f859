package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/etorin/event-seat-booking/internal/clock"
	"github.com/etorin/event-seat-booking/internal/config"
	"github.com/etorin/event-seat-booking/internal/database"
	"github.com/etorin/event-seat-booking/internal/handler"
	"github.com/etorin/event-seat-booking/internal/lock"
	"github.com/etorin/event-seat-booking/internal/middleware"
	"github.com/etorin/event-seat-booking/internal/monitoring"
	"github.com/etorin/event-seat-booking/internal/queue"
	"github.com/etorin/event-seat-booking/internal/repository"
	"github.com/etorin/event-seat-booking/internal/router"
	"github.com/etorin/event-seat-booking/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	venueRepo := repository.NewVenueRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	eventRepo := repository.NewEventRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	if cfg.SeedDemo {
		if err := seedDemo(ctx, venueRepo, eventRepo); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
	}

	clk := clock.NewSystem()
	locks := lock.NewManager(bookingRepo, cfg.LockTTL, clk)
	reaper := lock.NewReaper(locks, cfg.ReaperInterval, clk, bookingRepo, cfg.PendingTTL)
	go reaper.Run(ctx)
	go trackLiveLocks(ctx, locks)

	gateway := service.NewSimulatedGateway(cfg.DeclineRate, cfg.GatewayLatency)
	vouchers := service.NewVoucherIssuer(cfg.VoucherSecret, clk)
	publisher := queue.NewPublisher(cfg.AMQPURL)
	go queue.StartBookingConsumer(cfg.AMQPURL)

	availability := service.NewAvailability(eventRepo, seatRepo, bookingRepo, locks)
	coordinator := service.NewCoordinator(eventRepo, seatRepo, bookingRepo, locks)
	settlement := service.NewSettlement(bookingRepo, paymentRepo, eventRepo, gateway, vouchers, publisher)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: response cache and rate limiting disabled")
	}
	cacheMW := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterBrowse(e, handler.NewBrowseHandler(venueRepo, seatRepo, eventRepo), cacheMW)
	router.RegisterBooking(e,
		handler.NewSeatHandler(availability, locks, eventRepo, seatRepo),
		handler.NewBookingHandler(coordinator, bookingRepo, paymentRepo),
		handler.NewPaymentHandler(settlement),
		limitMW,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, lock_ttl=%s, reaper=%s)", addr, cfg.Env, cfg.LockTTL, cfg.ReaperInterval)

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// trackLiveLocks refreshes the live lock gauge until ctx is cancelled.
func trackLiveLocks(ctx context.Context, locks *lock.Manager) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			monitoring.SetLiveLocks(locks.LiveCount())
		}
	}
}
