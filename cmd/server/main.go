package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/database"
	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/report"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/router"
	"github.com/iliyamo/room-reservation/internal/rpc"
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	reportRepo := repository.NewReportRepo(db)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	roomHandler := handler.NewRoomHandler(roomRepo)
	reservationHandler := handler.NewReservationHandler(reservationRepo, roomRepo)
	rpcHandler := rpc.NewHandler(report.NewGenerator(reportRepo, roomRepo))

	// Redis backs the rate limiter and the read cache; both degrade to
	// pass-through when the client is nil or their config is disabled.
	rdb := config.NewRedisClient()
	rateLimiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)
	responseCache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(rateLimiter)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterRooms(e, roomHandler, cfg.JWTSecret, responseCache)
	router.RegisterReservations(e, reservationHandler, cfg.JWTSecret)
	router.RegisterRPC(e, rpcHandler, cfg.JWTSecret)

	// Background consumer writing reservation events to logs/reservations.log.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
