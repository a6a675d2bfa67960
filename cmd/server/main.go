package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/auth-account-service/internal/audit"
	"github.com/iliyamo/auth-account-service/internal/config"
	"github.com/iliyamo/auth-account-service/internal/database"
	"github.com/iliyamo/auth-account-service/internal/handler"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/router"
	"github.com/iliyamo/auth-account-service/internal/service"
)

func main() {
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

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	resets := repository.NewResetRepo(db)
	audits := repository.NewAuditRepo(db)

	recorder := audit.NewRecorder(audits, cfg.AMQPURL, 256)
	defer recorder.Close()

	authSvc := service.NewAuthService(cfg, users, sessions, resets, recorder)
	userSvc := service.NewUserService(users, sessions, recorder)
	adminSvc := service.NewAdminService(users, sessions, audits, recorder)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Redis is optional; without it the auth group runs unthrottled.
	rdb := config.NewRedisClient()
	rlCfg := config.LoadRateLimitConfig()

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, authSvc), rlCfg, rdb)
	router.RegisterUser(e, handler.NewUserHandler(cfg, userSvc, authSvc), cfg.AccessSecret, sessions)
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg, adminSvc), cfg.AccessSecret, sessions)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
