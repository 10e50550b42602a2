package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/righthome/cosmos-api/internal/api"
	"github.com/righthome/cosmos-api/internal/core/service"
	"github.com/righthome/cosmos-api/internal/core/token"
	"github.com/righthome/cosmos-api/internal/infrastructure/config"
	"github.com/righthome/cosmos-api/internal/infrastructure/db/mongo"
	"github.com/righthome/cosmos-api/internal/infrastructure/db/redis"
	"github.com/righthome/cosmos-api/internal/infrastructure/mail"
	"github.com/righthome/cosmos-api/internal/infrastructure/storage"
	"github.com/righthome/cosmos-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           Right Home Cosmos API
// @version         1.0
// @description     Accounts, consultations and project gallery for the Right Home site.
// @BasePath        /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic("config: " + err.Error())
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
	})

	db, disconnect, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	store, err := storage.New(ctx, storage.Config{
		Region:        cfg.S3.Region,
		Bucket:        cfg.S3.Bucket,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		BaseEndpoint:  cfg.S3.BaseEndpoint,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("object storage init failed")
	}

	mailer, err := mail.New(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("smtp client init failed")
	}

	accountRepo := mongo.NewAccountRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}
	consultationRepo := mongo.NewConsultationRepository(db)
	galleryRepo := mongo.NewGalleryRepository(db)

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)
	throttle := redis.NewLoginThrottle(rdb)

	accountService := service.NewAccountService(accountRepo, mailer, issuer, throttle, cfg.FrontendURL, log)
	adminService := service.NewAdminService(accountRepo, consultationRepo, log)
	consultationService := service.NewConsultationService(consultationRepo, log)
	galleryService := service.NewGalleryService(galleryRepo, store, log)

	e := api.NewRouter(api.Deps{
		Accounts:      accountService,
		Admin:         adminService,
		Consultations: consultationService,
		Gallery:       galleryService,
		AccountRepo:   accountRepo,
		Tokens:        issuer,
		Mongo:         db,
		Redis:         rdb,
		FrontendURL:   cfg.FrontendURL,
		SecureCookies: cfg.Production(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
