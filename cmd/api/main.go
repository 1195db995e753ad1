package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-bookstore/internal/core/auth"
	"go-gin-bookstore/internal/core/cache"
	"go-gin-bookstore/internal/core/config"
	"go-gin-bookstore/internal/core/database"
	"go-gin-bookstore/internal/core/logger"
	"go-gin-bookstore/internal/core/server"
	"go-gin-bookstore/internal/domain"
	"go-gin-bookstore/internal/repo"
	"go-gin-bookstore/internal/service"
	"go-gin-bookstore/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Book{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 密钥/算法配置错误是致命的，不留到请求期
	jwter, err := auth.New(
		cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Algorithm,
		time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute,
	)
	if err != nil {
		log.Fatal("jwt init", zap.Error(err))
	}

	userRepo := repo.NewUserRepo(db)
	bookRepo := repo.NewBookRepo(db)
	authSvc := service.NewAuthService(userRepo, jwter)
	bookSvc := service.NewBookService(bookRepo)

	var bookCache *cache.Cache
	if cfg.Redis.Addr != "" {
		bookCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	r := router.NewAPIEngine(log, router.Deps{
		Auth:        authSvc,
		Books:       bookSvc,
		Cache:       bookCache,
		UploadDir:   cfg.Upload.Dir,
		MaxUploadMB: cfg.Upload.MaxSizeMB,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	log.Info("bookstore api starting", zap.String("addr", addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("bookstore api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("bookstore api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
