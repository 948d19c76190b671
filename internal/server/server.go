package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"shopapi/internal/config"
	"shopapi/internal/middleware"
)

// HTTPサーバー本体。DB・Redisへの参照はhealthzで使う
type Server struct {
	cfg    config.Config
	logger *slog.Logger
	e      *echo.Echo
	db     *gorm.DB
	rdb    *redis.Client
}

// DI
func New(cfg config.Config, logger *slog.Logger, db *gorm.DB, rdb *redis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	s := &Server{
		cfg:    cfg,
		logger: logger,
		e:      e,
		db:     db,
		rdb:    rdb,
	}

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Echoは配下のルート登録用
func (s *Server) Echo() *echo.Echo {
	return s.e
}

// Startはリッスンを開始し、ctxキャンセルでgracefulに停止する
func (s *Server) Start(ctx context.Context) error {
	addr := ":" + s.cfg.Port

	go func() {
		s.logger.Info("api server listening", slog.String("addr", addr))
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server run failed", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()
	s.logger.Info("shutting down api server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.e.Shutdown(shutdownCtx)
}

// CloseはDBとRedisの接続を閉じる
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else if closeErr := sqlDB.Close(); closeErr != nil {
			if firstErr == nil {
				firstErr = closeErr
			}
		}
	}
	return firstErr
}

// DB・Redisに届くかまで見る
func (s *Server) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.rdb == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "error"})
	}

	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "error"})
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
