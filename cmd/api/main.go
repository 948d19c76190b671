package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"shopapi/internal/config"
	"shopapi/internal/domain/model"
	"shopapi/internal/handler"
	"shopapi/internal/infra/db"
	infraRepo "shopapi/internal/infra/repository"
	"shopapi/internal/middleware"
	"shopapi/internal/notify"
	"shopapi/internal/security"
	"shopapi/internal/server"
	"shopapi/internal/usecase"
	"shopapi/internal/validator"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Error("db connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.Category{},
		&model.Brand{},
		&model.Cart{},
		&model.CartItem{},
		&model.Address{},
		&model.AuditLog{},
	); err != nil {
		logger.Error("auto migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	//Redis（レート制限用）
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("redis connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	brandRepo := infraRepo.NewBrandGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//トークン発行・検証（種別ごとに独立シークレット）
	tokens := security.NewTokenManager(security.TokenConfig{
		AccessSecret:        cfg.AccessTokenSecret,
		AccessTTL:           cfg.AccessTokenTTL,
		RefreshSecret:       cfg.RefreshTokenSecret,
		RefreshTTL:          cfg.RefreshTokenTTL,
		EmailVerifySecret:   cfg.VerifyEmailTokenSecret,
		EmailVerifyTTL:      cfg.VerifyEmailTokenTTL,
		PasswordResetSecret: cfg.ForgotPasswordTokenSecret,
		PasswordResetTTL:    cfg.ForgotPasswordTokenTTL,
	})
	hasher := security.NewPasswordHasher(cfg.PasswordSalt)

	mailer := notify.NewEmailNotifier(cfg, logger)
	authValidator := validator.NewAuthValidator(userRepo)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, tokens, hasher, mailer, logger, authValidator)
	productUC := usecase.NewProductUsecase(productRepo, auditRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, auditRepo)
	brandUC := usecase.NewBrandUsecase(brandRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, rtRepo, auditRepo)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(authUC),
		Product:       handler.NewProductHandler(productUC),
		Category:      handler.NewCategoryHandler(categoryUC),
		Brand:         handler.NewBrandHandler(brandUC),
		Cart:          handler.NewCartHandler(cartUC),
		Address:       handler.NewAddressHandler(addressUC),
		AdminProduct:  handler.NewAdminProductHandler(productUC),
		AdminCategory: handler.NewAdminCategoryHandler(categoryUC),
		AdminBrand:    handler.NewAdminBrandHandler(brandUC),
		AdminUser:     handler.NewAdminUserHandler(adminUserUC),
		AdminAuditLog: handler.NewAdminAuditLogHandler(auditUC),
	}

	limiter := middleware.NewRedisLimiter(rdb)

	//Server起動
	srv := server.New(cfg, logger, gormDB, rdb)
	srv.RegisterRoutes(handlers, tokens, limiter)

	//初期管理者
	if err := srv.SeedAdminUser(ctx, hasher); err != nil {
		logger.Error("seed admin failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(ctx); err != nil {
		logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	if err := srv.Close(); err != nil {
		logger.Error("close resources failed", slog.String("error", err.Error()))
	}
}
