package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）

	// トークン種別ごとに独立したシークレット
	AccessTokenSecret         string
	RefreshTokenSecret        string
	VerifyEmailTokenSecret    string
	ForgotPasswordTokenSecret string

	AccessTokenTTL         time.Duration // 15m
	RefreshTokenTTL        time.Duration // 168h
	VerifyEmailTokenTTL    time.Duration // 24h
	ForgotPasswordTokenTTL time.Duration // 30m

	PasswordSalt string // パスワードハッシュ用ソルト

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string // 空なら認証なし
	SMTPPassword string
	MailFrom     string // 送信元アドレス

	RedisAddr     string // レート制限用（localhost:6379）
	RedisPassword string // 空なら認証なし

	RateLimitMax    int           // ウィンドウ内の許容リクエスト数
	RateLimitWindow time.Duration // レート制限ウィンドウ（1m）

	AdminEmail    string // 初期管理者（空ならシードしない）
	AdminPassword string

	GoEnv     string // dev/prod
	APIDomain string // APIドメイン（cookieやCORSなどで使う）
	FEURL     string // フロントURL（メール内リンクで使う）
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}
	smtpPort, err := mustAtoi("SMTP_PORT")
	if err != nil {
		return Config{}, err
	}
	rateMax, err := mustAtoi("RATE_LIMIT_MAX")
	if err != nil {
		return Config{}, err
	}

	accessTTL, err := mustDuration("ACCESS_TOKEN_TTL")
	if err != nil {
		return Config{}, err
	}
	refreshTTL, err := mustDuration("REFRESH_TOKEN_TTL")
	if err != nil {
		return Config{}, err
	}
	verifyTTL, err := mustDuration("VERIFY_EMAIL_TOKEN_TTL")
	if err != nil {
		return Config{}, err
	}
	forgotTTL, err := mustDuration("FORGOT_PASSWORD_TOKEN_TTL")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := mustDuration("RATE_LIMIT_WINDOW")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		AccessTokenSecret:         os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:        os.Getenv("REFRESH_TOKEN_SECRET"),
		VerifyEmailTokenSecret:    os.Getenv("VERIFY_EMAIL_TOKEN_SECRET"),
		ForgotPasswordTokenSecret: os.Getenv("FORGOT_PASSWORD_TOKEN_SECRET"),

		AccessTokenTTL:         accessTTL,
		RefreshTokenTTL:        refreshTTL,
		VerifyEmailTokenTTL:    verifyTTL,
		ForgotPasswordTokenTTL: forgotTTL,

		PasswordSalt: os.Getenv("PASSWORD_SALT"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		RateLimitMax:    rateMax,
		RateLimitWindow: rateWindow,

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		GoEnv:     os.Getenv("GO_ENV"),
		APIDomain: os.Getenv("API_DOMAIN"),
		FEURL:     os.Getenv("FE_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.AccessTokenSecret == "" {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	if cfg.RefreshTokenSecret == "" {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	if cfg.VerifyEmailTokenSecret == "" {
		return Config{}, fmt.Errorf("VERIFY_EMAIL_TOKEN_SECRET is required")
	}
	if cfg.ForgotPasswordTokenSecret == "" {
		return Config{}, fmt.Errorf("FORGOT_PASSWORD_TOKEN_SECRET is required")
	}
	if cfg.PasswordSalt == "" {
		return Config{}, fmt.Errorf("PASSWORD_SALT is required")
	}
	if cfg.SMTPHost == "" {
		return Config{}, fmt.Errorf("SMTP_HOST is required")
	}
	if cfg.MailFrom == "" {
		return Config{}, fmt.Errorf("MAIL_FROM is required")
	}
	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.APIDomain == "" {
		return Config{}, fmt.Errorf("API_DOMAIN is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func mustDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration (e.g. 15m): %w", key, err)
	}
	return d, nil
}
