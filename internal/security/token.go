package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"shopapi/internal/domain/model"
)

// トークン種別。シークレットと1対1で対応する。
type TokenUse string

const (
	TokenUseAccess        TokenUse = "access"
	TokenUseRefresh       TokenUse = "refresh"
	TokenUseEmailVerify   TokenUse = "verify_email"
	TokenUsePasswordReset TokenUse = "password_reset"
)

var (
	//署名は正しいが期限切れ
	ErrTokenExpired = errors.New("token expired")
	//署名不正・種別不一致など
	ErrTokenInvalid = errors.New("token invalid")
	//JWTの形をしていない
	ErrTokenMalformed = errors.New("token malformed")
)

// TokenConfigは種別ごとに独立したシークレット+TTLのペアを持つ。
// 1種別のシークレットが漏れても他の種別は偽造できない。
type TokenConfig struct {
	AccessSecret string
	AccessTTL    time.Duration

	RefreshSecret string
	RefreshTTL    time.Duration

	EmailVerifySecret string
	EmailVerifyTTL    time.Duration

	PasswordResetSecret string
	PasswordResetTTL    time.Duration
}

// TokenClaimsはJWTに入れる内容。
// verify-email / password-reset系はuser_idとtoken_useだけを持つ。
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   int64              `json:"user_id"`
	TokenUse TokenUse           `json:"token_use"`
	Role     model.Role         `json:"role,omitempty"`
	Verify   model.VerifyStatus `json:"verify,omitempty"`
	IsActive bool               `json:"is_active"`
}

// 発行と検証をまとめたもの。main.goでnewしてusecaseとmiddlewareに注入する。
type TokenManager struct {
	cfg TokenConfig
}

func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{cfg: cfg}
}

// SignAccessは短命のアクセストークンを発行する。
func (m *TokenManager) SignAccess(user *model.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.cfg.AccessTTL)
	signed, err := m.sign(TokenUseAccess, m.cfg.AccessSecret, user.ID, user.Role, user.Verify, user.IsActive, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// SignRefreshはリフレッシュトークンを発行する。
// expiresAtは呼び出し側が渡す。rotation時に旧トークンの期限を
// そのまま引き継ぐため（セッション寿命を延ばさない）。
func (m *TokenManager) SignRefresh(user *model.User, expiresAt time.Time) (string, error) {
	return m.sign(TokenUseRefresh, m.cfg.RefreshSecret, user.ID, user.Role, user.Verify, user.IsActive, expiresAt)
}

// RefreshExpiryは新規発行時（login/register）のrefresh期限。
func (m *TokenManager) RefreshExpiry() time.Time {
	return time.Now().Add(m.cfg.RefreshTTL)
}

// SignEmailVerifyはメール確認トークンを発行する。user_idと期限だけ持つ。
func (m *TokenManager) SignEmailVerify(userID int64) (string, error) {
	expiresAt := time.Now().Add(m.cfg.EmailVerifyTTL)
	return m.sign(TokenUseEmailVerify, m.cfg.EmailVerifySecret, userID, "", "", false, expiresAt)
}

// SignPasswordResetはパスワード再設定トークンを発行する。user_idと期限だけ持つ。
func (m *TokenManager) SignPasswordReset(userID int64) (string, error) {
	expiresAt := time.Now().Add(m.cfg.PasswordResetTTL)
	return m.sign(TokenUsePasswordReset, m.cfg.PasswordResetSecret, userID, "", "", false, expiresAt)
}

func (m *TokenManager) VerifyAccess(token string) (*TokenClaims, error) {
	return m.verify(token, TokenUseAccess, m.cfg.AccessSecret)
}

func (m *TokenManager) VerifyRefresh(token string) (*TokenClaims, error) {
	return m.verify(token, TokenUseRefresh, m.cfg.RefreshSecret)
}

func (m *TokenManager) VerifyEmailVerify(token string) (*TokenClaims, error) {
	return m.verify(token, TokenUseEmailVerify, m.cfg.EmailVerifySecret)
}

func (m *TokenManager) VerifyPasswordReset(token string) (*TokenClaims, error) {
	return m.verify(token, TokenUsePasswordReset, m.cfg.PasswordResetSecret)
}

func (m *TokenManager) sign(use TokenUse, secret string, userID int64, role model.Role, verify model.VerifyStatus, active bool, expiresAt time.Time) (string, error) {
	now := time.Now()

	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti。同じ内容を同じ秒に署名しても別のトークン文字列になる
			// （refreshはtoken文字列のunique制約で保存するため）
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   userID,
		TokenUse: use,
		Role:     role,
		Verify:   verify,
		IsActive: active,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

func (m *TokenManager) verify(tokenString string, use TokenUse, secret string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	//シークレットだけでなくtoken_useでも種別を縛る
	if claims.TokenUse != use {
		return nil, ErrTokenInvalid
	}
	if claims.UserID <= 0 {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
