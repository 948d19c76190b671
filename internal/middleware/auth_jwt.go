package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"shopapi/internal/security"
)

// 検証済みclaimsは種別ごとに別キーで保存する。
// downstreamのhandlerがaccessとrefreshを取り違えないようにするため。
const (
	CtxAccessClaimsKey        = "access_claims"         // *security.TokenClaims
	CtxRefreshClaimsKey       = "refresh_claims"        // *security.TokenClaims
	CtxEmailVerifyClaimsKey   = "email_verify_claims"   // *security.TokenClaims
	CtxPasswordResetClaimsKey = "password_reset_claims" // *security.TokenClaims
	CtxRefreshTokenKey        = "refresh_token_raw"     // string
)

// bearerAuth用。accessトークンを検証してclaimsをcontextに入れる
func RequireAccessToken(tokens *security.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing token"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("malformed token"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing token"))
			}

			claims, err := tokens.VerifyAccess(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON(tokenErrorMessage(err)))
			}

			c.Set(CtxAccessClaimsKey, claims)
			return next(c)
		}
	}
}

// refresh用。bodyのrefresh_tokenを検証してclaimsと生tokenをcontextに入れる。
// 失効ストアの照合はここではやらない（usecaseが削除と同時に行う）。
func RequireRefreshToken(tokens *security.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b := readAndRestoreBody(c)

			var body struct {
				RefreshToken string `json:"refresh_token"`
			}
			_ = json.Unmarshal(b, &body)

			rawToken := strings.TrimSpace(body.RefreshToken)
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing token"))
			}

			claims, err := tokens.VerifyRefresh(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON(tokenErrorMessage(err)))
			}

			c.Set(CtxRefreshClaimsKey, claims)
			c.Set(CtxRefreshTokenKey, rawToken)
			return next(c)
		}
	}
}

// メール確認用。bodyのtokenを検証してclaimsをcontextに入れる
func RequireEmailVerifyToken(tokens *security.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b := readAndRestoreBody(c)

			var body struct {
				Token string `json:"token"`
			}
			_ = json.Unmarshal(b, &body)

			rawToken := strings.TrimSpace(body.Token)
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing token"))
			}

			claims, err := tokens.VerifyEmailVerify(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON(tokenErrorMessage(err)))
			}

			c.Set(CtxEmailVerifyClaimsKey, claims)
			return next(c)
		}
	}
}

// パスワード再設定用。bodyのtokenを検証してclaimsをcontextに入れる
func RequirePasswordResetToken(tokens *security.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b := readAndRestoreBody(c)

			var body struct {
				Token string `json:"token"`
			}
			_ = json.Unmarshal(b, &body)

			rawToken := strings.TrimSpace(body.Token)
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing token"))
			}

			claims, err := tokens.VerifyPasswordReset(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON(tokenErrorMessage(err)))
			}

			c.Set(CtxPasswordResetClaimsKey, claims)
			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// 401で返す安定メッセージに変換
func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, security.ErrTokenMalformed):
		return "malformed token"
	case errors.Is(err, security.ErrTokenExpired):
		return "token expired"
	default:
		return "invalid token"
	}
}

// bodyを読み切って戻す。handlerが再度bindしても読めるようにする
func readAndRestoreBody(c echo.Context) []byte {
	if c.Request().Body == nil {
		return nil
	}
	b, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(b))
	return b
}

// handler側からの取り出し。無ければnil
func AccessClaimsFromContext(c echo.Context) *security.TokenClaims {
	claims, _ := c.Get(CtxAccessClaimsKey).(*security.TokenClaims)
	return claims
}

func RefreshClaimsFromContext(c echo.Context) *security.TokenClaims {
	claims, _ := c.Get(CtxRefreshClaimsKey).(*security.TokenClaims)
	return claims
}

func EmailVerifyClaimsFromContext(c echo.Context) *security.TokenClaims {
	claims, _ := c.Get(CtxEmailVerifyClaimsKey).(*security.TokenClaims)
	return claims
}

func PasswordResetClaimsFromContext(c echo.Context) *security.TokenClaims {
	claims, _ := c.Get(CtxPasswordResetClaimsKey).(*security.TokenClaims)
	return claims
}

func RefreshTokenFromContext(c echo.Context) string {
	token, _ := c.Get(CtxRefreshTokenKey).(string)
	return token
}
