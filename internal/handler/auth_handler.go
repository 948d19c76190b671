package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"shopapi/internal/config"
	"shopapi/internal/middleware"
	"shopapi/internal/security"
	"shopapi/internal/usecase"
)

// /auth のHTTP
type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DI
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// tokens-onlyのフロー（refresh / reset-password）のdata部
type tokenData struct {
	Tokens usecase.TokenPairDTO `json:"tokens"`
}

type userData struct {
	User usecase.UserDTO `json:"user"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// /auth配下を登録。login/register/forgot-passwordは流量制限をかける
func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, tokens *security.TokenManager, limiter middleware.Limiter) {
	g := e.Group("/auth")

	g.POST("/register", h.Register, middleware.RateLimit(limiter, "register", cfg.RateLimitMax, cfg.RateLimitWindow))
	g.POST("/login", h.Login, middleware.RateLimit(limiter, "login", cfg.RateLimitMax, cfg.RateLimitWindow))
	g.POST("/forgot-password", h.ForgotPassword, middleware.RateLimit(limiter, "forgot-password", cfg.RateLimitMax, cfg.RateLimitWindow))

	g.POST("/logout", h.Logout, middleware.RequireRefreshToken(tokens))
	g.POST("/refresh", h.Refresh, middleware.RequireRefreshToken(tokens))
	g.POST("/verify-email", h.VerifyEmail, middleware.RequireEmailVerifyToken(tokens))
	g.POST("/reset-password", h.ResetPassword, middleware.RequirePasswordResetToken(tokens))

	g.POST("/resend-verify-email", h.ResendVerifyEmail, middleware.RequireAccessToken(tokens))
	g.GET("/me", h.Me, middleware.RequireAccessToken(tokens))
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.AuthRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	}

	out, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusCreated, "registered", out)
}

// LoginはPOST /auth/loginのハンドラ
func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	}

	out, err := h.uc.Login(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "logged in", out)
}

// LogoutはPOST /auth/logoutのハンドラ。
// refreshレコードを消す。既に消えていても成功で返す
func (h *AuthHandler) Logout(c echo.Context) error {
	refreshToken := middleware.RefreshTokenFromContext(c)

	if err := h.uc.Logout(c.Request().Context(), refreshToken); err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "logged out", nil)
}

// RefreshはPOST /auth/refreshのハンドラ。
// middlewareが署名・期限を検証済み。ストア照合はusecase側
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := middleware.RefreshTokenFromContext(c)
	claims := middleware.RefreshClaimsFromContext(c)
	if refreshToken == "" || claims == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	pair, err := h.uc.Refresh(c.Request().Context(), refreshToken, claims)
	if err != nil {
		//レコードが無い＝logout済みかrotation済み
		if errors.Is(err, usecase.ErrUnauthorized) {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "token revoked"})
		}
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "token refreshed", tokenData{Tokens: *pair})
}

// VerifyEmailはPOST /auth/verify-emailのハンドラ
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	claims := middleware.EmailVerifyClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	out, err := h.uc.VerifyEmail(c.Request().Context(), claims.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "email verified", out)
}

// ResendVerifyEmailはPOST /auth/resend-verify-emailのハンドラ
func (h *AuthHandler) ResendVerifyEmail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	if err := h.uc.ResendVerifyEmail(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "verify email sent", nil)
}

// ForgotPasswordはPOST /auth/forgot-passwordのハンドラ。
// tokenはメールで送るだけでレスポンスには載せない
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	}

	if err := h.uc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "password reset email sent", nil)
}

// ResetPasswordはPOST /auth/reset-passwordのハンドラ
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	claims := middleware.PasswordResetClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	}

	pair, err := h.uc.ResetPassword(c.Request().Context(), claims.UserID, req.NewPassword)
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "password reset", tokenData{Tokens: *pair})
}

// MeはGET /auth/meのハンドラ
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	user, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, "ok", userData{User: *user})
}
