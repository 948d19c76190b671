package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"shopapi/internal/middleware"
	"shopapi/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// 成功レスポンスは {message, data} に寄せます。
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, SuccessResponse{Message: message, Data: data})
}

// usecaseのエラーをHTTPステータスに変換する。
// HTTPError（カタログ・カート系）とsentinel（認証・住所系）の両方を受ける。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	case errors.Is(err, usecase.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

//middleware.RequireAccessToken が保存したclaimsからuser_idを取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	claims := middleware.AccessClaimsFromContext(c)
	if claims == nil {
		return 0, false
	}
	return claims.UserID, claims.UserID > 0
}
