package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shopapi/internal/domain/model"
)

//access claimsの確認ステータスを見るガード。
//メール確認済みのユーザーだけ通す。BANは問答無用で拒否。

func VerifiedUserGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := AccessClaimsFromContext(c)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing token"))
			}

			if claims.Verify == model.VerifyBanned || !claims.IsActive {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			if claims.Verify != model.VerifyVerified {
				return c.JSON(http.StatusForbidden, errorJSON("email not verified"))
			}

			return next(c)
		}
	}
}
