package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shopapi/internal/domain/model"
)

//access claimsのroleがADMINかどうかを確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := AccessClaimsFromContext(c)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing token"))
			}

			//USERは拒否、ADMINだけ許可
			if claims.Role != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}
