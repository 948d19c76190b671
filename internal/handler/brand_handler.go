package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shopapi/internal/usecase"
)

// /brands の公開API
type BrandHandler struct {
	uc *usecase.BrandUsecase
}

// DI
func NewBrandHandler(uc *usecase.BrandUsecase) *BrandHandler {
	return &BrandHandler{uc: uc}
}

func (h *BrandHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/brands", h.list)
}

func (h *BrandHandler) list(c echo.Context) error {
	out, err := h.uc.ListBrands(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
