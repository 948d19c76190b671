package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"shopapi/internal/middleware"
	"shopapi/internal/security"
	"shopapi/internal/usecase"
)

type BrandUpsertRequest struct {
	Name string `json:"name"`
}

// /admin/brands をまとめる
type AdminBrandHandler struct {
	uc *usecase.BrandUsecase
}

// DI
func NewAdminBrandHandler(uc *usecase.BrandUsecase) *AdminBrandHandler {
	return &AdminBrandHandler{uc: uc}
}

// adminを登録
func (h *AdminBrandHandler) RegisterRoutes(e *echo.Echo, tokens *security.TokenManager) {
	admin := e.Group("/admin")

	admin.Use(middleware.RequireAccessToken(tokens))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/brands", h.create)
	admin.PUT("/brands/:id", h.update)
	admin.DELETE("/brands/:id", h.delete)
}

func (h *AdminBrandHandler) create(c echo.Context) error {
	var req BrandUpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if _, err := h.uc.AdminCreateBrand(c.Request().Context(), adminID, req.Name); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{Message: "created"})
}

func (h *AdminBrandHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req BrandUpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminUpdateBrand(c.Request().Context(), adminID, id, req.Name); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminBrandHandler) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminDeleteBrand(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
