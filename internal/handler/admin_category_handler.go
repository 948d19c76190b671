package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"shopapi/internal/middleware"
	"shopapi/internal/security"
	"shopapi/internal/usecase"
)

type CategoryUpsertRequest struct {
	Name string `json:"name"`
}

// /admin/categories をまとめる
type AdminCategoryHandler struct {
	uc *usecase.CategoryUsecase
}

// DI
func NewAdminCategoryHandler(uc *usecase.CategoryUsecase) *AdminCategoryHandler {
	return &AdminCategoryHandler{uc: uc}
}

// adminを登録
func (h *AdminCategoryHandler) RegisterRoutes(e *echo.Echo, tokens *security.TokenManager) {
	admin := e.Group("/admin")

	admin.Use(middleware.RequireAccessToken(tokens))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/categories", h.create)
	admin.PUT("/categories/:id", h.update)
	admin.DELETE("/categories/:id", h.delete)
}

func (h *AdminCategoryHandler) create(c echo.Context) error {
	var req CategoryUpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if _, err := h.uc.AdminCreateCategory(c.Request().Context(), adminID, req.Name); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{Message: "created"})
}

func (h *AdminCategoryHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req CategoryUpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminUpdateCategory(c.Request().Context(), adminID, id, req.Name); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminCategoryHandler) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminDeleteCategory(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
