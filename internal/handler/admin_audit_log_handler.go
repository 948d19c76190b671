package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"shopapi/internal/middleware"
	"shopapi/internal/security"
	"shopapi/internal/usecase"
)

// /admin/audit-logs の閲覧API
type AdminAuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

// DI
func NewAdminAuditLogHandler(uc *usecase.AuditLogUsecase) *AdminAuditLogHandler {
	return &AdminAuditLogHandler{uc: uc}
}

// adminを登録
func (h *AdminAuditLogHandler) RegisterRoutes(e *echo.Echo, tokens *security.TokenManager) {
	admin := e.Group("/admin")

	admin.Use(middleware.RequireAccessToken(tokens))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/audit-logs", h.list)
}

func (h *AdminAuditLogHandler) list(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var in usecase.ListAuditLogsInput

	if v := c.QueryParam("actor_user_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
		}
		in.ActorUserID = &x
	}

	in.Action = c.QueryParam("action")
	in.ResourceType = c.QueryParam("resource_type")

	if v := c.QueryParam("resource_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid resource_id"})
		}
		in.ResourceID = &x
	}

	if v := c.QueryParam("created_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid created_from"})
		}
		in.CreatedFrom = &t
	}

	if v := c.QueryParam("created_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid created_to"})
		}
		in.CreatedTo = &t
	}

	if v := c.QueryParam("limit"); v != "" {
		x, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		in.Limit = x
	}

	if v := c.QueryParam("offset"); v != "" {
		x, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		in.Offset = x
	}

	logs, err := h.uc.AdminListAuditLogs(c.Request().Context(), adminID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, logs)
}
