package usecase

import (
	"context"
	"net/http"
	"time"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

// DI
func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

type ListAuditLogsInput struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

func (u *AuditLogUsecase) AdminListAuditLogs(ctx context.Context, adminUserID int64, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if adminUserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	filter := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		CreatedFrom: in.CreatedFrom,
		CreatedTo:   in.CreatedTo,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}

	if in.Action != "" {
		switch model.AuditAction(in.Action) {
		case model.AuditActionCreate, model.AuditActionUpdate, model.AuditActionDelete, model.AuditActionUpdateStock:
			a := model.AuditAction(in.Action)
			filter.Action = &a
		default:
			return nil, NewHTTPError(http.StatusBadRequest, "invalid action")
		}
	}

	if in.ResourceType != "" {
		switch model.AuditResourceType(in.ResourceType) {
		case model.AuditResourceProduct, model.AuditResourceCategory, model.AuditResourceBrand, model.AuditResourceUser:
			rt := model.AuditResourceType(in.ResourceType)
			filter.ResourceType = &rt
		default:
			return nil, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
		}
	}

	logs, err := u.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
