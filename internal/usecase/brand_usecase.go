package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

type BrandUsecase struct {
	brandRepo repo.BrandRepository
	auditRepo repo.AuditLogRepository
}

// DI
func NewBrandUsecase(
	brandRepo repo.BrandRepository,
	auditRepo repo.AuditLogRepository,
) *BrandUsecase {
	return &BrandUsecase{
		brandRepo: brandRepo,
		auditRepo: auditRepo,
	}
}

func (u *BrandUsecase) ListBrands(ctx context.Context) ([]model.Brand, error) {
	list, err := u.brandRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *BrandUsecase) AdminCreateBrand(ctx context.Context, adminUserID int64, name string) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if len(name) > 100 {
		return 0, NewHTTPError(http.StatusBadRequest, "name too long")
	}

	if _, err := u.brandRepo.FindByName(ctx, name); err == nil {
		return 0, NewHTTPError(http.StatusConflict, "name already used")
	} else if err != repo.ErrNotFound {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	b, err := u.brandRepo.Create(ctx, model.Brand{
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	//チェックをすり抜けた同時作成はunique制約で落ちる
	if err == repo.ErrDuplicate {
		return 0, NewHTTPError(http.StatusConflict, "name already used")
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionCreate,
		ResourceType: model.AuditResourceBrand,
		ResourceID:   b.ID,
		AfterJSON:    auditJSON(b),
		CreatedAt:    time.Now(),
	}); err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return b.ID, nil
}

func (u *BrandUsecase) AdminUpdateBrand(ctx context.Context, adminUserID int64, brandID int64, name string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if brandID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if len(name) > 100 {
		return NewHTTPError(http.StatusBadRequest, "name too long")
	}

	before, err := u.brandRepo.FindByID(ctx, brandID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if existing, err := u.brandRepo.FindByName(ctx, name); err == nil && existing.ID != brandID {
		return NewHTTPError(http.StatusConflict, "name already used")
	} else if err != nil && err != repo.ErrNotFound {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	after := before
	after.Name = name
	after.UpdatedAt = time.Now()

	err = u.brandRepo.Update(ctx, after)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err == repo.ErrDuplicate {
		return NewHTTPError(http.StatusConflict, "name already used")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdate,
		ResourceType: model.AuditResourceBrand,
		ResourceID:   brandID,
		BeforeJSON:   auditJSON(before),
		AfterJSON:    auditJSON(after),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

func (u *BrandUsecase) AdminDeleteBrand(ctx context.Context, adminUserID int64, brandID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if brandID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}

	before, err := u.brandRepo.FindByID(ctx, brandID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	err = u.brandRepo.Delete(ctx, brandID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionDelete,
		ResourceType: model.AuditResourceBrand,
		ResourceID:   brandID,
		BeforeJSON:   auditJSON(before),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
