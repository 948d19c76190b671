package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
	auditRepo    repo.AuditLogRepository
}

// DI
func NewCategoryUsecase(
	categoryRepo repo.CategoryRepository,
	auditRepo repo.AuditLogRepository,
) *CategoryUsecase {
	return &CategoryUsecase{
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
	}
}

func (u *CategoryUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	list, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *CategoryUsecase) AdminCreateCategory(ctx context.Context, adminUserID int64, name string) (int64, error) {
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

	//名前重複チェック（unique制約もあるが409で返したい）
	if _, err := u.categoryRepo.FindByName(ctx, name); err == nil {
		return 0, NewHTTPError(http.StatusConflict, "name already used")
	} else if err != repo.ErrNotFound {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	c, err := u.categoryRepo.Create(ctx, model.Category{
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
		ResourceType: model.AuditResourceCategory,
		ResourceID:   c.ID,
		AfterJSON:    auditJSON(c),
		CreatedAt:    time.Now(),
	}); err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return c.ID, nil
}

func (u *CategoryUsecase) AdminUpdateCategory(ctx context.Context, adminUserID int64, categoryID int64, name string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if len(name) > 100 {
		return NewHTTPError(http.StatusBadRequest, "name too long")
	}

	before, err := u.categoryRepo.FindByID(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//別レコードが同名を使っていたら409
	if existing, err := u.categoryRepo.FindByName(ctx, name); err == nil && existing.ID != categoryID {
		return NewHTTPError(http.StatusConflict, "name already used")
	} else if err != nil && err != repo.ErrNotFound {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	after := before
	after.Name = name
	after.UpdatedAt = time.Now()

	err = u.categoryRepo.Update(ctx, after)
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
		ResourceType: model.AuditResourceCategory,
		ResourceID:   categoryID,
		BeforeJSON:   auditJSON(before),
		AfterJSON:    auditJSON(after),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

func (u *CategoryUsecase) AdminDeleteCategory(ctx context.Context, adminUserID int64, categoryID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	before, err := u.categoryRepo.FindByID(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	err = u.categoryRepo.Delete(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionDelete,
		ResourceType: model.AuditResourceCategory,
		ResourceID:   categoryID,
		BeforeJSON:   auditJSON(before),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
