package usecase

import (
	"context"
	"net/http"
	"time"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

// 管理者によるユーザー操作（BAN・強制ログアウト）
type AdminUserUsecase struct {
	userRepo  repo.UserRepository
	rtRepo    repo.RefreshTokenRepository
	auditRepo repo.AuditLogRepository
}

// DI
func NewAdminUserUsecase(
	userRepo repo.UserRepository,
	rtRepo repo.RefreshTokenRepository,
	auditRepo repo.AuditLogRepository,
) *AdminUserUsecase {
	return &AdminUserUsecase{
		userRepo:  userRepo,
		rtRepo:    rtRepo,
		auditRepo: auditRepo,
	}
}

// AdminBanUserはユーザーをBANし、全セッションを失効させる
func (u *AdminUserUsecase) AdminBanUser(ctx context.Context, adminUserID int64, targetUserID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	target, err := u.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if target == nil {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if target.Role == model.RoleAdmin {
		return NewHTTPError(http.StatusForbidden, "cannot ban admin")
	}
	if target.Verify == model.VerifyBanned {
		return NewHTTPError(http.StatusConflict, "already banned")
	}

	before := *target
	target.Verify = model.VerifyBanned

	if err := u.userRepo.Update(ctx, target); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//BANと同時にrefreshを全部消す。以後refreshも通らない
	if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdate,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   auditJSON(before),
		AfterJSON:    auditJSON(*target),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// AdminUnbanUserはBANを解除する。解除後はUNVERIFIEDに戻す（再確認が必要）
func (u *AdminUserUsecase) AdminUnbanUser(ctx context.Context, adminUserID int64, targetUserID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	target, err := u.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if target == nil {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if target.Verify != model.VerifyBanned {
		return NewHTTPError(http.StatusConflict, "not banned")
	}

	before := *target
	target.Verify = model.VerifyUnverified

	if err := u.userRepo.Update(ctx, target); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdate,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   auditJSON(before),
		AfterJSON:    auditJSON(*target),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// AdminForceLogoutは対象ユーザーのrefreshを全削除する。
// accessは期限までは生きるが、以後の更新はできない
func (u *AdminUserUsecase) AdminForceLogout(ctx context.Context, adminUserID int64, targetUserID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	target, err := u.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if target == nil {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdate,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		AfterJSON:    `{"sessions":"revoked"}`,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
