package server

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"shopapi/internal/domain/model"
	"shopapi/internal/security"
)

// 初期管理者をENVから作成する。未設定ならスキップ
func (s *Server) SeedAdminUser(ctx context.Context, hasher *security.PasswordHasher) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", s.cfg.AdminEmail).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = model.User{
			Email:        s.cfg.AdminEmail,
			PasswordHash: hasher.Hash(s.cfg.AdminPassword),
			Role:         model.RoleAdmin,
			Verify:       model.VerifyVerified,
			IsActive:     true,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return err
		}
		s.logger.Info("admin user seeded", slog.String("email", s.cfg.AdminEmail))
		return nil
	}

	//既存ならADMINであることだけ保証する
	if user.Role != model.RoleAdmin {
		if err := s.db.WithContext(ctx).Model(&model.User{}).
			Where("id = ?", user.ID).
			Update("role", model.RoleAdmin).Error; err != nil {
			return err
		}
		s.logger.Info("admin role restored", slog.String("email", s.cfg.AdminEmail))
	}

	return nil
}
