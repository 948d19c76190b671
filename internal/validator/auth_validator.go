package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"shopapi/internal/repository"
	"shopapi/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = fmt.Errorf("invalid input: %w", usecase.ErrValidation)

	// emailが既に使用済み
	ErrEmailAlreadyUsed = fmt.Errorf("email already used: %w", usecase.ErrConflict)
)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	// パスワード最低文字数（MVP: 8）
	if len(password) < 8 {
		return ErrInvalidInput
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		return usecase.ErrInternal
	}
	if u != nil {
		return ErrEmailAlreadyUsed
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	return nil
}

// パスワード再設定メール依頼の入力を検証
func (v *authValidator) ValidateForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	if email == "" || !isEmailLike(email) {
		return ErrInvalidInput
	}

	return nil
}

// 新パスワードの入力を検証
func (v *authValidator) ValidateResetPassword(ctx context.Context, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidInput
	}

	if len(newPassword) < 8 {
		return ErrInvalidInput
	}

	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	re := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	return re.MatchString(s)
}
