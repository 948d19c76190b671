package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

// =====================
// Mock: AuditLogRepository
// =====================

type AdminUserAuditRepoMock struct{ mock.Mock }

func (m *AdminUserAuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AdminUserAuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in AdminUserUsecase tests")
}

// =====================
// Helper
// =====================

func newAdminUserUC(userRepo *MockUserRepository, rtRepo *MockRefreshTokenRepository, audit *AdminUserAuditRepoMock) *AdminUserUsecase {
	return NewAdminUserUsecase(userRepo, rtRepo, audit)
}

// =====================
// Ban
// =====================

func TestAdminUserUsecase_BanUser_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	audit := new(AdminUserAuditRepoMock)

	userRepo.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID:       5,
		Email:    "target@test.com",
		Role:     model.RoleUser,
		Verify:   model.VerifyVerified,
		IsActive: true,
	}, nil)

	// 確認ステータスがBANNEDに変わって保存される
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 5 && u.Verify == model.VerifyBanned
	})).Return(nil)

	// BANと同時に全セッションが失効する
	rtRepo.On("DeleteAllByUserID", mock.Anything, int64(5)).Return(nil)

	// 変更前後のスナップショット付きで監査に残る
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 100 &&
			l.Action == model.AuditActionUpdate &&
			l.ResourceType == model.AuditResourceUser &&
			l.ResourceID == 5 &&
			l.BeforeJSON != "" && l.AfterJSON != ""
	})).Return(nil)

	uc := newAdminUserUC(userRepo, rtRepo, audit)

	err := uc.AdminBanUser(ctx, 100, 5)
	assert.NoError(t, err)

	userRepo.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// 管理者をBANすることはできない
func TestAdminUserUsecase_BanUser_AdminTarget(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	audit := new(AdminUserAuditRepoMock)

	userRepo.On("FindByID", mock.Anything, int64(2)).Return(&model.User{
		ID:     2,
		Email:  "admin@test.com",
		Role:   model.RoleAdmin,
		Verify: model.VerifyVerified,
	}, nil)

	uc := newAdminUserUC(userRepo, rtRepo, audit)

	err := uc.AdminBanUser(ctx, 100, 2)
	assertErrContains(t, err, "cannot ban admin")

	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	rtRepo.AssertNotCalled(t, "DeleteAllByUserID", mock.Anything, mock.Anything)
}

func TestAdminUserUsecase_BanUser_AlreadyBanned(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	audit := new(AdminUserAuditRepoMock)

	userRepo.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID:     5,
		Role:   model.RoleUser,
		Verify: model.VerifyBanned,
	}, nil)

	uc := newAdminUserUC(userRepo, rtRepo, audit)

	err := uc.AdminBanUser(ctx, 100, 5)
	assertErrContains(t, err, "already banned")

	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAdminUserUsecase_BanUser_NotFound(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	audit := new(AdminUserAuditRepoMock)

	userRepo.On("FindByID", mock.Anything, int64(404)).Return(nil, nil)

	uc := newAdminUserUC(userRepo, rtRepo, audit)

	err := uc.AdminBanUser(ctx, 100, 404)
	assertErrContains(t, err, "not found")
}

// =====================
// Unban
// =====================

// 解除後はUNVERIFIEDに戻る（メール再確認が必要）
func TestAdminUserUsecase_UnbanUser_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	audit := new(AdminUserAuditRepoMock)

	userRepo.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID:     5,
		Email:  "target@test.com",
		Role:   model.RoleUser,
		Verify: model.VerifyBanned,
	}, nil)

	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 5 && u.Verify == model.VerifyUnverified
	})).Return(nil)

	audit.On("Create", mock.Anything, mock.AnythingOfType("model.AuditLog")).Return(nil)

	uc := newAdminUserUC(userRepo, rtRepo, audit)

	err := uc.AdminUnbanUser(ctx, 100, 5)
	assert.NoError(t, err)

	userRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminUserUsecase_UnbanUser_NotBanned(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	audit := new(AdminUserAuditRepoMock)

	userRepo.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID:     5,
		Role:   model.RoleUser,
		Verify: model.VerifyVerified,
	}, nil)

	uc := newAdminUserUC(userRepo, rtRepo, audit)

	err := uc.AdminUnbanUser(ctx, 100, 5)
	assertErrContains(t, err, "not banned")

	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// =====================
// ForceLogout
// =====================

func TestAdminUserUsecase_ForceLogout_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	audit := new(AdminUserAuditRepoMock)

	userRepo.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID:     5,
		Role:   model.RoleUser,
		Verify: model.VerifyVerified,
	}, nil)

	rtRepo.On("DeleteAllByUserID", mock.Anything, int64(5)).Return(nil)
	audit.On("Create", mock.Anything, mock.AnythingOfType("model.AuditLog")).Return(nil)

	uc := newAdminUserUC(userRepo, rtRepo, audit)

	err := uc.AdminForceLogout(ctx, 100, 5)
	assert.NoError(t, err)

	rtRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminUserUsecase_ForceLogout_NotFound(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	audit := new(AdminUserAuditRepoMock)

	userRepo.On("FindByID", mock.Anything, int64(404)).Return(nil, nil)

	uc := newAdminUserUC(userRepo, rtRepo, audit)

	err := uc.AdminForceLogout(ctx, 100, 404)
	assertErrContains(t, err, "not found")

	rtRepo.AssertNotCalled(t, "DeleteAllByUserID", mock.Anything, mock.Anything)
}
