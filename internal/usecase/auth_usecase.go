package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shopapi/internal/config"
	"shopapi/internal/domain/model"
	"shopapi/internal/notify"
	"shopapi/internal/repository"
	"shopapi/internal/security"
)

var (
	//400 入力不正
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//403 権限・状態
	ErrForbidden = errors.New("forbidden")
	//404 対象なし
	ErrNotFound = errors.New("not found")
	//409 重複など
	ErrConflict = errors.New("conflict")
	//500
	ErrInternal = errors.New("internal error")
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateForgotPassword(ctx context.Context, email string) error
	ValidateResetPassword(ctx context.Context, newPassword string) error
}

// API返却用。パスワードや各種トークン欄は載せない
type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verify   string `json:"verify"`
	IsActive bool   `json:"is_active"`
}

type TokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// user + tokens を返すフロー（register/login/verify-email）の共通形
type AuthSessionResponse struct {
	User   UserDTO      `json:"user"`
	Tokens TokenPairDTO `json:"tokens"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	rtRepo    repository.RefreshTokenRepository
	tokens    *security.TokenManager
	hasher    *security.PasswordHasher
	mailer    notify.Mailer
	logger    *slog.Logger
	validator AuthValidator
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	tokens *security.TokenManager,
	hasher *security.PasswordHasher,
	mailer notify.Mailer,
	logger *slog.Logger,
	validator AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		rtRepo:    rtRepo,
		tokens:    tokens,
		hasher:    hasher,
		mailer:    mailer,
		logger:    logger,
		validator: validator,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*AuthSessionResponse, error) {
	//入力検証（validatorに寄せる。email重複もここで弾く）
	if err := u.validator.ValidateRegister(ctx, req.Email, req.Password); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	user := &model.User{
		Email:        req.Email,
		PasswordHash: u.hasher.Hash(req.Password),
		Role:         model.RoleUser,
		Verify:       model.VerifyUnverified,
		IsActive:     true,
	}

	//保存。validatorの重複チェックをすり抜けた同時登録はunique制約で落ちる
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, ErrInternal
	}

	//メール確認トークンを発行してuser行に保持（未消費は常に1つだけ）
	verifyToken, err := u.tokens.SignEmailVerify(user.ID)
	if err != nil {
		return nil, ErrInternal
	}
	user.EmailVerifyToken = verifyToken
	if err := u.users.Update(ctx, user); err != nil {
		return nil, ErrInternal
	}

	//確認メール送信。失敗したらトークンは発行せず登録失敗として返す
	if err := u.mailer.SendVerifyEmail(ctx, user.Email, verifyToken); err != nil {
		u.logger.Error("send verify email failed", slog.String("email", user.Email), slog.String("error", err.Error()))
		return nil, ErrInternal
	}

	pair, err := u.issuePair(ctx, user, u.tokens.RefreshExpiry())
	if err != nil {
		return nil, err
	}

	u.logger.Info("user registered", slog.String("email", user.Email))

	return &AuthSessionResponse{
		User:   toUserDTO(user),
		Tokens: pair,
	}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (*AuthSessionResponse, error) {
	// 1) 入力検証
	if err := u.validator.ValidateLogin(ctx, req.Email, req.Password); err != nil {
		return nil, err
	}

	// 2) ユーザー取得。存在の有無は外に漏らさない
	user, err := u.users.FindByEmail(ctx, req.Email)
	if err != nil || user == nil {
		return nil, ErrUnauthorized
	}

	// 3) BAN・停止ユーザーはログイン不可
	if user.Verify == model.VerifyBanned || !user.IsActive {
		return nil, ErrForbidden
	}

	// 4) パスワード照合
	if !u.hasher.Compare(user.PasswordHash, req.Password) {
		u.logger.Warn("login failed", slog.String("email", req.Email))
		return nil, ErrUnauthorized
	}

	// 5) last_login更新（失敗してもログインは通す）
	now := time.Now()
	user.LastLoginAt = &now
	_ = u.users.Update(ctx, user)

	//ついでに期限切れrefreshレコードを掃除
	if n, err := u.rtRepo.DeleteExpired(ctx, now); err == nil && n > 0 {
		u.logger.Info("expired refresh tokens purged", slog.Int64("count", n))
	}

	pair, err := u.issuePair(ctx, user, u.tokens.RefreshExpiry())
	if err != nil {
		return nil, err
	}

	u.logger.Info("user logged in", slog.String("email", user.Email), slog.String("role", string(user.Role)))

	return &AuthSessionResponse{
		User:   toUserDTO(user),
		Tokens: pair,
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return nil, ErrUnauthorized
	}

	if !user.IsActive {
		return nil, ErrForbidden
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// 確認メールの再送。トークンは上書き発行（未消費は常に1つだけ）
func (u *AuthUsecase) ResendVerifyEmail(ctx context.Context, userID int64) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return ErrInternal
	}
	if user == nil {
		return ErrNotFound
	}

	if user.Verify == model.VerifyBanned || !user.IsActive {
		return ErrForbidden
	}
	//確認済みユーザーに再送するものはない
	if user.Verify == model.VerifyVerified {
		return ErrConflict
	}

	verifyToken, err := u.tokens.SignEmailVerify(user.ID)
	if err != nil {
		return ErrInternal
	}
	user.EmailVerifyToken = verifyToken
	if err := u.users.Update(ctx, user); err != nil {
		return ErrInternal
	}

	if err := u.mailer.SendVerifyEmail(ctx, user.Email, verifyToken); err != nil {
		u.logger.Error("send verify email failed", slog.String("email", user.Email), slog.String("error", err.Error()))
		return ErrInternal
	}

	u.logger.Info("verify email resent", slog.String("email", user.Email))
	return nil
}

// メール確認。UNVERIFIED→VERIFIEDに進め、トークン欄を消費する。
// 2回呼ばれても最終状態は同じ（2回目も成功し、新しいペアが返るだけ）。
func (u *AuthUsecase) VerifyEmail(ctx context.Context, userID int64) (*AuthSessionResponse, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if user.Verify == model.VerifyBanned || !user.IsActive {
		return nil, ErrForbidden
	}

	if user.Verify != model.VerifyVerified || user.EmailVerifyToken != "" {
		user.Verify = model.VerifyVerified
		user.EmailVerifyToken = ""
		if err := u.users.Update(ctx, user); err != nil {
			return nil, ErrInternal
		}
	}

	//ステータスが変わったのでaccess側のclaimsも作り直す
	pair, err := u.issuePair(ctx, user, u.tokens.RefreshExpiry())
	if err != nil {
		return nil, err
	}

	u.logger.Info("email verified", slog.String("email", user.Email))

	return &AuthSessionResponse{
		User:   toUserDTO(user),
		Tokens: pair,
	}, nil
}

// ログアウト。レコードが既に無くても成功扱い（何度呼んでも同じ）
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrUnauthorized
	}

	if err := u.rtRepo.DeleteByToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil
		}
		return ErrInternal
	}

	u.logger.Info("user logged out")
	return nil
}

// refreshのrotation。
// 先に旧tokenを条件付きDELETEしてから新ペアを作るので、同じtokenで
// 並行に呼ばれても成功するのは1本だけ（負けた側は401）。
// 新しいrefreshの期限は旧tokenの期限をそのまま引き継ぐ。
func (u *AuthUsecase) Refresh(ctx context.Context, oldToken string, claims *security.TokenClaims) (*TokenPairDTO, error) {
	if oldToken == "" || claims == nil || claims.ExpiresAt == nil {
		return nil, ErrUnauthorized
	}

	// 1) 旧tokenを消す。消せなければ失効済み（logout済み・rotation済み）
	if err := u.rtRepo.DeleteByToken(ctx, oldToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, ErrInternal
	}

	// 2) ユーザーを取り直す（BAN・停止はここで落とす）
	user, err := u.users.FindByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return nil, ErrUnauthorized
	}
	if user.Verify == model.VerifyBanned || !user.IsActive {
		return nil, ErrForbidden
	}

	// 3) 期限は旧tokenのexpをそのまま使う（セッション寿命を延ばさない）
	pair, err := u.issuePair(ctx, user, claims.ExpiresAt.Time)
	if err != nil {
		return nil, err
	}

	u.logger.Info("refresh token rotated", slog.Int64("user_id", user.ID))
	return &pair, nil
}

// パスワード再設定の入口。再設定トークンを発行してメールで送る
func (u *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	if err := u.validator.ValidateForgotPassword(ctx, email); err != nil {
		return err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return ErrInternal
	}
	if user == nil {
		return ErrNotFound
	}

	if user.Verify == model.VerifyBanned || !user.IsActive {
		return ErrForbidden
	}

	resetToken, err := u.tokens.SignPasswordReset(user.ID)
	if err != nil {
		return ErrInternal
	}
	user.PasswordResetToken = resetToken
	if err := u.users.Update(ctx, user); err != nil {
		return ErrInternal
	}

	if err := u.mailer.SendPasswordReset(ctx, user.Email, resetToken); err != nil {
		u.logger.Error("send password reset email failed", slog.String("email", user.Email), slog.String("error", err.Error()))
		return ErrInternal
	}

	u.logger.Info("password reset requested", slog.String("email", user.Email))
	return nil
}

// 新パスワードを保存して既存セッションを全て失効。実質の再ログインとして新ペアを返す
func (u *AuthUsecase) ResetPassword(ctx context.Context, userID int64, newPassword string) (*TokenPairDTO, error) {
	if err := u.validator.ValidateResetPassword(ctx, newPassword); err != nil {
		return nil, err
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if user.Verify == model.VerifyBanned || !user.IsActive {
		return nil, ErrForbidden
	}

	user.PasswordHash = u.hasher.Hash(newPassword)
	user.PasswordResetToken = ""
	if err := u.users.Update(ctx, user); err != nil {
		return nil, ErrInternal
	}

	//旧パスワードで張られたセッションは全部切る
	if err := u.rtRepo.DeleteAllByUserID(ctx, user.ID); err != nil {
		return nil, ErrInternal
	}

	pair, err := u.issuePair(ctx, user, u.tokens.RefreshExpiry())
	if err != nil {
		return nil, err
	}

	u.logger.Info("password reset", slog.String("email", user.Email))
	return &pair, nil
}

// access+refreshのペアを発行してrefreshレコードを保存する。
// refreshExpiresAtは新規発行ならRefreshExpiry()、rotationなら旧tokenのexp。
func (u *AuthUsecase) issuePair(ctx context.Context, user *model.User, refreshExpiresAt time.Time) (TokenPairDTO, error) {
	accessToken, _, err := u.tokens.SignAccess(user)
	if err != nil {
		return TokenPairDTO{}, ErrInternal
	}

	refreshToken, err := u.tokens.SignRefresh(user, refreshExpiresAt)
	if err != nil {
		return TokenPairDTO{}, ErrInternal
	}

	rt := &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     refreshToken,
		IssuedAt:  time.Now(),
		ExpiresAt: refreshExpiresAt,
	}
	if err := u.rtRepo.Create(ctx, rt); err != nil {
		return TokenPairDTO{}, ErrInternal
	}

	return TokenPairDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(u.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Email:    u.Email,
		Role:     string(u.Role),
		Verify:   string(u.Verify),
		IsActive: u.IsActive,
	}
}
