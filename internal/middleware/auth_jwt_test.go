package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"shopapi/internal/domain/model"
	"shopapi/internal/security"
)

// =====================
// Helper
// =====================

func testTokenCfg() security.TokenConfig {
	return security.TokenConfig{
		AccessSecret:        "mw-access-secret",
		AccessTTL:           15 * time.Minute,
		RefreshSecret:       "mw-refresh-secret",
		RefreshTTL:          720 * time.Hour,
		EmailVerifySecret:   "mw-verify-secret",
		EmailVerifyTTL:      24 * time.Hour,
		PasswordResetSecret: "mw-reset-secret",
		PasswordResetTTL:    time.Hour,
	}
}

func testTokens() *security.TokenManager {
	return security.NewTokenManager(testTokenCfg())
}

func verifiedUser() *model.User {
	return &model.User{
		ID:       1,
		Email:    "user@test.com",
		Role:     model.RoleUser,
		Verify:   model.VerifyVerified,
		IsActive: true,
	}
}

func newEchoContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, "/", r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// =====================
// RequireAccessToken
// =====================

func TestRequireAccessToken_Success(t *testing.T) {
	tokens := testTokens()
	token, _, err := tokens.SignAccess(verifiedUser())
	assert.NoError(t, err)

	c, rec := newEchoContext(t, "")
	c.Request().Header.Set("Authorization", "Bearer "+token)

	// 検証済みclaimsがaccess用のキーで取り出せる
	var got *security.TokenClaims
	h := RequireAccessToken(tokens)(func(c echo.Context) error {
		got = AccessClaimsFromContext(c)
		return okHandler(c)
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, got)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, security.TokenUseAccess, got.TokenUse)
}

func TestRequireAccessToken_MissingHeader(t *testing.T) {
	c, rec := newEchoContext(t, "")

	h := RequireAccessToken(testTokens())(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing token"}`, rec.Body.String())
}

// Bearer形式でなければ401（schemeが違う）
func TestRequireAccessToken_NotBearer(t *testing.T) {
	c, rec := newEchoContext(t, "")
	c.Request().Header.Set("Authorization", "Basic dXNlcjpwdw==")

	h := RequireAccessToken(testTokens())(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"malformed token"}`, rec.Body.String())
}

// JWTの形をしていない => malformed token
func TestRequireAccessToken_GarbageToken(t *testing.T) {
	c, rec := newEchoContext(t, "")
	c.Request().Header.Set("Authorization", "Bearer not.a.jwt")

	h := RequireAccessToken(testTokens())(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"malformed token"}`, rec.Body.String())
}

// 署名は正しいが期限切れ => token expired
func TestRequireAccessToken_Expired(t *testing.T) {
	// 同じシークレットで負のTTLを使い、期限切れトークンを作る
	expiredCfg := testTokenCfg()
	expiredCfg.AccessTTL = -time.Minute
	token, _, err := security.NewTokenManager(expiredCfg).SignAccess(verifiedUser())
	assert.NoError(t, err)

	c, rec := newEchoContext(t, "")
	c.Request().Header.Set("Authorization", "Bearer "+token)

	h := RequireAccessToken(testTokens())(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token expired"}`, rec.Body.String())
}

// 別のシークレットで署名されたものは invalid token
func TestRequireAccessToken_WrongSecret(t *testing.T) {
	otherCfg := testTokenCfg()
	otherCfg.AccessSecret = "someone-elses-secret"
	token, _, err := security.NewTokenManager(otherCfg).SignAccess(verifiedUser())
	assert.NoError(t, err)

	c, rec := newEchoContext(t, "")
	c.Request().Header.Set("Authorization", "Bearer "+token)

	h := RequireAccessToken(testTokens())(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
}

// refreshトークンをaccessとして出しても通らない
func TestRequireAccessToken_RefreshTokenRejected(t *testing.T) {
	tokens := testTokens()
	refresh, err := tokens.SignRefresh(verifiedUser(), time.Now().Add(time.Hour))
	assert.NoError(t, err)

	c, rec := newEchoContext(t, "")
	c.Request().Header.Set("Authorization", "Bearer "+refresh)

	h := RequireAccessToken(tokens)(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
}

// =====================
// RequireRefreshToken
// =====================

func TestRequireRefreshToken_Success(t *testing.T) {
	tokens := testTokens()
	refresh, err := tokens.SignRefresh(verifiedUser(), time.Now().Add(time.Hour))
	assert.NoError(t, err)

	c, rec := newEchoContext(t, fmt.Sprintf(`{"refresh_token":%q}`, refresh))

	// claimsは refresh用キー、生tokenも取り出せる
	var gotClaims *security.TokenClaims
	var gotRaw string
	h := RequireRefreshToken(tokens)(func(c echo.Context) error {
		gotClaims = RefreshClaimsFromContext(c)
		gotRaw = RefreshTokenFromContext(c)

		// bodyは読み戻されているのでhandler側でもbindできる
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		assert.NoError(t, c.Bind(&body))
		assert.Equal(t, refresh, body.RefreshToken)

		return okHandler(c)
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, gotClaims)
	assert.Equal(t, security.TokenUseRefresh, gotClaims.TokenUse)
	assert.Equal(t, refresh, gotRaw)

	// accessのキーには入らない（種別の取り違え防止）
	assert.Nil(t, c.Get(CtxAccessClaimsKey))
}

func TestRequireRefreshToken_MissingBody(t *testing.T) {
	c, rec := newEchoContext(t, "")

	h := RequireRefreshToken(testTokens())(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing token"}`, rec.Body.String())
}

func TestRequireRefreshToken_Expired(t *testing.T) {
	tokens := testTokens()
	refresh, err := tokens.SignRefresh(verifiedUser(), time.Now().Add(-time.Minute))
	assert.NoError(t, err)

	c, rec := newEchoContext(t, fmt.Sprintf(`{"refresh_token":%q}`, refresh))

	h := RequireRefreshToken(tokens)(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token expired"}`, rec.Body.String())
}

// accessトークンをrefresh欄に入れても通らない
func TestRequireRefreshToken_AccessTokenRejected(t *testing.T) {
	tokens := testTokens()
	access, _, err := tokens.SignAccess(verifiedUser())
	assert.NoError(t, err)

	c, rec := newEchoContext(t, fmt.Sprintf(`{"refresh_token":%q}`, access))

	h := RequireRefreshToken(tokens)(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
}

// =====================
// RequireEmailVerifyToken / RequirePasswordResetToken
// =====================

func TestRequireEmailVerifyToken_Success(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.SignEmailVerify(5)
	assert.NoError(t, err)

	c, rec := newEchoContext(t, fmt.Sprintf(`{"token":%q}`, token))

	var got *security.TokenClaims
	h := RequireEmailVerifyToken(tokens)(func(c echo.Context) error {
		got = EmailVerifyClaimsFromContext(c)
		return okHandler(c)
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, got)
	assert.Equal(t, int64(5), got.UserID)
	assert.Equal(t, security.TokenUseEmailVerify, got.TokenUse)
}

// password-resetトークンをverify-email欄に入れても通らない
func TestRequireEmailVerifyToken_ResetTokenRejected(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.SignPasswordReset(5)
	assert.NoError(t, err)

	c, rec := newEchoContext(t, fmt.Sprintf(`{"token":%q}`, token))

	h := RequireEmailVerifyToken(tokens)(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
}

func TestRequirePasswordResetToken_Success(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.SignPasswordReset(9)
	assert.NoError(t, err)

	c, rec := newEchoContext(t, fmt.Sprintf(`{"token":%q}`, token))

	var got *security.TokenClaims
	h := RequirePasswordResetToken(tokens)(func(c echo.Context) error {
		got = PasswordResetClaimsFromContext(c)
		return okHandler(c)
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, got)
	assert.Equal(t, int64(9), got.UserID)
	assert.Equal(t, security.TokenUsePasswordReset, got.TokenUse)
}

func TestRequirePasswordResetToken_Missing(t *testing.T) {
	c, rec := newEchoContext(t, `{}`)

	h := RequirePasswordResetToken(testTokens())(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing token"}`, rec.Body.String())
}

// =====================
// AdminRoleGuard
// =====================

func TestAdminRoleGuard_AllowsAdmin(t *testing.T) {
	c, rec := newEchoContext(t, "")
	c.Set(CtxAccessClaimsKey, &security.TokenClaims{
		UserID:   1,
		TokenUse: security.TokenUseAccess,
		Role:     model.RoleAdmin,
		Verify:   model.VerifyVerified,
		IsActive: true,
	})

	h := AdminRoleGuard()(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoleGuard_RejectsUser(t *testing.T) {
	c, rec := newEchoContext(t, "")
	c.Set(CtxAccessClaimsKey, &security.TokenClaims{
		UserID:   1,
		TokenUse: security.TokenUseAccess,
		Role:     model.RoleUser,
		Verify:   model.VerifyVerified,
		IsActive: true,
	})

	h := AdminRoleGuard()(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"admin only"}`, rec.Body.String())
}

// claimsが無い＝RequireAccessTokenを通っていない => 401
func TestAdminRoleGuard_NoClaims(t *testing.T) {
	c, rec := newEchoContext(t, "")

	h := AdminRoleGuard()(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing token"}`, rec.Body.String())
}

// =====================
// VerifiedUserGuard
// =====================

func TestVerifiedUserGuard_AllowsVerified(t *testing.T) {
	c, rec := newEchoContext(t, "")
	c.Set(CtxAccessClaimsKey, &security.TokenClaims{
		UserID:   1,
		TokenUse: security.TokenUseAccess,
		Role:     model.RoleUser,
		Verify:   model.VerifyVerified,
		IsActive: true,
	})

	h := VerifiedUserGuard()(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifiedUserGuard_RejectsUnverified(t *testing.T) {
	c, rec := newEchoContext(t, "")
	c.Set(CtxAccessClaimsKey, &security.TokenClaims{
		UserID:   1,
		TokenUse: security.TokenUseAccess,
		Role:     model.RoleUser,
		Verify:   model.VerifyUnverified,
		IsActive: true,
	})

	h := VerifiedUserGuard()(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"email not verified"}`, rec.Body.String())
}

func TestVerifiedUserGuard_RejectsBanned(t *testing.T) {
	c, rec := newEchoContext(t, "")
	c.Set(CtxAccessClaimsKey, &security.TokenClaims{
		UserID:   1,
		TokenUse: security.TokenUseAccess,
		Role:     model.RoleUser,
		Verify:   model.VerifyBanned,
		IsActive: true,
	})

	h := VerifiedUserGuard()(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())
}

func TestVerifiedUserGuard_RejectsInactive(t *testing.T) {
	c, rec := newEchoContext(t, "")
	c.Set(CtxAccessClaimsKey, &security.TokenClaims{
		UserID:   1,
		TokenUse: security.TokenUseAccess,
		Role:     model.RoleUser,
		Verify:   model.VerifyVerified,
		IsActive: false,
	})

	h := VerifiedUserGuard()(okHandler)

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())
}
