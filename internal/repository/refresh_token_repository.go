package repository

import (
	"context"
	"errors"
	"time"

	"shopapi/internal/domain/model"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// リフレッシュトークンの保存・取得・削除。
// レコードの有無が「そのtokenがまだ生きているか」の唯一の根拠。
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error

	// token文字列で1件取得。なければErrRefreshTokenNotFound。
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)

	// token文字列で1件削除する。
	// 「存在すれば消す・なければErrRefreshTokenNotFound」を1回の条件付き削除で行う。
	// rotationの二重実行はここで片方だけ成功する。
	DeleteByToken(ctx context.Context, token string) error

	//ユーザーの全セッションを失効させる（パスワード再設定時など）
	DeleteAllByUserID(ctx context.Context, userID int64) error

	//期限切れレコードの掃除。削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
