package repository

import (
	"context"

	"shopapi/internal/domain/model"
)

type CartRepository interface {
	// ACTIVEなカートを返す。なければ作って返す。
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 明細を全削除する。
	Clear(ctx context.Context, cartID int64) error
}
