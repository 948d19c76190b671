package repository

import (
	"context"

	"shopapi/internal/domain/model"
)

// カテゴリの永続化を約束。
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	// 名前で1件取得。なければErrNotFound。
	FindByName(ctx context.Context, name string) (model.Category, error)

	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error
}
