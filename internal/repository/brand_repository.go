package repository

import (
	"context"

	"shopapi/internal/domain/model"
)

// ブランドの永続化を約束。
type BrandRepository interface {
	List(ctx context.Context) ([]model.Brand, error)
	FindByID(ctx context.Context, id int64) (model.Brand, error)
	// 名前で1件取得。なければErrNotFound。
	FindByName(ctx context.Context, name string) (model.Brand, error)

	Create(ctx context.Context, b model.Brand) (model.Brand, error)
	Update(ctx context.Context, b model.Brand) error
	Delete(ctx context.Context, id int64) error
}
