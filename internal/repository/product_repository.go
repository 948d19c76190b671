package repository

import (
	"context"
	"errors"

	"shopapi/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// unique制約違反（email・name重複など）を統一
var ErrDuplicate = errors.New("duplicate")

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	BrandID    *int64
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	// 在庫だけを更新。対象がなければErrNotFound。
	UpdateStock(ctx context.Context, id int64, newStock int64) error
	SoftDelete(ctx context.Context, id int64) error
}
