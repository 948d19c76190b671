package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPriceSnapshot int64) error {
	args := m.Called(ctx, cartID, productID, addQty, unitPriceSnapshot)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) UpdateStock(ctx context.Context, id int64, newStock int64) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func newCartUC(cartRepo *CartRepoMock, itemRepo *CartItemRepoMock, productRepo *CartProductRepoMock) *CartUsecase {
	return NewCartUsecase(cartRepo, itemRepo, productRepo)
}

// =====================
// GetCart
// =====================

// カートが無ければACTIVEを作って空を返す
func TestCartUsecase_GetCart_Empty(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	out, err := uc.GetCart(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, out.Items, 0)
	assert.Equal(t, int64(0), out.Total)

	cartRepo.AssertExpectations(t)
	itemRepo.AssertExpectations(t)
}

// 非公開になった商品は一覧と合計から除く
func TestCartUsecase_GetCart_SkipsInactiveProducts(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 2, UnitPriceSnapshot: 1000},
		{ID: 2, CartID: 10, ProductID: 102, Quantity: 1, UnitPriceSnapshot: 500},
	}, nil)

	productRepo.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Name: "Coffee Beans", Price: 1000, Stock: 10, IsActive: true}, nil)
	productRepo.On("FindByID", mock.Anything, int64(102)).Return(model.Product{ID: 102, Name: "Old Mug", Price: 500, IsActive: false}, nil)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	out, err := uc.GetCart(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(101), out.Items[0].ProductID)
	assert.Equal(t, int64(2000), out.Total)

	productRepo.AssertExpectations(t)
}

// =====================
// AddToCart
// =====================

func TestCartUsecase_AddToCart_NewItem(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	productRepo.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Name: "Coffee Beans", Price: 1500, Stock: 10, IsActive: true}, nil)

	// 1回目は既存数量の確認（空）、2回目はレスポンス組み立て
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil).Once()
	itemRepo.On("UpsertByCartAndProduct", mock.Anything, int64(10), int64(101), int64(2), int64(1500)).Return(nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 2, UnitPriceSnapshot: 1500},
	}, nil).Once()

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	out, err := uc.AddToCart(ctx, 1, AddCartInput{ProductID: 101, Quantity: 2})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(1500), out.Items[0].Price)
	assert.Equal(t, int64(3000), out.Total)

	cartRepo.AssertExpectations(t)
	itemRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

// 同一商品は数量加算。snapshot価格は最初に入れた時のまま
func TestCartUsecase_AddToCart_SameProductMerges(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)

	// 現在価格は1500に値上げ済みだが、明細のsnapshotは1200
	productRepo.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Name: "Coffee Beans", Price: 1500, Stock: 10, IsActive: true}, nil)

	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 2, UnitPriceSnapshot: 1200},
	}, nil).Once()
	itemRepo.On("UpsertByCartAndProduct", mock.Anything, int64(10), int64(101), int64(3), int64(1500)).Return(nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 5, UnitPriceSnapshot: 1200},
	}, nil).Once()

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	out, err := uc.AddToCart(ctx, 1, AddCartInput{ProductID: 101, Quantity: 3})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(5), out.Items[0].Quantity)

	// 合計はsnapshot価格で計算される
	assert.Equal(t, int64(1200), out.Items[0].Price)
	assert.Equal(t, int64(6000), out.Total)

	itemRepo.AssertExpectations(t)
}

// 既存数量＋追加分が在庫を超えたら弾く
func TestCartUsecase_AddToCart_StockExceeded(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	productRepo.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Name: "Coffee Beans", Price: 1500, Stock: 10, IsActive: true}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 101, Quantity: 8, UnitPriceSnapshot: 1500},
	}, nil)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	_, err := uc.AddToCart(ctx, 1, AddCartInput{ProductID: 101, Quantity: 3})
	assertErrContains(t, err, "stock exceeded")

	itemRepo.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	productRepo.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, IsActive: false}, nil)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	_, err := uc.AddToCart(ctx, 1, AddCartInput{ProductID: 101, Quantity: 1})
	assertErrContains(t, err, "invalid")

	itemRepo.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_UnknownProduct(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	productRepo.On("FindByID", mock.Anything, int64(999)).Return(model.Product{}, repo.ErrNotFound)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	_, err := uc.AddToCart(ctx, 1, AddCartInput{ProductID: 999, Quantity: 1})
	assertErrContains(t, err, "invalid")
}

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	_, err := uc.AddToCart(ctx, 1, AddCartInput{ProductID: 101, Quantity: 0})
	assertErrContains(t, err, "invalid quantity")

	// 入力で落ちるのでDBには触らない
	cartRepo.AssertNotCalled(t, "GetOrCreateActiveByUserID", mock.Anything, mock.Anything)
}

// =====================
// UpdateCartItem
// =====================

func TestCartUsecase_UpdateCartItem_Success(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	itemRepo.On("IsOwnedByUser", mock.Anything, int64(55), int64(1)).Return(true, nil)
	itemRepo.On("FindByID", mock.Anything, int64(55)).Return(model.CartItem{ID: 55, CartID: 10, ProductID: 101, Quantity: 2, UnitPriceSnapshot: 1200}, nil)
	productRepo.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Name: "Coffee Beans", Price: 1500, Stock: 10, IsActive: true}, nil)
	itemRepo.On("UpdateQuantity", mock.Anything, int64(55), int64(4)).Return(nil)

	cartRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 55, CartID: 10, ProductID: 101, Quantity: 4, UnitPriceSnapshot: 1200},
	}, nil)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	out, err := uc.UpdateCartItem(ctx, 1, 55, UpdateCartItemInput{Quantity: 4})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(4), out.Items[0].Quantity)
	assert.Equal(t, int64(4800), out.Total)

	itemRepo.AssertExpectations(t)
}

// 他人の明細は404扱い（存在も教えない）
func TestCartUsecase_UpdateCartItem_NotOwned(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	itemRepo.On("IsOwnedByUser", mock.Anything, int64(55), int64(2)).Return(false, nil)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	_, err := uc.UpdateCartItem(ctx, 2, 55, UpdateCartItemInput{Quantity: 1})
	assertErrContains(t, err, "not found")

	itemRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_UpdateCartItem_StockExceeded(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	itemRepo.On("IsOwnedByUser", mock.Anything, int64(55), int64(1)).Return(true, nil)
	itemRepo.On("FindByID", mock.Anything, int64(55)).Return(model.CartItem{ID: 55, CartID: 10, ProductID: 101, Quantity: 2, UnitPriceSnapshot: 1200}, nil)
	productRepo.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Stock: 10, IsActive: true}, nil)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	_, err := uc.UpdateCartItem(ctx, 1, 55, UpdateCartItemInput{Quantity: 99})
	assertErrContains(t, err, "stock exceeded")

	itemRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// DeleteCartItem / ClearCart
// =====================

func TestCartUsecase_DeleteCartItem_Success(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	itemRepo.On("IsOwnedByUser", mock.Anything, int64(55), int64(1)).Return(true, nil)
	itemRepo.On("DeleteByID", mock.Anything, int64(55)).Return(nil)
	cartRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	out, err := uc.DeleteCartItem(ctx, 1, 55)
	assert.NoError(t, err)
	assert.Len(t, out.Items, 0)
	assert.Equal(t, int64(0), out.Total)

	itemRepo.AssertExpectations(t)
}

func TestCartUsecase_DeleteCartItem_NotOwned(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	itemRepo.On("IsOwnedByUser", mock.Anything, int64(55), int64(2)).Return(false, nil)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	_, err := uc.DeleteCartItem(ctx, 2, 55)
	assertErrContains(t, err, "not found")

	itemRepo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestCartUsecase_ClearCart(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(CartProductRepoMock)

	cartRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	cartRepo.On("Clear", mock.Anything, int64(10)).Return(nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	uc := newCartUC(cartRepo, itemRepo, productRepo)

	out, err := uc.ClearCart(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, out.Items, 0)

	cartRepo.AssertExpectations(t)
	itemRepo.AssertExpectations(t)
}
