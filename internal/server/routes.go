package server

import (
	"shopapi/internal/handler"
	"shopapi/internal/middleware"
	"shopapi/internal/security"
)

// 全ハンドラをまとめて受け取る
type Handlers struct {
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	Category      *handler.CategoryHandler
	Brand         *handler.BrandHandler
	Cart          *handler.CartHandler
	Address       *handler.AddressHandler
	AdminProduct  *handler.AdminProductHandler
	AdminCategory *handler.AdminCategoryHandler
	AdminBrand    *handler.AdminBrandHandler
	AdminUser     *handler.AdminUserHandler
	AdminAuditLog *handler.AdminAuditLogHandler
}

// RegisterRoutesは各ハンドラのルートをechoに登録する
func (s *Server) RegisterRoutes(h Handlers, tokens *security.TokenManager, limiter middleware.Limiter) {
	h.Auth.RegisterRoutes(s.e, s.cfg, tokens, limiter)

	h.Product.RegisterRoutes(s.e)
	h.Category.RegisterRoutes(s.e)
	h.Brand.RegisterRoutes(s.e)

	h.Cart.RegisterRoutes(s.e, tokens)
	h.Address.RegisterRoutes(s.e, tokens)

	h.AdminProduct.RegisterRoutes(s.e, tokens)
	h.AdminCategory.RegisterRoutes(s.e, tokens)
	h.AdminBrand.RegisterRoutes(s.e, tokens)
	h.AdminUser.RegisterRoutes(s.e, tokens)
	h.AdminAuditLog.RegisterRoutes(s.e, tokens)
}
