package router

import (
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/api"
	m "github.com/RoyceAzure/lab/ordercenter/internal/api/middleware"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
	"github.com/RoyceAzure/rj/api/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func SetupRouter(
	server *api.Server,
	tokenMaker token.Maker[uuid.UUID],
	userService service.IUserService,
	limiter *m.RedisTokenBucket,
	logger *zerolog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(m.AuthPayloadMiddleware(tokenMaker))
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RateLimitMiddleware(limiter))

	staffOnly := m.RoleMiddleware(userService, model.RoleAdmin, model.RoleStaff)
	adminOnly := m.RoleMiddleware(userService, model.RoleAdmin)

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		//商品查詢不用登入
		r.Route("/products", func(r chi.Router) {
			r.Get("/", server.ProductHandler.List)
			r.Get("/{productId}", server.ProductHandler.Get)
		})

		//購物車相關路由
		r.Group(func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", server.CartHandler.GetCart)
				r.Delete("/", server.CartHandler.Clear)
				r.Get("/validate", server.CartHandler.Validate)
				r.Post("/items", server.CartHandler.AddItem)
				r.Put("/items/{cartItemId}", server.CartHandler.UpdateItem)
				r.Delete("/items/{cartItemId}", server.CartHandler.RemoveItem)
			})
		})

		//訂單相關路由
		r.Group(func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Route("/orders", func(r chi.Router) {
				r.Post("/", server.OrderHandler.Create)
				r.Get("/", server.OrderHandler.List)
				r.Get("/{orderId}", server.OrderHandler.Get)
				r.Put("/{orderId}/cancel", server.OrderHandler.Cancel)
			})
		})

		//後台訂單管理
		r.Group(func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Use(staffOnly)
			r.Route("/staff/orders", func(r chi.Router) {
				r.Get("/", server.OrderHandler.StaffList)
				r.Put("/{orderId}/status", server.OrderHandler.UpdateStatus)
				r.Get("/{orderId}/history", server.OrderHandler.StatusHistory)
			})
		})

		//庫存管理只開放admin
		r.Group(func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Use(adminOnly)
			r.Route("/admin/stock", func(r chi.Router) {
				r.Put("/{variantId}", server.StockHandler.Adjust)
				r.Get("/{variantId}/movements", server.StockHandler.Movements)
			})
		})
	})

	// 在設置完所有路由後打印路由樹
	fmt.Println(chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		fmt.Printf("%s %s\n", method, route)
		return nil
	}))
	return r
}
