package api

import "github.com/RoyceAzure/lab/ordercenter/internal/api/handler"

type Server struct {
	CartHandler    *handler.CartHandler
	OrderHandler   *handler.OrderHandler
	StockHandler   *handler.StockHandler
	ProductHandler *handler.ProductHandler
}

func NewServer(
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	stockHandler *handler.StockHandler,
	productHandler *handler.ProductHandler,
) *Server {
	return &Server{
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
		StockHandler:   stockHandler,
		ProductHandler: productHandler,
	}
}
