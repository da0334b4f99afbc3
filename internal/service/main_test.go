package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeDispatcher 記錄發送的事件，可切換成故障模式
type fakeDispatcher struct {
	created       []*model.Order
	statusChanged []*model.Order
	oldStatuses   []model.OrderStatus
	fail          bool
}

func (d *fakeDispatcher) DispatchOrderCreated(ctx context.Context, order *model.Order) error {
	if d.fail {
		return errors.New("broker unavailable")
	}
	d.created = append(d.created, order)
	return nil
}

func (d *fakeDispatcher) DispatchOrderStatusChanged(ctx context.Context, order *model.Order, oldStatus model.OrderStatus) error {
	if d.fail {
		return errors.New("broker unavailable")
	}
	d.statusChanged = append(d.statusChanged, order)
	d.oldStatuses = append(d.oldStatuses, oldStatus)
	return nil
}

func (d *fakeDispatcher) Close() error { return nil }

// testStack 一組可直接測試的完整service組合，掛在sqlite in-memory上
type testStack struct {
	dao         *db.DbDao
	variantRepo db.IVariantRepository
	cartRepo    db.ICartRepository
	orderRepo   db.IOrderRepository
	dispatcher  *fakeDispatcher

	stockService *StockService
	cartService  *CartService
	orderService *OrderService
}

func newTestStack(t *testing.T) *testStack {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	dao := db.NewDbDao(conn)
	require.NoError(t, dao.InitMigrate())

	variantRepo := db.NewVariantRepo(dao)
	cartRepo := db.NewCartRepo(dao)
	orderRepo := db.NewOrderRepo(dao)
	dispatcher := &fakeDispatcher{}
	testLogger := zerolog.New(io.Discard)

	stockService := NewStockService(dao, variantRepo)
	cartService := NewCartService(cartRepo, variantRepo)
	orderService := NewOrderService(dao, orderRepo, variantRepo, cartRepo,
		cartService, stockService, dispatcher, &testLogger)

	return &testStack{
		dao:          dao,
		variantRepo:  variantRepo,
		cartRepo:     cartRepo,
		orderRepo:    orderRepo,
		dispatcher:   dispatcher,
		stockService: stockService,
		cartService:  cartService,
		orderService: orderService,
	}
}

func (s *testStack) createVariant(t *testing.T, stock int, price int64) *model.ProductVariant {
	product := &model.Product{
		Code:     fmt.Sprintf("SHOE-%s", uuid.NewString()[:8]),
		Name:     fmt.Sprintf("Shoe %s", uuid.NewString()[:4]),
		Category: "sneakers",
		Status:   model.ProductStatusActive,
	}
	require.NoError(t, s.dao.Create(product).Error)

	variant := &model.ProductVariant{
		ProductID:     product.ProductID,
		SKU:           fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		Size:          "42",
		Color:         "black",
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		Status:        model.VariantStatusActive,
	}
	require.NoError(t, s.variantRepo.CreateVariant(context.Background(), variant))
	return variant
}

func (s *testStack) currentStock(t *testing.T, variantID uint) int {
	variant, err := s.variantRepo.GetVariantByID(context.Background(), variantID)
	require.NoError(t, err)
	return variant.StockQuantity
}
