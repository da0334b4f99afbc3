package service

import (
	"context"
	"strings"
	"testing"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type OrderServiceTestSuite struct {
	suite.Suite
	stack   *testStack
	userID  uuid.UUID
	staffID uuid.UUID
}

// SetupTest 在每個測試前執行
func (suite *OrderServiceTestSuite) SetupTest() {
	suite.stack = newTestStack(suite.T())
	suite.userID = uuid.New()
	suite.staffID = uuid.New()
}

func (suite *OrderServiceTestSuite) defaultParams() model.CreateOrderParams {
	return model.CreateOrderParams{
		ShippingName:    "Nguyen Van A",
		ShippingPhone:   "0912345678",
		ShippingAddress: "123 Le Loi, HCMC",
		ShippingFee:     decimal.NewFromInt(30),
	}
}

// 準備購物車並建立訂單
func (suite *OrderServiceTestSuite) createOrderWithItems(quantity int, stock int, price int64) (*model.Order, *model.ProductVariant) {
	ctx := context.Background()
	variant := suite.stack.createVariant(suite.T(), stock, price)

	_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, quantity)
	suite.Require().NoError(err)

	order, err := suite.stack.orderService.CreateOrder(ctx, suite.userID, suite.defaultParams())
	suite.Require().NoError(err)
	return order, variant
}

func (suite *OrderServiceTestSuite) TestCreateOrder() {
	order, variant := suite.createOrderWithItems(2, 10, 150)

	suite.True(strings.HasPrefix(order.OrderCode, "ORD"))
	suite.Equal(model.OrderStatusPending, order.Status)
	suite.Equal(model.PaymentStatusUnpaid, order.PaymentStatus)
	suite.Equal(model.PaymentMethodCOD, order.PaymentMethod, "未指定付款方式預設COD")
	suite.Equal("+84912345678", order.ShippingPhone, "電話應正規化成+84格式")

	// 金額: 2*150 - 0 + 30
	suite.True(order.TotalAmount.Equal(decimal.NewFromInt(300)))
	suite.True(order.FinalAmount.Equal(decimal.NewFromInt(330)))

	suite.Require().Len(order.OrderItems, 1)
	suite.True(order.OrderItems[0].UnitPrice.Equal(decimal.NewFromInt(150)))
	suite.True(order.OrderItems[0].Subtotal.Equal(decimal.NewFromInt(300)))

	// 庫存扣減與異動紀錄
	suite.Equal(8, suite.stack.currentStock(suite.T(), variant.VariantID))
	movements, _, err := suite.stack.stockService.GetHistory(context.Background(), variant.VariantID, "", 1, 10)
	suite.Require().NoError(err)
	suite.Require().Len(movements, 1)
	suite.Equal(model.MovementTypeOut, movements[0].MovementType)
	suite.Require().NotNil(movements[0].ReferenceID)
	suite.Equal(order.OrderID, *movements[0].ReferenceID)

	// 購物車清空
	snapshot, err := suite.stack.cartService.GetCart(context.Background(), suite.userID)
	suite.Require().NoError(err)
	suite.Empty(snapshot.Items)

	// commit後發出通知
	suite.Require().Len(suite.stack.dispatcher.created, 1)
	suite.Equal(order.OrderCode, suite.stack.dispatcher.created[0].OrderCode)
}

func (suite *OrderServiceTestSuite) TestCreateOrderEmptyCart() {
	_, err := suite.stack.orderService.CreateOrder(context.Background(), suite.userID, suite.defaultParams())
	suite.ErrorIs(err, ErrEmptyCart)
	suite.Empty(suite.stack.dispatcher.created)
}

func (suite *OrderServiceTestSuite) TestCreateOrderInsufficientStockRollsBack() {
	ctx := context.Background()
	v1 := suite.stack.createVariant(suite.T(), 10, 100)
	v2 := suite.stack.createVariant(suite.T(), 5, 100)

	_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, v1.VariantID, 2)
	suite.Require().NoError(err)
	_, err = suite.stack.cartService.AddToCart(ctx, suite.userID, v2.VariantID, 5)
	suite.Require().NoError(err)

	// 加入購物車後庫存被別人買走
	suite.Require().NoError(suite.stack.dao.Model(&model.ProductVariant{}).
		Where("variant_id = ?", v2.VariantID).
		Update("stock_quantity", 1).Error)

	_, err = suite.stack.orderService.CreateOrder(ctx, suite.userID, suite.defaultParams())
	suite.ErrorIs(err, ErrInsufficientStock)

	// 整筆交易回滾: v1庫存不變、沒有訂單、購物車保留
	suite.Equal(10, suite.stack.currentStock(suite.T(), v1.VariantID))

	var orderCount int64
	suite.stack.dao.Model(&model.Order{}).Count(&orderCount)
	suite.Zero(orderCount)

	snapshot, err := suite.stack.cartService.GetCart(ctx, suite.userID)
	suite.Require().NoError(err)
	suite.Len(snapshot.Items, 2, "失敗時購物車不可被清空")
	suite.Empty(suite.stack.dispatcher.created)
}

func (suite *OrderServiceTestSuite) TestCreateOrderNegativeFinalAmount() {
	ctx := context.Background()
	variant := suite.stack.createVariant(suite.T(), 10, 100)
	_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 1)
	suite.Require().NoError(err)

	params := suite.defaultParams()
	params.ShippingFee = decimal.Zero
	params.DiscountAmount = decimal.NewFromInt(500)

	_, err = suite.stack.orderService.CreateOrder(ctx, suite.userID, params)
	suite.ErrorIs(err, ErrNegativeFinalAmount)
	suite.Equal(10, suite.stack.currentStock(suite.T(), variant.VariantID))
}

func (suite *OrderServiceTestSuite) TestCreateOrderUsesCurrentPrice() {
	ctx := context.Background()
	variant := suite.stack.createVariant(suite.T(), 10, 100)

	_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 1)
	suite.Require().NoError(err)

	// 加入購物車後調價，結帳以現價為準
	suite.Require().NoError(suite.stack.dao.Model(&model.ProductVariant{}).
		Where("variant_id = ?", variant.VariantID).
		Update("price", decimal.NewFromInt(120)).Error)

	order, err := suite.stack.orderService.CreateOrder(ctx, suite.userID, suite.defaultParams())
	suite.Require().NoError(err)
	suite.True(order.OrderItems[0].UnitPrice.Equal(decimal.NewFromInt(120)))
	suite.True(order.TotalAmount.Equal(decimal.NewFromInt(120)))
}

func (suite *OrderServiceTestSuite) TestCreateOrderDispatchFailureSwallowed() {
	ctx := context.Background()
	variant := suite.stack.createVariant(suite.T(), 10, 100)
	_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 1)
	suite.Require().NoError(err)

	suite.stack.dispatcher.fail = true

	order, err := suite.stack.orderService.CreateOrder(ctx, suite.userID, suite.defaultParams())
	suite.Require().NoError(err, "通知失敗不可影響已成立的訂單")
	suite.NotZero(order.OrderID)
	suite.Equal(9, suite.stack.currentStock(suite.T(), variant.VariantID))
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatusHappyPath() {
	ctx := context.Background()
	order, _ := suite.createOrderWithItems(1, 10, 100)

	for _, next := range []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
	} {
		updated, err := suite.stack.orderService.UpdateOrderStatus(ctx, order.OrderID, next, suite.staffID, "")
		suite.Require().NoError(err)
		suite.Equal(next, updated.Status)
	}

	final, err := suite.stack.orderService.GetOrderByID(ctx, order.OrderID, nil)
	suite.Require().NoError(err)
	suite.NotNil(final.ConfirmedAt)
	suite.NotNil(final.ShippedAt)
	suite.NotNil(final.DeliveredAt)
	suite.Equal(model.PaymentStatusPaid, final.PaymentStatus, "delivered應同時標記已付款")
	suite.Require().NotNil(final.ProcessedBy)
	suite.Equal(suite.staffID, *final.ProcessedBy)

	histories, err := suite.stack.orderService.GetStatusHistory(ctx, order.OrderID)
	suite.Require().NoError(err)
	suite.Len(histories, 4)
	suite.Equal(model.OrderStatusPending, histories[0].OldStatus)
	suite.Equal(model.OrderStatusDelivered, histories[3].NewStatus)

	suite.Len(suite.stack.dispatcher.statusChanged, 4)
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatusRejectsInvalidTransition() {
	ctx := context.Background()
	order, _ := suite.createOrderWithItems(1, 10, 100)

	// pending 不能直接 shipped
	_, err := suite.stack.orderService.UpdateOrderStatus(ctx, order.OrderID, model.OrderStatusShipped, suite.staffID, "")
	suite.ErrorIs(err, ErrInvalidStatusTransition)

	// 未知狀態
	_, err = suite.stack.orderService.UpdateOrderStatus(ctx, order.OrderID, "returned", suite.staffID, "")
	suite.ErrorIs(err, ErrInvalidStatus)

	// 終態不能再轉移
	_, err = suite.stack.orderService.UpdateOrderStatus(ctx, order.OrderID, model.OrderStatusCancelled, suite.staffID, "cancel")
	suite.Require().NoError(err)
	_, err = suite.stack.orderService.UpdateOrderStatus(ctx, order.OrderID, model.OrderStatusConfirmed, suite.staffID, "")
	suite.ErrorIs(err, ErrInvalidStatusTransition)
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatusNotFound() {
	_, err := suite.stack.orderService.UpdateOrderStatus(context.Background(), 99999, model.OrderStatusConfirmed, suite.staffID, "")
	suite.ErrorIs(err, ErrOrderNotFound)
}

func (suite *OrderServiceTestSuite) TestCancelRestoresStock() {
	ctx := context.Background()
	order, variant := suite.createOrderWithItems(3, 10, 100)
	suite.Equal(7, suite.stack.currentStock(suite.T(), variant.VariantID))

	cancelled, err := suite.stack.orderService.CancelOrder(ctx, order.OrderID, suite.userID, "changed my mind")
	suite.Require().NoError(err)

	suite.Equal(model.OrderStatusCancelled, cancelled.Status)
	suite.Equal("changed my mind", cancelled.CancelReason)
	suite.NotNil(cancelled.CancelledAt)
	suite.Equal(10, suite.stack.currentStock(suite.T(), variant.VariantID), "取消後庫存應補回")

	// 補回也要留異動紀錄
	movements, _, err := suite.stack.stockService.GetHistory(ctx, variant.VariantID, model.MovementTypeIn, 1, 10)
	suite.Require().NoError(err)
	suite.Require().Len(movements, 1)
	suite.Equal(model.StockRefOrderCancel, movements[0].ReferenceType)
}

func (suite *OrderServiceTestSuite) TestCancelShippedRejected() {
	ctx := context.Background()
	order, _ := suite.createOrderWithItems(1, 10, 100)

	for _, next := range []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
	} {
		_, err := suite.stack.orderService.UpdateOrderStatus(ctx, order.OrderID, next, suite.staffID, "")
		suite.Require().NoError(err)
	}

	_, err := suite.stack.orderService.CancelOrder(ctx, order.OrderID, suite.userID, "too late")
	suite.ErrorIs(err, ErrOrderNotCancellable)
}

func (suite *OrderServiceTestSuite) TestCancelOtherUsersOrderRejected() {
	order, _ := suite.createOrderWithItems(1, 10, 100)

	_, err := suite.stack.orderService.CancelOrder(context.Background(), order.OrderID, uuid.New(), "not mine")
	suite.ErrorIs(err, ErrOrderNotFound)
}

func (suite *OrderServiceTestSuite) TestGetOrderByIDOwnershipScope() {
	ctx := context.Background()
	order, _ := suite.createOrderWithItems(1, 10, 100)

	// 擁有者可讀
	got, err := suite.stack.orderService.GetOrderByID(ctx, order.OrderID, &suite.userID)
	suite.Require().NoError(err)
	suite.Equal(order.OrderID, got.OrderID)

	// 其他用戶不可讀
	otherUser := uuid.New()
	_, err = suite.stack.orderService.GetOrderByID(ctx, order.OrderID, &otherUser)
	suite.ErrorIs(err, ErrOrderNotFound)

	// staff視角不限定擁有者
	got, err = suite.stack.orderService.GetOrderByID(ctx, order.OrderID, nil)
	suite.Require().NoError(err)
	suite.Equal(order.OrderID, got.OrderID)
}

func (suite *OrderServiceTestSuite) TestMilestoneTimestampSetOnce() {
	ctx := context.Background()
	order, _ := suite.createOrderWithItems(1, 10, 100)

	_, err := suite.stack.orderService.UpdateOrderStatus(ctx, order.OrderID, model.OrderStatusConfirmed, suite.staffID, "")
	suite.Require().NoError(err)

	first, err := suite.stack.orderService.GetOrderByID(ctx, order.OrderID, nil)
	suite.Require().NoError(err)
	suite.Require().NotNil(first.ConfirmedAt)
	confirmedAt := *first.ConfirmedAt

	// 繞過服務層把狀態轉回pending再confirm一次，timestamp不應被覆寫
	suite.Require().NoError(suite.stack.dao.Model(&model.Order{}).
		Where("order_id = ?", order.OrderID).
		Update("status", model.OrderStatusPending).Error)
	_, err = suite.stack.orderService.UpdateOrderStatus(ctx, order.OrderID, model.OrderStatusConfirmed, suite.staffID, "")
	suite.Require().NoError(err)

	second, err := suite.stack.orderService.GetOrderByID(ctx, order.OrderID, nil)
	suite.Require().NoError(err)
	suite.Require().NotNil(second.ConfirmedAt)
	suite.True(confirmedAt.Equal(*second.ConfirmedAt), "milestone timestamp只在第一次到達時寫入")
}

func (suite *OrderServiceTestSuite) TestGetOrdersByUserID() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		variant := suite.stack.createVariant(suite.T(), 10, 100)
		_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 1)
		suite.Require().NoError(err)
		_, err = suite.stack.orderService.CreateOrder(ctx, suite.userID, suite.defaultParams())
		suite.Require().NoError(err)
	}

	orders, total, err := suite.stack.orderService.GetOrdersByUserID(ctx, suite.userID, "", 1, 2)
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(orders, 2)
}

func (suite *OrderServiceTestSuite) TestStatusChangeDispatchCarriesOldStatus() {
	ctx := context.Background()
	order, _ := suite.createOrderWithItems(1, 10, 100)

	_, err := suite.stack.orderService.UpdateOrderStatus(ctx, order.OrderID, model.OrderStatusConfirmed, suite.staffID, "")
	suite.Require().NoError(err)

	suite.Require().Len(suite.stack.dispatcher.oldStatuses, 1)
	suite.Equal(model.OrderStatusPending, suite.stack.dispatcher.oldStatuses[0])
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
