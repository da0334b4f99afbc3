package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CartServiceTestSuite struct {
	suite.Suite
	stack  *testStack
	userID uuid.UUID
}

// SetupTest 在每個測試前執行
func (suite *CartServiceTestSuite) SetupTest() {
	suite.stack = newTestStack(suite.T())
	suite.userID = uuid.New()
}

func (suite *CartServiceTestSuite) TestGetCartCreatesEmptyCart() {
	snapshot, err := suite.stack.cartService.GetCart(context.Background(), suite.userID)

	suite.Require().NoError(err)
	suite.NotZero(snapshot.CartID)
	suite.Empty(snapshot.Items)
	suite.True(snapshot.Subtotal.IsZero())
	suite.Zero(snapshot.TotalItems)

	// 再讀一次應該拿到同一個cart
	again, err := suite.stack.cartService.GetCart(context.Background(), suite.userID)
	suite.Require().NoError(err)
	suite.Equal(snapshot.CartID, again.CartID)
}

func (suite *CartServiceTestSuite) TestAddToCartSnapshotMath() {
	ctx := context.Background()
	v1 := suite.stack.createVariant(suite.T(), 10, 150)
	v2 := suite.stack.createVariant(suite.T(), 10, 80)

	_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, v1.VariantID, 2)
	suite.Require().NoError(err)
	snapshot, err := suite.stack.cartService.AddToCart(ctx, suite.userID, v2.VariantID, 3)
	suite.Require().NoError(err)

	suite.Len(snapshot.Items, 2)
	suite.Equal(5, snapshot.TotalItems)
	// 2*150 + 3*80
	suite.True(snapshot.Subtotal.Equal(decimal.NewFromInt(540)),
		"subtotal應為540，實際為%s", snapshot.Subtotal)

	for _, item := range snapshot.Items {
		suite.True(item.InStock)
		suite.True(item.ItemTotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))
	}
}

func (suite *CartServiceTestSuite) TestAddToCartMergesQuantity() {
	ctx := context.Background()
	variant := suite.stack.createVariant(suite.T(), 10, 100)

	_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 2)
	suite.Require().NoError(err)
	snapshot, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 3)
	suite.Require().NoError(err)

	suite.Require().Len(snapshot.Items, 1, "同variant應合併為一筆")
	suite.Equal(5, snapshot.Items[0].Quantity)
}

func (suite *CartServiceTestSuite) TestAddToCartMergeExceedsStock() {
	ctx := context.Background()
	variant := suite.stack.createVariant(suite.T(), 5, 100)

	_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 3)
	suite.Require().NoError(err)

	_, err = suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 3)
	suite.ErrorIs(err, ErrInsufficientStock, "合併後超過庫存應被擋下")
}

func (suite *CartServiceTestSuite) TestAddToCartInvalidInput() {
	variant := suite.stack.createVariant(suite.T(), 5, 100)

	_, err := suite.stack.cartService.AddToCart(context.Background(), suite.userID, variant.VariantID, 0)
	suite.ErrorIs(err, ErrInvalidQuantity)

	_, err = suite.stack.cartService.AddToCart(context.Background(), suite.userID, 99999, 1)
	suite.ErrorIs(err, ErrVariantNotFound)
}

func (suite *CartServiceTestSuite) TestAddToCartInactiveVariant() {
	ctx := context.Background()
	variant := suite.stack.createVariant(suite.T(), 5, 100)
	suite.Require().NoError(suite.stack.dao.Model(&model.ProductVariant{}).
		Where("variant_id = ?", variant.VariantID).
		Update("status", model.VariantStatusInactive).Error)

	_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 1)
	suite.ErrorIs(err, ErrVariantNotAvailable)
}

func (suite *CartServiceTestSuite) TestValidateReportsIssues() {
	ctx := context.Background()
	okVariant := suite.stack.createVariant(suite.T(), 10, 100)
	lowVariant := suite.stack.createVariant(suite.T(), 5, 100)
	deadVariant := suite.stack.createVariant(suite.T(), 5, 100)

	_, err := suite.stack.cartService.AddToCart(ctx, suite.userID, okVariant.VariantID, 1)
	suite.Require().NoError(err)
	_, err = suite.stack.cartService.AddToCart(ctx, suite.userID, lowVariant.VariantID, 5)
	suite.Require().NoError(err)
	_, err = suite.stack.cartService.AddToCart(ctx, suite.userID, deadVariant.VariantID, 1)
	suite.Require().NoError(err)

	// 加入後狀況變化: 庫存被扣走、商品下架
	suite.Require().NoError(suite.stack.dao.Model(&model.ProductVariant{}).
		Where("variant_id = ?", lowVariant.VariantID).
		Update("stock_quantity", 2).Error)
	suite.Require().NoError(suite.stack.dao.Model(&model.ProductVariant{}).
		Where("variant_id = ?", deadVariant.VariantID).
		Update("status", model.VariantStatusInactive).Error)

	validation, err := suite.stack.cartService.Validate(ctx, suite.userID)
	suite.Require().NoError(err)

	suite.False(validation.Valid)
	suite.Require().Len(validation.Issues, 2)

	byVariant := map[uint]model.CartIssue{}
	for _, issue := range validation.Issues {
		byVariant[issue.VariantID] = issue
	}
	suite.Equal("insufficient stock", byVariant[lowVariant.VariantID].Reason)
	suite.Equal(2, byVariant[lowVariant.VariantID].Available)
	suite.Equal("product no longer available", byVariant[deadVariant.VariantID].Reason)
}

func (suite *CartServiceTestSuite) TestValidateEmptyCartIsValid() {
	validation, err := suite.stack.cartService.Validate(context.Background(), suite.userID)
	suite.Require().NoError(err)
	suite.True(validation.Valid)
	suite.Empty(validation.Issues)
}

func (suite *CartServiceTestSuite) TestUpdateItem() {
	ctx := context.Background()
	variant := suite.stack.createVariant(suite.T(), 10, 100)

	snapshot, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 1)
	suite.Require().NoError(err)

	updated, err := suite.stack.cartService.UpdateItem(ctx, suite.userID, snapshot.Items[0].CartItemID, 4)
	suite.Require().NoError(err)
	suite.Equal(4, updated.Items[0].Quantity)

	_, err = suite.stack.cartService.UpdateItem(ctx, suite.userID, snapshot.Items[0].CartItemID, 99)
	suite.ErrorIs(err, ErrInsufficientStock)
}

func (suite *CartServiceTestSuite) TestItemOwnershipEnforced() {
	ctx := context.Background()
	variant := suite.stack.createVariant(suite.T(), 10, 100)

	snapshot, err := suite.stack.cartService.AddToCart(ctx, suite.userID, variant.VariantID, 1)
	suite.Require().NoError(err)

	otherUser := uuid.New()
	_, err = suite.stack.cartService.UpdateItem(ctx, otherUser, snapshot.Items[0].CartItemID, 2)
	suite.ErrorIs(err, ErrCartItemNotFound, "別人的item不可操作")

	_, err = suite.stack.cartService.RemoveItem(ctx, otherUser, snapshot.Items[0].CartItemID)
	suite.ErrorIs(err, ErrCartItemNotFound)
}

func (suite *CartServiceTestSuite) TestRemoveItemAndClear() {
	ctx := context.Background()
	v1 := suite.stack.createVariant(suite.T(), 10, 100)
	v2 := suite.stack.createVariant(suite.T(), 10, 100)

	snapshot, err := suite.stack.cartService.AddToCart(ctx, suite.userID, v1.VariantID, 1)
	suite.Require().NoError(err)
	snapshot, err = suite.stack.cartService.AddToCart(ctx, suite.userID, v2.VariantID, 1)
	suite.Require().NoError(err)
	suite.Len(snapshot.Items, 2)

	snapshot, err = suite.stack.cartService.RemoveItem(ctx, suite.userID, snapshot.Items[0].CartItemID)
	suite.Require().NoError(err)
	suite.Len(snapshot.Items, 1)

	suite.Require().NoError(suite.stack.cartService.Clear(ctx, suite.userID))

	snapshot, err = suite.stack.cartService.GetCart(ctx, suite.userID)
	suite.Require().NoError(err)
	suite.Empty(snapshot.Items)
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}
