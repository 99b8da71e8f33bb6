package handler

import (
	"campus_canteen/constants"
	"campus_canteen/database"
	"campus_canteen/middleware"
	"campus_canteen/model"
	"campus_canteen/utils"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetMyOrders lists the customer's own orders, newest first.
func GetMyOrders(c *fiber.Ctx) error {
	userId := middleware.UserId(c)

	var orders []model.Order
	if err := database.DB.
		Preload("Items").
		Where("user_id = ?", userId).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to load orders", err, constants.KEY_TRANSIENT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, orders)
}

// GetShopOrders lists orders against the shopkeeper's shop.
func GetShopOrders(c *fiber.Ctx) error {
	userId := middleware.UserId(c)

	shop, err := findShopByOwner(userId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You do not have a shop", err)
	}

	var orders []model.Order
	if err := database.DB.
		Preload("Items").
		Where("shop_id = ?", shop.ID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to load orders", err, constants.KEY_TRANSIENT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, orders)
}

// CreateOrder persists the order and its items as one transaction,
// re-pricing every line from the authoritative menu. Partial creation is
// impossible: any line failure rolls the whole order back.
func CreateOrder(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	input, ok := c.Locals("input").(*model.CreateOrderInput)
	if !ok {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid order input", nil, constants.KEY_VALIDATION_ERROR)
	}

	var order model.Order
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var shop model.Shop
		if err := tx.First(&shop, "id = ? AND is_active = ?", input.ShopId, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrShopNotFound
			}
			return err
		}
		if !shop.IsOpen {
			return model.ErrShopClosed
		}

		items := make([]model.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			// Lock the menu row so a concurrent out-of-stock toggle
			// cannot slip between the check and the insert.
			var menuItem model.MenuItem
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&menuItem, "id = ? AND shop_id = ?", line.MenuItemId, shop.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", model.ErrUnknownItem, line.MenuItemId)
				}
				return err
			}

			item, err := model.BuildOrderItem(menuItem, line.Quantity)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		order = model.Order{
			UserId:        userId,
			ShopId:        shop.ID,
			Status:        constants.ORDER_PENDING,
			PaymentStatus: constants.PAYMENT_UNPAID,
			Total:         model.OrderTotal(items),
			Notes:         utils.StringPtr(input.Notes),
			Items:         items,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		if isOrderValidationError(err) {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Could not place order", err, constants.KEY_VALIDATION_ERROR)
		}
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to place order", err, constants.KEY_TRANSIENT_ERROR)
	}

	PublishOrderEvent(EventInsert, &order, nil)
	if shop, err := findShopById(order.ShopId); err == nil {
		createNotification(shop.OwnerUserId, "New Order", "A new order has been placed.", constants.NOTIFICATION_ORDER, &order.ID)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{"orderId": order.ID})
}

// isOrderValidationError separates failures caused by the request from
// store failures, so the latter surface as retryable instead of telling
// the user their order is invalid.
func isOrderValidationError(err error) bool {
	for _, sentinel := range []error{
		model.ErrShopNotFound, model.ErrShopClosed, model.ErrUnknownItem,
		model.ErrItemUnavailable, model.ErrBadQuantity,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// UpdateOrderStatus advances an order along the transition graph. Only
// the shop owner may advance; the owning customer may only cancel while
// pending (see CancelOrder). The write is conditioned on the status we
// validated against, so a concurrent transition surfaces as a conflict
// instead of silently overwriting.
func UpdateOrderStatus(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	orderId := c.Params("orderId")

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid input", err, constants.KEY_VALIDATION_ERROR)
	}

	var order model.Order
	if err := database.DB.Preload("Shop").First(&order, "id = ?", orderId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Order not found", err)
	}

	if order.Shop == nil || order.Shop.OwnerUserId != userId {
		return utils.ErrorResponseHaveKey(c, fiber.StatusForbidden, constants.FORBIDDEN, nil, constants.KEY_AUTHORIZATION_ERROR)
	}

	if err := order.NextStatusAllowed(body.Status, order.Shop.ManualPayment); err != nil {
		if errors.Is(err, model.ErrPaymentGate) {
			return utils.ErrorResponseHaveKey(c, fiber.StatusConflict, "Order is unpaid", err, constants.KEY_CONFLICT_ERROR)
		}
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid status change", err, constants.KEY_VALIDATION_ERROR)
	}

	oldStatus := order.Status
	result := database.DB.Model(&model.Order{}).
		Where("id = ? AND status = ?", order.ID, oldStatus).
		Update("status", body.Status)
	if result.Error != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update order", result.Error, constants.KEY_TRANSIENT_ERROR)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponseHaveKey(c, fiber.StatusConflict, "Order changed while you were updating it", nil, constants.KEY_CONFLICT_ERROR)
	}

	order.Status = body.Status
	database.DB.First(&order, "id = ?", order.ID)
	PublishOrderEvent(EventUpdate, &order, map[string]any{"status": oldStatus})
	notifyStatusChange(&order)

	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// CancelOrder is the customer's conditional cancel: it succeeds only if
// the row is still pending at the moment of the write. Zero affected
// rows means the shop got there first.
func CancelOrder(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	orderId := c.Params("orderId")

	var order model.Order
	if err := database.DB.First(&order, "id = ? AND user_id = ?", orderId, userId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Order not found", err)
	}

	cancelled, err := cancelIfPending(&order)
	if err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to cancel order", err, constants.KEY_TRANSIENT_ERROR)
	}
	if !cancelled {
		return utils.ErrorResponseHaveKey(c, fiber.StatusConflict,
			"Order is no longer pending, refresh to see its current state", nil, constants.KEY_CONFLICT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Order cancelled"})
}

// cancelIfPending runs the compare-and-swap cancel shared by the manual
// path and the staleness sweeper, then publishes the change.
func cancelIfPending(order *model.Order) (bool, error) {
	oldStatus := order.Status
	result := database.DB.Model(&model.Order{}).
		Where("id = ? AND status = ?", order.ID, constants.ORDER_PENDING).
		Update("status", constants.ORDER_CANCELLED)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	order.Status = constants.ORDER_CANCELLED
	database.DB.First(order, "id = ?", order.ID)
	PublishOrderEvent(EventUpdate, order, map[string]any{"status": oldStatus})
	notifyStatusChange(order)
	return true, nil
}

// UpdatePaymentStatus flips the order to paid; shop owner only, and only
// out of unpaid.
func UpdatePaymentStatus(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	orderId := c.Params("orderId")

	var order model.Order
	if err := database.DB.Preload("Shop").First(&order, "id = ?", orderId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Order not found", err)
	}
	if order.Shop == nil || order.Shop.OwnerUserId != userId {
		return utils.ErrorResponseHaveKey(c, fiber.StatusForbidden, constants.FORBIDDEN, nil, constants.KEY_AUTHORIZATION_ERROR)
	}

	if err := order.PaymentTransitionAllowed(constants.PAYMENT_PAID); err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid payment change", err, constants.KEY_VALIDATION_ERROR)
	}

	result := database.DB.Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, constants.PAYMENT_UNPAID).
		Updates(map[string]any{"payment_status": constants.PAYMENT_PAID, "payment_verified": true})
	if result.Error != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update payment", result.Error, constants.KEY_TRANSIENT_ERROR)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponseHaveKey(c, fiber.StatusConflict, "Payment already verified", nil, constants.KEY_CONFLICT_ERROR)
	}

	database.DB.First(&order, "id = ?", order.ID)
	// old always carries the prior status so listeners can tell this
	// apart from a fulfillment transition.
	PublishOrderEvent(EventUpdate, &order, map[string]any{
		"status":        order.Status,
		"paymentStatus": constants.PAYMENT_UNPAID,
	})
	createNotification(order.UserId, "Payment Verified", "Your payment has been confirmed by the shop.", constants.NOTIFICATION_PAYMENT, &order.ID)

	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// SubmitPaymentProof records the customer's UTR and screenshot while the
// order is accepted and unpaid.
func SubmitPaymentProof(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	orderId := c.Params("orderId")

	var body struct {
		Utr           string `json:"utr"`
		ScreenshotUrl string `json:"screenshotUrl"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid input", err, constants.KEY_VALIDATION_ERROR)
	}
	if body.Utr == "" && body.ScreenshotUrl == "" {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Provide a UTR or a screenshot", nil, constants.KEY_VALIDATION_ERROR)
	}

	var order model.Order
	if err := database.DB.First(&order, "id = ? AND user_id = ?", orderId, userId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Order not found", err)
	}
	if order.Status != constants.ORDER_ACCEPTED || order.PaymentStatus != constants.PAYMENT_UNPAID {
		return utils.ErrorResponseHaveKey(c, fiber.StatusConflict,
			"Payment proof can only be submitted for accepted, unpaid orders", nil, constants.KEY_CONFLICT_ERROR)
	}

	prevUtr := ""
	if order.Utr != nil {
		prevUtr = *order.Utr
	}
	prevScreenshot := ""
	if order.PaymentScreenshotUrl != nil {
		prevScreenshot = *order.PaymentScreenshotUrl
	}

	updates := map[string]any{}
	if body.Utr != "" {
		updates["utr"] = body.Utr
	}
	if body.ScreenshotUrl != "" {
		updates["payment_screenshot_url"] = body.ScreenshotUrl
	}
	if err := database.DB.Model(&order).Updates(updates).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to save payment proof", err, constants.KEY_TRANSIENT_ERROR)
	}

	database.DB.First(&order, "id = ?", order.ID)
	PublishOrderEvent(EventUpdate, &order, map[string]any{
		"status":               order.Status,
		"utr":                  prevUtr,
		"paymentScreenshotUrl": prevScreenshot,
	})

	if shop, err := findShopById(order.ShopId); err == nil {
		createNotification(shop.OwnerUserId, "Verify Payment",
			"A customer has submitted payment proof. Please verify.", constants.NOTIFICATION_PAYMENT, &order.ID)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

var statusNotifications = map[string]string{
	constants.ORDER_ACCEPTED:  "Your order has been accepted!",
	constants.ORDER_REJECTED:  "Your order was rejected",
	constants.ORDER_PREPARING: "Your order is being prepared",
	constants.ORDER_READY:     "Your order is ready for pickup!",
	constants.ORDER_COMPLETED: "Order completed",
	constants.ORDER_CANCELLED: "Order was cancelled",
}

func notifyStatusChange(order *model.Order) {
	message, ok := statusNotifications[order.Status]
	if !ok {
		return
	}
	createNotification(order.UserId, "Order Update", message, constants.NOTIFICATION_ORDER, &order.ID)
}

func findShopById(shopId string) (*model.Shop, error) {
	var shop model.Shop
	if err := database.DB.First(&shop, "id = ?", shopId).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func findShopByOwner(userId string) (*model.Shop, error) {
	var shop model.Shop
	if err := database.DB.Where("owner_user_id = ? AND is_active = ?", userId, true).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}
