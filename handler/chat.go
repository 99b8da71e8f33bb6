package handler

import (
	"campus_canteen/constants"
	"campus_canteen/database"
	"campus_canteen/middleware"
	"campus_canteen/model"
	"campus_canteen/utils"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// chatParties resolves the two sides of an order's chat and whether the
// caller is one of them.
func chatParties(order *model.Order, userId, role string) (peerUserId string, isParty bool) {
	if order.Shop == nil {
		return "", false
	}
	if order.UserId == userId {
		return order.Shop.OwnerUserId, true
	}
	if role == constants.ROLE_SHOPKEEPER && order.Shop.OwnerUserId == userId {
		return order.UserId, true
	}
	return "", false
}

// GetOrderMessages returns the order's chat history in creation order.
func GetOrderMessages(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	role := middleware.Role(c)
	orderId := c.Params("orderId")

	var order model.Order
	if err := database.DB.Preload("Shop").First(&order, "id = ?", orderId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Order not found", err)
	}
	if _, isParty := chatParties(&order, userId, role); !isParty {
		return utils.ErrorResponseHaveKey(c, fiber.StatusForbidden, constants.FORBIDDEN, nil, constants.KEY_AUTHORIZATION_ERROR)
	}

	var messages []model.OrderMessage
	if err := database.DB.
		Where("order_id = ?", orderId).
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to load messages", err, constants.KEY_TRANSIENT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, messages)
}

// SendOrderMessage appends a chat line and pushes it on both delivery
// paths: the durable feed and the low-latency broadcast. The confirmed
// row (authoritative id and timestamp) goes back to the sender so the
// client can swap out its optimistic copy.
func SendOrderMessage(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	role := middleware.Role(c)
	orderId := c.Params("orderId")

	var body struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid input", err, constants.KEY_VALIDATION_ERROR)
	}
	text := strings.TrimSpace(body.Message)
	if text == "" {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Message is empty", nil, constants.KEY_VALIDATION_ERROR)
	}
	if len(text) > constants.MAX_MESSAGE_LENGTH {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest,
			fmt.Sprintf("Message exceeds %d characters", constants.MAX_MESSAGE_LENGTH), nil, constants.KEY_VALIDATION_ERROR)
	}

	var order model.Order
	if err := database.DB.Preload("Shop").First(&order, "id = ?", orderId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Order not found", err)
	}
	peerUserId, isParty := chatParties(&order, userId, role)
	if !isParty {
		return utils.ErrorResponseHaveKey(c, fiber.StatusForbidden, constants.FORBIDDEN, nil, constants.KEY_AUTHORIZATION_ERROR)
	}

	msg := model.OrderMessage{
		OrderId:      orderId,
		SenderUserId: userId,
		SenderRole:   role,
		Message:      text,
	}
	if err := database.DB.Create(&msg).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to send message", err, constants.KEY_TRANSIENT_ERROR)
	}

	PublishMessageEvent(EventInsert, &msg)
	BroadcastChatMessage(&msg)

	preview := messagePreview(text)
	createNotification(peerUserId, "New Message", preview, constants.NOTIFICATION_CHAT, &order.ID)

	return utils.SuccessResponse(c, fiber.StatusCreated, msg)
}

// messagePreview shortens a chat body for the notification toast.
// Truncation counts runes so a multi-byte character is never split.
func messagePreview(s string) string {
	runes := []rune(s)
	if len(runes) > 80 {
		return string(runes[:80]) + "…"
	}
	return s
}

// MarkMessagesRead marks everything the peer sent as read.
func MarkMessagesRead(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	role := middleware.Role(c)
	orderId := c.Params("orderId")

	var order model.Order
	if err := database.DB.Preload("Shop").First(&order, "id = ?", orderId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Order not found", err)
	}
	if _, isParty := chatParties(&order, userId, role); !isParty {
		return utils.ErrorResponseHaveKey(c, fiber.StatusForbidden, constants.FORBIDDEN, nil, constants.KEY_AUTHORIZATION_ERROR)
	}

	if err := database.DB.Model(&model.OrderMessage{}).
		Where("order_id = ? AND sender_user_id <> ? AND is_read = ?", orderId, userId, false).
		Update("is_read", true).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to mark messages read", err, constants.KEY_TRANSIENT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Messages marked read"})
}
