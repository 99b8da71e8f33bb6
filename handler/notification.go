package handler

import (
	"campus_canteen/constants"
	"campus_canteen/database"
	"campus_canteen/middleware"
	"campus_canteen/model"
	"campus_canteen/utils"
	"log"

	"github.com/gofiber/fiber/v2"
)

// createNotification writes a per-user inbox row and pushes it on the
// user's feed channel. This is the server-side trigger analogue: peers
// never write each other's notifications directly.
func createNotification(userId, title, message, notifType string, orderId *string) {
	n := model.Notification{
		UserId:  userId,
		Title:   title,
		Message: message,
		Type:    notifType,
		OrderId: orderId,
	}
	if err := database.DB.Create(&n).Error; err != nil {
		log.Printf("failed to create notification for %s: %v", userId, err)
		return
	}
	PublishNotificationEvent(&n)
}

// GetNotifications returns the latest 50 inbox entries plus the unread
// count.
func GetNotifications(c *fiber.Ctx) error {
	userId := middleware.UserId(c)

	var rows []model.Notification
	if err := database.DB.
		Where("user_id = ?", userId).
		Order("created_at desc").
		Limit(50).
		Find(&rows).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to load notifications", err, constants.KEY_TRANSIENT_ERROR)
	}

	var unread int64
	database.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Count(&unread)

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"notifications": rows,
		"unreadCount":   unread,
	})
}

// MarkNotificationRead flips one entry; only the owner may touch it.
func MarkNotificationRead(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	id := c.Params("notificationId")

	result := database.DB.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userId).
		Update("is_read", true)
	if result.Error != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update notification", result.Error, constants.KEY_TRANSIENT_ERROR)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Marked as read"})
}

func MarkAllNotificationsRead(c *fiber.Ctx) error {
	userId := middleware.UserId(c)

	if err := database.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Update("is_read", true).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update notifications", err, constants.KEY_TRANSIENT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "All marked as read"})
}

func DeleteNotification(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	id := c.Params("notificationId")

	result := database.DB.
		Where("id = ? AND user_id = ?", id, userId).
		Delete(&model.Notification{})
	if result.Error != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to delete notification", result.Error, constants.KEY_TRANSIENT_ERROR)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Notification deleted"})
}
