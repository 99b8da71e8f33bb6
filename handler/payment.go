package handler

import (
	"campus_canteen/constants"
	"campus_canteen/database"
	"campus_canteen/helper"
	"campus_canteen/middleware"
	"campus_canteen/model"
	"campus_canteen/utils"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/gofiber/fiber/v2"
)

// GetPaymentQR renders the UPI deep-link QR for an order so the customer
// can pay the shop directly. Only the owning customer gets the code.
func GetPaymentQR(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	orderId := c.Params("orderId")

	var order model.Order
	if err := database.DB.Preload("Shop").First(&order, "id = ? AND user_id = ?", orderId, userId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Order not found", err)
	}
	if order.Shop == nil || order.Shop.UpiId == nil || *order.Shop.UpiId == "" {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest,
			"This shop has not configured UPI payments", nil, constants.KEY_VALIDATION_ERROR)
	}
	if order.PaymentStatus == constants.PAYMENT_PAID {
		return utils.ErrorResponseHaveKey(c, fiber.StatusConflict, "Order is already paid", nil, constants.KEY_CONFLICT_ERROR)
	}

	payeeName := order.Shop.ShopName
	if order.Shop.UpiName != nil && *order.Shop.UpiName != "" {
		payeeName = *order.Shop.UpiName
	}
	link := utils.BuildUpiLink(*order.Shop.UpiId, payeeName, order.Total,
		fmt.Sprintf("Order %s", strings.ToUpper(order.ID[:8])))

	qrBytes, err := utils.GenerateQRCode(link, 400)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate QR code", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"upiLink": link,
		"qrCode":  "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrBytes),
	})
}

// GenerateUploadSignature signs cloudinary upload params so the client
// can upload the payment screenshot directly to storage.
func GenerateUploadSignature(c *fiber.Ctx) error {
	type SigParams struct {
		Folder   string `json:"folder"`
		PublicID string `json:"public_id"`
	}

	var params SigParams
	if err := c.BodyParser(&params); err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid params", err, constants.KEY_VALIDATION_ERROR)
	}

	timestamp := time.Now().Unix()

	signable := url.Values{}
	if params.Folder != "" {
		signable.Set("folder", params.Folder)
	}
	if params.PublicID != "" {
		signable.Set("public_id", params.PublicID)
	}
	signable.Set("timestamp", fmt.Sprintf("%d", timestamp))

	signature, err := api.SignParameters(signable, os.Getenv("CLOUDINARY_API_SECRET"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to sign upload params", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"signature": signature,
		"timestamp": timestamp,
		"apiKey":    os.Getenv("CLOUDINARY_API_KEY"),
		"cloudName": os.Getenv("CLOUDINARY_CLOUD_NAME"),
	})
}

// UploadPaymentScreenshot accepts a multipart screenshot, stores it and
// records the proof on the order in one go (server-side alternative to
// the signed direct upload).
func UploadPaymentScreenshot(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	orderId := c.Params("orderId")

	var order model.Order
	if err := database.DB.First(&order, "id = ? AND user_id = ?", orderId, userId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Order not found", err)
	}
	if order.Status != constants.ORDER_ACCEPTED || order.PaymentStatus != constants.PAYMENT_UNPAID {
		return utils.ErrorResponseHaveKey(c, fiber.StatusConflict,
			"Payment proof can only be submitted for accepted, unpaid orders", nil, constants.KEY_CONFLICT_ERROR)
	}

	file, err := c.FormFile("screenshot")
	if err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Screenshot file is required", err, constants.KEY_VALIDATION_ERROR)
	}

	screenshotUrl, err := helper.UploadPaymentScreenshot(c.Context(), file, order.ID)
	if err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to upload screenshot", err, constants.KEY_TRANSIENT_ERROR)
	}

	hadScreenshot := order.PaymentScreenshotUrl != nil
	if err := database.DB.Model(&order).Update("payment_screenshot_url", screenshotUrl).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to save payment proof", err, constants.KEY_TRANSIENT_ERROR)
	}

	database.DB.First(&order, "id = ?", order.ID)
	old := map[string]any{}
	if !hadScreenshot {
		old["paymentScreenshotUrl"] = nil
	}
	PublishOrderEvent(EventUpdate, &order, old)

	if shop, err := findShopById(order.ShopId); err == nil {
		createNotification(shop.OwnerUserId, "Verify Payment",
			"A customer has submitted payment proof. Please verify.", constants.NOTIFICATION_PAYMENT, &order.ID)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"screenshotUrl": screenshotUrl})
}
