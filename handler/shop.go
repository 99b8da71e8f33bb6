package handler

import (
	"campus_canteen/constants"
	"campus_canteen/database"
	"campus_canteen/middleware"
	"campus_canteen/model"
	"campus_canteen/utils"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func toPublicShop(s *model.Shop) model.PublicShop {
	return model.PublicShop{
		ID:         s.ID,
		ShopName:   s.ShopName,
		Slug:       s.Slug,
		IsOpen:     s.IsOpen,
		IsActive:   s.IsActive,
		ReopenTime: s.ReopenTime,
		CreatedAt:  s.CreatedAt,
	}
}

// GetShops lists active shops without payment identifiers.
func GetShops(c *fiber.Ctx) error {
	var shops []model.Shop
	if err := database.DB.
		Where("is_active = ?", true).
		Order("shop_name asc").
		Find(&shops).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to load shops", err, constants.KEY_TRANSIENT_ERROR)
	}

	public := make([]model.PublicShop, 0, len(shops))
	for _, s := range shops {
		public = append(public, toPublicShop(&s))
	}
	return utils.SuccessResponse(c, fiber.StatusOK, public)
}

// GetMyShop returns the shopkeeper's own shop including UPI fields.
func GetMyShop(c *fiber.Ctx) error {
	userId := middleware.UserId(c)

	shop, err := findShopByOwner(userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SuccessResponse(c, fiber.StatusOK, nil)
		}
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to load shop", err, constants.KEY_TRANSIENT_ERROR)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, shop)
}

// CreateShop registers the shopkeeper's shop. Requires a used-up
// verification code (see verification.go) and one shop per owner.
func CreateShop(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	input, ok := c.Locals("input").(*model.CreateShopInput)
	if !ok {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid shop input", nil, constants.KEY_VALIDATION_ERROR)
	}

	var vetted int64
	database.DB.Model(&model.ShopkeeperVerification{}).
		Where("user_id = ? AND used = ?", userId, true).
		Count(&vetted)
	if vetted == 0 {
		return utils.ErrorResponseHaveKey(c, fiber.StatusForbidden,
			"Verify your shopkeeper email before creating a shop", nil, constants.KEY_AUTHORIZATION_ERROR)
	}

	if _, err := findShopByOwner(userId); err == nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusConflict, "You already have a shop", nil, constants.KEY_CONFLICT_ERROR)
	}

	shop := model.Shop{
		OwnerUserId: userId,
		ShopName:    input.ShopName,
		Slug:        slug.Make(input.ShopName),
		UpiId:       utils.StringPtr(input.UpiId),
		UpiName:     utils.StringPtr(input.UpiName),
		IsOpen:      true,
		IsActive:    true,
	}
	if err := database.DB.Create(&shop).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to create shop", err, constants.KEY_TRANSIENT_ERROR)
	}

	PublishShopEvent(EventInsert, &shop)
	return utils.SuccessResponse(c, fiber.StatusCreated, shop)
}

// UpdateShop applies the owner's partial update. Closing with a reopen
// time arms the auto-reopen scheduler.
func UpdateShop(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	input, ok := c.Locals("input").(*model.UpdateShopInput)
	if !ok {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid shop input", nil, constants.KEY_VALIDATION_ERROR)
	}

	shop, err := findShopByOwner(userId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You do not have a shop", err)
	}

	updates := map[string]any{}
	if input.ShopName != nil {
		updates["shop_name"] = *input.ShopName
		updates["slug"] = slug.Make(*input.ShopName)
	}
	if input.UpiId != nil {
		updates["upi_id"] = *input.UpiId
	}
	if input.UpiName != nil {
		updates["upi_name"] = *input.UpiName
	}
	if input.ManualPayment != nil {
		updates["manual_payment"] = *input.ManualPayment
	}
	if input.IsOpen != nil {
		updates["is_open"] = *input.IsOpen
		if *input.IsOpen {
			updates["reopen_time"] = nil
		}
	}
	if input.ReopenTime != nil {
		updates["reopen_time"] = *input.ReopenTime
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return utils.SuccessResponse(c, fiber.StatusOK, shop)
	}

	if err := database.DB.Model(shop).Updates(updates).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update shop", err, constants.KEY_TRANSIENT_ERROR)
	}

	database.DB.First(shop, "id = ?", shop.ID)
	PublishShopEvent(EventUpdate, shop)
	return utils.SuccessResponse(c, fiber.StatusOK, shop)
}

// DeactivateShop soft-deletes the shop (is_active = false); history and
// orders remain.
func DeactivateShop(c *fiber.Ctx) error {
	userId := middleware.UserId(c)

	shop, err := findShopByOwner(userId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You do not have a shop", err)
	}

	if err := database.DB.Model(shop).Update("is_active", false).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to deactivate shop", err, constants.KEY_TRANSIENT_ERROR)
	}

	shop.IsActive = false
	PublishShopEvent(EventUpdate, shop)
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Shop deactivated"})
}
