package handler

import (
	"campus_canteen/constants"
	"campus_canteen/database"
	"campus_canteen/middleware"
	"campus_canteen/model"
	"campus_canteen/utils"

	"github.com/gofiber/fiber/v2"
)

func GetFavouriteShops(c *fiber.Ctx) error {
	userId := middleware.UserId(c)

	var favs []model.FavouriteShop
	if err := database.DB.
		Preload("Shop").
		Where("user_id = ?", userId).
		Order("created_at desc").
		Find(&favs).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to load favourites", err, constants.KEY_TRANSIENT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, favs)
}

// ToggleFavouriteShop adds or removes the shop from the user's
// favourites and reports the resulting state.
func ToggleFavouriteShop(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	shopId := c.Params("shopId")

	var shop model.Shop
	if err := database.DB.First(&shop, "id = ? AND is_active = ?", shopId, true).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Shop not found", err)
	}

	result := database.DB.
		Where("user_id = ? AND shop_id = ?", userId, shopId).
		Delete(&model.FavouriteShop{})
	if result.Error != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update favourites", result.Error, constants.KEY_TRANSIENT_ERROR)
	}
	if result.RowsAffected > 0 {
		return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"favourited": false})
	}

	fav := model.FavouriteShop{UserId: userId, ShopId: shopId}
	if err := database.DB.Create(&fav).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update favourites", err, constants.KEY_TRANSIENT_ERROR)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"favourited": true})
}

func GetFavouriteItems(c *fiber.Ctx) error {
	userId := middleware.UserId(c)

	var favs []model.FavouriteItem
	if err := database.DB.
		Preload("MenuItem").
		Where("user_id = ?", userId).
		Order("created_at desc").
		Find(&favs).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to load favourites", err, constants.KEY_TRANSIENT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, favs)
}

func ToggleFavouriteItem(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	itemId := c.Params("itemId")

	var item model.MenuItem
	if err := database.DB.First(&item, "id = ?", itemId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Menu item not found", err)
	}

	result := database.DB.
		Where("user_id = ? AND menu_item_id = ?", userId, itemId).
		Delete(&model.FavouriteItem{})
	if result.Error != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update favourites", result.Error, constants.KEY_TRANSIENT_ERROR)
	}
	if result.RowsAffected > 0 {
		return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"favourited": false})
	}

	fav := model.FavouriteItem{UserId: userId, MenuItemId: itemId}
	if err := database.DB.Create(&fav).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update favourites", err, constants.KEY_TRANSIENT_ERROR)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"favourited": true})
}
