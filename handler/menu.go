package handler

import (
	"campus_canteen/constants"
	"campus_canteen/database"
	"campus_canteen/middleware"
	"campus_canteen/model"
	"campus_canteen/utils"

	"github.com/gofiber/fiber/v2"
)

// GetMenuItems lists a shop's menu, grouped the way the storefront
// renders it (category, then name).
func GetMenuItems(c *fiber.Ctx) error {
	shopId := c.Params("shopId")

	var items []model.MenuItem
	if err := database.DB.
		Where("shop_id = ?", shopId).
		Order("category asc").
		Order("name asc").
		Find(&items).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to load menu", err, constants.KEY_TRANSIENT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, items)
}

// CreateMenuItem adds an item to the caller's own shop.
func CreateMenuItem(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	input, ok := c.Locals("input").(*model.MenuItemInput)
	if !ok {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid menu input", nil, constants.KEY_VALIDATION_ERROR)
	}

	shop, err := findShopByOwner(userId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You do not have a shop", err)
	}

	inStock := true
	if input.InStock != nil {
		inStock = *input.InStock
	}
	item := model.MenuItem{
		ShopId:      shop.ID,
		Name:        input.Name,
		Description: utils.StringPtr(input.Description),
		Price:       input.Price,
		Category:    input.Category,
		ImageUrl:    utils.StringPtr(input.ImageUrl),
		InStock:     inStock,
	}
	if err := database.DB.Create(&item).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to create menu item", err, constants.KEY_TRANSIENT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, item)
}

// UpdateMenuItem edits one of the caller's items. Existing order items
// keep their frozen name and price regardless.
func UpdateMenuItem(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	itemId := c.Params("itemId")
	input, ok := c.Locals("input").(*model.MenuItemInput)
	if !ok {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid menu input", nil, constants.KEY_VALIDATION_ERROR)
	}

	shop, err := findShopByOwner(userId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You do not have a shop", err)
	}

	var item model.MenuItem
	if err := database.DB.First(&item, "id = ? AND shop_id = ?", itemId, shop.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Menu item not found", err)
	}

	updates := map[string]any{
		"name":        input.Name,
		"description": utils.StringPtr(input.Description),
		"price":       input.Price,
		"category":    input.Category,
		"image_url":   utils.StringPtr(input.ImageUrl),
	}
	if input.InStock != nil {
		updates["in_stock"] = *input.InStock
	}
	if err := database.DB.Model(&item).Updates(updates).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update menu item", err, constants.KEY_TRANSIENT_ERROR)
	}

	database.DB.First(&item, "id = ?", item.ID)
	return utils.SuccessResponse(c, fiber.StatusOK, item)
}

// ToggleMenuItemStock flips availability without touching the rest of
// the row.
func ToggleMenuItemStock(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	itemId := c.Params("itemId")

	var body struct {
		InStock bool `json:"inStock"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid input", err, constants.KEY_VALIDATION_ERROR)
	}

	shop, err := findShopByOwner(userId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You do not have a shop", err)
	}

	result := database.DB.Model(&model.MenuItem{}).
		Where("id = ? AND shop_id = ?", itemId, shop.ID).
		Update("in_stock", body.InStock)
	if result.Error != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to update stock", result.Error, constants.KEY_TRANSIENT_ERROR)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Menu item not found", nil)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"inStock": body.InStock})
}

// DeleteMenuItem removes an item from the menu. Past orders are
// unaffected because order items carry frozen copies.
func DeleteMenuItem(c *fiber.Ctx) error {
	userId := middleware.UserId(c)
	itemId := c.Params("itemId")

	shop, err := findShopByOwner(userId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You do not have a shop", err)
	}

	result := database.DB.
		Where("id = ? AND shop_id = ?", itemId, shop.ID).
		Delete(&model.MenuItem{})
	if result.Error != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to delete menu item", result.Error, constants.KEY_TRANSIENT_ERROR)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Menu item not found", nil)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Menu item deleted"})
}
