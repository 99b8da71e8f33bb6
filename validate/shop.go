package validate

import (
	"campus_canteen/model"

	"github.com/gofiber/fiber/v2"
)

func CreateShop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateShopInput
		return parseAndValidate(c, &input)
	}
}

func UpdateShop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdateShopInput
		return parseAndValidate(c, &input)
	}
}
