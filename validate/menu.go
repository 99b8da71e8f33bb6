package validate

import (
	"campus_canteen/model"

	"github.com/gofiber/fiber/v2"
)

func MenuItem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.MenuItemInput
		return parseAndValidate(c, &input)
	}
}
