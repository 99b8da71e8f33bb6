package validate

import (
	"campus_canteen/model"

	"github.com/gofiber/fiber/v2"
)

func CreateOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateOrderInput
		return parseAndValidate(c, &input)
	}
}
