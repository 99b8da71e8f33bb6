package validate

import (
	"campus_canteen/constants"
	"campus_canteen/utils"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

// UUIDParam rejects requests whose path id is not a UUID before any
// handler touches the store.
func UUIDParam(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := uuid.Parse(c.Params(key)); err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest,
				"Invalid id in path", errors.New("params invalid"), constants.KEY_VALIDATION_ERROR)
		}
		return c.Next()
	}
}

// parseAndValidate parses the JSON body into input and runs the struct
// rules; on success the pointer is stashed in Locals("input").
func parseAndValidate(c *fiber.Ctx, input any) error {
	if err := c.BodyParser(input); err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Invalid request body", err, constants.KEY_VALIDATION_ERROR)
	}
	if err := validate.Struct(input); err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Validation failed", err, constants.KEY_VALIDATION_ERROR)
	}
	c.Locals("input", input)
	return c.Next()
}
