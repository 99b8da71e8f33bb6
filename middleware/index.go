package middleware

import (
	"campus_canteen/constants"
	"campus_canteen/utils"
	"errors"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Protected parses the identity token (issued by the external identity
// provider) and stores the user id and role claim in Locals. The store
// layer re-checks ownership on every mutation; this middleware only
// establishes who is calling.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("access_token")

		if token == "" {
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if token == "" {
			return utils.ErrorResponse(c, 401, "Missing token", errors.New("no token"))
		}

		jwtToken, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !jwtToken.Valid {
			return utils.ErrorResponse(c, 401, "Invalid token", err)
		}

		claims, ok := jwtToken.Claims.(jwt.MapClaims)
		if !ok {
			return utils.ErrorResponse(c, 401, "Invalid token claims", nil)
		}
		userId, _ := claims["userId"].(string)
		role, _ := claims["role"].(string)
		if userId == "" {
			return utils.ErrorResponse(c, 401, "Invalid token claims", nil)
		}

		c.Locals("userId", userId)
		c.Locals("role", role)
		return c.Next()
	}
}

// RequireRole gates a route on the token's role claim. This is a UX
// affordance only, the handlers still verify row ownership.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("role") != role {
			return utils.ErrorResponseHaveKey(c, 403, constants.FORBIDDEN, nil, constants.KEY_AUTHORIZATION_ERROR)
		}
		return c.Next()
	}
}

// UserId reads the authenticated user id set by Protected.
func UserId(c *fiber.Ctx) string {
	id, _ := c.Locals("userId").(string)
	return id
}

// Role reads the authenticated role set by Protected.
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}
