package handler

import (
	"campus_canteen/constants"
	"campus_canteen/database"
	"campus_canteen/middleware"
	"campus_canteen/model"
	"campus_canteen/utils"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const verificationCodeTTL = 15 * time.Minute

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendShopkeeperVerification emails a one-time code to a prospective
// shopkeeper. Only the bcrypt hash is stored.
func SendShopkeeperVerification(c *fiber.Ctx) error {
	userId := middleware.UserId(c)

	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Email is required", err, constants.KEY_VALIDATION_ERROR)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate code", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), 10)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash code", err)
	}

	verification := model.ShopkeeperVerification{
		UserId:    userId,
		Email:     body.Email,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(verificationCodeTTL),
	}
	if err := database.DB.Create(&verification).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to save verification", err, constants.KEY_TRANSIENT_ERROR)
	}

	utils.SendVerificationCodeEmail(body.Email, code)

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Verification code sent"})
}

// VerifyShopkeeperCode checks the presented code against the most recent
// unexpired hash and marks it used, unlocking shop creation.
func VerifyShopkeeperCode(c *fiber.Ctx) error {
	userId := middleware.UserId(c)

	var body struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&body); err != nil || body.Code == "" {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Code is required", err, constants.KEY_VALIDATION_ERROR)
	}

	var verification model.ShopkeeperVerification
	if err := database.DB.
		Where("user_id = ? AND used = ? AND expires_at > ?", userId, false, time.Now()).
		Order("created_at desc").
		First(&verification).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "No pending verification, request a new code", err, constants.KEY_VALIDATION_ERROR)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(verification.CodeHash), []byte(body.Code)); err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, "Incorrect code", nil, constants.KEY_VALIDATION_ERROR)
	}

	if err := database.DB.Model(&verification).Update("used", true).Error; err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusServiceUnavailable, "Failed to confirm verification", err, constants.KEY_TRANSIENT_ERROR)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"verified": true})
}
