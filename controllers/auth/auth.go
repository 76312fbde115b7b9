package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"cargo-delivery/apperrors"
	"cargo-delivery/logger"
	authService "cargo-delivery/services/auth"
	"cargo-delivery/types"
	authTypes "cargo-delivery/types/auth"
	"cargo-delivery/utils"
)

type AuthController struct {
	service        *authService.Service
	loggerInstance *logger.AsyncLogger
}

func NewAuthController(service *authService.Service, async_logger *logger.AsyncLogger) *AuthController {
	return &AuthController{service: service, loggerInstance: async_logger}
}

// Helper function to set secure cookies based on environment
func (h *AuthController) setSecureCookie(c *fiber.Ctx, name, value string, maxAge int) {
	isProduction := os.Getenv("APP_ENV") == "production"

	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: false,
		Secure:   isProduction, // Only secure in production (HTTPS)
		SameSite: "Strict",
		MaxAge:   maxAge,
		Path:     "/",
	})
}

// fail maps a domain error onto the response envelope.
func (h *AuthController) fail(c *fiber.Ctx, err error) error {
	status := apperrors.StatusCode(err)
	return c.Status(status).JSON(types.ApiResponse{
		Message: err.Error(),
		Status:  status,
	})
}

func (h *AuthController) Register(c *fiber.Ctx) error {
	var req authTypes.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		logger.Error(err.Error(), nil)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}
	if !utils.ValidatePhoneNumber(req.PhoneNumber) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "phone_number must be a valid phone number",
			Status:  fiber.StatusBadRequest,
		})
	}

	account, err := h.service.Register(req)
	if err != nil {
		logger.Error("Failed to register user", err)
		return h.fail(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	currentTime := time.Now().Format("2006-01-02 03:04:05 PM")
	logger.Success("User registered successfully: " + account.Username + " at " + currentTime)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Registered. Check your e-mail for the verification code.",
		Status:  fiber.StatusCreated,
		Data:    account,
	})
}

func (h *AuthController) Verify(c *fiber.Ctx) error {
	var req authTypes.VerifyUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		logger.Error(err.Error(), nil)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	if err := h.service.VerifyUser(req.Email, req.VerificationCode); err != nil {
		logger.Error("Failed to verify user", err)
		return h.fail(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Account verified. You can log in now.",
		Status:  fiber.StatusOK,
	})
}

func (h *AuthController) Login(c *fiber.Ctx) error {
	var req authTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		logger.Error(err.Error(), nil)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	loginResponse, err := h.service.Login(req)
	if err != nil {
		logger.Error("Failed to login user", err)
		return h.fail(c, err)
	}

	h.setSecureCookie(c, "access", loginResponse.Token, 8*60*60) // 8 hours

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	currentTime := time.Now().Format("2006-01-02 03:04:05 PM")
	logger.Success("User logged in successfully: " + loginResponse.User.Username + " at " + currentTime)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Login successful",
		Status:  fiber.StatusOK,
		Token:   loginResponse.Token,
		Data:    loginResponse.User,
	})
}

// Forgot starts the reset flow by mail address. The response is the same
// whether or not a matching account exists.
func (h *AuthController) Forgot(c *fiber.Ctx) error {
	var req authTypes.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		logger.Error(err.Error(), nil)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	message, err := h.service.SendPasswordCode(req.Mail)
	if err != nil {
		logger.Error("Failed to send password code", err)
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: message,
		Status:  fiber.StatusOK,
	})
}

// Change starts the reset flow by username.
func (h *AuthController) Change(c *fiber.Ctx) error {
	var req authTypes.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		logger.Error(err.Error(), nil)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	account, err := utils.GetUserByUsername(req.Username)
	if err != nil {
		logger.Error("Failed to find user", err)
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Message: "User not found",
			Status:  fiber.StatusNotFound,
		})
	}

	message, err := h.service.SendPasswordCode(account.Mail)
	if err != nil {
		logger.Error("Failed to send password code", err)
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: message,
		Status:  fiber.StatusOK,
	})
}

func (h *AuthController) SetPassword(c *fiber.Ctx) error {
	var req authTypes.SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		logger.Error(err.Error(), nil)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	account, err := h.service.SetPassword(req.Mail, req)
	if err != nil {
		logger.Error("Failed to set password", err)
		return h.fail(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success("Password updated for " + account.Username)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Password updated",
		Status:  fiber.StatusOK,
		Data:    account,
	})
}

func (h *AuthController) LogOut(c *fiber.Ctx) error {
	// The token itself stays valid until expiry; only the cookie is dropped.
	h.setSecureCookie(c, "access", "", -1) // Expire immediately

	logger.Success("Logout successful")
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Logout successful",
		Status:  fiber.StatusOK,
		Data:    nil,
	})
}
