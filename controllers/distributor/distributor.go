package distributor

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cargo-delivery/apperrors"
	"cargo-delivery/logger"
	"cargo-delivery/middleware"
	"cargo-delivery/models/user"
	authService "cargo-delivery/services/auth"
	cargoService "cargo-delivery/services/cargo"
	"cargo-delivery/types"
	cargoTypes "cargo-delivery/types/cargo"
	distributorTypes "cargo-delivery/types/distributor"
	"cargo-delivery/utils"
)

type DistributorController struct {
	db             *gorm.DB
	cargos         *cargoService.Service
	accounts       *authService.Service
	loggerInstance *logger.AsyncLogger
}

func NewDistributorController(db *gorm.DB, cargos *cargoService.Service, accounts *authService.Service, async_logger *logger.AsyncLogger) *DistributorController {
	return &DistributorController{db: db, cargos: cargos, accounts: accounts, loggerInstance: async_logger}
}

func (h *DistributorController) fail(c *fiber.Ctx, err error) error {
	status := apperrors.StatusCode(err)
	return c.Status(status).JSON(types.ApiResponse{
		Message: err.Error(),
		Status:  status,
	})
}

// caller resolves the authenticated distributor from the guard's claims.
func (h *DistributorController) caller(c *fiber.Ctx) (*user.User, error) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return utils.GetUserByUsername(claims.Username)
}

func (h *DistributorController) UpdateDistributor(c *fiber.Ctx) error {
	var req distributorTypes.DistributorRequest
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

	account, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.accounts.EnsureProfileUnique(account, req.Username, req.Mail, req.PhoneNumber); err != nil {
		logger.Error("Profile update conflict", err)
		return h.fail(c, err)
	}

	account.Username = req.Username
	account.Mail = req.Mail
	account.Phone = req.PhoneNumber
	account.Address = &req.Address
	if err := h.db.Save(account).Error; err != nil {
		logger.Error("Failed to update distributor profile", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to update profile",
			Status:  fiber.StatusInternalServerError,
		})
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success("Distributor profile updated: " + account.Username)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Profile updated",
		Status:  fiber.StatusOK,
		Data: distributorTypes.DistributorResponse{
			Username:    account.Username,
			Mail:        account.Mail,
			PhoneNumber: account.Phone,
			Address:     req.Address,
		},
	})
}

func (h *DistributorController) AddCargo(c *fiber.Ctx) error {
	var req cargoTypes.CargoRequest
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

	account, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}

	cargoes, err := h.cargos.AddCargo(account, &req)
	if err != nil {
		logger.Error("Failed to add cargo", err)
		return h.fail(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success("Cargo created by " + account.Username)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Cargo created",
		Status:  fiber.StatusCreated,
		Data:    cargoes,
	})
}

func (h *DistributorController) UpdateCargo(c *fiber.Ctx) error {
	cargoID, err := parseCargoID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid cargo id",
			Status:  fiber.StatusBadRequest,
		})
	}

	var req cargoTypes.CargoRequest
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

	account, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}

	updated, err := h.cargos.UpdateCargo(account, cargoID, &req)
	if err != nil {
		logger.Error("Failed to update cargo", err)
		return h.fail(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Cargo updated",
		Status:  fiber.StatusOK,
		Data:    updated,
	})
}

func (h *DistributorController) DeleteCargo(c *fiber.Ctx) error {
	cargoID, err := parseCargoID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid cargo id",
			Status:  fiber.StatusBadRequest,
		})
	}

	account, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.cargos.DeleteCargo(account, cargoID); err != nil {
		logger.Error("Failed to delete cargo", err)
		return h.fail(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success(fmt.Sprintf("Cargo %d deleted by %s", cargoID, account.Username))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Cargo deleted",
		Status:  fiber.StatusOK,
	})
}

func parseCargoID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid cargo id: %q", c.Params("id"))
	}
	return uint(id), nil
}
