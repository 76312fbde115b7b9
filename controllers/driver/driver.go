package driver

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
	driverTypes "cargo-delivery/types/driver"
	"cargo-delivery/utils"
)

type DriverController struct {
	db             *gorm.DB
	cargos         *cargoService.Service
	accounts       *authService.Service
	loggerInstance *logger.AsyncLogger
}

func NewDriverController(db *gorm.DB, cargos *cargoService.Service, accounts *authService.Service, async_logger *logger.AsyncLogger) *DriverController {
	return &DriverController{db: db, cargos: cargos, accounts: accounts, loggerInstance: async_logger}
}

func (h *DriverController) fail(c *fiber.Ctx, err error) error {
	status := apperrors.StatusCode(err)
	return c.Status(status).JSON(types.ApiResponse{
		Message: err.Error(),
		Status:  status,
	})
}

func (h *DriverController) caller(c *fiber.Ctx) (*user.User, error) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return utils.GetUserByUsername(claims.Username)
}

func (h *DriverController) TakeCargo(c *fiber.Ctx) error {
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

	taken, err := h.cargos.TakeCargo(account, cargoID)
	if err != nil {
		logger.Error("Failed to take cargo", err)
		return h.fail(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success(fmt.Sprintf("Cargo %d picked up by %s", cargoID, account.Username))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Cargo picked up. The delivery code was mailed to the distributor.",
		Status:  fiber.StatusOK,
		Data:    taken,
	})
}

func (h *DriverController) DeliverCargo(c *fiber.Ctx) error {
	cargoID, err := parseCargoID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid cargo id",
			Status:  fiber.StatusBadRequest,
		})
	}

	var req cargoTypes.DeliverCargoRequest
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

	if err := h.cargos.DeliverCargo(account, cargoID, req.VerificationCode); err != nil {
		logger.Error("Failed to deliver cargo", err)
		return h.fail(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success(fmt.Sprintf("Cargo %d delivered by %s", cargoID, account.Username))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Cargo delivered",
		Status:  fiber.StatusOK,
	})
}

func (h *DriverController) UpdateDriver(c *fiber.Ctx) error {
	var req driverTypes.DriverRequest
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
	account.CarType = &req.CarType
	if err := h.db.Save(account).Error; err != nil {
		logger.Error("Failed to update driver profile", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to update profile",
			Status:  fiber.StatusInternalServerError,
		})
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success("Driver profile updated: " + account.Username)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Profile updated",
		Status:  fiber.StatusOK,
		Data: driverTypes.DriverResponse{
			Username:    account.Username,
			Mail:        account.Mail,
			PhoneNumber: account.Phone,
			CarType:     req.CarType,
		},
	})
}

// MyCargoes lists the cargoes assigned to the calling driver, paginated.
func (h *DriverController) MyCargoes(c *fiber.Ctx) error {
	account, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}

	page, size, sortBy := paginationParams(c)
	listing, err := h.cargos.MyCargoes(account, page, size, sortBy)
	if err != nil {
		logger.Error("Failed to list driver cargoes", err)
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "OK",
		Status:  fiber.StatusOK,
		Data:    listing,
	})
}

// AllCargoes lists every cargo in the system, paginated.
func (h *DriverController) AllCargoes(c *fiber.Ctx) error {
	if _, err := h.caller(c); err != nil {
		return h.fail(c, err)
	}

	page, size, sortBy := paginationParams(c)
	listing, err := h.cargos.AllCargoes(page, size, sortBy)
	if err != nil {
		logger.Error("Failed to list cargoes", err)
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "OK",
		Status:  fiber.StatusOK,
		Data:    listing,
	})
}

// DeliveredReport summarises the driver's completed shipments since the
// beginning of the day or week.
func (h *DriverController) DeliveredReport(c *fiber.Ctx) error {
	account, err := h.caller(c)
	if err != nil {
		return h.fail(c, err)
	}

	period := c.Query("period", "day")
	report, err := h.cargos.DeliveredReport(account, period)
	if err != nil {
		logger.Error("Failed to build delivered report", err)
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "OK",
		Status:  fiber.StatusOK,
		Data:    report,
	})
}

func paginationParams(c *fiber.Ctx) (page, size int, sortBy string) {
	page = c.QueryInt("page", 0)
	size = c.QueryInt("size", 10)
	sortBy = c.Query("sort", "id")
	return page, size, sortBy
}

func parseCargoID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid cargo id: %q", c.Params("id"))
	}
	return uint(id), nil
}
