package user

import (
	"github.com/gofiber/fiber/v2"

	"cargo-delivery/middleware"
	"cargo-delivery/types"
	authTypes "cargo-delivery/types/auth"
	"cargo-delivery/utils"
)

type UserController struct{}

func NewUserController() *UserController {
	return &UserController{}
}

// WhoAmI returns the public projection of the authenticated account.
func (h *UserController) WhoAmI(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Message: "Authorization token missing",
			Status:  fiber.StatusUnauthorized,
		})
	}

	account, err := utils.GetUserByUsername(claims.Username)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Message: "User not found",
			Status:  fiber.StatusNotFound,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "OK",
		Status:  fiber.StatusOK,
		Data:    authTypes.NewUserResponse(account),
	})
}
