package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "cargo-delivery/controllers/auth"
	distributorController "cargo-delivery/controllers/distributor"
	driverController "cargo-delivery/controllers/driver"
	userController "cargo-delivery/controllers/user"
	"cargo-delivery/logger"
	"cargo-delivery/middleware"
	"cargo-delivery/models/user"
	authService "cargo-delivery/services/auth"
	cargoService "cargo-delivery/services/cargo"
	"cargo-delivery/services/mailer"
	"cargo-delivery/services/token"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	tokens := token.NewFromEnv()
	mail := mailer.NewFromEnv()
	asyncLogger := logger.NewAsyncLogger(db)

	accounts := authService.NewService(db, tokens, mail)
	cargos := cargoService.NewService(db, mail)

	authCtrl := authController.NewAuthController(accounts, asyncLogger)
	distributorCtrl := distributorController.NewDistributorController(db, cargos, accounts, asyncLogger)
	driverCtrl := driverController.NewDriverController(db, cargos, accounts, asyncLogger)
	userCtrl := userController.NewUserController()

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "cargo-delivery", "status": "ok"})
	})

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	auth := app.Group("/auth")
	auth.Post("/register", authCtrl.Register)
	auth.Post("/verify", authCtrl.Verify)
	auth.Post("/login", authCtrl.Login)
	auth.Post("/forgot", authCtrl.Forgot)
	auth.Post("/change", authCtrl.Change)
	auth.Put("/setPassword", authCtrl.SetPassword)
	auth.Post("/logout", middleware.RequireAuth(tokens), authCtrl.LogOut)

	/*=============================================================================
	| Distributor Routes
	===============================================================================*/
	distributor := app.Group("/distributor").Use(middleware.RequireRole(tokens, user.RoleDistributor))
	distributor.Post("/updateDistributor", distributorCtrl.UpdateDistributor)
	distributor.Post("/addCargo", distributorCtrl.AddCargo)
	distributor.Post("/updateCargo/:id", distributorCtrl.UpdateCargo)
	distributor.Delete("/deleteCargo/:id", distributorCtrl.DeleteCargo)

	/*=============================================================================
	| Driver Routes
	===============================================================================*/
	driver := app.Group("/driver").Use(middleware.RequireRole(tokens, user.RoleDriver))
	driver.Post("/takeCargo/:id", driverCtrl.TakeCargo)
	driver.Post("/deliverCargo/:id", driverCtrl.DeliverCargo)
	driver.Post("/updateDriver", driverCtrl.UpdateDriver)
	driver.Get("/getMyCargoes", driverCtrl.MyCargoes)
	driver.Get("/getAllCargoes", driverCtrl.AllCargoes)
	driver.Get("/deliveredReport", driverCtrl.DeliveredReport)

	/*=============================================================================
	| Authenticated Utility Routes
	===============================================================================*/
	app.Get("/random", middleware.RequireAuth(tokens), userCtrl.WhoAmI)
}
