package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/unlinked-app/unlinked-backend/src/controllers"
	"github.com/unlinked-app/unlinked-backend/src/middleware"
)

// AuthRoutes sets up signup, login, logout, current-user and password-reset routes
func AuthRoutes(app *fiber.App) {
	auth := app.Group("/api/v1/auth")

	auth.Post("/signup", controllers.Signup)
	auth.Post("/login", controllers.Login)
	auth.Post("/logout", controllers.Logout)
	auth.Get("/me", middleware.ProtectRoute, controllers.GetCurrentUser)
	auth.Post("/request-password-reset", controllers.RequestPasswordReset)
	auth.Post("/reset-password", controllers.ResetPassword)
}
