package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/unlinked-app/unlinked-backend/src/controllers"
	"github.com/unlinked-app/unlinked-backend/src/middleware"
)

// UserRoutes sets up profile and suggestion routes
func UserRoutes(app *fiber.App) {
	user := app.Group("/api/v1/users", middleware.ProtectRoute)

	user.Get("/suggestions", controllers.GetSuggestedConnections)
	user.Get("/:username", controllers.GetPublicProfile)
	user.Put("/profile", controllers.UpdateProfile)
}
