package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/unlinked-app/unlinked-backend/src/controllers"
	"github.com/unlinked-app/unlinked-backend/src/middleware"
)

// JobRoutes sets up job listing and application routes
func JobRoutes(app *fiber.App) {
	job := app.Group("/api/v1/jobs", middleware.ProtectRoute)

	job.Get("/", controllers.GetJobs)
	job.Post("/create", controllers.CreateJob)
	job.Get("/:id", controllers.GetJobByID)
	job.Post("/:id/apply", controllers.ApplyToJob)
}
