package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/unlinked-app/unlinked-backend/src/controllers"
	"github.com/unlinked-app/unlinked-backend/src/middleware"
)

// PostRoutes sets up feed, post CRUD, like, comment and report routes
func PostRoutes(app *fiber.App) {
	post := app.Group("/api/v1/posts", middleware.ProtectRoute)

	post.Get("/", controllers.GetFeedPosts)
	post.Post("/create", controllers.CreatePost)
	post.Get("/:id", controllers.GetPostByID)
	post.Put("/update/:id", controllers.UpdatePost)
	post.Delete("/delete/:id", controllers.DeletePost)
	post.Post("/:id/like", controllers.LikePost)
	post.Post("/:id/comment", controllers.CreateComment)
	post.Post("/:id/report", controllers.ReportPost)
}
