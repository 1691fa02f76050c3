package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/unlinked-app/unlinked-backend/src/lib"
	"github.com/unlinked-app/unlinked-backend/src/services"
)

// CookieName is the session cookie set on signup/login
const CookieName = "jwt-unlinked"

var userStore services.UserStore

// Init wires the user store the middleware loads authenticated users from
func Init(users services.UserStore) {
	userStore = users
}

// ProtectRoute checks for a valid session token (cookie or Bearer header),
// loads the user and attaches it to the request context
func ProtectRoute(c *fiber.Ctx) error {
	token := c.Cookies(CookieName)
	if token == "" {
		// Formato esperado: "Bearer <token>"
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("Unauthorized - No token provided"))
	}

	claims, err := lib.VerifyJWT(token)
	if err != nil || claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("Unauthorized - Invalid token"))
	}

	userID, err := lib.UserIDFromClaims(claims)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("Unauthorized - Invalid token"))
	}

	user, err := userStore.FindByID(c.Context(), userID)
	if err != nil || user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("User not found"))
	}

	user.Password = ""
	c.Locals("user", *user)

	return c.Next()
}
