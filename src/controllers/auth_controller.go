package controllers

import (
	"log"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/unlinked-app/unlinked-backend/src/lib"
	"github.com/unlinked-app/unlinked-backend/src/middleware"
	"github.com/unlinked-app/unlinked-backend/src/models"
)

var (
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Expires:  time.Now().Add(3 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Strict",
		Path:     "/",
	})
}

// Signup registers a new user: validates input, checks for duplicates, hashes
// the password, issues a session token and fires a best-effort welcome email
func Signup(c *fiber.Ctx) error {
	var userData struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&userData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid request body"))
	}

	if userData.Name == "" || userData.Username == "" || userData.Email == "" || userData.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("All fields are required"))
	}

	if !emailRegex.MatchString(userData.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Please enter a valid email address"))
	}

	if !usernameRegex.MatchString(userData.Username) {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Username can only contain letters, numbers, and underscores"))
	}

	if len(userData.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Password must be at least 6 characters long"))
	}

	usersCollection := lib.DB.Collection("users")

	var existing models.User
	if err := usersCollection.FindOne(c.Context(), bson.M{"email": userData.Email}).Decode(&existing); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("This email is already registered"))
	}
	if err := usersCollection.FindOne(c.Context(), bson.M{"username": userData.Username}).Decode(&existing); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("This username is already taken"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userData.Password), 11)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("An error occurred while creating your account"))
	}

	now := time.Now()
	newUser := models.User{
		Id:          primitive.NewObjectID(),
		Name:        userData.Name,
		Username:    userData.Username,
		Email:       userData.Email,
		Password:    string(hashedPassword),
		Skills:      []string{},
		Connections: []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := usersCollection.InsertOne(c.Context(), newUser); err != nil {
		// El índice único atrapa la carrera signup/signup
		if mongo.IsDuplicateKeyError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("This username or email is already registered"))
		}
		log.Printf("Error creating user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("An error occurred while creating your account"))
	}

	token, err := lib.GenerateJWT(newUser.Id)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}
	setSessionCookie(c, token)

	// El email de bienvenida es best effort
	profileURL := clientURL + "/profile/" + newUser.Username
	go func(email, name string) {
		if err := mailer.SendWelcome(email, name, profileURL); err != nil {
			log.Printf("Error sending welcome email: %v", err)
		}
	}(newUser.Email, newUser.Name)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
		"token":   token,
		"user": fiber.Map{
			"_id":            newUser.Id,
			"name":           newUser.Name,
			"username":       newUser.Username,
			"email":          newUser.Email,
			"profilePicture": newUser.ProfilePicture,
			"headline":       newUser.Headline,
		},
	})
}

// Login authenticates by username and password and issues a session token
func Login(c *fiber.Ctx) error {
	var loginData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&loginData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid request body"))
	}

	if loginData.Username == "" || loginData.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Username and password are required"))
	}

	var user models.User
	err := lib.DB.Collection("users").FindOne(c.Context(), bson.M{"username": loginData.Username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid credentials"))
		}
		log.Printf("Error finding user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginData.Password)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid credentials"))
	}

	token, err := lib.GenerateJWT(user.Id)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}
	setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"message": "Logged in successfully",
		"token":   token,
	})
}

// Logout clears the session cookie
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		SameSite: "Strict",
		Path:     "/",
	})
	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Logged out successfully"))
}

// GetCurrentUser returns the authenticated user attached by the middleware
func GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user")
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("Not authenticated"))
	}
	return c.JSON(user)
}

// RequestPasswordReset emails a one-hour reset link to the account's address
func RequestPasswordReset(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}

	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Email is required"))
	}

	usersCollection := lib.DB.Collection("users")

	var user models.User
	err := usersCollection.FindOne(c.Context(), bson.M{"email": body.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("No user found with this email"))
		}
		log.Printf("Error finding user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	resetToken, err := lib.GenerateResetToken(user.Id)
	if err != nil {
		log.Printf("Error generating reset token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	_, err = usersCollection.UpdateOne(
		c.Context(),
		bson.M{"_id": user.Id},
		bson.M{"$set": bson.M{
			"resetPasswordToken":   resetToken,
			"resetPasswordExpires": time.Now().Add(1 * time.Hour),
		}},
	)
	if err != nil {
		log.Printf("Error saving reset token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	resetURL := clientURL + "/reset-password/" + resetToken
	if err := mailer.SendPasswordReset(user.Email, user.Name, resetURL); err != nil {
		log.Printf("Error sending reset email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error sending reset email"))
	}

	return c.JSON(lib.MessageResponse("Password reset email sent"))
}

// ResetPassword verifies a reset token and replaces the password
func ResetPassword(c *fiber.Ctx) error {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}

	if err := c.BodyParser(&body); err != nil || body.Token == "" || body.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Token and new password are required"))
	}

	if len(body.NewPassword) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Password must be at least 6 characters long"))
	}

	claims, err := lib.VerifyJWT(body.Token)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid token"))
	}

	userID, err := lib.UserIDFromClaims(claims)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid token"))
	}

	usersCollection := lib.DB.Collection("users")

	// El token debe seguir siendo el guardado y no haber expirado
	var user models.User
	err = usersCollection.FindOne(c.Context(), bson.M{
		"_id":                  userID,
		"resetPasswordToken":   body.Token,
		"resetPasswordExpires": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid or expired reset token"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), 11)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	_, err = usersCollection.UpdateOne(
		c.Context(),
		bson.M{"_id": user.Id},
		bson.M{
			"$set":   bson.M{"password": string(hashedPassword), "updatedAt": time.Now()},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
		},
	)
	if err != nil {
		log.Printf("Error updating password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	return c.JSON(lib.MessageResponse("Password has been reset successfully"))
}
