package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unlinked-app/unlinked-backend/src/lib"
	"github.com/unlinked-app/unlinked-backend/src/models"
)

// GetSuggestedConnections returns up to 3 users the authenticated user is not
// connected to, to populate the "people you may know" sidebar
func GetSuggestedConnections(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	// Excluir al propio usuario y a sus conexiones
	excluded := append([]interface{}{user.Id}, toInterfaceSlice(user.Connections)...)

	filter := bson.M{"_id": bson.M{"$nin": excluded}}
	opts := options.Find().
		SetProjection(bson.M{
			"name":           1,
			"username":       1,
			"profilePicture": 1,
			"headline":       1,
		}).
		SetLimit(3)

	cursor, err := lib.DB.Collection("users").Find(c.Context(), filter, opts)
	if err != nil {
		log.Printf("Error finding suggested users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}
	defer cursor.Close(c.Context())

	suggested := []models.UserDto{}
	if err := cursor.All(c.Context(), &suggested); err != nil {
		log.Printf("Error decoding suggested users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	return c.Status(fiber.StatusOK).JSON(suggested)
}

func toInterfaceSlice[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}

// GetPublicProfile returns a user's profile by username, without credentials
func GetPublicProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	var user models.User
	err := lib.DB.Collection("users").FindOne(
		c.Context(),
		bson.M{"username": username},
		options.FindOne().SetProjection(bson.M{"password": 0}),
	).Decode(&user)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("User not found"))
		}
		log.Printf("Error finding user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateProfile updates the authenticated user's profile fields. Base64 image
// payloads for profilePicture and bannerImg are stored through Cloudinary and
// replaced by their delivery URLs.
func UpdateProfile(c *fiber.Ctx) error {
	var body struct {
		Name           *string              `json:"name"`
		Headline       *string              `json:"headline"`
		About          *string              `json:"about"`
		Location       *string              `json:"location"`
		Skills         *[]string            `json:"skills"`
		Experience     *[]models.Experience `json:"experience"`
		Education      *[]models.Education  `json:"education"`
		ProfilePicture *string              `json:"profilePicture"`
		BannerImg      *string              `json:"bannerImg"`
	}

	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid request body"))
	}

	user := c.Locals("user").(models.User)

	// Solo los campos permitidos llegan al update
	updates := bson.M{}
	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.Headline != nil {
		updates["headline"] = *body.Headline
	}
	if body.About != nil {
		updates["about"] = *body.About
	}
	if body.Location != nil {
		updates["location"] = *body.Location
	}
	if body.Skills != nil {
		updates["skills"] = *body.Skills
	}
	if body.Experience != nil {
		updates["experience"] = *body.Experience
	}
	if body.Education != nil {
		updates["education"] = *body.Education
	}

	if body.ProfilePicture != nil && *body.ProfilePicture != "" {
		url, err := uploadImage(c, *body.ProfilePicture)
		if err != nil {
			log.Printf("Error uploading profile picture: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error uploading image"))
		}
		updates["profilePicture"] = url
	}
	if body.BannerImg != nil && *body.BannerImg != "" {
		url, err := uploadImage(c, *body.BannerImg)
		if err != nil {
			log.Printf("Error uploading banner image: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error uploading image"))
		}
		updates["bannerImg"] = url
	}

	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Nothing to update"))
	}
	updates["updatedAt"] = time.Now()

	var updated models.User
	err := lib.DB.Collection("users").FindOneAndUpdate(
		c.Context(),
		bson.M{"_id": user.Id},
		bson.M{"$set": updates},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0}),
	).Decode(&updated)

	if err != nil {
		log.Printf("Error updating profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Failed to update profile"))
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

// uploadImage pushes a base64 payload through the upload service
func uploadImage(c *fiber.Ctx, data string) (string, error) {
	if uploads == nil {
		return "", errors.New("image uploads are not configured")
	}
	return uploads.UploadBase64(c.Context(), data)
}
