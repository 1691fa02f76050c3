package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unlinked-app/unlinked-backend/src/lib"
	"github.com/unlinked-app/unlinked-backend/src/models"
)

// NotificationResponse is a notification with its related user and post resolved
type NotificationResponse struct {
	ID          primitive.ObjectID      `json:"_id"`
	Type        models.NotificationType `json:"type"`
	Read        bool                    `json:"read"`
	CreatedAt   time.Time               `json:"createdAt"`
	RelatedUser *models.UserDto         `json:"relatedUser,omitempty"`
	RelatedPost *models.Post            `json:"relatedPost,omitempty"`
}

// GetUserNotifications returns the authenticated user's notifications, newest
// first, with related user and post data populated
func GetUserNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	filter := bson.M{"recipient": user.Id}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := lib.DB.Collection("notifications").Find(c.Context(), filter, opts)
	if err != nil {
		log.Printf("Error finding notifications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}
	defer cursor.Close(c.Context())

	var notifications []models.Notification
	if err := cursor.All(c.Context(), &notifications); err != nil {
		log.Printf("Error decoding notifications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		item := NotificationResponse{
			ID:        notification.Id,
			Type:      notification.Type,
			Read:      notification.Read,
			CreatedAt: notification.CreatedAt,
		}

		// Popular el usuario relacionado si existe
		if !notification.RelatedUser.IsZero() {
			var relatedUser models.UserDto
			err := lib.DB.Collection("users").FindOne(
				c.Context(),
				bson.M{"_id": notification.RelatedUser},
				options.FindOne().SetProjection(bson.M{
					"name":           1,
					"username":       1,
					"profilePicture": 1,
					"headline":       1,
				}),
			).Decode(&relatedUser)
			if err == nil {
				item.RelatedUser = &relatedUser
			} else if err != mongo.ErrNoDocuments {
				log.Printf("Error finding related user: %v", err)
			}
		}

		// Popular el post relacionado si existe
		if !notification.RelatedPost.IsZero() {
			var relatedPost models.Post
			err := lib.DB.Collection("posts").FindOne(
				c.Context(),
				bson.M{"_id": notification.RelatedPost},
				options.FindOne().SetProjection(bson.M{"content": 1, "image": 1}),
			).Decode(&relatedPost)
			if err == nil {
				item.RelatedPost = &relatedPost
			} else if err != mongo.ErrNoDocuments {
				log.Printf("Error finding related post: %v", err)
			}
		}

		response = append(response, item)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// MarkNotificationAsRead sets the read flag on one of the user's notifications
func MarkNotificationAsRead(c *fiber.Ctx) error {
	notificationID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid notification ID format"))
	}

	user := c.Locals("user").(models.User)

	// Solo el destinatario puede marcarla
	result, err := lib.DB.Collection("notifications").UpdateOne(
		c.Context(),
		bson.M{"_id": notificationID, "recipient": user.Id},
		bson.M{"$set": bson.M{"read": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Printf("Error marking notification as read: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}
	if result.MatchedCount == 0 {
		return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Notification not found"))
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Notification marked as read"))
}

// DeleteNotification removes one of the user's notifications
func DeleteNotification(c *fiber.Ctx) error {
	notificationID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid notification ID format"))
	}

	user := c.Locals("user").(models.User)

	result, err := lib.DB.Collection("notifications").DeleteOne(
		c.Context(),
		bson.M{"_id": notificationID, "recipient": user.Id},
	)
	if err != nil {
		log.Printf("Error deleting notification: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}
	if result.DeletedCount == 0 {
		return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Notification not found"))
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Notification deleted successfully"))
}
