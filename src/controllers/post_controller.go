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

// GetFeedPosts returns posts authored by the authenticated user's connections
// and by the user themselves, newest first
func GetFeedPosts(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	// Connections + el propio usuario
	authorIDs := make([]primitive.ObjectID, len(user.Connections))
	copy(authorIDs, user.Connections)
	authorIDs = append(authorIDs, user.Id)

	filter := bson.M{"author": bson.M{"$in": authorIDs}}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := lib.DB.Collection("posts").Find(c.Context(), filter, opts)
	if err != nil {
		log.Printf("Error finding feed posts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error fetching posts"))
	}
	defer cursor.Close(c.Context())

	var posts []models.Post
	if err := cursor.All(c.Context(), &posts); err != nil {
		log.Printf("Error decoding feed posts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error decoding posts"))
	}

	populated, err := lib.PopulatePosts(c, posts)
	if err != nil {
		log.Printf("Error populating posts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error populating posts"))
	}

	return c.Status(fiber.StatusOK).JSON(populated)
}

// CreatePost creates a new post for the authenticated user, optionally
// uploading a base64 image
func CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
		Image   string `json:"image,omitempty"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid request body"))
	}

	if req.Content == "" && req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Post must have content or an image"))
	}

	user := c.Locals("user").(models.User)

	var imageURL string
	if req.Image != "" {
		url, err := uploadImage(c, req.Image)
		if err != nil {
			log.Printf("Error uploading post image: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error uploading image to Cloudinary"))
		}
		imageURL = url
	}

	newPost := models.Post{
		Id:        primitive.NewObjectID(),
		Author:    user.Id,
		Content:   req.Content,
		Image:     imageURL,
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
		Reports:   []models.Report{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := lib.DB.Collection("posts").InsertOne(c.Context(), newPost); err != nil {
		log.Printf("Error creating post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Failed to create post"))
	}

	return c.Status(fiber.StatusCreated).JSON(newPost)
}

// GetPostByID returns a post with populated author, comments and likes
func GetPostByID(c *fiber.Ctx) error {
	postID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid post ID format"))
	}

	var post models.Post
	err = lib.DB.Collection("posts").FindOne(c.Context(), bson.M{"_id": postID}).Decode(&post)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Post not found"))
	}

	populated, err := lib.PopulatePosts(c, []models.Post{post})
	if err != nil {
		log.Printf("Error populating post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error loading post data"))
	}

	return c.Status(fiber.StatusOK).JSON(populated[0])
}

// UpdatePost lets the author edit the content of their post
func UpdatePost(c *fiber.Ctx) error {
	postID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid post ID format"))
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Content is required"))
	}

	user := c.Locals("user").(models.User)

	postsCollection := lib.DB.Collection("posts")

	var post models.Post
	if err := postsCollection.FindOne(c.Context(), bson.M{"_id": postID}).Decode(&post); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Post not found"))
	}

	if post.Author != user.Id {
		return c.Status(fiber.StatusForbidden).JSON(lib.MessageResponse("You are not authorized to update this post"))
	}

	var updated models.Post
	err = postsCollection.FindOneAndUpdate(
		c.Context(),
		bson.M{"_id": postID},
		bson.M{"$set": bson.M{"content": req.Content, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		log.Printf("Error updating post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Failed to update post"))
	}

	populated, err := lib.PopulatePosts(c, []models.Post{updated})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error loading post details"))
	}

	return c.Status(fiber.StatusOK).JSON(populated[0])
}

// DeletePost deletes a post if the authenticated user is the author, removing
// its image from Cloudinary as well
func DeletePost(c *fiber.Ctx) error {
	postID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid post ID"))
	}

	user := c.Locals("user").(models.User)

	postsCollection := lib.DB.Collection("posts")

	var post models.Post
	if err := postsCollection.FindOne(c.Context(), bson.M{"_id": postID}).Decode(&post); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Post not found"))
	}

	if post.Author != user.Id {
		return c.Status(fiber.StatusForbidden).JSON(lib.MessageResponse("You are not authorized to delete this post"))
	}

	// La imagen se borra best effort; el post se elimina igualmente
	if post.Image != "" && uploads != nil {
		if err := uploads.Destroy(c.Context(), post.Image); err != nil {
			log.Printf("Error deleting image from Cloudinary: %v", err)
		}
	}

	result, err := postsCollection.DeleteOne(c.Context(), bson.M{"_id": postID})
	if err != nil {
		log.Printf("Error deleting post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Failed to delete post"))
	}
	if result.DeletedCount == 0 {
		return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Post not found"))
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Post deleted successfully"))
}

// LikePost toggles a like on a post. Liking someone else's post notifies the
// author; unliking never does.
func LikePost(c *fiber.Ctx) error {
	postID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid post ID format"))
	}

	user := c.Locals("user").(models.User)

	postsCollection := lib.DB.Collection("posts")

	var post models.Post
	if err := postsCollection.FindOne(c.Context(), bson.M{"_id": postID}).Decode(&post); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Post not found"))
		}
		log.Printf("Error fetching post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error fetching post"))
	}

	alreadyLiked := false
	for _, likeID := range post.Likes {
		if likeID == user.Id {
			alreadyLiked = true
			break
		}
	}

	var update bson.M
	if alreadyLiked {
		update = bson.M{
			"$pull": bson.M{"likes": user.Id},
			"$set":  bson.M{"updatedAt": time.Now()},
		}
	} else {
		update = bson.M{
			"$addToSet": bson.M{"likes": user.Id},
			"$set":      bson.M{"updatedAt": time.Now()},
		}
	}

	var updated models.Post
	err = postsCollection.FindOneAndUpdate(
		c.Context(),
		bson.M{"_id": postID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		log.Printf("Error updating post likes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Failed to update post"))
	}

	if !alreadyLiked && post.Author != user.Id {
		createPostNotification(c, post.Author, models.NotificationTypeLike, user.Id, postID)
	}

	populated, err := lib.PopulatePosts(c, []models.Post{updated})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error loading post details"))
	}

	return c.Status(fiber.StatusOK).JSON(populated[0])
}

// CreateComment adds a comment to a post, notifying the author unless they
// commented on their own post. The author also gets a best-effort email.
func CreateComment(c *fiber.Ctx) error {
	postID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid post ID format"))
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid request body"))
	}
	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Comment content cannot be empty"))
	}

	user := c.Locals("user").(models.User)

	newComment := models.Comment{
		Id:        primitive.NewObjectID(),
		User:      user.Id,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	var updated models.Post
	err = lib.DB.Collection("posts").FindOneAndUpdate(
		c.Context(),
		bson.M{"_id": postID},
		bson.M{
			"$push": bson.M{"comments": newComment},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Post not found"))
		}
		log.Printf("Error adding comment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Failed to add comment"))
	}

	if updated.Author != user.Id {
		createPostNotification(c, updated.Author, models.NotificationTypeComment, user.Id, postID)

		// Email al autor, best effort
		var author models.User
		err := lib.DB.Collection("users").FindOne(
			c.Context(),
			bson.M{"_id": updated.Author},
			options.FindOne().SetProjection(bson.M{"name": 1, "email": 1}),
		).Decode(&author)
		if err == nil {
			postURL := clientURL + "/post/" + postID.Hex()
			go func(to, recipientName, commenterName, comment string) {
				if err := mailer.SendCommentNotification(to, recipientName, commenterName, postURL, comment); err != nil {
					log.Printf("Error sending comment notification email: %v", err)
				}
			}(author.Email, author.Name, user.Name, req.Content)
		} else {
			log.Printf("Error loading post author for comment email: %v", err)
		}
	}

	populated, err := lib.PopulatePosts(c, []models.Post{updated})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Error loading post details"))
	}

	return c.Status(fiber.StatusOK).JSON(populated[0])
}

// ReportPost records a report on a post. A user can report a given post once.
func ReportPost(c *fiber.Ctx) error {
	postID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid post ID format"))
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil || req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Report reason is required"))
	}

	user := c.Locals("user").(models.User)

	postsCollection := lib.DB.Collection("posts")

	var post models.Post
	if err := postsCollection.FindOne(c.Context(), bson.M{"_id": postID}).Decode(&post); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Post not found"))
	}

	for _, report := range post.Reports {
		if report.User == user.Id {
			return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("You have already reported this post"))
		}
	}

	report := models.Report{
		User:      user.Id,
		Reason:    req.Reason,
		CreatedAt: time.Now(),
	}

	_, err = postsCollection.UpdateOne(
		c.Context(),
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"reports": report}},
	)
	if err != nil {
		log.Printf("Error reporting post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Failed to report post"))
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Post reported successfully"))
}

// createPostNotification inserts a like/comment notification; failures are
// logged, never surfaced
func createPostNotification(c *fiber.Ctx, recipient primitive.ObjectID, notifType models.NotificationType, relatedUser, relatedPost primitive.ObjectID) {
	notification := models.Notification{
		Id:          primitive.NewObjectID(),
		Recipient:   recipient,
		Type:        notifType,
		RelatedUser: relatedUser,
		RelatedPost: relatedPost,
		Read:        false,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if _, err := lib.DB.Collection("notifications").InsertOne(c.Context(), notification); err != nil {
		log.Printf("Error creating notification: %v", err)
	}
}
