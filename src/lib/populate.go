package lib

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unlinked-app/unlinked-backend/src/models"
)

// PopulatePosts resolves author, comment and like user references for a batch of
// posts in a single users query, mirroring mongoose populate
func PopulatePosts(c *fiber.Ctx, posts []models.Post) ([]models.PostDto, error) {
	// Reunir todos los IDs de usuario referenciados
	idSet := make(map[primitive.ObjectID]struct{})
	for _, post := range posts {
		idSet[post.Author] = struct{}{}
		for _, like := range post.Likes {
			idSet[like] = struct{}{}
		}
		for _, comment := range post.Comments {
			idSet[comment.User] = struct{}{}
		}
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users := make(map[primitive.ObjectID]models.UserDto, len(ids))
	if len(ids) > 0 {
		cursor, err := DB.Collection("users").Find(
			c.Context(),
			bson.M{"_id": bson.M{"$in": ids}},
			options.Find().SetProjection(bson.M{
				"name":           1,
				"username":       1,
				"profilePicture": 1,
				"headline":       1,
			}),
		)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(c.Context())

		var found []models.UserDto
		if err := cursor.All(c.Context(), &found); err != nil {
			return nil, err
		}
		for _, u := range found {
			users[u.ID] = u
		}
	}

	populated := make([]models.PostDto, 0, len(posts))
	for _, post := range posts {
		dto := models.PostDto{
			ID:        post.Id,
			Author:    users[post.Author],
			Content:   post.Content,
			Image:     post.Image,
			Likes:     make([]models.UserDto, 0, len(post.Likes)),
			Comments:  make([]models.CommentDto, 0, len(post.Comments)),
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
		}
		for _, like := range post.Likes {
			dto.Likes = append(dto.Likes, users[like])
		}
		for _, comment := range post.Comments {
			dto.Comments = append(dto.Comments, models.CommentDto{
				ID:        comment.Id,
				Content:   comment.Content,
				User:      users[comment.User],
				CreatedAt: comment.CreatedAt,
			})
		}
		populated = append(populated, dto)
	}

	return populated, nil
}
