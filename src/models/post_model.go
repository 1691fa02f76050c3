package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	Id        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Author    primitive.ObjectID   `json:"author" bson:"author"`
	Content   string               `json:"content" bson:"content"`
	Image     string               `json:"image" bson:"image"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	Reports   []Report             `json:"reports" bson:"reports"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// PostDto is the populated post shape returned to clients
type PostDto struct {
	ID        primitive.ObjectID `json:"_id"`
	Author    UserDto            `json:"author"`
	Content   string             `json:"content,omitempty"`
	Image     string             `json:"image,omitempty"`
	Likes     []UserDto          `json:"likes"`
	Comments  []CommentDto       `json:"comments"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type Comment struct {
	Id        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Content   string             `json:"content" bson:"content"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type CommentDto struct {
	ID        primitive.ObjectID `json:"_id"`
	Content   string             `json:"content"`
	User      UserDto            `json:"user"`
	CreatedAt time.Time          `json:"createdAt"`
}

type Report struct {
	User      primitive.ObjectID `json:"user" bson:"user"`
	Reason    string             `json:"reason" bson:"reason"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
