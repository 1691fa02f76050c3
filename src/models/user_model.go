package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	Id                   primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name                 string               `json:"name" bson:"name"`
	Username             string               `json:"username" bson:"username"`
	Email                string               `json:"email" bson:"email"`
	Password             string               `json:"-" bson:"password"`
	ProfilePicture       string               `json:"profilePicture" bson:"profilePicture"`
	BannerImg            string               `json:"bannerImg" bson:"bannerImg"`
	Headline             string               `json:"headline" bson:"headline"`
	About                string               `json:"about" bson:"about"`
	Location             string               `json:"location" bson:"location"`
	Skills               []string             `json:"skills" bson:"skills"`
	Experience           []Experience         `json:"experience" bson:"experience"`
	Education            []Education          `json:"education" bson:"education"`
	Connections          []primitive.ObjectID `json:"connections" bson:"connections"`
	ResetPasswordToken   string               `json:"-" bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires time.Time            `json:"-" bson:"resetPasswordExpires,omitempty"`
	CreatedAt            time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsConnectedTo reports whether otherID is already present in the user's connections
func (u *User) IsConnectedTo(otherID primitive.ObjectID) bool {
	for _, conn := range u.Connections {
		if conn == otherID {
			return true
		}
	}
	return false
}

// UserDto is the reduced user shape embedded in feeds, requests and notifications
type UserDto struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	Name           string             `json:"name" bson:"name"`
	Username       string             `json:"username" bson:"username"`
	ProfilePicture string             `json:"profilePicture" bson:"profilePicture"`
	Headline       string             `json:"headline,omitempty" bson:"headline"`
}

func (u *User) ToDto() UserDto {
	return UserDto{
		ID:             u.Id,
		Name:           u.Name,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		Headline:       u.Headline,
	}
}

type Experience struct {
	Title       string    `json:"title" bson:"title"`
	Company     string    `json:"company" bson:"company"`
	From        time.Time `json:"from" bson:"from"`
	To          time.Time `json:"to" bson:"to"`
	Description string    `json:"description" bson:"description"`
}

type Education struct {
	School string `json:"school" bson:"school"`
	Degree string `json:"degree" bson:"degree"`
	From   int    `json:"from" bson:"from"`
	To     int    `json:"to" bson:"to"`
}
