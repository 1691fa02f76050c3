package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Job struct {
	Id           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title        string             `json:"title" bson:"title"`
	Company      string             `json:"company" bson:"company"`
	Location     string             `json:"location" bson:"location"`
	Type         string             `json:"type" bson:"type"` // Full-time, Part-time, Contract
	Salary       string             `json:"salary,omitempty" bson:"salary,omitempty"`
	Description  string             `json:"description" bson:"description"`
	Requirements []string           `json:"requirements" bson:"requirements"`
	Logo         string             `json:"logo,omitempty" bson:"logo,omitempty"`
	PostedBy     primitive.ObjectID `json:"postedBy" bson:"postedBy"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type JobApplication struct {
	Id          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Job         primitive.ObjectID `json:"job" bson:"job"`
	Applicant   primitive.ObjectID `json:"applicant" bson:"applicant"`
	CoverLetter string             `json:"coverLetter,omitempty" bson:"coverLetter,omitempty"`
	Resume      string             `json:"resume,omitempty" bson:"resume,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}
