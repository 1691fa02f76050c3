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

// GetJobs returns all job listings, newest first
func GetJobs(c *fiber.Ctx) error {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := lib.DB.Collection("jobs").Find(c.Context(), bson.M{}, opts)
	if err != nil {
		log.Printf("Error finding jobs: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}
	defer cursor.Close(c.Context())

	jobs := []models.Job{}
	if err := cursor.All(c.Context(), &jobs); err != nil {
		log.Printf("Error decoding jobs: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	return c.Status(fiber.StatusOK).JSON(jobs)
}

// GetJobByID returns a single job listing
func GetJobByID(c *fiber.Ctx) error {
	jobID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid job ID format"))
	}

	var job models.Job
	err = lib.DB.Collection("jobs").FindOne(c.Context(), bson.M{"_id": jobID}).Decode(&job)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Job not found"))
		}
		log.Printf("Error finding job: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	return c.Status(fiber.StatusOK).JSON(job)
}

// CreateJob publishes a job listing posted by the authenticated user
func CreateJob(c *fiber.Ctx) error {
	var req struct {
		Title        string   `json:"title"`
		Company      string   `json:"company"`
		Location     string   `json:"location"`
		Type         string   `json:"type"`
		Salary       string   `json:"salary"`
		Description  string   `json:"description"`
		Requirements []string `json:"requirements"`
		Logo         string   `json:"logo"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid request body"))
	}

	if req.Title == "" || req.Company == "" || req.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Title, company and description are required"))
	}

	user := c.Locals("user").(models.User)

	if req.Requirements == nil {
		req.Requirements = []string{}
	}

	now := time.Now()
	job := models.Job{
		Id:           primitive.NewObjectID(),
		Title:        req.Title,
		Company:      req.Company,
		Location:     req.Location,
		Type:         req.Type,
		Salary:       req.Salary,
		Description:  req.Description,
		Requirements: req.Requirements,
		Logo:         req.Logo,
		PostedBy:     user.Id,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := lib.DB.Collection("jobs").InsertOne(c.Context(), job); err != nil {
		log.Printf("Error creating job: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Failed to create job"))
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

// ApplyToJob records an application from the authenticated user. One
// application per user per job.
func ApplyToJob(c *fiber.Ctx) error {
	jobID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid job ID format"))
	}

	var req struct {
		CoverLetter string `json:"coverLetter"`
		Resume      string `json:"resume"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid request body"))
	}

	user := c.Locals("user").(models.User)

	jobsCollection := lib.DB.Collection("jobs")
	applicationsCollection := lib.DB.Collection("job_applications")

	var job models.Job
	if err := jobsCollection.FindOne(c.Context(), bson.M{"_id": jobID}).Decode(&job); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("Job not found"))
	}

	var existing models.JobApplication
	err = applicationsCollection.FindOne(c.Context(), bson.M{"job": jobID, "applicant": user.Id}).Decode(&existing)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("You have already applied to this job"))
	}
	if err != mongo.ErrNoDocuments {
		log.Printf("Error checking existing application: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
	}

	application := models.JobApplication{
		Id:          primitive.NewObjectID(),
		Job:         jobID,
		Applicant:   user.Id,
		CoverLetter: req.CoverLetter,
		Resume:      req.Resume,
		CreatedAt:   time.Now(),
	}

	if _, err := applicationsCollection.InsertOne(c.Context(), application); err != nil {
		log.Printf("Error creating job application: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Failed to apply to job"))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Application submitted successfully",
		"applicationId": application.Id,
	})
}
