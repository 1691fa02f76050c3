package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/unlinked-app/unlinked-backend/src/lib"
	"github.com/unlinked-app/unlinked-backend/src/models"
	"github.com/unlinked-app/unlinked-backend/src/services"
)

// workflowErrorResponse translates a workflow error into the HTTP response the
// client sees: 403 for Forbidden, 404 for NotFound, 400 for the rest. Anything
// without a code is a server error.
func workflowErrorResponse(c *fiber.Ctx, err error) error {
	var wfErr *services.WorkflowError
	if errors.As(err, &wfErr) {
		status := fiber.StatusBadRequest
		switch wfErr.Code {
		case services.CodeForbidden:
			status = fiber.StatusForbidden
		case services.CodeNotFound:
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"message": wfErr.Message,
			"code":    wfErr.Code,
		})
	}

	log.Printf("Connection workflow error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Server error"))
}

// SendConnectionRequest sends a connection request from the authenticated user to another user
func SendConnectionRequest(c *fiber.Ctx) error {
	targetUserID, err := primitive.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid user ID format"))
	}

	user := c.Locals("user").(models.User)

	requestID, err := connectionService.SendRequest(c.Context(), user.Id, targetUserID)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Connection request sent successfully",
		"requestId": requestID,
	})
}

// AcceptConnectionRequest accepts a pending connection request addressed to the authenticated user
func AcceptConnectionRequest(c *fiber.Ctx) error {
	requestID, err := primitive.ObjectIDFromHex(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid request ID format"))
	}

	user := c.Locals("user").(models.User)

	if err := connectionService.AcceptRequest(c.Context(), requestID, user.Id); err != nil {
		return workflowErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Connection accepted successfully"))
}

// RejectConnectionRequest rejects a pending connection request addressed to the authenticated user
func RejectConnectionRequest(c *fiber.Ctx) error {
	requestID, err := primitive.ObjectIDFromHex(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid request ID format"))
	}

	user := c.Locals("user").(models.User)

	if err := connectionService.RejectRequest(c.Context(), requestID, user.Id); err != nil {
		return workflowErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Connection request rejected"))
}

// GetConnectionRequests returns the pending connection requests for the authenticated user
func GetConnectionRequests(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	requests, err := connectionService.ListPendingRequests(c.Context(), user.Id)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(requests)
}

// GetUserConnections returns the resolved users connected to the authenticated user
func GetUserConnections(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	connections, err := connectionService.ListConnections(c.Context(), user.Id)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(connections)
}

// RemoveConnection removes the connection between the authenticated user and another user
func RemoveConnection(c *fiber.Ctx) error {
	targetUserID, err := primitive.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid user ID format"))
	}

	user := c.Locals("user").(models.User)

	if err := connectionService.RemoveConnection(c.Context(), user.Id, targetUserID); err != nil {
		return workflowErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Connection removed successfully"))
}

// GetConnectionStatus returns the connection status between the authenticated user and another user
func GetConnectionStatus(c *fiber.Ctx) error {
	targetUserID, err := primitive.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Invalid user ID format"))
	}

	user := c.Locals("user").(models.User)

	if user.Id == targetUserID {
		return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse("Cannot check connection status with yourself"))
	}

	status, err := connectionService.Status(c.Context(), user.Id, targetUserID)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(status)
}
