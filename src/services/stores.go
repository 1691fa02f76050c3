package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/unlinked-app/unlinked-backend/src/models"
)

// Store interfaces consumed by the workflow engine. The Mongo implementations
// live in src/store; tests substitute in-memory fakes. Find methods return
// (nil, nil) when no document matches.

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	// AddConnection adds otherID to the user's connections set ($addToSet
	// semantics, no duplicates)
	AddConnection(ctx context.Context, userID, otherID primitive.ObjectID) error
	RemoveConnection(ctx context.Context, userID, otherID primitive.ObjectID) error
}

type ConnectionStore interface {
	Insert(ctx context.Context, conn *models.Connection) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error)
	// FindPendingBetween looks up a pending request for the unordered pair, in
	// either direction
	FindPendingBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error)
	ListPendingForRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Connection, error)
	// TransitionStatus updates the status only if it currently equals from,
	// reporting whether the transition was applied. This is the compare-and-set
	// every terminal transition goes through.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.ConnectionStatus) (bool, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, notification *models.Notification) error
}
