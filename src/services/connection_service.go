package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/unlinked-app/unlinked-backend/src/emails"
	"github.com/unlinked-app/unlinked-backend/src/models"
)

// Connection status values reported by Status
const (
	StatusConnected    = "connected"
	StatusPending      = "pending"
	StatusReceived     = "received"
	StatusNotConnected = "not_connected"
)

// ConnectionStatusResult is the answer to "how does viewer relate to target".
// RequestID is set only for "received", so the viewer can act on the request.
type ConnectionStatusResult struct {
	Status    string              `json:"status"`
	RequestID *primitive.ObjectID `json:"requestId,omitempty"`
}

// PendingRequest is a pending connection request with its sender resolved
type PendingRequest struct {
	ID        primitive.ObjectID      `json:"_id"`
	Sender    models.UserDto          `json:"sender"`
	Recipient primitive.ObjectID      `json:"recipient"`
	Status    models.ConnectionStatus `json:"status"`
	CreatedAt time.Time               `json:"createdAt"`
}

// ConnectionService mediates the lifecycle of a connection between two users.
// It is the sole writer of connection requests and of both users' connections
// sets. All collaborators are injected so tests can substitute fakes.
type ConnectionService struct {
	users         UserStore
	connections   ConnectionStore
	notifications NotificationStore
	mailer        emails.Sender
	clientURL     string
}

func NewConnectionService(users UserStore, connections ConnectionStore, notifications NotificationStore, mailer emails.Sender, clientURL string) *ConnectionService {
	return &ConnectionService{
		users:         users,
		connections:   connections,
		notifications: notifications,
		mailer:        mailer,
		clientURL:     clientURL,
	}
}

// SendRequest creates a pending connection request from sender to recipient.
// Precondition order: self-connect, already connected, duplicate pending
// request — first failure wins. No notification is created on send; only
// acceptance notifies.
func (s *ConnectionService) SendRequest(ctx context.Context, senderID, recipientID primitive.ObjectID) (primitive.ObjectID, error) {
	if senderID == recipientID {
		return primitive.NilObjectID, workflowError(CodeInvalidOperation, "You can't send a connection request to yourself")
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("finding sender: %w", err)
	}
	if sender == nil {
		return primitive.NilObjectID, workflowError(CodeNotFound, "User not found")
	}

	recipient, err := s.users.FindByID(ctx, recipientID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("finding recipient: %w", err)
	}
	if recipient == nil {
		return primitive.NilObjectID, workflowError(CodeNotFound, "User not found")
	}

	if sender.IsConnectedTo(recipientID) {
		return primitive.NilObjectID, workflowError(CodeAlreadyConnected, "You are already connected with this user")
	}

	// Una solicitud pendiente en cualquier dirección bloquea una nueva
	pending, err := s.connections.FindPendingBetween(ctx, senderID, recipientID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("checking pending request: %w", err)
	}
	if pending != nil {
		return primitive.NilObjectID, workflowError(CodeDuplicateRequest, "A connection request already exists")
	}

	now := time.Now()
	request := &models.Connection{
		Id:        primitive.NewObjectID(),
		Sender:    senderID,
		Recipient: recipientID,
		Status:    models.ConnectionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.connections.Insert(ctx, request); err != nil {
		return primitive.NilObjectID, fmt.Errorf("creating connection request: %w", err)
	}

	return request.Id, nil
}

// AcceptRequest transitions a pending request to accepted, joins both users'
// connections sets, records a notification for the sender and dispatches the
// acceptance email in the background. The status transition is a
// compare-and-set, so a concurrent accept/reject on the same request loses
// with InvalidState and never double-applies the set mutation.
func (s *ConnectionService) AcceptRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) error {
	request, err := s.loadActionableRequest(ctx, requestID, actingUserID)
	if err != nil {
		return err
	}

	applied, err := s.connections.TransitionStatus(ctx, request.Id, models.ConnectionStatusPending, models.ConnectionStatusAccepted)
	if err != nil {
		return fmt.Errorf("accepting connection request: %w", err)
	}
	if !applied {
		// Alguien más procesó la solicitud primero
		return workflowError(CodeInvalidState, "This request has already been processed")
	}

	if err := s.users.AddConnection(ctx, request.Sender, request.Recipient); err != nil {
		return fmt.Errorf("updating sender connections: %w", err)
	}
	if err := s.users.AddConnection(ctx, request.Recipient, request.Sender); err != nil {
		return fmt.Errorf("updating recipient connections: %w", err)
	}

	notification := &models.Notification{
		Id:          primitive.NewObjectID(),
		Recipient:   request.Sender,
		Type:        models.NotificationTypeConnectionAccepted,
		RelatedUser: request.Recipient,
		Read:        false,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.notifications.Insert(ctx, notification); err != nil {
		// La notificación no es crítica
		log.Printf("Error creating notification: %v", err)
	}

	go s.sendAcceptanceEmail(request.Sender, request.Recipient)

	return nil
}

// RejectRequest transitions a pending request to rejected. No connections are
// touched and nobody is notified.
func (s *ConnectionService) RejectRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) error {
	request, err := s.loadActionableRequest(ctx, requestID, actingUserID)
	if err != nil {
		return err
	}

	applied, err := s.connections.TransitionStatus(ctx, request.Id, models.ConnectionStatusPending, models.ConnectionStatusRejected)
	if err != nil {
		return fmt.Errorf("rejecting connection request: %w", err)
	}
	if !applied {
		return workflowError(CodeInvalidState, "This request has already been processed")
	}

	return nil
}

// loadActionableRequest fetches a request and checks the shared accept/reject
// preconditions: it must exist, the actor must be its recipient and it must
// still be pending
func (s *ConnectionService) loadActionableRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) (*models.Connection, error) {
	request, err := s.connections.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("finding connection request: %w", err)
	}
	if request == nil {
		return nil, workflowError(CodeNotFound, "Connection request not found")
	}
	if request.Recipient != actingUserID {
		return nil, workflowError(CodeForbidden, "Not authorized to act on this request")
	}
	if request.Status != models.ConnectionStatusPending {
		return nil, workflowError(CodeInvalidState, "This request has already been processed")
	}
	return request, nil
}

// RemoveConnection removes each user from the other's connections set. The
// historical accepted request record is left untouched.
func (s *ConnectionService) RemoveConnection(ctx context.Context, userID, otherUserID primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return workflowError(CodeNotFound, "User not found")
	}

	other, err := s.users.FindByID(ctx, otherUserID)
	if err != nil {
		return fmt.Errorf("finding user: %w", err)
	}
	if other == nil {
		return workflowError(CodeNotFound, "User not found")
	}

	if !user.IsConnectedTo(otherUserID) || !other.IsConnectedTo(userID) {
		return workflowError(CodeNotConnected, "Connection does not exist")
	}

	if err := s.users.RemoveConnection(ctx, userID, otherUserID); err != nil {
		return fmt.Errorf("removing connection: %w", err)
	}
	if err := s.users.RemoveConnection(ctx, otherUserID, userID); err != nil {
		return fmt.Errorf("removing connection: %w", err)
	}

	return nil
}

// Status reports how viewer relates to target: connected, pending (viewer
// sent), received (viewer can act, request id included) or not_connected.
// Pure read.
func (s *ConnectionService) Status(ctx context.Context, viewerID, targetID primitive.ObjectID) (*ConnectionStatusResult, error) {
	viewer, err := s.users.FindByID(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("finding viewer: %w", err)
	}
	if viewer == nil {
		return nil, workflowError(CodeNotFound, "User not found")
	}

	if viewer.IsConnectedTo(targetID) {
		return &ConnectionStatusResult{Status: StatusConnected}, nil
	}

	pending, err := s.connections.FindPendingBetween(ctx, viewerID, targetID)
	if err != nil {
		return nil, fmt.Errorf("checking pending request: %w", err)
	}
	if pending != nil {
		if pending.Sender == viewerID {
			return &ConnectionStatusResult{Status: StatusPending}, nil
		}
		return &ConnectionStatusResult{Status: StatusReceived, RequestID: &pending.Id}, nil
	}

	return &ConnectionStatusResult{Status: StatusNotConnected}, nil
}

// ListPendingRequests returns the pending requests addressed to the user, with
// sender data resolved
func (s *ConnectionService) ListPendingRequests(ctx context.Context, userID primitive.ObjectID) ([]PendingRequest, error) {
	requests, err := s.connections.ListPendingForRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing connection requests: %w", err)
	}

	senderIDs := make([]primitive.ObjectID, 0, len(requests))
	for _, request := range requests {
		senderIDs = append(senderIDs, request.Sender)
	}

	senders, err := s.users.FindByIDs(ctx, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving senders: %w", err)
	}

	senderByID := make(map[primitive.ObjectID]models.UserDto, len(senders))
	for i := range senders {
		senderByID[senders[i].Id] = senders[i].ToDto()
	}

	result := make([]PendingRequest, 0, len(requests))
	for _, request := range requests {
		result = append(result, PendingRequest{
			ID:        request.Id,
			Sender:    senderByID[request.Sender],
			Recipient: request.Recipient,
			Status:    request.Status,
			CreatedAt: request.CreatedAt,
		})
	}

	return result, nil
}

// ListConnections returns the resolved user records the user is connected to
func (s *ConnectionService) ListConnections(ctx context.Context, userID primitive.ObjectID) ([]models.UserDto, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, workflowError(CodeNotFound, "User not found")
	}

	if len(user.Connections) == 0 {
		return []models.UserDto{}, nil
	}

	connected, err := s.users.FindByIDs(ctx, user.Connections)
	if err != nil {
		return nil, fmt.Errorf("resolving connections: %w", err)
	}

	result := make([]models.UserDto, 0, len(connected))
	for i := range connected {
		result = append(result, connected[i].ToDto())
	}

	return result, nil
}

// sendAcceptanceEmail notifies the original sender by email that their request
// was accepted. Best effort: failures are logged and never reach the caller.
func (s *ConnectionService) sendAcceptanceEmail(senderID, recipientID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil || sender == nil {
		log.Printf("Error loading sender for acceptance email: %v", err)
		return
	}

	recipient, err := s.users.FindByID(ctx, recipientID)
	if err != nil || recipient == nil {
		log.Printf("Error loading recipient for acceptance email: %v", err)
		return
	}

	profileURL := s.clientURL + "/profile/" + recipient.Username
	if err := s.mailer.SendConnectionAccepted(sender.Email, sender.Name, recipient.Name, profileURL); err != nil {
		log.Printf("Error sending connection accepted email: %v", err)
	}
}
