package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/unlinked-app/unlinked-backend/src/models"
)

// In-memory fakes standing in for the Mongo stores. They copy on read and
// serialize writes, matching the single-document atomicity the real store
// guarantees.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *fakeUserStore) add(name, username, email string) primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := primitive.NewObjectID()
	s.users[id] = &models.User{
		Id:          id,
		Name:        name,
		Username:    username,
		Email:       email,
		Connections: []primitive.ObjectID{},
	}
	return id
}

func (s *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	copied.Connections = append([]primitive.ObjectID{}, user.Connections...)
	return &copied, nil
}

func (s *fakeUserStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (s *fakeUserStore) AddConnection(_ context.Context, userID, otherID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[userID]
	for _, conn := range user.Connections {
		if conn == otherID {
			return nil
		}
	}
	user.Connections = append(user.Connections, otherID)
	return nil
}

func (s *fakeUserStore) RemoveConnection(_ context.Context, userID, otherID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[userID]
	kept := user.Connections[:0]
	for _, conn := range user.Connections {
		if conn != otherID {
			kept = append(kept, conn)
		}
	}
	user.Connections = kept
	return nil
}

type fakeConnectionStore struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.Connection
}

func newFakeConnectionStore() *fakeConnectionStore {
	return &fakeConnectionStore{requests: make(map[primitive.ObjectID]*models.Connection)}
}

func (s *fakeConnectionStore) Insert(_ context.Context, conn *models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *conn
	s.requests[conn.Id] = &copied
	return nil
}

func (s *fakeConnectionStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *conn
	return &copied, nil
}

func (s *fakeConnectionStore) FindPendingBetween(_ context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.requests {
		if conn.Status != models.ConnectionStatusPending {
			continue
		}
		if (conn.Sender == a && conn.Recipient == b) || (conn.Sender == b && conn.Recipient == a) {
			copied := *conn
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeConnectionStore) ListPendingForRecipient(_ context.Context, recipient primitive.ObjectID) ([]models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Connection
	for _, conn := range s.requests {
		if conn.Recipient == recipient && conn.Status == models.ConnectionStatusPending {
			result = append(result, *conn)
		}
	}
	return result, nil
}

func (s *fakeConnectionStore) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to models.ConnectionStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.requests[id]
	if !ok || conn.Status != from {
		return false, nil
	}
	conn.Status = to
	conn.UpdatedAt = time.Now()
	return true, nil
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (s *fakeNotificationStore) Insert(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, *notification)
	return nil
}

func (s *fakeNotificationStore) all() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification{}, s.notifications...)
}

type fakeMailer struct {
	mu       sync.Mutex
	accepted []string
}

func (m *fakeMailer) SendWelcome(string, string, string) error { return nil }

func (m *fakeMailer) SendConnectionAccepted(to, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepted = append(m.accepted, to)
	return nil
}

func (m *fakeMailer) SendCommentNotification(string, string, string, string, string) error {
	return nil
}

func (m *fakeMailer) SendPasswordReset(string, string, string) error { return nil }

func (m *fakeMailer) acceptedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accepted)
}

type fixture struct {
	service       *ConnectionService
	users         *fakeUserStore
	connections   *fakeConnectionStore
	notifications *fakeNotificationStore
	mailer        *fakeMailer

	alice primitive.ObjectID
	bob   primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := newFakeUserStore()
	connections := newFakeConnectionStore()
	notifications := &fakeNotificationStore{}
	mailer := &fakeMailer{}

	return &fixture{
		service:       NewConnectionService(users, connections, notifications, mailer, "http://localhost:5173"),
		users:         users,
		connections:   connections,
		notifications: notifications,
		mailer:        mailer,
		alice:         users.add("Alice", "alice", "alice@example.com"),
		bob:           users.add("Bob", "bob", "bob@example.com"),
	}
}

func (f *fixture) statusOf(t *testing.T, viewer, target primitive.ObjectID) *ConnectionStatusResult {
	t.Helper()
	status, err := f.service.Status(context.Background(), viewer, target)
	require.NoError(t, err)
	return status
}

func TestSendRequestToSelf(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SendRequest(context.Background(), f.alice, f.alice)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidOperation, code)
}

func TestSendRequestUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SendRequest(context.Background(), f.alice, primitive.NewObjectID())
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, code)
}

func TestSendRequestSetsPendingAndReceived(t *testing.T) {
	f := newFixture(t)

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)
	require.False(t, requestID.IsZero())

	assert.Equal(t, StatusPending, f.statusOf(t, f.alice, f.bob).Status)

	received := f.statusOf(t, f.bob, f.alice)
	assert.Equal(t, StatusReceived, received.Status)
	require.NotNil(t, received.RequestID)
	assert.Equal(t, requestID, *received.RequestID)
}

func TestSendRequestDuplicate(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)

	_, err = f.service.SendRequest(context.Background(), f.alice, f.bob)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeDuplicateRequest, code)

	// La dirección opuesta también cuenta como duplicado
	_, err = f.service.SendRequest(context.Background(), f.bob, f.alice)
	code, ok = CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeDuplicateRequest, code)
}

func TestSendRequestAlreadyConnected(t *testing.T) {
	f := newFixture(t)

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)
	require.NoError(t, f.service.AcceptRequest(context.Background(), requestID, f.bob))

	_, err = f.service.SendRequest(context.Background(), f.alice, f.bob)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeAlreadyConnected, code)
}

func TestAcceptRequest(t *testing.T) {
	f := newFixture(t)

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)

	require.NoError(t, f.service.AcceptRequest(context.Background(), requestID, f.bob))

	assert.Equal(t, StatusConnected, f.statusOf(t, f.alice, f.bob).Status)
	assert.Equal(t, StatusConnected, f.statusOf(t, f.bob, f.alice).Status)

	// Exactamente una notificación, para el remitente original
	notifications := f.notifications.all()
	require.Len(t, notifications, 1)
	assert.Equal(t, f.alice, notifications[0].Recipient)
	assert.Equal(t, models.NotificationTypeConnectionAccepted, notifications[0].Type)
	assert.Equal(t, f.bob, notifications[0].RelatedUser)
	assert.False(t, notifications[0].Read)

	// El email de aceptación se despacha en segundo plano
	assert.Eventually(t, func() bool {
		return f.mailer.acceptedCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestAcceptRequestWrongActor(t *testing.T) {
	f := newFixture(t)
	carol := f.users.add("Carol", "carol", "carol@example.com")

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)

	// Ni un tercero ni el propio remitente pueden aceptar
	for _, actor := range []primitive.ObjectID{carol, f.alice} {
		err := f.service.AcceptRequest(context.Background(), requestID, actor)
		code, ok := CodeOf(err)
		require.True(t, ok)
		assert.Equal(t, CodeForbidden, code)
	}

	assert.Equal(t, StatusPending, f.statusOf(t, f.alice, f.bob).Status)
}

func TestAcceptRequestTwice(t *testing.T) {
	f := newFixture(t)

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)

	require.NoError(t, f.service.AcceptRequest(context.Background(), requestID, f.bob))

	err = f.service.AcceptRequest(context.Background(), requestID, f.bob)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidState, code)

	// Los sets de conexiones se mutaron una sola vez
	alice, _ := f.users.FindByID(context.Background(), f.alice)
	bob, _ := f.users.FindByID(context.Background(), f.bob)
	assert.Len(t, alice.Connections, 1)
	assert.Len(t, bob.Connections, 1)
}

func TestRejectRequest(t *testing.T) {
	f := newFixture(t)

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)

	require.NoError(t, f.service.RejectRequest(context.Background(), requestID, f.bob))

	// Sin conexiones, sin notificaciones
	assert.Equal(t, StatusNotConnected, f.statusOf(t, f.alice, f.bob).Status)
	assert.Empty(t, f.notifications.all())

	// Volver a aceptar o rechazar falla: el estado es terminal
	err = f.service.AcceptRequest(context.Background(), requestID, f.bob)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidState, code)

	err = f.service.RejectRequest(context.Background(), requestID, f.bob)
	code, ok = CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidState, code)
}

func TestRejectedPairCanRequestAgain(t *testing.T) {
	f := newFixture(t)

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)
	require.NoError(t, f.service.RejectRequest(context.Background(), requestID, f.bob))

	// Una solicitud rechazada no bloquea una nueva
	newRequestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)
	assert.NotEqual(t, requestID, newRequestID)
	assert.Equal(t, StatusReceived, f.statusOf(t, f.bob, f.alice).Status)
}

func TestConcurrentTerminalTransitions(t *testing.T) {
	f := newFixture(t)

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)

	// Aceptar y rechazar compiten por la misma solicitud: el CAS deja pasar
	// exactamente a uno
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs <- f.service.AcceptRequest(context.Background(), requestID, f.bob)
	}()
	go func() {
		defer wg.Done()
		errs <- f.service.RejectRequest(context.Background(), requestID, f.bob)
	}()
	wg.Wait()
	close(errs)

	var succeeded, invalidState int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		code, ok := CodeOf(err)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidState, code)
		invalidState++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, invalidState)

	// Pase lo que pase, los sets nunca se aplican dos veces
	alice, _ := f.users.FindByID(context.Background(), f.alice)
	assert.LessOrEqual(t, len(alice.Connections), 1)
}

func TestRemoveConnection(t *testing.T) {
	f := newFixture(t)

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)
	require.NoError(t, f.service.AcceptRequest(context.Background(), requestID, f.bob))

	require.NoError(t, f.service.RemoveConnection(context.Background(), f.alice, f.bob))

	// Simétrico: ninguno de los dos conserva al otro
	assert.Equal(t, StatusNotConnected, f.statusOf(t, f.alice, f.bob).Status)
	assert.Equal(t, StatusNotConnected, f.statusOf(t, f.bob, f.alice).Status)

	bob, _ := f.users.FindByID(context.Background(), f.bob)
	assert.Empty(t, bob.Connections)

	// El registro histórico no se reescribe
	request, err := f.connections.FindByID(context.Background(), requestID)
	require.NoError(t, err)
	require.NotNil(t, request)
	assert.Equal(t, models.ConnectionStatusAccepted, request.Status)
}

func TestRemoveConnectionNotConnected(t *testing.T) {
	f := newFixture(t)

	err := f.service.RemoveConnection(context.Background(), f.alice, f.bob)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotConnected, code)
}

func TestListPendingRequests(t *testing.T) {
	f := newFixture(t)
	carol := f.users.add("Carol", "carol", "carol@example.com")

	_, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)
	_, err = f.service.SendRequest(context.Background(), carol, f.bob)
	require.NoError(t, err)

	requests, err := f.service.ListPendingRequests(context.Background(), f.bob)
	require.NoError(t, err)
	require.Len(t, requests, 2)

	senders := make(map[string]bool)
	for _, request := range requests {
		assert.Equal(t, f.bob, request.Recipient)
		assert.Equal(t, models.ConnectionStatusPending, request.Status)
		senders[request.Sender.Username] = true
	}
	assert.True(t, senders["alice"])
	assert.True(t, senders["carol"])

	// El remitente no tiene solicitudes entrantes
	requests, err = f.service.ListPendingRequests(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestListConnections(t *testing.T) {
	f := newFixture(t)

	connections, err := f.service.ListConnections(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Empty(t, connections)

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)
	require.NoError(t, f.service.AcceptRequest(context.Background(), requestID, f.bob))

	connections, err = f.service.ListConnections(context.Background(), f.alice)
	require.NoError(t, err)
	require.Len(t, connections, 1)
	assert.Equal(t, "bob", connections[0].Username)
}

func TestEndToEndAliceAndBob(t *testing.T) {
	f := newFixture(t)

	requestID, err := f.service.SendRequest(context.Background(), f.alice, f.bob)
	require.NoError(t, err)

	received := f.statusOf(t, f.bob, f.alice)
	require.Equal(t, StatusReceived, received.Status)
	require.NotNil(t, received.RequestID)
	require.Equal(t, requestID, *received.RequestID)

	require.NoError(t, f.service.AcceptRequest(context.Background(), *received.RequestID, f.bob))

	assert.Equal(t, StatusConnected, f.statusOf(t, f.alice, f.bob).Status)

	notifications := f.notifications.all()
	require.Len(t, notifications, 1)
	assert.Equal(t, f.alice, notifications[0].Recipient)
	assert.Equal(t, models.NotificationTypeConnectionAccepted, notifications[0].Type)
	assert.Equal(t, f.bob, notifications[0].RelatedUser)
	assert.False(t, notifications[0].Read)
}
