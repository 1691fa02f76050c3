package controllers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/unlinked-app/unlinked-backend/src/controllers"
	"github.com/unlinked-app/unlinked-backend/src/lib"
	"github.com/unlinked-app/unlinked-backend/src/middleware"
	"github.com/unlinked-app/unlinked-backend/src/models"
	"github.com/unlinked-app/unlinked-backend/src/routes"
	"github.com/unlinked-app/unlinked-backend/src/services"
)

// Minimal in-memory stores backing the handlers under test

type stubUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func (s *stubUserStore) add(name, username, email string) primitive.ObjectID {
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

func (s *stubUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
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

func (s *stubUserStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
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

func (s *stubUserStore) AddConnection(_ context.Context, userID, otherID primitive.ObjectID) error {
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

func (s *stubUserStore) RemoveConnection(_ context.Context, userID, otherID primitive.ObjectID) error {
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

type stubConnectionStore struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.Connection
}

func (s *stubConnectionStore) Insert(_ context.Context, conn *models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *conn
	s.requests[conn.Id] = &copied
	return nil
}

func (s *stubConnectionStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *conn
	return &copied, nil
}

func (s *stubConnectionStore) FindPendingBetween(_ context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
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

func (s *stubConnectionStore) ListPendingForRecipient(_ context.Context, recipient primitive.ObjectID) ([]models.Connection, error) {
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

func (s *stubConnectionStore) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to models.ConnectionStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.requests[id]
	if !ok || conn.Status != from {
		return false, nil
	}
	conn.Status = to
	return true, nil
}

type stubNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (s *stubNotificationStore) Insert(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, *notification)
	return nil
}

type noopMailer struct{}

func (noopMailer) SendWelcome(string, string, string) error { return nil }

func (noopMailer) SendConnectionAccepted(string, string, string, string) error { return nil }

func (noopMailer) SendCommentNotification(string, string, string, string, string) error {
	return nil
}

func (noopMailer) SendPasswordReset(string, string, string) error { return nil }

type testEnv struct {
	app   *fiber.App
	users *stubUserStore

	alice primitive.ObjectID
	bob   primitive.ObjectID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &stubUserStore{users: make(map[primitive.ObjectID]*models.User)}
	connections := &stubConnectionStore{requests: make(map[primitive.ObjectID]*models.Connection)}
	notifications := &stubNotificationStore{}

	service := services.NewConnectionService(users, connections, notifications, noopMailer{}, "http://localhost:5173")
	middleware.Init(users)
	controllers.Init(service, nil, noopMailer{}, "http://localhost:5173")

	app := fiber.New()
	routes.ConnectionRoutes(app)

	return &testEnv{
		app:   app,
		users: users,
		alice: users.add("Alice", "alice", "alice@example.com"),
		bob:   users.add("Bob", "bob", "bob@example.com"),
	}
}

func (e *testEnv) request(t *testing.T, method, path string, as primitive.ObjectID) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if !as.IsZero() {
		token, err := lib.GenerateJWT(as)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var body map[string]any
	// Las respuestas de listado son arrays, no objetos
	_ = json.Unmarshal(raw, &body)
	return resp, body
}

func TestConnectionRoutesRequireAuth(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.request(t, http.MethodGet, "/api/v1/connections/", primitive.NilObjectID)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized - No token provided", body["message"])
}

func TestSendConnectionRequestInvalidID(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.request(t, http.MethodPost, "/api/v1/connections/request/not-an-id", e.alice)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid user ID format", body["message"])
}

func TestConnectionRequestLifecycle(t *testing.T) {
	e := newTestEnv(t)

	// Alice envía la solicitud
	resp, body := e.request(t, http.MethodPost, "/api/v1/connections/request/"+e.bob.Hex(), e.alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	requestID, ok := body["requestId"].(string)
	require.True(t, ok)
	require.NotEmpty(t, requestID)

	// Reenviar es un duplicado
	resp, body = e.request(t, http.MethodPost, "/api/v1/connections/request/"+e.bob.Hex(), e.alice)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(services.CodeDuplicateRequest), body["code"])

	// Bob la ve como recibida, con el id para actuar
	resp, body = e.request(t, http.MethodGet, "/api/v1/connections/status/"+e.alice.Hex(), e.bob)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, services.StatusReceived, body["status"])
	assert.Equal(t, requestID, body["requestId"])

	// Bob acepta
	resp, _ = e.request(t, http.MethodPut, "/api/v1/connections/accept/"+requestID, e.bob)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Ambos lados quedan conectados
	resp, body = e.request(t, http.MethodGet, "/api/v1/connections/status/"+e.bob.Hex(), e.alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, services.StatusConnected, body["status"])

	// Aceptar de nuevo falla con estado inválido
	resp, body = e.request(t, http.MethodPut, "/api/v1/connections/accept/"+requestID, e.bob)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(services.CodeInvalidState), body["code"])

	// Alice elimina la conexión
	resp, _ = e.request(t, http.MethodDelete, "/api/v1/connections/"+e.bob.Hex(), e.alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = e.request(t, http.MethodGet, "/api/v1/connections/status/"+e.bob.Hex(), e.alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, services.StatusNotConnected, body["status"])
}

func TestAcceptForbiddenForThirdParty(t *testing.T) {
	e := newTestEnv(t)
	carol := e.users.add("Carol", "carol", "carol@example.com")

	resp, body := e.request(t, http.MethodPost, "/api/v1/connections/request/"+e.bob.Hex(), e.alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	requestID := body["requestId"].(string)

	resp, body = e.request(t, http.MethodPut, "/api/v1/connections/accept/"+requestID, carol)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, string(services.CodeForbidden), body["code"])
}

func TestAcceptUnknownRequestNotFound(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.request(t, http.MethodPut, "/api/v1/connections/accept/"+primitive.NewObjectID().Hex(), e.bob)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, string(services.CodeNotFound), body["code"])
}

func TestGetConnectionStatusSelf(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.request(t, http.MethodGet, "/api/v1/connections/status/"+e.alice.Hex(), e.alice)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cannot check connection status with yourself", body["message"])
}

func TestGetConnectionRequests(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.request(t, http.MethodPost, "/api/v1/connections/request/"+e.bob.Hex(), e.alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/connections/requests", nil)
	token, err := lib.GenerateJWT(e.bob)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	httpResp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, http.StatusOK, httpResp.StatusCode)

	var requests []map[string]any
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&requests))
	require.Len(t, requests, 1)

	sender, ok := requests[0]["sender"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", sender["username"])
}
