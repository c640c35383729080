package handlers

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/models"
	"portfolio/internal/service"
)

// memUsers is an in-memory repository.Authorization for end-to-end auth checks.
type memUsers struct {
	mu     sync.Mutex
	nextID int
	users  map[int]models.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[int]models.User{}} }

func (m *memUsers) Create(_ context.Context, u models.User) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) List(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memUsers) CountByRole(_ context.Context, role string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if role == "" || u.Role == role {
			n++
		}
	}
	return n, nil
}

func TestUsersRoutes_RoleChangesApplyToIssuedTokens(t *testing.T) {
	ctx := context.Background()
	auth := service.NewAuthService(newMemUsers(), &mockActivity{}, "handler-test-signing-key", time.Hour)
	r := newTestRouter(&service.Service{Authorization: auth})

	alice, err := auth.SignUp(ctx, service.SignUpInput{Username: "alice", Password: "pw-alice"})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, alice.Role)
	bob, err := auth.SignUp(ctx, service.SignUpInput{Username: "bob", Password: "pw-bob"})
	require.NoError(t, err)

	admin := models.RoleAdmin
	_, err = auth.UpdateUser(ctx, bob.ID, service.UserUpdate{Role: &admin})
	require.NoError(t, err)
	bobToken, err := auth.GenerateToken(ctx, "bob", "pw-bob")
	require.NoError(t, err)

	w := do(t, r, http.MethodGet, "/api/users", bobToken, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	user := models.RoleUser
	_, err = auth.UpdateUser(ctx, bob.ID, service.UserUpdate{Role: &user})
	require.NoError(t, err)
	w = do(t, r, http.MethodGet, "/api/users", bobToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code, "demoted admin keeps an admin claim in the token")

	_, err = auth.UpdateUser(ctx, bob.ID, service.UserUpdate{Role: &admin})
	require.NoError(t, err)
	require.NoError(t, auth.DeleteUser(ctx, bob.ID))
	w = do(t, r, http.MethodDelete, "/api/users/1", bobToken, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "deleted admin")
	assert.JSONEq(t, `{"error":"invalid or expired token"}`, w.Body.String())
}
