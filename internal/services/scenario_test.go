package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sbilibin2017/gw-todo-web/internal/jwt"
	"github.com/sbilibin2017/gw-todo-web/internal/models"
	"github.com/sbilibin2017/gw-todo-web/internal/repositories"
	"github.com/sbilibin2017/gw-todo-web/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory users, todos and sessions store.
type memStore struct {
	mu       sync.Mutex
	users    map[string]models.UserDB
	todos    map[primitive.ObjectID]models.TodoDB
	sessions map[string]models.Session
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]models.UserDB{},
		todos:    map[primitive.ObjectID]models.TodoDB{},
		sessions: map[string]models.Session{},
	}
}

func (m *memStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[username]
	return ok, nil
}

func (m *memStore) GetByUsername(_ context.Context, username string) (*models.UserDB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memStore) Save(_ context.Context, username, passwordHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return "", repositories.ErrDuplicateUsername
	}
	u := models.UserDB{ID: primitive.NewObjectID(), Username: username, Password: passwordHash}
	m.users[username] = u
	return u.ID.Hex(), nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID string) ([]models.TodoDB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	todos := []models.TodoDB{}
	for _, todo := range m.todos {
		if todo.User == ownerID {
			todos = append(todos, todo)
		}
	}
	sort.Slice(todos, func(i, j int) bool {
		if todos[i].CreatedAt != todos[j].CreatedAt {
			return todos[i].CreatedAt > todos[j].CreatedAt
		}
		return todos[i].ID.Hex() > todos[j].ID.Hex()
	})
	return todos, nil
}

func (m *memStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.TodoDB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	todo, ok := m.todos[id]
	if !ok {
		return nil, nil
	}
	return &todo, nil
}

func (m *memStore) Insert(_ context.Context, todo models.TodoDB) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	todo.ID = primitive.NewObjectID()
	m.todos[todo.ID] = todo
	return todo.ID, nil
}

func (m *memStore) ReplaceByID(_ context.Context, id primitive.ObjectID, title, description, createdAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	todo, ok := m.todos[id]
	if !ok {
		return nil
	}
	todo.Title, todo.Description, todo.CreatedAt = title, description, createdAt
	m.todos[id] = todo
	return nil
}

func (m *memStore) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.todos, id)
	return nil
}

// memSessions adapts memStore to services.SessionStore.
type memSessions struct{ *memStore }

func (s memSessions) Save(_ context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s memSessions) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s memSessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func newScenario(t *testing.T) (*services.AuthService, *services.TodoService) {
	t.Helper()
	store := newMemStore()
	tokens := jwt.New(jwt.WithSecretKey("scenario-secret"), jwt.WithExpiration(time.Hour))

	auth := services.NewAuthService(store, store, memSessions{store}, tokens)
	todos := services.NewTodoService(store, store, nil)

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	todos.SetNow(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	return auth, todos
}

func loginAs(t *testing.T, auth *services.AuthService, username, password string) models.Principal {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, auth.Register(ctx, username, password, password))
	token, err := auth.Login(ctx, username, password)
	require.NoError(t, err)
	principal, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, username, principal.Username)
	return *principal
}

func TestScenario_OwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	auth, todos := newScenario(t)

	alice := loginAs(t, auth, "alice", "pw1")
	bob := loginAs(t, auth, "bob", "pw2")

	first, err := todos.Create(ctx, alice, "Buy milk", "2L")
	require.NoError(t, err)
	_, err = todos.Create(ctx, alice, "Walk dog", "")
	require.NoError(t, err)
	_, err = todos.Create(ctx, bob, "Fix bike", "chain")
	require.NoError(t, err)

	aliceTodos, err := todos.ListMine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceTodos, 2)
	assert.Equal(t, "Walk dog", aliceTodos[0].Title)
	assert.Equal(t, "Buy milk", aliceTodos[1].Title)
	for _, todo := range aliceTodos {
		assert.Equal(t, alice.UserID, todo.User)
	}

	bobTodos, err := todos.ListMine(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobTodos, 1)

	assert.ErrorIs(t, todos.Edit(ctx, bob, first.IDHex(), "hacked", ""), services.ErrForbidden)
	assert.ErrorIs(t, todos.Delete(ctx, bob, first.IDHex()), services.ErrForbidden)

	got, err := todos.Get(ctx, alice, first.IDHex())
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
}

func TestScenario_EditMovesTodoToTop(t *testing.T) {
	ctx := context.Background()
	auth, todos := newScenario(t)
	alice := loginAs(t, auth, "alice", "pw1")

	first, err := todos.Create(ctx, alice, "A", "a")
	require.NoError(t, err)
	_, err = todos.Create(ctx, alice, "B", "b")
	require.NoError(t, err)

	require.NoError(t, todos.Edit(ctx, alice, first.IDHex(), "A2", "a2"))

	list, err := todos.ListMine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A2", list[0].Title)
	assert.Equal(t, "a2", list[0].Description)
	assert.Greater(t, list[0].CreatedAt, first.CreatedAt)
}

func TestScenario_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	auth, todos := newScenario(t)
	alice := loginAs(t, auth, "alice", "pw1")

	todo, err := todos.Create(ctx, alice, "A", "")
	require.NoError(t, err)

	require.NoError(t, todos.Delete(ctx, alice, todo.IDHex()))
	require.NoError(t, todos.Delete(ctx, alice, todo.IDHex()))

	list, err := todos.ListMine(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestScenario_LogoutEndsSession(t *testing.T) {
	ctx := context.Background()
	auth, _ := newScenario(t)

	require.NoError(t, auth.Register(ctx, "alice", "pw1", "pw1"))
	token, err := auth.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, token))
	require.NoError(t, auth.Logout(ctx, token))

	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestScenario_DuplicateUsernameAndBadPassword(t *testing.T) {
	ctx := context.Background()
	auth, _ := newScenario(t)

	require.NoError(t, auth.Register(ctx, "alice", "pw1", "pw1"))
	assert.ErrorIs(t, auth.Register(ctx, "alice", "other", "other"), services.ErrUserAlreadyExists)

	_, err := auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody", "pw1")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestScenario_LongPasswordRejected(t *testing.T) {
	ctx := context.Background()
	auth, _ := newScenario(t)

	long := strings.Repeat("a", 80)
	assert.ErrorIs(t, auth.Register(ctx, "carol", long, long), services.ErrPasswordTooLong)

	_, err := auth.Login(ctx, "carol", long)
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// the username is still free
	assert.NoError(t, auth.Register(ctx, "carol", "pw", "pw"))
}

func TestScenario_EditInSameSecondUpdatesTimestamp(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	todos := services.NewTodoService(store, store, nil)
	fixedClock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	todos.SetNow(func() time.Time { return fixedClock })

	owner := models.Principal{UserID: primitive.NewObjectID().Hex(), Username: "alice"}
	created, err := todos.Create(ctx, owner, "A", "a")
	require.NoError(t, err)

	require.NoError(t, todos.Edit(ctx, owner, created.IDHex(), "A2", "a2"))
	first, err := todos.Get(ctx, owner, created.IDHex())
	require.NoError(t, err)
	assert.Greater(t, first.CreatedAt, created.CreatedAt)

	require.NoError(t, todos.Edit(ctx, owner, created.IDHex(), "A3", "a3"))
	second, err := todos.Get(ctx, owner, created.IDHex())
	require.NoError(t, err)
	assert.Greater(t, second.CreatedAt, first.CreatedAt)
	assert.Equal(t, "A3", second.Title)
}

func TestScenario_ReloginReplacesSession(t *testing.T) {
	ctx := context.Background()
	auth, _ := newScenario(t)
	require.NoError(t, auth.Register(ctx, "alice", "pw1", "pw1"))

	previous, err := auth.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	current, err := auth.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, previous))

	_, err = auth.Authenticate(ctx, previous)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
	principal, err := auth.Authenticate(ctx, current)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Username)
}
