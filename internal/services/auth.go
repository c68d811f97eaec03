package services

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-todo-web/internal/jwt"
	"github.com/sbilibin2017/gw-todo-web/internal/logger"
	"github.com/sbilibin2017/gw-todo-web/internal/models"
	"github.com/sbilibin2017/gw-todo-web/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// Error variables
var (
	ErrEmptyField         = errors.New("username and password are required")
	ErrUserAlreadyExists  = errors.New("username already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrPasswordTooLong    = errors.New("password is too long")
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// dummyHash is compared against when the username is unknown so that both
// failure paths of Verify cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gw-todo-web"), bcrypt.DefaultCost)

// UserReader defines read-only operations for users.
type UserReader interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username string, passwordHash string) (string, error)
}

// SessionStore keeps server-side sessions.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// JWTGenerator issues and parses session tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID, sessionID string) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// AuthService handles registration, login, logout and session resolution.
type AuthService struct {
	reader   UserReader
	writer   UserWriter
	sessions SessionStore
	jwt      JWTGenerator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, sessions SessionStore, jwt JWTGenerator) *AuthService {
	return &AuthService{
		reader:   reader,
		writer:   writer,
		sessions: sessions,
		jwt:      jwt,
	}
}

// Register creates a new user. It does not log the user in.
func (svc *AuthService) Register(ctx context.Context, username, password, confirm string) error {
	if username == "" || password == "" {
		return ErrEmptyField
	}

	exists, err := svc.reader.ExistsByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return err
	}
	if exists {
		logger.Log.Infow("user already exists", "username", username)
		return ErrUserAlreadyExists
	}

	if password != confirm {
		return ErrPasswordMismatch
	}

	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	if _, err := svc.writer.Save(ctx, username, string(hashedPassword)); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUsername) {
			logger.Log.Infow("user created concurrently", "username", username)
			return ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return err
	}

	return nil
}

// Verify checks the credentials and returns the matching user.
func (svc *AuthService) Verify(ctx context.Context, username, password string) (*models.UserDB, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		logger.Log.Infow("user does not exist", "username", username)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logger.Log.Infow("invalid credentials", "username", username)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates a user, opens a session and returns its signed token.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := svc.Verify(ctx, username, password)
	if err != nil {
		return "", err
	}

	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID.Hex(),
		Username:  user.Username,
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.sessions.Save(ctx, session); err != nil {
		logger.Log.Errorw("failed to save session", "err", err)
		return "", err
	}

	token, err := svc.jwt.Generate(ctx, session.UserID, session.ID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}

// Logout ends the session behind the token. Unknown or invalid tokens are ignored.
func (svc *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := svc.jwt.GetClaims(ctx, token)
	if err != nil {
		return nil
	}

	if err := svc.sessions.Delete(ctx, claims.SessionID); err != nil {
		logger.Log.Errorw("failed to delete session", "session_id", claims.SessionID, "err", err)
		return err
	}
	return nil
}

// Authenticate resolves the principal behind a session token.
func (svc *AuthService) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := svc.jwt.GetClaims(ctx, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	session, err := svc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		logger.Log.Errorw("failed to load session", "session_id", claims.SessionID, "err", err)
		return nil, err
	}
	if session == nil || session.UserID != claims.UserID {
		return nil, ErrUnauthenticated
	}

	return &models.Principal{
		UserID:    session.UserID,
		Username:  session.Username,
		SessionID: session.ID,
	}, nil
}
