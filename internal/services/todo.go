package services

//go:generate mockgen -source=todo.go -destination=todo_mock.go -package=services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-todo-web/internal/logger"
	"github.com/sbilibin2017/gw-todo-web/internal/models"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidID    = errors.New("invalid todo id")
	ErrTodoNotFound = errors.New("todo not found")
	ErrForbidden    = errors.New("todo belongs to another user")
)

// TodoReader defines read operations for todos.
type TodoReader interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.TodoDB, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.TodoDB, error)
}

// TodoWriter defines write operations for todos.
type TodoWriter interface {
	Insert(ctx context.Context, todo models.TodoDB) (primitive.ObjectID, error)
	ReplaceByID(ctx context.Context, id primitive.ObjectID, title, description, createdAt string) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// TodoService runs todo operations on behalf of an authenticated principal
// and makes sure only the owner can read or change a todo.
type TodoService struct {
	reader      TodoReader
	writer      TodoWriter
	kafkaWriter KafkaWriter
	now         func() time.Time
}

// NewTodoService creates a new TodoService. kafkaWriter may be nil.
func NewTodoService(reader TodoReader, writer TodoWriter, kafkaWriter KafkaWriter) *TodoService {
	return &TodoService{
		reader:      reader,
		writer:      writer,
		kafkaWriter: kafkaWriter,
		now:         time.Now,
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func (s *TodoService) timestamp() string {
	return s.now().Format(models.TodoTimeLayout)
}

// editTimestamp returns a timestamp strictly after previous. created_at has
// one-second resolution, so an edit within the same second moves it forward
// by one second.
func (s *TodoService) editTimestamp(previous string) string {
	now := s.now()
	prev, err := time.ParseInLocation(models.TodoTimeLayout, previous, now.Location())
	if err == nil && !now.Truncate(time.Second).After(prev) {
		now = prev.Add(time.Second)
	}
	return now.Format(models.TodoTimeLayout)
}

// Create stores a new todo owned by the principal.
func (s *TodoService) Create(ctx context.Context, principal models.Principal, title, description string) (*models.TodoDB, error) {
	todo := models.TodoDB{
		User:        principal.UserID,
		Title:       title,
		Description: description,
		CreatedAt:   s.timestamp(),
	}

	id, err := s.writer.Insert(ctx, todo)
	if err != nil {
		logger.Log.Errorw("failed to insert todo", "user_id", principal.UserID, "error", err)
		return nil, err
	}
	todo.ID = id

	s.publish(ctx, models.TodoCreated, id, principal)
	return &todo, nil
}

// ListMine returns the principal's todos.
func (s *TodoService) ListMine(ctx context.Context, principal models.Principal) ([]models.TodoDB, error) {
	todos, err := s.reader.ListByOwner(ctx, principal.UserID)
	if err != nil {
		logger.Log.Errorw("failed to list todos", "user_id", principal.UserID, "error", err)
		return nil, err
	}
	return todos, nil
}

// Get returns one of the principal's todos.
func (s *TodoService) Get(ctx context.Context, principal models.Principal, id string) (*models.TodoDB, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	todo, err := s.owned(ctx, principal, oid)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

// Edit replaces title and description and refreshes created_at.
// Editing a todo that no longer exists is a no-op.
func (s *TodoService) Edit(ctx context.Context, principal models.Principal, id, title, description string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	todo, err := s.owned(ctx, principal, oid)
	if err != nil || todo == nil {
		return err
	}

	if err := s.writer.ReplaceByID(ctx, oid, title, description, s.editTimestamp(todo.CreatedAt)); err != nil {
		logger.Log.Errorw("failed to update todo", "todo_id", id, "error", err)
		return err
	}

	s.publish(ctx, models.TodoUpdated, oid, principal)
	return nil
}

// Delete removes the todo. Deleting a todo that no longer exists is a no-op.
func (s *TodoService) Delete(ctx context.Context, principal models.Principal, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	todo, err := s.owned(ctx, principal, oid)
	if err != nil || todo == nil {
		return err
	}

	if err := s.writer.DeleteByID(ctx, oid); err != nil {
		logger.Log.Errorw("failed to delete todo", "todo_id", id, "error", err)
		return err
	}

	s.publish(ctx, models.TodoDeleted, oid, principal)
	return nil
}

// owned loads the todo and checks it belongs to the principal.
// A missing todo is returned as nil without error.
func (s *TodoService) owned(ctx context.Context, principal models.Principal, id primitive.ObjectID) (*models.TodoDB, error) {
	todo, err := s.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get todo", "todo_id", id.Hex(), "error", err)
		return nil, err
	}
	if todo == nil {
		return nil, nil
	}
	if todo.User != principal.UserID {
		logger.Log.Warnw("todo owner mismatch", "todo_id", id.Hex(), "user_id", principal.UserID)
		return nil, ErrForbidden
	}
	return todo, nil
}

// publish sends a todo event to Kafka. Failures are logged and swallowed.
func (s *TodoService) publish(ctx context.Context, eventType string, id primitive.ObjectID, principal models.Principal) {
	if s.kafkaWriter == nil {
		return
	}

	event := models.TodoEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		TodoID:    id.Hex(),
		UserID:    principal.UserID,
		Timestamp: s.now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal todo event", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.TodoID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish todo event", "event_id", event.EventID, "type", eventType, "error", err)
		return
	}
	logger.Log.Infow("todo event published", "event_id", event.EventID, "type", eventType, "todo_id", event.TodoID)
}
