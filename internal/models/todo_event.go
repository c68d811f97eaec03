package models

// Todo event types published to Kafka.
const (
	TodoCreated = "todo.created"
	TodoUpdated = "todo.updated"
	TodoDeleted = "todo.deleted"
)

// TodoEvent describes a change to a todo, including who made it and when.
type TodoEvent struct {
	EventID   string `json:"event_id"`  // EventID is a unique identifier for the event.
	Type      string `json:"type"`      // Type is one of TodoCreated, TodoUpdated, TodoDeleted.
	TodoID    string `json:"todo_id"`   // TodoID is the hex id of the affected todo.
	UserID    string `json:"user_id"`   // UserID is the principal that performed the change.
	Timestamp int64  `json:"timestamp"` // Timestamp is the Unix time (seconds) of the change.
}
