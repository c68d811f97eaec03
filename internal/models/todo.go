package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// TodoTimeLayout is the format of TodoDB.CreatedAt.
const TodoTimeLayout = "2006-01-02 15:04:05"

// TodoDB represents a document in the todos collection
type TodoDB struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`        // Database-assigned identifier
	User        string             `json:"user" bson:"user"`               // Owner user id (hex), immutable
	Title       string             `json:"title" bson:"title"`             // Todo title
	Description string             `json:"description" bson:"description"` // Free-form description
	CreatedAt   string             `json:"created_at" bson:"created_at"`   // Set on create and on every edit
}

// IDHex returns the canonical string form of the id used in URLs.
func (t TodoDB) IDHex() string {
	return t.ID.Hex()
}
