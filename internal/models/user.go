package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// UserDB represents a document in the users collection
type UserDB struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`  // Database-assigned identifier
	Username string             `json:"username" bson:"username"` // Unique username
	Password string             `json:"-" bson:"password"`        // bcrypt hash, never the plain password
}
