package repositories

import (
	"context"
	"errors"

	"github.com/sbilibin2017/gw-todo-web/internal/logger"
	"github.com/sbilibin2017/gw-todo-web/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TodoReadRepository handles todo read operations
type TodoReadRepository struct {
	coll *mongo.Collection
}

func NewTodoReadRepository(db *mongo.Database) *TodoReadRepository {
	return &TodoReadRepository{coll: db.Collection(TodosCollection)}
}

// ListByOwner returns the owner's todos, newest first.
func (r *TodoReadRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.TodoDB, error) {
	filter := bson.M{"user": ownerID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	todos := []models.TodoDB{}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err == nil {
		err = cur.All(ctx, &todos)
	}

	logger.Log.Infow("query",
		"collection", TodosCollection,
		"op", "find",
		"filter", filter,
		"result", len(todos),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return todos, nil
}

// GetByID returns the todo with the given id, or nil if there is none.
func (r *TodoReadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TodoDB, error) {
	filter := bson.M{"_id": id}

	var todo models.TodoDB
	err := r.coll.FindOne(ctx, filter).Decode(&todo)

	logger.Log.Infow("query",
		"collection", TodosCollection,
		"op", "find_one",
		"filter", filter,
		"result", todo.User,
		"error", err,
	)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// TodoWriteRepository handles todo write operations
type TodoWriteRepository struct {
	coll *mongo.Collection
}

func NewTodoWriteRepository(db *mongo.Database) *TodoWriteRepository {
	return &TodoWriteRepository{coll: db.Collection(TodosCollection)}
}

// Insert stores a new todo and returns the assigned id.
func (r *TodoWriteRepository) Insert(ctx context.Context, todo models.TodoDB) (primitive.ObjectID, error) {
	todo.ID = primitive.NilObjectID
	res, err := r.coll.InsertOne(ctx, todo)

	var id primitive.ObjectID
	if res != nil {
		id, _ = res.InsertedID.(primitive.ObjectID)
	}

	logger.Log.Infow("query",
		"collection", TodosCollection,
		"op", "insert_one",
		"args", []any{todo.User, todo.Title},
		"result", id.Hex(),
		"error", err,
	)

	return id, err
}

// ReplaceByID overwrites the mutable fields. Missing ids are ignored.
func (r *TodoWriteRepository) ReplaceByID(ctx context.Context, id primitive.ObjectID, title, description, createdAt string) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{
		"title":       title,
		"description": description,
		"created_at":  createdAt,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	var matched int64
	if res != nil {
		matched = res.MatchedCount
	}

	logger.Log.Infow("query",
		"collection", TodosCollection,
		"op", "update_one",
		"filter", filter,
		"result", matched,
		"error", err,
	)

	return err
}

// DeleteByID removes the todo. Missing ids are ignored.
func (r *TodoWriteRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}

	res, err := r.coll.DeleteOne(ctx, filter)
	var deleted int64
	if res != nil {
		deleted = res.DeletedCount
	}

	logger.Log.Infow("query",
		"collection", TodosCollection,
		"op", "delete_one",
		"filter", filter,
		"result", deleted,
		"error", err,
	)

	return err
}
