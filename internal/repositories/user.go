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

// ErrDuplicateUsername is returned when the unique username index rejects an insert.
var ErrDuplicateUsername = errors.New("duplicate username")

type UserReadRepository struct {
	coll *mongo.Collection
}

func NewUserReadRepository(db *mongo.Database) *UserReadRepository {
	return &UserReadRepository{coll: db.Collection(UsersCollection)}
}

// ExistsByUsername reports whether a user with the given username is stored.
func (r *UserReadRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	filter := bson.M{"username": username}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))

	logger.Log.Infow("query",
		"collection", UsersCollection,
		"op", "count",
		"filter", filter,
		"result", n,
		"error", err,
	)

	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetByUsername returns the user with the given username, or nil if there is none.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	filter := bson.M{"username": username}

	var user models.UserDB
	err := r.coll.FindOne(ctx, filter).Decode(&user)

	logger.Log.Infow("query",
		"collection", UsersCollection,
		"op", "find_one",
		"filter", filter,
		"result", user.ID.Hex(),
		"error", err,
	)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type UserWriteRepository struct {
	coll *mongo.Collection
}

func NewUserWriteRepository(db *mongo.Database) *UserWriteRepository {
	return &UserWriteRepository{coll: db.Collection(UsersCollection)}
}

// Save inserts a new user and returns its id.
func (r *UserWriteRepository) Save(ctx context.Context, username, passwordHash string) (string, error) {
	res, err := r.coll.InsertOne(ctx, models.UserDB{
		Username: username,
		Password: passwordHash,
	})

	var id string
	if res != nil {
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			id = oid.Hex()
		}
	}

	logger.Log.Infow("query",
		"collection", UsersCollection,
		"op", "insert_one",
		"args", []any{username},
		"result", id,
		"error", err,
	)

	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicateUsername
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
