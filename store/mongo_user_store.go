package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hoarding-server/models"
	apperrors "hoarding-server/utils/errors"
)

const UsersCollection = "users"

type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: db.Collection(UsersCollection)}
}

func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return apperrors.Store(err, "failed to create user indexes")
	}
	return nil
}

func (s *MongoUserStore) Insert(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	_, err := s.collection.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return apperrors.Store(err, "failed to create user in database")
	}
	return nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": bson.M{"$eq": email}})
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, apperrors.Store(err, "failed to load user")
	}
	return user, nil
}

// FindByIDs loads users in one round trip, keyed by id.
func (s *MongoUserStore) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	users := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperrors.Store(err, "failed to query users")
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			return nil, apperrors.Store(err, "failed to decode user")
		}
		users[u.ID] = u
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.Store(err, "failed to iterate users")
	}
	return users, nil
}
