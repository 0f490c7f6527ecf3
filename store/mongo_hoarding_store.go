package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hoarding-server/geo"
	"hoarding-server/models"
	apperrors "hoarding-server/utils/errors"
)

const HoardingsCollection = "hoardings"

type MongoHoardingStore struct {
	collection *mongo.Collection
}

func NewMongoHoardingStore(db *mongo.Database) *MongoHoardingStore {
	return &MongoHoardingStore{collection: db.Collection(HoardingsCollection)}
}

// EnsureIndexes creates the 2dsphere index $near depends on.
func (s *MongoHoardingStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
	})
	if err != nil {
		return apperrors.Store(err, "failed to create hoarding indexes")
	}
	return nil
}

func (s *MongoHoardingStore) Insert(ctx context.Context, h *models.Hoarding) error {
	if h.ID == "" {
		h.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.collection.InsertOne(ctx, h); err != nil {
		return apperrors.Store(err, "failed to insert hoarding")
	}
	return nil
}

func (s *MongoHoardingStore) FindByID(ctx context.Context, id string) (models.Hoarding, error) {
	var h models.Hoarding
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&h)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Hoarding{}, ErrNotFound
	}
	if err != nil {
		return models.Hoarding{}, apperrors.Store(err, "failed to load hoarding")
	}
	return h, nil
}

func (s *MongoHoardingStore) FindNear(ctx context.Context, center geo.Coordinate, maxDistance float64, limit int) ([]models.Hoarding, error) {
	if err := checkQuery(center, maxDistance); err != nil {
		return nil, err
	}
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{center.Lon, center.Lat},
				},
				"$maxDistance": maxDistance,
			},
		},
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.find(ctx, filter, opts)
}

func (s *MongoHoardingStore) FindAll(ctx context.Context) ([]models.Hoarding, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, bson.M{}, opts)
}

func (s *MongoHoardingStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Hoarding, error) {
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Store(err, "failed to query hoardings")
	}
	defer cursor.Close(ctx)

	hoardings := []models.Hoarding{}
	if err := cursor.All(ctx, &hoardings); err != nil {
		return nil, apperrors.Store(err, "failed to decode hoardings")
	}
	return hoardings, nil
}

func (s *MongoHoardingStore) UpdateByID(ctx context.Context, id string, u models.HoardingUpdate) (models.Hoarding, error) {
	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Size != nil {
		set["size"] = *u.Size
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.Availability != nil {
		set["availability"] = *u.Availability
	}
	if !u.UpdatedAt.IsZero() {
		set["updated_at"] = u.UpdatedAt
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	var h models.Hoarding
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&h)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Hoarding{}, ErrNotFound
	}
	if err != nil {
		return models.Hoarding{}, apperrors.Store(err, "failed to update hoarding")
	}
	return h, nil
}

func (s *MongoHoardingStore) DeleteByID(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Store(err, "failed to delete hoarding")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
