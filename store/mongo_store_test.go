package store

import (
	"context"
	stderrors "errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"hoarding-server/geo"
	"hoarding-server/models"
)

func hoardingDoc(id string, lon, lat float64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: "Board " + id},
		{Key: "price", Value: 500.0},
		{Key: "location", Value: bson.D{
			{Key: "type", Value: "Point"},
			{Key: "coordinates", Value: bson.A{lon, lat}},
		}},
		{Key: "created_by", Value: "u1"},
	}
}

func TestMongoHoardingStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("EnsureIndexes creates 2dsphere index", func(mt *mtest.T) {
		s := NewMongoHoardingStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		if err := s.EnsureIndexes(ctx); err != nil {
			mt.Fatal(err)
		}
		evt := mt.GetStartedEvent()
		indexes, err := evt.Command.Lookup("indexes").Array().Values()
		if err != nil {
			mt.Fatal(err)
		}
		if got := indexes[0].Document().Lookup("key", "location").StringValue(); got != "2dsphere" {
			mt.Fatalf("location index type = %q", got)
		}
	})

	mt.Run("Insert assigns an object id", func(mt *mtest.T) {
		s := NewMongoHoardingStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		h := models.Hoarding{Title: "New", Location: models.NewPoint(77.1, 28.2)}
		if err := s.Insert(ctx, &h); err != nil {
			mt.Fatal(err)
		}
		if len(h.ID) != 24 {
			mt.Fatalf("id = %q", h.ID)
		}
		doc := mt.GetStartedEvent().Command.Lookup("documents").Array().Index(0).Value().Document()
		if doc.Lookup("_id").StringValue() != h.ID {
			mt.Fatal("stored _id differs from assigned id")
		}
	})

	mt.Run("FindNear sends $near in lon,lat order", func(mt *mtest.T) {
		s := NewMongoHoardingStore(mt.DB)
		ns := mt.DB.Name() + "." + HoardingsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			hoardingDoc("h1", 77.1, 28.2), hoardingDoc("h2", 77.11, 28.21)))

		got, err := s.FindNear(ctx, geo.Coordinate{Lon: 77.1, Lat: 28.2}, 5000, 100)
		if err != nil {
			mt.Fatal(err)
		}
		if len(got) != 2 || got[0].ID != "h1" || got[0].Location.Lon() != 77.1 || got[0].Location.Lat() != 28.2 {
			mt.Fatalf("decoded %+v", got)
		}

		cmd := mt.GetStartedEvent().Command
		near := cmd.Lookup("filter", "location", "$near").Document()
		if typ := near.Lookup("$geometry", "type").StringValue(); typ != "Point" {
			mt.Fatalf("geometry type = %q", typ)
		}
		coords, err := near.Lookup("$geometry", "coordinates").Array().Values()
		if err != nil {
			mt.Fatal(err)
		}
		if len(coords) != 2 || coords[0].Double() != 77.1 || coords[1].Double() != 28.2 {
			mt.Fatalf("coordinates = %v", coords)
		}
		if d := near.Lookup("$maxDistance").Double(); d != 5000 {
			mt.Fatalf("$maxDistance = %v", d)
		}
		if limit := cmd.Lookup("limit").AsInt64(); limit != 100 {
			mt.Fatalf("limit = %d", limit)
		}
	})

	mt.Run("FindNear without limit", func(mt *mtest.T) {
		s := NewMongoHoardingStore(mt.DB)
		ns := mt.DB.Name() + "." + HoardingsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		got, err := s.FindNear(ctx, geo.Coordinate{Lon: 77.1, Lat: 28.2}, 5000, 0)
		if err != nil || len(got) != 0 {
			mt.Fatalf("FindNear: %v %v", got, err)
		}
		if _, err := mt.GetStartedEvent().Command.LookupErr("limit"); err == nil {
			mt.Fatal("limit sent for an unlimited query")
		}
	})

	mt.Run("FindNear rejects bad input before querying", func(mt *mtest.T) {
		s := NewMongoHoardingStore(mt.DB)
		if _, err := s.FindNear(ctx, geo.Coordinate{Lon: 200, Lat: 10}, 5000, 0); err == nil {
			mt.Fatal("expected validation error")
		}
		if _, err := s.FindNear(ctx, geo.Coordinate{Lon: 10, Lat: 10}, -1, 0); err == nil {
			mt.Fatal("expected validation error for radius")
		}
		if evt := mt.GetStartedEvent(); evt != nil {
			mt.Fatalf("query sent: %s", evt.CommandName)
		}
	})

	mt.Run("FindByID missing", func(mt *mtest.T) {
		s := NewMongoHoardingStore(mt.DB)
		ns := mt.DB.Name() + "." + HoardingsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		if _, err := s.FindByID(ctx, "nope"); !stderrors.Is(err, ErrNotFound) {
			mt.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("UpdateByID sets fields", func(mt *mtest.T) {
		s := NewMongoHoardingStore(mt.DB)
		updated := hoardingDoc("h1", 77.1, 28.2)
		updated[1] = bson.E{Key: "title", Value: "Renamed"}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: updated}))

		title := "Renamed"
		h, err := s.UpdateByID(ctx, "h1", models.HoardingUpdate{Title: &title})
		if err != nil {
			mt.Fatal(err)
		}
		if h.Title != "Renamed" {
			mt.Fatalf("returned %+v", h)
		}
		cmd := mt.GetStartedEvent().Command
		if got := cmd.Lookup("query", "_id").StringValue(); got != "h1" {
			mt.Fatalf("query _id = %q", got)
		}
		if got := cmd.Lookup("update", "$set", "title").StringValue(); got != "Renamed" {
			mt.Fatalf("$set.title = %q", got)
		}
		if _, err := cmd.Lookup("update", "$set").Document().LookupErr("created_by"); err == nil {
			mt.Fatal("created_by must never be set by an update")
		}
		if !cmd.Lookup("new").Boolean() {
			mt.Fatal("update should return the new document")
		}
	})

	mt.Run("UpdateByID missing", func(mt *mtest.T) {
		s := NewMongoHoardingStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		title := "x"
		if _, err := s.UpdateByID(ctx, "nope", models.HoardingUpdate{Title: &title}); !stderrors.Is(err, ErrNotFound) {
			mt.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("DeleteByID", func(mt *mtest.T) {
		s := NewMongoHoardingStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}),
		)
		if err := s.DeleteByID(ctx, "h1"); err != nil {
			mt.Fatalf("delete: %v", err)
		}
		if err := s.DeleteByID(ctx, "h1"); !stderrors.Is(err, ErrNotFound) {
			mt.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMongoUserStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("Insert duplicate email", func(mt *mtest.T) {
		s := NewMongoUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: email_1",
		}))
		err := s.Insert(ctx, &models.User{Email: "dup@example.com", Role: models.RoleViewer})
		if !stderrors.Is(err, ErrDuplicate) {
			mt.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	mt.Run("FindByEmail missing", func(mt *mtest.T) {
		s := NewMongoUserStore(mt.DB)
		ns := mt.DB.Name() + "." + UsersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		if _, err := s.FindByEmail(ctx, "ghost@example.com"); !stderrors.Is(err, ErrNotFound) {
			mt.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("FindByIDs batches with $in", func(mt *mtest.T) {
		s := NewMongoUserStore(mt.DB)
		ns := mt.DB.Name() + "." + UsersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "u1"}, {Key: "email", Value: "a@example.com"}, {Key: "role", Value: "authorized"}},
			bson.D{{Key: "_id", Value: "u2"}, {Key: "email", Value: "b@example.com"}, {Key: "role", Value: "viewer"}},
		))
		users, err := s.FindByIDs(ctx, []string{"u1", "u2", "u3"})
		if err != nil {
			mt.Fatal(err)
		}
		if len(users) != 2 || users["u2"].Email != "b@example.com" {
			mt.Fatalf("users = %+v", users)
		}
		ids, err := mt.GetStartedEvent().Command.Lookup("filter", "_id", "$in").Array().Values()
		if err != nil || len(ids) != 3 {
			mt.Fatalf("$in ids = %v %v", ids, err)
		}
	})
}
