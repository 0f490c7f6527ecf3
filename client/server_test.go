package client

import (
	"context"
	stderrors "errors"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"hoarding-server/handlers"
	"hoarding-server/models"
	"hoarding-server/services"
	"hoarding-server/store"
	apperrors "hoarding-server/utils/errors"
)

func TestAgainstServer(t *testing.T) {
	log := zap.NewNop().Sugar()
	users := services.NewUserService(store.NewMemoryUserStore(), nil, "client-secret", time.Hour, time.Minute, log)
	hoardings := services.NewHoardingService(store.NewMemoryHoardingStore(), users, log)
	srv := httptest.NewServer(handlers.NewRouter(handlers.NewAuthHandler(users), handlers.NewHoardingHandler(hoardings), users))
	t.Cleanup(srv.Close)

	c := New(NewAPI(srv.URL+"/api", 0), NewMemoryCache(), log)
	ctx := context.Background()

	owner := NewSession()
	if _, err := c.Register(ctx, owner, "owner@example.com", "hunter22", models.RoleAuthorized); err != nil {
		t.Fatalf("Register: %v", err)
	}
	viewer := NewSession()
	if _, err := c.Register(ctx, viewer, "viewer@example.com", "hunter22", models.RoleViewer); err != nil {
		t.Fatalf("Register viewer: %v", err)
	}

	before, err := c.Nearby(ctx, 28.4, 77.3, 5000)
	if err != nil || len(before.Listings) != 0 {
		t.Fatalf("empty nearby: %+v %v", before, err)
	}

	added, err := c.AddListing(ctx, owner, validDraft())
	if err != nil {
		t.Fatalf("AddListing: %v", err)
	}

	after, err := c.Nearby(ctx, 28.4, 77.3, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if after.Source != SourceNetwork || len(after.Listings) != 1 || after.Listings[0].ID != added.ID {
		t.Fatalf("new listing not visible after add: %+v", after)
	}
	if m := BuildMarkers(after.Listings); len(m) != 1 || m[0].Longitude != 77.3 || m[0].Latitude != 28.4 {
		t.Fatalf("markers: %+v", m)
	}

	title := "Renamed"
	if _, err := c.UpdateListing(ctx, viewer, added.ID, models.HoardingPatch{Title: &title}); !stderrors.Is(err, apperrors.ErrOwnership) {
		t.Fatalf("viewer update: expected ownership error, got %v", err)
	}
	if err := c.DeleteListing(ctx, owner, added.ID); err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}
	all, err := c.All(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("All after delete: %+v %v", all, err)
	}

	c.Logout(owner)
	if _, err := c.Login(ctx, owner, "owner@example.com", "wrong-pass"); !stderrors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if owner.LoggedIn() {
		t.Fatal("failed login started a session")
	}
	if _, err := c.Login(ctx, owner, "owner@example.com", "hunter22"); err != nil || !owner.CanAddListings() {
		t.Fatalf("Login: %v", err)
	}
}
