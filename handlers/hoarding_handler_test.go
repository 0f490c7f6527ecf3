package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"hoarding-server/models"
	"hoarding-server/services"
	"hoarding-server/store"
	apperrors "hoarding-server/utils/errors"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zap.NewNop().Sugar()
	userService := services.NewUserService(store.NewMemoryUserStore(), nil, "handler-secret", time.Hour, time.Minute, log)
	hoardingService := services.NewHoardingService(store.NewMemoryHoardingStore(), userService, log)
	router := NewRouter(NewAuthHandler(userService), NewHoardingHandler(hoardingService), userService)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func register(t *testing.T, base, email, role string) services.AuthResult {
	t.Helper()
	var res services.AuthResult
	status := doJSON(t, http.MethodPost, base+"/auth/register", "", map[string]string{
		"email": email, "password": "hunter22", "role": role,
	}, &res)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, status)
	}
	return res
}

func listingBody(lon, lat any) map[string]any {
	return map[string]any{
		"title":       "Highway hoarding",
		"description": "Lit at night",
		"size":        "40x20",
		"price":       12000,
		"location":    map[string]any{"type": "Point", "coordinates": []any{lon, lat}},
		"address":     "NH48",
	}
}

func TestHoardingLifecycle(t *testing.T) {
	srv := newTestServer(t)
	owner := register(t, srv.URL, "owner@example.com", "authorized")
	other := register(t, srv.URL, "other@example.com", "authorized")

	var created models.Hoarding
	if status := doJSON(t, http.MethodPost, srv.URL+"/hoardings/add", owner.Token, listingBody(77.1, 28.2), &created); status != http.StatusCreated {
		t.Fatalf("add: status %d", status)
	}
	if created.ID == "" || created.CreatedBy != owner.User.ID {
		t.Fatalf("unexpected created listing: %+v", created)
	}

	var near []models.Hoarding
	if status := doJSON(t, http.MethodGet, srv.URL+"/hoardings/nearby?lat=28.2&lng=77.1", "", nil, &near); status != http.StatusOK {
		t.Fatalf("nearby: status %d", status)
	}
	if len(near) != 1 || near[0].Location.Coordinates[0] != 77.1 || near[0].Location.Coordinates[1] != 28.2 {
		t.Fatalf("nearby returned %+v", near)
	}

	var all []models.Hoarding
	if status := doJSON(t, http.MethodGet, srv.URL+"/api/hoardings", "", nil, &all); status != http.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	if len(all) != 1 || all[0].Creator == nil || all[0].Creator.Email != "owner@example.com" {
		t.Fatalf("list did not join creator: %+v", all)
	}

	var apiErr apperrors.APIError
	status := doJSON(t, http.MethodPut, srv.URL+"/hoardings/"+created.ID, other.Token, map[string]any{"title": "Mine now"}, &apiErr)
	if status != http.StatusForbidden || apiErr.Code != apperrors.ErrOwnership.Code {
		t.Fatalf("non-owner update: %d %+v", status, apiErr)
	}
	status = doJSON(t, http.MethodPut, srv.URL+"/hoardings/"+created.ID, other.Token, map[string]any{"createdBy": "x"}, &apiErr)
	if status != http.StatusForbidden {
		t.Fatalf("non-owner invalid update: status %d", status)
	}
	status = doJSON(t, http.MethodPut, srv.URL+"/hoardings/"+created.ID, owner.Token, map[string]any{"createdBy": "x"}, &apiErr)
	if status != http.StatusBadRequest {
		t.Fatalf("immutable field update: status %d", status)
	}

	var updated models.Hoarding
	if status := doJSON(t, http.MethodPut, srv.URL+"/hoardings/"+created.ID, owner.Token, map[string]any{"price": 9000, "availability": false}, &updated); status != http.StatusOK {
		t.Fatalf("owner update: status %d", status)
	}
	if updated.Price != 9000 || updated.Availability || updated.Title != "Highway hoarding" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if status := doJSON(t, http.MethodDelete, srv.URL+"/hoardings/"+created.ID, other.Token, nil, nil); status != http.StatusForbidden {
		t.Fatalf("non-owner delete: status %d", status)
	}
	if status := doJSON(t, http.MethodDelete, srv.URL+"/hoardings/"+created.ID, owner.Token, nil, nil); status != http.StatusOK {
		t.Fatalf("owner delete: status %d", status)
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/hoardings/"+created.ID, "", nil, nil); status != http.StatusNotFound {
		t.Fatalf("get after delete: status %d", status)
	}
	if status := doJSON(t, http.MethodDelete, srv.URL+"/hoardings/"+created.ID, owner.Token, nil, nil); status != http.StatusNotFound {
		t.Fatalf("second delete: status %d", status)
	}
}

func TestAddHoardingRejections(t *testing.T) {
	srv := newTestServer(t)
	owner := register(t, srv.URL, "owner@example.com", "authorized")
	viewer := register(t, srv.URL, "viewer@example.com", "viewer")

	tests := []struct {
		name   string
		token  string
		body   map[string]any
		status int
	}{
		{"no token", "", listingBody(77.1, 28.2), http.StatusUnauthorized},
		{"viewer role", viewer.Token, listingBody(77.1, 28.2), http.StatusForbidden},
		{"longitude out of range", owner.Token, listingBody(200, 10), http.StatusBadRequest},
		{"non numeric", owner.Token, listingBody("abc", 10), http.StatusBadRequest},
		{"missing location", owner.Token, map[string]any{"title": "t", "description": "d", "size": "s", "price": 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := doJSON(t, http.MethodPost, srv.URL+"/hoardings/add", tt.token, tt.body, nil); status != tt.status {
				t.Fatalf("status %d, want %d", status, tt.status)
			}
		})
	}

	var all []models.Hoarding
	doJSON(t, http.MethodGet, srv.URL+"/hoardings", "", nil, &all)
	if len(all) != 0 {
		t.Fatalf("rejected adds reached the store: %+v", all)
	}
}

func TestAddHoardingRoleCheckedBeforeBody(t *testing.T) {
	srv := newTestServer(t)
	viewer := register(t, srv.URL, "viewer@example.com", "viewer")
	owner := register(t, srv.URL, "owner@example.com", "authorized")

	post := func(token string) int {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/hoardings/add", strings.NewReader(`{"title":`))
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	if status := post(viewer.Token); status != http.StatusForbidden {
		t.Fatalf("viewer with malformed body: status %d, want 403", status)
	}
	if status := post(owner.Token); status != http.StatusBadRequest {
		t.Fatalf("owner with malformed body: status %d, want 400", status)
	}
}

func TestNearbyLimit(t *testing.T) {
	srv := newTestServer(t)
	owner := register(t, srv.URL, "owner@example.com", "authorized")
	for _, lon := range []float64{77.1, 77.101, 77.102} {
		if status := doJSON(t, http.MethodPost, srv.URL+"/hoardings/add", owner.Token, listingBody(lon, 28.2), nil); status != http.StatusCreated {
			t.Fatalf("add: status %d", status)
		}
	}
	var all, two []models.Hoarding
	doJSON(t, http.MethodGet, srv.URL+"/hoardings/nearby?lat=28.2&lng=77.1", "", nil, &all)
	doJSON(t, http.MethodGet, srv.URL+"/hoardings/nearby?lat=28.2&lng=77.1&limit=2", "", nil, &two)
	if len(all) != 3 || len(two) != 2 || two[1].ID != all[1].ID {
		t.Fatalf("unlimited %d, limited %d", len(all), len(two))
	}
}

func TestNearbyQueryValidation(t *testing.T) {
	srv := newTestServer(t)
	for _, q := range []string{"", "?lat=28.2", "?lng=77.1", "?lat=x&lng=77.1", "?lat=28.2&lng=77.1&radius=-1", "?lat=95&lng=77.1",
		"?lat=28.2&lng=77.1&limit=0", "?lat=28.2&lng=77.1&limit=ten"} {
		if status := doJSON(t, http.MethodGet, srv.URL+"/hoardings/nearby"+q, "", nil, nil); status != http.StatusBadRequest {
			t.Errorf("query %q: status %d, want 400", q, status)
		}
	}
	var empty []models.Hoarding
	if status := doJSON(t, http.MethodGet, srv.URL+"/hoardings/nearby?lat=28.2&lng=77.1&radius=100", "", nil, &empty); status != http.StatusOK || len(empty) != 0 {
		t.Fatalf("empty nearby: %d %+v", status, empty)
	}
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv.URL, "login@example.com", "viewer")

	var res services.AuthResult
	if status := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{"email": "login@example.com", "password": "hunter22"}, &res); status != http.StatusOK {
		t.Fatalf("login: status %d", status)
	}
	if res.Token == "" || res.User.Role != models.RoleViewer {
		t.Fatalf("unexpected login result: %+v", res)
	}
	if status := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{"email": "login@example.com", "password": "nope"}, nil); status != http.StatusUnauthorized {
		t.Fatalf("bad password: status %d", status)
	}

	var me models.User
	if status := doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", res.Token, nil, &me); status != http.StatusOK || me.Email != "login@example.com" {
		t.Fatalf("me: %d %+v", status, me)
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/auth/me", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("me without token: status %d", status)
	}
}
