package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"hoarding-server/middleware"
	"hoarding-server/models"
	"hoarding-server/services"
	"hoarding-server/utils/errors"
)

type HoardingHandler struct {
	hoardingService *services.HoardingService
}

func NewHoardingHandler(hoardingService *services.HoardingService) *HoardingHandler {
	return &HoardingHandler{hoardingService: hoardingService}
}

// AddHoarding handles POST /hoardings/add.
func (h *HoardingHandler) AddHoarding(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	// The role decides before the payload does.
	if !actor.CanAddHoardings() {
		middleware.WriteError(w, errors.ErrAuthorization)
		return
	}

	var draft models.HoardingDraft
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&draft); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	created, err := h.hoardingService.AddHoarding(r.Context(), draft, actor)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// GetNearbyHoardings handles GET /hoardings/nearby?lat=&lng=&radius=&limit=.
// Without limit every listing in range is returned.
func (h *HoardingHandler) GetNearbyHoardings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("lng") == "" {
		middleware.WriteError(w, errors.Validation("Latitude and longitude are required", "lat", "lng"))
		return
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		middleware.WriteError(w, errors.Validation("Latitude must be a number", "lat="+q.Get("lat")))
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		middleware.WriteError(w, errors.Validation("Longitude must be a number", "lng="+q.Get("lng")))
		return
	}
	radius := float64(services.DefaultNearbyRadius)
	if raw := q.Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.WriteError(w, errors.Validation("Radius must be a number of meters", "radius="+raw))
			return
		}
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			middleware.WriteError(w, errors.Validation("Limit must be a positive integer", "limit="+raw))
			return
		}
	}

	hoardings, err := h.hoardingService.ListNearby(r.Context(), lat, lng, radius, limit)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, hoardings)
}

// GetHoardings handles GET /hoardings.
func (h *HoardingHandler) GetHoardings(w http.ResponseWriter, r *http.Request) {
	hoardings, err := h.hoardingService.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, hoardings)
}

// GetHoarding handles GET /hoardings/{id}.
func (h *HoardingHandler) GetHoarding(w http.ResponseWriter, r *http.Request) {
	hoarding, err := h.hoardingService.GetHoarding(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, hoarding)
}

// UpdateHoarding handles PUT /hoardings/{id}. Unknown and immutable fields
// are rejected.
func (h *HoardingHandler) UpdateHoarding(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]

	var patch models.HoardingPatch
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		// Ownership and existence are reported ahead of payload problems.
		if ownerErr := h.hoardingService.CheckOwner(r.Context(), id, actor); ownerErr != nil {
			middleware.WriteError(w, ownerErr)
			return
		}
		middleware.WriteError(w, errors.Validation("Invalid update payload", err.Error()))
		return
	}

	updated, err := h.hoardingService.UpdateHoarding(r.Context(), id, patch, actor)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// DeleteHoarding handles DELETE /hoardings/{id}.
func (h *HoardingHandler) DeleteHoarding(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]
	if err := h.hoardingService.DeleteHoarding(r.Context(), id, actor); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Hoarding removed", "id": id})
}

func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
