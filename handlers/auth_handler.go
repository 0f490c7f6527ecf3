package handlers

import (
	"encoding/json"
	"net/http"

	"hoarding-server/middleware"
	"hoarding-server/services"
	"hoarding-server/utils/errors"
)

type AuthHandler struct {
	userService *services.UserService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	result, err := h.userService.Register(r.Context(), input.Email, input.Password, input.Role)
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, "REGISTRATION_ERROR", "Failed to register user", http.StatusInternalServerError))
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	result, err := h.userService.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, "LOGIN_ERROR", "Failed to login user", http.StatusUnauthorized))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

// CurrentUser returns the account behind the bearer token.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	user, err := h.userService.GetUser(r.Context(), actor.UserID)
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, "USER_ERROR", "Failed to load user", http.StatusInternalServerError))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, user)
}
