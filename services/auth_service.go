package services

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hoarding-server/models"
	"hoarding-server/store"
	apperrors "hoarding-server/utils/errors"
)

const minPasswordLength = 6

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Actor is the authenticated caller, as carried by a bearer token.
type Actor struct {
	UserID string
	Email  string
	Role   models.Role
}

// CanAddHoardings reports whether the actor may create listings.
func (a Actor) CanAddHoardings() bool {
	return a.Role == models.RoleAuthorized
}

// Register creates a new user and signs a token for it
func (s *UserService) Register(ctx context.Context, email, password, role string) (AuthResult, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return AuthResult{}, apperrors.Validation("A valid email is required", "email="+email)
	}
	if len(password) < minPasswordLength {
		return AuthResult{}, apperrors.Validation("Password must be at least 6 characters", "password")
	}
	parsedRole, err := models.ParseRole(role)
	if err != nil {
		return AuthResult{}, apperrors.Validation("Role must be authorized or viewer", "role="+role)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, apperrors.Wrap(err, "HASH_ERROR", "failed to hash password", http.StatusInternalServerError)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         parsedRole,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Insert(ctx, &user); err != nil {
		return AuthResult{}, err
	}
	s.cacheUser(ctx, user)
	s.log.Infow("user registered", "user_id", user.ID, "role", user.Role)

	token, err := s.issueToken(user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// Login authenticates a user and returns a JWT
func (s *UserService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, apperrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return AuthResult{}, err
	}
	s.cacheUser(ctx, user)
	return AuthResult{Token: token, User: user}, nil
}

// ParseToken verifies an HS256 token and returns the actor it names.
func (s *UserService) ParseToken(tokenString string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.NewAPIError("INVALID_TOKEN", "Unexpected signing method", http.StatusUnauthorized)
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Actor{}, apperrors.ErrUnauthorized
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, apperrors.ErrUnauthorized
	}
	userID, _ := mapClaims["userID"].(string)
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	if userID == "" {
		return Actor{}, apperrors.ErrUnauthorized
	}
	return Actor{UserID: userID, Email: email, Role: models.Role(role)}, nil
}

func (s *UserService) issueToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": user.ID,
		"email":  user.Email,
		"role":   string(user.Role),
		"exp":    s.now().Add(s.tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}
	return tokenString, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
