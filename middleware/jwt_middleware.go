package middleware

import (
	"context"
	"net/http"
	"strings"

	"hoarding-server/services"
	"hoarding-server/utils/errors"
)

type contextKey string

const actorKey contextKey = "actor"

// TokenParser verifies a bearer token.
type TokenParser interface {
	ParseToken(token string) (services.Actor, error)
}

// JWTMiddleware rejects requests without a valid bearer token and stores the
// caller in the request context.
func JWTMiddleware(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				WriteError(w, errors.ErrUnauthorized)
				return
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			actor, err := parser.ParseToken(tokenString)
			if err != nil {
				WriteError(w, errors.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, actor services.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the caller stored by JWTMiddleware.
func ActorFromContext(ctx context.Context) (services.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(services.Actor)
	return actor, ok && actor.UserID != ""
}
