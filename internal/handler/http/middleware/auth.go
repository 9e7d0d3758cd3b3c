package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/presensi-app/attendance-backend-go/internal/domain/auth"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/handler/http/response"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/jwt"
)

type actorKey struct{}

// AuthRequired accepts verified access tokens only and puts the caller on the
// request context as a *user.Actor.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TokenTypeAccess || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			userID, _ := claims["user_id"].(string)
			if userID == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			email, _ := claims["email"].(string)
			role, _ := claims["role"].(string)

			actor := &user.Actor{UserID: userID, Email: email, Role: user.Role(role)}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor *user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated caller, or nil.
func ActorFromContext(ctx context.Context) *user.Actor {
	actor, _ := ctx.Value(actorKey{}).(*user.Actor)
	return actor
}
