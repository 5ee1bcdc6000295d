package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/isdelr/expense-tracker-be/internal/api/respond"
	"github.com/isdelr/expense-tracker-be/internal/apperrors"
	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/rs/zerolog/hlog"
)

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup loads the user a token refers to.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// Middleware protects routes with bearer-token authentication.
//
// A missing token yields 401, a token that fails verification 403, and a valid
// token for a user that no longer exists 401. On success the resolved identity
// is attached to the request context.
func Middleware(tokens TokenVerifier, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r.Header.Get("Authorization"))
			if tokenStr == "" {
				respond.Error(w, r, apperrors.Unauthenticated("Access Token required!"))
				return
			}

			userID, err := tokens.Verify(tokenStr)
			if err != nil {
				respond.Error(w, r, apperrors.Forbidden("Invalid or expired Token.", err))
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				if apperrors.KindOf(err) == apperrors.KindNotFound {
					respond.Error(w, r, apperrors.Unauthenticated("Invalid Token."))
					return
				}
				respond.Error(w, r, err)
				return
			}

			hlog.FromRequest(r).Debug().Str("user_id", user.ID).Msg("Authenticated request")
			ctx := WithIdentity(r.Context(), identityOf(user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
