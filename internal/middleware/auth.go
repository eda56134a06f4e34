package middleware

import (
	"context"
	"net/http"
	"strconv"

	"raffle-marketplace-platform/internal/models"

	"github.com/gorilla/sessions"
)

type contextKey string

const (
	// UserContextKey is the context key under which the authenticated user is stored
	UserContextKey contextKey = "user"

	// SessionName is the cookie name used for the session
	SessionName = "session"
)

// UserLoader loads a user by ID. Satisfied by services.UserService.
type UserLoader interface {
	Get(userID int) (*models.User, error)
}

// AuthMiddleware resolves the session cookie into a user on each request
type AuthMiddleware struct {
	users UserLoader
	store sessions.Store
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(users UserLoader, store sessions.Store) *AuthMiddleware {
	return &AuthMiddleware{
		users: users,
		store: store,
	}
}

// LoadUser middleware loads the current user from session and adds to context
func (m *AuthMiddleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, SessionName)
		if err != nil {
			// Continue without user if session is invalid
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := session.Values["user_id"].(int)
		if !ok || userID == 0 {
			// Session storage might convert types
			if userIDValue, exists := session.Values["user_id"]; exists {
				switch v := userIDValue.(type) {
				case float64:
					userID = int(v)
					ok = userID != 0
				case string:
					if parsedID, err := strconv.Atoi(v); err == nil {
						userID = parsedID
						ok = userID != 0
					}
				}
			}

			if !ok || userID == 0 {
				next.ServeHTTP(w, r)
				return
			}
		}

		user, err := m.users.Get(userID)
		if err != nil {
			// Stale session referencing a deleted user
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth middleware ensures user is authenticated
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin middleware ensures user is an administrator
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !user.IsAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireVerified middleware ensures user is verified (may create raffles)
func (m *AuthMiddleware) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !user.IsVerified && !user.IsAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext retrieves the user from request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SetUserContext sets the user in the context (for testing)
func SetUserContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
