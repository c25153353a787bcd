// Package handler exposes the game over a JSON HTTP API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userCtxKey contextKey = "user"

// bearerOrCookie extracts the token from the Authorization header or the
// auth cookie.
func bearerOrCookie(r *http.Request, cookieName string) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth verifies the identity provider's token and stores the opaque
// user ID in the request context. The service never issues tokens itself.
func RequireAuth(secret, cookieName string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerOrCookie(r, cookieName)
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return key, nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			userID, err := token.Claims.GetSubject()
			if err != nil || userID == "" {
				// Some providers put the ID in an "id" claim instead.
				userID, _ = claims["id"].(string)
			}
			if userID == "" {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), userCtxKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentUser returns the authenticated user ID from the request context.
func currentUser(r *http.Request) (string, error) {
	id, _ := r.Context().Value(userCtxKey).(string)
	if id == "" {
		return "", errors.New("no user in context")
	}
	return id, nil
}
