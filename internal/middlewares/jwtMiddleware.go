package middlewares

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"smartaitools/internal/utils"
)

func parseToken(r *http.Request) (*utils.Claims, bool) {
	tokenString := r.Header.Get("Authorization")
	if !strings.HasPrefix(tokenString, "Bearer ") {
		return nil, false
	}
	tokenString = tokenString[len("Bearer "):]

	jwtKey := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtKey) == 0 {
		log.Error().Msg("JWT_SECRET is not set in environment")
		return nil, false
	}

	claims := &utils.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// caller's user id in the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := parseToken(r)
		if !ok {
			utils.SendJSONError(w, "Invalid or missing token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), utils.UserIDKey, claims.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthMiddleware stores the caller's user id when a valid token is
// presented and lets the request through anonymously otherwise. Listing and
// single-record reads use it so public records stay reachable without a login.
func OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := parseToken(r); ok {
			ctx := context.WithValue(r.Context(), utils.UserIDKey, claims.ID)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
