package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	internaljwt "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/jwt"
)

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying the verified token claims.
func WithClaims(ctx context.Context, claims internaljwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by Authorize or Identify.
func ClaimsFromContext(ctx context.Context) (internaljwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(internaljwt.Claims)
	return claims, ok
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Authorize rejects requests without a valid bearer token for one of roles.
// Expiry is enforced by the token parser.
func Authorize(roles ...internaljwt.Role) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenString := BearerToken(r)
			if tokenString == "" {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := internaljwt.VerifyToken(tokenString)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if !roleAllowed(claims.Role, roles) {
				writeAuthError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next(w, r.WithContext(WithClaims(r.Context(), claims)))
		}
	}
}

// Identify attaches claims when a valid token is present and lets anonymous
// requests through untouched.
func Identify() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if tokenString := BearerToken(r); tokenString != "" {
				if claims, err := internaljwt.VerifyToken(tokenString); err == nil {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
			next(w, r)
		}
	}
}

func roleAllowed(role internaljwt.Role, roles []internaljwt.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, allowed := range roles {
		if role == allowed {
			return true
		}
	}
	return false
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

var (
	RequireUser  = Authorize(internaljwt.RoleUser)
	RequireAdmin = Authorize(internaljwt.RoleAdmin)
	RequireAny   = Authorize(internaljwt.RoleUser, internaljwt.RoleAdmin)
)
