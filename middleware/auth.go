package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "user"

const jwtClaimUserID = "user_id"

// LastSeenToucher is satisfied by the user repository; every authenticated
// request stamps activity so friends see a recent "last seen".
type LastSeenToucher interface {
	TouchLastSeen(ctx context.Context, id int) error
}

type Authenticator struct {
	secret  []byte
	toucher LastSeenToucher
}

func NewAuthenticator(secret string, toucher LastSeenToucher) *Authenticator {
	return &Authenticator{secret: []byte(secret), toucher: toucher}
}

// ParseToken validates an HS256 token string and returns its claims. Shared
// with the websocket handlers, which carry the token in a query parameter.
func (a *Authenticator) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := a.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)

		if a.toucher != nil {
			if userID, err := UserIDFromContext(ctx); err == nil {
				// Best effort; an activity stamp must never fail the request.
				_ = a.toucher.TouchLastSeen(ctx, userID)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextWithClaims is used by websocket upgrades that authenticate outside
// the HTTP middleware chain.
func ContextWithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

func UserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("user claims not found in context")
	}

	claim, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing %q claim in token", jwtClaimUserID)
	}

	// encoding/json decodes numbers into float64.
	idFloat, ok := claim.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for %q claim: %T", jwtClaimUserID, claim)
	}
	id := int(idFloat)
	if id <= 0 || float64(id) != idFloat {
		return 0, fmt.Errorf("invalid user ID in %q claim: %v", jwtClaimUserID, claim)
	}
	return id, nil
}
