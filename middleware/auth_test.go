package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthenticate(t *testing.T) {
	const secret = "test-secret"
	auth := NewAuthenticator(secret, nil)

	protected := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("UserIDFromContext: %v", err)
		}
		if userID != 42 {
			t.Errorf("user id %d, want 42", userID)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{
			"user_id": 42,
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("status %d, want 204", rec.Code)
		}
	})

	rejected := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"missing header", func(r *http.Request) {}},
		{"malformed header", func(r *http.Request) {
			r.Header.Set("Authorization", "Token abc")
		}},
		{"wrong secret", func(r *http.Request) {
			token := signToken(t, "other-secret", jwt.MapClaims{
				"user_id": 42,
				"exp":     time.Now().Add(time.Hour).Unix(),
			})
			r.Header.Set("Authorization", "Bearer "+token)
		}},
		{"expired token", func(r *http.Request) {
			token := signToken(t, secret, jwt.MapClaims{
				"user_id": 42,
				"exp":     time.Now().Add(-time.Hour).Unix(),
			})
			r.Header.Set("Authorization", "Bearer "+token)
		}},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status %d, want 401", rec.Code)
			}
		})
	}
}

func TestParseTokenRejectsWrongAlgorithm(t *testing.T) {
	auth := NewAuthenticator("test-secret", nil)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 42})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if _, err := auth.ParseToken(signed); err == nil {
		t.Error("unsigned token accepted")
	}
}
