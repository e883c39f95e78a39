package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"transcendence/models"
)

func registerTestUser(t *testing.T, repo *fakeUserRepo, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &models.User{
		Username:     "alice",
		DisplayName:  "Alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid password", func(t *testing.T) {
		repo := &fakeUserRepo{users: map[int]*models.User{}}
		registerTestUser(t, repo, "s3cret")
		svc := NewAuthService(repo)

		user, err := svc.Login(ctx, models.Credentials{Username: "alice", Password: "s3cret"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if user.Username != "alice" {
			t.Errorf("got user %q", user.Username)
		}
	})

	t.Run("email works as login identifier", func(t *testing.T) {
		repo := &fakeUserRepo{users: map[int]*models.User{}}
		registerTestUser(t, repo, "s3cret")
		svc := NewAuthService(repo)

		if _, err := svc.Login(ctx, models.Credentials{Username: "alice@example.com", Password: "s3cret"}); err != nil {
			t.Errorf("Login by email: %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &fakeUserRepo{users: map[int]*models.User{}}
		registerTestUser(t, repo, "s3cret")
		svc := NewAuthService(repo)

		if _, err := svc.Login(ctx, models.Credentials{Username: "alice", Password: "nope"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := &fakeUserRepo{users: map[int]*models.User{}}
		svc := NewAuthService(repo)

		if _, err := svc.Login(ctx, models.Credentials{Username: "ghost", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("2fa enabled requires otp", func(t *testing.T) {
		repo := &fakeUserRepo{users: map[int]*models.User{}}
		user := registerTestUser(t, repo, "s3cret")

		key, err := totp.Generate(totp.GenerateOpts{Issuer: "test", AccountName: user.Username})
		if err != nil {
			t.Fatalf("totp.Generate: %v", err)
		}
		secret := key.Secret()
		user.TOTPSecret = &secret
		user.TwoFAEnabled = true
		if err := repo.Update(ctx, user); err != nil {
			t.Fatalf("update user: %v", err)
		}

		svc := NewAuthService(repo)

		if _, err := svc.Login(ctx, models.Credentials{Username: "alice", Password: "s3cret"}); !errors.Is(err, ErrOTPRequired) {
			t.Fatalf("missing otp: got %v, want ErrOTPRequired", err)
		}

		if _, err := svc.Login(ctx, models.Credentials{Username: "alice", Password: "s3cret", OTP: "000000"}); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("bogus otp: got %v, want ErrOTPInvalid", err)
		}

		code, err := totp.GenerateCode(secret, time.Now())
		if err != nil {
			t.Fatalf("totp.GenerateCode: %v", err)
		}
		if _, err := svc.Login(ctx, models.Credentials{Username: "alice", Password: "s3cret", OTP: code}); err != nil {
			t.Errorf("valid otp: %v", err)
		}
	})
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password and defaults display name", func(t *testing.T) {
		repo := &fakeUserRepo{users: map[int]*models.User{}}
		svc := NewAuthService(repo)

		user, err := svc.Register(ctx, RegisterInput{
			Username: "bob",
			Email:    "bob@example.com",
			Password: "hunter2",
		})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if user.PasswordHash == "hunter2" || user.PasswordHash == "" {
			t.Error("password stored unhashed")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2")); err != nil {
			t.Errorf("stored hash does not match password: %v", err)
		}
		if user.DisplayName != "bob" {
			t.Errorf("display name %q, want the username as default", user.DisplayName)
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		repo := &fakeUserRepo{users: map[int]*models.User{}}
		svc := NewAuthService(repo)

		if _, err := svc.Register(ctx, RegisterInput{Username: "bob"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got %v, want ErrInvalidCredentials", err)
		}
	})
}
