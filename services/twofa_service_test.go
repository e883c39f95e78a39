package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestTwoFALifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo(1)
	svc := NewTwoFAService(repo)

	if err := svc.Enable(ctx, 1, "000000"); !errors.Is(err, ErrTwoFANotSetup) {
		t.Fatalf("Enable before setup: got %v, want ErrTwoFANotSetup", err)
	}

	setup, err := svc.GenerateSecret(ctx, 1)
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if setup.Secret == "" {
		t.Fatal("empty secret")
	}
	if !strings.HasPrefix(setup.QRCode, "data:image/png;base64,") {
		t.Errorf("QR code is not an inline PNG: %.40s", setup.QRCode)
	}
	if !strings.Contains(setup.OTPAuthURL, "otpauth://") {
		t.Errorf("unexpected otpauth URL: %s", setup.OTPAuthURL)
	}

	// The secret is provisioned but inactive until confirmed.
	user, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.TwoFAEnabled {
		t.Fatal("2FA enabled before confirmation")
	}
	if user.TOTPSecret == nil || *user.TOTPSecret != setup.Secret {
		t.Fatal("secret not stored")
	}

	if err := svc.Enable(ctx, 1, "000000"); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("Enable with bogus code: got %v, want ErrOTPInvalid", err)
	}

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if err := svc.Enable(ctx, 1, code); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	user, _ = repo.GetByID(ctx, 1)
	if !user.TwoFAEnabled {
		t.Fatal("2FA not enabled after confirmation")
	}

	if _, err := svc.GenerateSecret(ctx, 1); !errors.Is(err, ErrTwoFAAlreadyOn) {
		t.Errorf("GenerateSecret while enabled: got %v, want ErrTwoFAAlreadyOn", err)
	}

	code, _ = totp.GenerateCode(setup.Secret, time.Now())
	if err := svc.Disable(ctx, 1, code); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	user, _ = repo.GetByID(ctx, 1)
	if user.TwoFAEnabled || user.TOTPSecret != nil {
		t.Error("2FA state not cleared after disable")
	}
}
