package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/pquerna/otp/totp"

	"transcendence/repositories"
)

const twoFAIssuer = "Transcendence"

type TwoFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
	QRCode     string `json:"qr_code"`
}

type TwoFAService interface {
	GenerateSecret(ctx context.Context, userID int) (*TwoFASetup, error)
	Enable(ctx context.Context, userID int, code string) error
	Disable(ctx context.Context, userID int, code string) error
}

type twoFAService struct {
	userRepo repositories.UserRepository
}

func NewTwoFAService(userRepo repositories.UserRepository) TwoFAService {
	return &twoFAService{userRepo: userRepo}
}

// GenerateSecret provisions a fresh TOTP secret for the user and returns it
// along with a QR code the authenticator app can scan. The secret stays
// inactive until Enable confirms the user actually has it.
func (s *twoFAService) GenerateSecret(ctx context.Context, userID int) (*TwoFASetup, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFAEnabled {
		return nil, ErrTwoFAAlreadyOn
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      twoFAIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	secret := key.Secret()
	user.TOTPSecret = &secret
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	img, err := key.Image(200, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to render TOTP QR code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode TOTP QR code: %w", err)
	}

	return &TwoFASetup{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRCode:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

func (s *twoFAService) Enable(ctx context.Context, userID int, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == nil {
		return ErrTwoFANotSetup
	}
	if !totp.Validate(code, *user.TOTPSecret) {
		return ErrOTPInvalid
	}

	user.TwoFAEnabled = true
	return s.userRepo.Update(ctx, user)
}

func (s *twoFAService) Disable(ctx context.Context, userID int, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFAEnabled || user.TOTPSecret == nil {
		return ErrTwoFANotSetup
	}
	if !totp.Validate(code, *user.TOTPSecret) {
		return ErrOTPInvalid
	}

	user.TwoFAEnabled = false
	user.TOTPSecret = nil
	return s.userRepo.Update(ctx, user)
}
