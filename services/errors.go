package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrOTPRequired        = errors.New("one-time password required")
	ErrOTPInvalid         = errors.New("invalid one-time password")
	ErrTwoFANotSetup      = errors.New("two-factor authentication has not been set up")
	ErrTwoFAAlreadyOn     = errors.New("two-factor authentication is already enabled")

	ErrSelfFriend = errors.New("cannot add yourself as a friend")

	ErrMatchInvalidWinner = errors.New("winner must be one of the match players")

	ErrTournamentSessionNotFound = errors.New("no active tournament session")
	ErrTournamentNotStarted      = errors.New("tournament has not started yet")
	ErrTournamentAlreadyStarted  = errors.New("tournament already started")

	ErrAvatarTooLarge       = errors.New("avatar file is too large")
	ErrAvatarUnsupported    = errors.New("unsupported avatar content type")
	ErrUploaderNotAvailable = errors.New("file storage is not configured")
)
