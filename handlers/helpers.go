package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"transcendence/repositories"
	"transcendence/services"
	"transcendence/tournament"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		log.Printf("failed to write error response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("internal server error: %v", err)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

// mapServiceErrorToHTTP turns service and repository sentinels into HTTP
// responses; anything unknown is a 500.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *tournament.ValidationError

	switch {
	case errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrFriendNotFound),
		errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, services.ErrTournamentSessionNotFound):
		notFoundResponse(w, r)

	case errors.Is(err, repositories.ErrUserEmailConflict),
		errors.Is(err, repositories.ErrUserUsernameConflict),
		errors.Is(err, repositories.ErrUserDisplayNameConflict),
		errors.Is(err, repositories.ErrFriendConflict),
		errors.Is(err, services.ErrTwoFAAlreadyOn),
		errors.Is(err, services.ErrTournamentAlreadyStarted):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrOTPInvalid):
		unauthorizedResponse(w, r, err.Error())

	case errors.Is(err, services.ErrOTPRequired):
		// The client shows the OTP prompt off this status.
		errorResponse(w, r, http.StatusUnauthorized, jsonResponse{
			"message":      err.Error(),
			"otp_required": true,
		})

	case errors.As(err, &validationErr):
		errorResponse(w, r, http.StatusUnprocessableEntity, jsonResponse{
			"slot":   validationErr.Slot,
			"reason": string(validationErr.Reason),
		})

	case errors.Is(err, services.ErrSelfFriend),
		errors.Is(err, repositories.ErrFriendInvalid),
		errors.Is(err, repositories.ErrMatchPlayerInvalid),
		errors.Is(err, services.ErrMatchInvalidWinner),
		errors.Is(err, services.ErrTwoFANotSetup),
		errors.Is(err, services.ErrTournamentNotStarted),
		errors.Is(err, services.ErrAvatarTooLarge),
		errors.Is(err, services.ErrAvatarUnsupported),
		errors.Is(err, tournament.ErrNoCurrentMatch):
		badRequestResponse(w, r, err)

	default:
		serverErrorResponse(w, r, err)
	}
}
