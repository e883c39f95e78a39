package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"transcendence/middleware"
	"transcendence/services"
)

type FriendHandler struct {
	friendService services.FriendService
}

func NewFriendHandler(friendService services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		Username string `json:"username"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Username == "" {
		badRequestResponse(w, r, errors.New("username is required"))
		return
	}

	if err := h.friendService.Add(r.Context(), userID, input.Username); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"message": "friend added"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	friendID, err := strconv.Atoi(chi.URLParam(r, "friendID"))
	if err != nil || friendID <= 0 {
		badRequestResponse(w, r, errors.New("invalid friend id"))
		return
	}

	if err := h.friendService.Remove(r.Context(), userID, friendID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "friend removed"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	friends, err := h.friendService.List(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"friends": friends}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
