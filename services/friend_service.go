package services

import (
	"context"

	"transcendence/models"
	"transcendence/repositories"
	"transcendence/storage"
)

// OnlineChecker is satisfied by the presence hub.
type OnlineChecker interface {
	IsOnline(userID int) bool
}

type FriendService interface {
	Add(ctx context.Context, userID int, friendUsername string) error
	Remove(ctx context.Context, userID, friendID int) error
	List(ctx context.Context, userID int) ([]models.FriendInfo, error)
}

type friendService struct {
	friendRepo repositories.FriendRepository
	userRepo   repositories.UserRepository
	online     OnlineChecker
	uploader   storage.FileUploader
}

func NewFriendService(
	friendRepo repositories.FriendRepository,
	userRepo repositories.UserRepository,
	online OnlineChecker,
	uploader storage.FileUploader,
) FriendService {
	return &friendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		online:     online,
		uploader:   uploader,
	}
}

// Add resolves the friend by username so the client never has to know ids.
func (s *friendService) Add(ctx context.Context, userID int, friendUsername string) error {
	friend, err := s.userRepo.GetByUsername(ctx, friendUsername)
	if err != nil {
		return err
	}
	if friend.ID == userID {
		return ErrSelfFriend
	}
	return s.friendRepo.Add(ctx, userID, friend.ID)
}

func (s *friendService) Remove(ctx context.Context, userID, friendID int) error {
	return s.friendRepo.Remove(ctx, userID, friendID)
}

// List enriches the stored friend rows with live presence and avatar URLs.
func (s *friendService) List(ctx context.Context, userID int) ([]models.FriendInfo, error) {
	friends, err := s.friendRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range friends {
		if s.online != nil {
			friends[i].Online = s.online.IsOnline(friends[i].ID)
		}
		if s.uploader != nil && friends[i].AvatarKey != nil {
			url := s.uploader.GetPublicURL(*friends[i].AvatarKey)
			friends[i].AvatarURL = &url
		}
	}
	return friends, nil
}
