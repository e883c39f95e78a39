package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"transcendence/models"
)

var (
	ErrFriendNotFound = errors.New("friend entry not found")
	ErrFriendConflict = errors.New("friend entry already exists")
	ErrFriendInvalid  = errors.New("friend references an unknown user")
)

type FriendRepository interface {
	Add(ctx context.Context, userID, friendID int) error
	Remove(ctx context.Context, userID, friendID int) error
	ListByUser(ctx context.Context, userID int) ([]models.FriendInfo, error)
}

type postgresFriendRepository struct {
	db *sql.DB
}

func NewPostgresFriendRepository(db *sql.DB) FriendRepository {
	return &postgresFriendRepository{db: db}
}

func (r *postgresFriendRepository) Add(ctx context.Context, userID, friendID int) error {
	query := `INSERT INTO friends (user_id, friend_id) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, userID, friendID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrFriendConflict
			case "23503":
				return ErrFriendInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresFriendRepository) Remove(ctx context.Context, userID, friendID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM friends WHERE user_id = $1 AND friend_id = $2`, userID, friendID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFriendNotFound)
}

// ListByUser returns the friend list joined with user details; the online
// flag is filled in by the service from the presence hub.
func (r *postgresFriendRepository) ListByUser(ctx context.Context, userID int) ([]models.FriendInfo, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_key, u.last_seen
		FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY u.username ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	friends := make([]models.FriendInfo, 0)
	for rows.Next() {
		var f models.FriendInfo
		if err := rows.Scan(&f.ID, &f.Username, &f.DisplayName, &f.AvatarKey, &f.LastSeen); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return friends, nil
}
