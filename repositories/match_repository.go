package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"transcendence/models"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchPlayerInvalid = errors.New("match references an unknown player")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	ListAll(ctx context.Context) ([]*models.Match, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Match, error)
	StatsByUser(ctx context.Context, userID int) (*models.PlayerStats, error)
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (player1_id, player2_id, winner_id, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date`

	err := r.db.QueryRowContext(ctx, query,
		match.Player1ID,
		match.Player2ID,
		match.WinnerID,
		match.Score,
	).Scan(&match.ID, &match.Date)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrMatchPlayerInvalid
		}
		return err
	}
	return nil
}

func (r *postgresMatchRepository) ListAll(ctx context.Context) ([]*models.Match, error) {
	query := `
		SELECT id, player1_id, player2_id, winner_id, score, date
		FROM matches
		ORDER BY date DESC`
	return r.listMatches(ctx, query)
}

func (r *postgresMatchRepository) ListByUser(ctx context.Context, userID int) ([]*models.Match, error) {
	query := `
		SELECT id, player1_id, player2_id, winner_id, score, date
		FROM matches
		WHERE player1_id = $1 OR player2_id = $1
		ORDER BY date DESC`
	return r.listMatches(ctx, query, userID)
}

// StatsByUser aggregates the persistent history in one query.
func (r *postgresMatchRepository) StatsByUser(ctx context.Context, userID int) (*models.PlayerStats, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE winner_id = $1),
			count(*) FILTER (WHERE winner_id <> $1)
		FROM matches
		WHERE player1_id = $1 OR player2_id = $1`

	stats := &models.PlayerStats{UserID: userID}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&stats.MatchesPlayed, &stats.Wins, &stats.Losses)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats for user %d: %w", userID, err)
	}
	return stats, nil
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) listMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.Player1ID, &m.Player2ID, &m.WinnerID, &m.Score, &m.Date); err != nil {
			return nil, err
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
