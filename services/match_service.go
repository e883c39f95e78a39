package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"transcendence/models"
	"transcendence/repositories"
)

// UserDashboard bundles everything the profile page shows about a player's
// game history.
type UserDashboard struct {
	Stats   *models.PlayerStats `json:"stats"`
	Matches []*models.Match     `json:"matches"`
}

type RecordMatchInput struct {
	Player1ID int    `json:"player1_id"`
	Player2ID int    `json:"player2_id"`
	WinnerID  int    `json:"winner_id"`
	Score     string `json:"score"`
}

type MatchService interface {
	Record(ctx context.Context, input RecordMatchInput) (*models.Match, error)
	ListAll(ctx context.Context) ([]*models.Match, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Match, error)
	UserDashboard(ctx context.Context, userID int) (*UserDashboard, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
}

func NewMatchService(matchRepo repositories.MatchRepository) MatchService {
	return &matchService{matchRepo: matchRepo}
}

func (s *matchService) Record(ctx context.Context, input RecordMatchInput) (*models.Match, error) {
	if input.WinnerID != input.Player1ID && input.WinnerID != input.Player2ID {
		return nil, ErrMatchInvalidWinner
	}

	match := &models.Match{
		Player1ID: input.Player1ID,
		Player2ID: input.Player2ID,
		WinnerID:  input.WinnerID,
		Score:     input.Score,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListAll(ctx context.Context) ([]*models.Match, error) {
	return s.matchRepo.ListAll(ctx)
}

func (s *matchService) ListByUser(ctx context.Context, userID int) ([]*models.Match, error) {
	return s.matchRepo.ListByUser(ctx, userID)
}

// UserDashboard fetches the aggregate and the history concurrently.
func (s *matchService) UserDashboard(ctx context.Context, userID int) (*UserDashboard, error) {
	dashboard := &UserDashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.matchRepo.StatsByUser(gctx, userID)
		if err != nil {
			return err
		}
		dashboard.Stats = stats
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByUser(gctx, userID)
		if err != nil {
			return err
		}
		dashboard.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}
