package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"transcendence/models"
	"transcendence/repositories"
	"transcendence/tournament"
)

// ReportOutcome is what a recorded tournament result produced: the concluded
// match, whether the bracket moved to a new round, and the champion once the
// final is done.
type ReportOutcome struct {
	Match    tournament.Match        `json:"match"`
	Advanced bool                    `json:"advanced"`
	Champion *tournament.Player      `json:"champion,omitempty"`
	View     *tournament.BracketView `json:"view"`
}

type SessionStatus struct {
	OwnerID  int  `json:"owner_id"`
	Ready    bool `json:"ready"`
	Started  bool `json:"started"`
	Finished bool `json:"finished"`
}

type TournamentService interface {
	StartSession(ctx context.Context, ownerID int) (*SessionStatus, error)
	Status(ownerID int) (*SessionStatus, error)
	VerifySlot(ctx context.Context, ownerID, slot int, username string) (tournament.Player, error)
	ResetSlots(ownerID int) error
	Start(ctx context.Context, ownerID int) (*tournament.BracketView, error)
	View(ownerID int) (*tournament.BracketView, error)
	CurrentMatch(ownerID int) (tournament.Match, error)
	ReportResult(ctx context.Context, ownerID int, side tournament.Side, score string) (*ReportOutcome, error)
	Close(ownerID int)
	SweepIdle(maxIdle time.Duration) int
}

// session fields are guarded by the service mutex: registry is set once at
// creation, tour exactly once in Start. Methods take a snapshot of tour via
// touch and work on that; Tournament carries its own lock for state access.
type session struct {
	ownerID    int
	registry   *tournament.Registry
	tour       *tournament.Tournament
	lastActive time.Time
}

// tournamentService keeps one in-memory session per owner. Sessions are not
// persisted; an abandoned bracket is swept after an idle period and only the
// finished matches survive in the history table.
type tournamentService struct {
	mu        sync.Mutex
	sessions  map[int]*session
	userRepo  repositories.UserRepository
	matchRepo repositories.MatchRepository
}

func NewTournamentService(userRepo repositories.UserRepository, matchRepo repositories.MatchRepository) TournamentService {
	return &tournamentService{
		sessions:  make(map[int]*session),
		userRepo:  userRepo,
		matchRepo: matchRepo,
	}
}

// lookupAdapter lets the registry resolve usernames through the user
// repository without the tournament package importing it.
type lookupAdapter struct {
	userRepo repositories.UserRepository
}

func (a *lookupAdapter) LookupUserByUsername(ctx context.Context, username string) (*tournament.Player, error) {
	user, err := a.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, tournament.ErrLookupNotFound
		}
		return nil, err
	}
	return &tournament.Player{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}, nil
}

// StartSession opens the owner's tournament lobby with a fresh registry
// seeded from their account. A session whose bracket is still being played
// must be closed explicitly first; a stray create cannot wipe a live
// tournament. Unstarted lobbies and finished tournaments are replaced.
func (s *tournamentService) StartSession(ctx context.Context, ownerID int) (*SessionStatus, error) {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	local := tournament.Player{
		ID:          owner.ID,
		Username:    owner.Username,
		DisplayName: owner.DisplayName,
	}
	sess := &session{
		ownerID:    ownerID,
		registry:   tournament.NewRegistry(local, &lookupAdapter{userRepo: s.userRepo}),
		lastActive: time.Now(),
	}

	s.mu.Lock()
	if existing, ok := s.sessions[ownerID]; ok {
		if existing.tour != nil && existing.tour.Winner() == nil {
			s.mu.Unlock()
			return nil, ErrTournamentAlreadyStarted
		}
	}
	s.sessions[ownerID] = sess
	s.mu.Unlock()

	return s.statusOf(sess, nil), nil
}

func (s *tournamentService) Status(ownerID int) (*SessionStatus, error) {
	sess, tour, err := s.touch(ownerID)
	if err != nil {
		return nil, err
	}
	return s.statusOf(sess, tour), nil
}

func (s *tournamentService) VerifySlot(ctx context.Context, ownerID, slot int, username string) (tournament.Player, error) {
	sess, tour, err := s.touch(ownerID)
	if err != nil {
		return tournament.Player{}, err
	}
	if tour != nil {
		return tournament.Player{}, ErrTournamentAlreadyStarted
	}
	return sess.registry.Verify(ctx, slot, username)
}

func (s *tournamentService) ResetSlots(ownerID int) error {
	sess, tour, err := s.touch(ownerID)
	if err != nil {
		return err
	}
	if tour != nil {
		return ErrTournamentAlreadyStarted
	}
	sess.registry.Reset()
	return nil
}

// Start builds the bracket from the verified entrants. It fails while any
// remote slot is unverified. The bracket is installed under the lock only if
// the slot is still empty, so overlapping Start calls produce exactly one
// bracket.
func (s *tournamentService) Start(ctx context.Context, ownerID int) (*tournament.BracketView, error) {
	sess, tour, err := s.touch(ownerID)
	if err != nil {
		return nil, err
	}
	if tour != nil {
		return nil, ErrTournamentAlreadyStarted
	}

	players, err := sess.registry.Players()
	if err != nil {
		return nil, err
	}
	tour, err = tournament.New(players)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if sess.tour != nil {
		s.mu.Unlock()
		return nil, ErrTournamentAlreadyStarted
	}
	sess.tour = tour
	s.mu.Unlock()

	view := tour.View()
	return &view, nil
}

func (s *tournamentService) View(ownerID int) (*tournament.BracketView, error) {
	_, tour, err := s.touch(ownerID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, ErrTournamentNotStarted
	}
	view := tour.View()
	return &view, nil
}

func (s *tournamentService) CurrentMatch(ownerID int) (tournament.Match, error) {
	_, tour, err := s.touch(ownerID)
	if err != nil {
		return tournament.Match{}, err
	}
	if tour == nil {
		return tournament.Match{}, ErrTournamentNotStarted
	}
	return tour.CurrentMatch()
}

// ReportResult concludes the current match, advances the bracket when the
// round is complete and persists the game to the match history. A history
// write failure does not roll the bracket back; the tournament can finish
// even if the database is briefly down.
func (s *tournamentService) ReportResult(ctx context.Context, ownerID int, side tournament.Side, score string) (*ReportOutcome, error) {
	_, tour, err := s.touch(ownerID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, ErrTournamentNotStarted
	}

	match, err := tour.RecordResult(side)
	if err != nil {
		return nil, err
	}
	advanced := tour.AdvanceIfComplete()

	if match.Winner != nil {
		record := &models.Match{
			Player1ID: match.Player1.ID,
			Player2ID: match.Player2.ID,
			WinnerID:  match.Winner.ID,
			Score:     score,
		}
		if err := s.matchRepo.Create(ctx, record); err != nil {
			log.Printf("tournament service: failed to persist match for owner %d: %v", ownerID, err)
		}
	}

	view := tour.View()
	return &ReportOutcome{
		Match:    match,
		Advanced: advanced,
		Champion: tour.Winner(),
		View:     &view,
	}, nil
}

func (s *tournamentService) Close(ownerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, ownerID)
}

// SweepIdle drops sessions with no activity for maxIdle and returns how many
// were removed. Run periodically from a scheduler goroutine.
func (s *tournamentService) SweepIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for ownerID, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(s.sessions, ownerID)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("tournament service: swept %d idle session(s)", removed)
	}
	return removed
}

// touch stamps activity and snapshots the session's bracket pointer under the
// lock. Callers work on the snapshot; the pointer itself is written exactly
// once, in Start, under the same lock.
func (s *tournamentService) touch(ownerID int) (*session, *tournament.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[ownerID]
	if !ok {
		return nil, nil, ErrTournamentSessionNotFound
	}
	sess.lastActive = time.Now()
	return sess, sess.tour, nil
}

func (s *tournamentService) statusOf(sess *session, tour *tournament.Tournament) *SessionStatus {
	status := &SessionStatus{
		OwnerID: sess.ownerID,
		Ready:   sess.registry.AllVerified(),
		Started: tour != nil,
	}
	if tour != nil {
		status.Finished = tour.Winner() != nil
	}
	return status
}
