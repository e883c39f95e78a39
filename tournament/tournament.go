package tournament

import "sync"

// Tournament owns a single bracket State and is its only mutator. All
// transitions happen through RecordResult and AdvanceIfComplete; reads never
// mutate. The ledger lives on the instance, not in package state, so stats
// cannot leak between unrelated tournaments.
//
// The mutex exists because HTTP handlers are our event-dispatch thread; there
// is no other concurrent mutation.
type Tournament struct {
	mu     sync.Mutex
	state  *State
	ledger *Ledger
}

// New shuffles the 8 entrants into a fresh quarterfinal bracket.
func New(players []Player) (*Tournament, error) {
	state, err := buildBracket(players)
	if err != nil {
		return nil, err
	}
	ledger := NewLedger()
	for _, p := range state.Players {
		ledger.touch(p.ID)
	}
	return &Tournament{state: state, ledger: ledger}, nil
}

// CurrentMatch returns the match the cursor points at. It is a pure read:
// callers are expected to run AdvanceIfComplete after each recorded result,
// so an in-range cursor is an invariant here, not something to repair.
func (t *Tournament) CurrentMatch() (Match, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentMatchLocked()
}

func (t *Tournament) currentMatchLocked() (Match, error) {
	if t.state.Winner != nil {
		return Match{}, ErrNoCurrentMatch
	}
	round := t.state.matchesInRound(t.state.CurrentRound)
	if t.state.CurrentMatchIndex >= len(round) {
		// Round complete but not yet advanced; the caller skipped
		// AdvanceIfComplete. Refuse rather than mutate on a read.
		return Match{}, ErrNoCurrentMatch
	}
	return round[t.state.CurrentMatchIndex], nil
}

// RecordResult concludes the current match: sets its winner, updates the
// ledger for both sides and moves the cursor forward within the round. It
// does not seed the next round; call AdvanceIfComplete right after.
func (t *Tournament) RecordResult(side Side) (Match, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, err := t.currentMatchLocked()
	if err != nil {
		return Match{}, err
	}

	var winner, loser Player
	switch side {
	case SidePlayer1:
		winner, loser = current.Player1, current.Player2
	case SidePlayer2:
		winner, loser = current.Player2, current.Player1
	default:
		return Match{}, &InvariantError{Msg: "winner side must be player1 or player2"}
	}

	// The round slice is a copy; write the winner through to the backing
	// Matches entry.
	for i := range t.state.Matches {
		m := &t.state.Matches[i]
		if m.Round == current.Round && m.MatchIndex == current.MatchIndex {
			w := winner
			m.Winner = &w
			current = *m
			break
		}
	}

	t.ledger.Record(winner.ID, true)
	t.ledger.Record(loser.ID, false)
	t.state.CurrentMatchIndex++
	return current, nil
}

// AdvanceIfComplete seeds the next round once every match of the current one
// has a winner, pairing winners strictly in completed-match order: winner of
// match 0 vs winner of match 1, and so on. No re-seeding, no re-ranking.
// When a single winner remains the tournament transitions to its terminal
// champion state instead. Returns true if a transition happened.
func (t *Tournament) AdvanceIfComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Winner != nil {
		return false
	}

	round := t.state.matchesInRound(t.state.CurrentRound)
	winners := make([]Player, 0, len(round))
	for _, m := range round {
		if m.Winner == nil {
			return false
		}
		winners = append(winners, *m.Winner)
	}

	if len(winners) == 1 {
		champion := winners[0]
		t.state.Winner = &champion
		return true
	}

	nextRound := t.state.CurrentRound + 1
	for i := 0; i+1 < len(winners); i += 2 {
		t.state.Matches = append(t.state.Matches, Match{
			Player1:    winners[i],
			Player2:    winners[i+1],
			Round:      nextRound,
			MatchIndex: i / 2,
		})
	}
	t.state.CurrentRound = nextRound
	t.state.CurrentMatchIndex = 0
	return true
}

// Winner returns the champion, or nil while the tournament is running.
func (t *Tournament) Winner() *Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Winner == nil {
		return nil
	}
	w := *t.state.Winner
	return &w
}

// Standings returns the ledger snapshot in first-appearance order.
func (t *Tournament) Standings() []LedgerEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Snapshot()
}
