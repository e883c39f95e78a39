package tournament

// Ledger accumulates per-player match counters for one tournament session.
// Counters only ever increase; a brand-new tournament starts a fresh ledger.
type Ledger struct {
	order   []int
	entries map[int]*LedgerEntry
}

type LedgerEntry struct {
	PlayerID      int `json:"player_id"`
	MatchesPlayed int `json:"matches_played"`
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[int]*LedgerEntry)}
}

func (l *Ledger) touch(playerID int) *LedgerEntry {
	e, ok := l.entries[playerID]
	if !ok {
		e = &LedgerEntry{PlayerID: playerID}
		l.entries[playerID] = e
		l.order = append(l.order, playerID)
	}
	return e
}

// Record adds one played match for the player. An unknown id silently gets a
// zeroed entry first; membership is not validated here.
func (l *Ledger) Record(playerID int, won bool) {
	e := l.touch(playerID)
	e.MatchesPlayed++
	if won {
		e.Wins++
	} else {
		e.Losses++
	}
}

// Snapshot returns the entries in order of first appearance.
func (l *Ledger) Snapshot() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.entries[id])
	}
	return out
}
