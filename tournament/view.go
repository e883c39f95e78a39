package tournament

// BracketView is the read-only projection a rendering collaborator consumes.
// It is recomputed from State after every transition; the core never renders.
type BracketView struct {
	Rounds            []RoundView   `json:"rounds"`
	CurrentRound      int           `json:"current_round"`
	CurrentMatchIndex int           `json:"current_match_index"`
	CurrentMatch      *Match        `json:"current_match,omitempty"`
	Champion          *Player       `json:"champion,omitempty"`
	Standings         []LedgerEntry `json:"standings"`
}

type RoundView struct {
	Round   int     `json:"round"`
	Label   string  `json:"label"`
	Matches []Match `json:"matches"`
}

var roundLabels = map[int]string{
	RoundQuarterfinal: "Quarterfinals",
	RoundSemifinal:    "Semifinals",
	RoundFinal:        "Final",
}

// RoundLabel names a round for display.
func RoundLabel(round int) string {
	if label, ok := roundLabels[round]; ok {
		return label
	}
	return "Round"
}

// View projects the current state into a BracketView.
func (t *Tournament) View() BracketView {
	t.mu.Lock()
	defer t.mu.Unlock()

	view := BracketView{
		CurrentRound:      t.state.CurrentRound,
		CurrentMatchIndex: t.state.CurrentMatchIndex,
		Standings:         t.ledger.Snapshot(),
	}
	for round := RoundQuarterfinal; round <= RoundFinal; round++ {
		view.Rounds = append(view.Rounds, RoundView{
			Round:   round,
			Label:   RoundLabel(round),
			Matches: t.state.matchesInRound(round),
		})
	}
	if t.state.Winner != nil {
		champion := *t.state.Winner
		view.Champion = &champion
	} else if current, err := t.currentMatchLocked(); err == nil {
		view.CurrentMatch = &current
	}
	return view
}
