package tournament

import (
	"fmt"
	"math/rand"
)

// State is the full bracket state. Matches only ever grows; entries are never
// removed or mutated except to set Winner exactly once. CurrentRound only
// increases and CurrentMatchIndex resets to 0 whenever the round advances.
type State struct {
	Players           []Player `json:"players"`
	Matches           []Match  `json:"matches"`
	CurrentRound      int      `json:"current_round"`
	CurrentMatchIndex int      `json:"current_match_index"`
	Winner            *Player  `json:"winner,omitempty"`
}

// shufflePlayers is a seam for deterministic tests.
var shufflePlayers = func(players []Player) {
	rand.Shuffle(len(players), func(i, j int) {
		players[i], players[j] = players[j], players[i]
	})
}

// buildBracket seeds a fresh State from 8 verified players: a uniform random
// permutation paired off as (0,1)(2,3)(4,5)(6,7) into the four quarterfinals.
// Later rounds are seeded lazily as rounds resolve; the round-1 shuffle is the
// only randomized step.
func buildBracket(players []Player) (*State, error) {
	if len(players) != NumPlayers {
		return nil, &InvariantError{Msg: fmt.Sprintf("bracket requires exactly %d players, got %d", NumPlayers, len(players))}
	}
	seen := make(map[int]struct{}, NumPlayers)
	for _, p := range players {
		if !p.Verified {
			return nil, &InvariantError{Msg: fmt.Sprintf("player %d (%s) is not verified", p.ID, p.Username)}
		}
		if _, dup := seen[p.ID]; dup {
			return nil, &InvariantError{Msg: fmt.Sprintf("duplicate player id %d", p.ID)}
		}
		seen[p.ID] = struct{}{}
	}

	permuted := make([]Player, NumPlayers)
	copy(permuted, players)
	shufflePlayers(permuted)

	matches := make([]Match, 0, NumPlayers/2)
	for i := 0; i < NumPlayers; i += 2 {
		matches = append(matches, Match{
			Player1:    permuted[i],
			Player2:    permuted[i+1],
			Round:      RoundQuarterfinal,
			MatchIndex: i / 2,
		})
	}

	return &State{
		Players:           permuted,
		Matches:           matches,
		CurrentRound:      RoundQuarterfinal,
		CurrentMatchIndex: 0,
	}, nil
}

// matchesInRound returns the matches of one round ordered by MatchIndex.
// Matches are appended in index order, so a filter preserves it.
func (s *State) matchesInRound(round int) []Match {
	out := make([]Match, 0, 4)
	for _, m := range s.Matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}
