package tournament

import (
	"errors"
	"testing"
)

func testPlayers(n int) []Player {
	players := make([]Player, 0, n)
	for i := 1; i <= n; i++ {
		players = append(players, Player{
			ID:          i,
			Username:    username(i),
			DisplayName: username(i),
			Verified:    true,
		})
	}
	return players
}

func username(i int) string {
	return string(rune('a'+i-1)) + "player"
}

// identityShuffle pins the bracket order for deterministic assertions.
func identityShuffle(t *testing.T) {
	t.Helper()
	orig := shufflePlayers
	shufflePlayers = func([]Player) {}
	t.Cleanup(func() { shufflePlayers = orig })
}

func TestBuildBracket(t *testing.T) {
	t.Run("rejects wrong player count", func(t *testing.T) {
		for _, n := range []int{0, 7, 9} {
			var invariantErr *InvariantError
			if _, err := buildBracket(testPlayers(n)); !errors.As(err, &invariantErr) {
				t.Errorf("%d players: got %v, want InvariantError", n, err)
			}
		}
	})

	t.Run("rejects unverified player", func(t *testing.T) {
		players := testPlayers(NumPlayers)
		players[3].Verified = false
		var invariantErr *InvariantError
		if _, err := buildBracket(players); !errors.As(err, &invariantErr) {
			t.Errorf("got %v, want InvariantError", err)
		}
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		players := testPlayers(NumPlayers)
		players[5].ID = players[2].ID
		var invariantErr *InvariantError
		if _, err := buildBracket(players); !errors.As(err, &invariantErr) {
			t.Errorf("got %v, want InvariantError", err)
		}
	})

	t.Run("seeds four quarterfinals covering every player once", func(t *testing.T) {
		state, err := buildBracket(testPlayers(NumPlayers))
		if err != nil {
			t.Fatalf("buildBracket: %v", err)
		}

		if state.CurrentRound != RoundQuarterfinal || state.CurrentMatchIndex != 0 {
			t.Errorf("cursor at round %d index %d, want round %d index 0",
				state.CurrentRound, state.CurrentMatchIndex, RoundQuarterfinal)
		}
		if len(state.Matches) != NumPlayers/2 {
			t.Fatalf("got %d matches, want %d", len(state.Matches), NumPlayers/2)
		}

		seen := make(map[int]int)
		for i, m := range state.Matches {
			if m.Round != RoundQuarterfinal {
				t.Errorf("match %d in round %d, want %d", i, m.Round, RoundQuarterfinal)
			}
			if m.MatchIndex != i {
				t.Errorf("match %d has index %d", i, m.MatchIndex)
			}
			if m.Winner != nil {
				t.Errorf("match %d already has a winner", i)
			}
			seen[m.Player1.ID]++
			seen[m.Player2.ID]++
		}
		for id, count := range seen {
			if count != 1 {
				t.Errorf("player %d appears %d times", id, count)
			}
		}
		if len(seen) != NumPlayers {
			t.Errorf("%d distinct players paired, want %d", len(seen), NumPlayers)
		}
	})

	t.Run("adjacent pairing after shuffle", func(t *testing.T) {
		identityShuffle(t)
		state, err := buildBracket(testPlayers(NumPlayers))
		if err != nil {
			t.Fatalf("buildBracket: %v", err)
		}
		for i, m := range state.Matches {
			if m.Player1.ID != 2*i+1 || m.Player2.ID != 2*i+2 {
				t.Errorf("match %d pairs %d vs %d, want %d vs %d",
					i, m.Player1.ID, m.Player2.ID, 2*i+1, 2*i+2)
			}
		}
	})
}

func TestMatchesInRound(t *testing.T) {
	identityShuffle(t)
	state, err := buildBracket(testPlayers(NumPlayers))
	if err != nil {
		t.Fatalf("buildBracket: %v", err)
	}

	if got := state.matchesInRound(RoundQuarterfinal); len(got) != 4 {
		t.Errorf("quarterfinals: got %d matches, want 4", len(got))
	}
	if got := state.matchesInRound(RoundSemifinal); len(got) != 0 {
		t.Errorf("semifinals before advancing: got %d matches, want 0", len(got))
	}
}
