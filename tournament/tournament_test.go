package tournament

import (
	"errors"
	"testing"
)

func TestTournamentFullRun(t *testing.T) {
	identityShuffle(t)
	tour, err := New(testPlayers(NumPlayers))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Quarterfinals: player1 wins every match.
	for i := 0; i < 4; i++ {
		match, err := tour.CurrentMatch()
		if err != nil {
			t.Fatalf("quarterfinal %d: CurrentMatch: %v", i, err)
		}
		if match.Round != RoundQuarterfinal || match.MatchIndex != i {
			t.Fatalf("cursor at round %d index %d, want round %d index %d",
				match.Round, match.MatchIndex, RoundQuarterfinal, i)
		}
		concluded, err := tour.RecordResult(SidePlayer1)
		if err != nil {
			t.Fatalf("quarterfinal %d: RecordResult: %v", i, err)
		}
		if concluded.Winner == nil || concluded.Winner.ID != concluded.Player1.ID {
			t.Fatalf("quarterfinal %d: winner not recorded", i)
		}

		if i < 3 {
			if tour.AdvanceIfComplete() {
				t.Fatalf("quarterfinal %d: advanced with matches still pending", i)
			}
		}
	}

	// Round complete but not advanced: reads refuse rather than self-repair.
	if _, err := tour.CurrentMatch(); !errors.Is(err, ErrNoCurrentMatch) {
		t.Fatalf("CurrentMatch on a complete round: got %v, want ErrNoCurrentMatch", err)
	}

	if !tour.AdvanceIfComplete() {
		t.Fatal("AdvanceIfComplete should seed the semifinals")
	}

	// Semifinal pairing follows completed-match order: winners of QF 0 and 1,
	// then winners of QF 2 and 3. With identity seeding those are 1v3 and 5v7.
	semis := []struct{ p1, p2 int }{{1, 3}, {5, 7}}
	for i, want := range semis {
		match, err := tour.CurrentMatch()
		if err != nil {
			t.Fatalf("semifinal %d: CurrentMatch: %v", i, err)
		}
		if match.Round != RoundSemifinal {
			t.Fatalf("semifinal %d in round %d", i, match.Round)
		}
		if match.Player1.ID != want.p1 || match.Player2.ID != want.p2 {
			t.Fatalf("semifinal %d pairs %d vs %d, want %d vs %d",
				i, match.Player1.ID, match.Player2.ID, want.p1, want.p2)
		}
		if _, err := tour.RecordResult(SidePlayer2); err != nil {
			t.Fatalf("semifinal %d: RecordResult: %v", i, err)
		}
	}
	if !tour.AdvanceIfComplete() {
		t.Fatal("AdvanceIfComplete should seed the final")
	}

	// Final: 3 vs 7, player1 side wins.
	match, err := tour.CurrentMatch()
	if err != nil {
		t.Fatalf("final: CurrentMatch: %v", err)
	}
	if match.Round != RoundFinal || match.Player1.ID != 3 || match.Player2.ID != 7 {
		t.Fatalf("final pairs %d vs %d in round %d, want 3 vs 7 in round %d",
			match.Player1.ID, match.Player2.ID, match.Round, RoundFinal)
	}
	if _, err := tour.RecordResult(SidePlayer1); err != nil {
		t.Fatalf("final: RecordResult: %v", err)
	}
	if !tour.AdvanceIfComplete() {
		t.Fatal("AdvanceIfComplete should crown the champion")
	}

	champion := tour.Winner()
	if champion == nil || champion.ID != 3 {
		t.Fatalf("champion %+v, want player 3", champion)
	}

	// Terminal state: no current match, no further results, no re-advance.
	if _, err := tour.CurrentMatch(); !errors.Is(err, ErrNoCurrentMatch) {
		t.Errorf("CurrentMatch after champion: got %v, want ErrNoCurrentMatch", err)
	}
	if _, err := tour.RecordResult(SidePlayer1); !errors.Is(err, ErrNoCurrentMatch) {
		t.Errorf("RecordResult after champion: got %v, want ErrNoCurrentMatch", err)
	}
	if tour.AdvanceIfComplete() {
		t.Error("AdvanceIfComplete after champion should be a no-op")
	}

	// Ledger: champion played 3 (3 wins), finalist 3 (2-1), semifinalists 2,
	// quarterfinal losers 1; every entrant appears.
	standings := tour.Standings()
	if len(standings) != NumPlayers {
		t.Fatalf("standings cover %d players, want %d", len(standings), NumPlayers)
	}
	byID := make(map[int]LedgerEntry, len(standings))
	total := 0
	for _, e := range standings {
		byID[e.PlayerID] = e
		if e.MatchesPlayed != e.Wins+e.Losses {
			t.Errorf("player %d: %d played != %d wins + %d losses",
				e.PlayerID, e.MatchesPlayed, e.Wins, e.Losses)
		}
		total += e.MatchesPlayed
	}
	if total != 14 { // 7 matches, 2 participants each
		t.Errorf("total matches played %d, want 14", total)
	}
	if e := byID[3]; e.Wins != 3 || e.Losses != 0 {
		t.Errorf("champion ledger %+v, want 3 wins 0 losses", e)
	}
	if e := byID[7]; e.Wins != 2 || e.Losses != 1 {
		t.Errorf("finalist ledger %+v, want 2 wins 1 loss", e)
	}
}

func TestTournamentRecordResultBadSide(t *testing.T) {
	identityShuffle(t)
	tour, err := New(testPlayers(NumPlayers))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var invariantErr *InvariantError
	if _, err := tour.RecordResult(Side("spectator")); !errors.As(err, &invariantErr) {
		t.Errorf("got %v, want InvariantError", err)
	}
	// The failed record must not move the cursor.
	match, err := tour.CurrentMatch()
	if err != nil || match.MatchIndex != 0 {
		t.Errorf("cursor moved after rejected result: %+v, %v", match, err)
	}
}

func TestTournamentView(t *testing.T) {
	identityShuffle(t)
	tour, err := New(testPlayers(NumPlayers))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	view := tour.View()
	if len(view.Rounds) != 3 {
		t.Fatalf("view has %d rounds, want 3", len(view.Rounds))
	}
	if view.Rounds[0].Label != "Quarterfinals" || view.Rounds[2].Label != "Final" {
		t.Errorf("round labels %q..%q", view.Rounds[0].Label, view.Rounds[2].Label)
	}
	if view.CurrentMatch == nil || view.Champion != nil {
		t.Error("fresh tournament should expose a current match and no champion")
	}
	if len(view.Standings) != NumPlayers {
		t.Errorf("standings cover %d players, want %d", len(view.Standings), NumPlayers)
	}

	// Play it out; the champion replaces the current match in the view.
	for tour.Winner() == nil {
		if _, err := tour.RecordResult(SidePlayer1); err != nil {
			t.Fatalf("RecordResult: %v", err)
		}
		tour.AdvanceIfComplete()
	}
	view = tour.View()
	if view.Champion == nil || view.CurrentMatch != nil {
		t.Error("finished tournament should expose a champion and no current match")
	}
}
