package tournament

import (
	"reflect"
	"testing"
)

func TestLedgerRecord(t *testing.T) {
	l := NewLedger()

	l.Record(1, true)
	l.Record(2, false)
	l.Record(1, true)
	l.Record(1, false)

	snap := l.Snapshot()
	want := []LedgerEntry{
		{PlayerID: 1, MatchesPlayed: 3, Wins: 2, Losses: 1},
		{PlayerID: 2, MatchesPlayed: 1, Wins: 0, Losses: 1},
	}
	if !reflect.DeepEqual(snap, want) {
		t.Errorf("Snapshot() = %+v, want %+v", snap, want)
	}
}

func TestLedgerSnapshotOrder(t *testing.T) {
	l := NewLedger()
	ids := []int{42, 7, 19, 3}
	for _, id := range ids {
		l.Record(id, true)
	}

	snap := l.Snapshot()
	for i, e := range snap {
		if e.PlayerID != ids[i] {
			t.Errorf("position %d: got player %d, want %d", i, e.PlayerID, ids[i])
		}
	}
}

func TestLedgerUnknownPlayerGetsEntry(t *testing.T) {
	l := NewLedger()
	// Record never validates membership; an unseen id gets a fresh entry.
	l.Record(99, false)

	snap := l.Snapshot()
	if len(snap) != 1 || snap[0].PlayerID != 99 || snap[0].Losses != 1 {
		t.Errorf("Snapshot() = %+v, want single entry for player 99 with one loss", snap)
	}
}

func TestLedgerSnapshotIsCopy(t *testing.T) {
	l := NewLedger()
	l.Record(1, true)

	snap := l.Snapshot()
	snap[0].Wins = 100

	if got := l.Snapshot()[0].Wins; got != 1 {
		t.Errorf("mutating a snapshot leaked into the ledger: wins = %d", got)
	}
}
