package models

import "time"

// Match is one finished game in the persistent history. The winner must be
// one of the two players; score is stored as the client reports it ("10-7").
type Match struct {
	ID        int       `json:"id"`
	Player1ID int       `json:"player1_id"`
	Player2ID int       `json:"player2_id"`
	WinnerID  int       `json:"winner_id"`
	Score     string    `json:"score"`
	Date      time.Time `json:"date"`
}

// PlayerStats is the persistent per-user aggregate over the match history.
type PlayerStats struct {
	UserID        int `json:"user_id"`
	MatchesPlayed int `json:"matches_played"`
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
}
