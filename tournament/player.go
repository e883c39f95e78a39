package tournament

// Player is one tournament entrant, resolved against the user base at
// verification time and immutable afterwards. Identity is the ID; usernames
// must be case-insensitively distinct within one entrant set.
type Player struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Verified    bool   `json:"verified"`
}

// Match is a single bracket pairing. Round is 1 for quarterfinals, 2 for
// semifinals, 3 for the final; MatchIndex is the 0-based position within the
// round. Winner stays nil until the match concludes and is set exactly once.
type Match struct {
	Player1    Player  `json:"player1"`
	Player2    Player  `json:"player2"`
	Round      int     `json:"round"`
	MatchIndex int     `json:"match_index"`
	Winner     *Player `json:"winner,omitempty"`
}

// Side identifies which seat of a match won.
type Side string

const (
	SidePlayer1 Side = "player1"
	SidePlayer2 Side = "player2"
)

const (
	// NumPlayers is the fixed entrant count of a bracket.
	NumPlayers = 8

	RoundQuarterfinal = 1
	RoundSemifinal    = 2
	RoundFinal        = 3
)
