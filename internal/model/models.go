// Package model defines the persisted data models for the dart scoring
// service.
package model

import "time"

// GameSession is a persisted game, the aggregate root for history reads.
type GameSession struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"-"`
	GameType      string          `db:"game_type" json:"gameType"`
	StartingScore int             `db:"starting_score" json:"startingScore"`
	Status        string          `db:"status" json:"status"`
	WinnerName    *string         `db:"winner_name" json:"winnerName,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completedAt,omitempty"`
	Players       []SessionPlayer `json:"players"`
	Turns         []SessionTurn   `json:"turns"`
}

// SessionPlayer is one seat in a persisted game. Position is the turn
// order, 1-based. FinalScore is set when the game completes.
type SessionPlayer struct {
	SessionID  string `db:"session_id" json:"-"`
	PlayerName string `db:"player_name" json:"playerName"`
	Position   int    `db:"position" json:"position"`
	FinalScore *int   `db:"final_score" json:"finalScore,omitempty"`
}

// SessionTurn is one confirmed turn in the append-only turn log. Throws
// always holds three values; turns that ended early are padded with 0.
type SessionTurn struct {
	SessionID   string    `db:"session_id" json:"-"`
	PlayerName  string    `db:"player_name" json:"playerName"`
	TurnNumber  int       `db:"turn_number" json:"turnNumber"`
	Throws      []int     `db:"throws" json:"throws"`
	ScoreBefore int       `db:"score_before" json:"scoreBefore"`
	ScoreAfter  int       `db:"score_after" json:"scoreAfter"`
	IsBust      bool      `db:"is_bust" json:"isBust"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Session status values as stored.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
)
