// Package session implements the per-game state machine: roster management,
// turn confirmation and game completion for X01 countdown games.
package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/joshsmithson/71-checkout/internal/dart"
)

// GameType selects the starting score.
type GameType string

const (
	GameType301 GameType = "301"
	GameType501 GameType = "501"
)

// ParseGameType converts a wire string into a GameType.
func ParseGameType(s string) (GameType, error) {
	switch GameType(s) {
	case GameType301, GameType501:
		return GameType(s), nil
	default:
		return "", fmt.Errorf("unknown game type %q", s)
	}
}

// StartingScore returns the countdown start for the game type.
func (g GameType) StartingScore() int {
	if g == GameType301 {
		return 301
	}
	return 501
}

// Status is the session phase.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"

	// StatusAbandoned is a persistence-only terminal status for games that
	// were reset while in progress. A live session never carries it.
	StatusAbandoned Status = "abandoned"
)

// MaxPlayers caps the roster size.
const MaxPlayers = 8

// Player is a participant in one session. Throws holds confirmed per-turn
// totals for scoring turns; busted turns are discarded and appear only in
// the turn log.
type Player struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Throws []int  `json:"throws"`
}

// TurnRecord is an immutable log entry for one confirmed turn. Throws is
// padded with misses when the turn ended before the third dart.
type TurnRecord struct {
	PlayerName  string `json:"playerName"`
	TurnNumber  int    `json:"turnNumber"`
	Throws      [3]int `json:"throws"`
	ScoreBefore int    `json:"scoreBefore"`
	ScoreAfter  int    `json:"scoreAfter"`
	IsBust      bool   `json:"isBust"`
}

// Session is the aggregate state of one game. It assumes a single writer;
// callers that can race (two browser tabs on one account) must serialize
// access externally.
type Session struct {
	ID       uuid.UUID    `json:"id"`
	GameType GameType     `json:"gameType"`
	Players  []*Player    `json:"players"`
	Current  int          `json:"currentPlayerIndex"`
	Status   Status       `json:"status"`
	Winner   string       `json:"winner,omitempty"`
	TurnLog  []TurnRecord `json:"turnLog"`

	pending []dart.Throw
}

// New creates a NotStarted session with a single default player, matching
// the fresh game screen.
func New(gameType GameType) *Session {
	return &Session{
		GameType: gameType,
		Players:  []*Player{{Name: "Player 1"}},
		Status:   StatusNotStarted,
	}
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: player name must not be empty", ErrInvalidRoster)
	}
	return nil
}

func (s *Session) hasPlayer(name string) bool {
	for _, p := range s.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// SetGameType changes the game type. Only valid before the game starts.
func (s *Session) SetGameType(gt GameType) error {
	if s.Status != StatusNotStarted {
		return fmt.Errorf("%w: game type is fixed once started", ErrInvalidState)
	}
	s.GameType = gt
	return nil
}

// AddPlayer appends a player to the roster. Only valid before the game
// starts; names are unique case-sensitively within the session.
func (s *Session) AddPlayer(name string) error {
	if s.Status != StatusNotStarted {
		return fmt.Errorf("%w: roster is locked once the game starts", ErrInvalidState)
	}
	if err := validName(name); err != nil {
		return err
	}
	if s.hasPlayer(name) {
		return fmt.Errorf("%w: duplicate player name %q", ErrInvalidRoster, name)
	}
	if len(s.Players) >= MaxPlayers {
		return fmt.Errorf("%w: at most %d players", ErrInvalidRoster, MaxPlayers)
	}
	s.Players = append(s.Players, &Player{Name: name})
	return nil
}

// RemovePlayer removes the player at index. The roster always keeps at
// least one player.
func (s *Session) RemovePlayer(index int) error {
	if s.Status != StatusNotStarted {
		return fmt.Errorf("%w: roster is locked once the game starts", ErrInvalidState)
	}
	if index < 0 || index >= len(s.Players) {
		return fmt.Errorf("%w: no player at index %d", ErrInvalidRoster, index)
	}
	if len(s.Players) == 1 {
		return fmt.Errorf("%w: cannot remove the last player", ErrInvalidRoster)
	}
	s.Players = append(s.Players[:index], s.Players[index+1:]...)
	return nil
}

// RenamePlayer changes a player's name before the game starts.
func (s *Session) RenamePlayer(index int, name string) error {
	if s.Status != StatusNotStarted {
		return fmt.Errorf("%w: roster is locked once the game starts", ErrInvalidState)
	}
	if index < 0 || index >= len(s.Players) {
		return fmt.Errorf("%w: no player at index %d", ErrInvalidRoster, index)
	}
	if err := validName(name); err != nil {
		return err
	}
	if s.Players[index].Name != name && s.hasPlayer(name) {
		return fmt.Errorf("%w: duplicate player name %q", ErrInvalidRoster, name)
	}
	s.Players[index].Name = name
	return nil
}

// Start validates the roster, assigns a session ID, initializes every
// player's score and moves the session to InProgress.
func (s *Session) Start() error {
	if s.Status != StatusNotStarted {
		return fmt.Errorf("%w: game already started", ErrInvalidState)
	}
	if len(s.Players) < 1 || len(s.Players) > MaxPlayers {
		return fmt.Errorf("%w: need 1 to %d players, have %d", ErrInvalidRoster, MaxPlayers, len(s.Players))
	}
	seen := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		if err := validName(p.Name); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate player name %q", ErrInvalidRoster, p.Name)
		}
		seen[p.Name] = true
	}

	start := s.GameType.StartingScore()
	for _, p := range s.Players {
		p.Score = start
		p.Throws = nil
	}
	s.ID = uuid.New()
	s.Current = 0
	s.Winner = ""
	s.TurnLog = nil
	s.pending = nil
	s.Status = StatusInProgress
	return nil
}

// CurrentPlayer returns the player whose turn it is.
func (s *Session) CurrentPlayer() *Player {
	return s.Players[s.Current]
}

// PendingThrows returns the darts collected so far this turn.
func (s *Session) PendingThrows() []dart.Throw {
	out := make([]dart.Throw, len(s.pending))
	copy(out, s.pending)
	return out
}

// PendingScore is the current player's score with the pending darts
// applied; it can be negative mid-turn on an overshoot.
func (s *Session) PendingScore() int {
	score := s.CurrentPlayer().Score
	for _, t := range s.pending {
		score -= t.Value()
	}
	return score
}

// turnDecided reports whether the pending throws already fix the turn's
// outcome: three darts thrown, a checkout or a guaranteed bust.
func (s *Session) turnDecided() bool {
	if len(s.pending) == 0 {
		return false
	}
	return len(s.pending) == 3 || s.PendingScore() < 2
}

// Throw records one dart into the pending turn. Darts are rejected once
// the turn is decided — in particular, once the running score reaches
// exactly zero no further darts are accepted for the turn.
func (s *Session) Throw(t dart.Throw) error {
	if s.Status != StatusInProgress {
		return fmt.Errorf("%w: game is not in progress", ErrInvalidState)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if s.turnDecided() {
		return ErrTurnOver
	}
	s.pending = append(s.pending, t)
	return nil
}

// CancelTurn discards the pending throws without advancing play.
func (s *Session) CancelTurn() error {
	if s.Status != StatusInProgress {
		return fmt.Errorf("%w: game is not in progress", ErrInvalidState)
	}
	s.pending = nil
	return nil
}

// turnNumber returns the 1-based number of the player's next turn,
// counting every confirmed turn including busts.
func (s *Session) turnNumber(name string) int {
	n := 1
	for _, rec := range s.TurnLog {
		if rec.PlayerName == name {
			n++
		}
	}
	return n
}

// ConfirmTurn evaluates the pending throws against the current player's
// score and applies the outcome: a bust discards the turn and passes play,
// a checkout completes the game with the current player as winner, and a
// normal turn updates the score and passes play. The appended TurnRecord
// is returned.
func (s *Session) ConfirmTurn() (TurnRecord, error) {
	if s.Status != StatusInProgress {
		return TurnRecord{}, fmt.Errorf("%w: game is not in progress", ErrInvalidState)
	}
	if !s.turnDecided() {
		return TurnRecord{}, ErrTurnIncomplete
	}

	player := s.CurrentPlayer()
	outcome, err := dart.Evaluate(player.Score, s.pending)
	if err != nil {
		return TurnRecord{}, err
	}

	record := TurnRecord{
		PlayerName:  player.Name,
		TurnNumber:  s.turnNumber(player.Name),
		ScoreBefore: player.Score,
		ScoreAfter:  outcome.ScoreAfter,
		IsBust:      outcome.IsBust,
	}
	sum := 0
	for i, t := range s.pending {
		record.Throws[i] = t.Value()
		sum += t.Value()
	}

	s.TurnLog = append(s.TurnLog, record)
	s.pending = nil

	switch {
	case outcome.IsBust:
		s.advance()
	case outcome.IsCheckout:
		player.Score = 0
		player.Throws = append(player.Throws, sum)
		s.Status = StatusCompleted
		s.Winner = player.Name
	default:
		player.Score = outcome.ScoreAfter
		player.Throws = append(player.Throws, sum)
		s.advance()
	}
	return record, nil
}

func (s *Session) advance() {
	s.Current = (s.Current + 1) % len(s.Players)
}

// Snapshot is a deep copy of a session's observable state for readers
// outside the writer's lock. Remaining is the current player's score with
// the pending darts applied, present only during play.
type Snapshot struct {
	ID        uuid.UUID    `json:"id"`
	GameType  GameType     `json:"gameType"`
	Players   []Player     `json:"players"`
	Current   int          `json:"currentPlayerIndex"`
	Status    Status       `json:"status"`
	Winner    string       `json:"winner,omitempty"`
	TurnLog   []TurnRecord `json:"turnLog"`
	Pending   []dart.Throw `json:"-"`
	Remaining int          `json:"remaining"`
}

// Snapshot copies the session so the copy can outlive the caller's lock.
// Nothing in the result aliases session memory.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:       s.ID,
		GameType: s.GameType,
		Current:  s.Current,
		Status:   s.Status,
		Winner:   s.Winner,
		Pending:  s.PendingThrows(),
	}
	snap.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		cp.Throws = append([]int(nil), p.Throws...)
		snap.Players[i] = cp
	}
	snap.TurnLog = append([]TurnRecord(nil), s.TurnLog...)
	if s.Status == StatusInProgress {
		snap.Remaining = s.PendingScore()
	}
	return snap
}

// Reset returns a brand-new NotStarted session with the same game type and
// roster names. The receiver is left untouched; abandoned-game bookkeeping
// is the caller's concern.
func (s *Session) Reset() *Session {
	fresh := &Session{
		GameType: s.GameType,
		Players:  make([]*Player, 0, len(s.Players)),
		Status:   StatusNotStarted,
	}
	for _, p := range s.Players {
		fresh.Players = append(fresh.Players, &Player{Name: p.Name})
	}
	return fresh
}
