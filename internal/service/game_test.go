package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsmithson/71-checkout/internal/dart"
	"github.com/joshsmithson/71-checkout/internal/model"
	"github.com/joshsmithson/71-checkout/internal/session"
	"github.com/joshsmithson/71-checkout/internal/stats"
)

// fakeSessionStore records persistence calls in memory.
type fakeSessionStore struct {
	mu        sync.Mutex
	created   []*model.GameSession
	turns     []model.SessionTurn
	completed map[string]string // session ID -> winner
	abandoned []string

	failCreate error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{completed: make(map[string]string)}
}

func (f *fakeSessionStore) Create(ctx context.Context, sess *model.GameSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	f.created = append(f.created, sess)
	return nil
}

func (f *fakeSessionStore) RecordTurn(ctx context.Context, sessionID string, turn model.SessionTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeSessionStore) Complete(ctx context.Context, sessionID, winnerName string, finalScores map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[sessionID] = winnerName
	return nil
}

func (f *fakeSessionStore) MarkAbandoned(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abandoned = append(f.abandoned, sessionID)
	return nil
}

// fakeStatsStore applies merges in memory with the same semantics as the
// SQL upsert.
type fakeStatsStore struct {
	mu      sync.Mutex
	records map[string]*stats.PlayerStatistics // playerName -> record
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{records: make(map[string]*stats.PlayerStatistics)}
}

func (f *fakeStatsStore) MergeUpsert(ctx context.Context, userID, playerName string, d stats.Delta) (*stats.PlayerStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	merged := stats.Merge(f.records[playerName], d)
	merged.PlayerName = playerName
	f.records[playerName] = &merged
	return &merged, nil
}

func newTestGameService(store *fakeSessionStore, statsStore *fakeStatsStore) *GameService {
	return NewGameService(store, statsStore, session.GameType301, zerolog.Nop())
}

func TestGameService_StartGamePersistsSession(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestGameService(store, newFakeStatsStore())
	ctx := context.Background()

	require.NoError(t, svc.RenamePlayer("u1", 0, "Alice"))
	require.NoError(t, svc.AddPlayer("u1", "Bob"))

	sess, err := svc.StartGame(ctx, "u1", session.GameType501)
	require.NoError(t, err)
	assert.Equal(t, session.StatusInProgress, sess.Status)

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, sess.ID.String(), created.ID)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "501", created.GameType)
	assert.Equal(t, 501, created.StartingScore)
	require.Len(t, created.Players, 2)
	assert.Equal(t, "Alice", created.Players[0].PlayerName)
	assert.Equal(t, 1, created.Players[0].Position)
	assert.Equal(t, "Bob", created.Players[1].PlayerName)
	assert.Equal(t, 2, created.Players[1].Position)
}

func TestGameService_StartGamePersistenceFailure(t *testing.T) {
	store := newFakeSessionStore()
	store.failCreate = errors.New("connection refused")
	svc := newTestGameService(store, newFakeStatsStore())

	_, err := svc.StartGame(context.Background(), "u1", session.GameType301)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestGameService_TurnFlow(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestGameService(store, newFakeStatsStore())
	ctx := context.Background()

	_, err := svc.StartGame(ctx, "u1", session.GameType501)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Throw("u1", dart.Triple(20))
		require.NoError(t, err)
	}

	result, err := svc.ConfirmTurn(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, [3]int{60, 60, 60}, result.Record.Throws)
	assert.Equal(t, 501, result.Record.ScoreBefore)
	assert.Equal(t, 321, result.Record.ScoreAfter)
	assert.False(t, result.Record.IsBust)

	require.Len(t, store.turns, 1)
	assert.Equal(t, []int{60, 60, 60}, store.turns[0].Throws)
	assert.Equal(t, 1, store.turns[0].TurnNumber)
	assert.Empty(t, store.completed, "game is still running")
}

func TestGameService_ConfirmIncompleteTurn(t *testing.T) {
	svc := newTestGameService(newFakeSessionStore(), newFakeStatsStore())
	ctx := context.Background()

	_, err := svc.StartGame(ctx, "u1", session.GameType301)
	require.NoError(t, err)

	_, err = svc.ConfirmTurn(ctx, "u1")
	assert.ErrorIs(t, err, session.ErrTurnIncomplete)
}

func TestGameService_CheckoutCompletesAndMergesStats(t *testing.T) {
	store := newFakeSessionStore()
	statsStore := newFakeStatsStore()
	svc := newTestGameService(store, statsStore)
	ctx := context.Background()

	require.NoError(t, svc.RenamePlayer("u1", 0, "Alice"))
	require.NoError(t, svc.AddPlayer("u1", "Bob"))
	sess, err := svc.StartGame(ctx, "u1", session.GameType301)
	require.NoError(t, err)

	turn := func(throws ...dart.Throw) {
		t.Helper()
		for _, th := range throws {
			_, err := svc.Throw("u1", th)
			require.NoError(t, err)
		}
		_, err := svc.ConfirmTurn(ctx, "u1")
		require.NoError(t, err)
	}

	turn(dart.Triple(20), dart.Triple(20), dart.Triple(20)) // Alice 121
	turn(dart.Single(20), dart.Single(20), dart.Single(20)) // Bob 241
	turn(dart.Triple(20), dart.Single(11), dart.InnerBull()) // Alice finishes

	final := svc.State("u1")
	assert.Equal(t, session.StatusCompleted, final.Status)
	assert.Equal(t, "Alice", final.Winner)
	assert.Equal(t, "Alice", store.completed[sess.ID.String()])

	alice := statsStore.records["Alice"]
	require.NotNil(t, alice)
	assert.Equal(t, 1, alice.GamesPlayed)
	assert.Equal(t, 1, alice.GamesWon)
	assert.Equal(t, 301, alice.TotalScore)
	assert.Equal(t, 121, alice.HighestCheckout)

	bob := statsStore.records["Bob"]
	require.NotNil(t, bob)
	assert.Equal(t, 1, bob.GamesPlayed)
	assert.Equal(t, 0, bob.GamesWon)
	assert.Equal(t, 60, bob.TotalScore)
}

func TestGameService_StartAgainAfterCompletion(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestGameService(store, newFakeStatsStore())
	ctx := context.Background()

	first, err := svc.StartGame(ctx, "u1", session.GameType301)
	require.NoError(t, err)

	// Single-player win from a shortened score.
	svc.current("u1").CurrentPlayer().Score = 40
	_, err = svc.Throw("u1", dart.Double(20))
	require.NoError(t, err)
	_, err = svc.ConfirmTurn(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, session.StatusCompleted, svc.State("u1").Status)

	// Starting again replaces the finished game with a fresh one.
	second, err := svc.StartGame(ctx, "u1", session.GameType301)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, session.StatusInProgress, second.Status)
	assert.Len(t, store.created, 2)
}

func TestGameService_ResetAbandonsRunningGame(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestGameService(store, newFakeStatsStore())
	ctx := context.Background()

	sess, err := svc.StartGame(ctx, "u1", session.GameType301)
	require.NoError(t, err)

	fresh, err := svc.Reset(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, session.StatusNotStarted, fresh.Status)
	assert.Equal(t, []string{sess.ID.String()}, store.abandoned)

	// Resetting a game that never started has nothing to abandon.
	_, err = svc.Reset(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, store.abandoned, 1)
}

func TestGameService_Suggestions(t *testing.T) {
	svc := newTestGameService(newFakeSessionStore(), newFakeStatsStore())
	ctx := context.Background()

	assert.Nil(t, svc.Suggestions("u1"), "no advice before the game starts")

	_, err := svc.StartGame(ctx, "u1", session.GameType301)
	require.NoError(t, err)

	svc.current("u1").CurrentPlayer().Score = 100
	suggestions := svc.Suggestions("u1")
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "T20 D20", suggestions[0])

	// Advice follows the darts already thrown this turn.
	_, err = svc.Throw("u1", dart.Triple(20))
	require.NoError(t, err)
	suggestions = svc.Suggestions("u1")
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "D20", suggestions[0])
}

// TestGameService_ConcurrentReadsDuringTurns hammers the read path while a
// writer plays turns on the same user. Meaningful under -race: it fails if
// any state escapes the per-user lock.
func TestGameService_ConcurrentReadsDuringTurns(t *testing.T) {
	svc := newTestGameService(newFakeSessionStore(), newFakeStatsStore())
	ctx := context.Background()

	require.NoError(t, svc.RenamePlayer("u1", 0, "Alice"))
	require.NoError(t, svc.AddPlayer("u1", "Bob"))
	_, err := svc.StartGame(ctx, "u1", session.GameType501)
	require.NoError(t, err)

	done := make(chan struct{})
	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		// All misses, so the game never ends while readers run.
		for {
			select {
			case <-done:
				return
			default:
			}
			for i := 0; i < 3; i++ {
				if _, err := svc.Throw("u1", dart.Miss()); err != nil {
					t.Error(err)
					return
				}
			}
			if _, err := svc.ConfirmTurn(ctx, "u1"); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for i := 0; i < 200; i++ {
				st := svc.State("u1")
				if _, err := json.Marshal(st); err != nil {
					t.Error(err)
					return
				}
				_ = svc.Suggestions("u1")
			}
		}()
	}

	readers.Wait()
	close(done)
	writer.Wait()
}

// TestGameService_StateIsDetached confirms the returned state is a copy:
// later turns do not show through it and mutating it does not reach the
// live game.
func TestGameService_StateIsDetached(t *testing.T) {
	svc := newTestGameService(newFakeSessionStore(), newFakeStatsStore())
	ctx := context.Background()

	_, err := svc.StartGame(ctx, "u1", session.GameType301)
	require.NoError(t, err)

	before := svc.State("u1")
	require.Equal(t, 301, before.Players[0].Score)

	for i := 0; i < 3; i++ {
		_, err := svc.Throw("u1", dart.Triple(20))
		require.NoError(t, err)
	}
	_, err = svc.ConfirmTurn(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 301, before.Players[0].Score, "earlier state keeps its values")
	assert.Empty(t, before.TurnLog)

	before.Players[0].Score = 7
	before.Players[0].Throws = append(before.Players[0].Throws, 99)
	after := svc.State("u1")
	assert.Equal(t, 121, after.Players[0].Score, "writes to a copy never reach the game")
	assert.Equal(t, []int{180}, after.Players[0].Throws)
	require.Len(t, after.TurnLog, 1)
}
