package session

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"fairway/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedHistory(t *testing.T) {
	store := NewContextStore("s1")

	for i := 1; i <= 15; i++ {
		store.AddTurn(Turn{Role: RoleUser, Content: fmt.Sprintf("turn %d", i)})
	}

	snap := store.Snapshot()
	require.Len(t, snap.History, 10)
	assert.Equal(t, "turn 6", snap.History[0].Content)
	assert.Equal(t, "turn 15", snap.History[9].Content)
}

func TestClearResetsEverything(t *testing.T) {
	store := NewContextStore("s1")
	store.UpdateRound("r1")
	store.UpdateHole(7)
	store.RecordShot("7-iron, pin high")
	store.AddTurn(Turn{Role: RoleUser, Content: "hello"})

	store.Clear()

	snap := store.Snapshot()
	assert.Empty(t, snap.CurrentRoundID)
	assert.Zero(t, snap.CurrentHole)
	assert.Empty(t, snap.LastShot)
	assert.Empty(t, snap.History)
}

func TestUpdateHoleRange(t *testing.T) {
	store := NewContextStore("s1")
	store.UpdateHole(25) // ignored
	assert.Zero(t, store.Snapshot().CurrentHole)
	store.UpdateHole(18)
	assert.Equal(t, 18, store.Snapshot().CurrentHole)
}

func TestSerializeDeterministic(t *testing.T) {
	store := NewContextStore("s1", WithCapacity(5))
	store.UpdateRound("round-42")
	store.UpdateHole(12)
	store.RecordRecommendation("smooth 8-iron")
	store.AddTurn(Turn{Role: RoleUser, Content: "what club"})
	store.AddTurn(Turn{Role: RoleAssistant, Content: "8-iron"})

	a := store.Snapshot().Serialize()
	b := store.Snapshot().Serialize()
	assert.Equal(t, a, b)
	assert.Contains(t, a, "round: active (round-42)")
	assert.Contains(t, a, "hole: 12")
	assert.Contains(t, a, "user: what club")
}

func TestConcurrentMutation(t *testing.T) {
	store := NewContextStore("s1", WithCapacity(100))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.AddTurn(Turn{Role: RoleUser, Content: fmt.Sprintf("c%d", n)})
			store.UpdateHole(n%18 + 1)
		}(i)
	}
	wg.Wait()

	snap := store.Snapshot()
	assert.Len(t, snap.History, 20)
	assert.GreaterOrEqual(t, snap.CurrentHole, 1)
	assert.LessOrEqual(t, snap.CurrentHole, 18)
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fairway.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.SaveSession(PersistedSession{ID: "s1", RoundID: "r9", Hole: 3}))

	got, err := repo.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "r9", got.RoundID)
	assert.Equal(t, 3, got.Hole)

	// Missing sessions come back zero-valued, not as errors.
	missing, err := repo.GetSession("nope")
	require.NoError(t, err)
	assert.Empty(t, missing.RoundID)

	require.NoError(t, repo.AddTurn("s1", 1, Turn{Role: RoleUser, Content: "first", Intent: types.IntentHelpRequest}))
	require.NoError(t, repo.AddTurn("s1", 2, Turn{Role: RoleAssistant, Content: "second"}))
	// Duplicate turn number is silently ignored.
	require.NoError(t, repo.AddTurn("s1", 2, Turn{Role: RoleAssistant, Content: "dupe"}))

	turns, err := repo.History("s1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "first", turns[0].Content)
	assert.Equal(t, types.IntentHelpRequest, turns[0].Intent)
	assert.Equal(t, "second", turns[1].Content)
}

func TestContextStoreWriteThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fairway.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	store := NewContextStore("s2", WithRepository(repo))
	store.UpdateRound("r1")
	store.AddTurn(Turn{Role: RoleUser, Content: "hello"})

	persisted, err := repo.GetSession("s2")
	require.NoError(t, err)
	assert.Equal(t, "r1", persisted.RoundID)

	turns, err := repo.History("s2", 5)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "hello", turns[0].Content)
}
