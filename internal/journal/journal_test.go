package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), DirName, FileName), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

// stepClock makes timeNow advance one second per call.
func stepClock(t *testing.T) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	timeNow = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	t.Cleanup(func() { timeNow = time.Now })
}

func TestSessions_AccountingSumsCost(t *testing.T) {
	stepClock(t)
	j := newTestJournal(t)

	chat, err := j.StartSession("p1", KindChat)
	require.NoError(t, err)
	require.NoError(t, j.FinishSession(chat, Outcome{CostUSD: 0.25, Turns: 2, AgentSessionID: "a1"}))
	require.NoError(t, j.FinishSession(chat, Outcome{CostUSD: 0.5, Turns: 3}))

	review, err := j.StartSession("p1", KindReview)
	require.NoError(t, err)
	require.NoError(t, j.FinishSession(review, Outcome{Status: StatusFailed, CostUSD: 1}))

	_, err = j.StartSession("p2", KindChat)
	require.NoError(t, err)

	st, err := j.Stats("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Sessions)
	assert.InDelta(t, 1.75, st.TotalCostUSD, 1e-9)
	assert.Equal(t, 5, st.TotalTurns)

	sessions, err := j.RecentSessions("p1", 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, review, sessions[0].ID)
	assert.Equal(t, StatusFailed, sessions[0].Status)
	assert.Equal(t, chat, sessions[1].ID)
	assert.Equal(t, "a1", sessions[1].AgentSessionID)
	assert.Equal(t, StatusComplete, sessions[1].Status)
	require.NotNil(t, sessions[1].EndedAt)
	assert.True(t, sessions[1].EndedAt.After(sessions[1].StartedAt))

	all, err := j.RecentSessions("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, StatusRunning, all[0].Status)
	assert.Nil(t, all[0].EndedAt)
}

func TestFinishSession_Unknown(t *testing.T) {
	j := newTestJournal(t)
	assert.Error(t, j.FinishSession("nope", Outcome{}))
}

func TestReviews(t *testing.T) {
	stepClock(t)
	j := newTestJournal(t)

	_, ok, err := j.LatestReview("p1")
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := j.SaveReview("p1", nil, "## Overall Assessment\n\nFirst.", 0.1)
	require.NoError(t, err)
	second, err := j.SaveReview("p1", []string{"plot", "pacing"}, "## Overall Assessment\n\nSecond.", 0.2)
	require.NoError(t, err)
	_, err = j.SaveReview("p2", nil, "other", 0)
	require.NoError(t, err)

	latest, ok, err := j.LatestReview("p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, latest.ID)
	assert.Equal(t, []string{"plot", "pacing"}, latest.FocusAreas)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 2, 0, time.UTC), latest.CreatedAt)

	reviews, err := j.Reviews("p1", 0)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, first, reviews[1].ID)
	assert.Equal(t, []string{}, reviews[1].FocusAreas)

	st, err := j.Stats("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Reviews)
	assert.Equal(t, 0, st.Sessions)
}

func TestForget(t *testing.T) {
	j := newTestJournal(t)
	_, err := j.StartSession("p1", KindChat)
	require.NoError(t, err)
	_, err = j.SaveReview("p1", nil, "x", 0)
	require.NoError(t, err)

	require.NoError(t, j.Forget("p1"))

	st, err := j.Stats("p1")
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	j, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	_, err = j.SaveReview("p1", nil, "kept", 0)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer j.Close()
	r, ok, err := j.LatestReview("p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kept", r.Content)
}

func TestOpenOptional(t *testing.T) {
	root := t.TempDir()
	assert.Nil(t, OpenOptional(root, false, zerolog.Nop()))

	j := OpenOptional(root, true, zerolog.Nop())
	require.NotNil(t, j)
	defer j.Close()
	assert.FileExists(t, DefaultPath(root))
}
