package journal_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderk/glean/internal/event"
	"github.com/calderk/glean/internal/journal"
	"github.com/calderk/glean/internal/testutil"
)

func openTemp(t *testing.T) *journal.Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glean.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func sampleLog() []event.Event {
	return []event.Event{
		testutil.Ev(event.TagSwitch, "p1a", "finch"),
		testutil.Ev(event.TagSwitch, "p2a", "wolf"),
		testutil.EvKV(event.TagHeal, []string{"p1a", "90"}, map[string]string{"from": "item", "of": "p1a"}),
		testutil.Ev(event.TagTurn, "1"),
		testutil.Ev(event.TagWin, "p1"),
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glean.db")

	j1, err := journal.Open(path)
	require.NoError(t, err)
	require.NoError(t, j1.Close())

	j2, err := journal.Open(path)
	require.NoError(t, err)
	require.NoError(t, j2.Close())
}

func TestRoundTrip(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	token, err := j.CreateSession(ctx, "scrim vs wolf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	events := sampleLog()
	require.NoError(t, j.AppendAll(ctx, token, events))

	got, err := j.Events(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, events, got, "stream survives the store byte-for-byte, keywords included")
}

func TestAppend_IdempotentPerStamp(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	token, err := j.CreateSession(ctx, "")
	require.NoError(t, err)

	ev := testutil.Ev(event.TagTurn, "1")
	require.NoError(t, j.Append(ctx, token, 1, ev))
	require.NoError(t, j.Append(ctx, token, 1, ev))

	got, err := j.Events(ctx, token)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSessions_OrderedByToken(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	t1, err := j.CreateSession(ctx, "first")
	require.NoError(t, err)
	t2, err := j.CreateSession(ctx, "second")
	require.NoError(t, err)

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, t1, sessions[0].Token)
	assert.Equal(t, "first", sessions[0].Label)
	assert.Equal(t, t2, sessions[1].Token)
	assert.NotEmpty(t, sessions[0].CreatedAt)
}

func TestSessions_EmptyNotNil(t *testing.T) {
	j := openTemp(t)

	sessions, err := j.Sessions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestSession_Unknown(t *testing.T) {
	j := openTemp(t)

	_, err := j.Session(context.Background(), "nope")
	assert.ErrorIs(t, err, journal.ErrNoSession)
}

func TestEvents_TamperDetected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glean.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	defer j.Close()
	ctx := context.Background()

	token, err := j.CreateSession(ctx, "")
	require.NoError(t, err)
	require.NoError(t, j.AppendAll(ctx, token, sampleLog()))

	// Rewrite one payload behind the journal's back.
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Exec(
		`UPDATE events SET payload = ? WHERE session_token = ? AND seq = 3`,
		`{"args":["p1a","10"],"tag":"heal"}`, token,
	)
	require.NoError(t, err)

	_, err = j.Events(ctx, token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}
