package cursor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderk/glean/internal/cursor"
	"github.com/calderk/glean/internal/event"
	"github.com/calderk/glean/internal/testutil"
)

func TestPeek_Restartable(t *testing.T) {
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagMove, "p1a", "ember"),
		testutil.Ev(event.TagDamage, "p2a", "64"),
	))
	ctx := context.Background()

	first, err := cur.Peek(ctx)
	require.NoError(t, err)

	// Repeated peeks before consume return the same event.
	for i := 0; i < 3; i++ {
		again, err := cur.Peek(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	consumed, err := cur.Consume()
	require.NoError(t, err)
	assert.Equal(t, first, consumed)

	next, err := cur.Peek(ctx)
	require.NoError(t, err)
	assert.Equal(t, event.TagDamage, next.Tag)
}

func TestVerify_Mismatch(t *testing.T) {
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagMove, "p1a", "ember"),
	))
	ctx := context.Background()

	_, err := cur.Verify(ctx, event.TagDamage, event.TagHeal)
	require.Error(t, err)
	assert.True(t, cursor.IsMismatch(err))

	var me *cursor.MismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, event.TagMove, me.Got.Tag)

	// Nothing was consumed: a sibling caller can still claim the event.
	ev, err := cur.Verify(ctx, event.TagMove)
	require.NoError(t, err)
	assert.Equal(t, "ember", ev.Arg(1))
}

func TestTryVerify_NonFailing(t *testing.T) {
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagMove, "p1a", "ember"),
	))
	ctx := context.Background()

	_, ok, err := cur.TryVerify(ctx, event.TagHeal)
	require.NoError(t, err)
	assert.False(t, ok)

	ev, ok, err := cur.TryVerify(ctx, event.TagMove)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, event.TagMove, ev.Tag)
}

func TestTryPeek_Exhausted(t *testing.T) {
	cur := cursor.New(testutil.NewScriptedFeeder())
	ctx := context.Background()

	_, ok, err := cur.TryPeek(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = cur.Peek(ctx)
	assert.ErrorIs(t, err, cursor.ErrExhausted)
}

func TestConsume_WithoutPeek(t *testing.T) {
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagMove, "p1a", "ember"),
	))

	_, err := cur.Consume()
	require.Error(t, err)

	var ve *cursor.ViolationError
	assert.True(t, errors.As(err, &ve), "consume without peek is a protocol violation")
}

func TestConsume_TwiceNeedsSecondPeek(t *testing.T) {
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagMove, "p1a", "ember"),
		testutil.Ev(event.TagDamage, "p2a", "64"),
	))
	ctx := context.Background()

	_, err := cur.Peek(ctx)
	require.NoError(t, err)
	_, err = cur.Consume()
	require.NoError(t, err)

	// The second event has not been peeked yet.
	_, err = cur.Consume()
	var ve *cursor.ViolationError
	assert.True(t, errors.As(err, &ve))

	assert.Equal(t, int64(1), cur.Consumed())
}
