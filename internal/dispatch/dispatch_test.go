package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderk/glean/internal/cursor"
	"github.com/calderk/glean/internal/dispatch"
	"github.com/calderk/glean/internal/event"
	"github.com/calderk/glean/internal/state"
	"github.com/calderk/glean/internal/testutil"
)

func TestDispatch_CustomHandlerMutatesThenConsumes(t *testing.T) {
	st := state.NewStore()
	d := dispatch.New(nil).Handle(event.TagWeather, func(ctx context.Context, st *state.Store, ev event.Event) error {
		st.SetWeather(ev.Arg(0))
		return nil
	})
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagWeather, "rain"),
	))

	require.NoError(t, d.Dispatch(context.Background(), cur, st))
	assert.Equal(t, "rain", st.Weather())
	assert.Equal(t, int64(1), cur.Consumed())
}

func TestDispatch_NoopConsume(t *testing.T) {
	st := state.NewStore()
	d := dispatch.New(nil).Consume(event.TagMove)
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagMove, "p1a", "ember"),
	))

	require.NoError(t, d.Dispatch(context.Background(), cur, st))
	assert.Equal(t, int64(1), cur.Consumed())
}

func TestDispatch_UnsupportedFailsFast(t *testing.T) {
	st := state.NewStore()
	d := dispatch.New(nil).Unsupported(event.TagBoost)
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagBoost, "p1a", "atk"),
	))

	err := d.Dispatch(context.Background(), cur, st)
	require.Error(t, err)

	var ve *cursor.ViolationError
	assert.True(t, errors.As(err, &ve), "a deliberate gap surfaces as a protocol violation")
	assert.Equal(t, int64(0), cur.Consumed())
}

func TestDispatch_UnregisteredTagConsumedSilently(t *testing.T) {
	st := state.NewStore()
	d := dispatch.New(nil)
	cur := cursor.New(testutil.NewScriptedFeeder(
		event.New("futuretag", "x"),
	))

	require.NoError(t, d.Dispatch(context.Background(), cur, st))
	assert.Equal(t, int64(1), cur.Consumed())
}

func TestConsumeUntil_StopsAtBoundary(t *testing.T) {
	st := state.NewStore()
	d := dispatch.New(nil).Consume(event.TagMove, event.TagDamage)
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagMove, "p1a", "ember"),
		testutil.Ev(event.TagDamage, "p2a", "64"),
		testutil.Ev(event.TagUpkeep),
	))

	err := d.ConsumeUntil(context.Background(), cur, st, func(ev event.Event) bool {
		return ev.PhaseBoundary()
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), cur.Consumed())

	ev, err := cur.Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, event.TagUpkeep, ev.Tag, "the boundary event is left unconsumed")
}

func TestConsumeUntil_EndOfSequence(t *testing.T) {
	st := state.NewStore()
	d := dispatch.New(nil).Consume(event.TagMove)
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagMove, "p1a", "ember"),
	))

	err := d.ConsumeUntil(context.Background(), cur, st, func(ev event.Event) bool { return false })
	require.NoError(t, err, "running out of events is not an error for the fallback loop")
	assert.Equal(t, int64(1), cur.Consumed())
}
