package unordered_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderk/glean/internal/cursor"
	"github.com/calderk/glean/internal/event"
	"github.com/calderk/glean/internal/testutil"
	"github.com/calderk/glean/internal/unordered"
)

// claimTag builds a parser that accepts exactly one event with the given
// tag and subject, recording acceptance and rejection.
func claimTag(name string, tag event.Tag, subject string, accepted, rejected *bool) *unordered.Parser {
	return &unordered.Parser{
		Name: name,
		Try: func(ctx context.Context, cur *cursor.Cursor) (bool, error) {
			ev, err := cur.Verify(ctx, tag)
			if err != nil {
				return false, err
			}
			if ev.Arg(0) != subject {
				return false, nil
			}
			if _, err := cur.Consume(); err != nil {
				return false, err
			}
			*accepted = true
			return true, nil
		},
		OnDeadline: func() error {
			*rejected = true
			return nil
		},
	}
}

func boundary(ev event.Event) bool { return ev.PhaseBoundary() }

// Scenario: two independent single-trigger parsers under All; their
// triggering events arrive in either order; both settle accepted
// regardless (commutativity).
func TestAll_Commutative(t *testing.T) {
	orders := map[string][]event.Event{
		"p1 first": {
			testutil.Ev(event.TagHeal, "p1a", "80"),
			testutil.Ev(event.TagHeal, "p2a", "60"),
			testutil.Ev(event.TagTurn, "2"),
		},
		"p2 first": {
			testutil.Ev(event.TagHeal, "p2a", "60"),
			testutil.Ev(event.TagHeal, "p1a", "80"),
			testutil.Ev(event.TagTurn, "2"),
		},
	}

	for name, events := range orders {
		t.Run(name, func(t *testing.T) {
			var acc1, rej1, acc2, rej2 bool
			cur := cursor.New(testutil.NewScriptedFeeder(events...))

			err := unordered.All(context.Background(), cur, unordered.Config{
				Name:     "residual",
				Deadline: boundary,
			},
				claimTag("item:p1a", event.TagHeal, "p1a", &acc1, &rej1),
				claimTag("item:p2a", event.TagHeal, "p2a", &acc2, &rej2),
			)
			require.NoError(t, err)
			assert.True(t, acc1 && acc2, "both parsers accepted in either order")
			assert.False(t, rej1 || rej2)

			// The boundary event is left unconsumed for the outer driver.
			ev, err := cur.Peek(context.Background())
			require.NoError(t, err)
			assert.Equal(t, event.TagTurn, ev.Tag)
		})
	}
}

// Completeness: when All returns normally, every registered parser has
// settled - accepted or explicitly rejected at the deadline.
func TestAll_Completeness(t *testing.T) {
	var acc1, rej1, acc2, rej2 bool
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagHeal, "p1a", "80"),
		testutil.Ev(event.TagUpkeep),
	))

	err := unordered.All(context.Background(), cur, unordered.Config{
		Name:     "residual",
		Deadline: boundary,
	},
		claimTag("item:p1a", event.TagHeal, "p1a", &acc1, &rej1),
		claimTag("item:p2a", event.TagHeal, "p2a", &acc2, &rej2),
	)
	require.NoError(t, err)
	assert.True(t, acc1)
	assert.False(t, rej1)
	assert.False(t, acc2)
	assert.True(t, rej2, "unaccepted parser's rejection hook fired at the deadline")
}

func TestOneOf_FirstAcceptanceDropsSiblings(t *testing.T) {
	var acc1, rej1, acc2, rej2 bool
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagBoost, "p1a", "atk"),
		testutil.Ev(event.TagTurn, "2"),
	))

	err := unordered.OneOf(context.Background(), cur, unordered.Config{
		Name:     "entry",
		Deadline: boundary,
	},
		claimTag("dread", event.TagBoost, "p1a", &acc1, &rej1),
		claimTag("stormcall", event.TagWeather, "p1a", &acc2, &rej2),
	)
	require.NoError(t, err)
	assert.True(t, acc1)
	assert.False(t, acc2)
	assert.False(t, rej2, "siblings are dropped, not deadline-rejected: exclusivity is the winner's job")
}

func TestOneOf_RegistrationOrderTieBreak(t *testing.T) {
	// Both parsers would accept the same event; the first registered wins.
	var accA, accB bool
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagBoost, "p1a", "atk"),
	))

	err := unordered.OneOf(context.Background(), cur, unordered.Config{Name: "tie"},
		claimTag("first", event.TagBoost, "p1a", &accA, new(bool)),
		claimTag("second", event.TagBoost, "p1a", &accB, new(bool)),
	)
	require.NoError(t, err)
	assert.True(t, accA)
	assert.False(t, accB)
}

func TestDeadline_HooksFireExactlyOnce(t *testing.T) {
	count := 0
	p := &unordered.Parser{
		Name: "never",
		Try: func(ctx context.Context, cur *cursor.Cursor) (bool, error) {
			_, err := cur.Verify(ctx, event.TagHeal)
			return false, err
		},
		OnDeadline: func() error { count++; return nil },
	}
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagTurn, "2"),
	))

	err := unordered.All(context.Background(), cur, unordered.Config{Name: "g", Deadline: boundary}, p)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// Scenario: a terminal event arrives mid-group. The group unwinds with
// ErrHalted and no rejection hooks fire - the pending hypotheses became
// moot, not falsified.
func TestTerminal_UnwindsWithoutHooks(t *testing.T) {
	var acc, rej bool
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagWin, "p2"),
	))

	err := unordered.All(context.Background(), cur, unordered.Config{Name: "g", Deadline: boundary},
		claimTag("item:p1a", event.TagHeal, "p1a", &acc, &rej),
	)
	require.ErrorIs(t, err, unordered.ErrHalted)
	assert.False(t, acc)
	assert.False(t, rej, "cancellation must not assert false facts about moot hypotheses")

	// The terminal event is left for the top-level driver.
	ev, err := cur.Peek(context.Background())
	require.NoError(t, err)
	assert.True(t, ev.Terminal())
}

func TestUnclaimedEvents_FallThrough(t *testing.T) {
	var acc, rej bool
	fallbacks := 0
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagStatus, "p2a", "brn"), // unrelated, must not stall the group
		testutil.Ev(event.TagDamage, "p2a", "88"),  // unrelated
		testutil.Ev(event.TagHeal, "p1a", "80"),
		testutil.Ev(event.TagTurn, "2"),
	))

	err := unordered.All(context.Background(), cur, unordered.Config{
		Name:     "residual",
		Deadline: boundary,
		Fallback: func(ctx context.Context, c *cursor.Cursor) error {
			fallbacks++
			_, err := c.Consume()
			return err
		},
	},
		claimTag("item:p1a", event.TagHeal, "p1a", &acc, &rej),
	)
	require.NoError(t, err)
	assert.True(t, acc)
	assert.Equal(t, 2, fallbacks)
}

func TestExhaustion_SurfacesDistinctly(t *testing.T) {
	var acc, rej bool
	cur := cursor.New(testutil.NewScriptedFeeder())

	err := unordered.All(context.Background(), cur, unordered.Config{Name: "residual", Deadline: boundary},
		claimTag("item:p1a", event.TagHeal, "p1a", &acc, &rej),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, cursor.ErrExhausted, "exhaustion wraps the halt sentinel")

	var ee *unordered.ExhaustedError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "residual", ee.Group)
	assert.Equal(t, []string{"item:p1a"}, ee.Pending)
	assert.False(t, rej, "no hooks on exhaustion - the caller decides")
}

func TestMismatch_NeverEscapes(t *testing.T) {
	// A parser whose Try verifies the wrong tag: the mismatch is the
	// expected negative signal and must be swallowed by the combinator.
	p := &unordered.Parser{
		Name: "wrong",
		Try: func(ctx context.Context, cur *cursor.Cursor) (bool, error) {
			_, err := cur.Verify(ctx, event.TagWeather)
			return false, err
		},
	}
	cur := cursor.New(testutil.NewScriptedFeeder(
		testutil.Ev(event.TagHeal, "p1a", "80"),
		testutil.Ev(event.TagTurn, "2"),
	))

	err := unordered.All(context.Background(), cur, unordered.Config{Name: "g", Deadline: boundary}, p)
	require.NoError(t, err)
	assert.False(t, cursor.IsMismatch(err))
}
