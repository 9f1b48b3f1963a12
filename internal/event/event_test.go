package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Fields(t *testing.T) {
	ev := Event{
		Tag:  TagDamage,
		Args: []string{"p2a", "64"},
		KV:   map[string]string{"from": "burn"},
	}

	assert.Equal(t, "p2a", ev.Arg(0))
	assert.Equal(t, "64", ev.Arg(1))
	assert.Equal(t, "", ev.Arg(2), "out-of-range positional is empty, not a panic")
	assert.Equal(t, "burn", ev.Keyword("from"))
	assert.Equal(t, "", ev.Keyword("of"))
}

func TestEvent_Terminal(t *testing.T) {
	assert.True(t, New(TagWin, "p1").Terminal())
	assert.True(t, New(TagTie).Terminal())
	assert.False(t, New(TagFaint, "p1a").Terminal())
}

func TestEvent_PhaseBoundary(t *testing.T) {
	assert.True(t, New(TagTurn, "2").PhaseBoundary())
	assert.True(t, New(TagUpkeep).PhaseBoundary())
	assert.True(t, New(TagWin, "p1").PhaseBoundary())
	assert.False(t, New(TagMove, "p1a", "ember").PhaseBoundary())
}

func TestEvent_String(t *testing.T) {
	ev := Event{
		Tag:  TagDamage,
		Args: []string{"p2a", "64"},
		KV:   map[string]string{"of": "p1a", "from": "item"},
	}
	// Keyword fields render in sorted key order.
	assert.Equal(t, "|damage|p2a|64|from=item|of=p1a", ev.String())
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	ev := Event{
		Tag:  TagHeal,
		Args: []string{"p1a", "75"},
		KV:   map[string]string{"from": "mendcharm", "of": "p1a"},
	}

	first, err := ev.MarshalCanonical()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := ev.MarshalCanonical()
		require.NoError(t, err)
		assert.Equal(t, first, again, "canonical encoding must not depend on map iteration order")
	}

	assert.Equal(t,
		`{"args":["p1a","75"],"kv":{"from":"mendcharm","of":"p1a"},"tag":"heal"}`,
		string(first))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "e" + combining acute vs precomposed U+00E9 must hash identically.
	decomposed := New(TagMove, "p1a", "éclair")
	precomposed := New(TagMove, "p1a", "éclair")

	h1, err := decomposed.Hash()
	require.NoError(t, err)
	h2, err := precomposed.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	ev := New(TagMove, "p1a", "x<y&z")
	data, err := ev.MarshalCanonical()
	require.NoError(t, err)
	assert.Contains(t, string(data), "x<y&z")
}
