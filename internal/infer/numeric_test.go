package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemainingBounds(t *testing.T) {
	tests := []struct {
		name           string
		pct            int
		maxLo, maxHi   int
		wantLo, wantHi int
	}{
		{"full bar, known max", 100, 100, 100, 100, 100},
		{"full bar, bounded max", 100, 241, 288, 239, 288},
		{"one percent, small max", 1, 100, 100, 1, 1},
		{"one percent, large max", 1, 241, 288, 1, 2},
		{"zero", 0, 241, 288, 0, 0},
		{"half, known max", 50, 100, 100, 50, 50},
		{"half, bounded max", 50, 200, 240, 99, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := RemainingBounds(tt.pct, tt.maxLo, tt.maxHi)
			assert.Equal(t, tt.wantLo, lo)
			assert.Equal(t, tt.wantHi, hi)
			assert.LessOrEqual(t, lo, hi)
		})
	}
}

func TestExactlyOne(t *testing.T) {
	// Displayed 1% with max known to be exactly 100: remaining is 1.
	assert.Equal(t, Holds, ExactlyOne(1, 100, 100))

	// Displayed 1% with max in [241,288]: remaining is 1 or 2 - ambiguous.
	// The ambiguous case must NOT resolve either way.
	assert.Equal(t, Unknown, ExactlyOne(1, 241, 288))

	// Displayed 5% of at least 100: remaining is provably more than one.
	assert.Equal(t, Fails, ExactlyOne(5, 100, 120))

	// Nothing remains.
	assert.Equal(t, Fails, ExactlyOne(0, 100, 120))
}

func TestAtOrBelowFraction(t *testing.T) {
	// 25% displayed of a known max: provably at or below 1/3.
	assert.Equal(t, Holds, AtOrBelowFraction(25, 100, 100, 1, 3))

	// 80% displayed: provably above 1/3.
	assert.Equal(t, Fails, AtOrBelowFraction(80, 100, 100, 1, 3))

	// 34% displayed with a wide max range straddles the band.
	assert.Equal(t, Unknown, AtOrBelowFraction(34, 100, 140, 1, 3))
}
