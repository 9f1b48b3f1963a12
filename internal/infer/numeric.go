package infer

// Numeric threshold inference over an unknown maximum magnitude.
//
// The log displays health as an integer percentage of an unknown true
// maximum. The display convention is ceiling: pct = ceil(rem*100/max),
// so any nonzero remainder shows at least 1. Given the known bounds on
// the maximum, the true remaining value is confined to an interval; a
// hidden numeric condition narrows a possibility set only when it is
// provable over that whole interval.

// RemainingBounds returns the inclusive interval of true remaining
// values consistent with the displayed percentage and a maximum
// magnitude anywhere in [maxLo, maxHi].
func RemainingBounds(pct, maxLo, maxHi int) (lo, hi int) {
	if pct <= 0 {
		return 0, 0
	}
	// ceil(r*100/m) == pct  <=>  (pct-1)*m < r*100 <= pct*m
	lo = (pct-1)*maxLo/100 + 1
	hi = pct * maxHi / 100
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// ExactlyOne decides whether exactly one unit remains. Holds when every
// consistent remaining value is 1, Fails when none is, Unknown when the
// interval is ambiguous between one and more-than-one - the case that
// must NOT be mistaken for a provable outcome.
func ExactlyOne(pct, maxLo, maxHi int) Verdict {
	lo, hi := RemainingBounds(pct, maxLo, maxHi)
	switch {
	case lo == 1 && hi == 1:
		return Holds
	case lo > 1:
		return Fails
	case hi < 1:
		return Fails
	default:
		return Unknown
	}
}

// AtOrBelowFraction decides whether the true remaining value is at or
// below num/den of the true maximum. The check is conservative over the
// joint uncertainty of remaining value and maximum: Holds only when it
// holds for every consistent pair, Fails only when it holds for none.
func AtOrBelowFraction(pct, maxLo, maxHi, num, den int) Verdict {
	lo, hi := RemainingBounds(pct, maxLo, maxHi)
	if hi*den <= num*maxLo {
		return Holds
	}
	if lo*den > num*maxHi {
		return Fails
	}
	return Unknown
}
