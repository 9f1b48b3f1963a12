package cursor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calderk/glean/internal/event"
)

// ErrExhausted signals that the event sequence ended. It is a halt
// signal, not necessarily a failure: callers decide whether "nothing
// further happened" is acceptable at the point they observe it.
var ErrExhausted = errors.New("event sequence exhausted")

// MismatchError reports that Verify saw an event whose tag was not among
// the expected ones. Recoverable: combinators catch it locally and try
// the next candidate. Nothing has been consumed when it is returned.
type MismatchError struct {
	Want []event.Tag
	Got  event.Event
}

func (e *MismatchError) Error() string {
	want := make([]string, len(e.Want))
	for i, t := range e.Want {
		want[i] = string(t)
	}
	return fmt.Sprintf("expected event tag in [%s], got %q", strings.Join(want, " "), e.Got.Tag)
}

// ViolationError reports a protocol bug in the parser itself: a consume
// without a prior matching peek/verify, or a deliberately unsupported
// tag being reached. Fatal: it aborts the whole parse rather than being
// papered over.
type ViolationError struct {
	Op     string
	Detail string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("protocol violation in %s: %s", e.Op, e.Detail)
}

// IsMismatch reports whether err is (or wraps) a MismatchError.
func IsMismatch(err error) bool {
	var me *MismatchError
	return errors.As(err, &me)
}
