// Package unordered runs independently-registered pending parsers
// against the event stream without a statically fixed order.
//
// Each pass peeks the next event and offers it to every pending parser
// in registration order; the first to accept wins that event. There is no
// timestamp racing - events are totally ordered and trial order is
// fixed, so outcomes are fully deterministic and reproducible from the
// same event sequence.
//
// Two grouping modes exist. All requires every registered parser to
// settle (accept, or reject at the deadline) before the group returns;
// it models independent effects that may each occur in unspecified
// relative order. OneOf models mutually exclusive explanations of the
// same observation: the first acceptance drops every sibling immediately,
// since none of them can be true anymore.
//
// A group-level deadline predicate (typically "the next event belongs to
// a different phase") bounds how long parsers stay pending. On deadline
// every still-pending parser's rejection hook fires exactly once. A
// terminal event is different: the group unwinds with ErrHalted and NO
// hooks fire, because the pending hypotheses became moot, not falsified.
package unordered
