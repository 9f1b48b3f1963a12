// Package cursor provides single-slot lookahead over an ordered event
// stream.
//
// The cursor is the primitive every parser in this module builds on. It
// buffers exactly one not-yet-consumed event at a time and exposes
// peek/verify/consume over it:
//
//   - Peek returns the buffered event without advancing, pulling from the
//     Feeder when the slot is empty. Repeated peeks before a consume
//     return the same event.
//   - Verify is Peek plus a tag check; a wrong tag yields a MismatchError
//     without consuming anything, so a sibling caller can try the same
//     event next.
//   - Consume advances past the buffered event. Consuming without a prior
//     peek/verify of that event is a ViolationError - it means a caller
//     skipped a lookahead it was required to perform.
//
// SUSPENSION MODEL:
// The only blocking point in the whole parse pipeline is Feeder.Next,
// called from inside Peek when the slot is empty. Everything downstream
// of the cursor is plain single-threaded sequential code; "concurrency"
// between competing parsers is purely logical (fixed trial order over the
// same buffered event), never parallel execution.
package cursor
