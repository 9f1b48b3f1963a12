// Package parser is the top-level entry point: it consumes the ordered
// event log, advances the state projection, and drives hidden-attribute
// inference.
//
// ARCHITECTURE:
//
// Single-Consumer Event Loop:
// One producer pushes decoded events through a Handle; one parse
// goroutine drains them through the cursor. All projection mutations and
// possibility-set narrowing happen in that goroutine, so evaluation is
// deterministic and reproducible from the same event sequence. The only
// suspension point is the cursor's pull from the feed queue.
//
// Event Processing Flow:
//  1. Handle.Push enqueues a decoded event (FIFO, thread-safe side).
//  2. The driver peeks the next event through the cursor.
//  3. Phase events (turn, upkeep, switch) open inference windows: the
//     hypothesis builder enumerates candidate traits for the relevant
//     hook and registers one pending parser per inference group with the
//     unordered combinator.
//  4. Events claimed by a group settle hypotheses; unclaimed events fall
//     through to the per-tag dispatcher.
//  5. A terminal event unwinds every open group without rejection hooks
//     and resolves the final Result.
//
// Every event is stamped with a logical sequence number, never wall
// time; the stamped trace is what golden tests compare.
package parser
