package parser

import (
	"context"
	"errors"
	"log/slog"

	"github.com/calderk/glean/internal/cursor"
	"github.com/calderk/glean/internal/event"
	"github.com/calderk/glean/internal/rules"
	"github.com/calderk/glean/internal/state"
)

// ErrClosed is returned by Push after the input has been closed.
var ErrClosed = errors.New("parse input closed")

// Result is the parse's final typed outcome.
type Result struct {
	// Winner is the side named by the terminal event; empty for a tie
	// or an unterminated log.
	Winner string `json:"winner,omitempty"`
	// Turns is the last turn number reached.
	Turns int `json:"turns"`
	// Ended reports whether a terminal event was observed. False means
	// the log stopped early; whether that is acceptable is the caller's
	// call.
	Ended bool `json:"ended"`
}

// Decision is an injected external collaborator asked for the next
// action whenever a new decision phase opens.
type Decision func(ctx context.Context, st *state.Store) (string, error)

// Submit is an injected external collaborator delivering a chosen
// action to the transport.
type Submit func(ctx context.Context, choice string) error

type options struct {
	decide Decision
	submit Submit
	log    *slog.Logger
}

// Option configures a parse.
type Option func(*options)

// WithDecision injects the decision callback.
func WithDecision(fn Decision) Option {
	return func(o *options) { o.decide = fn }
}

// WithSubmit injects the submission callback.
func WithSubmit(fn Submit) Option {
	return func(o *options) { o.submit = fn }
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// TraceStep is one stamped event in the parse trace.
type TraceStep struct {
	Seq   int64       `json:"seq"`
	Event event.Event `json:"event"`
}

// Handle is the caller's side of a running parse: push events in, await
// the final result.
type Handle struct {
	q     *feedQueue
	clock *Clock
	done  chan struct{}

	res   Result
	err   error
	trace []TraceStep
}

// tracingFeeder pulls from the feed queue, stamping every event with
// the logical clock as it enters the parse.
type tracingFeeder struct {
	h *Handle
}

func (f *tracingFeeder) Next(ctx context.Context) (event.Event, error) {
	ev, err := f.h.q.Next(ctx)
	if err != nil {
		return event.Event{}, err
	}
	f.h.trace = append(f.h.trace, TraceStep{Seq: f.h.clock.Next(), Event: ev})
	return ev, nil
}

// Start launches a parse over the given projection and trait table.
// The parse runs in its own goroutine until a terminal event, input
// close, context end, or a fatal error.
//
// The store must already hold the participating entities and their
// candidate enumerations; the parser narrows, it never enumerates.
func Start(ctx context.Context, st *state.Store, rs *rules.Set, opts ...Option) *Handle {
	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Handle{
		q:     newFeedQueue(),
		clock: NewClock(),
		done:  make(chan struct{}),
	}

	p := &parser{
		st:   st,
		rs:   rs,
		disp: newDispatcher(o.log),
		cur:  cursor.New(&tracingFeeder{h: h}),
		log:  o.log,
		opts: o,
	}

	go func() {
		defer close(h.done)
		h.err = p.run(ctx)
		h.res = p.res
	}()
	return h
}

// Push feeds the next decoded event to the parse. Safe from any
// goroutine. Returns ErrClosed once the input has been closed.
func (h *Handle) Push(ev event.Event) error {
	if !h.q.enqueue(ev) {
		return ErrClosed
	}
	return nil
}

// Close marks the end of input. The parse drains what was pushed and
// settles. Idempotent.
func (h *Handle) Close() {
	h.q.close()
}

// Await blocks until the parse settles and returns its result. A log
// that ended without a terminal event yields Ended=false and no error;
// a mid-inference cutoff surfaces the exhaustion error; protocol
// violations and inference contradictions surface as fatal errors.
func (h *Handle) Await(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.res, h.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Trace returns the stamped event trace. Valid after Await has
// returned.
func (h *Handle) Trace() []TraceStep {
	select {
	case <-h.done:
		out := make([]TraceStep, len(h.trace))
		copy(out, h.trace)
		return out
	default:
		return nil
	}
}
