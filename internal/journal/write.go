package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/calderk/glean/internal/event"
)

// CreateSession registers a new session and returns its token.
// Tokens are UUIDv7, so lexical order tracks creation order.
func (j *Journal) CreateSession(ctx context.Context, label string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	token := id.String()

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO sessions (token, label)
		VALUES (?, ?)
	`, token, label)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// Append records one event under (token, seq). The payload is stored in
// canonical JSON alongside its content hash.
//
// Uses ON CONFLICT DO NOTHING for idempotency - re-recording the same
// stamp is silently ignored, so a crashed recorder can resume from the
// start of its trace.
func (j *Journal) Append(ctx context.Context, token string, seq int64, ev event.Event) error {
	payload, err := ev.MarshalCanonical()
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	hash, err := ev.Hash()
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO events (session_token, seq, tag, payload, hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_token, seq) DO NOTHING
	`, token, seq, string(ev.Tag), string(payload), hash)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	return nil
}

// AppendAll records a whole event stream in one transaction, stamping
// seq 1..n in order. Convenience for recording a finished trace.
func (j *Journal) AppendAll(ctx context.Context, token string, events []event.Event) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append all: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for i, ev := range events {
		payload, err := ev.MarshalCanonical()
		if err != nil {
			return fmt.Errorf("append all: event %d: %w", i+1, err)
		}
		hash, err := ev.Hash()
		if err != nil {
			return fmt.Errorf("append all: event %d: %w", i+1, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (session_token, seq, tag, payload, hash)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(session_token, seq) DO NOTHING
		`, token, int64(i+1), string(ev.Tag), string(payload), hash)
		if err != nil {
			return fmt.Errorf("append all: event %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append all: commit: %w", err)
	}
	return nil
}
