package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/calderk/glean/internal/event"
)

// Session is one recorded event log.
type Session struct {
	Token     string
	Label     string
	CreatedAt string
}

// ErrNoSession is returned when a token names no recorded session.
var ErrNoSession = sql.ErrNoRows

// Sessions lists all recorded sessions, oldest first. Tokens are
// UUIDv7, so lexical order is creation order.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT token, label, created_at
		FROM sessions
		ORDER BY token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.Token, &s.Label, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}

// Session retrieves one session by token.
// Returns ErrNoSession if not found.
func (j *Journal) Session(ctx context.Context, token string) (Session, error) {
	var s Session
	err := j.db.QueryRowContext(ctx, `
		SELECT token, label, created_at
		FROM sessions
		WHERE token = ?
	`, token).Scan(&s.Token, &s.Label, &s.CreatedAt)
	if err != nil {
		return Session{}, fmt.Errorf("read session %q: %w", token, err)
	}
	return s, nil
}

// Events returns a session's event stream in seq order. Every row's
// payload is re-hashed and checked against the stored hash; a mismatch
// means the journal was altered and the read fails.
func (j *Journal) Events(ctx context.Context, token string) ([]event.Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, payload, hash
		FROM events
		WHERE session_token = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			seq     int64
			payload string
			stored  string
		)
		if err := rows.Scan(&seq, &payload, &stored); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		var ev event.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("decode event seq %d: %w", seq, err)
		}

		computed, err := ev.Hash()
		if err != nil {
			return nil, fmt.Errorf("hash event seq %d: %w", seq, err)
		}
		if computed != stored {
			return nil, fmt.Errorf("event seq %d: hash mismatch: stored %s, computed %s", seq, stored, computed)
		}

		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	if events == nil {
		events = []event.Event{}
	}
	return events, nil
}
