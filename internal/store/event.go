package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// EventRepo appends progression events for one session and reads back the
// log across sessions.
type EventRepo struct {
	db      *sql.DB
	sq      *entsql.DialectBuilder
	seq     *sequenceCounter
	session string
}

// SessionID returns the session the repo tags new events with.
func (r *EventRepo) SessionID() string {
	return r.session
}

// Append records ev under the next global sequence number.
func (r *EventRepo) Append(ctx context.Context, ev EventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := r.sq.Insert(tableEvents).
		Columns("sequence", "session_id", "timestamp", "kind", "challenge", "step_index", "hint_key", "detail").
		Values(seqNum, r.session, time.Now().UnixNano(), ev.Kind, ev.Challenge, ev.StepIndex, ev.HintKey, ev.Detail).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save %s event: %w", ev.Kind, err)
	}
	return nil
}

// Query returns events matching opts in ascending sequence order. With a
// limit and no lower bound it returns the most recent events.
func (r *EventRepo) Query(ctx context.Context, opts QueryOpts) ([]Event, error) {
	sel := r.sq.Select("sequence", "session_id", "timestamp", "kind", "challenge", "step_index", "hint_key", "detail").
		From(r.sq.Table(tableEvents))
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UnixNano()))
	}
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}

	newestFirst := opts.Limit > 0 && opts.After == 0
	if newestFirst {
		sel.OrderBy(entsql.Desc("sequence"))
	} else {
		sel.OrderBy(entsql.Asc("sequence"))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev Event
			ts int64
		)
		if err := rows.Scan(&ev.Sequence, &ev.SessionID, &ts, &ev.Kind, &ev.Challenge, &ev.StepIndex, &ev.HintKey, &ev.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Timestamp = time.Unix(0, ts).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	if newestFirst {
		for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
	}
	return events, nil
}

// sequenceCounter manages the global monotonic sequence number shared by
// every session writing to the log. Row ids alone don't survive pruning or
// imports, so the counter lives in its own single-row table.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
