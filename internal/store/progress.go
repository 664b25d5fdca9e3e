package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/linuxstory/internal/progress"
)

// ProgressRepo implements progress.Store on top of snapshot rows. Each Save
// appends a row inside a transaction and prunes rows beyond the retention
// limit, so a failed save leaves the previous snapshot as the latest.
type ProgressRepo struct {
	db   *sql.DB
	sq   *entsql.DialectBuilder
	keep int
}

var _ progress.Store = (*ProgressRepo)(nil)

func (r *ProgressRepo) Load(ctx context.Context) (*progress.State, error) {
	query, args := r.sq.Select("data").
		From(r.sq.Table(tableSnapshots)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()

	var data string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	var st progress.State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	st = st.Clone()
	return &st, nil
}

func (r *ProgressRepo) Save(ctx context.Context, st progress.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query, args := r.sq.Insert(tableSnapshots).
		Columns("saved_at", "data").
		Values(time.Now().UnixNano(), string(data)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	if err := r.prune(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// prune deletes all but the keep most recent snapshots.
func (r *ProgressRepo) prune(ctx context.Context, tx *sql.Tx) error {
	// Find the ID threshold: the first snapshot past the retention window.
	query, args := r.sq.Select("id").
		From(r.sq.Table(tableSnapshots)).
		OrderBy(entsql.Desc("id")).
		Offset(r.keep).
		Limit(1).
		Query()

	var threshold int64
	err := tx.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep snapshots exist
	}
	if err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}

	query, args = r.sq.Delete(tableSnapshots).
		Where(entsql.LTE("id", threshold)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func (r *ProgressRepo) Clear(ctx context.Context) error {
	query, args := r.sq.Delete(tableSnapshots).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}

// Count returns the number of retained snapshots.
func (r *ProgressRepo) Count(ctx context.Context) (int, error) {
	query, args := r.sq.Select(entsql.Count("*")).
		From(r.sq.Table(tableSnapshots)).
		Query()
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}
