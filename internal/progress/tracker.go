package progress

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/linuxstory/internal/story"
)

// Tracker holds the live State and is its only writer.
type Tracker struct {
	store  Store
	config Config
	logger *zap.Logger
	state  State

	// Overridable in tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// NewTracker creates a tracker backed by store. Call Load before use.
func NewTracker(store Store, cfg Config, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	return &Tracker{
		store:  store,
		config: cfg,
		logger: logger,
		state:  NewState(story.StepID{}),
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// Load restores the persisted state. When nothing has been saved yet it
// starts fresh at start; a first run is not an error.
func (t *Tracker) Load(ctx context.Context, start story.StepID) (State, error) {
	saved, err := t.store.Load(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load progress: %w", err)
	}
	if saved == nil {
		t.logger.Info("no saved progress, starting fresh", zap.Stringer("cursor", start))
		t.state = NewState(start)
		return t.state.Clone(), nil
	}
	saved.normalize()
	t.state = *saved
	t.logger.Info("restored progress",
		zap.Stringer("cursor", t.state.Cursor),
		zap.Int("completed", len(t.state.Completed)))
	return t.state.Clone(), nil
}

// Reset discards the live state and positions the cursor at start.
func (t *Tracker) Reset(start story.StepID) {
	t.state = NewState(start)
}

// Cursor returns the current step.
func (t *Tracker) Cursor() story.StepID {
	return t.state.Cursor
}

// Attempts returns the failed attempt count recorded for id.
func (t *Tracker) Attempts(id story.StepID) int {
	return t.state.Attempts[id]
}

// HintsShown returns how many of id's hints have been revealed.
func (t *Tracker) HintsShown(id story.StepID) int {
	return t.state.HintsShown[id]
}

// Finished reports whether the story has been completed.
func (t *Tracker) Finished() bool {
	return t.state.Finished
}

// RecordAttempt increments id's attempt counter and returns the new count.
func (t *Tracker) RecordAttempt(id story.StepID) int {
	t.state.Attempts[id]++
	return t.state.Attempts[id]
}

// AdvanceTo moves the cursor to id and starts a fresh visit: its attempt
// and hint counters go back to zero.
func (t *Tracker) AdvanceTo(id story.StepID) {
	t.state.Cursor = id
	t.state.Attempts[id] = 0
	t.state.HintsShown[id] = 0
}

// EndVisit forgets id's attempt and hint counters once the learner has
// moved past it.
func (t *Tracker) EndVisit(id story.StepID) {
	delete(t.state.Attempts, id)
	delete(t.state.HintsShown, id)
}

// MarkHintShown records one more revealed hint for id and returns the total.
func (t *Tracker) MarkHintShown(id story.StepID) int {
	t.state.HintsShown[id]++
	return t.state.HintsShown[id]
}

// MarkChallengeComplete adds id to the completed set.
func (t *Tracker) MarkChallengeComplete(id string) {
	t.state.Completed[id] = true
}

// SetFinished marks or clears story completion.
func (t *Tracker) SetFinished(done bool) {
	t.state.Finished = done
}

// Snapshot returns an independent copy of the live state.
func (t *Tracker) Snapshot() State {
	return t.state.Clone()
}

// Save persists the live state, retrying with backoff up to the configured
// number of attempts. The in-memory state is unaffected by failure.
func (t *Tracker) Save(ctx context.Context) error {
	t.state.UpdatedAt = t.now().UTC()
	snap := t.state.Clone()

	var lastErr error
	for attempt := range t.config.Retry.MaxAttempts {
		err := t.store.Save(ctx, snap)
		if err == nil {
			if attempt > 0 {
				t.logger.Info("progress saved after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}
		lastErr = err
		t.logger.Warn("save progress failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", t.config.Retry.MaxAttempts),
			zap.Error(err))

		// Last attempt: return without sleeping.
		if attempt == t.config.Retry.MaxAttempts-1 {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.sleep(t.backoff(attempt))
	}
	return fmt.Errorf("save progress after %d attempts: %w", t.config.Retry.MaxAttempts, lastErr)
}

// Clear removes persisted progress and resets the live state to start.
func (t *Tracker) Clear(ctx context.Context, start story.StepID) error {
	if err := t.store.Clear(ctx); err != nil {
		return err
	}
	t.Reset(start)
	return nil
}

func (t *Tracker) backoff(attempt int) time.Duration {
	r := t.config.Retry
	wait := float64(r.InitialWait) * math.Pow(r.Multiplier, float64(attempt))
	if r.MaxWait > 0 && wait > float64(r.MaxWait) {
		wait = float64(r.MaxWait)
	}
	return time.Duration(wait)
}
