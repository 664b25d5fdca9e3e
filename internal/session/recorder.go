package session

import (
	"context"

	"github.com/abhisek/linuxstory/internal/engine"
	"github.com/abhisek/linuxstory/internal/store"
)

// EventLog records engine events in the store's progression log.
type EventLog struct {
	repo *store.EventRepo
}

var _ engine.Recorder = (*EventLog)(nil)

// NewEventLog returns a recorder writing through repo.
func NewEventLog(repo *store.EventRepo) *EventLog {
	return &EventLog{repo: repo}
}

func (l *EventLog) Record(ctx context.Context, ev engine.Event) error {
	data := store.EventData{
		Kind:      ev.Kind.String(),
		Challenge: ev.Step.Challenge,
		StepIndex: ev.Step.Index,
		HintKey:   ev.HintKey,
	}
	if ev.Err != nil {
		data.Detail = ev.Err.Error()
	}
	return l.repo.Append(ctx, data)
}
