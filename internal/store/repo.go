package store

import "time"

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	SessionID string    // exact session match
}

// EventData is one progression event as handed to the log.
type EventData struct {
	Kind      string
	Challenge string
	StepIndex int
	HintKey   string
	Detail    string
}

// Event is a stored progression event.
type Event struct {
	Sequence  int64
	SessionID string
	Timestamp time.Time
	EventData
}
