package play

import "github.com/abhisek/linuxstory/internal/session"

// JumpMsg asks the play screen to move to a step, e.g. from the story map.
type JumpMsg struct {
	Challenge string
	Index     int
}

// startedMsg carries the opening text once the sandbox is prepared.
type startedMsg struct {
	Outcome session.Outcome
	Err     error
}

// commandDoneMsg is sent when a submitted line has been run and observed.
type commandDoneMsg struct {
	Line    string
	Outcome session.Outcome
	Err     error
}

// jumpedMsg is sent when a JumpMsg has been applied.
type jumpedMsg struct {
	Outcome session.Outcome
	Err     error
}
