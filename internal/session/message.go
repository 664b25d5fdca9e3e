package session

// MessageKind tells the screen how to style a line of story text.
type MessageKind int

const (
	MessageTitle MessageKind = iota
	MessagePrompt
	MessageHint
	MessageRetry
	MessageNotice
	MessageWarning
	MessageDone
)

// Message is story text resolved through the catalog. Text may carry
// locale markup.
type Message struct {
	Kind MessageKind
	Text string
}

// Catalog keys for engine-level messages. Stories may override them.
const (
	KeyRetry   = "story.retry"
	KeyDone    = "story.done"
	KeyBlocked = "story.blocked"
	KeyWarning = "story.warning"
)

// Fallback text for the keys above when the story leaves them out.
var defaultStrings = map[string]string{
	KeyRetry:   "Not quite. Have another go.",
	KeyDone:    "You finished the story!",
	KeyBlocked: "You can't do that right now.",
	KeyWarning: "Your progress could not be saved. You can keep playing.",
}
