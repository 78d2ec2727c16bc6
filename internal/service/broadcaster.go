package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}

// Session event types
const (
	EventAnswerSaved         = "answer_saved"
	EventPageChanged         = "page_changed"
	EventValidationFailed    = "validation_failed"
	EventSubmissionStarted   = "submission_started"
	EventSubmissionCompleted = "submission_completed"
	EventSubmissionFailed    = "submission_failed"
	EventSessionClosed       = "session_closed"
)

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToSession(string, string, interface{}) {}
func (nopBroadcaster) DisconnectSession(string)                       {}
