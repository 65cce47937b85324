package audit

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Actions recorded for property values.
const (
	ActionConnect    = "facebook.connect"
	ActionSelectPage = "facebook.select_page"
	ActionDisconnect = "facebook.disconnect"
)

// Event represents an audit log event.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Property  string    `json:"property"`
	User      string    `json:"user,omitempty"`    // Facebook user ID
	Details   string    `json:"details,omitempty"` // Additional details
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

var (
	mu          sync.Mutex
	auditLogger = newLogger(os.Stdout)
)

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Str("log", "audit").Logger()
}

// SetOutput redirects audit events, e.g. to a dedicated file.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	auditLogger = newLogger(w)
}

// Log records an audit event. Tokens must never be passed in details.
func Log(action, property, user, details string, err error) {
	event := Event{
		Timestamp: time.Now().UTC(),
		Action:    action,
		Property:  property,
		User:      user,
		Details:   details,
		Success:   err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}

	entry, marshalErr := json.Marshal(event)

	mu.Lock()
	logger := auditLogger
	mu.Unlock()

	if marshalErr != nil {
		logger.Error().Err(marshalErr).
			Str("action", action).
			Str("property", property).
			Msg("Audit Log (fallback)")
		return
	}

	logger.Log().RawJSON("audit_event", entry).Msg("")
}
