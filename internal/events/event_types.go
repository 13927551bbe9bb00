package events

import (
	"time"

	"github.com/spec-kit/marketplace-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventLogout         EventType = "logout"
)

// Event represents an authentication outcome emitted by the session service.
// SubjectID is empty for failed logins against unknown usernames.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Scope     string      `json:"scope"`
	Role      domain.Role `json:"role,omitempty"`
	SubjectID string      `json:"subject_id,omitempty"`
	Username  string      `json:"username,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
