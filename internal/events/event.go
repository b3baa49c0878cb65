// Package events defines the console's domain events. The bus itself lives
// in platform/events.
package events

import (
	"telecrm/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Publisher   = events.Publisher
	Subscriber  = events.Subscriber
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Calls Domain Events
// =============================================================================

// CallClosedEvent is the name of CallClosed.
const CallClosedEvent = "calls.call.closed"

// CallClosed is published after the server accepted an outcome record.
type CallClosed struct {
	BaseEvent
	LeadID  string `json:"leadId"`
	Outcome string `json:"outcome"`
}

func (e CallClosed) EventName() string { return CallClosedEvent }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadRenamedEvent is the name of LeadRenamed.
const LeadRenamedEvent = "leads.lead.renamed"

// LeadRenamed is published after a lead name edit was saved.
type LeadRenamed struct {
	BaseEvent
	LeadID string `json:"leadId"`
	Name   string `json:"name"`
}

func (e LeadRenamed) EventName() string { return LeadRenamedEvent }

// =============================================================================
// Auth Domain Events
// =============================================================================

// SessionExpiredEvent is the name of SessionExpired.
const SessionExpiredEvent = "auth.session.expired"

// SessionExpired is published when the API answers 401 outside the session check.
type SessionExpired struct {
	BaseEvent
	Path string `json:"path"`
}

func (e SessionExpired) EventName() string { return SessionExpiredEvent }

// =============================================================================
// Attendance Domain Events
// =============================================================================

// AttendancePunchedEvent is the name of AttendancePunched.
const AttendancePunchedEvent = "attendance.punched"

// AttendancePunched is published after a punch in or punch out was recorded.
type AttendancePunched struct {
	BaseEvent
	Action string `json:"action"`
	Date   string `json:"date"`
}

func (e AttendancePunched) EventName() string { return AttendancePunchedEvent }
