// Package service runs call-closing sessions: one wizard for one lead, the
// lead's previous call for reference, and the submission to the server.
package service

import (
	"context"
	"sync"

	"telecrm/internal/calls/domain"
	"telecrm/internal/events"
	leadsdomain "telecrm/internal/leads/domain"
	"telecrm/platform/apperr"
	"telecrm/platform/logger"
)

const (
	// MsgCloseFailed is shown when a submit fails without a server message.
	MsgCloseFailed = "Failed to close call"
	// MsgSubmitting is returned when a submit is already in flight.
	MsgSubmitting = "The call is being closed."
)

// CallAPI is the calls side of the telecaller API.
type CallAPI interface {
	CloseCall(ctx context.Context, leadID string, rec domain.Record) error
	PreviousCall(ctx context.Context, leadID string) (*domain.Record, error)
}

// Service hands out call-closing sessions. At most one session is active.
type Service struct {
	api CallAPI
	bus events.Publisher
	log *logger.Logger

	mu     sync.Mutex
	active *Session
}

// New creates the calls service.
func New(api CallAPI, bus events.Publisher, log *logger.Logger) *Service {
	return &Service{api: api, bus: bus, log: log}
}

// Begin starts a session for lead without any network call. A session that
// was still open for another lead is cancelled.
func (s *Service) Begin(lead leadsdomain.Lead) *Session {
	sess := &Session{svc: s, lead: lead, wizard: domain.NewWizard()}

	s.mu.Lock()
	prev := s.active
	s.active = sess
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	return sess
}

// Open starts a session and loads the lead's previous call. Failing to load
// the previous call does not prevent closing this one.
func (s *Service) Open(ctx context.Context, lead leadsdomain.Lead) *Session {
	sess := s.Begin(lead)
	sess.LoadPrevious(ctx)
	return sess
}

// Active returns the open session, or nil.
func (s *Service) Active() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Service) release(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == sess {
		s.active = nil
	}
}

// Session is one wizard run for one lead. It is safe for concurrent use.
type Session struct {
	svc  *Service
	lead leadsdomain.Lead

	mu         sync.Mutex
	wizard     *domain.Wizard
	previous   *domain.Record
	errMsg     string
	submitting bool
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	Lead       leadsdomain.Lead
	Step       domain.Step
	Draft      domain.Draft
	CanSubmit  bool
	Blocker    string
	Previous   *domain.Record
	Error      string
	Submitting bool
}

// Lead returns the lead being closed.
func (s *Session) Lead() leadsdomain.Lead { return s.lead }

// LoadPrevious fetches the lead's most recent outcome record for display.
func (s *Session) LoadPrevious(ctx context.Context) *domain.Record {
	rec, err := s.svc.api.PreviousCall(ctx, s.lead.ID)
	if err != nil {
		s.svc.log.Warn("previous call fetch failed", "lead_id", s.lead.ID, "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.previous = rec
	return rec
}

// Edit runs fn against the wizard under the session lock. The returned
// error, if any, becomes the session's visible message.
func (s *Session) Edit(fn func(w *domain.Wizard) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return apperr.Validation(MsgSubmitting)
	}
	err := fn(s.wizard)
	s.errMsg = ""
	if err != nil {
		s.errMsg = apperr.MessageOr(err, err.Error())
	}
	return err
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Lead:       s.lead,
		Step:       s.wizard.Step(),
		Draft:      s.wizard.Draft(),
		CanSubmit:  s.wizard.CanSubmit(),
		Previous:   s.previous,
		Error:      s.errMsg,
		Submitting: s.submitting,
	}
	if err := s.wizard.Validate(); err != nil {
		snap.Blocker = apperr.MessageOr(err, "")
	}
	return snap
}

// Submit validates the draft and sends it. Nothing is sent when a required
// field is missing. On a server or network failure the session stays on
// its step with every value kept so the user can retry.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return apperr.Validation(MsgSubmitting)
	}
	rec, err := s.wizard.Submission()
	if err != nil {
		s.errMsg = apperr.MessageOr(err, MsgCloseFailed)
		s.mu.Unlock()
		return err
	}
	s.submitting = true
	s.errMsg = ""
	s.mu.Unlock()

	sendErr := s.svc.api.CloseCall(ctx, s.lead.ID, rec)

	s.mu.Lock()
	s.submitting = false
	if sendErr != nil {
		msg := apperr.MessageOr(sendErr, MsgCloseFailed)
		s.errMsg = msg
		s.mu.Unlock()
		s.svc.log.Warn("close call failed", "lead_id", s.lead.ID, "error", sendErr)
		return apperr.Wrap(apperr.GetKind(sendErr), msg, sendErr)
	}
	if err := s.wizard.MarkSubmitted(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.svc.release(s)
	s.svc.log.Info("call closed", "lead_id", s.lead.ID, "outcome", string(rec.Outcome))
	s.svc.bus.Publish(ctx, events.CallClosed{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    s.lead.ID,
		Outcome:   string(rec.Outcome),
	})
	return nil
}

// Cancel discards the draft and closes the session without a network call.
// A submit in flight is not interrupted.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return
	}
	s.wizard.Cancel()
	s.errMsg = ""
	s.mu.Unlock()

	s.svc.release(s)
}
