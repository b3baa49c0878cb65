// Package service provides the inline lead name edit session.
package service

import (
	"context"
	"sync"

	"telecrm/internal/events"
	"telecrm/internal/leads/domain"
	"telecrm/platform/apperr"
	"telecrm/platform/logger"
)

const (
	// MsgUpdateFailed is shown when a save fails without a server message.
	MsgUpdateFailed = "Failed to update name"
	// MsgOtherEditActive is returned when another row is already being edited.
	MsgOtherEditActive = "Finish editing the other name first."
	// MsgNotEditing is returned when no edit session is open.
	MsgNotEditing = "No name is being edited."
	// MsgSaving is returned when a save is already in flight.
	MsgSaving = "The name is being saved."
)

// NameAPI updates a lead's name on the server.
type NameAPI interface {
	UpdateName(ctx context.Context, leadID, name string) error
}

// EditState is a copy of the edit session.
type EditState struct {
	LeadID  string
	Value   string
	Editing bool
	Saving  bool
	Error   string
}

// NameEditor allows a single name edit at a time across all rows.
type NameEditor struct {
	api NameAPI
	bus events.Publisher
	log *logger.Logger

	mu    sync.Mutex
	state EditState
}

// NewNameEditor creates an idle editor.
func NewNameEditor(api NameAPI, bus events.Publisher, log *logger.Logger) *NameEditor {
	return &NameEditor{api: api, bus: bus, log: log}
}

// Begin opens the edit session for lead, prefilled with its current name.
// Opening it again for the same lead keeps the typed value.
func (e *NameEditor) Begin(lead domain.Lead) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Editing {
		if e.state.LeadID == lead.ID {
			return nil
		}
		return apperr.New(apperr.KindConflict, MsgOtherEditActive)
	}

	value := ""
	if lead.HasName() {
		value = lead.Name
	}
	e.state = EditState{LeadID: lead.ID, Value: value, Editing: true}
	return nil
}

// CanEdit reports whether the edit action is available for leadID.
func (e *NameEditor) CanEdit(leadID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.state.Editing || e.state.LeadID == leadID
}

// SetValue replaces the typed value.
func (e *NameEditor) SetValue(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Editing {
		return apperr.Validation(MsgNotEditing)
	}
	e.state.Value = value
	return nil
}

// Cancel discards the session without a network call.
func (e *NameEditor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Saving {
		return
	}
	e.state = EditState{}
}

// State returns a copy of the session.
func (e *NameEditor) State() EditState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Save sends the normalized name and closes the session. On failure the
// session stays open with the error shown and the typed value kept.
func (e *NameEditor) Save(ctx context.Context) (string, error) {
	e.mu.Lock()
	if !e.state.Editing {
		e.mu.Unlock()
		return "", apperr.Validation(MsgNotEditing)
	}
	if e.state.Saving {
		e.mu.Unlock()
		return "", apperr.Validation(MsgSaving)
	}
	leadID := e.state.LeadID
	name := domain.NormalizeName(e.state.Value)
	e.state.Saving = true
	e.state.Error = ""
	e.mu.Unlock()

	err := e.api.UpdateName(ctx, leadID, name)

	e.mu.Lock()
	e.state.Saving = false
	if err != nil {
		msg := apperr.MessageOr(err, MsgUpdateFailed)
		e.state.Error = msg
		e.mu.Unlock()
		e.log.Warn("lead name update failed", "lead_id", leadID, "error", err)
		return "", apperr.Wrap(apperr.GetKind(err), msg, err)
	}
	e.state = EditState{}
	e.mu.Unlock()

	e.bus.Publish(ctx, events.LeadRenamed{BaseEvent: events.NewBaseEvent(), LeadID: leadID, Name: name})
	return name, nil
}
