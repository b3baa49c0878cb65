package domain

import (
	"strings"

	"telecrm/platform/apperr"
)

// Step is a state of the call outcome wizard.
type Step int

const (
	// StepOutcome asks whether the call connected (initial state).
	StepOutcome Step = iota + 1
	// StepConnected asks interested / converted and the questions asked.
	StepConnected
	// StepFollowUpReason asks the follow-up date and remark of a connected,
	// not converted call.
	StepFollowUpReason
	// StepSubmitted is terminal: the server accepted the record.
	StepSubmitted
	// StepCancelled is terminal: the form was discarded.
	StepCancelled
)

func (s Step) String() string {
	switch s {
	case StepOutcome:
		return "outcome"
	case StepConnected:
		return "connected"
	case StepFollowUpReason:
		return "follow_up_reason"
	case StepSubmitted:
		return "submitted"
	case StepCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further input is accepted.
func (s Step) IsTerminal() bool {
	return s == StepSubmitted || s == StepCancelled
}

// User-facing validation messages.
const (
	MsgSelectOutcome     = "Please select whether the call was connected."
	MsgFollowUpDate      = "Please set a follow-up date."
	MsgAnswerBoth        = "Please answer Interested and Converted."
	MsgFollowUpReason    = "Please add a reason or message for follow-up."
	MsgContinueConnected = "Press Next to record the call details."
	MsgContinueFollowUp  = "Press Next to add the follow-up details."
	MsgNoNextStep        = "This is the last step. Submit to close the call."
	MsgNoPreviousStep    = "This is the first step."
	MsgFieldNotOnStep    = "This field is not part of the current step."
	MsgWizardClosed      = "This call form is closed."
)

// Wizard is the call outcome state machine. The step is an explicit state
// and the draft is the payload accumulated across steps; navigating between
// steps never clears the draft.
type Wizard struct {
	step  Step
	draft Draft
}

// NewWizard starts a wizard on StepOutcome with an empty draft.
func NewWizard() *Wizard {
	return &Wizard{step: StepOutcome}
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Draft returns a copy of the entered values.
func (w *Wizard) Draft() Draft { return w.draft }

// SetOutcome records whether the call connected. StepOutcome only.
func (w *Wizard) SetOutcome(o Outcome) error {
	if err := w.requireStep(StepOutcome); err != nil {
		return err
	}
	w.draft.Outcome = o
	return nil
}

// SetFollowUpDate records the follow-up date. Asked on StepOutcome for
// not connected calls and on StepFollowUpReason.
func (w *Wizard) SetFollowUpDate(date string) error {
	if err := w.requireStep(StepOutcome, StepFollowUpReason); err != nil {
		return err
	}
	w.draft.FollowUpDate = date
	return nil
}

// SetInterested answers "Customer interested?". StepConnected only.
func (w *Wizard) SetInterested(a Answer) error {
	if err := w.requireStep(StepConnected); err != nil {
		return err
	}
	w.draft.Interested = a
	return nil
}

// SetConverted answers "Converted?". StepConnected only.
func (w *Wizard) SetConverted(a Answer) error {
	if err := w.requireStep(StepConnected); err != nil {
		return err
	}
	w.draft.Converted = a
	return nil
}

// SetQuestionsAsked replaces the questions text. StepConnected only.
func (w *Wizard) SetQuestionsAsked(text string) error {
	if err := w.requireStep(StepConnected); err != nil {
		return err
	}
	w.draft.QuestionsAsked = text
	return nil
}

// AppendQuestion adds a preset phrase as a bullet line. StepConnected only.
func (w *Wizard) AppendQuestion(phrase string) error {
	if err := w.requireStep(StepConnected); err != nil {
		return err
	}
	w.draft.QuestionsAsked = AppendBullet(w.draft.QuestionsAsked, phrase)
	return nil
}

// SetRemark replaces the remark text. StepFollowUpReason only.
func (w *Wizard) SetRemark(text string) error {
	if err := w.requireStep(StepFollowUpReason); err != nil {
		return err
	}
	w.draft.Remark = text
	return nil
}

// AppendRemark adds a preset phrase as a bullet line. StepFollowUpReason only.
func (w *Wizard) AppendRemark(phrase string) error {
	if err := w.requireStep(StepFollowUpReason); err != nil {
		return err
	}
	w.draft.Remark = AppendBullet(w.draft.Remark, phrase)
	return nil
}

// Next advances to the following step of the current path.
func (w *Wizard) Next() error {
	switch w.step {
	case StepOutcome:
		switch w.draft.Outcome {
		case OutcomeConnected:
			w.step = StepConnected
			return nil
		case OutcomeNotConnected:
			return apperr.Validation(MsgNoNextStep)
		default:
			return apperr.Validation(MsgSelectOutcome)
		}
	case StepConnected:
		switch w.draft.Path() {
		case PathFollowUp:
			w.step = StepFollowUpReason
			return nil
		case PathConverted:
			return apperr.Validation(MsgNoNextStep)
		default:
			return apperr.Validation(MsgAnswerBoth)
		}
	case StepFollowUpReason:
		return apperr.Validation(MsgNoNextStep)
	default:
		return apperr.Validation(MsgWizardClosed)
	}
}

// Back returns to the previous step keeping every entered value.
func (w *Wizard) Back() error {
	switch w.step {
	case StepConnected:
		w.step = StepOutcome
		return nil
	case StepFollowUpReason:
		w.step = StepConnected
		return nil
	case StepOutcome:
		return apperr.Validation(MsgNoPreviousStep)
	default:
		return apperr.Validation(MsgWizardClosed)
	}
}

// Validate returns the first unmet requirement for submitting from the
// current step, or nil when submit is allowed.
func (w *Wizard) Validate() error {
	if msg := w.blocker(); msg != "" {
		return apperr.Validation(msg)
	}
	return nil
}

// CanSubmit reports whether the required fields of the current path are
// complete and the wizard is on the path's last step.
func (w *Wizard) CanSubmit() bool {
	return w.blocker() == ""
}

// Submission validates and returns the record to send.
func (w *Wizard) Submission() (Record, error) {
	if err := w.Validate(); err != nil {
		return Record{}, err
	}
	return w.draft.Record(), nil
}

// MarkSubmitted moves the wizard to StepSubmitted once the server accepted
// the record.
func (w *Wizard) MarkSubmitted() error {
	if err := w.Validate(); err != nil {
		return err
	}
	w.step = StepSubmitted
	return nil
}

// Cancel discards the draft and ends the wizard. Terminal wizards are left as is.
func (w *Wizard) Cancel() {
	if w.step.IsTerminal() {
		return
	}
	w.step = StepCancelled
	w.draft = Draft{}
}

// Reset starts over on StepOutcome with an empty draft.
func (w *Wizard) Reset() {
	w.step = StepOutcome
	w.draft = Draft{}
}

func (w *Wizard) blocker() string {
	d := w.draft
	switch w.step {
	case StepOutcome:
		switch d.Outcome {
		case OutcomeNotConnected:
			if blank(d.FollowUpDate) {
				return MsgFollowUpDate
			}
			return ""
		case OutcomeConnected:
			return MsgContinueConnected
		default:
			return MsgSelectOutcome
		}
	case StepConnected:
		switch d.Path() {
		case PathConverted:
			return ""
		case PathFollowUp:
			if msg := followUpBlocker(d); msg != "" {
				return msg
			}
			return MsgContinueFollowUp
		default:
			return MsgAnswerBoth
		}
	case StepFollowUpReason:
		if d.Path() != PathFollowUp {
			return MsgAnswerBoth
		}
		return followUpBlocker(d)
	default:
		return MsgWizardClosed
	}
}

// followUpBlocker checks the connected, not converted requirements.
func followUpBlocker(d Draft) string {
	if blank(d.Remark) {
		return MsgFollowUpReason
	}
	if blank(d.FollowUpDate) {
		return MsgFollowUpDate
	}
	return ""
}

func (w *Wizard) requireStep(steps ...Step) error {
	if w.step.IsTerminal() {
		return apperr.Validation(MsgWizardClosed)
	}
	for _, s := range steps {
		if w.step == s {
			return nil
		}
	}
	return apperr.Validation(MsgFieldNotOnStep)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
