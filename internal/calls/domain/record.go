// Package domain provides the call-closing workflow: the outcome record a
// telecaller submits after each call attempt and the wizard that collects it.
package domain

import (
	"strings"
	"time"
)

// Outcome tells whether the call connected.
type Outcome string

const (
	OutcomeUnset        Outcome = ""
	OutcomeConnected    Outcome = "connected"
	OutcomeNotConnected Outcome = "not_connected"
)

// Answer is a tri-state yes/no question.
type Answer int

const (
	AnswerUnset Answer = iota
	AnswerYes
	AnswerNo
)

// AnswerOf converts a bool into a set Answer.
func AnswerOf(v bool) Answer {
	if v {
		return AnswerYes
	}
	return AnswerNo
}

// IsSet reports whether the question was answered.
func (a Answer) IsSet() bool {
	return a == AnswerYes || a == AnswerNo
}

// Ptr returns the answer as *bool, nil when unset.
func (a Answer) Ptr() *bool {
	if !a.IsSet() {
		return nil
	}
	v := a == AnswerYes
	return &v
}

// Record is one immutable outcome of a call attempt. Optional fields are
// nil or empty when they do not apply to the outcome path.
type Record struct {
	Outcome        Outcome
	Interested     *bool
	Converted      *bool
	QuestionsAsked string
	Remark         string
	FollowUpDate   string
	ClosedAt       *time.Time
	Telecaller     string
}

// Path identifies which required-field set applies to a draft.
type Path int

const (
	// PathUndecided means no outcome has been picked yet.
	PathUndecided Path = iota
	// PathNotConnected needs a follow-up date only.
	PathNotConnected
	// PathConnectedUnanswered is connected with interested/converted not both set.
	PathConnectedUnanswered
	// PathConverted needs interested and converted (true).
	PathConverted
	// PathFollowUp is connected and not converted; needs a date and a remark.
	PathFollowUp
)

// Draft accumulates the wizard's field values across steps.
type Draft struct {
	Outcome        Outcome
	Interested     Answer
	Converted      Answer
	QuestionsAsked string
	Remark         string
	FollowUpDate   string
}

// Path derives the outcome path from the draft values.
func (d Draft) Path() Path {
	switch d.Outcome {
	case OutcomeNotConnected:
		return PathNotConnected
	case OutcomeConnected:
		if !d.Interested.IsSet() || !d.Converted.IsSet() {
			return PathConnectedUnanswered
		}
		if d.Converted == AnswerYes {
			return PathConverted
		}
		return PathFollowUp
	default:
		return PathUndecided
	}
}

// Record builds the outcome record for the draft's path, leaving out every
// field the path does not use. The draft is not validated here.
func (d Draft) Record() Record {
	rec := Record{Outcome: d.Outcome}

	switch d.Path() {
	case PathNotConnected:
		rec.FollowUpDate = strings.TrimSpace(d.FollowUpDate)
	case PathConverted:
		rec.Interested = d.Interested.Ptr()
		rec.Converted = d.Converted.Ptr()
		rec.QuestionsAsked = strings.TrimSpace(d.QuestionsAsked)
	case PathFollowUp:
		rec.Interested = d.Interested.Ptr()
		rec.Converted = d.Converted.Ptr()
		rec.QuestionsAsked = strings.TrimSpace(d.QuestionsAsked)
		rec.Remark = strings.TrimSpace(d.Remark)
		rec.FollowUpDate = strings.TrimSpace(d.FollowUpDate)
	}

	return rec
}

// Bullet is the prefix of a preset line.
const Bullet = "• "

// AppendBullet adds phrase as a new bulleted line to text.
func AppendBullet(text, phrase string) string {
	line := Bullet + phrase
	if text == "" {
		return line
	}
	return text + "\n" + line
}
