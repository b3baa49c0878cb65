package console

import (
	"telecrm/internal/calls/domain"
	"telecrm/internal/calls/presets"
	callsservice "telecrm/internal/calls/service"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type field int

const (
	fieldOutcome field = iota
	fieldInterested
	fieldConverted
	fieldQuestions
	fieldQuestionPresets
	fieldRemark
	fieldRemarkPresets
	fieldDate
)

func (f field) label() string {
	switch f {
	case fieldOutcome:
		return "Call connected?"
	case fieldInterested:
		return "Customer interested?"
	case fieldConverted:
		return "Converted?"
	case fieldQuestions:
		return "Questions asked"
	case fieldQuestionPresets, fieldRemarkPresets:
		return "Quick add"
	case fieldRemark:
		return "Reason / message for follow-up"
	case fieldDate:
		return "Follow-up date (YYYY-MM-DD)"
	default:
		return ""
	}
}

// wizardForm renders one call session and maps keys onto wizard operations.
type wizardForm struct {
	session *callsservice.Session
	presets presets.Presets

	focus        field
	presetCursor int
	questions    textarea.Model
	remark       textarea.Model
	date         textinput.Model
	submitting   bool
}

func newWizardForm(session *callsservice.Session, p presets.Presets) *wizardForm {
	questions := textarea.New()
	questions.Cursor.SetMode(cursorMode)
	questions.Placeholder = "What did the customer ask about?"
	questions.ShowLineNumbers = false
	questions.SetHeight(4)

	remark := textarea.New()
	remark.Cursor.SetMode(cursorMode)
	remark.Placeholder = "Why does this lead need a follow-up?"
	remark.ShowLineNumbers = false
	remark.SetHeight(4)

	date := newTextInput()
	date.Placeholder = "2006-01-02"
	date.CharLimit = 10

	f := &wizardForm{
		session:   session,
		presets:   p,
		focus:     fieldOutcome,
		questions: questions,
		remark:    remark,
		date:      date,
	}
	f.applyFocus()
	return f
}

// fields lists the inputs of the current step in tab order.
func (f *wizardForm) fields() []field {
	snap := f.session.Snapshot()
	switch snap.Step {
	case domain.StepOutcome:
		if snap.Draft.Outcome == domain.OutcomeNotConnected {
			return []field{fieldOutcome, fieldDate}
		}
		return []field{fieldOutcome}
	case domain.StepConnected:
		return []field{fieldInterested, fieldConverted, fieldQuestions, fieldQuestionPresets}
	case domain.StepFollowUpReason:
		return []field{fieldRemark, fieldRemarkPresets, fieldDate}
	default:
		return nil
	}
}

func (f *wizardForm) moveFocus(delta int) {
	fields := f.fields()
	if len(fields) == 0 {
		return
	}
	idx := 0
	for i, fl := range fields {
		if fl == f.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(fields)) % len(fields)
	f.focus = fields[idx]
	f.presetCursor = 0
	f.applyFocus()
}

// ensureFocus keeps the focus on a field of the current step.
func (f *wizardForm) ensureFocus() {
	fields := f.fields()
	for _, fl := range fields {
		if fl == f.focus {
			f.applyFocus()
			return
		}
	}
	if len(fields) > 0 {
		f.focus = fields[0]
		f.presetCursor = 0
	}
	f.applyFocus()
}

func (f *wizardForm) applyFocus() {
	f.questions.Blur()
	f.remark.Blur()
	f.date.Blur()
	switch f.focus {
	case fieldQuestions:
		f.questions.Focus()
	case fieldRemark:
		f.remark.Focus()
	case fieldDate:
		f.date.Focus()
	}
}

// syncInputs copies draft values into the text components after a change
// made outside of them, such as a preset being appended.
func (f *wizardForm) syncInputs() {
	d := f.session.Snapshot().Draft
	if f.questions.Value() != d.QuestionsAsked {
		f.questions.SetValue(d.QuestionsAsked)
	}
	if f.remark.Value() != d.Remark {
		f.remark.SetValue(d.Remark)
	}
	if f.date.Value() != d.FollowUpDate {
		f.date.SetValue(d.FollowUpDate)
	}
}

func (f *wizardForm) presetList() []string {
	switch f.focus {
	case fieldQuestionPresets:
		return f.presets.Questions
	case fieldRemarkPresets:
		return f.presets.Remarks
	default:
		return nil
	}
}

// handleKey applies a key to the focused field. Keys handled at form level
// (submit, cancel, step navigation) are dealt with by the model.
func (f *wizardForm) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	switch f.focus {
	case fieldOutcome:
		switch key {
		case "c", "y", "left":
			f.edit(func(w *domain.Wizard) error { return w.SetOutcome(domain.OutcomeConnected) })
		case "n", "right":
			f.edit(func(w *domain.Wizard) error { return w.SetOutcome(domain.OutcomeNotConnected) })
		}
		return nil

	case fieldInterested, fieldConverted:
		var answer domain.Answer
		switch key {
		case "y", "left":
			answer = domain.AnswerYes
		case "n", "right":
			answer = domain.AnswerNo
		default:
			return nil
		}
		if f.focus == fieldInterested {
			f.edit(func(w *domain.Wizard) error { return w.SetInterested(answer) })
		} else {
			f.edit(func(w *domain.Wizard) error { return w.SetConverted(answer) })
		}
		return nil

	case fieldQuestionPresets, fieldRemarkPresets:
		list := f.presetList()
		switch key {
		case "up", "k":
			if f.presetCursor > 0 {
				f.presetCursor--
			}
		case "down", "j":
			if f.presetCursor < len(list)-1 {
				f.presetCursor++
			}
		case "enter", " ":
			if f.presetCursor < len(list) {
				phrase := list[f.presetCursor]
				if f.focus == fieldQuestionPresets {
					f.edit(func(w *domain.Wizard) error { return w.AppendQuestion(phrase) })
				} else {
					f.edit(func(w *domain.Wizard) error { return w.AppendRemark(phrase) })
				}
				f.syncInputs()
			}
		}
		return nil

	case fieldQuestions:
		var cmd tea.Cmd
		f.questions, cmd = f.questions.Update(msg)
		value := f.questions.Value()
		f.edit(func(w *domain.Wizard) error { return w.SetQuestionsAsked(value) })
		return cmd

	case fieldRemark:
		var cmd tea.Cmd
		f.remark, cmd = f.remark.Update(msg)
		value := f.remark.Value()
		f.edit(func(w *domain.Wizard) error { return w.SetRemark(value) })
		return cmd

	case fieldDate:
		var cmd tea.Cmd
		f.date, cmd = f.date.Update(msg)
		value := f.date.Value()
		f.edit(func(w *domain.Wizard) error { return w.SetFollowUpDate(value) })
		return cmd
	}
	return nil
}

func (f *wizardForm) edit(fn func(w *domain.Wizard) error) {
	_ = f.session.Edit(fn)
	f.ensureFocus()
}

func (f *wizardForm) next() {
	f.edit(func(w *domain.Wizard) error { return w.Next() })
}

func (f *wizardForm) back() {
	f.edit(func(w *domain.Wizard) error { return w.Back() })
}
