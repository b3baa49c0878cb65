// Package console is the interactive terminal front end of the telecaller
// CRM: login, the bucket tabs with counts, the current call with its up-next
// list, the call-closing wizard, inline name edit, attendance punches and
// the calling script.
package console

import (
	"context"
	"strings"

	"telecrm/internal/attendance"
	"telecrm/internal/auth"
	authservice "telecrm/internal/auth/service"
	"telecrm/internal/calls/presets"
	callsservice "telecrm/internal/calls/service"
	"telecrm/internal/events"
	leadsdomain "telecrm/internal/leads/domain"
	leadsservice "telecrm/internal/leads/service"
	"telecrm/internal/queue"
	"telecrm/internal/scripts"
	"telecrm/platform/apperr"
	"telecrm/platform/logger"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// cursorMode is the cursor style of every input. A package-level variable
// so tests can switch off blinking.
var cursorMode = cursor.CursorBlink

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenQueue
	screenWizard
	screenScript
)

// Deps are the services the console drives.
type Deps struct {
	Auth       *authservice.Service
	Queue      *queue.Provider
	Calls      *callsservice.Service
	Names      *leadsservice.NameEditor
	Attendance *attendance.Service
	Scripts    *scripts.Client
	Presets    presets.Presets
	Region     string
	Log        *logger.Logger
}

// Model is the bubbletea model of the console.
type Model struct {
	deps Deps
	ctx  context.Context

	screen   screen
	width    int
	height   int
	quitting bool

	user     *auth.User
	email    textinput.Model
	password textinput.Model
	loginAt  int
	busy     bool

	queue     queue.State
	cursor    int
	nameInput textinput.Model

	form *wizardForm

	day        attendance.Day
	script     scripts.Script
	scriptView viewport.Model

	spinner   spinner.Model
	status    string
	statusErr bool
}

// New creates the console model. ctx bounds every request it issues.
func New(ctx context.Context, deps Deps) Model {
	email := newTextInput()
	email.Placeholder = "you@company.com"
	email.Prompt = "Email:    "
	email.Focus()

	password := newTextInput()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	name := newTextInput()
	name.Placeholder = "Customer name"
	name.CharLimit = 80

	if deps.Presets.Questions == nil && deps.Presets.Remarks == nil {
		deps.Presets = presets.Default()
	}

	return Model{
		deps:       deps,
		ctx:        ctx,
		screen:     screenLoading,
		email:      email,
		password:   password,
		nameInput:  name,
		queue:      deps.Queue.State(),
		scriptView: viewport.New(80, 20),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func newTextInput() textinput.Model {
	in := textinput.New()
	in.Cursor.SetMode(cursorMode)
	return in
}

// Init checks for a stored session.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.checkSession())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scriptView.Width = msg.Width
		m.scriptView.Height = max(msg.Height-6, 5)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenQueue:
			return m.updateQueue(msg)
		case screenWizard:
			return m.updateWizard(msg)
		case screenScript:
			return m.updateScript(msg)
		}
		return m, nil

	case sessionCheckedMsg:
		if msg.err != nil {
			m.screen = screenLogin
			if apperr.GetKind(msg.err) != apperr.KindUnauthorized {
				m.setError(apperr.MessageOr(msg.err, "Could not reach the server"))
			} else if apperr.MessageOr(msg.err, "") == authservice.MsgSessionExpired {
				m.setError(authservice.MsgSessionExpired)
			}
			return m, nil
		}
		return m.signedIn(msg.user)

	case loggedInMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(apperr.MessageOr(msg.err, authservice.MsgLoginFailed))
			return m, nil
		}
		m.password.SetValue("")
		return m.signedIn(msg.user)

	case loggedOutMsg:
		m.user = nil
		m.screen = screenLogin
		m.setStatus("Logged out")
		cmd := m.email.Focus()
		return m, cmd

	case sessionExpiredMsg:
		if m.form != nil {
			m.form.session.Cancel()
			m.form = nil
		}
		m.deps.Names.Cancel()
		m.user = nil
		m.busy = false
		m.screen = screenLogin
		m.setError(authservice.MsgSessionExpired)
		cmd := m.email.Focus()
		return m, cmd

	case listFetchedMsg:
		if m.deps.Queue.Apply(msg.result) {
			m.setQueue(m.deps.Queue.State())
		}
		return m, nil

	case queueChangedMsg:
		// Snapshots are sent from separate goroutines and may arrive out of order.
		if msg.state.Version <= m.queue.Version {
			return m, nil
		}
		m.setQueue(msg.state)
		return m, nil

	case countsFetchedMsg:
		if state := m.deps.Queue.State(); state.Version > m.queue.Version {
			m.setQueue(state)
		}
		return m, nil

	case previousLoadedMsg:
		return m, nil

	case submittedMsg:
		if m.form == nil || m.form.session.Lead().ID != msg.leadID {
			return m, nil
		}
		m.form.submitting = false
		if msg.err != nil {
			m.setError(apperr.MessageOr(msg.err, callsservice.MsgCloseFailed))
			return m, nil
		}
		m.form = nil
		m.screen = screenQueue
		m.setStatus("Call closed")
		return m, nil

	case renamedMsg:
		if msg.err != nil {
			m.setError(apperr.MessageOr(msg.err, leadsservice.MsgUpdateFailed))
			return m, nil
		}
		m.nameInput.Blur()
		m.setStatus("Name saved as " + msg.name)
		return m, nil

	case attendanceMsg:
		m.day = msg.day
		return m, nil

	case punchedMsg:
		if msg.err != nil {
			m.setError(apperr.MessageOr(msg.err, "Failed to record attendance"))
			return m, nil
		}
		m.day = msg.day
		m.setStatus("Attendance: " + msg.day.Status().String())
		return m, nil

	case scriptMsg:
		if msg.err == nil {
			m.script = msg.script
			m.scriptView.SetContent(msg.script.Body)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) signedIn(user auth.User) (tea.Model, tea.Cmd) {
	m.user = &user
	m.screen = screenQueue
	m.email.Blur()
	m.password.Blur()
	m.setStatus("Signed in as " + user.DisplayName())

	t := m.deps.Queue.Begin(m.deps.Queue.Bucket())
	m.queue = m.deps.Queue.State()
	return m, tea.Batch(m.fetchList(t), m.fetchCounts(), m.fetchAttendance(), m.fetchScript())
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginAt = 1 - m.loginAt
		if m.loginAt == 0 {
			m.password.Blur()
			cmd := m.email.Focus()
			return m, cmd
		}
		m.email.Blur()
		cmd := m.password.Focus()
		return m, cmd
	case "enter":
		if m.busy {
			return m, nil
		}
		if m.loginAt == 0 {
			m.loginAt = 1
			m.email.Blur()
			cmd := m.password.Focus()
			return m, cmd
		}
		m.busy = true
		m.setStatus("Signing in…")
		return m, m.login(strings.TrimSpace(m.email.Value()), m.password.Value())
	case "esc":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.loginAt == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) updateQueue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if edit := m.deps.Names.State(); edit.Editing {
		return m.updateNameEdit(msg)
	}

	view := m.view()
	rows := selectable(view)

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "tab", "right", "l":
		return m.switchBucket(m.bucketOffset(1))
	case "shift+tab", "left", "h":
		return m.switchBucket(m.bucketOffset(-1))
	case "1", "2", "3":
		idx := int(msg.String()[0] - '1')
		return m.switchBucket(leadsdomain.Buckets[idx])
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "r":
		t := m.deps.Queue.Begin(m.deps.Queue.Bucket())
		m.queue = m.deps.Queue.State()
		return m, tea.Batch(m.fetchList(t), m.fetchCounts())
	case "enter", "c":
		row, ok := rowAt(rows, m.cursor)
		if !ok || !row.Actions.Close {
			m.setError("Only the current call can be closed from this list.")
			return m, nil
		}
		session := m.deps.Calls.Begin(row.Lead)
		m.form = newWizardForm(session, m.deps.Presets)
		m.screen = screenWizard
		m.status = ""
		return m, m.loadPrevious(m.form)
	case "d":
		row, ok := rowAt(rows, m.cursor)
		if !ok || !row.Actions.Call {
			return m, nil
		}
		m.setStatus("Dial " + row.DialURI)
	case "e":
		row, ok := rowAt(rows, m.cursor)
		if !ok || !row.Actions.EditName || !m.deps.Names.CanEdit(row.Lead.ID) {
			return m, nil
		}
		if err := m.deps.Names.Begin(row.Lead); err != nil {
			m.setError(apperr.MessageOr(err, leadsservice.MsgOtherEditActive))
			return m, nil
		}
		m.nameInput.SetValue(m.deps.Names.State().Value)
		m.nameInput.CursorEnd()
		cmd := m.nameInput.Focus()
		return m, cmd
	case "p":
		action, ok := m.day.Next()
		if !ok {
			m.setStatus("Already punched out today")
			return m, nil
		}
		return m, m.punch(action)
	case "s":
		m.screen = screenScript
		return m, m.fetchScript()
	case "o":
		return m, m.logout()
	}
	return m, nil
}

func (m Model) updateNameEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	edit := m.deps.Names.State()
	switch msg.String() {
	case "esc":
		m.deps.Names.Cancel()
		m.nameInput.Blur()
		m.status = ""
		return m, nil
	case "enter":
		if edit.Saving {
			return m, nil
		}
		return m, m.saveName(edit.LeadID)
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	_ = m.deps.Names.SetValue(m.nameInput.Value())
	return m, cmd
}

func (m Model) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if f == nil {
		m.screen = screenQueue
		return m, nil
	}
	if f.submitting {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		f.session.Cancel()
		m.form = nil
		m.screen = screenQueue
		m.setStatus("Call form discarded")
		return m, nil
	case "tab":
		f.moveFocus(1)
		return m, nil
	case "shift+tab":
		f.moveFocus(-1)
		return m, nil
	case "ctrl+n":
		f.next()
		m.status = ""
		return m, nil
	case "ctrl+b":
		f.back()
		m.status = ""
		return m, nil
	case "ctrl+s":
		snap := f.session.Snapshot()
		if !snap.CanSubmit {
			m.setError(snap.Blocker)
			return m, nil
		}
		f.submitting = true
		m.setStatus("Closing call…")
		return m, m.submit(f)
	}

	m.status = ""
	return m, f.handleKey(msg)
}

func (m Model) updateScript(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "s", "q":
		m.screen = screenQueue
		return m, nil
	}
	var cmd tea.Cmd
	m.scriptView, cmd = m.scriptView.Update(msg)
	return m, cmd
}

func (m Model) switchBucket(bucket leadsdomain.Bucket) (tea.Model, tea.Cmd) {
	t := m.deps.Queue.Begin(bucket)
	m.queue = m.deps.Queue.State()
	m.cursor = 0
	return m, m.fetchList(t)
}

func (m Model) bucketOffset(delta int) leadsdomain.Bucket {
	current := m.queue.Bucket
	if current == leadsdomain.BucketPending {
		current = leadsdomain.BucketAssigned
	}
	idx := 0
	for i, b := range leadsdomain.Buckets {
		if b == current {
			idx = i
		}
	}
	n := len(leadsdomain.Buckets)
	return leadsdomain.Buckets[(idx+delta+n)%n]
}

func (m *Model) setQueue(state queue.State) {
	m.queue = state
	if rows := selectable(m.view()); m.cursor >= len(rows) {
		m.cursor = max(len(rows)-1, 0)
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m Model) view() leadsdomain.View {
	return leadsdomain.BuildView(m.queue.Bucket, m.queue.Leads, m.deps.Region)
}

// selectable flattens a view into the rows the cursor moves over, the
// current call first.
func selectable(v leadsdomain.View) []leadsdomain.Row {
	rows := make([]leadsdomain.Row, 0, len(v.Rows)+1)
	if v.Current != nil {
		rows = append(rows, *v.Current)
	}
	return append(rows, v.Rows...)
}

func rowAt(rows []leadsdomain.Row, i int) (leadsdomain.Row, bool) {
	if i < 0 || i >= len(rows) {
		return leadsdomain.Row{}, false
	}
	return rows[i], true
}

// Run starts the console and blocks until the user quits. Queue refreshes
// triggered by events and session expiry are delivered into the update loop.
func Run(ctx context.Context, deps Deps, bus events.Subscriber, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, deps), opts...)

	// OnChange also fires from Apply inside Update, so Send must not block it.
	deps.Queue.OnChange(func(s queue.State) { go p.Send(queueChangedMsg{state: s}) })
	defer deps.Queue.OnChange(nil)

	bus.Subscribe(events.SessionExpiredEvent, events.HandlerFunc(func(context.Context, events.Event) error {
		p.Send(sessionExpiredMsg{})
		return nil
	}))

	_, err := p.Run()
	return err
}
