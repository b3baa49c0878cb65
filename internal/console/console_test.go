package console

import (
	"context"
	"os"
	"reflect"
	"strings"
	"testing"

	"telecrm/internal/attendance"
	authservice "telecrm/internal/auth/service"
	"telecrm/internal/auth/session"
	"telecrm/internal/calls/domain"
	"telecrm/internal/calls/presets"
	callsservice "telecrm/internal/calls/service"
	"telecrm/internal/events"
	leadsdomain "telecrm/internal/leads/domain"
	leadsservice "telecrm/internal/leads/service"
	"telecrm/internal/queue"
	"telecrm/internal/scripts"
	"telecrm/internal/telecaller/client"
	"telecrm/internal/telecaller/telecallertest"
	"telecrm/internal/telecaller/transport"
	"telecrm/platform/httpkit"
	"telecrm/platform/logger"
	"telecrm/platform/validator"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

var consolePkg = reflect.TypeOf(Model{}).PkgPath()

func TestMain(m *testing.M) {
	cursorMode = cursor.CursorStatic
	os.Exit(m.Run())
}

type harness struct {
	t    *testing.T
	fake *telecallertest.FakeAPI
	bus  *events.InMemoryBus
	deps Deps
	m    Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := telecallertest.New(t)
	fake.AddUser("asha@example.com", "secret")
	fake.SetList("assigned",
		transport.Lead{MongoID: "A1", Phone: "9876543210", Name: "Ravi"},
		transport.Lead{MongoID: "A2", Phone: "9876543211"},
	)
	fake.SetCounts(&transport.Counts{Assigned: 2, FollowUp: 1, Converted: 4})
	fake.SetList("follow-up", transport.Lead{MongoID: "F1", Phone: "9876543212", Name: "Meera"})

	log := logger.Nop()
	bus := events.NewInMemoryBus(log)
	jar, err := session.Open("")
	if err != nil {
		t.Fatal(err)
	}
	api := fake.Client(
		httpkit.WithCookieJar(jar),
		httpkit.WithUnauthorizedHandler(authservice.ExpiryNotifier(jar, bus, log)),
	)
	val := validator.New()
	tc := client.New(api, val)

	provider := queue.New(tc, log)
	provider.Subscribe(bus)

	deps := Deps{
		Auth:       authservice.New(api, jar, val, telecallertest.SessionCookie, log),
		Queue:      provider,
		Calls:      callsservice.New(tc, bus, log),
		Names:      leadsservice.NewNameEditor(tc, bus, log),
		Attendance: attendance.New(api, val, bus, log),
		Scripts:    scripts.New(api),
		Presets:    presets.Default(),
		Region:     "IN",
		Log:        log,
	}

	h := &harness{t: t, fake: fake, bus: bus, deps: deps}
	h.m = New(context.Background(), deps)
	return h
}

// send feeds msg to the model and runs the resulting commands, feeding back
// the messages this package defines. Framework messages such as spinner
// ticks and cursor blinks are dropped.
func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	pending := []tea.Msg{msg}
	for steps := 0; len(pending) > 0; steps++ {
		if steps > 200 {
			h.t.Fatal("too many messages")
		}
		next := pending[0]
		pending = pending[1:]

		model, cmd := h.m.Update(next)
		h.m = model.(Model)
		pending = append(pending, run(cmd)...)
	}
}

func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil || reflect.TypeOf(msg).PkgPath() != consolePkg {
		return nil
	}
	return []tea.Msg{msg}
}

func (h *harness) keys(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// start runs Init, which checks the stored session.
func (h *harness) start() {
	h.t.Helper()
	for _, msg := range run(h.m.Init()) {
		h.send(msg)
	}
}

func (h *harness) signIn() {
	h.t.Helper()
	h.start()
	if h.m.screen != screenLogin {
		h.t.Fatalf("screen = %v, want login", h.m.screen)
	}
	h.typeText("asha@example.com")
	h.keys("enter")
	h.typeText("secret")
	h.keys("enter")
	if h.m.screen != screenQueue {
		h.t.Fatalf("screen = %v after login, want queue (status %q)", h.m.screen, h.m.status)
	}
}

func (h *harness) settle() {
	h.bus.Wait()
	h.send(queueChangedMsg{state: h.deps.Queue.State()})
}

func TestLoginLoadsQueue(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	view := h.m.View()
	for _, want := range []string{"Asha", "Current call", "Ravi", "Up next", "Assigned (2)", "Follow-up (1)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view does not contain %q", want)
		}
	}
	if h.m.queue.Counts.Converted != 4 {
		t.Fatalf("Counts = %+v", h.m.queue.Counts)
	}
}

func TestWrongPasswordStaysOnLogin(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.typeText("asha@example.com")
	h.keys("enter")
	h.typeText("nope")
	h.keys("enter")

	if h.m.screen != screenLogin {
		t.Fatalf("screen = %v, want login", h.m.screen)
	}
	if h.m.status != "Invalid email or password" || !h.m.statusErr {
		t.Fatalf("status = %q (err %v)", h.m.status, h.m.statusErr)
	}
}

func TestCloseNotConnectedFromCurrentCall(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	h.keys("enter")
	if h.m.screen != screenWizard {
		t.Fatalf("screen = %v, want wizard", h.m.screen)
	}

	h.keys("ctrl+s")
	if h.m.status != domain.MsgSelectOutcome {
		t.Fatalf("status = %q, want %q", h.m.status, domain.MsgSelectOutcome)
	}

	h.keys("n", "tab")
	h.typeText("2025-03-10")
	if !h.m.form.session.Snapshot().CanSubmit {
		t.Fatal("CanSubmit() = false after entering the follow-up date")
	}
	h.keys("ctrl+s")

	if h.m.screen != screenQueue || h.m.status != "Call closed" {
		t.Fatalf("screen = %v status = %q", h.m.screen, h.m.status)
	}
	closed := h.fake.Closed()
	if len(closed) != 1 || closed[0].LeadID != "A1" {
		t.Fatalf("closed = %+v", closed)
	}
	want := map[string]any{"outcome": "not_connected", "followUpDate": "2025-03-10"}
	if diff := cmp.Diff(want, closed[0].Body); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}

	h.fake.SetList("assigned", transport.Lead{MongoID: "A2", Phone: "9876543211"})
	h.bus.Wait()
	h.deps.Queue.Refresh(context.Background())
	h.settle()
	if got := h.m.queue.Leads; len(got) != 1 || got[0].ID != "A2" {
		t.Fatalf("queue after close = %+v", got)
	}
}

func TestOutOfOrderSnapshotsKeepNewestQueue(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	var snapshots []queue.State
	h.deps.Queue.OnChange(func(s queue.State) { snapshots = append(snapshots, s) })
	defer h.deps.Queue.OnChange(nil)

	h.fake.SetList("assigned", transport.Lead{MongoID: "A2", Phone: "9876543211"})
	ticket := h.deps.Queue.Begin(leadsdomain.BucketAssigned)
	h.deps.Queue.RefreshCounts(context.Background())
	h.deps.Queue.Apply(h.deps.Queue.Fetch(context.Background(), ticket))
	if len(snapshots) != 2 || !snapshots[0].Loading || snapshots[1].Loading {
		t.Fatalf("snapshots = %+v, want counts while loading then the applied list", snapshots)
	}

	h.send(queueChangedMsg{state: snapshots[1]})
	h.send(queueChangedMsg{state: snapshots[0]})

	if h.m.queue.Loading {
		t.Fatal("queue shows Loading after the older snapshot arrived last")
	}
	if got := h.m.queue.Leads; len(got) != 1 || got[0].ID != "A2" {
		t.Fatalf("queue = %+v, want the refreshed list", got)
	}
}

func TestClosingAfterRefreshLandedDoesNotShowLoading(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	h.keys("enter", "n", "tab")
	h.typeText("2025-03-10")
	h.deps.Queue.Refresh(context.Background())
	h.send(queueChangedMsg{state: h.deps.Queue.State()})
	h.keys("ctrl+s")

	if h.m.screen != screenQueue || h.m.status != "Call closed" {
		t.Fatalf("screen = %v status = %q", h.m.screen, h.m.status)
	}
	if h.m.queue.Loading {
		t.Fatal("queue shows Loading after close with no fetch outstanding")
	}
	h.bus.Wait()
}

func TestCloseFollowUpWithPresets(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	h.keys("enter", "c", "ctrl+n")
	if step := h.m.form.session.Snapshot().Step; step != domain.StepConnected {
		t.Fatalf("Step = %v, want connected", step)
	}
	h.keys("y", "tab", "n")
	h.keys("tab", "tab", "enter")
	h.keys("ctrl+s")
	if h.m.status != domain.MsgFollowUpReason {
		t.Fatalf("status = %q, want %q", h.m.status, domain.MsgFollowUpReason)
	}

	h.keys("ctrl+n")
	h.keys("tab", "down", "enter")
	h.keys("tab")
	h.typeText("2025-03-12")
	h.keys("ctrl+s")

	closed := h.fake.Closed()
	if len(closed) != 1 {
		t.Fatalf("closed = %d, want 1 (status %q)", len(closed), h.m.status)
	}
	p := presets.Default()
	want := map[string]any{
		"outcome":        "connected",
		"interested":     true,
		"converted":      false,
		"questionsAsked": domain.Bullet + p.Questions[0],
		"remark":         domain.Bullet + p.Remarks[1],
		"followUpDate":   "2025-03-12",
	}
	if diff := cmp.Diff(want, closed[0].Body); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestCloseOnlyFromCurrentInWorkQueue(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	h.keys("down", "enter")
	if h.m.screen != screenQueue {
		t.Fatalf("screen = %v, want queue", h.m.screen)
	}
	if !h.m.statusErr {
		t.Fatal("expected an error status")
	}
}

func TestFollowUpRowsAreAllClosable(t *testing.T) {
	h := newHarness(t)
	h.fake.SetList("follow-up",
		transport.Lead{MongoID: "F1", Phone: "9876543212"},
		transport.Lead{MongoID: "F2", Phone: "9876543213"},
	)
	h.signIn()

	h.keys("2")
	if h.m.queue.Bucket != leadsdomain.BucketFollowUp {
		t.Fatalf("Bucket = %q", h.m.queue.Bucket)
	}
	h.keys("down", "enter")
	if h.m.screen != screenWizard || h.m.form.session.Lead().ID != "F2" {
		t.Fatalf("screen = %v", h.m.screen)
	}
	h.keys("esc")
	if h.m.screen != screenQueue || len(h.fake.Closed()) != 0 {
		t.Fatal("esc did not discard the form without a request")
	}
}

func TestStaleListIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	stale := h.deps.Queue.Begin(leadsdomain.BucketAssigned)
	h.keys("3")
	staleResult := queue.Result{Ticket: stale, Leads: []leadsdomain.Lead{{ID: "X"}}}
	h.send(listFetchedMsg{result: staleResult})

	if h.m.queue.Bucket != leadsdomain.BucketConverted {
		t.Fatalf("Bucket = %q, want converted", h.m.queue.Bucket)
	}
	for _, l := range h.m.queue.Leads {
		if l.ID == "X" {
			t.Fatal("stale list was applied")
		}
	}
}

func TestRenameUnknownLead(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	h.keys("down", "e")
	if !h.deps.Names.State().Editing {
		t.Fatal("edit session not started")
	}
	h.keys("1")
	if h.m.queue.Bucket != leadsdomain.BucketAssigned {
		t.Fatal("bucket key leaked out of the name field")
	}
	h.keys("enter")
	h.bus.Wait()

	if name, ok := h.fake.Renamed("A2"); !ok || name != "1" {
		t.Fatalf("server name = %q, %v", name, ok)
	}
}

func TestRenameBlankSendsUnknown(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	h.keys("down", "e", "enter")
	h.bus.Wait()

	if name, ok := h.fake.Renamed("A2"); !ok || name != leadsdomain.UnknownName {
		t.Fatalf("server name = %q, %v; want %q", name, ok, leadsdomain.UnknownName)
	}
}

func TestSessionExpiredReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.signIn()
	h.keys("enter")

	h.send(sessionExpiredMsg{})

	if h.m.screen != screenLogin || h.m.form != nil {
		t.Fatalf("screen = %v form = %v", h.m.screen, h.m.form)
	}
	if h.m.status != authservice.MsgSessionExpired {
		t.Fatalf("status = %q", h.m.status)
	}
	if h.deps.Calls.Active() != nil {
		t.Fatal("call session left open")
	}
}

func TestPunchIn(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	h.keys("p")
	if h.m.day.Status() != attendance.StatusPunchedIn {
		t.Fatalf("Status() = %v, want punched in (status %q)", h.m.day.Status(), h.m.status)
	}
	if got := h.fake.Punches(); len(got) != 1 || got[0].Action != "in" {
		t.Fatalf("punches = %+v", got)
	}
}

func TestScriptScreen(t *testing.T) {
	h := newHarness(t)
	h.fake.SetScript("Home loan", "Namaste, I am calling from Acme Finance.")
	h.signIn()

	h.keys("s")
	if h.m.screen != screenScript {
		t.Fatalf("screen = %v, want script", h.m.screen)
	}
	if !strings.Contains(h.m.View(), "Home loan") {
		t.Fatal("script title not rendered")
	}
	h.keys("esc")
	if h.m.screen != screenQueue {
		t.Fatalf("screen = %v, want queue", h.m.screen)
	}
}
