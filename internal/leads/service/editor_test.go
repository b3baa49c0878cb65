package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"telecrm/internal/events"
	"telecrm/internal/leads/domain"
	"telecrm/internal/telecaller/client"
	"telecrm/internal/telecaller/telecallertest"
	"telecrm/platform/apperr"
	"telecrm/platform/logger"
	"telecrm/platform/validator"
)

type fakeNameAPI struct {
	mu    sync.Mutex
	calls map[string]string
	err   error
}

func (f *fakeNameAPI) UpdateName(_ context.Context, leadID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.calls == nil {
		f.calls = make(map[string]string)
	}
	f.calls[leadID] = name
	return nil
}

func newEditor(api NameAPI) (*NameEditor, *events.InMemoryBus) {
	bus := events.NewInMemoryBus(logger.Nop())
	return NewNameEditor(api, bus, logger.Nop()), bus
}

func TestSaveBlankNameSendsUnknown(t *testing.T) {
	api := &fakeNameAPI{}
	e, bus := newEditor(api)

	if err := e.Begin(domain.Lead{ID: "L1", Name: "unknown"}); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if got := e.State().Value; got != "" {
		t.Fatalf("prefill = %q, want empty for the unknown sentinel", got)
	}
	_ = e.SetValue("   ")

	name, err := e.Save(context.Background())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	bus.Wait()

	if name != domain.UnknownName || api.calls["L1"] != domain.UnknownName {
		t.Fatalf("sent %q, want %q", api.calls["L1"], domain.UnknownName)
	}
	if e.State().Editing {
		t.Fatal("still editing after save")
	}
}

func TestOnlyOneRowEditable(t *testing.T) {
	e, _ := newEditor(&fakeNameAPI{})

	if err := e.Begin(domain.Lead{ID: "L1", Name: "Ravi"}); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if !e.CanEdit("L1") {
		t.Fatal("CanEdit(L1) = false for the row being edited")
	}
	if e.CanEdit("L2") {
		t.Fatal("CanEdit(L2) = true while L1 is being edited")
	}
	if err := e.Begin(domain.Lead{ID: "L2"}); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("Begin(L2) error = %v, want conflict", err)
	}

	e.Cancel()
	if !e.CanEdit("L2") {
		t.Fatal("CanEdit(L2) = false after cancel")
	}
}

func TestSaveFailureKeepsEditing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", apperr.FromStatus(http.StatusForbidden, "Lead is not assigned to you"), "Lead is not assigned to you"},
		{"network", apperr.Transport("network error", errors.New("refused")), MsgUpdateFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeNameAPI{err: tc.err}
			e, _ := newEditor(api)
			_ = e.Begin(domain.Lead{ID: "L1"})
			_ = e.SetValue("Meera")

			if _, err := e.Save(context.Background()); err == nil {
				t.Fatal("Save() error = nil")
			}

			st := e.State()
			if !st.Editing || st.Value != "Meera" {
				t.Fatalf("state = %+v, want editing with value kept", st)
			}
			if st.Error != tc.want {
				t.Fatalf("Error = %q, want %q", st.Error, tc.want)
			}
		})
	}
}

func TestCancelSendsNothing(t *testing.T) {
	api := &fakeNameAPI{}
	e, _ := newEditor(api)
	_ = e.Begin(domain.Lead{ID: "L1", Name: "Ravi"})
	_ = e.SetValue("Ravi Kumar")

	e.Cancel()

	if len(api.calls) != 0 {
		t.Fatalf("cancel sent %v", api.calls)
	}
	if _, err := e.Save(context.Background()); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Save() after cancel error = %v, want validation", err)
	}
}

func TestSavePublishesRenamed(t *testing.T) {
	fake := telecallertest.New(t)
	e, bus := newEditor(client.New(fake.Client(), validator.New()))

	var got []events.LeadRenamed
	var mu sync.Mutex
	bus.Subscribe(events.LeadRenamedEvent, events.HandlerFunc(func(_ context.Context, ev events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.(events.LeadRenamed))
		return nil
	}))

	_ = e.Begin(domain.Lead{ID: "L7", Name: "ravi"})
	_ = e.SetValue("  Ravi Kumar ")
	if _, err := e.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	bus.Wait()

	if name, ok := fake.Renamed("L7"); !ok || name != "Ravi Kumar" {
		t.Fatalf("server name = %q, want trimmed value", name)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].LeadID != "L7" || got[0].Name != "Ravi Kumar" {
		t.Fatalf("LeadRenamed events = %+v", got)
	}
}
