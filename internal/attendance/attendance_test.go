package attendance

import (
	"context"
	"testing"
	"time"

	"telecrm/internal/events"
	"telecrm/internal/telecaller/telecallertest"
	"telecrm/platform/apperr"
	"telecrm/platform/logger"
	"telecrm/platform/validator"
)

func newService(t *testing.T) (*Service, *telecallertest.FakeAPI, *events.InMemoryBus) {
	t.Helper()
	fake := telecallertest.New(t)
	bus := events.NewInMemoryBus(logger.Nop())
	svc := New(fake.Client(), validator.New(), bus, logger.Nop())
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local) }
	return svc, fake, bus
}

func TestPunchInThenOut(t *testing.T) {
	svc, fake, bus := newService(t)
	ctx := context.Background()

	day, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	if day.Status() != StatusNotPunched {
		t.Fatalf("Status() = %v, want not punched", day.Status())
	}
	if next, ok := day.Next(); !ok || next != ActionIn {
		t.Fatalf("Next() = %q, %v", next, ok)
	}

	if day, err = svc.Punch(ctx, ActionIn); err != nil {
		t.Fatalf("Punch(in) error = %v", err)
	}
	if day.Status() != StatusPunchedIn {
		t.Fatalf("Status() = %v, want punched in", day.Status())
	}

	if day, err = svc.Punch(ctx, ActionOut); err != nil {
		t.Fatalf("Punch(out) error = %v", err)
	}
	if _, ok := day.Next(); ok {
		t.Fatal("Next() ok after punching out")
	}
	bus.Wait()

	punches := fake.Punches()
	if len(punches) != 2 || punches[0].Date != "2025-03-10" || punches[1].Action != "out" {
		t.Fatalf("punches = %+v", punches)
	}

	today, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	if today.Status() != StatusPunchedOut {
		t.Fatalf("Today().Status() = %v, want punched out", today.Status())
	}
}

func TestPunchTwiceSurfacesServerMessage(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Punch(ctx, ActionIn); err != nil {
		t.Fatalf("Punch(in) error = %v", err)
	}
	_, err := svc.Punch(ctx, ActionIn)
	if got := apperr.MessageOr(err, ""); got != "Already punched in today" {
		t.Fatalf("message = %q", got)
	}
}

func TestPunchRejectsUnknownAction(t *testing.T) {
	svc, fake, _ := newService(t)

	_, err := svc.Punch(context.Background(), Action("lunch"))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Punch() error = %v, want validation", err)
	}
	if len(fake.Punches()) != 0 {
		t.Fatal("invalid punch reached the server")
	}
}
