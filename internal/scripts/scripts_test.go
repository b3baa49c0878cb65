package scripts

import (
	"context"
	"net/http"
	"testing"

	"telecrm/internal/telecaller/telecallertest"
	"telecrm/platform/apperr"
)

func TestActive(t *testing.T) {
	fake := telecallertest.New(t)
	fake.SetScript("Home loan", "Namaste, I am calling from...")

	got, err := New(fake.Client()).Active(context.Background())
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if got.Title != "Home loan" || got.Empty() {
		t.Fatalf("Active() = %+v", got)
	}
}

func TestActiveNone(t *testing.T) {
	fake := telecallertest.New(t)

	got, err := New(fake.Client()).Active(context.Background())
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if !got.Empty() {
		t.Fatalf("Active() = %+v, want empty", got)
	}
}

func TestActiveError(t *testing.T) {
	fake := telecallertest.New(t)
	fake.Fail("GET /scripts", http.StatusInternalServerError, "")

	_, err := New(fake.Client()).Active(context.Background())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("Active() error = %v, want internal", err)
	}
}

func TestActiveRendersHTMLAsText(t *testing.T) {
	fake := telecallertest.New(t)
	fake.SetScript("Home <b>loan</b>", "<p>Namaste,</p><p>Rates from 8.5% &amp; no fees.</p>")

	got, err := New(fake.Client()).Active(context.Background())
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if got.Title != "Home loan" {
		t.Errorf("Title = %q", got.Title)
	}
	if want := "Namaste,\nRates from 8.5% & no fees."; got.Body != want {
		t.Errorf("Body = %q, want %q", got.Body, want)
	}
}
