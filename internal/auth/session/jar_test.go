package session

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestJarPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	api := mustURL(t, "http://127.0.0.1:5000/api/auth/login")

	jar, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	jar.SetCookies(api, []*http.Cookie{{Name: "token", Value: "abc", Path: "/"}})

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := reopened.Value(mustURL(t, "http://127.0.0.1:5000/api/telecaller/counts"), "token"); got != "abc" {
		t.Fatalf("Value() = %q, want abc", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("session file mode = %v, want 0600", perm)
	}
}

func TestJarDropsDeletedAndExpiredCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	api := mustURL(t, "http://127.0.0.1:5000/api")

	jar, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	jar.SetCookies(api, []*http.Cookie{
		{Name: "token", Value: "abc", Path: "/"},
		{Name: "old", Value: "x", Path: "/", Expires: time.Now().Add(-time.Hour)},
	})
	jar.SetCookies(api, []*http.Cookie{{Name: "token", Value: "", Path: "/", MaxAge: -1}})

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := reopened.Cookies(api); len(got) != 0 {
		t.Fatalf("Cookies() = %v, want none", got)
	}
}

func TestClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	api := mustURL(t, "http://127.0.0.1:5000/api")

	jar, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	jar.SetCookies(api, []*http.Cookie{{Name: "token", Value: "abc", Path: "/"}})

	if err := jar.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("session file still present: %v", err)
	}
	if got := jar.Value(api, "token"); got != "" {
		t.Fatalf("Value() = %q after clear", got)
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("Open() error = nil for corrupt file")
	}
}

func TestInMemoryJar(t *testing.T) {
	jar, err := Open("")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	api := mustURL(t, "http://127.0.0.1:5000/api")
	jar.SetCookies(api, []*http.Cookie{{Name: "token", Value: "abc", Path: "/"}})
	if got := jar.Value(api, "token"); got != "abc" {
		t.Fatalf("Value() = %q, want abc", got)
	}
}
