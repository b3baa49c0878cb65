// Package session persists the API session cookies between runs of the
// console so the telecaller does not have to log in for every command.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Jar is an http.CookieJar that writes every cookie it receives to a JSON
// file and restores them on open.
type Jar struct {
	path string

	mu      sync.Mutex
	inner   *cookiejar.Jar
	cookies map[string]storedCookie
	now     func() time.Time
}

type storedCookie struct {
	URL     string    `json:"url"`
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitzero"`
}

type fileFormat struct {
	Cookies []storedCookie `json:"cookies"`
}

// Open loads the jar from path. A missing file yields an empty jar, an
// empty path an in-memory jar.
func Open(path string) (*Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	j := &Jar{
		path:    path,
		inner:   inner,
		cookies: make(map[string]storedCookie),
		now:     time.Now,
	}
	if path == "" {
		return j, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var file fileFormat
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", path, err)
	}

	now := j.now()
	for _, c := range file.Cookies {
		if !c.Expires.IsZero() && !now.Before(c.Expires) {
			continue
		}
		u, err := url.Parse(c.URL)
		if err != nil {
			continue
		}
		j.inner.SetCookies(u, []*http.Cookie{c.httpCookie()})
		j.cookies[key(u, c.Name)] = c
	}
	return j, nil
}

// SetCookies implements http.CookieJar and persists the result.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner.SetCookies(u, cookies)

	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
	for _, c := range cookies {
		k := key(u, c.Name)
		if c.MaxAge < 0 || c.Value == "" || (!c.Expires.IsZero() && !j.now().Before(c.Expires)) {
			delete(j.cookies, k)
			continue
		}
		stored := storedCookie{URL: origin, Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires}
		if c.MaxAge > 0 {
			stored.Expires = j.now().Add(time.Duration(c.MaxAge) * time.Second)
		}
		j.cookies[k] = stored
	}

	_ = j.saveLocked()
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// Value returns the value of the named cookie for u, or "".
func (j *Jar) Value(u *url.URL, name string) string {
	for _, c := range j.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Clear forgets every cookie and removes the session file.
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	j.inner = inner
	j.cookies = make(map[string]storedCookie)

	if j.path == "" {
		return nil
	}
	if err := os.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (j *Jar) saveLocked() error {
	if j.path == "" {
		return nil
	}

	file := fileFormat{Cookies: make([]storedCookie, 0, len(j.cookies))}
	for _, c := range j.cookies {
		file.Cookies = append(file.Cookies, c)
	}
	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(j.path, raw, 0o600)
}

func (c storedCookie) httpCookie() *http.Cookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{Name: c.Name, Value: c.Value, Path: path, Expires: c.Expires}
}

func key(u *url.URL, name string) string {
	return u.Host + "|" + name
}
