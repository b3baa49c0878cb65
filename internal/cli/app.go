// Package cli provides the telecaller command line: the interactive console
// plus one-shot commands for scripting and quick lookups.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"telecrm/internal/attendance"
	authservice "telecrm/internal/auth/service"
	"telecrm/internal/auth/session"
	"telecrm/internal/calls/presets"
	callsservice "telecrm/internal/calls/service"
	"telecrm/internal/console"
	"telecrm/internal/events"
	leadsservice "telecrm/internal/leads/service"
	"telecrm/internal/queue"
	"telecrm/internal/scripts"
	"telecrm/internal/telecaller/client"
	"telecrm/platform/config"
	"telecrm/platform/httpkit"
	"telecrm/platform/logger"
	"telecrm/platform/validator"
)

// App holds every wired service of one process.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	Bus    *events.InMemoryBus
	Jar    *session.Jar

	Telecaller *client.Client
	Auth       *authservice.Service
	Queue      *queue.Provider
	Calls      *callsservice.Service
	Names      *leadsservice.NameEditor
	Attendance *attendance.Service
	Scripts    *scripts.Client
	Presets    presets.Presets

	expired atomic.Bool
	closers []func() error
}

// NewApp wires the services for cfg. Extra options are applied to the API
// client after the cookie jar and the 401 handler.
func NewApp(cfg *config.Config, log *logger.Logger, opts ...httpkit.Option) (*App, error) {
	jar, err := session.Open(cfg.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	phrases, err := presets.Load(cfg.PresetsFile)
	if err != nil {
		return nil, err
	}

	bus := events.NewInMemoryBus(log)
	api := httpkit.New(cfg, log, append([]httpkit.Option{
		httpkit.WithCookieJar(jar),
		httpkit.WithUnauthorizedHandler(authservice.ExpiryNotifier(jar, bus, log)),
	}, opts...)...)

	val := validator.New()
	tc := client.New(api, val)

	provider := queue.New(tc, log)
	provider.Subscribe(bus)

	app := &App{
		Config:     cfg,
		Log:        log,
		Bus:        bus,
		Jar:        jar,
		Telecaller: tc,
		Auth:       authservice.New(api, jar, val, cfg.AuthCookieName, log),
		Queue:      provider,
		Calls:      callsservice.New(tc, bus, log),
		Names:      leadsservice.NewNameEditor(tc, bus, log),
		Attendance: attendance.New(api, val, bus, log),
		Scripts:    scripts.New(api),
		Presets:    phrases,
	}

	bus.Subscribe(events.SessionExpiredEvent, events.HandlerFunc(func(context.Context, events.Event) error {
		app.expired.Store(true)
		return nil
	}))

	return app, nil
}

// Load reads the configuration from the environment and wires an App.
// Interactive apps log to a file beside the session so the console screen
// stays clean.
func Load(_ context.Context, interactive bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logFile := cfg.LogFile
	if logFile == "" && interactive {
		logFile = filepath.Join(filepath.Dir(cfg.SessionFile), "console.log")
	}
	log, closeLog, err := logger.Open(cfg.Env, logFile)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	app.closers = append(app.closers, closeLog)
	return app, nil
}

// Deps returns the services the console drives.
func (a *App) Deps() console.Deps {
	return console.Deps{
		Auth:       a.Auth,
		Queue:      a.Queue,
		Calls:      a.Calls,
		Names:      a.Names,
		Attendance: a.Attendance,
		Scripts:    a.Scripts,
		Presets:    a.Presets,
		Region:     a.Config.PhoneRegion,
		Log:        a.Log,
	}
}

// SessionExpired reports whether any request of this process hit a 401.
func (a *App) SessionExpired() bool {
	return a.expired.Load()
}

// Close waits for pending event handlers and releases resources.
func (a *App) Close() error {
	a.Bus.Wait()
	var first error
	for _, fn := range a.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
