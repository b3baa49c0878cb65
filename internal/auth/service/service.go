package service

import (
	"context"
	"net/url"
	"time"

	"telecrm/internal/auth"
	"telecrm/internal/auth/session"
	"telecrm/internal/auth/token"
	"telecrm/internal/auth/transport"
	"telecrm/internal/events"
	"telecrm/platform/apperr"
	"telecrm/platform/httpkit"
	"telecrm/platform/logger"
	"telecrm/platform/validator"
)

const (
	MsgSessionExpired   = "Your session has expired. Please log in again."
	MsgNotAuthenticated = "Not logged in"
	MsgLoginFailed      = "Login failed"
)

type Service struct {
	api        *httpkit.Client
	jar        *session.Jar
	val        *validator.Validator
	log        *logger.Logger
	cookieName string
	now        func() time.Time
}

func New(api *httpkit.Client, jar *session.Jar, val *validator.Validator, cookieName string, log *logger.Logger) *Service {
	return &Service{api: api, jar: jar, val: val, log: log, cookieName: cookieName, now: time.Now}
}

// Login signs in and stores the session cookie set by the server.
func (s *Service) Login(ctx context.Context, email, password string) (auth.User, error) {
	req := transport.LoginRequest{Email: email, Password: password}
	if err := s.val.Struct(req); err != nil {
		s.log.AuthEvent("login", email, false, "invalid_request")
		return auth.User{}, apperr.Wrap(apperr.KindValidation, "Enter a valid email and password", err)
	}

	var resp transport.UserResponse
	if err := s.api.Post(ctx, "/auth/login", req, &resp); err != nil {
		s.log.AuthEvent("login", email, false, apperr.GetKind(err).String())
		return auth.User{}, err
	}
	if resp.User == nil {
		s.log.AuthEvent("login", email, false, "empty_user")
		return auth.User{}, apperr.New(apperr.KindInternal, MsgLoginFailed)
	}

	s.log.AuthEvent("login", email, true, "")
	return toUser(*resp.User), nil
}

// Logout ends the server session. Local cookies are removed even when the
// server cannot be reached.
func (s *Service) Logout(ctx context.Context) error {
	err := s.api.Post(ctx, "/auth/logout", nil, nil)
	if clearErr := s.jar.Clear(); clearErr != nil {
		return clearErr
	}
	s.log.AuthEvent("logout", "", err == nil, errReason(err))
	return err
}

// Me returns the signed-in user. A stored token already past its expiry is
// reported as expired without asking the server.
func (s *Service) Me(ctx context.Context) (auth.User, error) {
	if s.Expired() {
		_ = s.jar.Clear()
		return auth.User{}, apperr.Unauthorized(MsgSessionExpired)
	}

	var resp transport.UserResponse
	if err := s.api.Get(ctx, "/auth/me", &resp); err != nil {
		return auth.User{}, err
	}
	if resp.User == nil {
		return auth.User{}, apperr.Unauthorized(MsgNotAuthenticated)
	}
	return toUser(*resp.User), nil
}

// HasSession reports whether a session cookie is stored.
func (s *Service) HasSession() bool {
	return s.sessionToken() != ""
}

// Expired reports whether the stored session token carries an expiry in the past.
func (s *Service) Expired() bool {
	return token.Expired(s.sessionToken(), s.now())
}

func (s *Service) sessionToken() string {
	u, err := url.Parse(s.api.BaseURL() + "/")
	if err != nil {
		return ""
	}
	return s.jar.Value(u, s.cookieName)
}

// ExpiryNotifier returns the 401 callback for httpkit. It drops the stored
// session and publishes SessionExpired.
func ExpiryNotifier(jar *session.Jar, bus events.Publisher, log *logger.Logger) func(path string) {
	return func(path string) {
		if err := jar.Clear(); err != nil {
			log.Warn("clear session failed", "error", err)
		}
		log.AuthEvent("session_expired", "", false, path)
		bus.Publish(context.Background(), events.SessionExpired{BaseEvent: events.NewBaseEvent(), Path: path})
	}
}

func toUser(u transport.User) auth.User {
	return auth.User{ID: u.Identifier(), Name: u.Name, Email: u.Email, Role: u.Role}
}

func errReason(err error) string {
	if err == nil {
		return ""
	}
	return apperr.GetKind(err).String()
}
