// Package attendance lets the telecaller punch in and out for the day.
package attendance

import (
	"context"
	"net/url"
	"time"

	"telecrm/internal/attendance/transport"
	"telecrm/internal/events"
	"telecrm/platform/apperr"
	"telecrm/platform/httpkit"
	"telecrm/platform/logger"
	"telecrm/platform/validator"
)

const dateLayout = "2006-01-02"

// Action is a punch direction.
type Action string

const (
	ActionIn  Action = "in"
	ActionOut Action = "out"
)

// Status is the attendance state of a day.
type Status int

const (
	StatusNotPunched Status = iota
	StatusPunchedIn
	StatusPunchedOut
)

func (s Status) String() string {
	switch s {
	case StatusPunchedIn:
		return "punched in"
	case StatusPunchedOut:
		return "punched out"
	default:
		return "not punched in"
	}
}

// Day is the attendance of one calendar day.
type Day struct {
	Date     string
	PunchIn  *time.Time
	PunchOut *time.Time
}

// Status derives the state from the punches.
func (d Day) Status() Status {
	switch {
	case d.PunchOut != nil:
		return StatusPunchedOut
	case d.PunchIn != nil:
		return StatusPunchedIn
	default:
		return StatusNotPunched
	}
}

// Next returns the punch the telecaller can record now, false once done.
func (d Day) Next() (Action, bool) {
	switch d.Status() {
	case StatusNotPunched:
		return ActionIn, true
	case StatusPunchedIn:
		return ActionOut, true
	default:
		return "", false
	}
}

// Service talks to the /attendance routes.
type Service struct {
	api *httpkit.Client
	val *validator.Validator
	bus events.Publisher
	log *logger.Logger
	now func() time.Time
}

// New creates the attendance service.
func New(api *httpkit.Client, val *validator.Validator, bus events.Publisher, log *logger.Logger) *Service {
	return &Service{api: api, val: val, bus: bus, log: log, now: time.Now}
}

// Today returns today's attendance. A failed read yields an empty day.
func (s *Service) Today(ctx context.Context) (Day, error) {
	date := s.today()

	var resp transport.ListResponse
	if err := s.api.Get(ctx, "/attendance?date="+url.QueryEscape(date), &resp); err != nil {
		s.log.Warn("attendance fetch failed", "date", date, "error", err)
		return Day{Date: date}, err
	}
	for _, rec := range resp.List {
		if rec.Date == date {
			return toDay(rec), nil
		}
	}
	return Day{Date: date}, nil
}

// Punch records action for today and returns the updated day.
func (s *Service) Punch(ctx context.Context, action Action) (Day, error) {
	req := transport.PunchRequest{Action: string(action), Date: s.today()}
	if err := s.val.Struct(req); err != nil {
		return Day{}, apperr.Wrap(apperr.KindValidation, "Unknown punch action", err).WithOp("attendance.Punch")
	}

	var resp transport.PunchResponse
	if err := s.api.Post(ctx, "/attendance", req, &resp); err != nil {
		return Day{}, err
	}

	s.bus.Publish(ctx, events.AttendancePunched{BaseEvent: events.NewBaseEvent(), Action: req.Action, Date: req.Date})
	if resp.Attendance == nil {
		return s.Today(ctx)
	}
	return toDay(*resp.Attendance), nil
}

func (s *Service) today() string {
	return s.now().Format(dateLayout)
}

func toDay(rec transport.Record) Day {
	return Day{Date: rec.Date, PunchIn: rec.PunchIn, PunchOut: rec.PunchOut}
}
