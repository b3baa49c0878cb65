// Package transport provides the wire DTOs of the telecaller API.
package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Ref is a reference the API returns either as a bare id string or as a
// populated object.
type Ref struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}

	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = Ref{ID: id}
		return nil
	}

	var obj struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("cannot unmarshal %s into Ref", string(data))
	}
	r.ID = obj.MongoID
	if r.ID == "" {
		r.ID = obj.ID
	}
	r.Name = obj.Name
	return nil
}

// Timestamp accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("cannot unmarshal %s into Timestamp", string(data))
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, dateLayout} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as a date", raw)
}

// Day returns the calendar date in YYYY-MM-DD, empty for the zero time.
func (t *Timestamp) Day() string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// Lead is a calling number as returned by the bucket endpoints.
type Lead struct {
	MongoID      string     `json:"_id"`
	ID           string     `json:"id"`
	Phone        string     `json:"phone"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	FollowUpDate *Timestamp `json:"followUpDate"`
	Sheet        Ref        `json:"sheet"`
	AssignedTo   Ref        `json:"assignedTo"`
}

// Identifier returns the lead id whichever key the server used.
func (l Lead) Identifier() string {
	if l.MongoID != "" {
		return l.MongoID
	}
	return l.ID
}

// ListResponse is the body of GET /telecaller/{bucket}.
type ListResponse struct {
	List []Lead `json:"list"`
}

// Counts holds the number of leads per bucket.
type Counts struct {
	Assigned  int `json:"assigned"`
	FollowUp  int `json:"followUp"`
	Converted int `json:"converted"`
}

// CountsResponse is the body of GET /telecaller/counts.
type CountsResponse struct {
	Counts *Counts `json:"counts"`
}

// CloseCallRequest is the body of POST /telecaller/calls/{id}/close.
// Fields that do not apply to the outcome are omitted.
type CloseCallRequest struct {
	Outcome        string `json:"outcome" validate:"required,oneof=connected not_connected"`
	Interested     *bool  `json:"interested,omitempty" validate:"required_if=Outcome connected"`
	Converted      *bool  `json:"converted,omitempty" validate:"required_if=Outcome connected"`
	QuestionsAsked string `json:"questionsAsked,omitempty"`
	Remark         string `json:"remark,omitempty"`
	FollowUpDate   string `json:"followUpDate,omitempty" validate:"required_if=Outcome not_connected"`
}

// OutcomeRecord is a stored call outcome.
type OutcomeRecord struct {
	Outcome        string     `json:"outcome"`
	Interested     *bool      `json:"interested"`
	Converted      *bool      `json:"converted"`
	QuestionsAsked string     `json:"questionsAsked"`
	Remark         string     `json:"remark"`
	FollowUpDate   *Timestamp `json:"followUpDate"`
	ClosedAt       *Timestamp `json:"closedAt"`
	Telecaller     Ref        `json:"telecaller"`
}

// PreviousCallResponse is the body of GET /telecaller/calls/{id}/previous-call.
type PreviousCallResponse struct {
	PreviousCall *OutcomeRecord `json:"previousCall"`
}

// UpdateNameRequest is the body of PATCH /telecaller/calls/{id}/name.
type UpdateNameRequest struct {
	Name string `json:"name" validate:"required"`
}
