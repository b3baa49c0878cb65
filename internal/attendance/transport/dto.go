// Package transport provides the wire DTOs of the attendance endpoints.
package transport

import "time"

// PunchRequest is the body of POST /attendance.
type PunchRequest struct {
	Action string `json:"action" validate:"required,oneof=in out"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
}

// Record is one day of attendance.
type Record struct {
	Date     string     `json:"date"`
	PunchIn  *time.Time `json:"punchIn"`
	PunchOut *time.Time `json:"punchOut"`
}

// ListResponse is the body of GET /attendance.
type ListResponse struct {
	List []Record `json:"list"`
}

// PunchResponse is the body of POST /attendance.
type PunchResponse struct {
	Attendance *Record `json:"attendance"`
}
