// Package domain provides core business rules for the leads bounded context:
// lead statuses, queue buckets and how a bucket is presented to a telecaller.
package domain

import (
	"strings"
	"time"
)

// Status is the lifecycle status of a lead. The server derives it from the
// outcome records; the console only displays it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusFollowUp  Status = "follow-up"
	StatusConverted Status = "converted"
	StatusDropped   Status = "dropped"
)

var knownStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusAssigned:  {},
	StatusFollowUp:  {},
	StatusConverted: {},
	StatusDropped:   {},
}

// IsKnown reports whether the status is one of the lifecycle statuses.
func (s Status) IsKnown() bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsTerminal returns true for statuses that no longer appear in a work queue.
func (s Status) IsTerminal() bool {
	return s == StatusConverted || s == StatusDropped
}

// Bucket is a named queue view the telecaller works from. Membership is
// decided by the server at fetch time.
type Bucket string

const (
	BucketAssigned  Bucket = "assigned"
	BucketPending   Bucket = "pending"
	BucketFollowUp  Bucket = "follow-up"
	BucketConverted Bucket = "converted"
)

// Buckets lists the buckets in tab order. Pending shares the assigned tab.
var Buckets = []Bucket{BucketAssigned, BucketFollowUp, BucketConverted}

// ParseBucket accepts the bucket names used in URLs and on the command line.
func ParseBucket(raw string) (Bucket, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "assigned":
		return BucketAssigned, true
	case "pending":
		return BucketPending, true
	case "follow-up", "followup", "follow_up":
		return BucketFollowUp, true
	case "converted":
		return BucketConverted, true
	default:
		return "", false
	}
}

// IsWorkQueue is true for the buckets whose first lead becomes the current call.
func (b Bucket) IsWorkQueue() bool {
	return b == BucketAssigned || b == BucketPending
}

// Label is the tab title for the bucket.
func (b Bucket) Label() string {
	switch b {
	case BucketAssigned:
		return "Assigned"
	case BucketPending:
		return "Pending"
	case BucketFollowUp:
		return "Follow-up"
	case BucketConverted:
		return "Converted"
	default:
		return string(b)
	}
}

// Ref points at another record (sheet, telecaller) as the API returned it.
type Ref struct {
	ID   string
	Name string
}

// Lead is a calling number imported from a sheet.
type Lead struct {
	ID           string
	Phone        string
	Name         string
	Status       Status
	FollowUpDate *time.Time
	Sheet        Ref
	AssignedTo   Ref
}

// UnknownName is stored when a lead has no usable name.
const UnknownName = "unknown"

// NormalizeName trims the input and substitutes UnknownName for an empty value.
func NormalizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return UnknownName
	}
	return trimmed
}

// HasName reports whether the lead carries a real name.
func (l Lead) HasName() bool {
	name := strings.TrimSpace(l.Name)
	return name != "" && !strings.EqualFold(name, UnknownName)
}
