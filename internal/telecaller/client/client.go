// Package client provides the HTTP client for the telecaller API.
package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	callsdomain "telecrm/internal/calls/domain"
	leadsdomain "telecrm/internal/leads/domain"
	"telecrm/internal/telecaller/transport"
	"telecrm/platform/apperr"
	"telecrm/platform/httpkit"
	"telecrm/platform/sanitize"
	"telecrm/platform/validator"
)

// Client is the HTTP client for the /telecaller routes.
type Client struct {
	api *httpkit.Client
	val *validator.Validator
}

// New creates a telecaller API client on top of the shared JSON client.
func New(api *httpkit.Client, val *validator.Validator) *Client {
	return &Client{api: api, val: val}
}

// List fetches the leads of bucket in server order.
func (c *Client) List(ctx context.Context, bucket leadsdomain.Bucket) ([]leadsdomain.Lead, error) {
	var resp transport.ListResponse
	if err := c.api.Get(ctx, "/telecaller/"+string(bucket), &resp); err != nil {
		return nil, err
	}

	leads := make([]leadsdomain.Lead, 0, len(resp.List))
	for _, raw := range resp.List {
		leads = append(leads, toLead(raw))
	}
	return leads, nil
}

// Counts fetches the number of leads per bucket.
func (c *Client) Counts(ctx context.Context) (transport.Counts, error) {
	var resp transport.CountsResponse
	if err := c.api.Get(ctx, "/telecaller/counts", &resp); err != nil {
		return transport.Counts{}, err
	}
	if resp.Counts == nil {
		return transport.Counts{}, nil
	}
	return *resp.Counts, nil
}

// CloseCall submits one outcome record for the lead.
func (c *Client) CloseCall(ctx context.Context, leadID string, rec callsdomain.Record) error {
	req := transport.CloseCallRequest{
		Outcome:        string(rec.Outcome),
		Interested:     rec.Interested,
		Converted:      rec.Converted,
		QuestionsAsked: rec.QuestionsAsked,
		Remark:         rec.Remark,
		FollowUpDate:   rec.FollowUpDate,
	}
	if err := c.val.Struct(req); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid outcome record", err).WithOp("telecaller.CloseCall")
	}
	return c.api.Post(ctx, callPath(leadID, "close"), req, nil)
}

// PreviousCall fetches the lead's latest outcome record, nil if none exists.
func (c *Client) PreviousCall(ctx context.Context, leadID string) (*callsdomain.Record, error) {
	var resp transport.PreviousCallResponse
	if err := c.api.Get(ctx, callPath(leadID, "previous-call"), &resp); err != nil {
		return nil, err
	}
	if resp.PreviousCall == nil {
		return nil, nil
	}
	rec := toRecord(*resp.PreviousCall)
	return &rec, nil
}

// UpdateName replaces the lead's display name.
func (c *Client) UpdateName(ctx context.Context, leadID, name string) error {
	req := transport.UpdateNameRequest{Name: name}
	if err := c.val.Struct(req); err != nil {
		return apperr.Wrap(apperr.KindValidation, "name is required", err).WithOp("telecaller.UpdateName")
	}
	return c.api.Patch(ctx, callPath(leadID, "name"), req, nil)
}

func callPath(leadID, action string) string {
	return fmt.Sprintf("/telecaller/calls/%s/%s", url.PathEscape(leadID), action)
}

func toLead(raw transport.Lead) leadsdomain.Lead {
	lead := leadsdomain.Lead{
		ID:         raw.Identifier(),
		Phone:      raw.Phone,
		Name:       sanitize.Line(raw.Name),
		Status:     leadsdomain.Status(raw.Status),
		Sheet:      leadsdomain.Ref{ID: raw.Sheet.ID, Name: sanitize.Line(raw.Sheet.Name)},
		AssignedTo: leadsdomain.Ref{ID: raw.AssignedTo.ID, Name: sanitize.Line(raw.AssignedTo.Name)},
	}
	if raw.FollowUpDate != nil && !raw.FollowUpDate.IsZero() {
		t := raw.FollowUpDate.Time
		lead.FollowUpDate = &t
	}
	return lead
}

func toRecord(raw transport.OutcomeRecord) callsdomain.Record {
	rec := callsdomain.Record{
		Outcome:        callsdomain.Outcome(raw.Outcome),
		Interested:     raw.Interested,
		Converted:      raw.Converted,
		QuestionsAsked: sanitize.Text(raw.QuestionsAsked),
		Remark:         sanitize.Text(raw.Remark),
		FollowUpDate:   raw.FollowUpDate.Day(),
		Telecaller:     sanitize.Line(raw.Telecaller.Name),
	}
	if rec.Telecaller == "" {
		rec.Telecaller = raw.Telecaller.ID
	}
	if raw.ClosedAt != nil && !raw.ClosedAt.IsZero() {
		t := raw.ClosedAt.Time.In(time.Local)
		rec.ClosedAt = &t
	}
	return rec
}
