// Package scripts fetches the calling script the telecaller reads from.
package scripts

import (
	"context"
	"strings"

	"telecrm/platform/httpkit"
	"telecrm/platform/sanitize"
)

// Script is the active calling script.
type Script struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Empty reports whether there is nothing to show.
func (s Script) Empty() bool {
	return strings.TrimSpace(s.Title) == "" && strings.TrimSpace(s.Body) == ""
}

type scriptResponse struct {
	Script *Script `json:"script"`
}

// Client reads GET /scripts.
type Client struct {
	api *httpkit.Client
}

// New creates a scripts client.
func New(api *httpkit.Client) *Client {
	return &Client{api: api}
}

// Active returns the active script as plain text; the zero Script when none is set.
func (c *Client) Active(ctx context.Context) (Script, error) {
	var resp scriptResponse
	if err := c.api.Get(ctx, "/scripts", &resp); err != nil {
		return Script{}, err
	}
	if resp.Script == nil {
		return Script{}, nil
	}
	return Script{
		Title: sanitize.Line(sanitize.StripHTML(resp.Script.Title)),
		Body:  sanitize.Text(resp.Script.Body),
	}, nil
}
