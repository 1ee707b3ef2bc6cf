package client

import (
	"context"
	"net/url"
	"strconv"
)

// RunService provides pipeline run operations.
type RunService struct {
	c *Client
}

// Trigger starts a new pipeline run. The run executes asynchronously;
// poll Get/Latest or subscribe to the WebSocket event stream for progress.
func (s *RunService) Trigger(ctx context.Context) (*TriggerResponse, error) {
	var resp TriggerResponse
	if err := s.c.post(ctx, "/api/v1/runs", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches a run by ID.
func (s *RunService) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	if err := s.c.get(ctx, "/api/v1/runs/"+url.PathEscape(id), nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Latest fetches the most recent completed run.
func (s *RunService) Latest(ctx context.Context) (*Run, error) {
	var run Run
	if err := s.c.get(ctx, "/api/v1/runs/latest", nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// List fetches runs newest first, up to limit (0 uses the server default).
func (s *RunService) List(ctx context.Context, limit int) (*RunList, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var list RunList
	if err := s.c.get(ctx, "/api/v1/runs", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
