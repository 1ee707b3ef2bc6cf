package client

import (
	"context"
	"net/url"
	"strconv"
)

// ToolService provides tool read operations.
type ToolService struct {
	c *Client
}

// Get fetches a single tool by ID.
func (s *ToolService) Get(ctx context.Context, id string) (*Tool, error) {
	var tool Tool
	if err := s.c.get(ctx, "/api/v1/tools/"+url.PathEscape(id), nil, &tool); err != nil {
		return nil, err
	}
	return &tool, nil
}

// List fetches tools ordered by ID, up to limit (0 uses the server default).
func (s *ToolService) List(ctx context.Context, limit int) (*ToolList, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var list ToolList
	if err := s.c.get(ctx, "/api/v1/tools", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
