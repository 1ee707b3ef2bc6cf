package client

import (
	"context"
	"net/url"
)

// GraphService provides graph read operations.
type GraphService struct {
	c *Client
}

// Get fetches the full persisted graph snapshot.
func (s *GraphService) Get(ctx context.Context) (*Graph, error) {
	var graph Graph
	if err := s.c.get(ctx, "/api/v1/graph", nil, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// Neighbors fetches the tools adjacent to the given tool.
func (s *GraphService) Neighbors(ctx context.Context, toolID string) (*Neighborhood, error) {
	var n Neighborhood
	if err := s.c.get(ctx, "/api/v1/graph/neighbors/"+url.PathEscape(toolID), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
