package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CommunityService provides community hierarchy read operations.
type CommunityService struct {
	c *Client
}

// Levels fetches the hierarchy levels stored for a run.
func (s *CommunityService) Levels(ctx context.Context, runID string) (*LevelList, error) {
	var list LevelList
	if err := s.c.get(ctx, "/api/v1/runs/"+url.PathEscape(runID)+"/levels", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// List fetches the communities at one level of a run.
func (s *CommunityService) List(ctx context.Context, runID string, level int) (*CommunityList, error) {
	params := url.Values{"level": {strconv.Itoa(level)}}

	var list CommunityList
	if err := s.c.get(ctx, "/api/v1/runs/"+url.PathEscape(runID)+"/communities", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListLatest fetches the communities at one level of the most recent
// completed run.
func (s *CommunityService) ListLatest(ctx context.Context, level int) (*CommunityList, error) {
	params := url.Values{"level": {strconv.Itoa(level)}}

	var list CommunityList
	if err := s.c.get(ctx, "/api/v1/communities", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Get fetches a single community by run, level and label.
func (s *CommunityService) Get(ctx context.Context, runID string, level, label int) (*Community, error) {
	var community Community
	path := fmt.Sprintf("/api/v1/runs/%s/communities/%d/%d", url.PathEscape(runID), level, label)
	if err := s.c.get(ctx, path, nil, &community); err != nil {
		return nil, err
	}
	return &community, nil
}
