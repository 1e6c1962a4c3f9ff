package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iudanet/fantasy11/pkg/api"
)

// CreateTeam создает новую команду
func (c *Client) CreateTeam(ctx context.Context, in api.TeamInput) (*api.Team, error) {
	var team api.Team
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/teams/",
		body:   in,
		auth:   authRequired,
	}, &team)
	if err != nil {
		return nil, fmt.Errorf("create team failed: %w", err)
	}
	return &team, nil
}

// ListTeams возвращает команды текущего пользователя
func (c *Client) ListTeams(ctx context.Context, skip, limit int) (*api.TeamListResponse, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var resp api.TeamListResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/teams/",
		query:  q,
		auth:   authRequired,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("list teams failed: %w", err)
	}
	return &resp, nil
}

// GetTeam возвращает команду по ID
func (c *Client) GetTeam(ctx context.Context, teamID string) (*api.Team, error) {
	var team api.Team
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/api/teams/" + url.PathEscape(teamID),
		route:    "/api/teams/{id}",
		auth:     authRequired,
		resource: "team",
	}, &team)
	if err != nil {
		return nil, fmt.Errorf("get team failed: %w", err)
	}
	return &team, nil
}

// UpdateTeam применяет частичное обновление команды
func (c *Client) UpdateTeam(ctx context.Context, teamID string, upd api.TeamUpdate) (*api.Team, error) {
	var team api.Team
	err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/api/teams/" + url.PathEscape(teamID),
		route:    "/api/teams/{id}",
		body:     upd,
		auth:     authRequired,
		resource: "team",
	}, &team)
	if err != nil {
		return nil, fmt.Errorf("update team failed: %w", err)
	}
	return &team, nil
}

// RenameTeam меняет только название команды
func (c *Client) RenameTeam(ctx context.Context, teamID, name string) (*api.Team, error) {
	var team api.Team
	err := c.do(ctx, request{
		method:   http.MethodPatch,
		path:     "/api/teams/" + url.PathEscape(teamID) + "/rename",
		route:    "/api/teams/{id}/rename",
		query:    url.Values{"team_name": {name}},
		auth:     authRequired,
		resource: "team",
	}, &team)
	if err != nil {
		return nil, fmt.Errorf("rename team failed: %w", err)
	}
	return &team, nil
}

// DeleteTeam удаляет команду
func (c *Client) DeleteTeam(ctx context.Context, teamID string) error {
	err := c.do(ctx, request{
		method:   http.MethodDelete,
		path:     "/api/teams/" + url.PathEscape(teamID),
		route:    "/api/teams/{id}",
		auth:     authRequired,
		resource: "team",
	}, nil)
	if err != nil {
		return fmt.Errorf("delete team failed: %w", err)
	}
	return nil
}
