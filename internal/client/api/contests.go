package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iudanet/fantasy11/pkg/api"
)

// ListContests returns a page of contests visible to the caller.
func (c *Client) ListContests(ctx context.Context, params api.ContestListParams) (*api.ContestListResponse, error) {
	q := url.Values{}
	if params.Status != "" {
		q.Set("status", string(params.Status))
	}
	if params.Query != "" {
		q.Set("q", params.Query)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(params.PageSize))
	}

	var resp api.ContestListResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/contests",
		query:  q,
		auth:   authOptional,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("list contests failed: %w", err)
	}
	return &resp, nil
}

// GetContest returns one contest.
func (c *Client) GetContest(ctx context.Context, contestID string) (*api.Contest, error) {
	var contest api.Contest
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/api/contests/" + url.PathEscape(contestID),
		route:    "/api/contests/{id}",
		auth:     authOptional,
		resource: "contest",
	}, &contest)
	if err != nil {
		return nil, fmt.Errorf("get contest failed: %w", err)
	}
	return &contest, nil
}

// Leaderboard returns one page of the contest leaderboard.
func (c *Client) Leaderboard(ctx context.Context, contestID string, params api.LeaderboardParams) (*api.LeaderboardResponse, error) {
	q := url.Values{}
	if params.Skip > 0 {
		q.Set("skip", strconv.Itoa(params.Skip))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	var resp api.LeaderboardResponse
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/api/contests/" + url.PathEscape(contestID) + "/leaderboard",
		route:    "/api/contests/{id}/leaderboard",
		query:    q,
		auth:     authOptional,
		resource: "leaderboard",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("get leaderboard failed: %w", err)
	}
	return &resp, nil
}

// Enroll enters a team into a contest.
func (c *Client) Enroll(ctx context.Context, contestID, teamID string) (*api.Enrollment, error) {
	var enrollment api.Enrollment
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/api/contests/" + url.PathEscape(contestID) + "/enroll",
		route:    "/api/contests/{id}/enroll",
		body:     api.EnrollRequest{TeamID: teamID},
		auth:     authRequired,
		resource: "contest",
	}, &enrollment)
	if err != nil {
		return nil, fmt.Errorf("enroll failed: %w", err)
	}
	return &enrollment, nil
}

// MyEnrollments lists the caller's enrollments across contests.
func (c *Client) MyEnrollments(ctx context.Context) ([]api.Enrollment, error) {
	var enrollments []api.Enrollment
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/contests/enrollments/me",
		auth:   authRequired,
	}, &enrollments)
	if err != nil {
		return nil, fmt.Errorf("list enrollments failed: %w", err)
	}
	return enrollments, nil
}

// ContestTeam returns a team's lineup and points within a contest.
func (c *Client) ContestTeam(ctx context.Context, contestID, teamID string) (*api.ContestTeam, error) {
	var team api.ContestTeam
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/api/contests/" + url.PathEscape(contestID) + "/teams/" + url.PathEscape(teamID),
		route:    "/api/contests/{id}/teams/{teamId}",
		auth:     authOptional,
		resource: "team",
	}, &team)
	if err != nil {
		return nil, fmt.Errorf("get contest team failed: %w", err)
	}
	return &team, nil
}
