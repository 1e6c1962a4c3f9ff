package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iudanet/fantasy11/pkg/api"
)

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   req,
		auth:   authNone,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Register регистрирует нового пользователя. Бэкенд ждёт Form(...) поля, поэтому multipart.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.TokenResponse, error) {
	form := &multipartForm{
		fields: map[string]string{
			"username": req.Username,
			"email":    req.Email,
			"password": req.Password,
		},
		files: map[string]*api.Upload{},
	}
	if req.FullName != "" {
		form.fields["full_name"] = req.FullName
	}
	if req.Mobile != "" {
		form.fields["mobile"] = req.Mobile
	}
	if req.Avatar != nil {
		form.files["avatar"] = req.Avatar
	}

	var resp api.TokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/register",
		form:   form,
		auth:   authNone,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/refresh",
		query:  url.Values{"refresh_token": {refreshToken}},
		auth:   authNone,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает refresh token на сервере
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/logout",
		query:  url.Values{"refresh_token": {refreshToken}},
		auth:   authNone,
	}, nil)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Me returns the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*api.User, error) {
	var user api.User
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/api/users/me",
		auth:     authRequired,
		resource: "user",
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("get current user failed: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates the current user's display fields.
func (c *Client) UpdateProfile(ctx context.Context, upd api.ProfileUpdate) (*api.User, error) {
	q := url.Values{}
	if upd.FullName != "" {
		q.Set("full_name", upd.FullName)
	}
	if upd.AvatarURL != "" {
		q.Set("avatar_url", upd.AvatarURL)
	}

	var user api.User
	err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/api/users/me",
		query:    q,
		auth:     authRequired,
		resource: "user",
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("update profile failed: %w", err)
	}
	return &user, nil
}

// ResetPasswordByMobile sets a new password for the account bound to mobile.
func (c *Client) ResetPasswordByMobile(ctx context.Context, req api.ResetPasswordRequest) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/api/auth/reset-password-mobile",
		body:     req,
		auth:     authNone,
		resource: "account",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("reset password failed: %w", err)
	}
	return &resp, nil
}
