package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/fantasy11/pkg/api"
)

// DefaultTimeout is the per-request timeout of the HTTP client.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies bearer tokens for authorized requests.
// The session manager implements it.
type TokenSource interface {
	// AccessToken returns the current access token or "" when anonymous
	AccessToken(ctx context.Context) (string, error)

	// Renew is called after the server rejected the token. It must finish
	// the refresh (or the logout cascade) before returning.
	Renew(ctx context.Context, rejected string) error
}

// Recorder receives one observation per HTTP round trip.
type Recorder interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string, int, time.Duration) {}

// Client представляет HTTP клиент для взаимодействия с API платформы
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	recorder   Recorder
	logger     *slog.Logger
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithTransport replaces the HTTP transport (tests, instrumentation).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		recorder: nopRecorder{},
		logger:   slog.Default(),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе (FastAPI редиректит /teams -> /teams/)
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource attaches the session. It is set after construction because
// the session itself needs the client for login and refresh.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type authMode int

const (
	authNone     authMode = iota // auth endpoints: never send a bearer token
	authOptional                 // public endpoints: send the token when logged in
	authRequired                 // fail fast with AuthError when anonymous
)

// request describes one API call.
type request struct {
	body     any
	form     *multipartForm
	query    url.Values
	method   string
	path     string
	route    string // шаблон пути для метрик, например /api/contests/{id}
	resource string // имя ресурса для NotFoundError
	auth     authMode
}

type multipartForm struct {
	fields map[string]string
	files  map[string]*api.Upload
}

// do runs the request, renewing the session and retrying once on 401.
func (c *Client) do(ctx context.Context, req request, result any) error {
	token, err := c.bearer(ctx, req.auth)
	if err != nil {
		return err
	}

	err = c.send(ctx, req, token, result)
	if err == nil || token == "" || c.tokens == nil {
		return err
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Status != http.StatusUnauthorized {
		return err
	}

	// Access token отклонён: обновляем сессию и повторяем запрос один раз
	if renewErr := c.tokens.Renew(ctx, token); renewErr != nil {
		return renewErr
	}

	token, err = c.bearer(ctx, req.auth)
	if err != nil {
		return err
	}
	return c.send(ctx, req, token, result)
}

func (c *Client) bearer(ctx context.Context, mode authMode) (string, error) {
	if mode == authNone || c.tokens == nil {
		if mode == authRequired {
			return "", &AuthError{Message: msgAuth}
		}
		return "", nil
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if token == "" && mode == authRequired {
		return "", &AuthError{Message: "not logged in"}
	}
	return token, nil
}

// send выполняет один HTTP запрос
func (c *Client) send(ctx context.Context, req request, token string, result any) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	bodyReader, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	route := req.route
	if route == "" {
		route = req.path
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recorder.ObserveRequest(req.method, route, 0, time.Since(start))
		// Отмена контекста вызывающим (уход со страницы) - не сетевая ошибка
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return &NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.recorder.ObserveRequest(req.method, route, resp.StatusCode, time.Since(start))

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := ""
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			message = errResp.Text()
		}
		c.logger.DebugContext(ctx, "api request failed",
			slog.String("method", req.method),
			slog.String("route", route),
			slog.Int("status", resp.StatusCode),
			slog.String("request_id", httpReq.Header.Get("X-Request-ID")),
		)
		return statusError(resp.StatusCode, req.resource, message)
	}

	// Декодируем успешный ответ
	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func encodeBody(req request) (io.Reader, string, error) {
	switch {
	case req.form != nil:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for name, value := range req.form.fields {
			if err := w.WriteField(name, value); err != nil {
				return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
			}
		}
		for name, file := range req.form.files {
			part, err := w.CreateFormFile(name, file.Filename)
			if err != nil {
				return nil, "", fmt.Errorf("failed to create form file %s: %w", name, err)
			}
			if _, err := part.Write(file.Data); err != nil {
				return nil, "", fmt.Errorf("failed to write form file %s: %w", name, err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
		}
		return &buf, w.FormDataContentType(), nil
	case req.body != nil:
		jsonData, err := json.Marshal(req.body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		return bytes.NewReader(jsonData), "application/json", nil
	}
	return nil, "", nil
}
