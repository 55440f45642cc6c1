// Package client talks to the StudyCrew backend's REST endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/studycrew/web/internal/app/models"
	"github.com/studycrew/web/internal/app/models/dto"
	"github.com/studycrew/web/internal/pkg/apperrors"
)

// maxBodyBytes caps how much of an upstream response we read
const maxBodyBytes = 1 << 20

// Config holds the backend connection settings
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client, mainly for tests
	HTTPClient *http.Client
}

// Client is a thin JSON client for /login, /register and /courses
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  zerolog.Logger
}

// New creates a backend client
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		logger:  logger.With().Str("component", "backend_client").Logger(),
	}, nil
}

type cookiesKey struct{}

// WithCookies attaches browser cookies that should accompany upstream calls
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookiesKey{}, cookies)
}

func cookiesFrom(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(cookiesKey{}).([]*http.Cookie)
	return cookies
}

type relayKey struct{}

// CookieRelay receives each cookie the backend sets on a response
type CookieRelay func(*http.Cookie)

// WithCookieRelay passes cookies set by upstream responses to relay, so they
// can be handed on to the browser
func WithCookieRelay(ctx context.Context, relay CookieRelay) context.Context {
	return context.WithValue(ctx, relayKey{}, relay)
}

func relayCookies(ctx context.Context, resp *http.Response) {
	relay, _ := ctx.Value(relayKey{}).(CookieRelay)
	if relay == nil {
		return
	}
	for _, ck := range resp.Cookies() {
		relay(ck)
	}
}

// CoursesQuery encodes the /courses query string. The semester label is
// percent-encoded the way a browser's encodeURIComponent does it, so
// "Semester 1" becomes "Semester%201".
func CoursesQuery(year models.AcademicYear, semester models.Semester) string {
	return "year=" + strconv.Itoa(int(year)) + "&semester=" + url.PathEscape(semester.Label())
}

// Login checks credentials against POST /login
func (c *Client) Login(ctx context.Context, email, password string) (models.Identity, error) {
	return c.authenticate(ctx, "/login", dto.LoginRequest{Email: email, Password: password}, apperrors.ErrLoginFailed, apperrors.MsgLoginFailed)
}

// Register creates an account through POST /register
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (models.Identity, error) {
	return c.authenticate(ctx, "/register", req, apperrors.ErrRegisterFailed, apperrors.MsgRegisterFailed)
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}, failure error, fallback string) (models.Identity, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to encode %s request: %w", path, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, "", bytes.NewReader(payload))
	if err != nil {
		return models.Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Backend unreachable")
		return models.Identity{}, apperrors.NewCustomError(apperrors.ErrBackendUnavailable, apperrors.MsgUnreachable)
	}
	defer resp.Body.Close()
	relayCookies(ctx, resp)

	// The body is decoded before the status is looked at: a reply we cannot
	// parse is reported as such whatever its status.
	var out dto.AuthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Int("status", resp.StatusCode).Msg("Malformed backend response")
		return models.Identity{}, apperrors.NewCustomError(apperrors.ErrInvalidResponse, apperrors.MsgInvalidResponse).WithStatus(resp.StatusCode)
	}

	if !isOK(resp.StatusCode) {
		msg := out.Error
		if msg == "" {
			msg = fallback
		}
		sentinel := failure
		if resp.StatusCode == http.StatusUnauthorized {
			sentinel = apperrors.ErrInvalidCredentials
		}
		c.logger.Info().Str("path", path).Int("status", resp.StatusCode).Msg("Backend rejected credentials")
		return models.Identity{}, apperrors.NewCustomError(sentinel, msg).WithStatus(resp.StatusCode)
	}

	if out.User == nil || out.User.Email == "" || !out.User.Role.Valid() {
		c.logger.Warn().Str("path", path).Msg("Backend response has no usable user")
		return models.Identity{}, apperrors.NewCustomError(apperrors.ErrInvalidResponse, apperrors.MsgInvalidResponse).WithStatus(resp.StatusCode)
	}

	return out.User.Normalize(), nil
}

// Courses fetches GET /courses for one year and semester
func (c *Client) Courses(ctx context.Context, year models.AcademicYear, semester models.Semester) ([]models.Course, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/courses", CoursesQuery(year, semester), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Warn().Err(err).Int("year", int(year)).Int("semester", int(semester)).Msg("Course fetch failed")
		return nil, apperrors.NewCustomError(apperrors.ErrBackendUnavailable, apperrors.MsgFetchCourses)
	}
	defer resp.Body.Close()
	relayCookies(ctx, resp)

	body := io.LimitReader(resp.Body, maxBodyBytes)
	if !isOK(resp.StatusCode) {
		msg := apperrors.MsgFetchCourses
		var out dto.ErrorResponse
		if err := json.NewDecoder(body).Decode(&out); err == nil && out.Error != "" {
			msg = out.Error
		}
		c.logger.Warn().Int("status", resp.StatusCode).Msg("Backend refused course fetch")
		return nil, apperrors.NewCustomError(apperrors.ErrFetchCourses, msg).WithStatus(resp.StatusCode)
	}

	var courses []models.Course
	if err := json.NewDecoder(body).Decode(&courses); err != nil {
		c.logger.Warn().Err(err).Msg("Malformed course list")
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidResponse, apperrors.MsgInvalidResponse).WithStatus(resp.StatusCode)
	}
	return courses, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, rawQuery string, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	for _, ck := range cookiesFrom(ctx) {
		req.AddCookie(ck)
	}
	return req, nil
}

func isOK(status int) bool {
	return status >= 200 && status < 300
}
