package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/internal/utils"
	"github.com/rs/zerolog/log"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 1 << 20

// Client calls the unauthenticated auth endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BaseURL is the URL relative routes are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges email and password for a token pair
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCredentials, "email and password are required")
	}
	return c.postCredentials(ctx, RouteLogin, LoginRequest{Email: email, Password: password})
}

// Register creates an account; the response carries a token pair like Login
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*LoginResult, error) {
	return c.postCredentials(ctx, RouteRegister, req)
}

func (c *Client) postCredentials(ctx context.Context, route string, payload any) (*LoginResult, error) {
	status, body, err := c.do(ctx, http.MethodPost, route, "", payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		apiErr := NewAPIError(status, body)
		if status == http.StatusUnauthorized {
			return nil, errors.Join(apperrors.ErrInvalidCredentials, apiErr)
		}
		return nil, apiErr
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &apperrors.DecodeError{Field: "body", Reason: "invalid json", Err: err}
	}
	result, err := resp.validate()
	if err != nil {
		return nil, fmt.Errorf("[authapi %s]: %w", route, err)
	}
	return result, nil
}

// Refresh presents the refresh token and returns a new access token. Every
// non-2xx response is a rejection.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.ErrNoRefreshToken
	}

	status, body, err := c.do(ctx, http.MethodPost, RouteRefresh, refreshToken, nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", errors.Join(apperrors.ErrRefreshRejected, NewAPIError(status, body))
	}

	var resp refreshResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &apperrors.DecodeError{Field: "body", Reason: "invalid json", Err: err}
	}
	accessToken, err := resp.validate()
	if err != nil {
		return "", fmt.Errorf("[authapi refresh]: %w", err)
	}
	return accessToken, nil
}

// Logout tells the server the access token is no longer in use
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	status, body, err := c.do(ctx, http.MethodPost, RouteLogout, accessToken, nil)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return NewAPIError(status, body)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, route, bearer string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("[authapi %s] encode: %w", route, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, utils.ResolveURL(c.baseURL, route), reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("[authapi %s] new request: %w", route, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("[authapi %s] transport: %w", route, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("[authapi %s] read body: %w", route, err)
	}
	log.Debug().Str("route", route).Int("status", resp.StatusCode).Msg("Auth API call")
	return resp.StatusCode, body, nil
}

// NewAPIError builds an APIError from a non-2xx status and its {error, details} body
func NewAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil {
		apiErr.Message = e.Error
		apiErr.Details = e.Details
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
