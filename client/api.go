package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hoarding-server/models"
	apperrors "hoarding-server/utils/errors"
)

const (
	DefaultTimeout = 15 * time.Second
	MinTimeout     = 5 * time.Second
	MaxTimeout     = 15 * time.Second
)

// AuthResponse is the body of a successful login or registration.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// API is a thin typed client for the listings HTTP API. Responses are decoded
// into concrete types; a body that does not fit fails with VALIDATION_ERROR.
type API struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPI targets baseURL (for example http://localhost:5000/api). timeout is
// clamped to [MinTimeout, MaxTimeout]; zero means DefaultTimeout.
func NewAPI(baseURL string, timeout time.Duration) *API {
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: ClampTimeout(timeout)},
	}
}

func ClampTimeout(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultTimeout
	case d < MinTimeout:
		return MinTimeout
	case d > MaxTimeout:
		return MaxTimeout
	}
	return d
}

// Timeout is the per-request deadline.
func (a *API) Timeout() time.Duration {
	return a.httpClient.Timeout
}

func (a *API) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var res AuthResponse
	err := a.do(ctx, http.MethodPost, "/auth/login", nil, "", map[string]string{
		"email": email, "password": password,
	}, &res)
	if err == nil && res.Token == "" {
		err = apperrors.Validation("Malformed response", "login response has no token")
	}
	return res, err
}

func (a *API) Register(ctx context.Context, email, password string, role models.Role) (AuthResponse, error) {
	var res AuthResponse
	err := a.do(ctx, http.MethodPost, "/auth/register", nil, "", map[string]string{
		"email": email, "password": password, "role": string(role),
	}, &res)
	if err == nil && res.Token == "" {
		err = apperrors.Validation("Malformed response", "register response has no token")
	}
	return res, err
}

// Nearby fetches listings within radius meters of (lat, lng).
func (a *API) Nearby(ctx context.Context, lat, lng, radius float64) ([]models.Hoarding, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radius, 'f', -1, 64))
	var out []models.Hoarding
	if err := a.do(ctx, http.MethodGet, "/hoardings/nearby", q, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) All(ctx context.Context) ([]models.Hoarding, error) {
	var out []models.Hoarding
	if err := a.do(ctx, http.MethodGet, "/hoardings", nil, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) Add(ctx context.Context, token string, draft models.HoardingDraft) (models.Hoarding, error) {
	var h models.Hoarding
	err := a.do(ctx, http.MethodPost, "/hoardings/add", nil, token, draft, &h)
	return h, err
}

func (a *API) Update(ctx context.Context, token, id string, patch models.HoardingPatch) (models.Hoarding, error) {
	var h models.Hoarding
	err := a.do(ctx, http.MethodPut, "/hoardings/"+url.PathEscape(id), nil, token, patch, &h)
	return h, err
}

func (a *API) Delete(ctx context.Context, token, id string) error {
	return a.do(ctx, http.MethodDelete, "/hoardings/"+url.PathEscape(id), nil, token, nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	target := a.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperrors.Validation("Invalid request body", err.Error())
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return apperrors.Network(err, "Invalid server address")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Validation("Malformed response", fmt.Sprintf("%s %s: %v", method, path, err))
	}
	return nil
}

func networkError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.Network(err, "Request timed out")
	}
	return apperrors.Network(err, "Cannot connect to server. Please check your connection.")
}

// decodeError turns an error response into an APIError, falling back to the
// status line when the body is not one.
func decodeError(status int, raw []byte) error {
	var apiErr apperrors.APIError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Code != "" {
		if apiErr.Status == 0 {
			apiErr.Status = status
		}
		return &apiErr
	}
	return apperrors.NewAPIError("HTTP_ERROR", http.StatusText(status), status, strings.TrimSpace(string(raw)))
}
