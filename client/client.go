// Package client is a Go client for the reservation API. It attaches the bearer
// token, applies the booking rules locally before submitting, and decodes
// {"message": ...} error bodies into *APIError.
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
	"strings"
	"sync"
	"time"
)

const DefaultTimeout = 5 * time.Second

var (
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrFullyBooked   = errors.New("not enough seats left on that date")
	ErrAlreadyBooked = errors.New("you already have a reservation at this restaurant on that date")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn string `json:"expiresIn"`
}

type ReservationRequest struct {
	RestaurantID int64  `json:"restaurant_id,omitempty"`
	Date         string `json:"reservation_date"`
	Time         string `json:"reservation_time"`
	PeopleCount  int    `json:"people_count"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for baseURL, e.g. http://localhost:5001/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var user User
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/register", body, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login stores the returned token for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", body, false, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.Token)
	return &result, nil
}

func (c *Client) Restaurants(ctx context.Context) ([]Restaurant, error) {
	var restaurants []Restaurant
	if err := c.do(ctx, http.MethodGet, "/restaurants", nil, false, &restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (c *Client) Availability(ctx context.Context, restaurantID int64, date string) (*Availability, error) {
	var availability Availability
	path := fmt.Sprintf("/restaurants/%d/availability?date=%s", restaurantID, url.QueryEscape(date))
	if err := c.do(ctx, http.MethodGet, path, nil, false, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}

// Remaining returns the seats still free at the restaurant on date. When editing,
// pass the reservation being edited so its own party is counted as free.
func (c *Client) Remaining(ctx context.Context, restaurantID int64, date string, editing *ReservationDetail) (int, error) {
	availability, err := c.Availability(ctx, restaurantID, date)
	if err != nil {
		return 0, err
	}
	remaining := availability.Limit - availability.Reserved
	if editing != nil && editing.RestaurantID == restaurantID && editing.Date == date {
		remaining += editing.PeopleCount
	}
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (c *Client) CreateReservation(ctx context.Context, req ReservationRequest) (*Reservation, error) {
	var resp struct {
		Reservation Reservation `json:"reservation"`
	}
	if err := c.do(ctx, http.MethodPost, "/reservations", req, true, &resp); err != nil {
		return nil, err
	}
	return &resp.Reservation, nil
}

func (c *Client) UpdateReservation(ctx context.Context, id int64, req ReservationRequest) (*Reservation, error) {
	req.RestaurantID = 0
	var resp struct {
		Reservation Reservation `json:"reservation"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/reservations/%d", id), req, true, &resp); err != nil {
		return nil, err
	}
	return &resp.Reservation, nil
}

func (c *Client) DeleteReservation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/reservations/%d", id), nil, true, nil)
}

func (c *Client) MyReservations(ctx context.Context) ([]ReservationDetail, error) {
	var reservations []ReservationDetail
	if err := c.do(ctx, http.MethodGet, "/reservations/user", nil, true, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// ExportReservations downloads the caller's reservations as an xlsx workbook.
func (c *Client) ExportReservations(ctx context.Context) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/reservations/user/export", nil, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET /reservations/user/export: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}, auth bool) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if auth {
		token := c.Token()
		if token == "" {
			return nil, ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, auth bool, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body, auth)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
