package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client talks to a user directory over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pageSize   int
}

// NewClient creates a client for the directory at baseURL.
// A nil httpClient means http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		pageSize:   DefaultPageSize,
	}
}

// WithPageSize returns a copy of the client requesting n users per page.
func (c *Client) WithPageSize(n int) *Client {
	clone := *c
	clone.pageSize = n
	return &clone
}

// ListUsers fetches one 1-based page of users.
func (c *Client) ListUsers(ctx context.Context, page int) ([]User, error) {
	q := url.Values{}
	q.Set("_page", strconv.Itoa(page))
	q.Set("_limit", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var users []User
	if err := c.do(req, http.StatusOK, &users); err != nil {
		return nil, fmt.Errorf("list users page %d: %w", page, err)
	}
	return users, nil
}

// CreateUser posts a user and returns the backend's view of it.
func (c *Client) CreateUser(ctx context.Context, u User) (User, error) {
	body, err := json.Marshal(u)
	if err != nil {
		return User{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var saved User
	if err := c.do(req, http.StatusCreated, &saved); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return saved, nil
}

func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
