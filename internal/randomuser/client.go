// Package randomuser fetches and decodes profiles from the randomuser.me API.
package randomuser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sverrors "github.com/go-drift/stateview/pkg/errors"
)

const (
	// DefaultURL is the public randomuser.me endpoint.
	DefaultURL = "https://randomuser.me/api/"

	// DefaultTimeout bounds one fetch, connection to last byte.
	DefaultTimeout = 5 * time.Second
)

// Gender selects which profiles the API may return.
type Gender int

const (
	GenderAny Gender = iota
	GenderMale
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "any"
	}
}

// ParseGender accepts "any", "male" or "female" (case-insensitive). The empty
// string is "any".
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return GenderAny, nil
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	}
	return GenderAny, fmt.Errorf("unknown gender %q (want any, male or female)", s)
}

// Client fetches raw profile payloads.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a client for baseURL with the specified timeout. An empty
// baseURL means DefaultURL; a timeout of zero means DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// DefaultClient returns a client for DefaultURL with DefaultTimeout.
func DefaultClient() *Client {
	return NewClient("", 0)
}

// URL returns the request URL for gender.
func (c *Client) URL(gender Gender) string {
	if gender == GenderAny {
		return c.baseURL
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}
	q := u.Query()
	q.Set("gender", gender.String())
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch returns the raw JSON body for one random profile. The body is not
// inspected; a 200 response carrying an API error is still returned as a
// payload. Every failure is a *errors.ViewError of KindFetch.
func (c *Client) Fetch(ctx context.Context, gender Gender) ([]byte, error) {
	const op = "randomuser.Fetch"
	target := c.URL(gender)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fetchError(op, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fetchError(op, fmt.Errorf("failed to fetch %s: %w", target, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetchError(op, fmt.Errorf("fetch failed: %s returned %s", target, resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchError(op, fmt.Errorf("failed to read response: %w", err))
	}
	return body, nil
}

func fetchError(op string, err error) error {
	return &sverrors.ViewError{
		Op:        op,
		Kind:      sverrors.KindFetch,
		Err:       err,
		Timestamp: time.Now(),
	}
}
