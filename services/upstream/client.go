// Package upstream is the HTTP/JSON client of the campus platform API the dashboard administers.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/resource"
	"github.com/trezcool/campusdesk/core/session"
)

// ErrUnavailable reports an upstream that could not be reached or did not answer.
var ErrUnavailable = errors.New("upstream API unavailable")

// APIError is a non-2xx answer of the upstream API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: %d %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	loginPath  string
	httpClient *http.Client
}

var (
	_ resource.Fetcher      = (*Client)(nil) // interface compliance check
	_ session.Authenticator = (*Client)(nil)
)

func NewClient(conf *core.Config) *Client {
	return NewClientWithHTTP(conf.Upstream.BaseURL, conf.Upstream.LoginPath, &http.Client{Timeout: conf.Upstream.Timeout})
}

func NewClientWithHTTP(baseURL, loginPath string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		loginPath:  loginPath,
		httpClient: httpClient,
	}
}

func (c *Client) GetJSON(ctx context.Context, token, path string, out interface{}) error {
	return c.doJSON(ctx, token, http.MethodGet, path, nil, out)
}

func (c *Client) SendJSON(ctx context.Context, token, method, path string, body, out interface{}) error {
	return c.doJSON(ctx, token, method, path, body, out)
}

type (
	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	loginResponse struct {
		Token string        `json:"token"`
		Admin *resource.Ref `json:"admin"`
		User  *resource.Ref `json:"user"`
	}
)

// Login signs an admin in. Rejected credentials are reported as session.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (session.Credentials, error) {
	var resp loginResponse
	err := c.doJSON(ctx, "", http.MethodPost, c.loginPath, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		if apiErr, ok := errors.Cause(err).(*APIError); ok {
			switch apiErr.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return session.Credentials{}, errors.Wrap(session.ErrInvalidCredentials, apiErr.Message)
			}
		}
		return session.Credentials{}, err
	}
	if resp.Token == "" {
		return session.Credentials{}, errors.New("upstream: login answered without a token")
	}

	creds := session.Credentials{Token: resp.Token}
	who := resp.Admin
	if who == nil {
		who = resp.User
	}
	if who != nil {
		creds.AdminID = who.ID
		creds.Name = who.Name
		creds.Email = who.Email
	}
	return creds, nil
}

func (c *Client) doJSON(ctx context.Context, token, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshaling request body")
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &errResp) == nil {
			if errResp.Message != "" {
				msg = errResp.Message
			} else if errResp.Error != "" {
				msg = errResp.Error
			}
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.Wrapf(err, "decoding %s %s", method, path)
		}
	}
	return nil
}
