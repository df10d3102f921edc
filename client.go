package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// apiEnvelope is the backend response shape shared by every auth endpoint.
type apiEnvelope struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// HTTPIdentityClient talks to the backend auth REST surface. It absorbs raw
// transport failures and returns classified errors; nothing above this
// boundary handles *http.Response or net errors directly.
type HTTPIdentityClient struct {
	baseURL string
	client  *http.Client
	logger  Logger
}

func NewHTTPIdentityClient(cfg Config) *HTTPIdentityClient {
	timeout := cfg.GetRequestTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPIdentityClient{
		baseURL: strings.TrimRight(cfg.GetAPIBaseURL(), "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  defLogger{},
	}
}

func (c *HTTPIdentityClient) WithLogger(logger Logger) *HTTPIdentityClient {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithHTTPClient overrides the underlying client (custom transports, test
// servers).
func (c *HTTPIdentityClient) WithHTTPClient(client *http.Client) *HTTPIdentityClient {
	if client != nil {
		c.client = client
	}
	return c
}

func (c *HTTPIdentityClient) Login(ctx context.Context, identifier, secret string) (*User, string, error) {
	body := map[string]string{
		"identifier": identifier,
		"secret":     secret,
	}

	raw, status, err := c.do(ctx, http.MethodPost, "/auth/login", "", body)
	if err != nil {
		return nil, "", err
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, "", err
	}

	if status == http.StatusUnauthorized || !env.Success {
		return nil, "", loginFailure(status, env.Message)
	}

	if env.User == nil || env.Token == "" {
		return nil, "", ErrMalformedResponse
	}

	return env.User, env.Token, nil
}

func (c *HTTPIdentityClient) Register(ctx context.Context, payload RegistrationPayload) (*User, string, error) {
	raw, status, err := c.do(ctx, http.MethodPost, "/auth/register", "", payload)
	if err != nil {
		return nil, "", err
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, "", err
	}

	if !env.Success || status >= http.StatusBadRequest {
		message := env.Message
		if message == "" {
			message = "registration rejected"
		}
		return nil, "", errors.New(message, errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	if env.User == nil {
		return nil, "", ErrMalformedResponse
	}

	// Token may be absent: some roles require verification before first login.
	return env.User, env.Token, nil
}

func (c *HTTPIdentityClient) Logout(ctx context.Context, token string) error {
	_, status, err := c.do(ctx, http.MethodPost, "/auth/logout", token, nil)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return errors.New("logout rejected by backend", errors.CategoryOperation)
	}
	return nil
}

func (c *HTTPIdentityClient) CurrentUser(ctx context.Context, token string) (*User, error) {
	raw, status, err := c.do(ctx, http.MethodGet, "/auth/me", token, nil)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, ErrSessionExpired
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}

	if !env.Success || env.User == nil {
		return nil, ErrMalformedResponse
	}

	return env.User, nil
}

// do issues the request and returns the raw body and status. Only transport
// level failures produce an error here; status handling belongs to callers.
func (c *HTTPIdentityClient) do(ctx context.Context, method, path, token string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.CategoryInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed: %s %s: %v", method, path, err)
		return nil, 0, errors.Wrap(err, errors.CategoryOperation, ErrNetworkUnavailable.Message).
			WithTextCode(textCodeNetwork)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, errors.Wrap(err, errors.CategoryOperation, ErrNetworkUnavailable.Message).
			WithTextCode(textCodeNetwork)
	}

	return raw, res.StatusCode, nil
}

func parseEnvelope(raw []byte) (*apiEnvelope, error) {
	env := new(apiEnvelope)
	if err := json.Unmarshal(raw, env); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, ErrMalformedResponse.Message).
			WithTextCode(textCodeMalformedResponse)
	}
	return env, nil
}

// loginFailure maps a rejected credential exchange to a user-facing error.
// The backend message is surfaced verbatim so forms can display it inline.
func loginFailure(status int, message string) error {
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		if message == "" {
			message = "invalid login request"
		}
		return errors.New(message, errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	if message == "" {
		return ErrInvalidCredentials
	}

	return errors.New(message, errors.CategoryAuth).
		WithTextCode(textCodeInvalidCredentials).
		WithCode(errors.CodeUnauthorized)
}

var _ IdentityClient = (*HTTPIdentityClient)(nil)
