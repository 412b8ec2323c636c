package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/purplesanya/tg-bot/frontend/internal/accounts"
	"github.com/purplesanya/tg-bot/frontend/internal/session"
	"github.com/purplesanya/tg-bot/shared/domain"
	internal_errors "github.com/purplesanya/tg-bot/shared/errors"
	"github.com/purplesanya/tg-bot/shared/logger"
)

// AccountStore is the part of the account store the session-loss handler
// needs: drop the active account and pick the fallback atomically.
type AccountStore interface {
	RemoveActive() (domain.User, accounts.Data, error)
}

// APIClient is the single chokepoint for all communication with the
// scheduling backend.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client

	session  *session.Context
	accounts AccountStore
	log      *slog.Logger
}

// New creates a client whose cookie jar carries the backend session across
// calls, the way a browser would.
func New(baseURL string, timeout time.Duration, sess *session.Context, store AccountStore) *APIClient {
	jar, _ := cookiejar.New(nil) // never fails without options
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		session:  sess,
		accounts: store,
		log:      logger.Component("apiclient"),
	}
}

type request struct {
	method      string
	path        string // includes the query string
	route       string // low-cardinality label for metrics
	body        io.Reader
	contentType string
}

// do sends the request and decodes a 2xx JSON body into out (when non-nil).
// 401 runs the session-loss handler and yields ErrSessionExpired; other
// non-2xx responses yield *APIError; transport failures yield *NetworkError.
func (c *APIClient) do(ctx context.Context, r request, out any) error {
	op := r.method + " " + r.route

	req, err := http.NewRequestWithContext(ctx, r.method, c.BaseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("failed to create API request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		observe(r.route, outcomeNetwork)
		return &internal_errors.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		observe(r.route, outcomeUnauthorized)
		io.Copy(io.Discard, resp.Body)
		c.handleSessionLoss(op)
		return fmt.Errorf("%s: %w", op, internal_errors.ErrSessionExpired)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		observe(r.route, outcomeNetwork)
		return &internal_errors.NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observe(r.route, outcomeAPIError)
		return decodeAPIError(resp.StatusCode, bodyBytes)
	}

	observe(r.route, outcomeOK)
	if out == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("cannot decode %s response: %w", op, err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *internal_errors.APIError {
	apiErr := &internal_errors.APIError{StatusCode: status}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		apiErr.Message = http.StatusText(status)
		return apiErr
	}
	apiErr.Body = parsed
	if msg, ok := parsed["error"].(string); ok && msg != "" {
		apiErr.Message = msg
	} else {
		apiErr.Message = "API error"
	}
	if action, ok := parsed["action"].(string); ok {
		apiErr.Action = action
	}
	return apiErr
}

// handleSessionLoss drops the active account and requests navigation: a
// reload when another account remains, the entry point otherwise. Guarded by
// the shared session context so concurrent 401s run it once.
func (c *APIClient) handleSessionLoss(op string) {
	if !c.session.BeginEnding() {
		return
	}
	sessionLossTotal.Inc()

	removed, remaining, err := c.accounts.RemoveActive()
	if err != nil {
		c.log.Error("failed to drop expired account", "op", op, "error", err)
	}

	nav := session.Navigation{Kind: session.NavEntry}
	// an unsaved removal leaves the expired account active; reloading would
	// bootstrap it again
	if err == nil && remaining.ActiveAccountId != nil {
		nav.Kind = session.NavReload
	}
	c.log.Warn("session expired",
		"op", op,
		"account_id", removed.Id,
		"remaining", len(remaining.Accounts),
		"navigation", nav.Kind.String())
	c.session.Navigate(nav)
}

func (c *APIClient) getJSON(ctx context.Context, route, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, route: route}, out)
}

func (c *APIClient) postJSON(ctx context.Context, route, path string, in, out any) error {
	r := request{method: http.MethodPost, path: path, route: route}
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", route, err)
		}
		r.body = bytes.NewReader(jsonBody)
		r.contentType = "application/json"
	}
	return c.do(ctx, r, out)
}

// IsSessionExpired is re-exported for callers that only import apiclient.
func IsSessionExpired(err error) bool {
	return errors.Is(err, internal_errors.ErrSessionExpired)
}
