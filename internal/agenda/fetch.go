package agenda

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"sessionics/internal/config"
	appLog "sessionics/internal/log"
)

// StatusError is a non-2xx answer from the agenda API.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("agenda: failed to fetch agenda, HTTP status %s", e.Status)
}

// Client retrieves the user's agenda from the agenda API.
type Client struct {
	client *http.Client
	cfg    *config.Config
}

// NewClient creates a Client. A nil hc uses http.DefaultClient, whose
// timeouts are the only ones applied.
func NewClient(cfg *config.Config, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{client: hc, cfg: cfg}
}

// FetchMyData performs the single POST to the configured endpoint and
// returns the raw body. Credentials must have been validated by the caller.
func (c *Client) FetchMyData(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	appLog.Info("retrieving agenda", "endpoint", redactURL(c.cfg.Endpoint))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agenda: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("agenda: read body: %w", err)
	}
	appLog.Debug("agenda fetched", "bytes", len(body))
	return body, nil
}

// setHeaders mimics the browser request the agenda page makes.
func (c *Client) setHeaders(req *http.Request) {
	h := req.Header
	h.Set("accept", "*/*")
	h.Set("accept-language", "en-US,en;q=0.9")
	h.Set("content-type", "application/x-www-form-urlencoded; charset=UTF-8")
	h.Set("rfapiprofileid", c.cfg.Credentials.ProfileID)
	h.Set("rfauthtoken", c.cfg.Credentials.AuthToken)
	h.Set("rfwidgetid", c.cfg.WidgetID)
	h.Set("cookie", c.cfg.Credentials.Cookie)
	h.Set("origin", c.cfg.Origin)
	h.Set("referer", c.cfg.Origin+"/")
	h.Set("priority", "u=1, i")
	h.Set("sec-ch-ua-mobile", "?0")
	h.Set("sec-fetch-dest", "empty")
	h.Set("sec-fetch-mode", "cors")
	h.Set("sec-fetch-site", "same-site")
}

// redactURL keeps only scheme and host for logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
