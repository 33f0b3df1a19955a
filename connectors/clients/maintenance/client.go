// Package maintenance posts fleet maintenance alerts to an external
// ticketing endpoint with bearer authentication.
package maintenance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matveld/bms/auth"
	"github.com/matveld/bms/connectors"
	"github.com/matveld/bms/core/health"
)

// Client forwards alerts to a configured endpoint. Zero value is not
// usable; set the endpoint with WithEndpoint.
type Client struct {
	endpoint string
	timeout  time.Duration
}

// payload is the document posted to the endpoint.
type payload struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Count       int            `json:"count"`
	Alerts      []health.Alert `json:"alerts"`
}

// Forward posts the alerts. It requires the endpoint option to be set
// (directly or through a previous call). Nothing is sent for an empty
// alert list.
func (c *Client) Forward(authClient *auth.ClientCred, alerts []health.Alert, opts ...connectors.Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	if c.endpoint == "" {
		return fmt.Errorf("maintenance client has no endpoint")
	}
	if len(alerts) == 0 {
		return nil
	}

	body, err := json.Marshal(payload{GeneratedAt: time.Now().UTC(), Count: len(alerts), Alerts: alerts})
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authClient != nil {
		if err := authClient.SetAuthHeader(req); err != nil {
			return fmt.Errorf("failed to set auth header: %w", err)
		}
	}

	timeout := c.timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, msg)
	}
	return nil
}
