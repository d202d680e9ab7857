// Package export sends finished visit records to the external spreadsheet
// web app.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Alijeyrad/fieldcare/config"
	"github.com/Alijeyrad/fieldcare/internal/domain"
)

const unknownRejection = "erro desconhecido ao enviar para a planilha"

type reply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client posts records to the spreadsheet endpoint.
type Client struct {
	http *resty.Client
	url  string
}

func NewClient(cfg config.ExportConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{http: rc, url: cfg.URL}
}

// Configured reports whether an endpoint URL is set.
func (c *Client) Configured() bool { return c.url != "" }

// Send posts record as JSON. A JSON reply must say status "success";
// otherwise its message is returned as a RemoteError. Non-JSON replies only
// fail on a non-2xx status.
func (c *Client) Send(ctx context.Context, record domain.FormData) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(record).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("failed to reach spreadsheet endpoint: %w", err)
	}

	if strings.Contains(resp.Header().Get("Content-Type"), "application/json") {
		var r reply
		if err := json.Unmarshal(resp.Body(), &r); err != nil {
			return fmt.Errorf("failed to decode spreadsheet reply: %w", err)
		}
		if r.Status != "success" {
			msg := r.Message
			if msg == "" {
				msg = unknownRejection
			}
			return &RemoteError{Message: msg}
		}
		return nil
	}

	if !resp.IsSuccess() {
		return &RemoteError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
	}
	return nil
}
