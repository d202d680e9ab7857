// Package assist shapes the two AI text operations offered to the field
// team and forwards them to a remote generateContent endpoint.
package assist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Alijeyrad/fieldcare/config"
)

// Target is the audience of a rewrite.
type Target string

const (
	TargetRecord  Target = "record"
	TargetPatient Target = "patient"
)

func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetRecord, TargetPatient:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}
}

// Image is an inline picture sent along with a Populate request.
type Image struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Image  *Image `json:"image,omitempty"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

type Service interface {
	// Rewrite turns free visit notes into text for the given audience.
	Rewrite(ctx context.Context, text string, target Target) (string, error)
	// Populate fills the placeholders of template from source text and an
	// optional image.
	Populate(ctx context.Context, source, template string, image *Image) (string, error)
}

type assistService struct {
	http   *resty.Client
	url    string
	logger *slog.Logger
}

func New(cfg config.AssistConfig, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		rc.SetAuthToken(cfg.APIKey)
	}

	url := cfg.URL
	if !cfg.Enabled {
		url = ""
	}
	return &assistService{http: rc, url: url, logger: logger}
}

func (s *assistService) Rewrite(ctx context.Context, text string, target Target) (string, error) {
	if _, err := ParseTarget(string(target)); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	return s.generate(ctx, generateRequest{Prompt: buildRewritePrompt(text, target)})
}

func (s *assistService) Populate(ctx context.Context, source, template string, image *Image) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", ErrEmptyInput
	}
	if strings.TrimSpace(source) == "" && image == nil {
		return "", ErrEmptyInput
	}
	return s.generate(ctx, generateRequest{Prompt: buildPopulatePrompt(source, template), Image: image})
}

func (s *assistService) generate(ctx context.Context, req generateRequest) (string, error) {
	if s.url == "" {
		return "", ErrNotConfigured
	}

	var out generateResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post(s.url)
	if err != nil {
		s.logger.ErrorContext(ctx, "assist call failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if out.Error != "" {
		s.logger.WarnContext(ctx, "assist service returned an error", "status", resp.StatusCode(), "error", out.Error)
		return "", fmt.Errorf("%w: %s", ErrUpstream, out.Error)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
