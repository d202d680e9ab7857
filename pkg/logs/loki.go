package logs

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Alijeyrad/fieldcare/config"
)

// lokiWriter implements io.Writer that pushes JSON log lines to Loki's push
// API. Each Write() call is one log line.
type lokiWriter struct {
	client *resty.Client
	labels map[string]string
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

func newLokiWriter(cfg *config.Config) *lokiWriter {
	loki := cfg.Logging.Output.Loki
	client := resty.New().
		SetBaseURL(strings.TrimRight(loki.Endpoint, "/")).
		SetTimeout(3 * time.Second).
		SetHeader("Content-Type", "application/json")
	if loki.Username != "" {
		client.SetBasicAuth(loki.Username, loki.Password)
	}
	return &lokiWriter{
		client: client,
		labels: map[string]string{
			"service": cfg.Observability.ServiceName,
			"env":     cfg.Server.Environment,
		},
	}
}

func newLokiHandler(cfg *config.Config, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(newLokiWriter(cfg), &slog.HandlerOptions{Level: level})
}

func (lw *lokiWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	body := lokiPush{Streams: []lokiStream{{
		Stream: lw.labels,
		Values: [][2]string{{strconv.FormatInt(time.Now().UnixNano(), 10), line}},
	}}}

	if _, err := lw.client.R().SetBody(body).Post("/loki/api/v1/push"); err != nil {
		return 0, err
	}
	return len(p), nil
}
