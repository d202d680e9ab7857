package export

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/fieldcare/config"
	"github.com/Alijeyrad/fieldcare/internal/domain"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.ExportConfig{URL: srv.URL, TimeoutSeconds: 2})
}

func TestClientSend(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "json success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"status":"success"}`))
			},
		},
		{
			name: "json rejection carries message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				_, _ = w.Write([]byte(`{"status":"error","message":"planilha bloqueada"}`))
			},
			wantErr: "planilha bloqueada",
		},
		{
			name: "json rejection without message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"status":"error"}`))
			},
			wantErr: unknownRejection,
		},
		{
			name: "non json success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html>ok</html>"))
			},
		},
		{
			name: "non json failure carries body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("script crashed"))
			},
			wantErr: "script crashed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, tt.handler)
			err := c.Send(context.Background(), domain.FormData{"cpf": "1"})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var re *RemoteError
			require.ErrorAs(t, err, &re)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClientPostsRecordAsJSON(t *testing.T) {
	var got map[string]any
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, c.Send(context.Background(), domain.FormData{"cpf": "123", "pressao": "120/80"}))
	assert.Equal(t, "123", got["cpf"])
	assert.Equal(t, "120/80", got["pressao"])
}

func TestClientNotConfigured(t *testing.T) {
	c := NewClient(config.ExportConfig{})
	assert.False(t, c.Configured())
	assert.ErrorIs(t, c.Send(context.Background(), domain.FormData{}), ErrNotConfigured)
}

type recordingSender struct {
	mu      sync.Mutex
	records []domain.FormData
	fail    bool
	block   chan struct{}
}

func (s *recordingSender) Send(_ context.Context, record domain.FormData) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	if s.fail {
		return errors.New("boom")
	}
	return nil
}

func TestQueueDeliversAndDrains(t *testing.T) {
	sender := &recordingSender{fail: true}
	q := NewQueue(sender, 8, time.Second, nil)
	q.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(domain.FormData{"n": float64(i)}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Len(t, sender.records, 5)

	assert.ErrorIs(t, q.Enqueue(domain.FormData{}), ErrQueueStopped)
	assert.NoError(t, q.Stop(ctx), "Stop must be idempotent")
}

func TestQueueFull(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	q := NewQueue(sender, 1, time.Second, nil)

	// Without a running worker the buffer fills after one record.
	require.NoError(t, q.Enqueue(domain.FormData{"n": 1.0}))
	assert.ErrorIs(t, q.Enqueue(domain.FormData{"n": 2.0}), ErrQueueFull)

	close(sender.block)
	q.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))
}
