package notify

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds one HTTP delivery attempt.
const DefaultTimeout = 3 * time.Second

// HTTP pushes events to a remote observer as JSON POSTs. Every failure
// (network error, timeout, non-2xx status, receiving end not running) is
// swallowed after a debug log.
type HTTP struct {
	url    string
	client *http.Client
}

// envelope is the wire shape observers receive.
type envelope struct {
	Event   string `json:"event"`
	Data    any    `json:"data"`
	BoardID string `json:"boardId"`
}

// NewHTTP creates an HTTP notifier for the given endpoint. A zero timeout
// uses DefaultTimeout.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTP) Publish(event string, payload any, boardID string) {
	body, err := json.Marshal(envelope{Event: event, Data: payload, BoardID: boardID})
	if err != nil {
		slog.Debug("notify marshal failed", "event", event, "error", err)
		return
	}

	resp, err := h.client.Post(h.url, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("notify delivery failed", "event", event, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		slog.Debug("notify endpoint rejected event", "event", event, "status", resp.StatusCode)
	}
}

// Close releases the client's idle connections.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
