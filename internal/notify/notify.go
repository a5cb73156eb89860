package notify

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Notifier pings a webhook with a free-text status line while a room
// sits waiting for players. Strictly best-effort: every call runs on its
// own goroutine and failures only make it into the log.
type Notifier struct {
	url    string
	client *http.Client
	log    *slog.Logger
}

// New returns a Notifier, or nil when no URL is configured. A nil
// Notifier swallows all calls.
func New(rawURL string, log *slog.Logger) *Notifier {
	if rawURL == "" {
		return nil
	}
	return &Notifier{
		url:    rawURL,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

// Send fires the webhook with text in the query string and forgets it.
func (n *Notifier) Send(text string) {
	if n == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		u := n.url + "?text=" + url.QueryEscape(text)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			n.log.Error("notify.build", "err", err)
			return
		}
		resp, err := n.client.Do(req)
		if err != nil {
			n.log.Error("notify.send", "err", err)
			return
		}
		_ = resp.Body.Close()
		n.log.Debug("notify.sent", "status", resp.StatusCode)
	}()
}
