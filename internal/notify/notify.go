package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"briefdesk/internal/store"
)

// Config holds outbound notification settings.
type Config struct {
	Enabled bool   `json:"enabled"`
	Webhook string `json:"webhook"`
	NtfyURL string `json:"ntfy"`
}

// Notifier POSTs briefing events to an optional webhook and/or ntfy topic.
// Failures are logged and never propagated; the UI relay is the primary
// delivery path and this channel is best-effort extra.
type Notifier struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New returns a Notifier with the given config.
func New(cfg Config, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

// BriefingCreated announces a newly ingested briefing.
func (n *Notifier) BriefingCreated(b *store.Briefing) {
	n.send("briefing-created", b, fmt.Sprintf("New briefing: %s", b.Title))
}

// SummaryReady announces that a briefing's summary finished computing.
func (n *Notifier) SummaryReady(b *store.Briefing) {
	n.send("summary-ready", b, fmt.Sprintf("Summary ready: %s", b.Title))
}

func (n *Notifier) send(event string, b *store.Briefing, message string) {
	if !n.cfg.Enabled {
		return
	}
	if n.cfg.Webhook != "" {
		n.sendWebhook(event, b)
	}
	if n.cfg.NtfyURL != "" {
		n.sendNtfy(message, b)
	}
}

type webhookPayload struct {
	Event      string `json:"event"`
	BriefingID int64  `json:"briefing_id"`
	Title      string `json:"title"`
	Timestamp  string `json:"timestamp"`
}

func (n *Notifier) sendWebhook(event string, b *store.Briefing) {
	payload := webhookPayload{
		Event:      event,
		BriefingID: b.ID,
		Title:      b.Title,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	resp, err := n.client.Post(n.cfg.Webhook, "application/json", bytes.NewReader(data))
	if err != nil {
		n.logger.Warn("notify: webhook post failed", "err", err)
		return
	}
	resp.Body.Close()
}

type ntfyPayload struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags"`
}

func (n *Notifier) sendNtfy(title string, b *store.Briefing) {
	payload := ntfyPayload{
		Title:    title,
		Message:  b.Title,
		Priority: 3,
		Tags:     []string{"newspaper"},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	resp, err := n.client.Post(n.cfg.NtfyURL, "application/json", bytes.NewReader(data))
	if err != nil {
		n.logger.Warn("notify: ntfy post failed", "err", err)
		return
	}
	resp.Body.Close()
}
