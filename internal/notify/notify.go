// Package notify delivers ranking results and errors to external
// channels.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"candlerank/internal/config"
	"candlerank/internal/models"
)

// NotificationChannel defines the interface for a notification channel.
type NotificationChannel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
}

// Notification represents a notification message.
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]interface{}
	Timestamp time.Time
}

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRank   NotificationType = "rank"
	NotificationSignal NotificationType = "signal"
	NotificationError  NotificationType = "error"
	NotificationInfo   NotificationType = "info"
)

// NotificationLevel represents the notification level filter.
type NotificationLevel string

const (
	LevelAll        NotificationLevel = "all"
	LevelRanksOnly  NotificationLevel = "ranks_only"
	LevelErrorsOnly NotificationLevel = "errors_only"
)

// MultiNotifier sends notifications to multiple channels.
type MultiNotifier struct {
	channels []NotificationChannel
	level    NotificationLevel
	mu       sync.RWMutex
}

// NewMultiNotifier creates a notifier with the channels the config
// enables. Constructing an enabled Telegram channel requires reachable
// bot credentials.
func NewMultiNotifier(cfg *config.Config) (*MultiNotifier, error) {
	mn := &MultiNotifier{
		channels: make([]NotificationChannel, 0),
		level:    NotificationLevel(cfg.Notifications.Level),
	}

	if mn.level == "" {
		mn.level = LevelAll
	}

	if cfg.Notifications.Terminal.Enabled {
		mn.channels = append(mn.channels, NewTerminalNotifier(cfg.Notifications.Terminal))
	}
	if cfg.Notifications.Webhook.Enabled {
		mn.channels = append(mn.channels, NewWebhookNotifier(cfg.Notifications.Webhook))
	}
	if cfg.TelegramConfigured() {
		tg, err := NewTelegramNotifier(cfg.Credentials.Telegram)
		if err != nil {
			return nil, err
		}
		mn.channels = append(mn.channels, tg)
	}

	return mn, nil
}

// AddChannel adds a notification channel.
func (mn *MultiNotifier) AddChannel(ch NotificationChannel) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.channels = append(mn.channels, ch)
}

// HasChannels reports whether any channel is registered and enabled.
func (mn *MultiNotifier) HasChannels() bool {
	mn.mu.RLock()
	defer mn.mu.RUnlock()
	for _, ch := range mn.channels {
		if ch.IsEnabled() {
			return true
		}
	}
	return false
}

// shouldSend checks if a notification should be sent based on the level filter.
func (mn *MultiNotifier) shouldSend(notifType NotificationType) bool {
	switch mn.level {
	case LevelRanksOnly:
		return notifType == NotificationRank
	case LevelErrorsOnly:
		return notifType == NotificationError
	default:
		return true
	}
}

// Send sends a notification to all enabled channels.
func (mn *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if !mn.shouldSend(n.Type) {
		return nil
	}

	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	mn.mu.RLock()
	channels := mn.channels
	mn.mu.RUnlock()

	var errs []string
	for _, ch := range channels {
		if ch.IsEnabled() {
			if err := ch.Send(ctx, n); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SendRank sends a ranking summary. top limits the rows; 0 sends all.
func (mn *MultiNotifier) SendRank(ctx context.Context, run *models.RankRun, top int) error {
	title := fmt.Sprintf("📊 Pattern ranking: %s", run.Symbol)
	message := FormatRankReport(run, top)

	return mn.Send(ctx, Notification{
		Type:    NotificationRank,
		Title:   title,
		Message: message,
		Data: map[string]interface{}{
			"run_id":    run.ID,
			"symbol":    run.Symbol,
			"timeframe": run.Timeframe,
			"range":     run.Range,
			"horizon":   run.Horizon,
			"bars":      run.Bars,
		},
	})
}

// SendError sends an error notification.
func (mn *MultiNotifier) SendError(ctx context.Context, err error, context string) error {
	title := "❌ candlerank error"
	message := fmt.Sprintf("Context: %s\nError: %v", context, err)

	return mn.Send(ctx, Notification{
		Type:    NotificationError,
		Title:   title,
		Message: message,
		Data: map[string]interface{}{
			"context": context,
			"error":   err.Error(),
		},
	})
}

// FormatRankReport renders a saved run as a plain-text report.
func FormatRankReport(run *models.RankRun, top int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s, range %s, horizon %d, %d bars\n\n",
		run.Symbol, run.Timeframe, run.Range, run.Horizon, run.Bars)

	results := run.Results
	if top > 0 && len(results) > top {
		results = results[:top]
	}

	for i, r := range results {
		switch {
		case r.Err != "":
			fmt.Fprintf(&b, "%2d. %-18s error: %s\n", i+1, r.Pattern, r.Err)
		case !r.HasData():
			fmt.Fprintf(&b, "%2d. %-18s no data\n", i+1, r.Pattern)
		default:
			fmt.Fprintf(&b, "%2d. %-18s %5.1f%%  (%d/%d)  avg %+.2f%%\n",
				i+1, r.Pattern, r.SuccessRate*100, r.Successes, r.Hits, r.AvgReturn*100)
		}
	}

	if len(results) < len(run.Results) {
		fmt.Fprintf(&b, "\n... and %d more", len(run.Results)-len(results))
	}

	return b.String()
}

// WebhookNotifier sends notifications to an HTTP endpoint.
type WebhookNotifier struct {
	url     string
	enabled bool
	client  *http.Client
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		url:     cfg.URL,
		enabled: cfg.Enabled && cfg.URL != "",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the name of the notifier.
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// IsEnabled returns whether the notifier is enabled.
func (w *WebhookNotifier) IsEnabled() bool {
	return w.enabled
}

// Send sends a notification via webhook.
func (w *WebhookNotifier) Send(ctx context.Context, n Notification) error {
	if !w.enabled {
		return nil
	}

	payload := map[string]interface{}{
		"type":      n.Type,
		"title":     n.Title,
		"message":   n.Message,
		"data":      n.Data,
		"timestamp": n.Timestamp.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "candlerank/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// NoopNotifier discards notifications. Used when notifications are
// disabled and in tests.
type NoopNotifier struct{}

// Name returns the name of the notifier.
func (NoopNotifier) Name() string { return "noop" }

// IsEnabled returns whether the notifier is enabled.
func (NoopNotifier) IsEnabled() bool { return true }

// Send discards the notification.
func (NoopNotifier) Send(ctx context.Context, n Notification) error { return nil }
