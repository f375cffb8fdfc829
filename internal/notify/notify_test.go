package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"candlerank/internal/config"
	"candlerank/internal/models"
)

type recordingChannel struct {
	name    string
	enabled bool
	sent    []Notification
	err     error
}

func (r *recordingChannel) Name() string    { return r.name }
func (r *recordingChannel) IsEnabled() bool { return r.enabled }
func (r *recordingChannel) Send(ctx context.Context, n Notification) error {
	r.sent = append(r.sent, n)
	return r.err
}

func sampleRun() *models.RankRun {
	return &models.RankRun{
		ID:        "run-1",
		Symbol:    "EURUSD=X",
		Timeframe: "1d",
		Range:     "1y",
		Horizon:   5,
		Bars:      250,
		Results: []models.RankResult{
			{Pattern: "ENGULFING", Direction: "signed", Hits: 12, Successes: 9, SuccessRate: 0.75, AvgReturn: 0.0042},
			{Pattern: "HAMMER", Direction: "bullish", Hits: 4, Successes: 2, SuccessRate: 0.5, AvgReturn: -0.0015},
			{Pattern: "DOJI", Direction: "bullish"},
			{Pattern: "KICKING", Direction: "signed", Err: "non-finite close at index 7"},
		},
	}
}

func TestMultiNotifierLevelFilter(t *testing.T) {
	tests := []struct {
		level    NotificationLevel
		notType  NotificationType
		expected bool
	}{
		{LevelAll, NotificationRank, true},
		{LevelAll, NotificationError, true},
		{LevelAll, NotificationInfo, true},
		{LevelRanksOnly, NotificationRank, true},
		{LevelRanksOnly, NotificationError, false},
		{LevelRanksOnly, NotificationInfo, false},
		{LevelErrorsOnly, NotificationError, true},
		{LevelErrorsOnly, NotificationRank, false},
	}

	for _, tt := range tests {
		ch := &recordingChannel{name: "test", enabled: true}
		mn := &MultiNotifier{level: tt.level}
		mn.AddChannel(ch)

		err := mn.Send(context.Background(), Notification{Type: tt.notType, Title: "t"})
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}

		got := len(ch.sent) == 1
		if got != tt.expected {
			t.Errorf("Level %s, type %s: delivered=%v, want %v", tt.level, tt.notType, got, tt.expected)
		}
	}
}

func TestMultiNotifierSkipsDisabledChannels(t *testing.T) {
	enabled := &recordingChannel{name: "on", enabled: true}
	disabled := &recordingChannel{name: "off", enabled: false}

	mn := &MultiNotifier{level: LevelAll}
	mn.AddChannel(enabled)
	mn.AddChannel(disabled)

	if err := mn.Send(context.Background(), Notification{Type: NotificationInfo}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(enabled.sent) != 1 {
		t.Errorf("Enabled channel should receive, got %d", len(enabled.sent))
	}
	if len(disabled.sent) != 0 {
		t.Errorf("Disabled channel should not receive, got %d", len(disabled.sent))
	}
}

func TestMultiNotifierCollectsChannelErrors(t *testing.T) {
	ok := &recordingChannel{name: "good", enabled: true}
	bad := &recordingChannel{name: "bad", enabled: true, err: fmt.Errorf("boom")}

	mn := &MultiNotifier{level: LevelAll}
	mn.AddChannel(ok)
	mn.AddChannel(bad)

	err := mn.Send(context.Background(), Notification{Type: NotificationInfo})
	if err == nil {
		t.Fatal("Expected aggregated error")
	}
	if !strings.Contains(err.Error(), "bad: boom") {
		t.Errorf("Error should name the failing channel, got %v", err)
	}
	if len(ok.sent) != 1 {
		t.Error("Healthy channel should still receive despite sibling failure")
	}
}

func TestSendRankStampsTimestampAndData(t *testing.T) {
	ch := &recordingChannel{name: "test", enabled: true}
	mn := &MultiNotifier{level: LevelAll}
	mn.AddChannel(ch)

	if err := mn.SendRank(context.Background(), sampleRun(), 2); err != nil {
		t.Fatalf("SendRank failed: %v", err)
	}

	if len(ch.sent) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(ch.sent))
	}
	n := ch.sent[0]

	if n.Type != NotificationRank {
		t.Errorf("Expected rank type, got %s", n.Type)
	}
	if n.Timestamp.IsZero() {
		t.Error("Timestamp should be stamped")
	}
	if !strings.Contains(n.Title, "EURUSD=X") {
		t.Errorf("Title should name the symbol, got %q", n.Title)
	}
	if n.Data["run_id"] != "run-1" {
		t.Errorf("Data should carry the run id, got %v", n.Data["run_id"])
	}
}

func TestFormatRankReport(t *testing.T) {
	report := FormatRankReport(sampleRun(), 0)

	if !strings.Contains(report, "EURUSD=X 1d, range 1y, horizon 5, 250 bars") {
		t.Errorf("Report should carry the run header, got:\n%s", report)
	}
	if !strings.Contains(report, "ENGULFING") || !strings.Contains(report, "75.0%") {
		t.Errorf("Report should show the top pattern with its rate, got:\n%s", report)
	}
	if !strings.Contains(report, "(9/12)") {
		t.Errorf("Report should show hit counts, got:\n%s", report)
	}

	// No-data rows never show a percentage
	for _, line := range strings.Split(report, "\n") {
		if strings.Contains(line, "DOJI") && strings.Contains(line, "%") {
			t.Errorf("No-data row should not show a rate: %q", line)
		}
	}
	if !strings.Contains(report, "no data") {
		t.Errorf("Report should mark no-data patterns, got:\n%s", report)
	}
	if !strings.Contains(report, "error: non-finite close") {
		t.Errorf("Report should carry pattern errors, got:\n%s", report)
	}
}

func TestFormatRankReportTopN(t *testing.T) {
	report := FormatRankReport(sampleRun(), 2)

	if strings.Contains(report, "DOJI") {
		t.Errorf("Top 2 should omit the third pattern, got:\n%s", report)
	}
	if !strings.Contains(report, "and 2 more") {
		t.Errorf("Report should note truncation, got:\n%s", report)
	}
}

func TestWebhookNotifierPosts(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	wh := NewWebhookNotifier(config.WebhookConfig{Enabled: true, URL: server.URL})
	if !wh.IsEnabled() {
		t.Fatal("Webhook with URL should be enabled")
	}

	n := Notification{
		Type:    NotificationRank,
		Title:   "Pattern ranking: EURUSD=X",
		Message: "1. ENGULFING 75.0%",
		Data:    map[string]interface{}{"symbol": "EURUSD=X"},
	}
	if err := wh.Send(context.Background(), n); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if got["type"] != "rank" {
		t.Errorf("Expected rank type in payload, got %v", got["type"])
	}
	if got["title"] != "Pattern ranking: EURUSD=X" {
		t.Errorf("Unexpected title %v", got["title"])
	}
}

func TestWebhookNotifierRejectsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	wh := NewWebhookNotifier(config.WebhookConfig{Enabled: true, URL: server.URL})
	if err := wh.Send(context.Background(), Notification{Type: NotificationInfo}); err == nil {
		t.Error("Expected error for 502 response")
	}
}

func TestWebhookNotifierDisabledWithoutURL(t *testing.T) {
	wh := NewWebhookNotifier(config.WebhookConfig{Enabled: true})
	if wh.IsEnabled() {
		t.Error("Webhook without URL should be disabled")
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	in := "rate 75.0% (9/12) avg +0.42% [top]"
	out := escapeMarkdownV2(in)

	for _, want := range []string{`\.`, `\(`, `\)`, `\+`, `\[`, `\]`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q escaped in %q", want, out)
		}
	}
	if strings.Contains(out, "%%") {
		t.Errorf("Percent needs no escaping, got %q", out)
	}
}

func TestNoopNotifier(t *testing.T) {
	var n NoopNotifier
	if err := n.Send(context.Background(), Notification{Type: NotificationRank}); err != nil {
		t.Errorf("Noop send should never fail: %v", err)
	}
	if !n.IsEnabled() {
		t.Error("Noop is always enabled")
	}
}
