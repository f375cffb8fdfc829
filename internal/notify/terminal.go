package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"candlerank/internal/config"
)

// TerminalNotifier prints notifications to the terminal. It is the
// zero-configuration channel for watch mode: rank reports and errors
// show up inline with the command output, with an optional bell on
// errors.
type TerminalNotifier struct {
	mu           sync.Mutex
	writer       io.Writer
	enabled      bool
	bellEnabled  bool
	colorEnabled bool
}

// NewTerminalNotifier creates a terminal channel from configuration.
func NewTerminalNotifier(cfg config.TerminalConfig) *TerminalNotifier {
	return &TerminalNotifier{
		writer:       os.Stdout,
		enabled:      cfg.Enabled,
		bellEnabled:  cfg.Bell,
		colorEnabled: true,
	}
}

// Name returns the name of the notifier.
func (t *TerminalNotifier) Name() string {
	return "terminal"
}

// IsEnabled returns whether the notifier is enabled.
func (t *TerminalNotifier) IsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// SetColorEnabled enables or disables colored output.
func (t *TerminalNotifier) SetColorEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.colorEnabled = enabled
}

// SetWriter redirects output, primarily for tests.
func (t *TerminalNotifier) SetWriter(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writer = w
}

// Send prints the notification.
func (t *TerminalNotifier) Send(ctx context.Context, n Notification) error {
	t.mu.Lock()
	w := t.writer
	bell := t.bellEnabled
	color := t.colorEnabled
	t.mu.Unlock()

	if bell && n.Type == NotificationError {
		fmt.Fprint(w, "\a")
	}
	_, err := fmt.Fprintln(w, formatTerminalNotification(n, color))
	return err
}

// formatTerminalNotification renders a notification as a stamped
// header line followed by the message body indented beneath it.
func formatTerminalNotification(n Notification, colorEnabled bool) string {
	var indicator, color, reset string
	if colorEnabled {
		reset = "\033[0m"
	}

	switch n.Type {
	case NotificationRank:
		indicator = "📊 RANK"
		if colorEnabled {
			color = "\033[36m" // Cyan
		}
	case NotificationSignal:
		indicator = "🔔 SIGNAL"
		if colorEnabled {
			color = "\033[33m" // Yellow
		}
	case NotificationError:
		indicator = "❌ ERROR"
		if colorEnabled {
			color = "\033[31m" // Red
		}
	default:
		indicator = "ℹ️  INFO"
		if colorEnabled {
			color = "\033[37m" // White
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s[%s] %s%s", color, n.Timestamp.Format("15:04:05"), indicator, reset))

	if n.Title != "" {
		sb.WriteString(fmt.Sprintf(" | %s", n.Title))
	}

	if n.Message != "" {
		for _, line := range strings.Split(strings.TrimRight(n.Message, "\n"), "\n") {
			sb.WriteString("\n  ")
			sb.WriteString(line)
		}
	}

	return sb.String()
}
