package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# candlerank Configuration

[data]
# Default timeframe: 1m, 5m, 15m, 30m, 1h, 4h, 1d or aliases M1, M5, M15, M30, H1, H4, D1
timeframe = "1d"
# Default fetch range: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max, or Nd (e.g. 60d)
range = "1y"
# Reporting timezone (IANA name), applied to all timestamps
timezone = "UTC"
# Append "=X" to plain forex pairs (EURUSD -> EURUSD=X)
auto_forex_suffix = true

[rank]
# Forward-return window in bars
horizon = 5
# Number of entries to show, 0 = all
top = 0
# Persist completed runs for the history command
save_runs = true

[cache]
# Serve candles from the local database when fresh
enabled = true
# Cache freshness window (e.g. "1h", "30m")
ttl = "1h"

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to the terminal
console = true
# Log to a rotating file under the config directory
file = true

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Time format
time_format = "15:04:05"

[notifications]
# Enable notifications (watch mode)
enabled = false
# Notification level: all, ranks_only, errors_only
level = "all"

[notifications.terminal]
# Print notifications to the terminal
enabled = true
# Ring the terminal bell on errors
bell = true

[notifications.webhook]
enabled = false
url = ""

[notifications.telegram]
# Bot token and chat id live in credentials.toml
enabled = false

# Per-pattern direction overrides for ranking.
# Values: bullish, bearish, signed
#[directions]
#GRAVESTONEDOJI = "bearish"
#DOJI = "bullish"
`

const credentialsTemplate = `# candlerank Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[telegram]
bot_token = ""
chat_id = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	// Use restricted permissions for credentials file
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return fmt.Errorf("credentials file not found, created template at %s", path)
}
