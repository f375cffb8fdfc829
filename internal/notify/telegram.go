package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"candlerank/internal/config"
	"candlerank/internal/errors"
)

// TelegramNotifier sends notifications via Telegram bot.
type TelegramNotifier struct {
	bot            *tgbotapi.BotAPI
	token          string
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewTelegramNotifier creates a Telegram channel from bot credentials.
func NewTelegramNotifier(creds config.TelegramCredentials) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(creds.BotToken)
	if err != nil {
		return nil, errors.NewNotifyError("telegram", "failed to create bot",
			redactToken(err, creds.BotToken))
	}

	chatID, err := strconv.ParseInt(creds.ChatID, 10, 64)
	if err != nil {
		return nil, errors.NewNotifyError("telegram", "invalid chat id", err)
	}

	return &TelegramNotifier{
		bot:            bot,
		token:          creds.BotToken,
		chatID:         chatID,
		maxRetries:     3,
		retryDelayBase: time.Second,
	}, nil
}

// Name returns the name of the notifier.
func (t *TelegramNotifier) Name() string {
	return "telegram"
}

// IsEnabled returns whether the notifier is enabled.
func (t *TelegramNotifier) IsEnabled() bool {
	return t.bot != nil
}

// Send sends a notification via Telegram as MarkdownV2.
func (t *TelegramNotifier) Send(ctx context.Context, n Notification) error {
	text := fmt.Sprintf("*%s*\n\n```\n%s\n```",
		escapeMarkdownV2(n.Title), escapeMarkdownV2Code(n.Message))
	return t.sendMarkdownV2(ctx, text)
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (t *TelegramNotifier) sendMarkdownV2(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < t.maxRetries; i++ {
		if _, err := t.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.retryDelayBase * time.Duration(i+1)):
		}
	}
	return errors.NewNotifyError("telegram",
		fmt.Sprintf("failed after %d retries", t.maxRetries), redactToken(lastErr, t.token))
}

// redactToken masks the bot token wherever an error echoes it, such as
// request URLs reported by the Bot API client. The original chain is
// dropped so wrapped errors cannot resurface the token.
func redactToken(err error, token string) error {
	if err == nil || token == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, token) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(msg, token, maskCredential(token)))
}

// maskCredential keeps just enough of a credential to recognize it.
func maskCredential(value string) string {
	if len(value) == 0 {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// escapeMarkdownV2Code escapes the characters MarkdownV2 treats
// specially inside a code block.
func escapeMarkdownV2Code(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/8)
	for _, char := range text {
		switch char {
		case '`', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
