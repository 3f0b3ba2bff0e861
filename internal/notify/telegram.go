package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTelegramAPI     = "https://api.telegram.org"
	defaultTelegramTimeout = 10 * time.Second
)

// TelegramOptions configure the Telegram sink.
type TelegramOptions struct {
	BotToken string
	ChatID   string
	APIBase  string
	Timeout  time.Duration
}

// Telegram delivers notifications to one chat via the Bot API sendMessage
// method. Success and info notes are sent without a notification sound.
type Telegram struct {
	opts   TelegramOptions
	client *http.Client
	logger zerolog.Logger
}

type sendMessageRequest struct {
	ChatID              string `json:"chat_id"`
	Text                string `json:"text"`
	DisableNotification bool   `json:"disable_notification,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegram builds a sink from opts, filling the API base and timeout.
func NewTelegram(opts TelegramOptions, logger zerolog.Logger) *Telegram {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTelegramTimeout
	}
	if opts.APIBase == "" {
		opts.APIBase = defaultTelegramAPI
	}
	opts.APIBase = strings.TrimRight(opts.APIBase, "/")

	return &Telegram{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger.With().Str("component", "telegram").Str("chat_id", opts.ChatID).Logger(),
	}
}

func (t *Telegram) Notify(ctx context.Context, note Notification) error {
	msg := sendMessageRequest{
		ChatID:              t.opts.ChatID,
		Text:                telegramText(note),
		DisableNotification: note.Level == LevelSuccess || note.Level == LevelInfo,
	}
	if err := t.sendMessage(ctx, msg); err != nil {
		return fmt.Errorf("telegram %s note: %w", note.Level, err)
	}
	t.logger.Debug().Str("level", string(note.Level)).Msg("telegram message delivered")
	return nil
}

func (t *Telegram) sendMessage(ctx context.Context, msg sendMessageRequest) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode sendMessage: %w", err)
	}

	endpoint := t.opts.APIBase + "/bot" + t.opts.BotToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// the URL embeds the bot token, keep it out of the error
		return fmt.Errorf("post sendMessage: %w", redactToken(err, t.opts.BotToken))
	}
	defer resp.Body.Close()

	var result sendMessageResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if result.Description != "" {
			return fmt.Errorf("sendMessage status %d: %s", resp.StatusCode, result.Description)
		}
		return fmt.Errorf("sendMessage status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("decode sendMessage response: %w", decodeErr)
	}
	if !result.OK {
		return fmt.Errorf("sendMessage rejected: %s", result.Description)
	}
	return nil
}

// telegramText prefixes the message with its upper-cased level.
func telegramText(note Notification) string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(note.Level)), note.Message)
}

func redactToken(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<redacted>"))
}

var _ Notifier = (*Telegram)(nil)
