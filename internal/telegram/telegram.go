package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"studentnest/internal/models"
)

const defaultBaseURL = "https://api.telegram.org"

type Service struct {
	logger  *logrus.Logger
	client  *http.Client
	config  *models.TelegramConfig
	baseURL string
}

func NewService(logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

func (s *Service) UpdateConfig(config *models.TelegramConfig) {
	s.config = config
}

// SetBaseURL points the service at a different Bot API host
func (s *Service) SetBaseURL(url string) {
	s.baseURL = url
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(ctx context.Context, message string) error {
	if s.config == nil || !s.config.IsEnabled {
		return nil
	}

	if s.config.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build Telegram request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// Notify forwards a notification to the chat when its type is enabled
func (s *Service) Notify(ctx context.Context, n *models.Notification) error {
	if !s.config.AllowsType(n.Type) {
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"notification_id":   n.ID,
		"notification_type": n.Type,
	}).Debug("Forwarding notification to Telegram")

	return s.SendMessage(ctx, FormatNotification(n))
}

// FormatNotification renders a notification as a Telegram HTML message
func FormatNotification(n *models.Notification) string {
	var icon string
	switch n.Type {
	case models.NotifyBookingRequest:
		icon = "🏠"
	case models.NotifyInquiry, models.NotifyInquiryResponse:
		icon = "💬"
	default:
		icon = "🔔"
	}

	return fmt.Sprintf(
		"%s <b>%s</b>\n\n%s\n\n<i>%s</i>",
		icon,
		html.EscapeString(n.Title),
		html.EscapeString(n.Message),
		n.Type,
	)
}
