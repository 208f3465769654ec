package models

// TelegramConfig stores the bot credentials and which notifications are forwarded
type TelegramConfig struct {
	IsEnabled bool   `json:"is_enabled"`
	BotToken  string `json:"bot_token"`
	ChatID    string `json:"chat_id"`

	// Empty means every notification type is forwarded
	Types []NotificationType `json:"types"`
}

// AllowsType checks if a notification type should be forwarded to the chat
func (c *TelegramConfig) AllowsType(t NotificationType) bool {
	if c == nil || !c.IsEnabled {
		return false
	}
	if len(c.Types) == 0 {
		return true
	}
	for _, allowed := range c.Types {
		if allowed == t {
			return true
		}
	}
	return false
}
