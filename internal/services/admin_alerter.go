package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// AdminAlerter pushes short operational messages to the sales team.
type AdminAlerter interface {
	Alert(ctx context.Context, text string) error
}

type telegramAlerter struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
}

// NewTelegramAlerter returns a disabled alerter when the token or chat id
// is missing.
func NewTelegramAlerter(botToken string, chatID int64) (AdminAlerter, error) {
	if botToken == "" || chatID == 0 {
		return &telegramAlerter{enabled: false}, nil
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &telegramAlerter{bot: bot, chatID: chatID, enabled: true}, nil
}

func (t *telegramAlerter) Alert(_ context.Context, text string) error {
	if !t.enabled {
		return nil
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("%w: telegram: %v", utils.ErrExternalServiceFailure, err)
	}
	return nil
}

// FormatLeadAlert renders the admin_new_lead values as a Telegram HTML
// message.
func FormatLeadAlert(v map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 <b>New %s</b>\n\n", html.EscapeString(orDefault(v["kind"], "lead")))
	for _, f := range []struct{ label, key string }{
		{"Name", "name"},
		{"Email", "email"},
		{"Phone", "phone"},
		{"Property", "property"},
		{"Message", "message"},
	} {
		if val := strings.TrimSpace(v[f.key]); val != "" {
			fmt.Fprintf(&b, "<b>%s:</b> %s\n", f.label, html.EscapeString(val))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
