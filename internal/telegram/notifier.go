package telegram

import (
	"context"

	"go.uber.org/zap"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/observability"
)

// Notifier delivers CRM messages. Personal messages go through the global
// bot, group announcements and digests through the workspace's own bot.
type Notifier struct {
	client   *Client
	botToken string
	appURL   string
	log      *zap.Logger
}

func NewNotifier(client *Client, botToken, appURL string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{client: client, botToken: botToken, appURL: appURL, log: log}
}

// AppURL is the base of links rendered into messages.
func (n *Notifier) AppURL() string { return n.appURL }

// Personal sends a legacy-Markdown message to a user's chat.
// It is a no-op when the global bot is not configured.
func (n *Notifier) Personal(ctx context.Context, chatID, text string) error {
	if n.botToken == "" || chatID == "" {
		return nil
	}
	err := n.client.SendMessage(ctx, n.botToken, Message{ChatID: chatID, Text: text, ParseMode: ParseMarkdown})
	observability.RecordTelegramSend("personal", err)
	if err != nil {
		n.log.Warn("telegram personal message failed", zap.String("chat_id", chatID), zap.Error(err))
	}
	return err
}

// Group announces ev in the workspace chat if the workspace has a bot and
// its settings allow the event. Delivery failures are logged, not returned,
// so a broken chat never fails the mutation that triggered it.
func (n *Notifier) Group(ctx context.Context, ws dom.Workspace, ev dom.GroupEvent, data GroupEventData) {
	if !ws.HasTelegram() || !ws.NotificationSettings.Allows(ev) {
		return
	}
	err := n.client.SendMessage(ctx, *ws.TelegramBotToken, Message{
		ChatID:                *ws.TelegramChatID,
		Text:                  GroupMessage(n.appURL, ev, data),
		ParseMode:             ParseMarkdownV2,
		DisableWebPagePreview: true,
	})
	observability.RecordTelegramSend("group", err)
	if err != nil {
		n.log.Warn("telegram group message failed",
			zap.String("workspace", ws.ID), zap.String("event", string(ev)), zap.Error(err))
	}
}

// Workspace sends a preformatted MarkdownV2 text to the workspace chat.
func (n *Notifier) Workspace(ctx context.Context, ws dom.Workspace, kind, text string) error {
	if !ws.HasTelegram() {
		return nil
	}
	err := n.client.SendMessage(ctx, *ws.TelegramBotToken, Message{
		ChatID:                *ws.TelegramChatID,
		Text:                  text,
		ParseMode:             ParseMarkdownV2,
		DisableWebPagePreview: true,
	})
	observability.RecordTelegramSend(kind, err)
	return err
}
