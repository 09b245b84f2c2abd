package telegram

import (
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rg/gatekeeper/internal/messaging"
)

type Client struct {
	bot *tgbotapi.BotAPI
}

func NewClient(token string) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot.Debug = false
	slog.Info("Authorized on Telegram account", "username", bot.Self.UserName)

	return &Client{
		bot: bot,
	}, nil
}

func (c *Client) SendMessage(msg *messaging.OutgoingMessage) (string, error) {
	chatIDInt, err := parseChatID(msg.ChatID)
	if err != nil {
		return "", err
	}

	out := tgbotapi.NewMessage(chatIDInt, msg.Text)
	out.ParseMode = msg.ParseMode
	out.DisableWebPagePreview = true
	if msg.Keyboard != nil {
		out.ReplyMarkup = convertKeyboard(msg.Keyboard)
	}

	sent, err := c.bot.Send(out)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return strconv.Itoa(sent.MessageID), nil
}

func (c *Client) DeleteMessage(chatID, messageID string) error {
	chatIDInt, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	messageIDInt, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("invalid message ID: %w", err)
	}

	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatIDInt, messageIDInt)); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}

func (c *Client) SendSticker(chatID, stickerID string) error {
	chatIDInt, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	if _, err := c.bot.Send(tgbotapi.NewSticker(chatIDInt, tgbotapi.FileID(stickerID))); err != nil {
		return fmt.Errorf("failed to send sticker: %w", err)
	}

	return nil
}

func (c *Client) AnswerCallback(callbackID, text string, showAlert bool) error {
	answer := tgbotapi.NewCallback(callbackID, text)
	answer.ShowAlert = showAlert

	if _, err := c.bot.Request(answer); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}

	return nil
}

// Start polls for updates and hands each one to handler in arrival order.
// It returns once Stop is called.
func (c *Client) Start(handler messaging.EventHandler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := c.bot.GetUpdatesChan(u)

	slog.Info("Telegram bot started, listening for updates")

	for update := range updates {
		evt := convertUpdate(&update)
		if evt == nil {
			continue
		}

		if err := handler(evt); err != nil {
			slog.Error("Error handling event", "kind", evt.Kind, "chat_id", evt.ChatID, "error", err)
		}
	}

	return nil
}

func (c *Client) Stop() {
	c.bot.StopReceivingUpdates()
}

func parseChatID(chatID string) (int64, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat ID: %w", err)
	}
	return chatIDInt, nil
}
