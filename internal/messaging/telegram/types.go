package telegram

import (
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rg/gatekeeper/internal/messaging"
)

// convertUpdate maps a Bot API update to an event, or nil when the update is
// of no interest (plain chat messages, edits, inline queries).
func convertUpdate(update *tgbotapi.Update) *messaging.IncomingEvent {
	if update.CallbackQuery != nil {
		return convertCallback(update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}

	evt := &messaging.IncomingEvent{
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		ChatTitle: msg.Chat.Title,
		MessageID: strconv.Itoa(msg.MessageID),
		From:      convertUser(msg.From),
		Timestamp: time.Unix(int64(msg.Date), 0),
	}

	switch {
	case len(msg.NewChatMembers) > 0:
		evt.Kind = messaging.EventMembersJoined
		evt.NewMembers = make([]messaging.User, 0, len(msg.NewChatMembers))
		for i := range msg.NewChatMembers {
			evt.NewMembers = append(evt.NewMembers, convertUser(&msg.NewChatMembers[i]))
		}
	case msg.LeftChatMember != nil:
		evt.Kind = messaging.EventMemberLeft
	case msg.PinnedMessage != nil:
		evt.Kind = messaging.EventMessagePinned
	case msg.IsCommand():
		evt.Kind = messaging.EventCommand
		evt.Command = msg.Command()
	default:
		return nil
	}

	return evt
}

func convertCallback(cb *tgbotapi.CallbackQuery) *messaging.IncomingEvent {
	evt := &messaging.IncomingEvent{
		Kind:         messaging.EventCallback,
		From:         convertUser(cb.From),
		CallbackID:   cb.ID,
		CallbackData: cb.Data,
		Timestamp:    time.Now(),
	}

	// Inline-mode messages carry no chat; those callbacks fail validation downstream.
	if cb.Message != nil && cb.Message.Chat != nil {
		evt.ChatID = strconv.FormatInt(cb.Message.Chat.ID, 10)
		evt.ChatTitle = cb.Message.Chat.Title
		evt.MessageID = strconv.Itoa(cb.Message.MessageID)
	}

	return evt
}

func convertUser(u *tgbotapi.User) messaging.User {
	if u == nil {
		return messaging.User{}
	}
	return messaging.User{
		ID:        strconv.FormatInt(u.ID, 10),
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func convertKeyboard(kb *messaging.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.CallbackData))
			}
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
