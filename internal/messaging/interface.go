package messaging

import "time"

type Platform interface {
	SendMessage(msg *OutgoingMessage) (string, error)
	DeleteMessage(chatID, messageID string) error
	SendSticker(chatID, stickerID string) error
	AnswerCallback(callbackID, text string, showAlert bool) error
	Start(handler EventHandler) error
	Stop()
}

type EventHandler func(evt *IncomingEvent) error

type EventKind string

const (
	EventCommand       EventKind = "command"
	EventMembersJoined EventKind = "members_joined"
	EventMemberLeft    EventKind = "member_left"
	EventMessagePinned EventKind = "message_pinned"
	EventCallback      EventKind = "callback"
)

func (k EventKind) String() string {
	return string(k)
}

// IncomingEvent is a platform-agnostic inbound update. MessageID is the id of
// the service message (join/leave/pin notice) or command message that carried
// the event.
type IncomingEvent struct {
	ID        string    `validate:"-"`
	Kind      EventKind `validate:"required,oneof=command members_joined member_left message_pinned callback"`
	ChatID    string    `validate:"required"`
	ChatTitle string
	MessageID string `validate:"required_unless=Kind callback"`
	From      User   `validate:"-"`
	Timestamp time.Time

	NewMembers []User `validate:"required_if=Kind members_joined,dive"`

	Command string `validate:"required_if=Kind command"`

	CallbackID   string `validate:"required_if=Kind callback"`
	CallbackData string
}

// OutgoingMessage represents a message to be sent by the bot
type OutgoingMessage struct {
	ChatID    string
	Text      string
	ParseMode string
	Keyboard  *Keyboard // Optional inline keyboard
}

// Keyboard is an inline keyboard laid out as rows of buttons. A button carries
// either a URL or callback data, never both.
type Keyboard struct {
	Rows [][]Button
}

type Button struct {
	Text         string
	URL          string
	CallbackData string
}

type User struct {
	ID        string `validate:"required"`
	Username  string
	FirstName string
	LastName  string
}

// DisplayName is the name shown to other chat members: first and last name,
// falling back to @username.
func (u User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" && u.Username != "" {
		name = "@" + u.Username
	}
	return name
}

const ParseModeHTML = "HTML"
