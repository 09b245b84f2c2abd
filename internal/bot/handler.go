package bot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rg/gatekeeper/internal/chatstate"
	"github.com/rg/gatekeeper/internal/messaging"
	"github.com/rg/gatekeeper/internal/security"
	"github.com/rg/gatekeeper/internal/storage"
	"github.com/rg/gatekeeper/internal/welcome"
)

// Journal records moderation actions. Implemented by *storage.Storage.
type Journal interface {
	RecordAction(a *storage.Action) error
}

// DeleteScheduler deletes a message after a delay without blocking the caller.
type DeleteScheduler interface {
	ScheduleDelete(chatID, messageID string, delay time.Duration)
}

type Handler struct {
	platform  messaging.Platform
	store     *chatstate.Store
	selector  *welcome.Selector
	gate      *welcome.Gate
	scheduler DeleteScheduler
	sanitizer *security.Sanitizer
	journal   Journal
	stickerID string
}

func NewHandler(
	platform messaging.Platform,
	store *chatstate.Store,
	selector *welcome.Selector,
	gate *welcome.Gate,
	scheduler DeleteScheduler,
	sanitizer *security.Sanitizer,
	journal Journal,
	stickerID string,
) *Handler {
	return &Handler{
		platform:  platform,
		store:     store,
		selector:  selector,
		gate:      gate,
		scheduler: scheduler,
		sanitizer: sanitizer,
		journal:   journal,
		stickerID: stickerID,
	}
}

// HandleEvent dispatches one inbound event to its handler. Events that fail
// validation are logged and dropped.
func (h *Handler) HandleEvent(evt *messaging.IncomingEvent) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}

	if err := messaging.Validate(evt); err != nil {
		slog.Warn("Ignoring malformed event", "event_id", evt.ID, "error", err)
		return nil
	}

	slog.Info("Received event",
		"event_id", evt.ID,
		"kind", evt.Kind,
		"chat_id", evt.ChatID,
		"user_id", evt.From.ID)

	switch evt.Kind {
	case messaging.EventMembersJoined:
		return h.handleMembersJoined(evt)
	case messaging.EventMemberLeft:
		return h.handleMemberLeft(evt)
	case messaging.EventMessagePinned:
		return h.handleMessagePinned(evt)
	case messaging.EventCallback:
		return h.handleCallback(evt)
	case messaging.EventCommand:
		return h.handleCommand(evt)
	default:
		return fmt.Errorf("unhandled event kind %q", evt.Kind)
	}
}

// OnScheduledDelete journals deletions fired by the cleanup scheduler.
func (h *Handler) OnScheduledDelete(chatID, messageID string, err error) {
	if err != nil {
		return
	}
	h.record(&messaging.IncomingEvent{ID: "scheduled", ChatID: chatID}, storage.ActionWelcomeExpired, messageID, "", "")
}

// deleteBestEffort deletes a message and reports whether it worked. Failures
// are expected (already gone, missing rights) and only logged at debug.
func (h *Handler) deleteBestEffort(chatID, messageID string) bool {
	if err := h.platform.DeleteMessage(chatID, messageID); err != nil {
		slog.Debug("Best-effort delete failed",
			"chat_id", chatID,
			"message_id", messageID,
			"error", h.sanitizer.Err(err))
		return false
	}
	return true
}

func (h *Handler) record(evt *messaging.IncomingEvent, action, messageID, userID, detail string) {
	if h.journal == nil {
		return
	}

	err := h.journal.RecordAction(&storage.Action{
		EventID:   evt.ID,
		ChatID:    evt.ChatID,
		MessageID: messageID,
		UserID:    userID,
		Action:    action,
		Detail:    detail,
	})
	if err != nil {
		slog.Warn("Failed to journal action", "event_id", evt.ID, "action", action, "error", err)
	}
}

func (h *Handler) handleCommand(evt *messaging.IncomingEvent) error {
	switch evt.Command {
	case "start", "help":
		_, err := h.platform.SendMessage(&messaging.OutgoingMessage{
			ChatID: evt.ChatID,
			Text:   getHelpText(),
		})
		if err != nil {
			return fmt.Errorf("failed to send help: %w", err)
		}
		return nil
	default:
		slog.Debug("Ignoring command", "chat_id", evt.ChatID, "command", evt.Command)
		return nil
	}
}

func getHelpText() string {
	return "Hi! Add me to your group as an admin with the \"Delete messages\" right " +
		"so I can clean up join, leave and pin notices and post the locked welcome message."
}
