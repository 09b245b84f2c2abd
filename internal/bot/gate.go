package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rg/gatekeeper/internal/chatstate"
	"github.com/rg/gatekeeper/internal/messaging"
	"github.com/rg/gatekeeper/internal/storage"
)

// handleMembersJoined runs the welcome gate for one join batch. The chat is
// locked for the whole batch, so retiring the previous gate messages and
// registering the new ones happen as one step with respect to other events
// in the same chat.
func (h *Handler) handleMembersJoined(evt *messaging.IncomingEvent) error {
	return h.store.Update(evt.ChatID, func(state *chatstate.ChatState) error {
		if state.DeleteJoinNotice && h.deleteBestEffort(evt.ChatID, evt.MessageID) {
			h.record(evt, storage.ActionJoinNoticeDeleted, evt.MessageID, evt.From.ID, "")
		}

		if !state.WelcomeEnabled {
			return nil
		}

		for _, id := range state.TakePending() {
			if h.deleteBestEffort(evt.ChatID, id) {
				h.record(evt, storage.ActionWelcomeRetired, id, "", "")
			}
		}

		var errs []error
		for _, member := range evt.NewMembers {
			id, err := h.sendWelcome(evt, member)
			if err != nil {
				errs = append(errs, err)
				continue
			}

			state.AddPending(id)

			if delay := state.AutoDeleteDelay(); delay > 0 && h.scheduler != nil {
				h.scheduler.ScheduleDelete(evt.ChatID, id, delay)
			}
		}

		slog.Info("Welcome gate posted",
			"event_id", evt.ID,
			"chat_id", evt.ChatID,
			"members", len(evt.NewMembers),
			"pending", len(state.PendingWelcomeIDs))

		return errors.Join(errs...)
	})
}

// sendWelcome posts the optional sticker and the gate message for one member
// and returns the gate message id. A failed gate send is not registered as
// pending.
func (h *Handler) sendWelcome(evt *messaging.IncomingEvent, member messaging.User) (string, error) {
	if h.stickerID != "" {
		if err := h.platform.SendSticker(evt.ChatID, h.stickerID); err != nil {
			slog.Warn("Failed to send welcome sticker",
				"chat_id", evt.ChatID,
				"user_id", member.ID,
				"error", h.sanitizer.Err(err))
		}
	}

	id, err := h.platform.SendMessage(&messaging.OutgoingMessage{
		ChatID:    evt.ChatID,
		Text:      h.selector.Render(member.DisplayName(), evt.ChatTitle),
		ParseMode: messaging.ParseModeHTML,
		Keyboard:  h.gate.Keyboard(0),
	})
	if err != nil {
		// Logged once by the caller through the joined batch error.
		reason := h.sanitizer.Err(err)
		h.record(evt, storage.ActionWelcomeFailed, "", member.ID, reason)
		return "", fmt.Errorf("failed to send welcome for user %s: %s", member.ID, reason)
	}

	h.record(evt, storage.ActionWelcomeSent, id, member.ID, "")
	return id, nil
}
