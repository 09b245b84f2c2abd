package bot

import (
	"fmt"
	"log/slog"

	"github.com/rg/gatekeeper/internal/messaging"
	"github.com/rg/gatekeeper/internal/storage"
	"github.com/rg/gatekeeper/internal/welcome"
)

func (h *Handler) handleMemberLeft(evt *messaging.IncomingEvent) error {
	if h.store.GetOrInit(evt.ChatID).DeleteLeaveNotice && h.deleteBestEffort(evt.ChatID, evt.MessageID) {
		h.record(evt, storage.ActionLeaveNoticeDeleted, evt.MessageID, evt.From.ID, "")
	}
	return nil
}

func (h *Handler) handleMessagePinned(evt *messaging.IncomingEvent) error {
	if h.store.GetOrInit(evt.ChatID).DeletePinNotice && h.deleteBestEffort(evt.ChatID, evt.MessageID) {
		h.record(evt, storage.ActionPinNoticeDeleted, evt.MessageID, evt.From.ID, "")
	}
	return nil
}

// handleCallback answers gate button presses. JOIN NOW always gets the same
// denial: nothing counts shares, so nothing is ever unlocked.
func (h *Handler) handleCallback(evt *messaging.IncomingEvent) error {
	if evt.CallbackData != welcome.ClaimAction {
		slog.Debug("Ignoring unknown callback", "chat_id", evt.ChatID, "data", evt.CallbackData)
		// Clears the button's loading state.
		if err := h.platform.AnswerCallback(evt.CallbackID, "", false); err != nil {
			return fmt.Errorf("failed to answer callback: %w", err)
		}
		return nil
	}

	if err := h.platform.AnswerCallback(evt.CallbackID, h.gate.DenialText(), true); err != nil {
		return fmt.Errorf("failed to answer claim: %w", err)
	}

	h.record(evt, storage.ActionClaimDenied, evt.MessageID, evt.From.ID, "")
	return nil
}
