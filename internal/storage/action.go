package storage

import (
	"fmt"
	"time"
)

const (
	ActionJoinNoticeDeleted  = "join_notice_deleted"
	ActionLeaveNoticeDeleted = "leave_notice_deleted"
	ActionPinNoticeDeleted   = "pin_notice_deleted"
	ActionWelcomeRetired     = "welcome_retired"
	ActionWelcomeSent        = "welcome_sent"
	ActionWelcomeFailed      = "welcome_failed"
	ActionWelcomeExpired     = "welcome_expired"
	ActionClaimDenied        = "claim_denied"
)

type Action struct {
	ID        int64
	EventID   string
	ChatID    string
	MessageID string
	UserID    string
	Action    string
	Detail    string
	CreatedAt time.Time
}

func (s *Storage) RecordAction(a *Action) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO actions (event_id, chat_id, message_id, user_id, action, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.EventID, a.ChatID, a.MessageID, a.UserID, a.Action, a.Detail, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

// GetRecentActions returns the newest actions for a chat, newest first.
func (s *Storage) GetRecentActions(chatID string, limit int) ([]*Action, error) {
	rows, err := s.db.Query(`
		SELECT id, event_id, chat_id, COALESCE(message_id, ''), COALESCE(user_id, ''), action, COALESCE(detail, ''), created_at
		FROM actions
		WHERE chat_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get actions: %w", err)
	}
	defer rows.Close()

	var actions []*Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.EventID, &a.ChatID, &a.MessageID, &a.UserID, &a.Action, &a.Detail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	return actions, nil
}

func (s *Storage) CountActions(chatID, action string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM actions WHERE chat_id = ? AND action = ?
	`, chatID, action).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}
	return count, nil
}

// DeleteActionsBefore removes journal rows older than cutoff and reports how
// many were removed.
func (s *Storage) DeleteActionsBefore(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM actions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old actions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
