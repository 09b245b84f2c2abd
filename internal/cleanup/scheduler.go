package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Deleter interface {
	DeleteMessage(chatID, messageID string) error
}

// DeleteCallback is invoked after each scheduled delete attempt, with the
// delete error (nil on success).
type DeleteCallback func(chatID, messageID string, err error)

// Scheduler deletes messages after a delay. Each scheduled delete runs in its
// own goroutine and is not supervised: there is no handle to cancel a single
// delete, and failures (already deleted, missing rights) are dropped. Stop
// abandons every pending delete at shutdown.
type Scheduler struct {
	deleter  Deleter
	ctx      context.Context
	cancel   context.CancelFunc
	callback DeleteCallback

	// mu orders wg.Add against the Wait in Stop.
	mu sync.Mutex
	wg sync.WaitGroup
}

func NewScheduler(deleter Deleter) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		deleter: deleter,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetDeleteCallback sets a callback invoked after each scheduled delete.
func (s *Scheduler) SetDeleteCallback(cb DeleteCallback) {
	s.callback = cb
}

// ScheduleDelete returns immediately; the delete fires after delay.
func (s *Scheduler) ScheduleDelete(chatID, messageID string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		slog.Debug("Scheduler stopped, dropping delete", "chat_id", chatID, "message_id", messageID)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-s.ctx.Done():
			return
		}

		err := s.deleter.DeleteMessage(chatID, messageID)
		if err != nil {
			slog.Debug("Scheduled delete failed", "chat_id", chatID, "message_id", messageID, "error", err)
		} else {
			slog.Debug("Scheduled delete done", "chat_id", chatID, "message_id", messageID)
		}

		if s.callback != nil {
			s.callback(chatID, messageID, err)
		}
	}()
}

// Wait blocks until every scheduled delete has fired or been abandoned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Stop abandons pending deletes and waits for in-flight ones to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Cleanup scheduler stopped")
}
