package bot

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rg/gatekeeper/internal/messaging"
	"github.com/rg/gatekeeper/internal/security"
)

type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

func (rl *RateLimiter) Allow(chatID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	requests, exists := rl.requests[chatID]
	if !exists {
		rl.requests[chatID] = []time.Time{now}
		return true
	}

	var validRequests []time.Time
	for _, t := range requests {
		if t.After(cutoff) {
			validRequests = append(validRequests, t)
		}
	}

	if len(validRequests) >= rl.limit {
		rl.requests[chatID] = validRequests
		return false
	}

	validRequests = append(validRequests, now)
	rl.requests[chatID] = validRequests
	return true
}

func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window * 2)

	for chatID, requests := range rl.requests {
		var validRequests []time.Time
		for _, t := range requests {
			if t.After(cutoff) {
				validRequests = append(validRequests, t)
			}
		}

		if len(validRequests) == 0 {
			delete(rl.requests, chatID)
		} else {
			rl.requests[chatID] = validRequests
		}
	}
}

type Middleware struct {
	rateLimiter *RateLimiter
	sanitizer   *security.Sanitizer
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewMiddleware(rateLimit int, window time.Duration, sanitizer *security.Sanitizer) *Middleware {
	return &Middleware{
		rateLimiter: NewRateLimiter(rateLimit, window),
		sanitizer:   sanitizer,
		stop:        make(chan struct{}),
	}
}

// RateLimit throttles commands per chat. Membership, pin and callback events
// always pass: dropping them would leave notices undeleted or gates unanswered.
func (m *Middleware) RateLimit(handler messaging.EventHandler) messaging.EventHandler {
	return func(evt *messaging.IncomingEvent) error {
		if evt.Kind == messaging.EventCommand && !m.rateLimiter.Allow(evt.ChatID) {
			slog.Warn("Rate limit exceeded", "chat_id", evt.ChatID, "command", evt.Command)
			return nil
		}
		return handler(evt)
	}
}

// Logger logs each event's outcome and duration. Errors are logged with
// secrets redacted and not propagated further.
func (m *Middleware) Logger(handler messaging.EventHandler) messaging.EventHandler {
	return func(evt *messaging.IncomingEvent) error {
		start := time.Now()
		err := handler(evt)
		duration := time.Since(start)

		if err != nil {
			slog.Error("Event failed",
				"kind", evt.Kind,
				"chat_id", evt.ChatID,
				"event_id", evt.ID,
				"duration", duration,
				"error", m.sanitizer.Err(err))
			return nil
		}

		slog.Debug("Event handled",
			"kind", evt.Kind,
			"chat_id", evt.ChatID,
			"event_id", evt.ID,
			"duration", duration)
		return nil
	}
}

func (m *Middleware) StartCleanupWorker() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.rateLimiter.Cleanup()
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *Middleware) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	m.wg.Wait()
}
