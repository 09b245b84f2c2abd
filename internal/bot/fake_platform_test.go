package bot

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rg/gatekeeper/internal/messaging"
	"github.com/rg/gatekeeper/internal/storage"
)

type answer struct {
	callbackID string
	text       string
	showAlert  bool
}

type deleteCall struct {
	chatID    string
	messageID string
}

// fakePlatform records outbound calls. Message ids start at 1000.
type fakePlatform struct {
	mu          sync.Mutex
	nextID      int
	sent        []*messaging.OutgoingMessage
	stickers    []string
	deletes     []deleteCall
	answers     []answer
	existing    map[string]bool
	failSendTo  map[string]bool // member display names whose welcome send fails
	failDelete  bool
	failSticker bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		nextID:     1000,
		existing:   make(map[string]bool),
		failSendTo: make(map[string]bool),
	}
}

func (f *fakePlatform) SendMessage(msg *messaging.OutgoingMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name := range f.failSendTo {
		if name != "" && strings.Contains(msg.Text, name) {
			return "", errors.New("Forbidden: bot was kicked from the group chat")
		}
	}

	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.sent = append(f.sent, msg)
	f.existing[msg.ChatID+"/"+id] = true
	return id, nil
}

func (f *fakePlatform) DeleteMessage(chatID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, deleteCall{chatID, messageID})
	if f.failDelete {
		return errors.New("Bad Request: message can't be deleted")
	}
	key := chatID + "/" + messageID
	if !f.existing[key] {
		return errors.New("Bad Request: message to delete not found")
	}
	delete(f.existing, key)
	return nil
}

func (f *fakePlatform) SendSticker(chatID, stickerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSticker {
		return errors.New("Bad Request: wrong file identifier/HTTP URL specified")
	}
	f.stickers = append(f.stickers, stickerID)
	return nil
}

func (f *fakePlatform) AnswerCallback(callbackID, text string, showAlert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, answer{callbackID, text, showAlert})
	return nil
}

func (f *fakePlatform) Start(handler messaging.EventHandler) error { return nil }

func (f *fakePlatform) Stop() {}

// addExisting marks a service message as present so deleting it succeeds.
func (f *fakePlatform) addExisting(chatID, messageID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existing[chatID+"/"+messageID] = true
}

func (f *fakePlatform) deletesOf(messageID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.deletes {
		if d.messageID == messageID {
			n++
		}
	}
	return n
}

func (f *fakePlatform) isLive(chatID, messageID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[chatID+"/"+messageID]
}

type scheduledDelete struct {
	chatID    string
	messageID string
	delay     time.Duration
}

type fakeScheduler struct {
	scheduled []scheduledDelete
}

func (s *fakeScheduler) ScheduleDelete(chatID, messageID string, delay time.Duration) {
	s.scheduled = append(s.scheduled, scheduledDelete{chatID, messageID, delay})
}

type memoryJournal struct {
	mu      sync.Mutex
	actions []*storage.Action
}

func (j *memoryJournal) RecordAction(a *storage.Action) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.actions = append(j.actions, a)
	return nil
}

func (j *memoryJournal) count(action string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, a := range j.actions {
		if a.Action == action {
			n++
		}
	}
	return n
}
