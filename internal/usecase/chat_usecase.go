package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/fadilmartias/studypath/internal/model"
	"github.com/fadilmartias/studypath/internal/service"
	"go.uber.org/zap"
)

// ChatWindow is how many entries a chat log keeps.
const ChatWindow = 10

var ErrEmptyMessage = errors.New("message is empty")

// ChatSession is the bounded chat log of one student, newest entry first.
//
// Sends run concurrently but their results are applied in the order the sends were issued:
// every send takes a sequence number and a finished send waits in pending until all earlier
// ones resolved. A failed send resolves without an entry.
type ChatSession struct {
	advisor service.AdvisorServiceInterface
	log     *zap.Logger

	mu       sync.Mutex
	entries  []model.ChatEntry
	nextSeq  uint64
	applySeq uint64
	pending  map[uint64]*model.ChatEntry
	inFlight int
}

func NewChatSession(advisor service.AdvisorServiceInterface, log *zap.Logger) *ChatSession {
	return &ChatSession{
		advisor: advisor,
		log:     log.Named("ChatSession"),
		entries: []model.ChatEntry{},
		pending: make(map[uint64]*model.ChatEntry),
	}
}

// Load replaces the log with the first ChatWindow entries of the history, in service order.
func (cs *ChatSession) Load(ctx context.Context, studentID string) error {
	history, err := cs.advisor.ListChat(ctx, studentID)
	if err != nil {
		cs.log.Error("Failed to load chat history", zap.String("student_id", studentID), zap.Error(err))
		return err
	}
	if len(history) > ChatWindow {
		history = history[:ChatWindow]
	}

	cs.mu.Lock()
	cs.entries = slices.Clone(history)
	if cs.entries == nil {
		cs.entries = []model.ChatEntry{}
	}
	cs.mu.Unlock()
	return nil
}

// Send posts message and prepends the reply. Blank messages are rejected with ErrEmptyMessage
// before any remote call. The returned entry shows up in Entries once every earlier send resolved.
func (cs *ChatSession) Send(ctx context.Context, studentID, message string) (*model.ChatEntry, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	cs.mu.Lock()
	seq := cs.nextSeq
	cs.nextSeq++
	cs.inFlight++
	cs.mu.Unlock()

	entry, err := cs.advisor.PostChat(ctx, studentID, message)
	if err != nil {
		cs.log.Warn("Chat message failed", zap.String("student_id", studentID), zap.Uint64("seq", seq), zap.Error(err))
		entry = nil
	}

	cs.mu.Lock()
	cs.inFlight--
	cs.pending[seq] = entry
	cs.drainLocked()
	cs.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return entry, nil
}

// drainLocked applies every resolved send that is next in line.
func (cs *ChatSession) drainLocked() {
	for {
		entry, ok := cs.pending[cs.applySeq]
		if !ok {
			return
		}
		delete(cs.pending, cs.applySeq)
		cs.applySeq++
		if entry != nil {
			cs.prependLocked(*entry)
		}
	}
}

func (cs *ChatSession) prependLocked(entry model.ChatEntry) {
	if entry.ID != "" && slices.ContainsFunc(cs.entries, func(e model.ChatEntry) bool { return e.ID == entry.ID }) {
		return
	}
	cs.entries = slices.Insert(cs.entries, 0, entry)
	if len(cs.entries) > ChatWindow {
		cs.entries = cs.entries[:ChatWindow]
	}
}

// Entries returns a copy of the log, newest first.
func (cs *ChatSession) Entries() []model.ChatEntry {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return slices.Clone(cs.entries)
}

// Sending reports whether any send is still waiting for the service.
func (cs *ChatSession) Sending() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.inFlight > 0
}
