package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/m3rciful/avatarbot/core/logger"

	"log/slog"
)

// Stage identifies the wizard's current waiting-for-input point for a chat.
type Stage int

const (
	// StageNone indicates no wizard is in progress.
	StageNone Stage = iota
	// StageAwaitingFormat expects a format menu selection.
	StageAwaitingFormat
	// StageAwaitingBackgroundChoice expects a background menu selection.
	StageAwaitingBackgroundChoice
	// StageAwaitingColor expects a color name typed as free text.
	StageAwaitingColor
	// StageAwaitingSeed expects the seed typed as free text.
	StageAwaitingSeed
)

// String returns the stage name for logging.
func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageAwaitingFormat:
		return "awaiting_format"
	case StageAwaitingBackgroundChoice:
		return "awaiting_background"
	case StageAwaitingColor:
		return "awaiting_color"
	case StageAwaitingSeed:
		return "awaiting_seed"
	}
	return "unknown"
}

// Session accumulates one chat's wizard selections.
type Session struct {
	Stage      Stage
	Style      string
	Format     string
	Background string
	// Color holds the raw typed name while the wizard runs; it is
	// overwritten with the resolved hex code right before the fetch.
	Color string
	Seed  string
}

type slot struct {
	mu      sync.Mutex
	sess    *Session
	touched time.Time
	// dead marks a slot detached from the store map; holders must retry.
	dead bool
}

// Store holds wizard sessions keyed by chat id. Access goes through Acquire,
// which grants exclusive ownership of one chat's slot until Release, so two
// concurrent updates for the same chat never interleave a transition.
type Store struct {
	mu    sync.Mutex
	slots map[int64]*slot
	ttl   time.Duration
}

// NewStore builds a session store. Sessions idle longer than ttl are dropped
// by Run; ttl <= 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		slots: make(map[int64]*slot),
		ttl:   ttl,
	}
}

// Handle is exclusive access to one chat's session slot. It must be released
// exactly once.
type Handle struct {
	store  *Store
	chatID int64
	slot   *slot
}

// Acquire locks the chat's slot, creating it if absent.
func (s *Store) Acquire(chatID int64) *Handle {
	for {
		s.mu.Lock()
		sl, ok := s.slots[chatID]
		if !ok {
			sl = &slot{}
			s.slots[chatID] = sl
		}
		s.mu.Unlock()

		sl.mu.Lock()
		if sl.dead {
			sl.mu.Unlock()
			continue
		}
		return &Handle{store: s, chatID: chatID, slot: sl}
	}
}

// Session returns the current session, or nil when the chat has none.
func (h *Handle) Session() *Session {
	return h.slot.sess
}

// Start overwrites the slot with a fresh session and returns it. Any
// in-progress wizard for the chat is discarded, never merged.
func (h *Handle) Start() *Session {
	h.slot.sess = &Session{Stage: StageNone}
	return h.slot.sess
}

// Discard removes the chat's session.
func (h *Handle) Discard() {
	h.slot.sess = nil
}

// Release unlocks the slot. Empty slots are detached from the store so
// completed wizards do not accumulate.
func (h *Handle) Release() {
	sl := h.slot
	if sl.sess == nil {
		sl.dead = true
		h.store.mu.Lock()
		if cur, ok := h.store.slots[h.chatID]; ok && cur == sl {
			delete(h.store.slots, h.chatID)
		}
		h.store.mu.Unlock()
	} else {
		sl.touched = time.Now()
	}
	sl.mu.Unlock()
}

// Peek returns a copy of the chat's session without creating one.
func (s *Store) Peek(chatID int64) (Session, bool) {
	s.mu.Lock()
	sl, ok := s.slots[chatID]
	s.mu.Unlock()
	if !ok {
		return Session{}, false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.dead || sl.sess == nil {
		return Session{}, false
	}
	return *sl.sess, true
}

// Len reports the number of live slots, for tests and diagnostics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Run expires abandoned sessions until ctx is done. It returns immediately
// when expiry is disabled.
func (s *Store) Run(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.sweep(now); removed > 0 {
				logger.WIZ.Info("sessions expired",
					slog.String("event", "session.expire"),
					slog.String("status", "ok"),
					slog.Int("rows", removed),
				)
			}
		}
	}
}

// sweep drops idle and empty slots. Busy slots are skipped and picked up on a
// later pass.
func (s *Store) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for chatID, sl := range s.slots {
		if !sl.mu.TryLock() {
			continue
		}
		if sl.sess == nil || now.Sub(sl.touched) > s.ttl {
			if sl.sess != nil {
				removed++
			}
			sl.dead = true
			delete(s.slots, chatID)
		}
		sl.mu.Unlock()
	}
	return removed
}
