package conversation

import (
	"log/slog"
	"sync"
)

// Snapshot is a read-only copy of the store state
type Snapshot struct {
	Handle Handle
	Epoch  uint64
	Turns  []Turn
}

// Empty reports whether the snapshot has no turns at all
func (s Snapshot) Empty() bool {
	return len(s.Turns) == 0
}

// History returns the turns that are replayed to the backend, in order
func (s Snapshot) History() []Turn {
	history := make([]Turn, 0, len(s.Turns))
	for _, t := range s.Turns {
		if !t.Synthetic {
			history = append(history, t)
		}
	}
	return history
}

// Store owns the canonical ordered turn list and the active handle.
// Append is the only incremental mutation; Seed and Reset replace everything
// and advance the epoch so that in-flight exchanges can detect staleness.
type Store struct {
	mu     sync.RWMutex
	turns  []Turn
	handle Handle
	epoch  uint64
	logger *slog.Logger
}

// NewStore creates an empty store
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger: logger.With("component", "conversation_store"),
	}
}

// Append adds a turn at the end of the conversation
func (s *Store) Append(turn Turn) error {
	if err := turn.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn.clone())
	s.logger.Debug("turn appended", "role", turn.Role, "synthetic", turn.Synthetic, "len", len(s.turns))
	return nil
}

// AppendAt appends only if the store is still at the given epoch
func (s *Store) AppendAt(epoch uint64, turn Turn) error {
	if err := turn.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Debug("discarding turn for stale epoch", "epoch", epoch, "current", s.epoch)
		return ErrStaleEpoch
	}
	s.turns = append(s.turns, turn.clone())
	return nil
}

// Seed bulk-initializes the store from a loaded conversation
func (s *Store) Seed(handle Handle, turns []Turn) error {
	seeded := make([]Turn, 0, len(turns))
	for _, t := range turns {
		if err := t.Validate(); err != nil {
			return err
		}
		seeded = append(seeded, t.clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = seeded
	s.handle = handle
	s.epoch++
	s.logger.Debug("store seeded", "conversation_id", handle.ConversationID, "turns", len(seeded), "epoch", s.epoch)
	return nil
}

// Reset replaces the turn list and the handle atomically
func (s *Store) Reset(handle Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.handle = handle
	s.epoch++
	s.logger.Debug("store reset", "conversation_id", handle.ConversationID, "epoch", s.epoch)
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]Turn, len(s.turns))
	for i, t := range s.turns {
		turns[i] = t.clone()
	}
	return Snapshot{Handle: s.handle, Epoch: s.epoch, Turns: turns}
}

// History returns the non-synthetic turns
func (s *Store) History() []Turn {
	return s.Snapshot().History()
}

// Handle returns the active conversation handle
func (s *Store) Handle() Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}

// Epoch returns the current epoch
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Len returns the number of entries, synthetic turns included
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}
