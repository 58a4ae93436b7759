package usage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrBlocked is returned by CheckSubmit while the trial is exhausted
var ErrBlocked = errors.New("free trial exhausted, registration required")

// DefaultWarnThreshold is the remaining count at or below which a warning is shown
const DefaultWarnThreshold = 3

// ExhaustedMessage is shown when the trial has ended
const ExhaustedMessage = "Your free trial has ended. Sign up or log in to continue."

// WarningMessage formats the low-remaining banner
func WarningMessage(remaining int) string {
	if remaining == 1 {
		return "You have 1 free search remaining. Sign up to keep exploring!"
	}
	return fmt.Sprintf("You have %d free searches remaining. Sign up to keep exploring!", remaining)
}

// State is the gate state for the current identity
type State int

const (
	StateUnknown State = iota
	StateActive
	StateWarningIssued
	StateBlocked
	StateRegistered
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateActive:
		return "active"
	case StateWarningIssued:
		return "warning_issued"
	case StateBlocked:
		return "blocked"
	case StateRegistered:
		return "registered"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Decision is what the UI should do after a gate transition
type Decision struct {
	// Warning is a banner text, empty when nothing should be shown
	Warning string
	// PromptRegistration requests the registration/login prompt
	PromptRegistration bool
}

// IsZero reports whether the decision requires no UI action
func (d Decision) IsZero() bool {
	return d.Warning == "" && !d.PromptRegistration
}

// GateConfig configures a Gate
type GateConfig struct {
	WarnThreshold int
	Logger        *slog.Logger
}

// Gate tracks the trial of one anonymous identity and decides when to warn or block.
type Gate struct {
	mu sync.Mutex

	threshold int
	logger    *slog.Logger

	state       State
	stats       *Stats
	warnedAt    int
	hasWarned   bool
	prompted    bool
	gatedUserID string
}

// NewGate creates a gate in the Unknown state
func NewGate(cfg GateConfig) *Gate {
	if cfg.WarnThreshold <= 0 {
		cfg.WarnThreshold = DefaultWarnThreshold
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		threshold: cfg.WarnThreshold,
		logger:    logger.With("component", "usage_gate"),
	}
}

// SetIdentity binds the gate to a user. Anonymous ids start a fresh trial
// state; any other id is treated as registered.
func (g *Gate) SetIdentity(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if userID == g.gatedUserID && g.state != StateUnknown {
		return
	}
	g.resetLocked()
	g.gatedUserID = userID
	if userID != "" && !IsAnonymous(userID) {
		g.state = StateRegistered
	}
	g.logger.Debug("identity bound", "user_id", userID, "state", g.state)
}

// Observe reacts to freshly fetched usage statistics.
func (g *Gate) Observe(stats Stats) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateRegistered {
		return Decision{}
	}
	s := stats
	g.stats = &s

	if stats.IsRegistered {
		g.state = StateRegistered
		return Decision{}
	}

	if stats.TrialRemaining <= 0 {
		return g.blockLocked(false)
	}

	// only login, register or a new identity leave Blocked
	if g.state == StateBlocked {
		return Decision{}
	}
	if g.state == StateUnknown {
		g.state = StateActive
	}

	if stats.TrialRemaining <= g.threshold && (!g.hasWarned || g.warnedAt != stats.TrialRemaining) {
		g.hasWarned = true
		g.warnedAt = stats.TrialRemaining
		g.state = StateWarningIssued
		g.logger.Info("trial running low", "remaining", stats.TrialRemaining)
		return Decision{Warning: WarningMessage(stats.TrialRemaining)}
	}

	return Decision{}
}

// TrialExceeded reacts to the trial_exceeded flag on a stream delta. It blocks
// immediately and always requests the prompt.
func (g *Gate) TrialExceeded() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateRegistered {
		return Decision{}
	}
	return g.blockLocked(true)
}

// CheckSubmit returns ErrBlocked while the trial is exhausted. A blocked
// submission is the user hitting the block again, so the prompt is re-armed.
func (g *Gate) CheckSubmit() (Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateBlocked {
		return Decision{}, nil
	}
	return Decision{Warning: ExhaustedMessage, PromptRegistration: true}, ErrBlocked
}

// MarkRegistered discards anonymous usage state. The gate never warns or
// blocks again for this identity.
func (g *Gate) MarkRegistered() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetLocked()
	g.gatedUserID = ""
	g.state = StateRegistered
}

// Reset returns the gate to Unknown for a new anonymous identity
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetLocked()
	g.gatedUserID = ""
}

// State returns the current state
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Stats returns the last observed statistics, if any
func (g *Gate) Stats() (Stats, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stats == nil {
		return Stats{}, false
	}
	return *g.stats, true
}

// Gated reports whether the bound identity is subject to the trial
func (g *Gate) Gated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state != StateRegistered
}

func (g *Gate) blockLocked(force bool) Decision {
	wasBlocked := g.state == StateBlocked
	g.state = StateBlocked

	if !wasBlocked {
		g.logger.Info("trial exhausted", "user_id", g.gatedUserID)
	}

	if g.prompted && !force {
		return Decision{}
	}
	g.prompted = true
	return Decision{Warning: ExhaustedMessage, PromptRegistration: true}
}

func (g *Gate) resetLocked() {
	g.state = StateUnknown
	g.stats = nil
	g.warnedAt = 0
	g.hasWarned = false
	g.prompted = false
}
