package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/elee1766/eventchat/src/apiclient"
	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elee1766/eventchat/src/session"
	"github.com/elee1766/eventchat/src/stream"
	"github.com/elee1766/eventchat/src/syncview"
	"github.com/elee1766/eventchat/src/usage"
)

// Backend is the part of the API an exchange needs
type Backend interface {
	ChatStream(ctx context.Context, req *apiclient.ChatRequest) (stream.Stream, error)
	GetUsage(ctx context.Context, userID string) (*usage.Stats, error)
}

// Sessions owns identity and the conversation binding
type Sessions interface {
	Context() session.Context
	EnsureConversation(ctx context.Context) (conversation.Handle, error)
	Login(ctx context.Context, token string) (session.Context, error)
	Register(ctx context.Context, token string) (session.Context, error)
	Logout(ctx context.Context) (session.Context, error)
}

// Config configures a Controller
type Config struct {
	Backend  Backend
	Sessions Sessions
	Store    *conversation.Store
	Gate     *usage.Gate
	Sink     EventSink
	Provider string
	Logger   *slog.Logger
}

// Controller runs exchanges against the backend. It is the single writer of
// the conversation store during an exchange and allows one exchange at a time.
type Controller struct {
	backend  Backend
	sessions Sessions
	store    *conversation.Store
	gate     *usage.Gate
	sink     EventSink
	provider string
	logger   *slog.Logger

	ids      *syncview.IDSequence
	inFlight atomic.Bool

	mu   sync.RWMutex
	view syncview.View
}

// NewController creates a controller and derives the initial view
func NewController(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := cfg.Sink
	if sink == nil {
		sink = Discard
	}
	gate := cfg.Gate
	if gate == nil {
		gate = usage.NewGate(usage.GateConfig{Logger: logger})
	}

	c := &Controller{
		backend:  cfg.Backend,
		sessions: cfg.Sessions,
		store:    cfg.Store,
		gate:     gate,
		sink:     sink,
		provider: cfg.Provider,
		logger:   logger.With("component", "chat_controller"),
		ids:      &syncview.IDSequence{},
	}
	c.view = syncview.Derive(c.store.Snapshot(), c.ids)
	return c
}

// View returns the most recently derived view
func (c *Controller) View() syncview.View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// Busy reports whether an exchange is open
func (c *Controller) Busy() bool {
	return c.inFlight.Load()
}

// Gate returns the usage gate
func (c *Controller) Gate() *usage.Gate {
	return c.gate
}

// Refresh re-derives the view from the store and publishes it
func (c *Controller) Refresh() syncview.View {
	return c.refresh(c.emitter())
}

// Submit sends typed input. The first message of a conversation is sent as
// the location-setting initial request.
func (c *Controller) Submit(ctx context.Context, text string) error {
	return c.submit(ctx, text, false)
}

// SubmitSuggestion sends one of the suggested questions. Suggestions are only
// accepted while the view offers them.
func (c *Controller) SubmitSuggestion(ctx context.Context, text string) error {
	if !c.View().ShowSuggestions {
		return ErrSuggestionsHidden
	}
	return c.submit(ctx, text, true)
}

func (c *Controller) submit(ctx context.Context, text string, suggestion bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrExchangeInFlight
	}
	defer c.inFlight.Store(false)

	emit := c.emitter()

	if d, err := c.gate.CheckSubmit(); err != nil {
		emit.decision(d, "trial exhausted")
		return err
	}

	handle, err := c.sessions.EnsureConversation(ctx)
	if err != nil {
		emit.fail("start conversation", err)
		return fmt.Errorf("start conversation: %w", err)
	}
	sess := c.sessions.Context()
	emit = newEventEmitter(c.sink, handle.ConversationID)

	snap := c.store.Snapshot()
	epoch := snap.Epoch
	req := &apiclient.ChatRequest{
		Message:             text,
		ConversationHistory: snap.History(),
		LLMProvider:         c.provider,
		IsInitialResponse:   !suggestion && !syncview.LocationProvided(snap),
		UserID:              sess.UserID,
		ConversationID:      handle.ConversationID,
	}

	if err := c.store.AppendAt(epoch, conversation.NewUserTurn(text)); err != nil {
		return fmt.Errorf("append user turn: %w", err)
	}
	emit.exchangeStarted(text)
	c.refresh(emit)

	outcome := c.exchange(ctx, emit, epoch, req)

	if outcome != OutcomeDiscarded {
		c.refresh(emit)
	}
	emit.exchangeFinished(outcome)

	if outcome == OutcomeCompleted {
		if err := c.RefreshUsage(ctx); err != nil {
			c.logger.Warn("usage refresh failed", "error", err)
		}
	}
	return nil
}

// exchange runs one request and commits at most one assistant turn
func (c *Controller) exchange(ctx context.Context, emit *eventEmitter, epoch uint64, req *apiclient.ChatRequest) Outcome {
	logger := c.logger.With("conversation_id", req.ConversationID, "epoch", epoch)

	s, err := c.backend.ChatStream(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("exchange abandoned before stream opened", "error", err)
			return OutcomeDiscarded
		}
		logger.Warn("chat stream failed to open", "error", err)
		if errors.Is(err, apiclient.ErrTimeout) {
			return c.commitFailure(epoch, streamErrorPrefix+stream.TimedOutMessage)
		}
		return c.commitFailure(epoch, transportFailureText)
	}

	x := stream.NewExchange()
	err = stream.Drain(s, func(ev stream.Event) error {
		if c.store.Epoch() != epoch || ctx.Err() != nil {
			return errStaleExchange
		}
		if err := x.Apply(ev); err != nil {
			logger.Warn("ignoring event", "type", ev.Type(), "error", err)
			return nil
		}

		switch ev := ev.(type) {
		case stream.Status:
			emit.status(ev.Text)
		case stream.Delta:
			if ev.TrialExceeded() {
				emit.decision(c.gate.TrialExceeded(), "trial exceeded")
			}
		}
		return nil
	})

	if errors.Is(err, errStaleExchange) || c.store.Epoch() != epoch || ctx.Err() != nil {
		logger.Debug("discarding exchange", "error", err)
		return OutcomeDiscarded
	}
	if err != nil {
		logger.Warn("chat stream read failed", "error", err)
		return c.commitFailure(epoch, transportFailureText)
	}

	if msg, failed := x.Failed(); failed {
		logger.Info("exchange failed", "error", msg)
		return c.commitFailure(epoch, streamErrorPrefix+msg)
	}
	if !x.Finished() {
		logger.Warn("stream ended without a terminal event")
		return c.commitFailure(epoch, transportFailureText)
	}

	turn, ok := x.Result()
	if !ok {
		logger.Debug("exchange produced an empty turn")
		return OutcomeCompleted
	}
	if err := c.store.AppendAt(epoch, turn); err != nil {
		logger.Debug("discarding completed exchange", "error", err)
		return OutcomeDiscarded
	}
	logger.Debug("exchange completed", "recommendations", len(turn.Recommendations), "deltas", x.Deltas())
	return OutcomeCompleted
}

// commitFailure appends the synthetic error turn; the usage gate is not touched
func (c *Controller) commitFailure(epoch uint64, text string) Outcome {
	if err := c.store.AppendAt(epoch, conversation.NewErrorTurn(text)); err != nil {
		return OutcomeDiscarded
	}
	return OutcomeFailed
}

// RefreshUsage fetches usage for an anonymous identity and applies it to the gate
func (c *Controller) RefreshUsage(ctx context.Context) error {
	sess := c.sessions.Context()
	if !sess.Anonymous() {
		return nil
	}

	stats, err := c.backend.GetUsage(ctx, sess.UserID)
	if err != nil {
		return err
	}
	c.emitter().decision(c.gate.Observe(*stats), "trial exhausted")
	return nil
}

// Login switches to an authenticated identity and shows its latest conversation
func (c *Controller) Login(ctx context.Context, token string) (session.Context, error) {
	return c.identity(func() (session.Context, error) { return c.sessions.Login(ctx, token) })
}

// Register links the anonymous identity to an account
func (c *Controller) Register(ctx context.Context, token string) (session.Context, error) {
	return c.identity(func() (session.Context, error) { return c.sessions.Register(ctx, token) })
}

// Logout returns to the anonymous identity with an empty conversation
func (c *Controller) Logout(ctx context.Context) (session.Context, error) {
	sess, err := c.identity(func() (session.Context, error) { return c.sessions.Logout(ctx) })
	if err == nil {
		if uerr := c.RefreshUsage(ctx); uerr != nil {
			c.logger.Warn("usage refresh failed", "error", uerr)
		}
	}
	return sess, err
}

// identity runs an identity switch outside of any exchange
func (c *Controller) identity(fn func() (session.Context, error)) (session.Context, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return c.sessions.Context(), ErrExchangeInFlight
	}
	defer c.inFlight.Store(false)

	sess, err := fn()
	emit := c.emitter()
	if err != nil {
		emit.fail("identity", err)
	}
	c.refresh(emit)
	return sess, err
}

func (c *Controller) emitter() *eventEmitter {
	return newEventEmitter(c.sink, c.store.Handle().ConversationID)
}

func (c *Controller) refresh(emit *eventEmitter) syncview.View {
	view := syncview.Derive(c.store.Snapshot(), c.ids)

	c.mu.Lock()
	c.view = view
	c.mu.Unlock()

	emit.viewChanged(view)
	return view
}
