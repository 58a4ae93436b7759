package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/elee1766/eventchat/src/apiclient"
	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elee1766/eventchat/src/usage"
	"github.com/google/uuid"
)

// Backend is the part of the API the session needs
type Backend interface {
	CreateConversation(ctx context.Context, userID, provider string) (string, error)
	GetConversation(ctx context.Context, userID, conversationID string) (*apiclient.ConversationDetail, error)
	ListConversations(ctx context.Context, userID string) ([]apiclient.ConversationSummary, error)
	VerifyToken(ctx context.Context, token string) (*apiclient.AuthResult, error)
	RegisterWithToken(ctx context.Context, anonymousUserID, token string) (*apiclient.AuthResult, error)
}

// KV is durable client-local key/value state
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Config configures a Manager
type Config struct {
	Backend  Backend
	KV       KV
	Store    *conversation.Store
	Provider string
	Listener Listener
	Logger   *slog.Logger
}

// Manager resolves the client identity and binds the conversation store to a
// server-side conversation.
type Manager struct {
	backend  Backend
	kv       KV
	store    *conversation.Store
	provider string
	listener Listener
	logger   *slog.Logger

	mu   sync.RWMutex
	sess Context
}

// NewManager creates a session manager
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend:  cfg.Backend,
		kv:       cfg.KV,
		store:    cfg.Store,
		provider: cfg.Provider,
		listener: cfg.Listener,
		logger:   logger.With("component", "session"),
	}
}

// SetListener replaces the identity listener
func (m *Manager) SetListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

// Context returns the current session context
func (m *Manager) Context() Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess
}

// Start resolves the identity: a persisted authenticated user wins, otherwise
// the persisted anonymous id is used, created on first run.
func (m *Manager) Start(ctx context.Context) (Context, error) {
	anonID, err := m.anonymousID(ctx)
	if err != nil {
		return Context{}, err
	}

	sess := Context{UserID: anonID, AnonymousUserID: anonID}

	userID, ok, err := m.kv.Get(ctx, KeyUserID)
	if err != nil {
		return Context{}, fmt.Errorf("read %s: %w", KeyUserID, err)
	}
	if ok && userID != "" {
		sess.UserID = userID
		sess.Authenticated = true
	}

	m.setContext(sess)
	m.logger.Info("session started", "user_id", sess.UserID, "authenticated", sess.Authenticated)
	return sess, nil
}

// anonymousID returns the persisted anonymous id, minting one if needed
func (m *Manager) anonymousID(ctx context.Context) (string, error) {
	id, ok, err := m.kv.Get(ctx, KeyAnonymousUserID)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", KeyAnonymousUserID, err)
	}
	if ok && usage.IsAnonymous(id) {
		return id, nil
	}

	id = usage.AnonymousPrefix + uuid.NewString()
	if err := m.kv.Set(ctx, KeyAnonymousUserID, id); err != nil {
		return "", fmt.Errorf("persist %s: %w", KeyAnonymousUserID, err)
	}
	m.logger.Debug("minted anonymous identity", "user_id", id)
	return id, nil
}

// Initialize binds the store to the persisted conversation if it still
// loads, and to a freshly created one otherwise.
func (m *Manager) Initialize(ctx context.Context) error {
	sess := m.Context()
	if sess.IsZero() {
		return ErrNotStarted
	}

	id, ok, err := m.kv.Get(ctx, KeyConversationID)
	if err != nil {
		return fmt.Errorf("read %s: %w", KeyConversationID, err)
	}
	if ok && id != "" {
		if m.adopt(ctx, sess.UserID, id) {
			return nil
		}
	}

	_, err = m.create(ctx, sess.UserID)
	return err
}

// adopt loads a conversation and seeds the store with it. A failed load is a
// silent miss.
func (m *Manager) adopt(ctx context.Context, userID, conversationID string) bool {
	detail, err := m.backend.GetConversation(ctx, userID, conversationID)
	if err != nil {
		if apiclient.IsNotFound(err) {
			m.logger.Info("persisted conversation no longer exists", "conversation_id", conversationID)
		} else {
			m.logger.Warn("failed to load conversation", "conversation_id", conversationID, "error", err)
		}
		return false
	}

	handle := conversation.Handle{ConversationID: conversationID, OwnerUserID: userID}
	if err := m.store.Seed(handle, detail.Messages); err != nil {
		m.logger.Warn("rejecting conversation history", "conversation_id", conversationID, "error", err)
		return false
	}
	if err := m.kv.Set(ctx, KeyConversationID, conversationID); err != nil {
		m.logger.Warn("failed to persist conversation id", "error", err)
	}

	m.logger.Info("loaded conversation", "conversation_id", conversationID, "turns", len(detail.Messages))
	return true
}

// create makes a new server-side conversation, persists its id and empties the store
func (m *Manager) create(ctx context.Context, userID string) (conversation.Handle, error) {
	id, err := m.backend.CreateConversation(ctx, userID, m.provider)
	if err != nil {
		m.store.Reset(conversation.Handle{})
		return conversation.Handle{}, fmt.Errorf("create conversation: %w", err)
	}

	if err := m.kv.Set(ctx, KeyConversationID, id); err != nil {
		return conversation.Handle{}, fmt.Errorf("persist %s: %w", KeyConversationID, err)
	}

	handle := conversation.Handle{ConversationID: id, OwnerUserID: userID}
	m.store.Reset(handle)
	m.logger.Info("created conversation", "conversation_id", id)
	return handle, nil
}

// EnsureConversation returns the active handle, creating a conversation
// lazily when none is bound (after logout or a failed startup create).
func (m *Manager) EnsureConversation(ctx context.Context) (conversation.Handle, error) {
	if h := m.store.Handle(); !h.IsZero() {
		return h, nil
	}
	sess := m.Context()
	if sess.IsZero() {
		return conversation.Handle{}, ErrNotStarted
	}
	return m.create(ctx, sess.UserID)
}

// Logout drops the authenticated identity and the active conversation and
// returns to the anonymous identity.
func (m *Manager) Logout(ctx context.Context) (Context, error) {
	if err := m.kv.Delete(ctx, KeyConversationID); err != nil {
		return m.Context(), fmt.Errorf("clear %s: %w", KeyConversationID, err)
	}
	if err := m.kv.Delete(ctx, KeyUserID); err != nil {
		return m.Context(), fmt.Errorf("clear %s: %w", KeyUserID, err)
	}
	m.store.Reset(conversation.Handle{})

	anonID, err := m.anonymousID(ctx)
	if err != nil {
		return m.Context(), err
	}
	sess := Context{UserID: anonID, AnonymousUserID: anonID}
	m.setContext(sess)

	m.logger.Info("logged out", "user_id", anonID)
	return sess, nil
}

// Login verifies a token, switches to the authenticated identity and adopts
// its most recent conversation. A rejected token signs the session out.
func (m *Manager) Login(ctx context.Context, token string) (Context, error) {
	res, err := m.backend.VerifyToken(ctx, token)
	if err != nil || res == nil || !res.Success || res.UserID == "" {
		return m.reject(ctx, "login", res, err)
	}

	sess, err := m.switchTo(ctx, res.UserID)
	if err != nil {
		return sess, err
	}

	if err := m.restoreLatest(ctx, res.UserID); err != nil {
		return sess, err
	}
	return sess, nil
}

// Register links the anonymous identity to an account. The conversation is
// kept under the new owner.
func (m *Manager) Register(ctx context.Context, token string) (Context, error) {
	current := m.Context()
	if current.IsZero() {
		return current, ErrNotStarted
	}
	if current.Authenticated {
		return current, ErrNotAnonymous
	}

	res, err := m.backend.RegisterWithToken(ctx, current.UserID, token)
	if err != nil || res == nil || !res.Success || res.UserID == "" {
		return m.reject(ctx, "register", res, err)
	}

	sess, err := m.switchTo(ctx, res.UserID)
	if err != nil {
		return sess, err
	}

	snap := m.store.Snapshot()
	if !snap.Handle.IsZero() {
		handle := conversation.Handle{ConversationID: snap.Handle.ConversationID, OwnerUserID: res.UserID}
		if err := m.store.Seed(handle, snap.Turns); err != nil {
			return sess, err
		}
	}
	return sess, nil
}

// switchTo persists and installs an authenticated identity
func (m *Manager) switchTo(ctx context.Context, userID string) (Context, error) {
	if err := m.kv.Set(ctx, KeyUserID, userID); err != nil {
		return m.Context(), fmt.Errorf("persist %s: %w", KeyUserID, err)
	}
	sess := Context{UserID: userID, AnonymousUserID: m.Context().AnonymousUserID, Authenticated: true}
	m.setContext(sess)
	m.logger.Info("authenticated", "user_id", userID)
	return sess, nil
}

// restoreLatest adopts the user's most recent conversation, or creates one
func (m *Manager) restoreLatest(ctx context.Context, userID string) error {
	list, err := m.backend.ListConversations(ctx, userID)
	if err != nil {
		m.logger.Warn("failed to list conversations", "error", err)
	}
	if len(list) > 0 && m.adopt(ctx, userID, list[0].ConversationID) {
		return nil
	}
	_, err = m.create(ctx, userID)
	return err
}

// reject signs the local session out after a failed verification
func (m *Manager) reject(ctx context.Context, op string, res *apiclient.AuthResult, cause error) (Context, error) {
	if cause == nil && res != nil && res.Message != "" {
		cause = errors.New(res.Message)
	}

	current := m.Context()
	m.logger.Warn("identity verification failed", "operation", op, "user_id", current.UserID, "error", cause)

	if current.Authenticated {
		if _, err := m.Logout(ctx); err != nil {
			m.logger.Error("failed to sign out after rejection", "error", err)
		}
	} else if err := m.kv.Delete(ctx, KeyUserID); err != nil {
		m.logger.Error("failed to clear user id", "error", err)
	}

	return m.Context(), identityRejected(op, current.UserID, cause)
}

func (m *Manager) setContext(sess Context) {
	m.mu.Lock()
	m.sess = sess
	listener := m.listener
	m.mu.Unlock()

	if listener != nil {
		listener.IdentityChanged(sess)
	}
}
