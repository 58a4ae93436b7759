package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/elee1766/eventchat/src/apiclient"
	"github.com/elee1766/eventchat/src/conversation"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV(kv map[string]string) *memKV {
	if kv == nil {
		kv = map[string]string{}
	}
	return &memKV{data: kv}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type fakeBackend struct {
	mu            sync.Mutex
	conversations map[string][]conversation.Turn // keyed by user/id
	order         map[string][]string            // user -> ids, most recent first
	creates       []string
	nextID        int
	tokens        map[string]string // token -> user id
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		conversations: map[string][]conversation.Turn{},
		order:         map[string][]string{},
		tokens:        map[string]string{},
	}
}

func (f *fakeBackend) put(userID, id string, turns ...conversation.Turn) {
	f.conversations[userID+"/"+id] = turns
	f.order[userID] = append([]string{id}, f.order[userID]...)
}

func (f *fakeBackend) CreateConversation(_ context.Context, userID, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("conv_%d", f.nextID)
	f.creates = append(f.creates, id)
	f.put(userID, id)
	return id, nil
}

func (f *fakeBackend) GetConversation(_ context.Context, userID, id string) (*apiclient.ConversationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	turns, ok := f.conversations[userID+"/"+id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apiclient.ErrConversationNotFound, id)
	}
	return &apiclient.ConversationDetail{ConversationID: id, Messages: turns}, nil
}

func (f *fakeBackend) ListConversations(_ context.Context, userID string) ([]apiclient.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiclient.ConversationSummary
	for _, id := range f.order[userID] {
		out = append(out, apiclient.ConversationSummary{ConversationID: id, UserID: userID})
	}
	return out, nil
}

func (f *fakeBackend) VerifyToken(_ context.Context, token string) (*apiclient.AuthResult, error) {
	if uid, ok := f.tokens[token]; ok {
		return &apiclient.AuthResult{Success: true, UserID: uid}, nil
	}
	return nil, &apiclient.APIError{StatusCode: 401, Message: "invalid token"}
}

func (f *fakeBackend) RegisterWithToken(_ context.Context, _ string, token string) (*apiclient.AuthResult, error) {
	if uid, ok := f.tokens[token]; ok {
		return &apiclient.AuthResult{Success: true, UserID: uid}, nil
	}
	return &apiclient.AuthResult{Success: false, Message: "email already registered"}, nil
}

func newTestManager(backend *fakeBackend, kv *memKV) (*Manager, *conversation.Store, *[]Context) {
	store := conversation.NewStore(nil)
	var changes []Context
	m := NewManager(Config{
		Backend:  backend,
		KV:       kv,
		Store:    store,
		Provider: "groq",
		Listener: ListenerFunc(func(sess Context) { changes = append(changes, sess) }),
	})
	return m, store, &changes
}

func TestStartMintsAnonymousIdentity(t *testing.T) {
	kv := newMemKV(nil)
	m, _, changes := newTestManager(newFakeBackend(), kv)

	sess, err := m.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Anonymous())
	assert.Regexp(t, `^user_[0-9a-f-]{36}$`, sess.UserID)
	assert.Equal(t, sess.UserID, kv.data[KeyAnonymousUserID])
	require.Len(t, *changes, 1)

	// second start reuses the persisted id
	again, err := m.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, again.UserID)
}

func TestStartPrefersAuthenticatedUser(t *testing.T) {
	kv := newMemKV(map[string]string{KeyAnonymousUserID: "user_a", KeyUserID: "auth_1"})
	m, _, _ := newTestManager(newFakeBackend(), kv)

	sess, err := m.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "auth_1", sess.UserID)
	assert.True(t, sess.Authenticated)
	assert.False(t, sess.Anonymous())
	assert.Equal(t, "user_a", sess.AnonymousUserID)
}

func TestInitializeLoadsPersistedConversation(t *testing.T) {
	backend := newFakeBackend()
	turns := []conversation.Turn{
		conversation.NewUserTurn("Austin"),
		conversation.NewAssistantTurn("Great", nil),
	}
	backend.put("user_a", "conv_saved", turns...)
	kv := newMemKV(map[string]string{KeyAnonymousUserID: "user_a", KeyConversationID: "conv_saved"})
	m, store, _ := newTestManager(backend, kv)

	_, err := m.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Initialize(context.Background()))

	assert.Empty(t, backend.creates)
	assert.Equal(t, conversation.Handle{ConversationID: "conv_saved", OwnerUserID: "user_a"}, store.Handle())
	assert.Equal(t, turns, store.Snapshot().Turns)
}

func TestInitializeNotFoundCreatesExactlyOnce(t *testing.T) {
	backend := newFakeBackend()
	kv := newMemKV(map[string]string{KeyAnonymousUserID: "user_a", KeyConversationID: "conv_stale"})
	m, store, _ := newTestManager(backend, kv)

	_, err := m.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Initialize(context.Background()))

	require.Len(t, backend.creates, 1)
	assert.Equal(t, backend.creates[0], kv.data[KeyConversationID])
	assert.NotEqual(t, "conv_stale", kv.data[KeyConversationID])
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, backend.creates[0], store.Handle().ConversationID)
}

func TestInitializeWithoutPersistedID(t *testing.T) {
	backend := newFakeBackend()
	kv := newMemKV(nil)
	m, store, _ := newTestManager(backend, kv)

	_, err := m.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Initialize(context.Background()))

	require.Len(t, backend.creates, 1)
	assert.Equal(t, "conv_1", kv.data[KeyConversationID])
	assert.Equal(t, "conv_1", store.Handle().ConversationID)
}

func TestInitializeRequiresStart(t *testing.T) {
	m, _, _ := newTestManager(newFakeBackend(), newMemKV(nil))
	assert.ErrorIs(t, m.Initialize(context.Background()), ErrNotStarted)
}

func TestLogoutThenLoginRestoresLatestConversation(t *testing.T) {
	backend := newFakeBackend()
	older := []conversation.Turn{conversation.NewUserTurn("Dallas")}
	latest := []conversation.Turn{
		conversation.NewUserTurn("Austin"),
		conversation.NewAssistantTurn("Here you go", []conversation.RecommendationItem{{Type: "event"}}),
		conversation.NewUserTurn("more jazz"),
		conversation.NewAssistantTurn("Sure", nil),
	}
	backend.put("auth_1", "conv_old", older...)
	backend.put("auth_1", "conv_latest", latest...)
	backend.tokens["tok"] = "auth_1"

	kv := newMemKV(map[string]string{KeyAnonymousUserID: "user_a"})
	m, store, _ := newTestManager(backend, kv)
	ctx := context.Background()

	_, err := m.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Initialize(ctx))
	require.NoError(t, store.Append(conversation.NewUserTurn("anonymous question")))

	sess, err := m.Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user_a", sess.UserID)
	assert.True(t, store.Handle().IsZero())
	assert.Equal(t, 0, store.Len())
	_, ok := kv.data[KeyConversationID]
	assert.False(t, ok)

	sess, err = m.Login(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "auth_1", sess.UserID)
	assert.True(t, sess.Authenticated)

	assert.Equal(t, latest, store.Snapshot().Turns)
	assert.Equal(t, conversation.Handle{ConversationID: "conv_latest", OwnerUserID: "auth_1"}, store.Handle())
	assert.Equal(t, "conv_latest", kv.data[KeyConversationID])
	assert.Equal(t, "auth_1", kv.data[KeyUserID])
}

func TestLoginWithoutConversationsCreatesOne(t *testing.T) {
	backend := newFakeBackend()
	backend.tokens["tok"] = "auth_2"
	m, store, _ := newTestManager(backend, newMemKV(nil))
	ctx := context.Background()

	_, err := m.Start(ctx)
	require.NoError(t, err)

	_, err = m.Login(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, backend.creates, 1)
	assert.Equal(t, "auth_2", store.Handle().OwnerUserID)
	assert.Equal(t, 0, store.Len())
}

func TestLoginRejectedSignsOut(t *testing.T) {
	backend := newFakeBackend()
	kv := newMemKV(map[string]string{KeyAnonymousUserID: "user_a", KeyUserID: "auth_1"})
	m, store, changes := newTestManager(backend, kv)
	ctx := context.Background()

	_, err := m.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Initialize(ctx))

	sess, err := m.Login(ctx, "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIdentityRejected))

	var apiErr *apiclient.APIError
	assert.True(t, errors.As(err, &apiErr))

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeIdentityRejected, fmt.Sprint(oopsErr.Code()))

	assert.False(t, sess.Authenticated)
	assert.Equal(t, "user_a", sess.UserID)
	assert.Equal(t, sess, m.Context())
	_, ok = kv.data[KeyUserID]
	assert.False(t, ok)
	assert.True(t, store.Handle().IsZero())
	assert.False(t, (*changes)[len(*changes)-1].Authenticated)
}

func TestRegisterKeepsConversation(t *testing.T) {
	backend := newFakeBackend()
	backend.tokens["tok"] = "auth_9"
	kv := newMemKV(nil)
	m, store, _ := newTestManager(backend, kv)
	ctx := context.Background()

	_, err := m.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Initialize(ctx))
	require.NoError(t, store.Append(conversation.NewUserTurn("Austin")))
	before := store.Snapshot()

	sess, err := m.Register(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "auth_9", sess.UserID)

	after := store.Snapshot()
	assert.Equal(t, before.Turns, after.Turns)
	assert.Equal(t, before.Handle.ConversationID, after.Handle.ConversationID)
	assert.Equal(t, "auth_9", after.Handle.OwnerUserID)
	assert.Greater(t, after.Epoch, before.Epoch)

	_, err = m.Register(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotAnonymous)
}

func TestRegisterUnsuccessfulResult(t *testing.T) {
	m, _, _ := newTestManager(newFakeBackend(), newMemKV(nil))
	ctx := context.Background()
	_, err := m.Start(ctx)
	require.NoError(t, err)

	sess, err := m.Register(ctx, "unknown")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIdentityRejected)
	assert.Contains(t, err.Error(), "email already registered")
	assert.True(t, sess.Anonymous())
}

func TestEnsureConversationCreatesLazily(t *testing.T) {
	backend := newFakeBackend()
	m, store, _ := newTestManager(backend, newMemKV(nil))
	ctx := context.Background()

	_, err := m.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Initialize(ctx))
	_, err = m.Logout(ctx)
	require.NoError(t, err)
	require.Len(t, backend.creates, 1)

	h, err := m.EnsureConversation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "conv_2", h.ConversationID)
	assert.Equal(t, h, store.Handle())

	again, err := m.EnsureConversation(ctx)
	require.NoError(t, err)
	assert.Equal(t, h, again)
	assert.Len(t, backend.creates, 2)
}
