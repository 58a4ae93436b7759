package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/elee1766/eventchat/src/apiclient"
	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/config"
	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elee1766/eventchat/src/favorites"
	"github.com/elee1766/eventchat/src/session"
	"github.com/elee1766/eventchat/src/storage"
	"github.com/elee1766/eventchat/src/usage"
	"golang.org/x/sync/errgroup"
)

// App represents the main application with all services
type App struct {
	Config       *config.Config
	DB           *storage.DB
	Client       *apiclient.Client
	Conversation *conversation.Store
	Gate         *usage.Gate
	Sessions     *session.Manager
	Chat         *chat.Controller
	Favorites    *favorites.Service
	Logger       *slog.Logger
}

// AppConfig holds configuration for creating a new App instance
type AppConfig struct {
	Config *config.Config
	Sink   chat.EventSink
	Logger *slog.Logger
}

// New creates a new App instance with all services initialized
func New(ctx context.Context, cfg AppConfig) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	conf := cfg.Config
	if conf == nil {
		conf = config.DefaultConfig()
	}

	dbPath := conf.Storage.DatabasePath
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	db, err := storage.Open(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	client := apiclient.NewClient(apiclient.Config{
		BaseURL:           conf.API.BaseURL,
		Logger:            logger,
		Timeout:           conf.API.Timeout.Std(),
		StreamIdleTimeout: conf.API.StreamIdleTimeout.Std(),
		RetryCount:        conf.API.RetryCount,
		RetryDelay:        conf.API.RetryDelay.Std(),
		RateLimit:         conf.API.RateLimit,
	})

	store := conversation.NewStore(logger)
	gate := usage.NewGate(usage.GateConfig{
		WarnThreshold: conf.Usage.WarnThreshold,
		Logger:        logger,
	})

	sessions := session.NewManager(session.Config{
		Backend:  client,
		KV:       db.Settings(),
		Store:    store,
		Provider: conf.Chat.Provider,
		Listener: chat.GateListener(gate),
		Logger:   logger,
	})

	controller := chat.NewController(chat.Config{
		Backend:  client,
		Sessions: sessions,
		Store:    store,
		Gate:     gate,
		Sink:     cfg.Sink,
		Provider: conf.Chat.Provider,
		Logger:   logger,
	})

	return &App{
		Config:       conf,
		DB:           db,
		Client:       client,
		Conversation: store,
		Gate:         gate,
		Sessions:     sessions,
		Chat:         controller,
		Favorites:    favorites.NewService(favorites.Config{DB: db.DB(), Logger: logger}),
		Logger:       logger.With("component", "app"),
	}, nil
}

// Start resolves the identity, then binds the conversation and fetches usage
// in parallel. Usage failures are logged only; the trial banner is advisory.
func (a *App) Start(ctx context.Context) error {
	sess, err := a.Sessions.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Sessions.Initialize(gctx); err != nil {
			return fmt.Errorf("failed to initialize conversation: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.Chat.RefreshUsage(gctx); err != nil {
			a.Logger.Warn("usage fetch failed", "user_id", sess.UserID, "error", err)
		}
		return nil
	})
	err = g.Wait()

	a.Chat.Refresh()
	return err
}

// UserID returns the identity that owns likes and usage
func (a *App) UserID() string {
	return a.Sessions.Context().UserID
}

// IsLiked reports whether the current user liked item. Lookup errors count as not liked.
func (a *App) IsLiked(ctx context.Context, item conversation.RecommendationItem) bool {
	liked, err := a.Favorites.IsLiked(ctx, a.UserID(), item)
	if err != nil {
		a.Logger.Debug("like lookup failed", "key", item.Key(), "error", err)
		return false
	}
	return liked
}

// Close closes all resources held by the app
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
