package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elee1766/eventchat/src/storage"
	"github.com/elliotchance/pie/v2"
)

// ErrNoUser is returned when no identity is bound
var ErrNoUser = errors.New("no user for favorites")

// Config configures the favorites service
type Config struct {
	DB     storage.ExecQuerier
	Logger *slog.Logger
}

// Service stores liked recommendations keyed by their identity key
type Service struct {
	db     storage.ExecQuerier
	logger *slog.Logger
}

// NewService creates a favorites service
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: cfg.DB, logger: logger.With("component", "favorites")}
}

// Toggle likes an unliked item or unlikes a liked one and returns the new state
func (s *Service) Toggle(ctx context.Context, userID string, item conversation.RecommendationItem) (bool, error) {
	if userID == "" {
		return false, ErrNoUser
	}
	key := item.Key()

	removed, err := storage.RemoveLike(ctx, s.db, userID, key)
	if err != nil {
		return false, fmt.Errorf("unlike %q: %w", key, err)
	}
	if removed {
		s.logger.Debug("unliked", "user_id", userID, "key", key)
		return false, nil
	}

	payload, err := storage.NewJSONPayload(item)
	if err != nil {
		return false, fmt.Errorf("encode %q: %w", key, err)
	}
	like := &storage.Like{
		Key:     key,
		UserID:  userID,
		Type:    item.Type,
		Title:   item.Data.DisplayName(),
		Venue:   item.Data.VenueName,
		Payload: payload,
	}
	if err := storage.AddLike(ctx, s.db, like); err != nil {
		return false, fmt.Errorf("like %q: %w", key, err)
	}
	s.logger.Debug("liked", "user_id", userID, "key", key)
	return true, nil
}

// IsLiked reports whether the user liked item
func (s *Service) IsLiked(ctx context.Context, userID string, item conversation.RecommendationItem) (bool, error) {
	if userID == "" {
		return false, nil
	}
	like, err := storage.GetLike(ctx, s.db, userID, item.Key())
	if err != nil {
		return false, err
	}
	return like != nil, nil
}

// LikedKeys returns the set of keys the user liked
func (s *Service) LikedKeys(ctx context.Context, userID string) (map[string]bool, error) {
	if userID == "" {
		return map[string]bool{}, nil
	}
	keys, err := storage.ListLikedKeys(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set, nil
}

// Filter returns the liked subset of items, keeping their order
func (s *Service) Filter(ctx context.Context, userID string, items []conversation.RecommendationItem) ([]conversation.RecommendationItem, error) {
	liked, err := s.LikedKeys(ctx, userID)
	if err != nil {
		return nil, err
	}
	return pie.Filter(items, func(item conversation.RecommendationItem) bool {
		return liked[item.Key()]
	}), nil
}

// List returns every liked item of the user, oldest first
func (s *Service) List(ctx context.Context, userID string) ([]conversation.RecommendationItem, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	likes, err := storage.ListLikes(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	items := make([]conversation.RecommendationItem, 0, len(likes))
	for _, like := range likes {
		var item conversation.RecommendationItem
		if err := like.Payload.Decode(&item); err != nil {
			s.logger.Warn("skipping unreadable like", "key", like.Key, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
