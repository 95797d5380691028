package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/providers"
)

// CacheInvalidationService drops cached roster entries when roster events
// arrive, so every instance behind a load balancer converges without polling.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for roster events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelRosterUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to roster updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.RosterEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent drops the repository-level keys for the updated user. HTTP
// response caches are left to expire by TTL; their keys hash the full
// request and cannot be matched by a pattern.
func (s *CacheInvalidationService) handleEvent(event *entities.RosterEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Debug().
		Str("event_id", event.ID).
		Str("user_id", event.UserID).
		Str("event_type", string(event.EventType)).
		Msg("processing cache invalidation")

	if err := s.cache.Delete(ctx, fmt.Sprintf("user:id:%s", event.UserID)); err != nil {
		log.Warn().Err(err).Str("user_id", event.UserID).Msg("failed to invalidate user cache")
	}
	if err := s.cache.DeletePattern(ctx, "users:list:*"); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate roster caches")
	}
}

// InvalidateUser drops the cached entry for a single user
func (s *CacheInvalidationService) InvalidateUser(ctx context.Context, userID string) error {
	if err := s.cache.Delete(ctx, fmt.Sprintf("user:id:%s", userID)); err != nil {
		return fmt.Errorf("failed to invalidate user cache: %w", err)
	}
	return nil
}

// InvalidateRoster drops every cached roster listing. Intended for
// maintenance and bulk imports, not the per-event path.
func (s *CacheInvalidationService) InvalidateRoster(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, "users:list:*"); err != nil {
		return fmt.Errorf("failed to invalidate roster caches: %w", err)
	}
	return nil
}
