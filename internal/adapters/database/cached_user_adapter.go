package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/providers"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
)

// CachedUserAdapter wraps UserAdapter with caching
type CachedUserAdapter struct {
	adapter repositories.UserRepository
	cache   providers.CacheProvider
}

// NewCachedUserAdapter creates a new cached user adapter
func NewCachedUserAdapter(adapter repositories.UserRepository, cache providers.CacheProvider) repositories.UserRepository {
	return &CachedUserAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	userByIDTTL   = 300 // 5 minutes for single user
	usersListTTL  = 60  // 1 minute; roster freshness drives match quality
)

func userCacheKey(id string) string {
	return fmt.Sprintf("user:id:%s", id)
}

func usersListCacheKey(filter repositories.UserFilter) string {
	return fmt.Sprintf("users:list:%s:%t:%d:%d", filter.Type, filter.OnlineOnly, filter.Limit, filter.Offset)
}

// GetByID retrieves a user by ID with caching
func (a *CachedUserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	cacheKey := userCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var user entities.User
		if err := json.Unmarshal(cached, &user); err == nil {
			return &user, nil
		}
		log.Printf("Failed to unmarshal cached user %s: %v", id, err)
	}

	user, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(user); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, userByIDTTL); err != nil {
				log.Printf("Failed to cache user %s: %v", id, err)
			}
		}
	}()

	return user, nil
}

// GetByEmail bypasses the cache; email lookups happen on registration checks
// where stale reads would mask conflicts.
func (a *CachedUserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.adapter.GetByEmail(ctx, email)
}

// GetByNumber bypasses the cache
func (a *CachedUserAdapter) GetByNumber(ctx context.Context, number string) (*entities.User, error) {
	return a.adapter.GetByNumber(ctx, number)
}

// GetByCredentials bypasses the cache; logins must see current passwords.
func (a *CachedUserAdapter) GetByCredentials(ctx context.Context, email, password string) (*entities.User, error) {
	return a.adapter.GetByCredentials(ctx, email, password)
}

// List retrieves users with caching
func (a *CachedUserAdapter) List(ctx context.Context, filter repositories.UserFilter) ([]*entities.User, error) {
	cacheKey := usersListCacheKey(filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var users []*entities.User
		if err := json.Unmarshal(cached, &users); err == nil {
			return users, nil
		}
		log.Printf("Failed to unmarshal cached users list: %v", err)
	}

	users, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(users); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, usersListTTL); err != nil {
				log.Printf("Failed to cache users list: %v", err)
			}
		}
	}()

	return users, nil
}

// Create creates a user and invalidates list caches
func (a *CachedUserAdapter) Create(ctx context.Context, user *entities.User) error {
	if err := a.adapter.Create(ctx, user); err != nil {
		return err
	}
	a.invalidateLists()
	return nil
}

// UpdateDetails updates profile fields and invalidates caches
func (a *CachedUserAdapter) UpdateDetails(ctx context.Context, id, name, email, number string) error {
	if err := a.adapter.UpdateDetails(ctx, id, name, email, number); err != nil {
		return err
	}
	a.invalidateUser(id)
	return nil
}

// UpdateLocation stores coordinates and invalidates caches
func (a *CachedUserAdapter) UpdateLocation(ctx context.Context, id string, latitude, longitude float64) error {
	if err := a.adapter.UpdateLocation(ctx, id, latitude, longitude); err != nil {
		return err
	}
	a.invalidateUser(id)
	return nil
}

// UpdateOnlineStatus stores the connected flag and invalidates caches
func (a *CachedUserAdapter) UpdateOnlineStatus(ctx context.Context, id string, onlineStatus int) error {
	if err := a.adapter.UpdateOnlineStatus(ctx, id, onlineStatus); err != nil {
		return err
	}
	a.invalidateUser(id)
	return nil
}

// UpdateScore stores the aggregate score and invalidates caches
func (a *CachedUserAdapter) UpdateScore(ctx context.Context, walkerID string, score float64) error {
	if err := a.adapter.UpdateScore(ctx, walkerID, score); err != nil {
		return err
	}
	a.invalidateUser(walkerID)
	return nil
}

func (a *CachedUserAdapter) invalidateUser(id string) {
	go func() {
		bgCtx := context.Background()
		if err := a.cache.Delete(bgCtx, userCacheKey(id)); err != nil {
			log.Printf("Failed to invalidate user cache %s: %v", id, err)
		}
		if err := a.cache.DeletePattern(bgCtx, "users:list:*"); err != nil {
			log.Printf("Failed to invalidate users list cache: %v", err)
		}
	}()
}

func (a *CachedUserAdapter) invalidateLists() {
	go func() {
		bgCtx := context.Background()
		if err := a.cache.DeletePattern(bgCtx, "users:list:*"); err != nil {
			log.Printf("Failed to invalidate users list cache: %v", err)
		}
	}()
}
