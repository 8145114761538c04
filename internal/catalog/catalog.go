package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
	"github.com/joe-hadchity/lescale-pos/internal/remote"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const cacheTTL = 5 * time.Minute

// Adapter is the read-only view over the remote menu service: categories,
// items per category and the add-on ingredient catalog. Responses are cached
// read-through in Redis so a flaky catalog service does not stall the
// terminal mid-shift.
type Adapter struct {
	baseURL string
	client  *http.Client
	rdb     *redis.Client
}

// NewAdapter creates a catalog adapter for the given service URL.
func NewAdapter(baseURL string, rdb *redis.Client) *Adapter {
	return &Adapter{
		baseURL: baseURL,
		client:  http.DefaultClient,
		rdb:     rdb,
	}
}

// Categories lists the menu categories.
func (a *Adapter) Categories(ctx context.Context) ([]entity.Category, *remote.OpError) {
	var categories []entity.Category
	if opErr := a.fetch(ctx, "/categories", "catalog:categories", &categories); opErr != nil {
		return nil, opErr
	}
	return categories, nil
}

// ItemsByCategory lists the menu items of one category.
func (a *Adapter) ItemsByCategory(ctx context.Context, categoryID string) ([]entity.MenuItem, *remote.OpError) {
	var items []entity.MenuItem
	path := fmt.Sprintf("/categories/%s/items", categoryID)
	key := fmt.Sprintf("catalog:items:%s", categoryID)
	if opErr := a.fetch(ctx, path, key, &items); opErr != nil {
		return nil, opErr
	}
	return items, nil
}

// Ingredients lists every add-on ingredient with its price.
func (a *Adapter) Ingredients(ctx context.Context) ([]entity.Ingredient, *remote.OpError) {
	var ingredients []entity.Ingredient
	if opErr := a.fetch(ctx, "/ingredients", "catalog:ingredients", &ingredients); opErr != nil {
		return nil, opErr
	}
	return ingredients, nil
}

// fetch reads from the cache first and falls back to the catalog service,
// refreshing the cache on success.
func (a *Adapter) fetch(ctx context.Context, path, cacheKey string, out any) *remote.OpError {
	if a.rdb != nil {
		cached, err := a.rdb.Get(ctx, cacheKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msgf("Error reading %s from cache", cacheKey)
		}
		if cached != "" {
			if err := json.Unmarshal([]byte(cached), out); err == nil {
				return nil
			}
			logger.Warn().Msgf("Discarding unreadable cache entry %s", cacheKey)
		}
	}

	if opErr := remote.GetJSON(ctx, a.client, a.baseURL+path, out); opErr != nil {
		logger.Error().Str("kind", string(opErr.Kind)).Msgf("Catalog fetch %s failed: %s", path, opErr.Message)
		return opErr
	}

	if a.rdb != nil {
		raw, err := json.Marshal(out)
		if err == nil {
			if err := a.rdb.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
				logger.Error().Err(err).Msgf("Error setting %s in cache", cacheKey)
			}
		}
	}
	return nil
}
