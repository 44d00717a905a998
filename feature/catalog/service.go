package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/core/cache"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ErrNotFound is returned for unknown catalog items.
var ErrNotFound = errors.New("catalog item not found")

const (
	allItemsKey     = "catalog:all"
	defaultSearchN  = 20
	maxSearchResult = 100
)

// Service looks up catalog items. Reads go through the shared cache and
// concurrent misses for the same key collapse into one query.
type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewService creates a catalog service. A nil cache disables caching.
func NewService(db *gorm.DB, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{db: db, cache: c, ttl: ttl, logger: logger}
}

// GetCatalogItem returns the item with the given id.
func (s *Service) GetCatalogItem(ctx context.Context, id string) (*Item, error) {
	return s.lookup(ctx, "catalog:id:"+id, func() (*Item, error) {
		var item Item
		err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
		return &item, err
	})
}

// GetCatalogItemByName returns the item with the given name, case-insensitively.
func (s *Service) GetCatalogItemByName(ctx context.Context, name string) (*Item, error) {
	name = strings.TrimSpace(name)
	return s.lookup(ctx, "catalog:name:"+strings.ToLower(name), func() (*Item, error) {
		var item Item
		err := s.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&item).Error
		return &item, err
	})
}

func (s *Service) lookup(ctx context.Context, key string, load func() (*Item, error)) (*Item, error) {
	var cached Item
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		item, err := load()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog item: %w", err)
		}
		if err := cache.SetJSON(ctx, s.cache, key, item, s.ttl); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
		return item, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Item), nil
}

// Search returns up to limit items whose names fuzzily match query, best first.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Item{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchN
	}
	if limit > maxSearchResult {
		limit = maxSearchResult
	}

	items, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, searchItems(items))
	out := make([]Item, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, items[m.Index])
	}
	return out, nil
}

func (s *Service) all(ctx context.Context) ([]Item, error) {
	var cached []Item
	if err := cache.GetJSON(ctx, s.cache, allItemsKey, &cached); err == nil {
		return cached, nil
	}

	v, err, _ := s.group.Do(allItemsKey, func() (any, error) {
		var items []Item
		if err := s.db.WithContext(ctx).Order("name").Find(&items).Error; err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		if err := cache.SetJSON(ctx, s.cache, allItemsKey, items, s.ttl); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.String("key", allItemsKey), zap.Error(err))
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Item), nil
}
