package cmd

import (
	"context"
	"fmt"
	"time"

	"marketplace/core/cache"
	"marketplace/core/cdn"
	"marketplace/core/config"
	"marketplace/core/database"
	"marketplace/core/messaging"
	"marketplace/core/metrics"
	"marketplace/core/storage"
	"marketplace/feature/catalog"
	"marketplace/feature/contractor"
	"marketplace/feature/market"
	"marketplace/feature/market/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services is everything the commands need, built from configuration.
type services struct {
	db      *gorm.DB
	objects storage.Client
	catalog *catalog.Service
	market  *market.Service
	metrics *metrics.Manager
	closers []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// buildServices connects to every backend and assembles the market service.
// Redis and NATS are optional and skipped when disabled.
func buildServices(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*services, error) {
	svcs := &services{}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	svcs.db = db
	if sqlDB, err := db.DB(); err == nil {
		svcs.closers = append(svcs.closers, func() { _ = sqlDB.Close() })
	}

	objects, err := storage.NewClient(cfg.Storage)
	if err != nil {
		svcs.Close()
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := storage.EnsureBucket(ctx, objects, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		svcs.Close()
		return nil, err
	}
	svcs.objects = objects

	resources, err := cdn.NewService(db, objects, nil, cdn.Options{
		Bucket:    cfg.Storage.Bucket,
		PublicURL: cfg.Storage.PublicURL,
	}, logg)
	if err != nil {
		svcs.Close()
		return nil, err
	}

	var readCache cache.Cache = cache.Noop{}
	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Cache)
		if err != nil {
			svcs.Close()
			return nil, err
		}
		svcs.closers = append(svcs.closers, func() { _ = client.Close() })
		readCache = cache.NewRedisCache(client, cfg.Cache.Prefix)
		logg.Info("Connected to redis", zap.String("addr", cfg.Cache.Addr))
	}

	var (
		bus      *messaging.Client
		notifier market.Notifier
	)
	if cfg.Messaging.Enabled {
		nc, err := messaging.NewConnection(cfg.Messaging, logg)
		if err != nil {
			svcs.Close()
			return nil, err
		}
		svcs.closers = append(svcs.closers, nc.Close)
		bus = messaging.NewClient(nc, cfg.Messaging)
		notifier = market.NewNATSNotifier(bus, cfg.Messaging.BidSubject)
		logg.Info("Connected to NATS", zap.String("url", cfg.Messaging.URL))
	} else {
		bus = messaging.NewClient(nil, cfg.Messaging)
		logg.Warn("Messaging disabled; bid notifications are dropped and offers cannot be created")
	}

	if cfg.Metrics.Enabled {
		svcs.metrics = metrics.NewManager(cfg.Metrics.Namespace)
	}

	svcs.catalog = catalog.NewService(db, readCache, cfg.Cache.TTL(), logg)
	svcs.market = market.NewService(market.Deps{
		Store:       store.NewGormStore(db),
		Catalog:     svcs.catalog,
		Permissions: contractor.NewChecker(db),
		Resources:   resources,
		Offers:      market.NewNATSOfferCreator(bus, cfg.Messaging.OfferSubject),
		Notifier:    notifier,
		Metrics:     svcs.metrics,
		Logger:      logg,
		Config:      cfg.Market,
		Clock:       time.Now,
	})
	return svcs, nil
}
