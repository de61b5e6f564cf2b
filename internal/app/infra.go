package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/angelmondragon/comptoir-backend/pkg/config"
	"github.com/angelmondragon/comptoir-backend/pkg/db"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/migrate"
	pkgredis "github.com/angelmondragon/comptoir-backend/pkg/redis"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
	"github.com/angelmondragon/comptoir-backend/pkg/store/amqpfeed"
	"github.com/angelmondragon/comptoir-backend/pkg/store/memstore"
	"github.com/angelmondragon/comptoir-backend/pkg/store/redisstore"
	"github.com/angelmondragon/comptoir-backend/pkg/store/sqlstore"
)

// Infra holds the connections a binary opens at startup. DB, Redis and AMQP
// are nil when the configuration does not call for them.
type Infra struct {
	Store *store.Store
	DB    *db.Client
	Redis *pkgredis.Client
	AMQP  *amqpfeed.Feed
}

// Open connects the configured store backend and change feed.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Infra, error) {
	infra := &Infra{}
	fail := func(err error) (*Infra, error) {
		return nil, multierr.Append(err, infra.Close())
	}

	if cfg.Redis.Enabled() {
		client, err := pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fail(fmt.Errorf("bootstrap redis: %w", err))
		}
		infra.Redis = client
	}

	var backend store.Backend
	switch strings.ToLower(cfg.Store.Backend) {
	case config.StoreBackendSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return fail(fmt.Errorf("bootstrap database: %w", err))
		}
		infra.DB = client
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return fail(fmt.Errorf("dev migrations: %w", err))
		}
		sqlBackend, err := sqlstore.New(client.DB())
		if err != nil {
			return fail(err)
		}
		backend = sqlBackend
	case config.StoreBackendRedis:
		redisBackend, err := redisstore.New(infra.Redis, logg)
		if err != nil {
			return fail(err)
		}
		backend = redisBackend
	default:
		backend = memstore.New()
	}

	var feed store.Feed
	switch strings.ToLower(cfg.Store.Feed) {
	case config.FeedDriverRedis:
		redisFeed, err := redisstore.NewFeed(infra.Redis, logg)
		if err != nil {
			return fail(err)
		}
		feed = redisFeed
	case config.FeedDriverAMQP:
		amqpFeed, err := amqpfeed.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, logg)
		if err != nil {
			return fail(fmt.Errorf("bootstrap amqp: %w", err))
		}
		infra.AMQP = amqpFeed
		feed = amqpFeed
	default:
		feed = store.NewLocalFeed()
	}

	s, err := store.New(backend, store.WithFeed(feed), store.WithLogger(logg))
	if err != nil {
		return fail(err)
	}
	infra.Store = s

	logg.Info(logg.WithFields(ctx, map[string]any{
		"store_backend": cfg.Store.Backend,
		"feed_driver":   cfg.Store.Feed,
	}), "store ready")
	return infra, nil
}

// Pingers lists the dependencies the readiness probe checks.
func (i *Infra) Pingers() map[string]db.Pinger {
	pingers := map[string]db.Pinger{}
	if i.Store != nil {
		pingers["store"] = i.Store
	}
	if i.Redis != nil {
		pingers["redis"] = i.Redis
	}
	if i.AMQP != nil {
		pingers["amqp"] = i.AMQP
	}
	return pingers
}

// IdempotencyStore returns the Redis client as an idempotency store, or nil
// when Redis is not configured.
func (i *Infra) IdempotencyStore() pkgredis.IdempotencyStore {
	if i.Redis == nil {
		return nil
	}
	return i.Redis
}

// Close releases every open connection.
func (i *Infra) Close() error {
	var err error
	if i.AMQP != nil {
		err = multierr.Append(err, i.AMQP.Close())
	}
	if i.Redis != nil {
		err = multierr.Append(err, i.Redis.Close())
	}
	if i.DB != nil {
		err = multierr.Append(err, i.DB.Close())
	}
	return err
}
