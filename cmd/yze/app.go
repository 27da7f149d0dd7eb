package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirkDiggler/yze-core/internal/config"
	"github.com/KirkDiggler/yze-core/internal/consequence"
	"github.com/KirkDiggler/yze-core/internal/events"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/render"
	"github.com/KirkDiggler/yze-core/internal/repositories/actors"
	"github.com/KirkDiggler/yze-core/internal/repositories/records"
	"github.com/KirkDiggler/yze-core/internal/services/roll"
	"github.com/KirkDiggler/yze-core/internal/setting"
)

// app is everything a command needs, wired from config
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	bus      *events.Bus
	registry *setting.Registry
	records  records.Repository
	actors   actors.Repository
	rolls    roll.Service
	renderer *render.RollRenderer

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		bus:      events.NewBus(logger),
		renderer: render.NewRollRenderer(),
	}

	if err := a.openStores(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.registry = setting.NewRegistry(&setting.RegistryConfig{
		Events: a.bus,
		Logger: logger,
	})
	if cfg.Settings.Dir != "" {
		loaded, err := setting.LoadInto(a.registry, cfg.Settings.Dir)
		if err != nil {
			a.Close()
			return nil, err
		}
		logger.Debug("loaded settings",
			zap.String("dir", cfg.Settings.Dir),
			zap.Int("count", len(loaded)))
	}
	if cfg.Settings.Active != "" {
		if err := a.registry.Activate(ctx, cfg.Settings.Active); err != nil {
			a.Close()
			return nil, err
		}
	}

	consequence.NewStressOnPush(&consequence.StressOnPushConfig{
		Actors:   a.actors,
		Priority: 100,
		Logger:   logger,
	}).Register(a.bus)

	a.rolls = roll.NewService(&roll.ServiceConfig{
		Records:  a.records,
		Actors:   a.actors,
		Settings: a.registry,
		Events:   a.bus,
		Renderer: a.renderer,
		Logger:   logger,
	})

	return a, nil
}

func (a *app) openStores(ctx context.Context) error {
	switch a.cfg.Store {
	case config.StoreRedis:
		opts, err := a.cfg.Redis.Options()
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		a.closers = append(a.closers, client.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
		}

		a.records = records.NewRedisRepository(&records.RedisRepoConfig{
			Client:     client,
			MaxRetries: a.cfg.PushRetries,
			Logger:     a.logger,
		})
		a.actors = actors.NewRedisRepository(&actors.RedisRepoConfig{Client: client})

	case config.StoreSQLite:
		recordRepo, err := records.OpenSQLite(&records.SQLiteRepoConfig{
			Path:       a.cfg.SQLite.Path,
			MaxRetries: a.cfg.PushRetries,
			Logger:     a.logger,
		})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, recordRepo.Close)
		a.records = recordRepo

		actorRepo, err := actors.OpenSQLite(a.cfg.SQLite.Path)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, actorRepo.Close)
		a.actors = actorRepo

	default:
		a.records = records.NewInMemoryRepository(nil)
		a.actors = actors.NewInMemoryRepository()
	}

	a.logger.Debug("opened stores", zap.String("store", a.cfg.Store))
	return nil
}

// importActors upserts every actor in a YAML file, filling setting defaults
func (a *app) importActors(ctx context.Context, path string) (int, error) {
	loaded, err := actors.LoadFile(path)
	if err != nil {
		return 0, err
	}

	active := a.registry.Active()
	for _, actor := range loaded {
		setting.ApplyActorDefaults(actor, active)

		err := a.actors.Create(ctx, actor)
		if yzeerr.IsAlreadyExists(err) {
			err = a.actors.Update(ctx, actor)
		}
		if err != nil {
			return 0, yzeerr.Wrapf(err, "failed to import actor %s", actor.ID)
		}
	}
	return len(loaded), nil
}

// Close releases store connections in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	a.closers = nil
}
