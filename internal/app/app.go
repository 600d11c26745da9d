// Package app wires configuration into the running components.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"eventplanner/internal/ai"
	"eventplanner/internal/auth"
	"eventplanner/internal/config"
	"eventplanner/internal/db"
	"eventplanner/internal/generate"
	httpx "eventplanner/internal/http"
	"eventplanner/internal/jobs"
	"eventplanner/internal/normalize"
	"eventplanner/internal/notify"
	"eventplanner/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config config.Config
	Log    *zap.Logger

	DB       *gorm.DB // nil with STORE=memory
	Store    store.Store
	Queue    jobs.Queue
	Generate *generate.Service
	Notify   notify.Publisher
	JWT      *auth.JWT

	closers []func() error
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log, JWT: auth.NewJWT(cfg.JWTSecret)}

	switch cfg.Store {
	case config.StoreMemory:
		q := jobs.NewMemoryQueue()
		a.Queue = q
		a.Store = store.NewMemory(q)
		log.Warn("using in-memory store; data is lost on exit")
	default:
		gdb, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.DB = gdb
		a.Queue = &jobs.Repo{DB: gdb}
		a.Store = store.NewPostgres(gdb)
		if sqlDB, err := gdb.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
	}

	a.Notify = notify.Noop{}
	if cfg.RedisURL != "" {
		r, err := notify.NewRedis(cfg.RedisURL, cfg.RedisChannel)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			_ = a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.Notify = r
		a.closers = append(a.closers, r.Close)
	}

	completer, err := ai.New(cfg.AI, ai.NewLogObserver(log))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Generate = &generate.Service{
		Store:     a.Store,
		AI:        completer,
		Normalize: normalize.New(),
		Notify:    a.Notify,
		Log:       log.Named("generate"),
	}
	return a, nil
}

// Migrate creates the Postgres schema. It is a no-op for the memory store.
func (a *App) Migrate() error {
	if a.DB == nil {
		return errors.New("migrate requires STORE=postgres")
	}
	return db.AutoMigrateAndIndexes(a.DB)
}

func (a *App) Handler() http.Handler {
	return httpx.NewRouter(a.Config, httpx.Deps{
		Store:    a.Store,
		Generate: a.Generate,
		Notify:   a.Notify,
		JWT:      a.JWT,
		Log:      a.Log,
	})
}

// Worker runs queued core generation through the same service as the endpoints.
func (a *App) Worker(id string) *jobs.Worker {
	return &jobs.Worker{
		ID:    id,
		Queue: a.Queue,
		Generate: func(ctx context.Context, eventID string) error {
			_, err := a.Generate.EventData(ctx, generate.EventDataInput{EventID: eventID})
			return err
		},
		Log: a.Log.Named("worker").With(zap.String("worker_id", id)),
	}
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
