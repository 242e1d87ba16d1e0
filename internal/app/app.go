// Package app wires config, logging, storage and the task store together.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/storage"
	"taskflow/internal/task"
)

type App struct {
	Config config.Config
	KV     storage.Provider
	Store  *task.Store
	Logger *zap.Logger

	closeLog func()
}

// Open loads the config at configPath (see config.ResolveConfigPath when
// empty), opens the configured backend and loads the task store. A non-empty
// backend overrides the configured one.
func Open(ctx context.Context, configPath, backend string) (*App, error) {
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if backend != "" {
		cfg.Backend = backend
	}

	log, closeLog, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		Path:     cfg.Log.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	kv, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}

	a, err := New(ctx, cfg, kv, log)
	if err != nil {
		kv.Close()
		closeLog()
		return nil, err
	}
	a.closeLog = closeLog
	log.Info("taskflow started", zap.String("backend", cfg.Backend), zap.String("config", configPath))
	return a, nil
}

// New builds an App over an already opened backend and loads the store.
func New(ctx context.Context, cfg config.Config, kv storage.Provider, log *zap.Logger, opts ...task.Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	seed, err := task.SeedByName(cfg.Seed)
	if err != nil {
		return nil, err
	}
	base := []task.Option{task.WithSeed(seed), task.WithLogger(log)}
	store := task.NewStore(kv, append(base, opts...)...)
	if _, err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return &App{Config: cfg, KV: kv, Store: store, Logger: log, closeLog: func() {}}, nil
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var err error
	if a.KV != nil {
		err = a.KV.Close()
		a.KV = nil
	}
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
	return err
}
