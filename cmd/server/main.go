package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/compose/internal/config"
	"github.com/zeusync/compose/internal/core/observability/log"
	"github.com/zeusync/compose/internal/core/template"
	"github.com/zeusync/compose/internal/injector"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path, err := config.Path(os.Args[1:])
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	rt, cleanup, err := injector.InitializeRuntime(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	logger := rt.Log.Named("main")
	logger.Info("Runtime ready",
		log.String("config", path),
		log.Int("templates", rt.Catalog.Len()))

	spawned := 0
	for _, s := range cfg.Host.Spawn {
		for i := 0; i < s.Count; i++ {
			e, err := rt.Catalog.Create(s.Template)
			if err != nil {
				return fmt.Errorf("spawn %s: %w", s.Template, err)
			}
			rt.Host.Add(e)
			spawned++
		}
	}
	if err := rt.Host.Start(); err != nil {
		logger.Warn("Some entities failed to start", log.Error(err))
	}
	logger.Info("Host started", log.Int("entities", spawned))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return rt.Host.Run(ctx)
	})

	if cfg.Catalog.Watch {
		watcher, err := template.NewWatcher(rt.Catalog, cfg.Catalog.Path, rt.Log)
		if err != nil {
			stop()
			_ = group.Wait()
			return err
		}
		group.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	if cfg.Inspect.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/ws", rt.Hub)
		srv := &http.Server{
			Addr:              cfg.Inspect.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		group.Go(func() error {
			logger.Info("Inspector listening", log.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = rt.Hub.Close()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = group.Wait()
	logger.Info("Shutdown complete", log.Uint64("frames", rt.Host.Frames()))
	return err
}
