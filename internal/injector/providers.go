package injector

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/compose/internal/config"
	"github.com/zeusync/compose/internal/core/builtin"
	"github.com/zeusync/compose/internal/core/events/bus"
	"github.com/zeusync/compose/internal/core/observability/log"
	"github.com/zeusync/compose/internal/core/template"
	"github.com/zeusync/compose/internal/host"
	"github.com/zeusync/compose/internal/inspect"
)

// Runtime is everything the server binary wires together.
type Runtime struct {
	Config   *config.Config
	Log      log.Log
	Bus      bus.EventBus
	Registry *template.Registry
	Catalog  *template.Catalog
	Host     *host.Host
	Hub      *inspect.Hub
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	bus.New,
	ProvideRegistry,
	ProvideCatalog,
	ProvideHostOptions,
	host.New,
	ProvideHub,
	wire.Struct(new(Runtime), "*"),
)

func ProvideLogger(cfg *config.Config) (log.Log, func(), error) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging.level: %w", err)
	}
	logger := log.NewWithOptions(log.Options{Level: level, Format: cfg.Logging.Format})
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideRegistry returns a registry holding the builtin capability types.
func ProvideRegistry(logger log.Log) (*template.Registry, error) {
	reg := template.NewRegistry()
	if err := builtin.Register(reg, logger); err != nil {
		return nil, err
	}
	return reg, nil
}

// ProvideCatalog loads the configured template document, if any.
func ProvideCatalog(cfg *config.Config, reg *template.Registry, logger log.Log) (*template.Catalog, error) {
	catalog := template.NewCatalog(reg, logger)
	if cfg.Catalog.Path == "" {
		return catalog, nil
	}
	if err := catalog.LoadFile(cfg.Catalog.Path); err != nil {
		return nil, err
	}
	return catalog, nil
}

func ProvideHostOptions(cfg *config.Config) host.Options {
	return host.Options{
		TickRate:      cfg.Host.TickRate,
		FixedTickRate: cfg.Host.FixedTickRate,
		Workers:       cfg.Host.Workers,
	}
}

func ProvideHub(b bus.EventBus, logger log.Log) (*inspect.Hub, func(), error) {
	hub, err := inspect.NewHub(b, logger)
	if err != nil {
		return nil, nil, err
	}
	return hub, func() { _ = hub.Close() }, nil
}
