package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	cgrregistry "github.com/diwise/cgr-adapter/internal/pkg/application/cgr-registry"
	"github.com/diwise/cgr-adapter/internal/pkg/infrastructure/router"
	"github.com/diwise/cgr-adapter/internal/pkg/presentation/api/cgr"
	"github.com/diwise/cgr-adapter/pkg/cgr/client"
	"github.com/diwise/cgr-adapter/pkg/cgr/registry"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const (
	serviceName string = "cgr-registry"
)

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	cfg := LoadConfiguration(ctx)

	var metadata io.Reader
	if f, err := os.Open(cfg.metadataPath); err == nil {
		defer f.Close()
		metadata = f
	} else {
		log.Warn("no metadata configuration found", slog.String("path", cfg.metadataPath), "err", err.Error())
	}

	handler, err := initialize(ctx, cfg, metadata)
	if err != nil {
		log.Error("failed to initialize service", "err", err.Error())
		os.Exit(1)
	}

	log.Info("starting to listen for connections", slog.String("port", cfg.servicePort))

	err = http.ListenAndServe(":"+cfg.servicePort, handler)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}

// initialize seeds an adapter from the metadata configuration, if any, and
// from the remote registry, if configured, and returns the API router
func initialize(ctx context.Context, cfg Config, metadata io.Reader) (http.Handler, error) {
	log := logging.GetFromContext(ctx)

	adapter := registry.New()

	if metadata != nil {
		metadataCfg, err := cgrregistry.LoadConfiguration(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to load metadata configuration: %w", err)
		}

		if err = cgrregistry.Seed(ctx, adapter, metadataCfg); err != nil {
			return nil, err
		}
	}

	if cfg.remoteURL != "" {
		if err := client.RefreshMetadataCache(ctx, cfg.remoteURL, adapter); err != nil {
			return nil, fmt.Errorf("failed to refresh metadata from %s: %w", cfg.remoteURL, err)
		}
	}

	log.Debug("metadata ready",
		slog.Int("types", len(adapter.MetadataCache().GeoObjectTypes())),
		slog.Int("hierarchies", len(adapter.MetadataCache().HierarchyTypes())),
	)

	r := router.New(serviceName)
	cgr.RegisterHandlers(ctx, r, adapter)

	return r, nil
}
