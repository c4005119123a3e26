// Command citescope finds content gaps in AI search citations.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/citescope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/citescope/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/citescope/internal/adapters/driving/cli"
	"github.com/custodia-labs/citescope/internal/core/services"
	"github.com/custodia-labs/citescope/internal/logger"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	err := cli.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// bootstrap opens the config file and database and wires the services.
func bootstrap(configDir, dataDir string) (cli.Services, func() error, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("opening config: %w", err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("opening database: %w", err)
	}

	settings := services.NewSettingsService(configStore)
	citations := store.CitationStore()
	queries := store.QueryStore()
	results := store.ResultStore()

	svc := cli.Services{
		Ingest:   services.NewIngestService(citations, queries, settings),
		Analysis: services.NewAnalysisService(citations, queries, results, settings),
		Query:    services.NewQueryService(queries, settings),
		Settings: settings,
	}
	release := func() error {
		return errors.Join(configStore.Save(), store.Close())
	}
	return svc, release, nil
}
