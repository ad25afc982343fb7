package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
	repo "github.com/joseph-ayodele/logforms/internal/repository"
)

// dbhealth checks that a backing store is reachable and reports whether the
// log table exists. Coordinates come from the environment:
//
//	STORE_PROVIDER  supabase | postgresql | sqlite (default supabase)
//	STORE_DSN       connection string for postgresql and sqlite
//	SUPABASE_URL, SUPABASE_KEY
//	STORE_TABLE     table name (default log_entries)
func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		return 1
	}
	logger := common.NewLogger(cfg.Log)

	coords := entity.StoreCoordinates{
		Provider:         constants.Provider(os.Getenv("STORE_PROVIDER")),
		APIURL:           os.Getenv("SUPABASE_URL"),
		APIKey:           os.Getenv("SUPABASE_KEY"),
		ConnectionString: os.Getenv("STORE_DSN"),
		TableName:        os.Getenv("STORE_TABLE"),
	}.Normalize()
	if !cfg.ProviderAllowed(coords.Provider) {
		// an operator running this tool may target any provider
		cfg.Store.AllowedProviders = append(cfg.Store.AllowedProviders, string(coords.Provider))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Store.RequestTimeout)
	defer cancel()

	stores := repo.NewRegistry(repo.DefaultOpener(cfg, logger), 1, logger)
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("closing store", "error", err)
		}
	}()

	res, err := repo.NewProvisioner(stores, logger).TestConnection(ctx, coords)
	if err != nil {
		logger.Error("store health: FAIL", "provider", coords.Provider, "error", err)
		return 1
	}
	logger.Info("store health: OK", "provider", coords.Provider, "table", coords.TableName, "schema_exists", res.SchemaExists)
	if !res.SchemaExists {
		return 3
	}
	return 0
}
