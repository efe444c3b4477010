// Command import bulk-loads property and disaster declaration CSV files into
// a StormHaven database, creating the schema and analytics views as needed,
// and rebuilds the property-disaster location join.
//
// Usage:
//
//	go run ./cmd/import \
//	  -db stormhaven.duckdb \
//	  -properties data/properties.csv \
//	  -declarations data/declarations.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/stormhaven/stormhaven/internal/adapter/duckdb"
	"github.com/stormhaven/stormhaven/internal/csvdata"
	"github.com/stormhaven/stormhaven/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dbPath := flag.String("db", "stormhaven.duckdb", "database path")
	propertiesPath := flag.String("properties", "", "property CSV file")
	declarationsPath := flag.String("declarations", "", "declarations CSV file")
	flag.Parse()

	if *propertiesPath == "" && *declarationsPath == "" {
		flag.Usage()
		return fmt.Errorf("nothing to do: pass -properties and/or -declarations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := observability.NewLogger(os.Stderr, "info", "text")
	store, err := duckdb.Open(ctx, *dbPath, clockwork.NewRealClock(), logger, observability.NewMetrics())
	if err != nil {
		return err
	}
	defer store.Close()

	if *propertiesPath != "" {
		props, err := csvdata.ReadProperties(*propertiesPath)
		if err != nil {
			return err
		}
		if err := store.ImportProperties(ctx, props); err != nil {
			return err
		}
		log.Printf("imported %d properties", len(props))
	}

	if *declarationsPath != "" {
		decls, err := csvdata.ReadDeclarations(*declarationsPath)
		if err != nil {
			return err
		}
		if err := store.UpsertDeclarations(ctx, decls); err != nil {
			return err
		}
		log.Printf("imported %d declarations", len(decls))
	}

	located, err := store.RebuildLocated(ctx)
	if err != nil {
		return err
	}
	log.Printf("rebuilt location join: %d rows", located)

	counts, err := store.TableCounts(ctx)
	if err != nil {
		return err
	}
	for _, table := range []string{"property", "features", "disaster", "disaster_types", "located"} {
		log.Printf("%-15s %d rows", table, counts[table])
	}
	return nil
}
