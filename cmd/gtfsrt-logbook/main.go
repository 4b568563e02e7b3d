package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theoremus-urban-solutions/gtfsrt-logbook/archive"
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/config"
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/export"
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/gtfs"
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/gtfsrt"
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/internal"
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/metrics"
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/pipeline"
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/publish"
)

func main() {
	archiveDir := flag.String("archiveDir", "", "directory of snapshot files (overrides config)")
	archiveZip := flag.String("archiveZip", "", "zip archive of snapshot files (overrides config)")
	stopsFile := flag.String("stops", "", "stops.txt path for the stop name join (overrides config)")
	stopsZip := flag.String("stopsZip", "", "GTFS zip containing stops.txt (overrides config)")
	feeds := flag.String("feeds", "", "comma-separated feed identifiers; empty processes all")
	chunks := flag.Int("chunks", 0, "contiguous chunks per feed (0 = default)")
	csvDir := flag.String("csvDir", "", "directory for per-feed CSV output (overrides config)")
	sqlitePath := flag.String("sqlite", "", "SQLite database path (overrides config)")
	postgresURL := flag.String("postgres", "", "Postgres URL (overrides config)")
	natsURL := flag.String("nats", "", "NATS URL for publishing trips (overrides config)")
	metricsAddr := flag.String("metricsAddr", "", "address for /metrics (overrides config)")
	flag.Parse()

	internal.InitLogging()
	if err := config.LoadAppConfig(); err != nil {
		// Flags alone are enough to run; the config file is optional.
		log.Printf("no config file loaded: %v", err)
	}
	cfg := config.Config
	applyFlagOverrides(&cfg, *archiveDir, *archiveZip, *stopsFile, *stopsZip,
		*feeds, *chunks, *csvDir, *sqlitePath, *postgresURL, *natsURL, *metricsAddr)

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func applyFlagOverrides(cfg *config.AppConfig, archiveDir, archiveZip, stopsFile, stopsZip,
	feeds string, chunks int, csvDir, sqlitePath, postgresURL, natsURL, metricsAddr string) {
	if archiveDir != "" {
		cfg.Archive.Dir = archiveDir
	}
	if archiveZip != "" {
		cfg.Archive.Zip = archiveZip
	}
	if stopsFile != "" {
		cfg.Stops.File = stopsFile
	}
	if stopsZip != "" {
		cfg.Stops.Zip = stopsZip
	}
	if feeds != "" {
		cfg.Feeds = nil
		for _, f := range strings.Split(feeds, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.Feeds = append(cfg.Feeds, f)
			}
		}
	}
	if chunks > 0 {
		cfg.Chunks = chunks
	}
	if csvDir != "" {
		cfg.Export.CSVDir = csvDir
	}
	if sqlitePath != "" {
		cfg.Export.SQLitePath = sqlitePath
	}
	if postgresURL != "" {
		cfg.Export.PostgresURL = postgresURL
	}
	if natsURL != "" {
		cfg.NATS.URL = natsURL
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
}

func run(cfg config.AppConfig) error {
	ctx := context.Background()

	feeds, err := readArchive(cfg.Archive)
	if err != nil {
		return err
	}
	feeds = selectFeeds(feeds, cfg.Feeds)
	if len(feeds) == 0 {
		return fmt.Errorf("no snapshots found for the requested feeds")
	}

	var names gtfs.StopNames
	switch {
	case cfg.Stops.File != "":
		if names, err = gtfs.NewStopNamesFromFile(cfg.Stops.File); err != nil {
			return err
		}
	case cfg.Stops.Zip != "":
		if names, err = gtfs.NewStopNamesFromZip(cfg.Stops.Zip); err != nil {
			return err
		}
	}

	collector := metrics.NewCollector()
	if cfg.Metrics.Addr != "" {
		collector.Serve(cfg.Metrics.Addr)
	}

	var pub *publish.NATSPublisher
	if cfg.NATS.URL != "" {
		if pub, err = publish.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, collector); err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer pub.Close()
	}

	var sqliteDB *export.SQLite
	if cfg.Export.SQLitePath != "" {
		if sqliteDB, err = export.OpenSQLite(ctx, cfg.Export.SQLitePath); err != nil {
			return err
		}
		defer sqliteDB.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Export.PostgresURL != "" {
		if pool, err = pgxpool.New(ctx, cfg.Export.PostgresURL); err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if err := export.EnsurePostgresSchema(ctx, pool); err != nil {
			return err
		}
	}

	results := pipeline.Run(ctx, feeds, pipeline.Options{Chunks: cfg.Chunks}, collector)

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		log.Printf("feed %s: %d trips, %d records, %d cut, %d parse errors",
			res.FeedID, len(res.Logbook), res.Logbook.RecordCount(), res.RecordsCut, len(res.ParseErrors))
		for _, pe := range res.ParseErrors {
			log.Printf("feed %s: parse error: %v", res.FeedID, pe)
		}

		rows := export.Flatten(res.Logbook, names)
		if cfg.Export.CSVDir != "" {
			path := filepath.Join(cfg.Export.CSVDir, res.FeedID+"_trips.csv")
			if err := export.WriteCSVFile(path, rows); err != nil {
				return err
			}
			log.Printf("feed %s: wrote %s", res.FeedID, path)
		}
		if sqliteDB != nil {
			runID, err := sqliteDB.WriteLogbook(ctx, res.FeedID, rows)
			if err != nil {
				return err
			}
			log.Printf("feed %s: sqlite run %s", res.FeedID, runID)
		}
		if pool != nil {
			runID, err := export.WritePostgres(ctx, pool, res.FeedID, rows)
			if err != nil {
				return err
			}
			log.Printf("feed %s: postgres run %s", res.FeedID, runID)
		}
		if pub != nil {
			if err := pub.PublishLogbook(res.FeedID, res.Logbook); err != nil {
				log.Printf("feed %s: publish: %v", res.FeedID, err)
			}
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d feeds failed", failed)
	}
	return nil
}

func readArchive(a config.ArchiveConfig) (map[string][]gtfsrt.RawSnapshot, error) {
	switch {
	case a.Dir != "":
		return archive.ReadDir(a.Dir)
	case a.Zip != "":
		return archive.ReadZip(a.Zip)
	default:
		return nil, fmt.Errorf("no snapshot archive configured; pass -archiveDir or -archiveZip")
	}
}

func selectFeeds(feeds map[string][]gtfsrt.RawSnapshot, wanted []string) map[string][]gtfsrt.RawSnapshot {
	if len(wanted) == 0 {
		return feeds
	}
	out := map[string][]gtfsrt.RawSnapshot{}
	for _, id := range wanted {
		if snaps, ok := feeds[id]; ok {
			out[id] = snaps
		} else {
			log.Printf("feed %s: no snapshots in archive", id)
		}
	}
	return out
}
