package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/joho/godotenv"

	"divcap-lab/internal/calendar"
	"divcap-lab/internal/config"
	"divcap-lab/internal/diag"
	"divcap-lab/internal/ledger"
	"divcap-lab/internal/quotes"
	"divcap-lab/internal/session"
	"divcap-lab/internal/stats"
	"divcap-lab/internal/storage"
	chstore "divcap-lab/internal/storage/clickhouse"
	filestore "divcap-lab/internal/storage/file"
	"divcap-lab/internal/storage/memory"
	pgstore "divcap-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "data/config.txt", "Settings file (rule tuning and enable switches)")
	marketDates := flag.String("market-dates", "data/marketdates.txt", "Market dates schedule file")
	symbol := flag.String("symbol", "PDI", "Instrument to trade")
	shares := flag.Int("shares", session.DefaultShares, "Order size in shares")
	startDate := flag.String("start", "", "First date to simulate (yyyy-MM-dd, empty for schedule start)")
	endDate := flag.String("end", "", "Last date to simulate (yyyy-MM-dd, empty for schedule end)")

	// Quote source
	sourceKind := flag.String("source", "http", "Quote source: http, archive, or alpaca")
	quoteEndpoint := flag.String("quote-endpoint", "", "Quote server endpoint for --source=http (or QUOTE_ENDPOINT)")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (or POSTGRES_DSN)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (or CLICKHOUSE_DSN)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")
	persist := flag.Bool("persist", false, "Persist closed-lot fills to the fill log")

	// Diagnostics
	logDir := flag.String("log-dir", "logs", "Directory for tick diagnostic channels (empty to disable)")
	statsFile := flag.String("stats-file", "stats.txt", "On-disk mirror of the rolling daily statistics")

	flag.Parse()

	logger := log.New(os.Stderr, "[sim] ", log.LstdFlags)

	// .env keeps DSNs and API keys out of the command line.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("WARN: loading .env: %v", err)
	}
	if *postgresDSN == "" {
		*postgresDSN = os.Getenv("POSTGRES_DSN")
	}
	if *clickhouseDSN == "" {
		*clickhouseDSN = os.Getenv("CLICKHOUSE_DSN")
	}
	if *quoteEndpoint == "" {
		*quoteEndpoint = os.Getenv("QUOTE_ENDPOINT")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	cal, err := calendar.Load(*marketDates)
	if err != nil {
		logger.Fatalf("load market dates: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Diagnostic sink
	var sink diag.Sink = diag.Discard
	if *logDir != "" {
		fileSink, err := diag.NewFileSink(*logDir)
		if err != nil {
			logger.Fatalf("create diagnostic sink: %v", err)
		}
		sink = fileSink
	}

	// Stat mirror: in-memory for throwaway runs, a file otherwise so a
	// capture process can share it.
	var mirror storage.StatMirror = memory.NewStatMirror()
	if !*useMemory {
		mirror = filestore.NewStatMirror(*statsFile)
	}

	// Quote source
	var source quotes.Source
	switch *sourceKind {
	case "http":
		if *quoteEndpoint == "" {
			logger.Fatal("--quote-endpoint is required for --source=http")
		}
		source = quotes.NewHTTPSource(*quoteEndpoint, nil, logger)
	case "archive":
		var archive storage.QuoteArchive = memory.NewQuoteArchive()
		if !*useMemory {
			if *clickhouseDSN == "" {
				logger.Fatal("--clickhouse-dsn is required for --source=archive (use --use-memory for an empty in-memory archive)")
			}
			conn, err := chstore.NewConn(ctx, *clickhouseDSN)
			if err != nil {
				logger.Fatalf("connect to clickhouse: %v", err)
			}
			defer conn.Close()
			archive = chstore.NewQuoteArchive(conn)
		}
		source = quotes.NewArchiveSource(archive)
	case "alpaca":
		// Credentials come from APCA_API_KEY_ID / APCA_API_SECRET_KEY.
		client := marketdata.NewClient(marketdata.ClientOpts{})
		source = quotes.NewAlpacaSource(client, nil)
	default:
		logger.Fatalf("Unknown quote source: %s. Must be http, archive, or alpaca", *sourceKind)
	}

	// Fill log
	var fills storage.FillLog
	if *persist {
		fills = memory.NewFillLog()
		if !*useMemory {
			if *postgresDSN == "" {
				logger.Fatal("--postgres-dsn is required for --persist (use --use-memory to keep fills in memory)")
			}
			pool, err := pgstore.NewPool(ctx, *postgresDSN)
			if err != nil {
				logger.Fatalf("connect to postgres: %v", err)
			}
			defer pool.Close()
			fills = pgstore.NewFillLog(pool)
		}
	}

	engine, err := session.New(*symbol, *shares, session.Deps{
		Calendar: cal,
		Source:   source,
		Book:     ledger.New(),
		Daily:    stats.NewDailyStats(mirror, logger),
		Trend:    stats.NewTrend(),
		Sink:     sink,
		Fills:    fills,
		Logger:   logger,
	}, cfg)
	if err != nil {
		logger.Fatalf("build engine: %v", err)
	}

	logger.Printf("Running simulation: symbol=%s shares=%d source=%s range=[%s to %s]",
		*symbol, *shares, *sourceKind, *startDate, *endDate)
	started := time.Now()

	if err := engine.Run(ctx, *startDate, *endDate); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("simulation failed: %v", err)
	}

	engine.WriteReport(os.Stdout)
	logger.Printf("Done in %s", time.Since(started).Round(time.Millisecond))
}
