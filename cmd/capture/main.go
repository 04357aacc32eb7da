package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"divcap-lab/internal/capture"
	"divcap-lab/internal/diag"
	"divcap-lab/internal/storage"
	chstore "divcap-lab/internal/storage/clickhouse"
	"divcap-lab/internal/storage/memory"
)

// Default contract subscriptions for the local gateway feed.
var defaultSymbols = map[string]string{
	"73128548":  "DIA",
	"756733":    "SPY",
	"107976119": "PDI",
	"416921":    "TNX",
	"13455763":  "VIX",
	"320227571": "QQQ",
	"479624278": "BTC",
	"15016062":  "USD.CAD",
}

func main() {
	// Parse flags
	wsURL := flag.String("ws-url", "wss://localhost:5000/v1/api/ws", "Market-data websocket endpoint")
	conids := flag.String("conids", "", "Extra conid=symbol pairs, comma-separated")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (or CLICKHOUSE_DSN)")
	useMemory := flag.Bool("use-memory", false, "Use an in-memory quote archive")
	logDir := flag.String("log-dir", "logs", "Directory for capture and error logs (empty to disable)")
	insecureTLS := flag.Bool("insecure-skip-verify", true, "Skip TLS verification (the local gateway uses a self-signed cert)")
	waitForOpen := flag.Bool("wait", true, "Wait for the capture window to open before connecting")

	flag.Parse()

	logger := log.New(os.Stderr, "[capture] ", log.LstdFlags)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("WARN: loading .env: %v", err)
	}
	if *clickhouseDSN == "" {
		*clickhouseDSN = os.Getenv("CLICKHOUSE_DSN")
	}

	symbols := make(map[string]string, len(defaultSymbols))
	for k, v := range defaultSymbols {
		symbols[k] = v
	}
	for _, pair := range strings.Split(*conids, ",") {
		if conid, symbol, ok := strings.Cut(strings.TrimSpace(pair), "="); ok {
			symbols[strings.TrimSpace(conid)] = strings.TrimSpace(symbol)
		}
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

	// Quote archive
	var archive storage.QuoteArchive = memory.NewQuoteArchive()
	if !*useMemory {
		if *clickhouseDSN == "" {
			logger.Fatal("--clickhouse-dsn is required (use --use-memory to capture into memory)")
		}
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		archive = chstore.NewQuoteArchive(conn)
	}

	sub := capture.NewSubscriber(symbols, archive, sink, logger)

	if *waitForOpen {
		if err := waitForWindow(ctx, logger); err != nil {
			logger.Fatalf("wait for capture window: %v", err)
		}
	}

	if err := runStream(ctx, logger, sub, *wsURL, *insecureTLS); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("stream failed: %v", err)
	}
	logger.Println("Shutdown complete")
}

// waitForWindow blocks until the local clock reaches the capture window.
func waitForWindow(ctx context.Context, logger *log.Logger) error {
	for {
		now := time.Now().Format("15:04:05")
		if now >= capture.StartClock {
			return nil
		}
		logger.Printf("Waiting for capture window (%s)... current: %s", capture.StartClock, now)
		select {
		case <-time.After(10 * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runStream dials the feed, sends the subscription frames, and pumps
// messages into the subscriber until the window closes or the feed drops.
func runStream(ctx context.Context, logger *log.Logger, sub *capture.Subscriber, url string, insecureTLS bool) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: insecureTLS},
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Printf("Connected to %s", url)

	// Unblock ReadMessage on shutdown.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	// The gateway drops subscriptions sent before it finishes its own
	// session handshake; a short pause avoids that.
	time.Sleep(2 * time.Second)
	for _, req := range sub.SubscribeRequests() {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
			return err
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := sub.HandleMessage(ctx, raw); err != nil {
			if errors.Is(err, capture.ErrOutsideHours) {
				logger.Println("Outside configured trading hours. Stopping stream.")
				return nil
			}
			return err
		}
	}
}
