// Command migration-detector runs the segment-based migration pipeline
// (spec.md §4.1-§4.11) over a CSV of daily observations and writes the
// detected events, and optionally a debug segments CSV, back out.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/saaga0h/migration-detector/internal/calendar"
	"github.com/saaga0h/migration-detector/internal/ingest"
	"github.com/saaga0h/migration-detector/internal/migration"
	"github.com/saaga0h/migration-detector/internal/pipeline"
	"github.com/saaga0h/migration-detector/internal/segment"
	"github.com/saaga0h/migration-detector/internal/trajectory"
	"github.com/saaga0h/migration-detector/pkg/config"
	"github.com/saaga0h/migration-detector/pkg/health"
	"github.com/saaga0h/migration-detector/pkg/mqtt"
	"github.com/saaga0h/migration-detector/pkg/postgres"
	"github.com/saaga0h/migration-detector/pkg/redis"
)

func main() {
	cfg := config.NewConfig()
	cfg.ServiceName = "migration-detector"

	var inputPath, outputPath, segmentsPath, yamlPath string
	pflag.StringVar(&inputPath, "input", "", "Input observations CSV (user_id, date, location)")
	pflag.StringVar(&outputPath, "output", "", "Output migration events CSV (defaults to stdout)")
	pflag.StringVar(&segmentsPath, "segments-debug", "", "Optional debug segments CSV path")
	pflag.StringVar(&yamlPath, "config", "", "Optional YAML file pinning the full parameter set")

	cfg.LoadFromEnv()
	cfg.LoadFromFlags()
	if yamlPath != "" {
		if err := cfg.LoadFromYAML(yamlPath); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		// The environment and command-line flags override the YAML file.
		cfg.LoadFromEnv()
		pflag.Parse()
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "Config error: --input is required")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	batchID := uuid.NewString()
	logger.Info("Starting migration-detector batch", "batch_id", batchID, "input", inputPath)

	in, err := os.Open(inputPath)
	if err != nil {
		logger.Error("Failed to open input CSV", "error", err)
		os.Exit(1)
	}
	defer in.Close()

	obs, err := ingest.ReadObservations(in)
	if err != nil {
		logger.Error("Failed to parse input CSV", "error", err)
		os.Exit(1)
	}

	dates := make([]int, len(obs))
	for i, o := range obs {
		dates[i] = o.Date
	}
	idx, err := calendar.NewFromDates(dates)
	if err != nil {
		logger.Error("Failed to build calendar index", "error", err)
		os.Exit(1)
	}

	builder := trajectory.NewBuilder(idx)
	if err := builder.AddAll(obs); err != nil {
		logger.Error("Rejected input", "error", err)
		os.Exit(1)
	}
	records := builder.Records()
	userIDs := builder.UserIDs()

	var redisClient redis.Client
	var mqttClient mqtt.Client
	var notifier *pipeline.Notifier
	var cache *pipeline.SegmentCache
	var pgSink *ingest.PostgresSink

	if cfg.EnableRedisQueue {
		redisClient = redis.NewClient(cfg, logger)
		if err := redisClient.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, continuing without the work queue", "error", err)
			redisClient = nil
		} else {
			cache = pipeline.NewSegmentCache(redisClient, batchID, cfg.SegmentCacheTTL)
			queue := pipeline.NewWorkQueue(redisClient, batchID)
			if err := queue.Enqueue(ctx, userIDs); err != nil {
				logger.Warn("Failed to enqueue batch work", "error", err)
			}
		}
	}

	if cfg.EnableMQTTNotify {
		mqttClient = mqtt.NewClient(cfg, logger)
		if err := mqttClient.Connect(ctx); err != nil {
			logger.Warn("MQTT unavailable, continuing without event notifications", "error", err)
			mqttClient = nil
		} else {
			defer mqttClient.Disconnect()
			notifier = pipeline.NewNotifier(mqttClient, logger)
			if err := notifier.PublishBatchStatus(batchID, "started"); err != nil {
				logger.Warn("Failed to publish batch status", "error", err)
			}
		}
	}

	if cfg.EnablePostgresIO {
		pg := postgres.NewClient(cfg, logger)
		if err := pg.Connect(ctx); err != nil {
			logger.Warn("Postgres unavailable, continuing with CSV only", "error", err)
		} else {
			defer pg.Disconnect()
			pgSink = ingest.NewPostgresSink(pg)
		}
	}

	var httpServer *http.Server
	if cfg.EnableRedisQueue || cfg.EnableMQTTNotify {
		checker := health.NewChecker(mqttClient, redisClient, logger)
		httpServer = startHealthServer(cfg.HealthPort, checker, logger)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Error shutting down health server", "error", err)
			}
		}()
	}

	params := pipeline.ParamsFromConfig(cfg)
	runner := pipeline.NewRunner(cfg.WorkerCount, logger)
	results := runner.Run(ctx, userIDs, records, idx, params)

	var allEvents []migration.Event
	var allSegments []ingest.DebugSegment
	for _, res := range results {
		if res.Err != nil {
			logger.Warn("Skipping user after processing failure", "user_id", res.UserID, "error", res.Err)
			continue
		}
		allEvents = append(allEvents, res.Events...)
		if cache != nil {
			if err := cache.Put(ctx, res.UserID, res.Debug); err != nil {
				logger.Warn("Failed to cache segments", "user_id", res.UserID, "error", err)
			}
		}
		if segmentsPath != "" {
			allSegments = append(allSegments, debugSegmentsFor(res.UserID, res.Debug, idx)...)
		}
		if notifier != nil {
			notifier.Publish(res.Events)
		}
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			logger.Error("Failed to create output CSV", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := ingest.WriteEvents(out, allEvents, cfg.ShortTermFilterEnabled); err != nil {
		logger.Error("Failed to write output CSV", "error", err)
		os.Exit(1)
	}

	if segmentsPath != "" {
		sf, err := os.Create(segmentsPath)
		if err != nil {
			logger.Error("Failed to create segments debug CSV", "error", err)
			os.Exit(1)
		}
		defer sf.Close()
		sortDebugSegments(allSegments)
		if err := ingest.WriteSegments(sf, allSegments); err != nil {
			logger.Error("Failed to write segments debug CSV", "error", err)
			os.Exit(1)
		}
	}

	if pgSink != nil {
		if err := pgSink.WriteEvents(ctx, batchID, allEvents); err != nil {
			logger.Warn("Failed to persist events to Postgres", "error", err)
		}
		if segmentsPath != "" {
			if err := pgSink.WriteSegments(ctx, batchID, allSegments); err != nil {
				logger.Warn("Failed to persist debug segments to Postgres", "error", err)
			}
		}
	}

	if notifier != nil {
		if err := notifier.PublishBatchStatus(batchID, "completed"); err != nil {
			logger.Warn("Failed to publish batch completion", "error", err)
		}
	}

	logger.Info("Batch complete", "batch_id", batchID, "users", len(userIDs), "events", len(allEvents))
}

// startHealthServer exposes a liveness endpoint while the batch holds
// live Redis/MQTT connections, the same Nomad/Consul health check
// pattern used elsewhere in this codebase, so this batch tool can be
// run as a supervised job too.
func startHealthServer(port int, checker *health.Checker, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", checker.HandlerFunc())

	server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		logger.Info("Starting health check server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health server error", "error", err)
		}
	}()
	return server
}

func debugSegmentsFor(userID string, s4 segment.Collection, idx calendar.Index) []ingest.DebugSegment {
	var out []ingest.DebugSegment
	for _, loc := range s4.Locations() {
		for _, seg := range s4[loc] {
			out = append(out, ingest.DebugSegment{
				UserID:           userID,
				Location:         loc,
				SegmentStartDate: idx.MustIndexToDate(seg.Start),
				SegmentEndDate:   idx.MustIndexToDate(seg.End),
				SegmentLength:    seg.Len(),
			})
		}
	}
	return out
}

// sortDebugSegments orders rows by (user_id, segment_start_date), per spec.md §6.
func sortDebugSegments(segs []ingest.DebugSegment) {
	sort.Slice(segs, func(i, j int) bool {
		if segs[i].UserID != segs[j].UserID {
			return segs[i].UserID < segs[j].UserID
		}
		return segs[i].SegmentStartDate < segs[j].SegmentStartDate
	})
}
