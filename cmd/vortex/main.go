// Command vortex exports storm tracks as fort.22 files, and to Kafka when
// KAFKA_ENABLED is set.
//
// Usage:
//
//	vortex -out tracks -deck b al112017 florence2018 ./bal062018.dat
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	kafkaadapter "github.com/couchcryptid/storm-vortex-track/internal/adapter/kafka"
	"github.com/couchcryptid/storm-vortex-track/internal/adapter/nhc"
	"github.com/couchcryptid/storm-vortex-track/internal/config"
	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/observability"
	"github.com/couchcryptid/storm-vortex-track/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	deck := flag.String("deck", "a", "file deck: a (advisories) or b (best track)")
	mode := flag.String("mode", "historical", "historical or realtime")
	recordType := flag.String("record-type", "", "restrict output to one record type, e.g. OFCL")
	start := flag.String("start", "", "window start, YYYYMMDDHH")
	end := flag.String("end", "", "window end, YYYYMMDDHH")
	startOffset := flag.Duration("start-offset", 0, "window start relative to the track; negative counts back from the last fix")
	endOffset := flag.Duration("end-offset", 0, "window end relative to the track; negative counts back from the last fix")
	out := flag.String("out", ".", "output directory for fort.22 files")
	overwrite := flag.Bool("overwrite", false, "replace existing output files")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("at least one storm id, name and year, or ATCF file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	template := pipeline.Job{
		Deck:       domain.FileDeck(*deck),
		Mode:       domain.Mode(*mode),
		RecordType: *recordType,
	}
	if template.Start, err = parseDate(*start); err != nil {
		return fmt.Errorf("-start: %w", err)
	}
	if template.End, err = parseDate(*end); err != nil {
		return fmt.Errorf("-end: %w", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "start-offset":
			template.StartOffset = startOffset
		case "end-offset":
			template.EndOffset = endOffset
		}
	})

	jobs := make([]pipeline.Job, flag.NArg())
	for i, storm := range flag.Args() {
		jobs[i] = template
		jobs[i].Storm = storm
	}

	client := nhc.NewClient(cfg.NHCBaseURL, cfg.NHCTimeout, metrics, logger)
	source, err := nhc.NewCachedProvider(client, cfg.NHCCacheSize, cfg.NHCCacheTTL, clockwork.NewRealClock(), metrics)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	sinks := []pipeline.Sink{pipeline.FileSink{Dir: *out, Overwrite: *overwrite, Logger: logger}}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger, metrics)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, writer)
		metrics.SinkEnabled.Set(1)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := pipeline.ProviderLoader{Provider: source, Resolver: source, Logger: logger, AllowFiles: true}
	p := pipeline.New(loader, sinks, logger, metrics, cfg.ExportConcurrency)
	report, err := p.Run(ctx, jobs)
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		for _, f := range report.Failed {
			fmt.Fprintf(os.Stderr, "%s: %v\n", f.Job.Storm, f.Err)
		}
		return fmt.Errorf("%d of %d tracks failed", len(report.Failed), len(jobs))
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006010215", s)
}
