package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coverline/customer-analytics/internal/analytics"
	"github.com/coverline/customer-analytics/internal/records"
	"github.com/coverline/customer-analytics/pkg/config"
	"github.com/coverline/customer-analytics/pkg/logger"
	"github.com/coverline/customer-analytics/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	customersPath := flag.String("customers", "", "customers CSV path")
	policiesPath := flag.String("policies", "", "policies CSV path")
	claimsPath := flag.String("claims", "", "claims CSV path")
	fraudPath := flag.String("fraud", "", "fraud detections CSV path")
	outputPath := flag.String("output", "", "segments CSV output path")
	rollupPath := flag.String("rollup", "", "customer rollup CSV output path")
	policyMixPath := flag.String("policy-mix", "", "policy mix CSV output path")
	asOfFlag := flag.String("as-of", "", "reference date for tenure calculations (YYYY-MM-DD)")
	metricsFile := flag.String("metrics-file", "", "Prometheus textfile collector output path")
	flag.Parse()

	// Load configuration; flags win over environment and file
	cfg, err := config.Load("analytics-pipeline", *configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	override(&cfg.Inputs.Customers, *customersPath)
	override(&cfg.Inputs.Policies, *policiesPath)
	override(&cfg.Inputs.Claims, *claimsPath)
	override(&cfg.Inputs.FraudDetections, *fraudPath)
	override(&cfg.Output.Segments, *outputPath)
	override(&cfg.Output.Rollup, *rollupPath)
	override(&cfg.Output.PolicyMix, *policyMixPath)
	override(&cfg.App.AsOf, *asOfFlag)
	if *metricsFile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.TextfilePath = *metricsFile
	}

	asOf := time.Now().UTC()
	if cfg.App.AsOf != "" {
		asOf, err = time.Parse("2006-01-02", cfg.App.AsOf)
		if err != nil {
			log.Fatalf("Invalid as-of date %q: %v", cfg.App.AsOf, err)
		}
	}

	// Initialize logger
	if err := logger.Init(cfg.App.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire the pipeline
	pipeline := metrics.NewPipeline()
	source := records.NewRepository(cfg.Inputs.Customers, cfg.Inputs.Policies, cfg.Inputs.Claims, cfg.Inputs.FraudDetections)
	sink := analytics.NewRepository(cfg.Output.Segments, cfg.Output.Rollup, cfg.Output.PolicyMix)
	service := analytics.NewService(source, sink, pipeline)

	report, runErr := service.Run(ctx, asOf)
	if runErr != nil {
		pipeline.RunSuccess.Set(0)
		logger.Error("analytics run failed", zap.Error(runErr))
	}

	// Written on failure too so the collector sees run_success drop
	if cfg.Metrics.TextfileEnabled() {
		if err := pipeline.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Error("writing metrics textfile failed",
				zap.String("path", cfg.Metrics.TextfilePath), zap.Error(err))
		}
	}

	if runErr != nil {
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("customer segmentation finished",
		zap.String("run_id", report.RunID),
		zap.Int("customers_scored", report.CustomersScored),
		zap.Int("rows_dropped", report.Dropped.Total()),
		zap.String("output", cfg.Output.Segments))
}

func override(target *string, value string) {
	if value != "" {
		*target = value
	}
}
