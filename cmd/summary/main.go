package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coverline/customer-analytics/internal/reporting"
	"github.com/coverline/customer-analytics/pkg/config"
	"github.com/coverline/customer-analytics/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	inputPath := flag.String("input", "", "segments CSV to summarize (defaults to the pipeline output path)")
	topN := flag.Int("top", 0, "number of top-risk customers to show")
	modeFlag := flag.String("mode", "", "ranking mode: score, exposure or both")
	flag.Parse()

	// Load configuration; flags win over environment and file
	cfg, err := config.Load("segment-summary", *configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *inputPath == "" {
		*inputPath = cfg.Output.Segments
	}
	if *topN <= 0 {
		*topN = cfg.Report.TopN
	}
	if *modeFlag == "" {
		*modeFlag = cfg.Report.Mode
	}
	mode, err := reporting.ParseRankingMode(*modeFlag)
	if err != nil {
		log.Fatalf("Invalid ranking mode: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.App.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := reporting.NewService(reporting.NewRepository(*inputPath))
	report, err := service.BuildReport(ctx, *topN, mode)
	if err != nil {
		logger.Error("building segment summary failed",
			zap.String("input", *inputPath), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	// The report goes to stdout; logs stay on stderr
	if err := reporting.WriteText(os.Stdout, report); err != nil {
		logger.Error("writing summary failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
