package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/coverline/customer-analytics/internal/records"
	"github.com/coverline/customer-analytics/pkg/logger"
	"github.com/coverline/customer-analytics/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles the batch pipeline: load, aggregate, score, segment, write
type Service struct {
	source  Source
	sink    Sink
	metrics *metrics.Pipeline
}

// NewService creates a new pipeline service
func NewService(source Source, sink Sink, pipelineMetrics *metrics.Pipeline) *Service {
	return &Service{
		source:  source,
		sink:    sink,
		metrics: pipelineMetrics,
	}
}

// Run executes the pipeline once against the given reference time. When it
// returns an error, no artifact has been published.
func (s *Service) Run(ctx context.Context, asOf time.Time) (*RunReport, error) {
	runID := uuid.New().String()
	ctx = logger.NewContext(ctx, runID)
	log := logger.WithContext(ctx)
	start := time.Now()

	log.Info("starting analytics run", zap.Time("as_of", asOf))

	customers, err := s.source.LoadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading customers: %w", err)
	}
	s.metrics.RowsLoaded.WithLabelValues(records.TableCustomers).Add(float64(len(customers)))

	policies, err := s.source.LoadPolicies(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading policies: %w", err)
	}
	s.metrics.RowsLoaded.WithLabelValues(records.TablePolicies).Add(float64(len(policies)))

	claims, err := s.source.LoadClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading claims: %w", err)
	}
	s.metrics.RowsLoaded.WithLabelValues(records.TableClaims).Add(float64(len(claims)))

	detections, err := s.source.LoadFraudDetections(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fraud detections: %w", err)
	}
	s.metrics.RowsLoaded.WithLabelValues(records.TableFraudDetections).Add(float64(len(detections)))

	log.Info("loaded source tables",
		zap.Int("customers", len(customers)),
		zap.Int("policies", len(policies)),
		zap.Int("claims", len(claims)),
		zap.Int("fraud_detections", len(detections)))

	result := Aggregate(customers, policies, claims, detections, asOf)
	s.logDropped(ctx, result.Dropped)

	for i := range result.Metrics {
		m := &result.Metrics[i]
		ComputeMetrics(m)
		m.Segment = ClassifySegment(m.LifetimeValue, m.RiskScore)
	}

	// highest value first; input order breaks ties
	sort.SliceStable(result.Metrics, func(i, j int) bool {
		return result.Metrics[i].LifetimeValue > result.Metrics[j].LifetimeValue
	})

	if err := s.sink.WriteSegments(ctx, result.Metrics); err != nil {
		return nil, fmt.Errorf("writing segments: %w", err)
	}
	if err := s.sink.WriteRollup(ctx, result.Metrics); err != nil {
		return nil, fmt.Errorf("writing rollup: %w", err)
	}
	if err := s.sink.WritePolicyMix(ctx, result.PolicyMix); err != nil {
		return nil, fmt.Errorf("writing policy mix: %w", err)
	}

	report := &RunReport{
		RunID:           runID,
		AsOf:            asOf,
		CustomersScored: len(result.Metrics),
		SegmentCounts:   countSegments(result.Metrics),
		Dropped:         result.Dropped,
		Duration:        time.Since(start),
	}
	s.recordRun(report)

	log.Info("analytics run complete",
		zap.Int("customers_scored", report.CustomersScored),
		zap.Any("segment_counts", report.SegmentCounts),
		zap.Int("rows_dropped", report.Dropped.Total()),
		zap.Duration("duration", report.Duration))

	return report, nil
}

func (s *Service) logDropped(ctx context.Context, dropped DroppedCounts) {
	log := logger.WithContext(ctx)

	if n := dropped.PoliciesUnknownCustomer; n > 0 {
		log.Warn("dropped policies referencing unknown customers", zap.Int("count", n))
		s.metrics.RowsDropped.WithLabelValues("policies_unknown_customer").Add(float64(n))
	}
	if n := dropped.ClaimsUnknownPolicy; n > 0 {
		log.Warn("dropped claims referencing unknown policies", zap.Int("count", n))
		s.metrics.RowsDropped.WithLabelValues("claims_unknown_policy").Add(float64(n))
	}
	if n := dropped.DetectionsUnknownClaim; n > 0 {
		log.Warn("dropped fraud detections referencing unknown claims", zap.Int("count", n))
		s.metrics.RowsDropped.WithLabelValues("detections_unknown_claim").Add(float64(n))
	}
}

func (s *Service) recordRun(report *RunReport) {
	s.metrics.CustomersScored.Set(float64(report.CustomersScored))
	for _, segment := range Segments {
		s.metrics.SegmentCustomers.WithLabelValues(string(segment)).Set(float64(report.SegmentCounts[segment]))
	}
	s.metrics.RunDuration.Set(report.Duration.Seconds())
	s.metrics.LastRunTimestamp.Set(float64(time.Now().Unix()))
	s.metrics.RunSuccess.Set(1)
}

func countSegments(items []CustomerMetrics) map[Segment]int {
	counts := make(map[Segment]int, len(Segments))
	for i := range items {
		counts[items[i].Segment]++
	}
	return counts
}
