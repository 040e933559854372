package analytics

import (
	"context"

	"github.com/coverline/customer-analytics/internal/records"
)

// Source defines the interface for loading the four source tables
type Source interface {
	LoadCustomers(ctx context.Context) ([]records.Customer, error)
	LoadPolicies(ctx context.Context) ([]records.Policy, error)
	LoadClaims(ctx context.Context) ([]records.Claim, error)
	LoadFraudDetections(ctx context.Context) ([]records.FraudDetection, error)
}

// Sink defines the interface for persisting the computed artifacts.
// Optional artifacts are skipped by the implementation when not configured.
type Sink interface {
	WriteSegments(ctx context.Context, metrics []CustomerMetrics) error
	WriteRollup(ctx context.Context, metrics []CustomerMetrics) error
	WritePolicyMix(ctx context.Context, mix []PolicyMix) error
}
