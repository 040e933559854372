package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMetricsWorkedExample(t *testing.T) {
	m := CustomerMetrics{
		CustomerID:       "CUST001",
		TotalPolicies:    2,
		ActivePolicies:   2,
		AvgAnnualPremium: 1000,
		TotalClaims:      1,
		TotalClaimAmount: 500,
		PolicyTenureDays: 365,
	}

	ComputeMetrics(&m)

	assert.InDelta(t, 2000, m.AnnualPremiumSum, 1e-9)
	assert.InDelta(t, 1500, m.LifetimeValue, 1e-9)
	require.NotNil(t, m.LossRatio)
	assert.InDelta(t, 0.25, *m.LossRatio, 1e-9)

	// 0.25*50 = 12.5 loss points, no fraud points,
	// 1/(365/365.25)*4 frequency points
	assert.InDelta(t, 12.5+4.002739726027397, m.RiskScore, 1e-9)
	assert.Equal(t, SegmentPremiumPartner, ClassifySegment(m.LifetimeValue, m.RiskScore))
}

func TestComputeMetricsPremiumBaseScalesBookWideMean(t *testing.T) {
	// One active and one lapsed policy with premiums 1200 and 900. The
	// premium base is the active count times the 1050 mean over both,
	// not the active premium alone.
	m := CustomerMetrics{
		CustomerID:       "CUST001",
		TotalPolicies:    2,
		ActivePolicies:   1,
		AvgAnnualPremium: 1050,
		TotalClaims:      1,
		TotalClaimAmount: 300,
		PolicyTenureDays: 1096,
	}

	ComputeMetrics(&m)

	assert.InDelta(t, 1050, m.AnnualPremiumSum, 1e-9)
	assert.InDelta(t, 750, m.LifetimeValue, 1e-9)
	require.NotNil(t, m.LossRatio)
	assert.InDelta(t, 300.0/1050.0, *m.LossRatio, 1e-9)
	assert.InDelta(t, 15.618743482794576, m.RiskScore, 1e-9)
}

func TestComputeMetricsLossRatioNilWithoutActivePremium(t *testing.T) {
	m := CustomerMetrics{
		TotalPolicies:    1,
		ActivePolicies:   0,
		AvgAnnualPremium: 800,
		TotalClaims:      0,
		TotalClaimAmount: 900,
		PolicyTenureDays: 365,
	}

	ComputeMetrics(&m)

	assert.Zero(t, m.AnnualPremiumSum)
	assert.InDelta(t, -900, m.LifetimeValue, 1e-9)
	assert.Nil(t, m.LossRatio)
	// the undefined loss ratio contributes nothing
	assert.Zero(t, m.RiskScore)
}

func TestRiskScoreStaysInRangeForPathologicalInputs(t *testing.T) {
	m := CustomerMetrics{
		TotalPolicies:    1,
		ActivePolicies:   1,
		AvgAnnualPremium: 0.01,
		TotalClaims:      1_000_000_000,
		TotalClaimAmount: 1e12,
		FraudClaims:      50_000,
		PolicyTenureDays: 1,
	}

	ComputeMetrics(&m)

	assert.Equal(t, 100.0, m.RiskScore)
}

func TestRiskScoreComponentsClipIndependently(t *testing.T) {
	// loss ratio alone can contribute at most 50 points
	m := CustomerMetrics{
		ActivePolicies:   1,
		AvgAnnualPremium: 100,
		TotalClaimAmount: 100000,
		PolicyTenureDays: 3650,
	}

	ComputeMetrics(&m)
	assert.InDelta(t, 50, m.RiskScore, 1e-9)

	// fraud alone caps at 30
	m = CustomerMetrics{FraudClaims: 1000, PolicyTenureDays: 3650}
	ComputeMetrics(&m)
	assert.InDelta(t, 30, m.RiskScore, 1e-9)

	// frequency alone caps at 20, even with the one-day tenure floor
	m = CustomerMetrics{TotalClaims: 100, PolicyTenureDays: 0}
	ComputeMetrics(&m)
	assert.InDelta(t, 20, m.RiskScore, 1e-9)
}

func TestRiskScoreNegativeLossRatioClipsToZero(t *testing.T) {
	// refunds can push the claim total negative
	m := CustomerMetrics{
		ActivePolicies:   1,
		AvgAnnualPremium: 1000,
		TotalClaimAmount: -500,
		PolicyTenureDays: 365,
	}

	ComputeMetrics(&m)

	require.NotNil(t, m.LossRatio)
	assert.InDelta(t, -0.5, *m.LossRatio, 1e-9)
	assert.Zero(t, m.RiskScore)
}

func TestComputeMetricsSideRatios(t *testing.T) {
	m := CustomerMetrics{
		TotalPolicies:    4,
		TotalClaims:      2,
		FraudClaims:      1,
		PolicyTenureDays: 365,
	}

	ComputeMetrics(&m)

	require.NotNil(t, m.ClaimsPerPolicy)
	assert.InDelta(t, 0.5, *m.ClaimsPerPolicy, 1e-9)
	require.NotNil(t, m.FraudRate)
	assert.InDelta(t, 0.5, *m.FraudRate, 1e-9)
}

func TestComputeMetricsSideRatiosNilOnZeroDenominator(t *testing.T) {
	m := CustomerMetrics{}

	ComputeMetrics(&m)

	assert.Nil(t, m.ClaimsPerPolicy)
	assert.Nil(t, m.FraudRate)
	assert.Nil(t, m.LossRatio)
}
