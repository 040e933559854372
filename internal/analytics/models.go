package analytics

import (
	"time"
)

// Segment represents the business segment assigned to a customer
type Segment string

const (
	SegmentPremiumPartner Segment = "Premium Partner"
	SegmentGrowthProspect Segment = "Growth Prospect"
	SegmentRiskManagement Segment = "Risk Management"
	SegmentWatchList      Segment = "Watch List"
)

// Segments lists all labels in rule order
var Segments = []Segment{
	SegmentPremiumPartner,
	SegmentGrowthProspect,
	SegmentRiskManagement,
	SegmentWatchList,
}

// CustomerMetrics is one customer-grain row of the computed analytics table.
// Nullable ratios stay nil when their denominator is zero; they are never
// coerced to 0.
type CustomerMetrics struct {
	CustomerID       string     `json:"customer_id"`
	Name             string     `json:"name"`
	Age              *int       `json:"age,omitempty"`
	Email            string     `json:"email,omitempty"`
	City             string     `json:"city,omitempty"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`

	CustomerTenureDays int `json:"customer_tenure_days"`
	PolicyTenureDays   int `json:"policy_tenure_days"`

	TotalPolicies    int     `json:"total_policies"`
	ActivePolicies   int     `json:"active_policies"`
	AvgAnnualPremium float64 `json:"avg_annual_premium"`
	TotalCoverage    float64 `json:"total_coverage"`

	TotalClaims      int     `json:"total_claims"`
	TotalClaimAmount float64 `json:"total_claim_amount"`
	AvgClaimAmount   float64 `json:"avg_claim_amount"`

	FraudDetected bool    `json:"fraud_detected"`
	FraudClaims   int     `json:"fraud_claims"`
	AvgConfidence float64 `json:"avg_confidence"`

	ClaimsPerPolicy *float64 `json:"claims_per_policy,omitempty"`
	FraudRate       *float64 `json:"fraud_rate,omitempty"`

	AnnualPremiumSum float64  `json:"annual_premium_sum"`
	LifetimeValue    float64  `json:"lifetime_value"`
	LossRatio        *float64 `json:"loss_ratio,omitempty"`
	RiskScore        float64  `json:"risk_score"`
	Segment          Segment  `json:"segment"`
}

// PolicyMix is one row of the long-format policy type breakdown
type PolicyMix struct {
	CustomerID  string `json:"customer_id"`
	PolicyType  string `json:"policy_type"`
	PolicyCount int    `json:"policy_count"`
}

// DroppedCounts tallies rows excluded because their direct parent reference
// did not resolve
type DroppedCounts struct {
	PoliciesUnknownCustomer int `json:"policies_unknown_customer"`
	ClaimsUnknownPolicy     int `json:"claims_unknown_policy"`
	DetectionsUnknownClaim  int `json:"detections_unknown_claim"`
}

// Total returns the number of dropped rows across all categories
func (d DroppedCounts) Total() int {
	return d.PoliciesUnknownCustomer + d.ClaimsUnknownPolicy + d.DetectionsUnknownClaim
}

// AggregateResult is the customer-grain view of the four source tables
type AggregateResult struct {
	Metrics   []CustomerMetrics
	PolicyMix []PolicyMix
	Dropped   DroppedCounts
}

// RunReport summarizes one pipeline run
type RunReport struct {
	RunID           string          `json:"run_id"`
	AsOf            time.Time       `json:"as_of"`
	CustomersScored int             `json:"customers_scored"`
	SegmentCounts   map[Segment]int `json:"segment_counts"`
	Dropped         DroppedCounts   `json:"dropped"`
	Duration        time.Duration   `json:"duration"`
}
