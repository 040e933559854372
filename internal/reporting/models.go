package reporting

import (
	"fmt"
	"strings"
)

// RankingMode selects how top-risk customers are ordered. The two rankings
// predate each other in the field and disagree on purpose; "both" prints
// them side by side.
type RankingMode string

const (
	RankByScore    RankingMode = "score"
	RankByExposure RankingMode = "exposure"
	RankBoth       RankingMode = "both"
)

// ParseRankingMode validates a mode string from flags or config
func ParseRankingMode(raw string) (RankingMode, error) {
	switch mode := RankingMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case RankByScore, RankByExposure, RankBoth:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown ranking mode %q", raw)
	}
}

// ScoredCustomer is one row read back from the segments table. The reporter
// depends only on the published file, never on pipeline internals, so the
// segment stays a plain string.
type ScoredCustomer struct {
	CustomerID       string   `json:"customer_id"`
	Name             string   `json:"name"`
	LifetimeValue    float64  `json:"lifetime_value"`
	LossRatio        *float64 `json:"loss_ratio,omitempty"`
	RiskScore        float64  `json:"risk_score"`
	Segment          string   `json:"segment"`
	TotalClaims      int      `json:"total_claims"`
	TotalClaimAmount float64  `json:"total_claim_amount"`
	AnnualPremiumSum float64  `json:"annual_premium_sum"`
	FraudClaims      int      `json:"fraud_claims"`
	PolicyTenureDays int      `json:"policy_tenure_days"`
}

// SegmentCount is one row of the segment distribution
type SegmentCount struct {
	Segment string `json:"segment"`
	Count   int    `json:"count"`
}

// Report is the assembled summary for rendering
type Report struct {
	Total         int              `json:"total"`
	Distribution  []SegmentCount   `json:"distribution"`
	TopByScore    []ScoredCustomer `json:"top_by_score,omitempty"`
	TopByExposure []ScoredCustomer `json:"top_by_exposure,omitempty"`
	TopN          int              `json:"top_n"`
	Mode          RankingMode      `json:"mode"`
}
