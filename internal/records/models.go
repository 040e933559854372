package records

import "time"

// PolicyStatus represents the lifecycle state of a policy as recorded in the
// source table. Matching is exact; lowercase variants are a data quality
// problem upstream, not an alias.
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "ACTIVE"
	PolicyStatusExpired   PolicyStatus = "EXPIRED"
	PolicyStatusCancelled PolicyStatus = "CANCELLED"
)

// Customer represents one row of the customers table
type Customer struct {
	CustomerID       string     `json:"customer_id"`
	Name             string     `json:"name"`
	Age              *int       `json:"age,omitempty"`
	Email            string     `json:"email,omitempty"`
	City             string     `json:"city,omitempty"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
}

// Policy represents one row of the policies table
type Policy struct {
	PolicyID       string       `json:"policy_id"`
	CustomerID     string       `json:"customer_id"`
	PolicyType     string       `json:"policy_type,omitempty"`
	Status         PolicyStatus `json:"status,omitempty"`
	AnnualPremium  *float64     `json:"annual_premium,omitempty"`
	CoverageAmount *float64     `json:"coverage_amount,omitempty"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
}

// IsActive reports whether the policy counts toward active premium volume
func (p *Policy) IsActive() bool {
	return p.Status == PolicyStatusActive
}

// Claim represents one row of the claims table
type Claim struct {
	ClaimID     string     `json:"claim_id"`
	PolicyID    string     `json:"policy_id"`
	ClaimAmount *float64   `json:"claim_amount,omitempty"`
	Status      string     `json:"status,omitempty"`
	ClaimDate   *time.Time `json:"claim_date,omitempty"`
}

// FraudDetection represents one row of the fraud_detections table. A claim
// can carry zero or more detections.
type FraudDetection struct {
	ClaimID         string   `json:"claim_id"`
	IsFraudulent    bool     `json:"is_fraudulent"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
}
