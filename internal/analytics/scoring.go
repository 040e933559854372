package analytics

// Scoring weights and caps. Each component is clipped independently, so the
// total stays inside [0, 100] for any input magnitude.
const (
	lossRatioWeight = 50.0
	lossRatioCap    = 50.0
	fraudWeight     = 3.0
	fraudCap        = 30.0
	frequencyWeight = 4.0
	frequencyCap    = 20.0

	daysPerYear = 365.25
)

// ComputeMetrics fills the derived value and risk fields from the aggregates.
// Ratios with a zero denominator stay nil.
func ComputeMetrics(m *CustomerMetrics) {
	m.AnnualPremiumSum = float64(m.ActivePolicies) * m.AvgAnnualPremium
	m.LifetimeValue = m.AnnualPremiumSum - m.TotalClaimAmount

	if m.AnnualPremiumSum > 0 {
		ratio := m.TotalClaimAmount / m.AnnualPremiumSum
		m.LossRatio = &ratio
	}
	if m.TotalPolicies > 0 {
		perPolicy := float64(m.TotalClaims) / float64(m.TotalPolicies)
		m.ClaimsPerPolicy = &perPolicy
	}
	if m.TotalClaims > 0 {
		rate := float64(m.FraudClaims) / float64(m.TotalClaims)
		m.FraudRate = &rate
	}

	m.RiskScore = calculateRiskScore(m)
}

// calculateRiskScore combines loss history, fraud signals and claim
// frequency into a 0-100 score
func calculateRiskScore(m *CustomerMetrics) float64 {
	score := 0.0

	// Loss ratio (0-50 points); an undefined ratio contributes nothing
	if m.LossRatio != nil {
		score += clip(*m.LossRatio*lossRatioWeight, 0, lossRatioCap)
	}

	// Fraud detections (0-30 points)
	score += clip(float64(m.FraudClaims)*fraudWeight, 0, fraudCap)

	// Claim frequency per policy year (0-20 points)
	years := float64(max(m.PolicyTenureDays, 1)) / daysPerYear
	score += clip(float64(m.TotalClaims)/years*frequencyWeight, 0, frequencyCap)

	return score
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
