package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/coverline/customer-analytics/internal/records"
)

// Aggregate rolls the four source tables up to customer grain and left-joins
// the rollups onto the customers table. Every customer appears exactly once,
// in input order, with absent aggregates zero-filled. Rows whose direct
// parent reference does not resolve are excluded and counted.
//
// Claim and fraud figures are aggregated in two steps: claims are grouped by
// policy and detections by claim before the customer rollup, so avg_claim_amount
// is the unweighted mean of per-policy means and avg_confidence the unweighted
// mean of per-claim means.
func Aggregate(customers []records.Customer, policies []records.Policy, claims []records.Claim, detections []records.FraudDetection, asOf time.Time) AggregateResult {
	known := make(map[string]bool, len(customers))
	for _, c := range customers {
		known[c.CustomerID] = true
	}

	var dropped DroppedCounts

	// Policy rollup, grouped by customer
	type policyRollup struct {
		total       int
		active      int
		premiumSum  float64
		premiumN    int
		coverageSum float64
		firstStart  *time.Time
		typeCounts  map[string]int
	}
	policyCustomer := make(map[string]string, len(policies))
	policyAgg := make(map[string]*policyRollup)

	for i := range policies {
		p := &policies[i]
		// the policy->customer map covers every policy so claims on a
		// policy of an unknown customer still resolve, then vanish with
		// that customer at the join
		policyCustomer[p.PolicyID] = p.CustomerID
		if !known[p.CustomerID] {
			dropped.PoliciesUnknownCustomer++
			continue
		}
		r := policyAgg[p.CustomerID]
		if r == nil {
			r = &policyRollup{typeCounts: make(map[string]int)}
			policyAgg[p.CustomerID] = r
		}
		r.total++
		if p.IsActive() {
			r.active++
		}
		if p.AnnualPremium != nil {
			r.premiumSum += *p.AnnualPremium
			r.premiumN++
		}
		if p.CoverageAmount != nil {
			r.coverageSum += *p.CoverageAmount
		}
		if p.StartDate != nil && (r.firstStart == nil || p.StartDate.Before(*r.firstStart)) {
			r.firstStart = p.StartDate
		}
		if p.PolicyType != "" {
			r.typeCounts[p.PolicyType]++
		}
	}

	// Claim rollup, grouped by policy first
	type claimRollup struct {
		count     int
		amountSum float64
		amountN   int
	}
	claimPolicy := make(map[string]string, len(claims))
	claimsByPolicy := make(map[string]*claimRollup)

	for i := range claims {
		c := &claims[i]
		claimPolicy[c.ClaimID] = c.PolicyID
		if _, ok := policyCustomer[c.PolicyID]; !ok {
			dropped.ClaimsUnknownPolicy++
			continue
		}
		r := claimsByPolicy[c.PolicyID]
		if r == nil {
			r = &claimRollup{}
			claimsByPolicy[c.PolicyID] = r
		}
		r.count++
		if c.ClaimAmount != nil {
			r.amountSum += *c.ClaimAmount
			r.amountN++
		}
	}

	type customerClaims struct {
		total     int
		amountSum float64
		meanSum   float64
		meanN     int
	}
	claimAgg := make(map[string]*customerClaims)
	// sorted keys keep float summation order, and therefore output bytes,
	// identical across runs
	for _, policyID := range sortedKeys(claimsByPolicy) {
		r := claimsByPolicy[policyID]
		customerID := policyCustomer[policyID]
		a := claimAgg[customerID]
		if a == nil {
			a = &customerClaims{}
			claimAgg[customerID] = a
		}
		a.total += r.count
		a.amountSum += r.amountSum
		if r.amountN > 0 {
			a.meanSum += r.amountSum / float64(r.amountN)
			a.meanN++
		}
	}

	// Fraud rollup, grouped by claim first
	type fraudRollup struct {
		detected bool
		detCount int
		confSum  float64
		confN    int
	}
	fraudByClaim := make(map[string]*fraudRollup)

	for i := range detections {
		d := &detections[i]
		if _, ok := claimPolicy[d.ClaimID]; !ok {
			dropped.DetectionsUnknownClaim++
			continue
		}
		r := fraudByClaim[d.ClaimID]
		if r == nil {
			r = &fraudRollup{}
			fraudByClaim[d.ClaimID] = r
		}
		if d.IsFraudulent {
			r.detected = true
			r.detCount++
		}
		if d.ConfidenceScore != nil {
			r.confSum += *d.ConfidenceScore
			r.confN++
		}
	}

	type customerFraud struct {
		detected    bool
		detCount    int
		confMeanSum float64
		confMeanN   int
	}
	fraudAgg := make(map[string]*customerFraud)
	for _, claimID := range sortedKeys(fraudByClaim) {
		r := fraudByClaim[claimID]
		customerID, ok := policyCustomer[claimPolicy[claimID]]
		if !ok {
			// the claim itself was already dropped with its policy
			continue
		}
		a := fraudAgg[customerID]
		if a == nil {
			a = &customerFraud{}
			fraudAgg[customerID] = a
		}
		if r.detected {
			a.detected = true
		}
		a.detCount += r.detCount
		if r.confN > 0 {
			a.confMeanSum += r.confSum / float64(r.confN)
			a.confMeanN++
		}
	}

	// Left join onto the customers table
	metrics := make([]CustomerMetrics, 0, len(customers))
	var mix []PolicyMix

	for i := range customers {
		c := &customers[i]
		m := CustomerMetrics{
			CustomerID:       c.CustomerID,
			Name:             c.Name,
			Age:              c.Age,
			Email:            c.Email,
			City:             c.City,
			RegistrationDate: c.RegistrationDate,
		}
		if c.RegistrationDate != nil {
			m.CustomerTenureDays = daysBetween(*c.RegistrationDate, asOf)
		}
		if r := policyAgg[c.CustomerID]; r != nil {
			m.TotalPolicies = r.total
			m.ActivePolicies = r.active
			if r.premiumN > 0 {
				m.AvgAnnualPremium = r.premiumSum / float64(r.premiumN)
			}
			m.TotalCoverage = r.coverageSum
			if r.firstStart != nil {
				m.PolicyTenureDays = daysBetween(*r.firstStart, asOf)
			}
			for policyType, count := range r.typeCounts {
				mix = append(mix, PolicyMix{CustomerID: c.CustomerID, PolicyType: policyType, PolicyCount: count})
			}
		}
		if a := claimAgg[c.CustomerID]; a != nil {
			m.TotalClaims = a.total
			m.TotalClaimAmount = a.amountSum
			if a.meanN > 0 {
				m.AvgClaimAmount = a.meanSum / float64(a.meanN)
			}
		}
		if f := fraudAgg[c.CustomerID]; f != nil {
			m.FraudDetected = f.detected
			m.FraudClaims = f.detCount
			if f.confMeanN > 0 {
				m.AvgConfidence = f.confMeanSum / float64(f.confMeanN)
			}
		}
		metrics = append(metrics, m)
	}

	sort.Slice(mix, func(i, j int) bool {
		if mix[i].CustomerID != mix[j].CustomerID {
			return mix[i].CustomerID < mix[j].CustomerID
		}
		return mix[i].PolicyType < mix[j].PolicyType
	})

	return AggregateResult{Metrics: metrics, PolicyMix: mix, Dropped: dropped}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// daysBetween returns whole days from from to to, rounded toward minus
// infinity like a calendar difference
func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}
