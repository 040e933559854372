package analytics

// segmentRule is one ordered classification rule; the first match wins
type segmentRule struct {
	matches func(lifetimeValue, riskScore float64) bool
	segment Segment
}

// Rules are evaluated in order. A non-negative lifetime value with a risk
// score above 60 matches no rule and falls through to Watch List.
var segmentRules = []segmentRule{
	{
		matches: func(ltv, risk float64) bool { return ltv >= 0 && risk <= 40 },
		segment: SegmentPremiumPartner,
	},
	{
		matches: func(ltv, risk float64) bool { return ltv >= 0 && risk > 40 && risk <= 60 },
		segment: SegmentGrowthProspect,
	},
	{
		matches: func(ltv, risk float64) bool { return ltv < 0 && risk > 60 },
		segment: SegmentRiskManagement,
	},
}

// ClassifySegment assigns the business segment for one customer
func ClassifySegment(lifetimeValue, riskScore float64) Segment {
	for _, rule := range segmentRules {
		if rule.matches(lifetimeValue, riskScore) {
			return rule.segment
		}
	}
	return SegmentWatchList
}
