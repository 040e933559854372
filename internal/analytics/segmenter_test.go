package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySegment(t *testing.T) {
	tests := []struct {
		name          string
		lifetimeValue float64
		riskScore     float64
		want          Segment
	}{
		{"profitable low risk", 1500, 16.5, SegmentPremiumPartner},
		{"zero value zero risk", 0, 0, SegmentPremiumPartner},
		{"risk boundary forty", 100, 40, SegmentPremiumPartner},
		{"just above forty", 100, 40.0001, SegmentGrowthProspect},
		{"risk boundary sixty", 100, 60, SegmentGrowthProspect},
		{"negative value high risk", -200, 75, SegmentRiskManagement},
		{"negative value boundary sixty", -200, 60, SegmentWatchList},
		{"negative value low risk", -50, 30, SegmentWatchList},
		{"profitable but high risk falls through", 100, 65, SegmentWatchList},
		{"extreme risk with value", 1e6, 100, SegmentWatchList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySegment(tt.lifetimeValue, tt.riskScore))
		})
	}
}

func TestClassifySegmentAlwaysReturnsALabel(t *testing.T) {
	values := []float64{-1e9, -1, 0, 1, 1e9}
	risks := []float64{0, 40, 40.5, 60, 60.5, 100}

	for _, v := range values {
		for _, r := range risks {
			segment := ClassifySegment(v, r)
			assert.Contains(t, Segments, segment)
		}
	}
}
