package reporting

import (
	"context"
	"fmt"
	"sort"

	"github.com/coverline/customer-analytics/pkg/logger"
	"go.uber.org/zap"
)

// OutputReader defines the interface for reading the scored customer table
type OutputReader interface {
	LoadScored(ctx context.Context) ([]ScoredCustomer, error)
}

// Service builds segment summaries from pipeline output
type Service struct {
	reader OutputReader
}

// NewService creates a new reporting service
func NewService(reader OutputReader) *Service {
	return &Service{reader: reader}
}

// BuildReport loads the scored table and assembles the distribution and the
// requested top-risk rankings
func (s *Service) BuildReport(ctx context.Context, topN int, mode RankingMode) (*Report, error) {
	log := logger.WithContext(ctx)

	customers, err := s.reader.LoadScored(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading scored customers: %w", err)
	}
	log.Info("loaded scored customers",
		zap.Int("customers", len(customers)),
		zap.Int("top_n", topN),
		zap.String("mode", string(mode)))

	report := &Report{
		Total:        len(customers),
		Distribution: distribution(customers),
		TopN:         topN,
		Mode:         mode,
	}
	if mode == RankByScore || mode == RankBoth {
		report.TopByScore = topByScore(customers, topN)
	}
	if mode == RankByExposure || mode == RankBoth {
		report.TopByExposure = topByExposure(customers, topN)
	}
	return report, nil
}

// distribution counts customers per segment label, most populous first.
// Equal counts fall back to the label so reruns print the same order.
func distribution(customers []ScoredCustomer) []SegmentCount {
	counts := make(map[string]int)
	for _, customer := range customers {
		counts[customer.Segment]++
	}

	result := make([]SegmentCount, 0, len(counts))
	for segment, count := range counts {
		result = append(result, SegmentCount{Segment: segment, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Segment < result[j].Segment
	})
	return result
}

// topByScore ranks by risk score descending. Ties keep file order.
func topByScore(customers []ScoredCustomer, n int) []ScoredCustomer {
	ranked := make([]ScoredCustomer, len(customers))
	copy(ranked, customers)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RiskScore > ranked[j].RiskScore
	})
	return truncate(ranked, n)
}

// topByExposure ranks by lifetime value ascending, then loss ratio
// descending. Customers without a loss ratio sort after those with one.
func topByExposure(customers []ScoredCustomer, n int) []ScoredCustomer {
	ranked := make([]ScoredCustomer, len(customers))
	copy(ranked, customers)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].LifetimeValue != ranked[j].LifetimeValue {
			return ranked[i].LifetimeValue < ranked[j].LifetimeValue
		}
		left, right := ranked[i].LossRatio, ranked[j].LossRatio
		switch {
		case left == nil:
			return false
		case right == nil:
			return true
		default:
			return *left > *right
		}
	})
	return truncate(ranked, n)
}

func truncate(customers []ScoredCustomer, n int) []ScoredCustomer {
	if n < 0 {
		n = 0
	}
	if len(customers) > n {
		customers = customers[:n]
	}
	return customers
}
