package reporting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOutputReader struct {
	mock.Mock
}

func (m *mockOutputReader) LoadScored(ctx context.Context) ([]ScoredCustomer, error) {
	args := m.Called(ctx)
	var customers []ScoredCustomer
	if args.Get(0) != nil {
		customers = args.Get(0).([]ScoredCustomer)
	}
	return customers, args.Error(1)
}

func floatPtr(v float64) *float64 { return &v }

func scoredFixture() []ScoredCustomer {
	return []ScoredCustomer{
		{CustomerID: "C001", Name: "Alice", LifetimeValue: 1500, LossRatio: floatPtr(0.25), RiskScore: 16.5, Segment: "Premium Partner"},
		{CustomerID: "C002", Name: "Bob", LifetimeValue: -900, RiskScore: 74.2, Segment: "Watch List"},
		{CustomerID: "C003", Name: "Cara", LifetimeValue: -900, LossRatio: floatPtr(3.1), RiskScore: 88, Segment: "Risk Management"},
		{CustomerID: "C004", Name: "Dan", LifetimeValue: 200, LossRatio: floatPtr(0.9), RiskScore: 55, Segment: "Growth Prospect"},
		{CustomerID: "C005", Name: "Eve", LifetimeValue: 5000, LossRatio: floatPtr(0.1), RiskScore: 12, Segment: "Premium Partner"},
	}
}

func TestBuildReportDistributionOrder(t *testing.T) {
	reader := new(mockOutputReader)
	reader.On("LoadScored", mock.Anything).Return(scoredFixture(), nil).Once()

	report, err := NewService(reader).BuildReport(context.Background(), 3, RankByScore)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	// Largest segment first, equal counts alphabetical.
	require.Equal(t, []SegmentCount{
		{Segment: "Premium Partner", Count: 2},
		{Segment: "Growth Prospect", Count: 1},
		{Segment: "Risk Management", Count: 1},
		{Segment: "Watch List", Count: 1},
	}, report.Distribution)
	reader.AssertExpectations(t)
}

func TestBuildReportScoreRanking(t *testing.T) {
	reader := new(mockOutputReader)
	reader.On("LoadScored", mock.Anything).Return(scoredFixture(), nil).Once()

	report, err := NewService(reader).BuildReport(context.Background(), 3, RankByScore)
	require.NoError(t, err)

	require.Len(t, report.TopByScore, 3)
	assert.Equal(t, "C003", report.TopByScore[0].CustomerID)
	assert.Equal(t, "C002", report.TopByScore[1].CustomerID)
	assert.Equal(t, "C004", report.TopByScore[2].CustomerID)
	assert.Nil(t, report.TopByExposure)
}

func TestBuildReportExposureRanking(t *testing.T) {
	reader := new(mockOutputReader)
	reader.On("LoadScored", mock.Anything).Return(scoredFixture(), nil).Once()

	report, err := NewService(reader).BuildReport(context.Background(), 3, RankByExposure)
	require.NoError(t, err)

	// C002 and C003 tie on lifetime value; the missing loss ratio sorts last.
	require.Len(t, report.TopByExposure, 3)
	assert.Equal(t, "C003", report.TopByExposure[0].CustomerID)
	assert.Equal(t, "C002", report.TopByExposure[1].CustomerID)
	assert.Equal(t, "C004", report.TopByExposure[2].CustomerID)
	assert.Nil(t, report.TopByScore)
}

func TestBuildReportBothModes(t *testing.T) {
	reader := new(mockOutputReader)
	reader.On("LoadScored", mock.Anything).Return(scoredFixture(), nil).Once()

	report, err := NewService(reader).BuildReport(context.Background(), 2, RankBoth)
	require.NoError(t, err)

	require.Len(t, report.TopByScore, 2)
	require.Len(t, report.TopByExposure, 2)
	assert.Equal(t, RankBoth, report.Mode)
	assert.Equal(t, 2, report.TopN)
}

func TestBuildReportTopNLargerThanTable(t *testing.T) {
	reader := new(mockOutputReader)
	reader.On("LoadScored", mock.Anything).Return(scoredFixture(), nil).Once()

	report, err := NewService(reader).BuildReport(context.Background(), 50, RankByScore)
	require.NoError(t, err)
	assert.Len(t, report.TopByScore, 5)
}

func TestBuildReportPropagatesReadError(t *testing.T) {
	reader := new(mockOutputReader)
	reader.On("LoadScored", mock.Anything).Return(nil, errors.New("disk gone")).Once()

	_, err := NewService(reader).BuildReport(context.Background(), 3, RankByScore)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading scored customers")
	assert.Contains(t, err.Error(), "disk gone")
}

func TestParseRankingMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    RankingMode
		wantErr bool
	}{
		{raw: "score", want: RankByScore},
		{raw: "EXPOSURE", want: RankByExposure},
		{raw: " both ", want: RankBoth},
		{raw: "ranked", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			mode, err := ParseRankingMode(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}
