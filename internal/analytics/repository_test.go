package analytics

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/coverline/customer-analytics/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMetrics() []CustomerMetrics {
	return []CustomerMetrics{
		{
			CustomerID:       "CUST001",
			Name:             "Alice Smith",
			LifetimeValue:    1500,
			LossRatio:        floatPtr(0.25),
			RiskScore:        16.5,
			Segment:          SegmentPremiumPartner,
			TotalClaims:      1,
			TotalClaimAmount: 500,
			AnnualPremiumSum: 2000,
			PolicyTenureDays: 365,
		},
		{
			CustomerID:       "CUST002",
			Name:             "Bob, Jr.",
			LifetimeValue:    -900,
			RiskScore:        20,
			Segment:          SegmentWatchList,
			TotalClaims:      1,
			TotalClaimAmount: 900,
			FraudClaims:      0,
			PolicyTenureDays: 10,
		},
	}
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteSegmentsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.csv")
	repo := NewRepository(path, "", "")

	require.NoError(t, repo.WriteSegments(context.Background(), sampleMetrics()))

	rows := readCSVFile(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, segmentColumns, rows[0])

	alice := rows[1]
	assert.Equal(t, "CUST001", alice[0])
	assert.Equal(t, "Alice Smith", alice[1])
	assert.Equal(t, "1500", alice[2])
	assert.Equal(t, "0.25", alice[3])
	assert.Equal(t, "16.5", alice[4])
	assert.Equal(t, "Premium Partner", alice[5])
	assert.Equal(t, "1", alice[6])
	assert.Equal(t, "500", alice[7])
	assert.Equal(t, "2000", alice[8])
	assert.Equal(t, "0", alice[9])
	assert.Equal(t, "365", alice[10])

	bob := rows[2]
	assert.Equal(t, "Bob, Jr.", bob[1])
	// undefined loss ratio stays an empty cell, not zero
	assert.Equal(t, "", bob[3])
	assert.Equal(t, "Watch List", bob[5])
}

func TestWriteSegmentsCreatesOutputDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "segments.csv")
	repo := NewRepository(path, "", "")

	require.NoError(t, repo.WriteSegments(context.Background(), sampleMetrics()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteSegmentsIsByteIdenticalAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.csv")
	repo := NewRepository(path, "", "")

	require.NoError(t, repo.WriteSegments(context.Background(), sampleMetrics()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, repo.WriteSegments(context.Background(), sampleMetrics()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteSegmentsLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segments.csv")
	repo := NewRepository(path, "", "")

	require.NoError(t, repo.WriteSegments(context.Background(), sampleMetrics()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteSegmentsFailsWhenDirectoryIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "outputs")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	repo := NewRepository(filepath.Join(blocker, "segments.csv"), "", "")
	err := repo.WriteSegments(context.Background(), sampleMetrics())
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeOutputFailed, appErr.Code)
}

func TestWriteRollupSkippedWhenUnconfigured(t *testing.T) {
	dir := t.TempDir()
	repo := NewRepository(filepath.Join(dir, "segments.csv"), "", "")

	require.NoError(t, repo.WriteRollup(context.Background(), sampleMetrics()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteRollupColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollup.csv")
	repo := NewRepository("", path, "")

	age := 34
	metrics := []CustomerMetrics{
		{
			CustomerID:         "CUST001",
			Name:               "Alice Smith",
			Age:                &age,
			Email:              "alice@example.com",
			City:               "Austin",
			RegistrationDate:   timePtr(testAsOf.AddDate(0, 0, -30)),
			CustomerTenureDays: 30,
			PolicyTenureDays:   400,
			TotalPolicies:      2,
			ActivePolicies:     1,
			TotalClaims:        3,
			TotalClaimAmount:   800,
			AvgClaimAmount:     300,
			FraudDetected:      true,
			FraudClaims:        2,
			AvgConfidence:      0.8,
			ClaimsPerPolicy:    floatPtr(1.5),
			FraudRate:          floatPtr(0.6666666666666666),
			AvgAnnualPremium:   1200.5,
			TotalCoverage:      60000,
		},
		{CustomerID: "CUST002"},
	}

	require.NoError(t, repo.WriteRollup(context.Background(), metrics))

	rows := readCSVFile(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, rollupColumns, rows[0])

	alice := rows[1]
	assert.Equal(t, "34", alice[2])
	assert.Equal(t, "2026-07-02", alice[5])
	assert.Equal(t, "true", alice[13])
	assert.Equal(t, "1.5", alice[16])
	assert.Equal(t, "1200.5", alice[18])

	// empty optionals stay empty cells
	missing := rows[2]
	assert.Equal(t, "", missing[2])
	assert.Equal(t, "", missing[5])
	assert.Equal(t, "", missing[16])
	assert.Equal(t, "false", missing[13])
}

func TestWritePolicyMix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy_mix.csv")
	repo := NewRepository("", "", path)

	mix := []PolicyMix{
		{CustomerID: "CUST001", PolicyType: "auto", PolicyCount: 2},
		{CustomerID: "CUST001", PolicyType: "home", PolicyCount: 1},
	}

	require.NoError(t, repo.WritePolicyMix(context.Background(), mix))

	rows := readCSVFile(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, policyMixColumns, rows[0])
	assert.Equal(t, []string{"CUST001", "auto", "2"}, rows[1])
	assert.Equal(t, []string{"CUST001", "home", "1"}, rows[2])
}
