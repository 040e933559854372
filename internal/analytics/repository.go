package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/coverline/customer-analytics/pkg/common"
)

var (
	segmentColumns = []string{
		"customer_id", "name", "lifetime_value", "loss_ratio", "risk_score",
		"segment", "total_claims", "total_claim_amount", "annual_premium_sum",
		"fraud_claims", "policy_tenure_days",
	}
	rollupColumns = []string{
		"customer_id", "name", "age", "email", "city", "registration_date",
		"customer_tenure_days", "policy_tenure_days", "total_policies",
		"active_policies", "total_claims", "total_claim_amount",
		"avg_claim_amount", "fraud_detected", "fraud_claims", "avg_confidence",
		"claims_per_policy", "fraud_rate", "avg_annual_premium", "total_coverage",
	}
	policyMixColumns = []string{"customer_id", "policy_type", "policy_count"}
)

// Repository writes the computed artifacts as CSV files. Files are written
// to a temp file in the target directory and renamed into place, so readers
// and reruns never observe a partial artifact.
type Repository struct {
	segmentsPath  string
	rollupPath    string
	policyMixPath string
}

// NewRepository creates a repository over the artifact paths. rollupPath and
// policyMixPath may be empty to skip those artifacts.
func NewRepository(segmentsPath, rollupPath, policyMixPath string) *Repository {
	return &Repository{
		segmentsPath:  segmentsPath,
		rollupPath:    rollupPath,
		policyMixPath: policyMixPath,
	}
}

// WriteSegments writes the primary ranked segment table
func (r *Repository) WriteSegments(ctx context.Context, metrics []CustomerMetrics) error {
	rows := make([][]string, 0, len(metrics))
	for i := range metrics {
		m := &metrics[i]
		rows = append(rows, []string{
			m.CustomerID,
			m.Name,
			formatFloat(m.LifetimeValue),
			formatFloatPtr(m.LossRatio),
			formatFloat(m.RiskScore),
			string(m.Segment),
			strconv.Itoa(m.TotalClaims),
			formatFloat(m.TotalClaimAmount),
			formatFloat(m.AnnualPremiumSum),
			strconv.Itoa(m.FraudClaims),
			strconv.Itoa(m.PolicyTenureDays),
		})
	}
	return writeCSV(ctx, r.segmentsPath, segmentColumns, rows)
}

// WriteRollup writes the wide customer rollup table
func (r *Repository) WriteRollup(ctx context.Context, metrics []CustomerMetrics) error {
	if r.rollupPath == "" {
		return nil
	}
	rows := make([][]string, 0, len(metrics))
	for i := range metrics {
		m := &metrics[i]
		rows = append(rows, []string{
			m.CustomerID,
			m.Name,
			formatIntPtr(m.Age),
			m.Email,
			m.City,
			formatDatePtr(m.RegistrationDate),
			strconv.Itoa(m.CustomerTenureDays),
			strconv.Itoa(m.PolicyTenureDays),
			strconv.Itoa(m.TotalPolicies),
			strconv.Itoa(m.ActivePolicies),
			strconv.Itoa(m.TotalClaims),
			formatFloat(m.TotalClaimAmount),
			formatFloat(m.AvgClaimAmount),
			strconv.FormatBool(m.FraudDetected),
			strconv.Itoa(m.FraudClaims),
			formatFloat(m.AvgConfidence),
			formatFloatPtr(m.ClaimsPerPolicy),
			formatFloatPtr(m.FraudRate),
			formatFloat(m.AvgAnnualPremium),
			formatFloat(m.TotalCoverage),
		})
	}
	return writeCSV(ctx, r.rollupPath, rollupColumns, rows)
}

// WritePolicyMix writes the long-format policy type breakdown
func (r *Repository) WritePolicyMix(ctx context.Context, mix []PolicyMix) error {
	if r.policyMixPath == "" {
		return nil
	}
	rows := make([][]string, 0, len(mix))
	for _, m := range mix {
		rows = append(rows, []string{m.CustomerID, m.PolicyType, strconv.Itoa(m.PolicyCount)})
	}
	return writeCSV(ctx, r.policyMixPath, policyMixColumns, rows)
}

func writeCSV(ctx context.Context, path string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return common.NewOutputError(fmt.Sprintf("unable to create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return common.NewOutputError(fmt.Sprintf("unable to create temp file for %s", path), err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		return common.NewOutputError(fmt.Sprintf("unable to write %s", path), err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			tmp.Close()
			return common.NewOutputError(fmt.Sprintf("unable to write %s", path), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return common.NewOutputError(fmt.Sprintf("unable to write %s", path), err)
	}

	if err := tmp.Close(); err != nil {
		return common.NewOutputError(fmt.Sprintf("unable to close temp file for %s", path), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return common.NewOutputError(fmt.Sprintf("unable to chmod %s", path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return common.NewOutputError(fmt.Sprintf("unable to publish %s", path), err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
