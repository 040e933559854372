package reporting

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coverline/customer-analytics/pkg/common"
	"github.com/spf13/cast"
)

// Columns the reporter cannot work without. The pipeline writes more; extra
// columns are carried along when present and ignored otherwise.
var requiredColumns = []string{"customer_id", "lifetime_value", "loss_ratio", "risk_score", "segment"}

// Repository reads the segments table published by the pipeline
type Repository struct {
	path string
}

// NewRepository creates a reader over a segments CSV file
func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// LoadScored reads every row of the segments table
func (r *Repository) LoadScored(ctx context.Context) ([]ScoredCustomer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(r.path)
	if err != nil {
		return nil, common.NewMissingDataError(fmt.Sprintf("opening segments file %s", r.path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, common.NewInvalidInputError(fmt.Sprintf("reading segments header from %s", r.path), err)
	}
	index := mapColumns(header)
	if missing := missingColumns(index); len(missing) > 0 {
		return nil, common.NewMissingDataError(
			fmt.Sprintf("segments file %s is missing columns: %s", r.path, strings.Join(missing, ", ")), nil)
	}

	var customers []ScoredCustomer
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.NewInvalidInputError(fmt.Sprintf("reading segments row from %s", r.path), err)
		}
		row++

		customer, err := parseScoredRow(index, record)
		if err != nil {
			return nil, common.NewInvalidInputError(fmt.Sprintf("segments row %d", row), err)
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

func parseScoredRow(index map[string]int, record []string) (ScoredCustomer, error) {
	customer := ScoredCustomer{
		CustomerID: cell(index, record, "customer_id"),
		Name:       cell(index, record, "name"),
		Segment:    cell(index, record, "segment"),
	}
	if customer.CustomerID == "" {
		return ScoredCustomer{}, fmt.Errorf("empty customer_id")
	}

	var err error
	if customer.LifetimeValue, err = floatCell(index, record, "lifetime_value"); err != nil {
		return ScoredCustomer{}, err
	}
	if customer.RiskScore, err = floatCell(index, record, "risk_score"); err != nil {
		return ScoredCustomer{}, err
	}
	if raw := cell(index, record, "loss_ratio"); raw != "" {
		ratio, err := cast.ToFloat64E(raw)
		if err != nil {
			return ScoredCustomer{}, fmt.Errorf("bad loss_ratio: %v", err)
		}
		customer.LossRatio = &ratio
	}
	if customer.TotalClaims, err = intCell(index, record, "total_claims"); err != nil {
		return ScoredCustomer{}, err
	}
	if customer.TotalClaimAmount, err = floatCell(index, record, "total_claim_amount"); err != nil {
		return ScoredCustomer{}, err
	}
	if customer.AnnualPremiumSum, err = floatCell(index, record, "annual_premium_sum"); err != nil {
		return ScoredCustomer{}, err
	}
	if customer.FraudClaims, err = intCell(index, record, "fraud_claims"); err != nil {
		return ScoredCustomer{}, err
	}
	if customer.PolicyTenureDays, err = intCell(index, record, "policy_tenure_days"); err != nil {
		return ScoredCustomer{}, err
	}
	return customer, nil
}

func mapColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return index
}

func missingColumns(index map[string]int) []string {
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func cell(index map[string]int, record []string, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func floatCell(index map[string]int, record []string, name string) (float64, error) {
	raw := cell(index, record, name)
	if raw == "" {
		return 0, nil
	}
	value, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %v", name, err)
	}
	return value, nil
}

func intCell(index map[string]int, record []string, name string) (int, error) {
	raw := cell(index, record, name)
	if raw == "" {
		return 0, nil
	}
	value, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %v", name, err)
	}
	return value, nil
}
