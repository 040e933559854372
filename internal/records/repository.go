package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/coverline/customer-analytics/pkg/common"
	"github.com/spf13/cast"
)

// Source table names, also used as metric labels
const (
	TableCustomers       = "customers"
	TablePolicies        = "policies"
	TableClaims          = "claims"
	TableFraudDetections = "fraud_detections"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrMissingKey    = errors.New("missing key value")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrBadValue      = errors.New("unparseable value")
)

// Accepted date spellings, tried in order
var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// Repository loads the four source tables from CSV files with header rows.
// Columns are located by name, case-insensitive and trimmed, not by position.
type Repository struct {
	customersPath string
	policiesPath  string
	claimsPath    string
	fraudPath     string
}

// NewRepository creates a repository over the given table paths
func NewRepository(customersPath, policiesPath, claimsPath, fraudPath string) *Repository {
	return &Repository{
		customersPath: customersPath,
		policiesPath:  policiesPath,
		claimsPath:    claimsPath,
		fraudPath:     fraudPath,
	}
}

// LoadCustomers reads the customers table
func (r *Repository) LoadCustomers(ctx context.Context) ([]Customer, error) {
	var customers []Customer
	seen := make(map[string]int)

	err := forEachRow(ctx, r.customersPath, []string{"customer_id"}, func(index map[string]int, record []string, row int) error {
		id, err := requireKey(field(record, index, "customer_id"), r.customersPath, row, "customer_id")
		if err != nil {
			return err
		}
		if err := checkUnique(seen, id, r.customersPath, row, "customer_id"); err != nil {
			return err
		}

		age, err := parseIntCell(field(record, index, "age"), r.customersPath, row, "age")
		if err != nil {
			return err
		}
		registered, err := parseDateCell(field(record, index, "registration_date"), r.customersPath, row, "registration_date")
		if err != nil {
			return err
		}

		customers = append(customers, Customer{
			CustomerID:       id,
			Name:             field(record, index, "name"),
			Age:              age,
			Email:            field(record, index, "email"),
			City:             field(record, index, "city"),
			RegistrationDate: registered,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// LoadPolicies reads the policies table
func (r *Repository) LoadPolicies(ctx context.Context) ([]Policy, error) {
	var policies []Policy
	seen := make(map[string]int)

	err := forEachRow(ctx, r.policiesPath, []string{"policy_id", "customer_id"}, func(index map[string]int, record []string, row int) error {
		policyID, err := requireKey(field(record, index, "policy_id"), r.policiesPath, row, "policy_id")
		if err != nil {
			return err
		}
		if err := checkUnique(seen, policyID, r.policiesPath, row, "policy_id"); err != nil {
			return err
		}
		customerID, err := requireKey(field(record, index, "customer_id"), r.policiesPath, row, "customer_id")
		if err != nil {
			return err
		}

		premium, err := parseFloatCell(field(record, index, "annual_premium"), r.policiesPath, row, "annual_premium")
		if err != nil {
			return err
		}
		coverage, err := parseFloatCell(field(record, index, "coverage_amount"), r.policiesPath, row, "coverage_amount")
		if err != nil {
			return err
		}
		started, err := parseDateCell(field(record, index, "start_date"), r.policiesPath, row, "start_date")
		if err != nil {
			return err
		}

		policies = append(policies, Policy{
			PolicyID:       policyID,
			CustomerID:     customerID,
			PolicyType:     field(record, index, "policy_type"),
			Status:         PolicyStatus(field(record, index, "status")),
			AnnualPremium:  premium,
			CoverageAmount: coverage,
			StartDate:      started,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return policies, nil
}

// LoadClaims reads the claims table
func (r *Repository) LoadClaims(ctx context.Context) ([]Claim, error) {
	var claims []Claim
	seen := make(map[string]int)

	err := forEachRow(ctx, r.claimsPath, []string{"claim_id", "policy_id"}, func(index map[string]int, record []string, row int) error {
		claimID, err := requireKey(field(record, index, "claim_id"), r.claimsPath, row, "claim_id")
		if err != nil {
			return err
		}
		if err := checkUnique(seen, claimID, r.claimsPath, row, "claim_id"); err != nil {
			return err
		}
		policyID, err := requireKey(field(record, index, "policy_id"), r.claimsPath, row, "policy_id")
		if err != nil {
			return err
		}

		amount, err := parseFloatCell(field(record, index, "claim_amount"), r.claimsPath, row, "claim_amount")
		if err != nil {
			return err
		}
		claimed, err := parseDateCell(field(record, index, "claim_date"), r.claimsPath, row, "claim_date")
		if err != nil {
			return err
		}

		claims = append(claims, Claim{
			ClaimID:     claimID,
			PolicyID:    policyID,
			ClaimAmount: amount,
			Status:      field(record, index, "status"),
			ClaimDate:   claimed,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// LoadFraudDetections reads the fraud_detections table. Detections carry no
// key of their own, so duplicates are legitimate rows.
func (r *Repository) LoadFraudDetections(ctx context.Context) ([]FraudDetection, error) {
	var detections []FraudDetection

	err := forEachRow(ctx, r.fraudPath, []string{"claim_id"}, func(index map[string]int, record []string, row int) error {
		claimID, err := requireKey(field(record, index, "claim_id"), r.fraudPath, row, "claim_id")
		if err != nil {
			return err
		}

		fraudulent, err := parseBoolCell(field(record, index, "is_fraudulent"), r.fraudPath, row, "is_fraudulent")
		if err != nil {
			return err
		}
		confidence, err := parseFloatCell(field(record, index, "confidence_score"), r.fraudPath, row, "confidence_score")
		if err != nil {
			return err
		}

		detections = append(detections, FraudDetection{
			ClaimID:         claimID,
			IsFraudulent:    fraudulent,
			ConfidenceScore: confidence,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detections, nil
}

// forEachRow opens a CSV table, validates its header and calls fn once per
// data row. Row numbers are 1-based over data rows, excluding the header.
func forEachRow(ctx context.Context, path string, required []string, fn func(index map[string]int, record []string, row int) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return common.NewMissingDataError(fmt.Sprintf("unable to open %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return common.NewMissingDataError(fmt.Sprintf("unable to read header of %s", path), err)
	}
	index := mapHeaders(header)
	if missing := missingHeaders(required, index); len(missing) > 0 {
		return common.NewMissingDataError(
			fmt.Sprintf("%s: missing required columns %s", path, strings.Join(missing, ", ")),
			ErrMissingColumn,
		)
	}

	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return common.NewInvalidInputError(fmt.Sprintf("%s row %d", path, row), err)
		}
		if err := fn(index, record, row); err != nil {
			return err
		}
	}
	return nil
}

func mapHeaders(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		index[key] = i
	}
	return index
}

func missingHeaders(required []string, index map[string]int) []string {
	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func requireKey(raw, path string, row int, column string) (string, error) {
	if raw == "" {
		return "", common.NewInvalidInputError(fmt.Sprintf("%s row %d: missing %s", path, row, column), ErrMissingKey)
	}
	return raw, nil
}

func checkUnique(seen map[string]int, key, path string, row int, column string) error {
	if first, ok := seen[key]; ok {
		return common.NewInvalidInputError(
			fmt.Sprintf("%s row %d: duplicate %s %q first seen at row %d", path, row, column, key, first),
			ErrDuplicateKey,
		)
	}
	seen[key] = row
	return nil
}

// Empty cells are missing data, never an error. Non-empty cells that fail to
// parse are malformed input.

func parseFloatCell(raw, path string, row int, column string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, badCell(path, row, column, err)
	}
	return &value, nil
}

func parseIntCell(raw, path string, row int, column string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := cast.ToIntE(raw)
	if err != nil {
		return nil, badCell(path, row, column, err)
	}
	return &value, nil
}

func parseBoolCell(raw, path string, row int, column string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	value, err := cast.ToBoolE(raw)
	if err != nil {
		return false, badCell(path, row, column, err)
	}
	return value, nil
}

func parseDateCell(raw, path string, row int, column string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if value, err := time.Parse(layout, raw); err == nil {
			return &value, nil
		}
	}
	return nil, badCell(path, row, column, fmt.Errorf("unrecognized date %q", raw))
}

func badCell(path string, row int, column string, cause error) error {
	return common.NewInvalidInputError(
		fmt.Sprintf("%s row %d: bad %s", path, row, column),
		fmt.Errorf("%w: %v", ErrBadValue, cause),
	)
}
