package helpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// SourceTables holds the paths of a generated set of input files
type SourceTables struct {
	Customers       string
	Policies        string
	Claims          string
	FraudDetections string
}

// WriteCSV writes one CSV table and returns its path
func WriteCSV(t *testing.T, path string, lines ...string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

// WriteSourceTables writes a small book of business whose numbers are easy
// to check by hand: Ana is low risk, Bruno carries two fraudulent claims,
// Carmen has no policies at all.
func WriteSourceTables(t *testing.T, dir string) SourceTables {
	t.Helper()
	return SourceTables{
		Customers: WriteCSV(t, filepath.Join(dir, "customers.csv"),
			"customer_id,name,age,email,city,registration_date",
			"CU001,Ana Silva,34,ana@example.com,Lisbon,2024-03-01",
			"CU002,Bruno Costa,45,bruno@example.com,Porto,2023-01-15",
			"CU003,Carmen Diaz,29,carmen@example.com,Faro,2025-06-30",
		),
		Policies: WriteCSV(t, filepath.Join(dir, "policies.csv"),
			"policy_id,customer_id,status,annual_premium,coverage_amount,policy_type,start_date",
			"PO100,CU001,ACTIVE,1200,100000,auto,2025-01-01",
			"PO101,CU001,EXPIRED,900,50000,home,2023-01-01",
			"PO200,CU002,ACTIVE,2000,150000,auto,2024-07-01",
		),
		Claims: WriteCSV(t, filepath.Join(dir, "claims.csv"),
			"claim_id,policy_id,claim_amount,status,claim_date",
			"CL500,PO100,300,APPROVED,2025-06-10",
			"CL600,PO200,2500,APPROVED,2025-02-20",
			"CL601,PO200,1500,PENDING,2025-09-05",
		),
		FraudDetections: WriteCSV(t, filepath.Join(dir, "fraud_detections.csv"),
			"claim_id,is_fraudulent,confidence_score",
			"CL500,false,0.12",
			"CL600,true,0.92",
			"CL601,true,0.88",
		),
	}
}
