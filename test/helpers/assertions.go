package helpers

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// ReadCSV reads an entire CSV file, header row included
func ReadCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows, "expected at least a header row in %s", path)
	return rows
}

// Cell returns the named column of one data row. Row 0 is the first row
// after the header.
func Cell(t *testing.T, rows [][]string, row int, column string) string {
	t.Helper()
	require.Greater(t, len(rows), row+1, "row %d out of range", row)
	for i, name := range rows[0] {
		if name == column {
			return rows[row+1][i]
		}
	}
	t.Fatalf("column %q not found in header %v", column, rows[0])
	return ""
}
