package db

import "testing"

func TestRebind(t *testing.T) {
	testCases := []struct {
		name     string
		dialect  string
		query    string
		expected string
	}{
		{"postgres numbers placeholders", DialectPostgres, "UPDATE state SET current_outcome_id = ? WHERE id = 1 AND EXISTS (SELECT 1 FROM outcome WHERE id = ?)", "UPDATE state SET current_outcome_id = $1 WHERE id = 1 AND EXISTS (SELECT 1 FROM outcome WHERE id = $2)"},
		{"postgres without placeholders", DialectPostgres, "SELECT 1", "SELECT 1"},
		{"sqlite unchanged", DialectSQLite, "SELECT * FROM outcome WHERE id = ?", "SELECT * FROM outcome WHERE id = ?"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Rebind(tc.dialect, tc.query)
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
