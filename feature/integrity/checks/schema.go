package checks

import (
	"fmt"
	"sort"

	"marketplace/core/database"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckSchema compares the live tables against the expected columns.
func CheckSchema(db *gorm.DB, expected map[string][]string) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	missing, err := database.VerifySchema(db, expected)
	if err != nil {
		return nil, err
	}

	report := &SchemaReport{
		Matched: len(missing) == 0,
		Tables:  make(map[string]TableReport, len(expected)),
	}
	for table := range expected {
		cols := missing[table]
		if len(cols) == 0 {
			report.Tables[table] = TableReport{MissingColumns: []string{}, Status: "ok"}
			continue
		}
		sort.Strings(cols)
		report.Tables[table] = TableReport{MissingColumns: cols, Status: "error"}
	}
	return report, nil
}
