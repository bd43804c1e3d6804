package models

import (
	"fmt"
	"sort"

	"gorm.io/gen"
	"gorm.io/gorm"
)

/*
Model tooling, run from main behind env flags:

  GENERATE_MODELS=true         writes typed query helpers for every model to ./generated
  GENERATE_COLUMN_REPORT=true  prints columns that exist in the database but not in a model

Example report:
=== COLUMN MISMATCH REPORT ===
--- Table: projects ---
Found 1 columns not accounted for in model:
  - status
*/

// All returns every persisted model, parents before children.
func All() []any {
	return []any{&User{}, &Tag{}, &Project{}, &Media{}}
}

// GenerateModels writes gorm/gen query helpers for the models into outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)
	g.ApplyBasic(User{}, Tag{}, Project{}, Media{})
	g.Execute()
	return nil
}

// ColumnMismatch lists database columns of one table that no model field maps to.
type ColumnMismatch struct {
	Table   string
	Missing bool // table does not exist yet
	Columns []string
}

// ColumnMismatchReport compares each model's table against its parsed gorm schema.
func ColumnMismatchReport(db *gorm.DB) ([]ColumnMismatch, error) {
	var report []ColumnMismatch

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse schema for %T: %w", model, err)
		}

		entry := ColumnMismatch{Table: stmt.Schema.Table}
		if !db.Migrator().HasTable(model) {
			entry.Missing = true
			report = append(report, entry)
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("error querying columns for table %s: %w", entry.Table, err)
		}

		known := make(map[string]bool, len(stmt.Schema.DBNames))
		for _, name := range stmt.Schema.DBNames {
			known[name] = true
		}

		for _, col := range columnTypes {
			if !known[col.Name()] {
				entry.Columns = append(entry.Columns, col.Name())
			}
		}
		sort.Strings(entry.Columns)
		report = append(report, entry)
	}

	return report, nil
}

// PrintColumnMismatchReport writes the report to stdout.
func PrintColumnMismatchReport(db *gorm.DB) error {
	report, err := ColumnMismatchReport(db)
	if err != nil {
		return err
	}

	fmt.Println("=== COLUMN MISMATCH REPORT ===")
	total := 0
	for _, entry := range report {
		fmt.Printf("\n--- Table: %s ---\n", entry.Table)
		switch {
		case entry.Missing:
			fmt.Println("Table does not exist yet (will be created during migration)")
		case len(entry.Columns) == 0:
			fmt.Println("All columns are accounted for in the model.")
		default:
			fmt.Printf("Found %d columns not accounted for in model:\n", len(entry.Columns))
			for _, col := range entry.Columns {
				fmt.Printf("  - %s\n", col)
			}
			total += len(entry.Columns)
		}
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", total)
	return nil
}
