// Package diff compares two introspected schemas into structural
// differences plus an additive migration plan. Diffing is directional
// (source authoritative) and strictly additive: no generated step can
// delete data or structure, and type/nullability mismatches are recorded
// but never acted on.
package diff

import (
	"sort"
	"strings"

	"db-mirror/internal/migrate"
	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

// ColumnMismatch records a column present on both sides whose canonical
// type or nullability differs. No corrective step is generated for these.
type ColumnMismatch struct {
	Column             string
	TypeDiffers        bool
	SourceType         schema.CanonicalType
	TargetType         schema.CanonicalType
	NullabilityDiffers bool
	SourceNullable     bool
	TargetNullable     bool
}

// TableDifference is the per-table comparison record.
type TableDifference struct {
	Schema            string
	Table             string
	IsMissingInTarget bool
	IsExtraInTarget   bool
	MissingColumns    []string // in source, absent in target; a step exists for each
	ExtraColumns      []string // in target, absent in source; informational only
	Mismatches        []ColumnMismatch
}

func (d *TableDifference) QualifiedName() string {
	if d.Schema == "" {
		return d.Table
	}
	return d.Schema + "." + d.Table
}

func (d *TableDifference) any() bool {
	return d.IsMissingInTarget || d.IsExtraInTarget ||
		len(d.MissingColumns) > 0 || len(d.ExtraColumns) > 0 || len(d.Mismatches) > 0
}

// Result is the full diff outcome: every recorded difference plus the
// migration plan that closes the additive gaps.
type Result struct {
	Differences []*TableDifference
	Plan        *migrate.Plan
}

// HasDifferences is true iff any difference or mismatch exists anywhere.
func (r *Result) HasDifferences() bool {
	for _, d := range r.Differences {
		if d.any() {
			return true
		}
	}
	return false
}

// Diff compares source against target. The only side effect is invoking
// the target's DDL generation capability for step SQL text. Tables are
// diffed in sorted (schema, table) order regardless of introspection order.
func Diff(source, target *schema.Database, ddl provider.DDLGenerator) *Result {
	result := &Result{Plan: &migrate.Plan{}}

	targetIndex := make(map[string]*schema.Table, len(target.Tables))
	for _, t := range target.Tables {
		targetIndex[t.Key()] = t
	}

	for _, src := range sortedTables(source.Tables) {
		tgt, ok := targetIndex[src.Key()]
		if !ok {
			result.Plan.Append(&migrate.Step{
				Kind:   migrate.CreateTable,
				Schema: src.Schema,
				Table:  src.Name,
				SQL:    ddl.GenerateCreateTable(src),
				Risk:   migrate.RiskLow,
			})
			result.Differences = append(result.Differences, &TableDifference{
				Schema:            src.Schema,
				Table:             src.Name,
				IsMissingInTarget: true,
			})
			continue
		}

		d := &TableDifference{Schema: src.Schema, Table: src.Name}
		for _, sc := range src.Columns {
			tc := tgt.FindColumn(sc.Name)
			if tc == nil {
				result.Plan.Append(&migrate.Step{
					Kind:   migrate.AddColumn,
					Schema: src.Schema,
					Table:  src.Name,
					Column: sc.Name,
					SQL:    ddl.GenerateAddColumn(tgt, sc),
					Risk:   migrate.RiskLow,
				})
				d.MissingColumns = append(d.MissingColumns, sc.Name)
				continue
			}
			m := ColumnMismatch{Column: sc.Name}
			if sc.Type != tc.Type {
				m.TypeDiffers = true
				m.SourceType, m.TargetType = sc.Type, tc.Type
			}
			if sc.Nullable != tc.Nullable {
				m.NullabilityDiffers = true
				m.SourceNullable, m.TargetNullable = sc.Nullable, tc.Nullable
			}
			if m.TypeDiffers || m.NullabilityDiffers {
				d.Mismatches = append(d.Mismatches, m)
			}
		}
		for _, tc := range tgt.Columns {
			if src.FindColumn(tc.Name) == nil {
				d.ExtraColumns = append(d.ExtraColumns, tc.Name)
			}
		}
		if d.any() {
			result.Differences = append(result.Differences, d)
		}
	}

	sourceIndex := make(map[string]bool, len(source.Tables))
	for _, t := range source.Tables {
		sourceIndex[t.Key()] = true
	}
	for _, tgt := range sortedTables(target.Tables) {
		if !sourceIndex[tgt.Key()] {
			// No step: drops are never emitted.
			result.Differences = append(result.Differences, &TableDifference{
				Schema:          tgt.Schema,
				Table:           tgt.Name,
				IsExtraInTarget: true,
			})
		}
	}

	return result
}

func sortedTables(tables []*schema.Table) []*schema.Table {
	sorted := make([]*schema.Table, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool {
		as, bs := strings.ToLower(sorted[i].Schema), strings.ToLower(sorted[j].Schema)
		if as != bs {
			return as < bs
		}
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}
