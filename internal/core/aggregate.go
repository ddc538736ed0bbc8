package core

// Aggregate merges per-column results into a table report. Records keep
// column order, and within a column the order ValidateColumn produced.
func Aggregate(totalRows, totalColumns int, types *TypeMap, results []ColumnResult) *ValidationReport {
	n := 0
	for _, r := range results {
		n += len(r.Violations)
	}

	cells := make([]ViolationRecord, 0, n)
	byKind := &CountTable{}
	byColumn := &CountTable{}
	for _, r := range results {
		for _, v := range r.Violations {
			cells = append(cells, v)
			byKind.Add(v.Error, 1)
			byColumn.Add(v.Column, 1)
		}
	}

	if types == nil {
		types = &TypeMap{}
	}
	report := &ValidationReport{
		TotalRows:    totalRows,
		TotalColumns: totalColumns,
		ColumnTypes:  types,
		InvalidCount: len(cells),
		InvalidCells: cells,
	}

	if len(cells) == 0 {
		report.Summary = &Summary{Status: StatusValid, Message: MsgNoErrors}
		return report
	}

	mostCommon, _ := byKind.MostCommon()
	report.Summary = &Summary{
		Status:              StatusInvalid,
		TotalErrors:         len(cells),
		ErrorCountsByKind:   byKind,
		ErrorCountsByColumn: byColumn,
		MostCommonError:     mostCommon,
	}
	return report
}
