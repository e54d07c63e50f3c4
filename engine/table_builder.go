package engine

// ============================================================================
// TABLE BUILDER — Produces TableData from aggregated groups
// ============================================================================

// SubColumn names a sub-group key shown as its own count column.
type SubColumn struct {
	Key   string
	Label string
}

// BuildRankedTable lists groups in their current order with one count
// column per sub-group, the total count and the rate.
func BuildRankedTable(title, keyLabel string, groups []Group, subs []SubColumn) *TableData {
	columns := []Column{{Key: "group", Label: keyLabel, Type: "text", Align: "left"}}
	for _, s := range subs {
		columns = append(columns, Column{Key: s.Key, Label: s.Label, Type: "number", Align: "center"})
	}
	columns = append(columns,
		Column{Key: "count", Label: "Total", Type: "number", Align: "center"},
		Column{Key: "rate", Label: "Tasa ↓", Type: "number", Align: "center"},
	)

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		row := []string{g.Label}
		for _, s := range subs {
			row = append(row, FormatInt(g.SubCount(s.Key)))
		}
		row = append(row, FormatInt(g.Count), FormatNumber(g.Rate, 2))
		rows = append(rows, row)
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"count": FormatInt(TotalCount(groups)),
			},
		},
	}
}

// BuildShareTable lists groups with their count and percentage share.
func BuildShareTable(title, keyLabel string, groups []Group) *TableData {
	columns := []Column{
		{Key: "group", Label: keyLabel, Type: "text", Align: "left"},
		{Key: "count", Label: "total", Type: "number", Align: "right"},
		{Key: "share", Label: "perc", Type: "number", Align: "right"},
	}

	rows := make([][]string, 0, len(groups))
	share := 0.0
	for _, g := range groups {
		share += g.Share
		rows = append(rows, []string{
			g.Label,
			FormatInt(g.Count),
			FormatNumber(g.Share, 2),
		})
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"count": FormatInt(TotalCount(groups)),
				"share": FormatNumber(share, 2),
			},
		},
	}
}
