package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Row is one sweep point's cells keyed by column name. Failed points
// carry exactly idx and error.
type Row map[string]any

// Header returns the sorted union of column names across all rows.
func Header(rows []Row) []string {
	set := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			set[k] = struct{}{}
		}
	}

	header := make([]string, 0, len(set))
	for k := range set {
		header = append(header, k)
	}
	sort.Strings(header)
	return header
}

// WriteCSV writes the rows under their union header, one record per
// row; cells a row does not carry are left empty.
func WriteCSV(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	header := Header(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, row := range rows {
		for i, key := range header {
			record[i] = ""
			if v, ok := row[key]; ok {
				record[i] = formatCell(v)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// setColumn derives the column recording a set parameter,
// eg TEMPERATURE -> temperature_set.
func setColumn(axis string) string {
	return strings.ToLower(axis) + "_set"
}
