package wbs

import (
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

var columns = map[string]string{
	"wbsid":          "WBS ID",
	"parentwbsid":    "Parent WBS ID",
	"type":           "Type",
	"name":           "Name",
	"description":    "Description",
	"estimatedhours": "Estimated Hours",
}

// Header is the canonical column order used when writing a WBS to a TSV file or worksheet.
var Header = []string{"WBS ID", "Parent WBS ID", "Type", "Name", "Description", "Estimated Hours"}

// MakeRecords converts the values retrieved from a WBS worksheet into a list of records. The
// first row is the header: columns are matched by name (case and spaces are ignored) and may
// be in any order. Only the 'WBS ID' column is mandatory. Blank rows are ignored.
func MakeRecords(data *sheets.ValueRange) ([]Record, error) {
	if data == nil {
		return nil, fmt.Errorf("Empty sheet")
	}

	return makeRecords(data.Values)
}

func makeRecords(rows [][]interface{}) ([]Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("Empty sheet")
	}

	// .. build index
	index := map[string]int{}
	for i, v := range rows[0] {
		k := normalise(cell(v))
		if _, ok := columns[k]; !ok {
			continue
		}

		if _, ok := index[k]; ok {
			return nil, fmt.Errorf("Duplicate column name '%v'", cell(v))
		}

		index[k] = i
	}

	if len(rows[0]) == 0 {
		return nil, fmt.Errorf("Missing/invalid header row")
	}

	if _, ok := index["wbsid"]; !ok {
		return nil, fmt.Errorf("Missing 'WBS ID' column")
	}

	// ... records
	records := []Record{}
	for i, row := range rows[1:] {
		get := func(k string) string {
			if ix, ok := index[k]; ok && ix < len(row) {
				return clean(cell(row[ix]))
			}

			return ""
		}

		if blank(row) {
			continue
		}

		records = append(records, Record{
			ID:             get("wbsid"),
			Parent:         get("parentwbsid"),
			Type:           get("type"),
			Name:           get("name"),
			Description:    get("description"),
			EstimatedHours: get("estimatedhours"),
			Row:            i + 2,
		})
	}

	return records, nil
}

func blank(row []interface{}) bool {
	for _, v := range row {
		if clean(cell(v)) != "" {
			return false
		}
	}

	return true
}

func cell(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

func clean(v string) string {
	return strings.TrimSpace(v)
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}
