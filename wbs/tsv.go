package wbs

import (
	"encoding/csv"
	"fmt"
	"io"

	"google.golang.org/api/sheets/v4"
)

// MakeTSV writes the WBS records in a worksheet to a TSV file, with the columns in canonical
// order.
func MakeTSV(f io.Writer, data *sheets.ValueRange) error {
	records, err := MakeRecords(data)
	if err != nil {
		return err
	}

	return WriteTSV(f, records)
}

func WriteTSV(f io.Writer, records []Record) error {
	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(Header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{r.ID, r.Parent, r.Type, r.Name, r.Description, r.EstimatedHours}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// ParseTSV reads WBS records from a TSV file with a header row.
func ParseTSV(f io.Reader) ([]Record, error) {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("TSV file is empty")
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}

	return makeRecords(values)
}
