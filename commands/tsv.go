package commands

import (
	"fmt"
	"io"
	"regexp"
	"strconv"

	"google.golang.org/api/sheets/v4"

	"github.com/xinotrix/openproject-app-sheets/wbs"
)

var worksheetRange = regexp.MustCompile(`^(.+?)!([a-zA-Z]+)([0-9]+):([a-zA-Z]+)([0-9]+)?$`)

// tsvToSheet converts a WBS TSV file to the header and data value ranges for a worksheet range.
// The columns are written in canonical order.
func tsvToSheet(f io.Reader, area string) (*sheets.ValueRange, *sheets.ValueRange, error) {
	match := worksheetRange.FindStringSubmatch(area)
	if len(match) < 5 {
		return nil, nil, fmt.Errorf("invalid spreadsheet range '%s'", area)
	}

	name := match[1]
	left := match[2]
	top, _ := strconv.Atoi(match[3])
	right := match[4]

	records, err := wbs.ParseTSV(f)
	if err != nil {
		return nil, nil, err
	}

	// header
	h := make([]interface{}, len(wbs.Header))
	for i, v := range wbs.Header {
		h[i] = v
	}

	header := sheets.ValueRange{
		Range:  fmt.Sprintf("%s!%s%v:%s%v", name, left, top, right, top),
		Values: [][]interface{}{h},
	}

	// data
	rows := make([][]interface{}, 0)
	for _, r := range records {
		rows = append(rows, []interface{}{r.ID, r.Parent, r.Type, r.Name, r.Description, r.EstimatedHours})
	}

	data := sheets.ValueRange{
		Range:  fmt.Sprintf("%s!%s%v:%s", name, left, top+1, right),
		Values: rows,
	}

	return &header, &data, nil
}
