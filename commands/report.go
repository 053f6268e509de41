package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/xinotrix/openproject-app-sheets/importer"
)

var reportHeader = []interface{}{"WBS ID", "Name", "Result", "Work Package", "Parent", "Details"}

var logColumns = []string{"timestamp", "run", "records", "created", "skipped", "failed", "missing", "orphaned"}

// updateReportSheet replaces the contents of the report range with the per-record outcome of an
// import.
func updateReportSheet(ctx context.Context, google *sheets.Service, spreadsheet string, area string, report *importer.Report) error {
	infof("clearing old report data from worksheet")

	if err := clearRanges(ctx, google, spreadsheet, []string{area}); err != nil {
		return fmt.Errorf("error clearing report worksheet (%w)", err)
	}

	infof("writing report to worksheet")

	values := [][]interface{}{
		{time.Now().Format("WBS Import Report: 2006-01-02 15:04:05")},
		{fmt.Sprintf("Run %v", report.Tag)},
		reportHeader,
	}

	values = append(values, reportRows(report)...)

	rq := sheets.ValueRange{
		Range:  area,
		Values: values,
	}

	if _, err := google.Spreadsheets.Values.Update(spreadsheet, area, &rq).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("error writing report to Google Sheets (%w)", err)
	}

	return nil
}

func reportRows(report *importer.Report) [][]interface{} {
	orphaned := map[string]importer.Orphaned{}
	for _, v := range report.Orphaned {
		orphaned[v.Record.ID] = v
	}

	rows := [][]interface{}{}

	for _, v := range report.Created {
		parent := ""
		if v.Parent != 0 {
			parent = fmt.Sprintf("%v", v.Parent)
		}

		details := ""
		if o, ok := orphaned[v.Record.ID]; ok {
			details = fmt.Sprintf("created without parent %v (%v)", o.Record.Parent, o.Reason)
		}

		rows = append(rows, []interface{}{v.Record.ID, v.Record.Name, "created", fmt.Sprintf("%v", v.ID), parent, details})
	}

	for _, v := range report.Skipped {
		rows = append(rows, []interface{}{v.Record.ID, v.Record.Name, "skipped", "", "", fmt.Sprintf("row %v: %v", v.Record.Row, v.Reason)})
	}

	for _, v := range report.Failed {
		rows = append(rows, []interface{}{v.Record.ID, v.Record.Name, "failed", "", "", fmt.Sprintf("%v attempts: %v", v.Attempts, v.Err)})
	}

	return rows
}

// updateLogSheet appends a summary row to the log range. The columns are matched to the log
// worksheet header if it has one.
func updateLogSheet(ctx context.Context, google *sheets.Service, spreadsheet string, area string, report *importer.Report) error {
	response, err := google.Spreadsheets.Values.Get(spreadsheet, area).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to retrieve column headers from Log sheet (%v)", err)
	}

	index := logIndex(nil)
	if len(response.Values) > 0 {
		index = logIndex(response.Values[0])
	}

	debugf("Log sheet column index: %v", index)

	rows := sheets.ValueRange{
		Values: [][]interface{}{
			logRow(index, time.Now(), report),
		},
	}

	if _, err := google.Spreadsheets.Values.Append(spreadsheet, area, &rows).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("error writing log to Google Sheets (%w)", err)
	}

	return nil
}

// logIndex maps the log columns to the columns of the log worksheet header. A sheet without a
// (recognisable) header gets the columns in default order.
func logIndex(header []interface{}) map[string]int {
	index := map[string]int{}

	for i, v := range header {
		if s, ok := v.(string); ok {
			k := normalise(s)
			for _, c := range logColumns {
				if k == c {
					index[k] = i
				}
			}
		}
	}

	if len(index) == 0 {
		for i, c := range logColumns {
			index[c] = i
		}
	}

	return index
}

func logRow(index map[string]int, timestamp time.Time, report *importer.Report) []interface{} {
	columns := 0
	for _, v := range index {
		if v >= columns {
			columns = v + 1
		}
	}

	row := make([]interface{}, columns)
	for i := range row {
		row[i] = ""
	}

	values := map[string]interface{}{
		"timestamp": timestamp.Format("2006-01-02 15:04:05"),
		"run":       report.Tag,
		"records":   report.Records,
		"created":   len(report.Created),
		"skipped":   len(report.Skipped),
		"failed":    len(report.Failed),
		"missing":   len(report.Missing),
		"orphaned":  len(report.Orphaned),
	}

	for k, v := range values {
		if ix, ok := index[k]; ok {
			row[ix] = v
		}
	}

	return row
}

// pruneLogSheet deletes the log rows with a timestamp from before the retention period.
func pruneLogSheet(ctx context.Context, google *sheets.Service, spreadsheet string, area string, retention uint) error {
	metadata, err := getSpreadsheet(ctx, google, spreadsheet)
	if err != nil {
		return err
	}

	sheet, err := getSheet(metadata, area)
	if err != nil {
		return err
	}

	response, err := google.Spreadsheets.Values.Get(spreadsheet, area).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to retrieve data from Log sheet (%v)", err)
	}

	cutoff := retentionCutoff(time.Now(), retention)

	infof("pruning log records from before %v", cutoff.Format("2006-01-02"))

	ranges := expired(response.Values, cutoff)
	offset := rangeOffset(area)
	deleted := int64(0)

	if len(ranges) > 0 {
		rq := sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{},
		}

		for _, r := range ranges {
			rq.Requests = append(rq.Requests, &sheets.Request{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    sheet.Properties.SheetId,
						Dimension:  "ROWS",
						StartIndex: offset + r[0] - deleted,
						EndIndex:   offset + r[1] - deleted,
					},
				},
			})

			deleted += r[1] - r[0]
		}

		if _, err := google.Spreadsheets.BatchUpdate(spreadsheet, &rq).Context(ctx).Do(); err != nil {
			return fmt.Errorf("error pruning Log sheet (%w)", err)
		}
	}

	infof("pruned %d log records from log sheet", deleted)

	return nil
}

// rangeOffset returns the (0-based) sheet row of the first row of a range e.g. 2 for 'Log!A3:H'.
func rangeOffset(area string) int64 {
	if match := worksheetRange.FindStringSubmatch(area); len(match) > 3 {
		if top, err := strconv.ParseInt(match[3], 10, 64); err == nil && top > 0 {
			return top - 1
		}
	}

	return 0
}

// retentionCutoff returns the start of the oldest day to keep, counting today as the first day.
func retentionCutoff(now time.Time, retention uint) time.Time {
	before := now.In(time.Local).AddDate(0, 0, -(int(retention) - 1))

	return time.Date(before.Year(), before.Month(), before.Day(), 0, 0, 0, 0, before.Location())
}

// expired returns the [start,end) row ranges of the log rows that have a timestamp before the
// cutoff, in ascending order. Rows without a valid timestamp in the first column are kept.
func expired(rows [][]interface{}, cutoff time.Time) [][2]int64 {
	list := []int64{}
	for row, record := range rows {
		if len(record) == 0 {
			continue
		}

		s, ok := record[0].(string)
		if !ok {
			continue
		}

		timestamp, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local)
		if err == nil && timestamp.Before(cutoff) {
			list = append(list, int64(row))
		}
	}

	ranges := [][2]int64{}
	if len(list) == 0 {
		return ranges
	}

	start := list[0]
	last := list[0]
	for _, row := range list[1:] {
		if row != last+1 {
			ranges = append(ranges, [2]int64{start, last + 1})
			start = row
		}

		last = row
	}

	return append(ranges, [2]int64{start, last + 1})
}
