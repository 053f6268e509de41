package commands

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/sheets/v4"

	"github.com/xinotrix/openproject-app-sheets/wbs"
)

func getRecords(ctx context.Context, google *sheets.Service, spreadsheet string, area string) ([]wbs.Record, error) {
	response, err := google.Spreadsheets.Values.Get(spreadsheet, area).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from sheet (%v)", err)
	}

	if len(response.Values) == 0 {
		return nil, fmt.Errorf("no data in spreadsheet/range")
	}

	records, err := wbs.MakeRecords(response)
	if err != nil {
		return nil, fmt.Errorf("error reading WBS records from worksheet (%v)", err)
	}

	return records, nil
}

func readRecords(file string) ([]wbs.Record, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	records, err := wbs.ParseTSV(f)
	if err != nil {
		return nil, fmt.Errorf("error reading WBS records from %v (%v)", file, err)
	}

	return records, nil
}
