package wbs

import (
	"reflect"
	"strings"
	"testing"

	"google.golang.org/api/sheets/v4"
)

func TestMakeTSV(t *testing.T) {
	expected := `WBS ID	Parent WBS ID	Type	Name	Description	Estimated Hours
1		Phase	Discovery	Scoping	40
1.1	1	Task	Interviews		8
`

	var f strings.Builder
	var data = sheets.ValueRange{
		Values: [][]interface{}{
			[]interface{}{"Type", "WBS ID", "Name", "Parent WBS ID", "Description", "Estimated Hours"},
			[]interface{}{"Phase", "1", "Discovery", "", "Scoping", "40"},
			[]interface{}{"Task", "1.1", "Interviews", "1", "", "8"},
		},
	}

	if err := MakeTSV(&f, &data); err != nil {
		t.Fatalf("Unexpected error returned from MakeTSV (%v)", err)
	}

	if f.String() != expected {
		t.Errorf("Incorrect TSV\n   expected: %s\n   got:      %s\n", expected, f.String())
	}
}

func TestMakeTSVWithEmptySheet(t *testing.T) {
	var f strings.Builder
	var data = sheets.ValueRange{}

	if err := MakeTSV(&f, &data); err == nil {
		t.Fatalf("Expected error return for empty sheet, got %v", err)
	}
}

func TestParseTSV(t *testing.T) {
	tsv := `WBS ID	Parent WBS ID	Type	Name	Description	Estimated Hours
1		Phase	Discovery	Scoping	40
1.1	1	Task	Interviews		8
1.2	1	Task	Workshop
`

	expected := []Record{
		{ID: "1", Type: "Phase", Name: "Discovery", Description: "Scoping", EstimatedHours: "40", Row: 2},
		{ID: "1.1", Parent: "1", Type: "Task", Name: "Interviews", EstimatedHours: "8", Row: 3},
		{ID: "1.2", Parent: "1", Type: "Task", Name: "Workshop", Row: 4},
	}

	records, err := ParseTSV(strings.NewReader(tsv))
	if err != nil {
		t.Fatalf("Unexpected error returned from ParseTSV (%v)", err)
	}

	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Incorrect records\n   expected: %v\n   got:      %v\n", expected, records)
	}
}

func TestParseTSVWithEmptyFile(t *testing.T) {
	if _, err := ParseTSV(strings.NewReader("")); err == nil {
		t.Fatalf("Expected error return for empty TSV file, got %v", err)
	}
}
