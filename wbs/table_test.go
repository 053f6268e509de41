package wbs

import (
	"reflect"
	"testing"

	"google.golang.org/api/sheets/v4"
)

func TestMakeRecords(t *testing.T) {
	expected := []Record{
		{ID: "1", Parent: "", Type: "Phase", Name: "Discovery", Description: "Scoping", EstimatedHours: "40", Row: 2},
		{ID: "1.1", Parent: "1", Type: "Task", Name: "Interviews", Description: "", EstimatedHours: "8", Row: 3},
	}

	data := sheets.ValueRange{
		Values: [][]interface{}{
			[]interface{}{"WBS ID", "Parent WBS ID", "Type", "Name", "Description", "Estimated Hours"},
			[]interface{}{"1", "", "Phase", "Discovery", "Scoping", "40"},
			[]interface{}{"1.1", "1", "Task", "Interviews", "", "8"},
		},
	}

	records, err := MakeRecords(&data)
	if err != nil {
		t.Fatalf("Unexpected error returned from MakeRecords (%v)", err)
	}

	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Incorrect records\n   expected: %v\n   got:      %v\n", expected, records)
	}
}

func TestMakeRecordsWithOutOfOrderColumns(t *testing.T) {
	expected := []Record{
		{ID: "1", Parent: "", Type: "Phase", Name: "Discovery", Description: "Scoping", EstimatedHours: "40", Row: 2},
		{ID: "1.1", Parent: "1", Type: "Task", Name: "Interviews", Description: "", EstimatedHours: "8", Row: 3},
	}

	data := sheets.ValueRange{
		Values: [][]interface{}{
			[]interface{}{"Name", "estimated hours", "Type", "WBS ID", "Owner", "Description", "Parent WBS ID"},
			[]interface{}{"Discovery", "40", "Phase", "1", "alice", "Scoping", ""},
			[]interface{}{" Interviews ", "8", "Task", "1.1", "bob", "", "1"},
		},
	}

	records, err := MakeRecords(&data)
	if err != nil {
		t.Fatalf("Unexpected error returned from MakeRecords (%v)", err)
	}

	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Incorrect records\n   expected: %v\n   got:      %v\n", expected, records)
	}
}

func TestMakeRecordsWithShortRowsAndNumericCells(t *testing.T) {
	expected := []Record{
		{ID: "1", Type: "Phase", Name: "Discovery", Row: 2},
		{ID: "2", Parent: "1", Type: "Task", Name: "Design", EstimatedHours: "12.5", Row: 4},
	}

	data := sheets.ValueRange{
		Values: [][]interface{}{
			[]interface{}{"WBS ID", "Type", "Name", "Parent WBS ID", "Estimated Hours"},
			[]interface{}{1, "Phase", "Discovery"},
			[]interface{}{"", " ", ""},
			[]interface{}{2, "Task", "Design", 1, 12.5},
		},
	}

	records, err := MakeRecords(&data)
	if err != nil {
		t.Fatalf("Unexpected error returned from MakeRecords (%v)", err)
	}

	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Incorrect records\n   expected: %v\n   got:      %v\n", expected, records)
	}
}

func TestMakeRecordsWithEmptySheet(t *testing.T) {
	data := sheets.ValueRange{}

	if _, err := MakeRecords(&data); err == nil {
		t.Fatalf("Expected error return for empty sheet, got %v", err)
	}
}

func TestMakeRecordsWithoutHeaders(t *testing.T) {
	data := sheets.ValueRange{
		Values: [][]interface{}{
			[]interface{}{},
		},
	}

	if _, err := MakeRecords(&data); err == nil {
		t.Fatalf("Expected error return for missing headers, got %v", err)
	}
}

func TestMakeRecordsWithMissingWBSID(t *testing.T) {
	data := sheets.ValueRange{
		Values: [][]interface{}{
			[]interface{}{"WBS", "Parent WBS ID", "Name"},
		},
	}

	if _, err := MakeRecords(&data); err == nil {
		t.Fatalf("Expected error return for missing 'WBS ID' column, got %v", err)
	}
}

func TestMakeRecordsWithDuplicateColumn(t *testing.T) {
	data := sheets.ValueRange{
		Values: [][]interface{}{
			[]interface{}{"WBS ID", "Name", "name"},
		},
	}

	if _, err := MakeRecords(&data); err == nil {
		t.Fatalf("Expected error return for duplicate 'Name' column, got %v", err)
	}
}
