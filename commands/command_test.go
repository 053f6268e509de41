package commands

import (
	"path/filepath"
	"testing"

	"google.golang.org/api/sheets/v4"
)

func TestSpreadsheetID(t *testing.T) {
	tests := map[string]string{
		"https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms":            "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		"https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0": "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		"  https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms  ":        "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
	}

	for url, expected := range tests {
		id, err := spreadsheetID(url)
		if err != nil {
			t.Errorf("Unexpected error for '%v' (%v)", url, err)
		} else if id != expected {
			t.Errorf("Incorrect spreadsheet ID for '%v' - expected:%v, got:%v", url, expected, id)
		}
	}
}

func TestSpreadsheetIDWithInvalidURL(t *testing.T) {
	tests := []string{
		"",
		"https://docs.google.com/document/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		"https://docs.google.com/spreadsheets/d/",
	}

	for _, url := range tests {
		if _, err := spreadsheetID(url); err == nil {
			t.Errorf("Expected error for invalid spreadsheet URL '%v'", url)
		}
	}
}

func TestCheckRange(t *testing.T) {
	if err := checkRange("range", "WBS!A1:F", "WBS!A1:F"); err != nil {
		t.Errorf("Unexpected error for valid range (%v)", err)
	}

	if err := checkRange("range", "A1:F", "WBS!A1:F"); err == nil {
		t.Errorf("Expected error for range without worksheet name")
	}
}

func TestGetSheet(t *testing.T) {
	spreadsheet := sheets.Spreadsheet{
		Sheets: []*sheets.Sheet{
			&sheets.Sheet{Properties: &sheets.SheetProperties{SheetId: 1, Title: "WBS"}},
			&sheets.Sheet{Properties: &sheets.SheetProperties{SheetId: 2, Title: "Import Report"}},
		},
	}

	sheet, err := getSheet(&spreadsheet, "importreport!A1:F")
	if err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	if sheet.Properties.SheetId != 2 {
		t.Errorf("Incorrect worksheet - expected:%v, got:%v", 2, sheet.Properties.SheetId)
	}

	if _, err := getSheet(&spreadsheet, "Log!A1:H"); err == nil {
		t.Errorf("Expected error for missing worksheet")
	}
}

func TestTokensFile(t *testing.T) {
	expected := filepath.Join("/var/tmp", ".google", "credentials.sheets")

	if file := tokensFile("/etc/sheets/credentials.json", filepath.Join("/var/tmp", ".google")); file != expected {
		t.Errorf("Incorrect tokens file - expected:%v, got:%v", expected, file)
	}
}

func TestIsServiceAccount(t *testing.T) {
	tests := map[string]bool{
		`{"type":"service_account","project_id":"wbs"}`: true,
		`{"installed":{"client_id":"12345"}}`:           false,
		`qwerty`:                                        false,
	}

	for credentials, expected := range tests {
		if v := isServiceAccount([]byte(credentials)); v != expected {
			t.Errorf("Incorrect service account check for %v - expected:%v, got:%v", credentials, expected, v)
		}
	}
}
