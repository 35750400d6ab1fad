package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// NormalizeRoster trims every entry, drops blanks and keeps the first
// occurrence of each name. duplicates counts non-blank entries that were dropped.
func NormalizeRoster(raw []string) (names []string, duplicates int) {
	seen := make(map[string]bool, len(raw))
	names = make([]string, 0, len(raw))
	for _, entry := range raw {
		name := strings.TrimSpace(entry)
		if name == "" {
			continue
		}
		if seen[name] {
			duplicates++
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, duplicates
}

// ParseRosterText splits pasted multi-line text into one entry per line.
// Entries are not trimmed here; see NormalizeRoster.
func ParseRosterText(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}

// nameColumns are the header names recognised as the name column
var nameColumns = []string{"name", "full name", "fullname", "participant"}

// ParseRosterCSV reads names from CSV. If the first row has a recognised name
// header that column is used and the header skipped; otherwise the first
// column of every row is a name.
func ParseRosterCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("CSV contains no rows")
	}

	column, start := 0, 0
	if i := findColumnIndex(records[0], nameColumns); i >= 0 {
		column, start = i, 1
	}

	names := make([]string, 0, len(records)-start)
	for _, record := range records[start:] {
		if column >= len(record) {
			names = append(names, "")
			continue
		}
		names = append(names, record[column])
	}
	return names, nil
}

// findColumnIndex finds the index of a column by possible names
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}
