package utils

import (
	"encoding/csv"
	"io"
)

// ParseCSV reads a whole CSV into rows; the credential bulk importer
// feeds it credential,identity exports.
func ParseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return records, nil
}
