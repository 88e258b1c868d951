package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed CSV export: the header row and one field mapping per data row
type Table struct {
	Headers []string
	Records []map[string]string
}

// ReadTable parses a CSV export of the admission plan. The delimiter (";" as
// written by spreadsheet exports in Russian locales, or ",") is taken from the
// header line. Quoted cells may span lines.
func ReadTable(ctx context.Context, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading header row: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	table := &Table{Headers: headers}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}

		fields := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			// a repeated header takes the value of its last column
			if i < len(record) {
				fields[header] = record[i]
			} else {
				fields[header] = ""
			}
		}
		table.Records = append(table.Records, fields)
	}
	return table, nil
}

// ReadRecords returns the data rows of a CSV export as field mappings keyed by
// header.
func ReadRecords(ctx context.Context, r io.Reader) ([]map[string]string, error) {
	table, err := ReadTable(ctx, r)
	if err != nil {
		return nil, err
	}
	return table.Records, nil
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
