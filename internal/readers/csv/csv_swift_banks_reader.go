package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	readers "github.com/zdziszkee/swift-codes-catalog/internal/readers"
)

// Column positions of the SWIFT codes export. CODE TYPE, TOWN NAME and
// TIME ZONE are ignored.
const (
	colCountryISO2 = 0
	colSwiftCode   = 1
	colBankName    = 3
	colAddress     = 4
	colCountryName = 6
)

// CSVSwiftBanksReader reads the comma separated SWIFT codes export.
// The first line is a header and is discarded without being checked.
type CSVSwiftBanksReader struct {
	csv        *csv.Reader
	headerRead bool
	row        int
}

func NewCSVSwiftBanksReader(r io.Reader) *CSVSwiftBanksReader {
	csvReader := csv.NewReader(r)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	return &CSVSwiftBanksReader{csv: csvReader}
}

func (c *CSVSwiftBanksReader) Next() (readers.SwiftBankRecord, error) {
	if !c.headerRead {
		c.headerRead = true
		if _, err := c.csv.Read(); err != nil && !isParseError(err) {
			if err == io.EOF {
				return readers.SwiftBankRecord{}, io.EOF
			}
			return readers.SwiftBankRecord{}, fmt.Errorf("read header: %w", err)
		}
	}

	row, err := c.csv.Read()
	if err == io.EOF {
		return readers.SwiftBankRecord{}, io.EOF
	}
	c.row++
	if err != nil {
		if isParseError(err) {
			return readers.SwiftBankRecord{}, &readers.RowError{Row: c.row, Err: err}
		}
		return readers.SwiftBankRecord{}, fmt.Errorf("row %d: %w", c.row, err)
	}
	if len(row) < readers.MinColumns {
		return readers.SwiftBankRecord{}, &readers.RowError{
			Row: c.row,
			Err: fmt.Errorf("%w: expected at least %d, got %d", readers.ErrInsufficientColumns, readers.MinColumns, len(row)),
		}
	}

	return readers.SwiftBankRecord{
		Index:       c.row,
		CountryISO2: strings.TrimSpace(row[colCountryISO2]),
		SwiftCode:   strings.TrimSpace(row[colSwiftCode]),
		BankName:    strings.TrimSpace(row[colBankName]),
		Address:     strings.TrimSpace(row[colAddress]),
		CountryName: strings.TrimSpace(row[colCountryName]),
	}, nil
}

func isParseError(err error) bool {
	var parseErr *csv.ParseError
	return errors.As(err, &parseErr)
}
