package reader

import (
	"errors"
	"fmt"
)

// MinColumns is the number of leading columns a data row must carry.
const MinColumns = 7

var ErrInsufficientColumns = errors.New("insufficient columns")

// SwiftBankRecord is one raw data row, trimmed but otherwise untouched.
type SwiftBankRecord struct {
	Index       int
	CountryISO2 string // COUNTRY ISO2 CODE
	SwiftCode   string // SWIFT CODE
	BankName    string // NAME
	Address     string // ADDRESS
	CountryName string // COUNTRY NAME
}

// RowError reports a single unusable row. Readers keep going after one.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// SwiftBanksReader streams records out of a source.
// Next returns io.EOF once the source is exhausted and a *RowError for rows
// that must be skipped; any other error means the source itself failed.
type SwiftBanksReader interface {
	Next() (SwiftBankRecord, error)
}
