package parser

import (
	"errors"
	"fmt"

	models "github.com/zdziszkee/swift-codes-catalog/internal/models"
	readers "github.com/zdziszkee/swift-codes-catalog/internal/readers"
)

var (
	ErrInvalidSwiftCodeLength = errors.New("swift code must be exactly 11 characters")
	ErrInvalidSwiftCodeFormat = errors.New("swift code may contain only ASCII letters and digits")
)

// SwiftBanksParser turns raw rows into hierarchy-tagged records.
type SwiftBanksParser interface {
	ParseSwiftBank(record readers.SwiftBankRecord) (*models.SwiftBank, error)
}

// DefaultSwiftBanksParser trusts the source: beyond the shape of the code it
// does not check the content of a row.
type DefaultSwiftBanksParser struct{}

func (p DefaultSwiftBanksParser) ParseSwiftBank(record readers.SwiftBankRecord) (*models.SwiftBank, error) {
	if models.CharCount(record.SwiftCode) != models.SwiftCodeLength {
		return nil, fmt.Errorf("row %d: %w, got %q", record.Index, ErrInvalidSwiftCodeLength, record.SwiftCode)
	}
	if !models.IsAlphanumeric(record.SwiftCode) {
		return nil, fmt.Errorf("row %d: %w, got %q", record.Index, ErrInvalidSwiftCodeFormat, record.SwiftCode)
	}

	return &models.SwiftBank{
		SwiftCode:       record.SwiftCode,
		BankName:        record.BankName,
		Address:         record.Address,
		CountryISO2:     models.NormalizeCountry(record.CountryISO2),
		CountryName:     models.NormalizeCountry(record.CountryName),
		IsHeadquarter:   models.IsHeadquarterCode(record.SwiftCode),
		HeadquarterCode: models.HeadquarterCodeOf(record.SwiftCode),
	}, nil
}
