package models

import (
	"strings"
	"unicode/utf8"
)

const (
	SwiftCodeLength       = 11
	HeadquarterCodeLength = 8
	CountryISO2Length     = 2

	// HeadquarterSuffix marks the primary office of an institution.
	HeadquarterSuffix = "XXX"
)

// SwiftBank is a single row of the swift_banks table
type SwiftBank struct {
	SwiftCode       string `db:"swift_code" json:"swiftCode"`
	BankName        string `db:"bank_name" json:"bankName"`
	Address         string `db:"address" json:"address"`
	CountryISO2     string `db:"country_iso2" json:"countryISO2"`
	CountryName     string `db:"country_name" json:"countryName"`
	IsHeadquarter   bool   `db:"is_headquarter" json:"isHeadquarter"`
	HeadquarterCode string `db:"headquarter_code" json:"headquarterCode"`
}

// SwiftBankRequest is the payload accepted when adding a single SWIFT code.
// IsHeadquarter is a pointer so an omitted flag can be derived from the code.
type SwiftBankRequest struct {
	SwiftCode     string `json:"swiftCode"`
	BankName      string `json:"bankName"`
	Address       string `json:"address"`
	CountryISO2   string `json:"countryISO2"`
	CountryName   string `json:"countryName"`
	IsHeadquarter *bool  `json:"isHeadquarter,omitempty"`
}

// IsHeadquarterCode reports whether code names the primary office of its institution.
func IsHeadquarterCode(code string) bool {
	return strings.HasSuffix(code, HeadquarterSuffix)
}

// HeadquarterCodeOf returns the 8 character prefix shared by a headquarter and its branches.
// Codes shorter than that are returned unchanged.
func HeadquarterCodeOf(code string) string {
	chars := []rune(code)
	if len(chars) < HeadquarterCodeLength {
		return code
	}
	return string(chars[:HeadquarterCodeLength])
}

// CharCount counts characters, not bytes.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// IsAlphanumeric reports whether s is non-empty and made only of ASCII letters and digits.
func IsAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return true
}

// NormalizeCountry trims and upper-cases a country ISO2 code or country name.
func NormalizeCountry(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeSwiftCode trims and upper-cases a SWIFT code.
func NormalizeSwiftCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
