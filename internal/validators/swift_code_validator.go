package validator

import (
	"context"
	"fmt"
	"strings"

	models "github.com/zdziszkee/swift-codes-catalog/internal/models"
)

// Field error codes.
const (
	CodeRequired            = "required"
	CodeLength              = "length"
	CodeFormat              = "format"
	CodeCountryNameConflict = "countryName.conflict"
	CodeCountryNameMismatch = "countryName.mismatch"
	CodeHeadquarterInvalid  = "isHeadquarter.invalid"
)

// CountryLookup is the read access the validator needs from the store.
type CountryLookup interface {
	FindByCountryISO2(ctx context.Context, countryISO2 string) ([]models.SwiftBank, error)
	ExistsByCountryName(ctx context.Context, countryName string) (bool, error)
}

// FieldError rejects one field of an add request.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field was rejected with code.
func (fe FieldErrors) Has(field, code string) bool {
	for _, e := range fe {
		if e.Field == field && e.Code == code {
			return true
		}
	}
	return false
}

// SwiftCodeValidator checks an add request against itself and against the
// records already stored for its country.
type SwiftCodeValidator struct {
	lookup CountryLookup
}

func New(lookup CountryLookup) *SwiftCodeValidator {
	return &SwiftCodeValidator{lookup: lookup}
}

// Validate returns every field error found; it never stops at the first one.
// The error result is reserved for lookup failures.
func (v *SwiftCodeValidator) Validate(ctx context.Context, req *models.SwiftBankRequest) (FieldErrors, error) {
	code := models.NormalizeSwiftCode(req.SwiftCode)
	countryISO2 := models.NormalizeCountry(req.CountryISO2)
	countryName := models.NormalizeCountry(req.CountryName)

	var errs FieldErrors
	errs = append(errs, validateShape(code, req.BankName, countryISO2, countryName)...)

	if countryISO2 != "" && countryName != "" {
		countryErrs, err := v.validateCountry(ctx, countryISO2, countryName)
		if err != nil {
			return nil, err
		}
		errs = append(errs, countryErrs...)
	}

	if req.IsHeadquarter != nil && models.IsHeadquarterCode(code) != *req.IsHeadquarter {
		errs = append(errs, FieldError{
			Field:   "isHeadquarter",
			Code:    CodeHeadquarterInvalid,
			Message: "swift code data does not match the provided isHeadquarter value",
		})
	}

	return errs, nil
}

func validateShape(code, bankName, countryISO2, countryName string) FieldErrors {
	var errs FieldErrors
	switch {
	case code == "":
		errs = append(errs, required("swiftCode"))
	case models.CharCount(code) != models.SwiftCodeLength:
		errs = append(errs, length("swiftCode", models.SwiftCodeLength))
	case !models.IsAlphanumeric(code):
		errs = append(errs, format("swiftCode"))
	}
	if strings.TrimSpace(bankName) == "" {
		errs = append(errs, required("bankName"))
	}
	switch {
	case countryISO2 == "":
		errs = append(errs, required("countryISO2"))
	case models.CharCount(countryISO2) != models.CountryISO2Length:
		errs = append(errs, length("countryISO2", models.CountryISO2Length))
	case !models.IsAlphanumeric(countryISO2):
		errs = append(errs, format("countryISO2"))
	}
	if countryName == "" {
		errs = append(errs, required("countryName"))
	}
	return errs
}

func (v *SwiftCodeValidator) validateCountry(ctx context.Context, countryISO2, countryName string) (FieldErrors, error) {
	records, err := v.lookup.FindByCountryISO2(ctx, countryISO2)
	if err != nil {
		return nil, fmt.Errorf("lookup country %s: %w", countryISO2, err)
	}

	if len(records) == 0 {
		exists, err := v.lookup.ExistsByCountryName(ctx, countryName)
		if err != nil {
			return nil, fmt.Errorf("lookup country name %s: %w", countryName, err)
		}
		if exists {
			return FieldErrors{{
				Field:   "countryISO2",
				Code:    CodeCountryNameConflict,
				Message: "provided country name exists while the countryISO2 does not",
			}}, nil
		}
		return nil, nil
	}

	if records[0].CountryName != countryName {
		return FieldErrors{{
			Field:   "countryName",
			Code:    CodeCountryNameMismatch,
			Message: fmt.Sprintf("provided country name does not match the existing one for %s", countryISO2),
		}}, nil
	}
	return nil, nil
}

func required(field string) FieldError {
	return FieldError{Field: field, Code: field + "." + CodeRequired, Message: field + " is required"}
}

func length(field string, n int) FieldError {
	return FieldError{Field: field, Code: field + "." + CodeLength, Message: fmt.Sprintf("%s must be exactly %d characters", field, n)}
}

func format(field string) FieldError {
	return FieldError{Field: field, Code: field + "." + CodeFormat, Message: field + " may contain only ASCII letters and digits"}
}
