package service

import models "github.com/zdziszkee/swift-codes-catalog/internal/models"

// SwiftCodeDetails is the result of a lookup: either *BranchDetails or
// *HeadquarterDetails.
type SwiftCodeDetails interface {
	Bank() *BranchDetails
	sealed()
}

type BranchDetails struct {
	Address       string `json:"address"`
	BankName      string `json:"bankName"`
	CountryISO2   string `json:"countryISO2"`
	CountryName   string `json:"countryName"`
	IsHeadquarter bool   `json:"isHeadquarter"`
	SwiftCode     string `json:"swiftCode"`
}

func (b *BranchDetails) Bank() *BranchDetails { return b }
func (*BranchDetails) sealed()                {}

// HeadquarterDetails lists the whole group, the headquarter included.
type HeadquarterDetails struct {
	BranchDetails
	Branches []BranchDetails `json:"branches"`
}

func (h *HeadquarterDetails) Bank() *BranchDetails { return &h.BranchDetails }

type CountrySwiftCodes struct {
	CountryISO2 string          `json:"countryISO2"`
	CountryName string          `json:"countryName"`
	SwiftCodes  []BranchDetails `json:"swiftCodes"`
}

// Created acknowledges an add.
type Created struct {
	SwiftCode string `json:"swiftCode"`
	Message   string `json:"message"`
}

// Deleted reports how many records a remove took with it.
type Deleted struct {
	Count   int    `json:"deleted"`
	Message string `json:"message"`
}

func branchDetailsOf(bank models.SwiftBank) BranchDetails {
	return BranchDetails{
		Address:       bank.Address,
		BankName:      bank.BankName,
		CountryISO2:   bank.CountryISO2,
		CountryName:   bank.CountryName,
		IsHeadquarter: bank.IsHeadquarter,
		SwiftCode:     bank.SwiftCode,
	}
}

func branchDetailsOfAll(banks []models.SwiftBank) []BranchDetails {
	out := make([]BranchDetails, 0, len(banks))
	for _, bank := range banks {
		out = append(out, branchDetailsOf(bank))
	}
	return out
}
