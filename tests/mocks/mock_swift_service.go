package mocks

import (
	"context"

	models "github.com/zdziszkee/swift-codes-catalog/internal/models"
	service "github.com/zdziszkee/swift-codes-catalog/internal/services"
)

// MockSwiftService implements service.SwiftService.
type MockSwiftService struct {
	GetSwiftCodeDetailsFunc    func(ctx context.Context, code string) (service.SwiftCodeDetails, error)
	GetSwiftCodesByCountryFunc func(ctx context.Context, countryISO2 string) (*service.CountrySwiftCodes, error)
	CreateSwiftCodeFunc        func(ctx context.Context, req *models.SwiftBankRequest) (*service.Created, error)
	DeleteSwiftCodeFunc        func(ctx context.Context, code string) (*service.Deleted, error)
}

func (m *MockSwiftService) GetSwiftCodeDetails(ctx context.Context, code string) (service.SwiftCodeDetails, error) {
	return m.GetSwiftCodeDetailsFunc(ctx, code)
}

func (m *MockSwiftService) GetSwiftCodesByCountry(ctx context.Context, countryISO2 string) (*service.CountrySwiftCodes, error) {
	return m.GetSwiftCodesByCountryFunc(ctx, countryISO2)
}

func (m *MockSwiftService) CreateSwiftCode(ctx context.Context, req *models.SwiftBankRequest) (*service.Created, error) {
	return m.CreateSwiftCodeFunc(ctx, req)
}

func (m *MockSwiftService) DeleteSwiftCode(ctx context.Context, code string) (*service.Deleted, error) {
	return m.DeleteSwiftCodeFunc(ctx, code)
}
