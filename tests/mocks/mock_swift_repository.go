package mocks

import (
	"context"
	"errors"

	models "github.com/zdziszkee/swift-codes-catalog/internal/models"
	repository "github.com/zdziszkee/swift-codes-catalog/internal/repositories"
)

var ErrNotImplemented = errors.New("mock: not implemented")

// MockSwiftRepository implements the SwiftRepository interface for testing.
// A nil func falls through to Base when set, and fails otherwise.
type MockSwiftRepository struct {
	Base repository.SwiftRepository

	GetFunc                   func(ctx context.Context, code string) (*models.SwiftBank, error)
	ExistsByIDFunc            func(ctx context.Context, code string) (bool, error)
	ExistsByCountryNameFunc   func(ctx context.Context, countryName string) (bool, error)
	FindByCountryISO2Func     func(ctx context.Context, countryISO2 string) ([]models.SwiftBank, error)
	FindByHeadquarterCodeFunc func(ctx context.Context, headquarterCode string) ([]models.SwiftBank, error)
	SaveFunc                  func(ctx context.Context, bank *models.SwiftBank) error
	SaveBatchFunc             func(ctx context.Context, banks []*models.SwiftBank) error
	DeleteAllByIDFunc         func(ctx context.Context, codes []string) error
}

func (m *MockSwiftRepository) Get(ctx context.Context, code string) (*models.SwiftBank, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, code)
	}
	if m.Base != nil {
		return m.Base.Get(ctx, code)
	}
	return nil, ErrNotImplemented
}

func (m *MockSwiftRepository) ExistsByID(ctx context.Context, code string) (bool, error) {
	if m.ExistsByIDFunc != nil {
		return m.ExistsByIDFunc(ctx, code)
	}
	if m.Base != nil {
		return m.Base.ExistsByID(ctx, code)
	}
	return false, ErrNotImplemented
}

func (m *MockSwiftRepository) ExistsByCountryName(ctx context.Context, countryName string) (bool, error) {
	if m.ExistsByCountryNameFunc != nil {
		return m.ExistsByCountryNameFunc(ctx, countryName)
	}
	if m.Base != nil {
		return m.Base.ExistsByCountryName(ctx, countryName)
	}
	return false, ErrNotImplemented
}

func (m *MockSwiftRepository) FindByCountryISO2(ctx context.Context, countryISO2 string) ([]models.SwiftBank, error) {
	if m.FindByCountryISO2Func != nil {
		return m.FindByCountryISO2Func(ctx, countryISO2)
	}
	if m.Base != nil {
		return m.Base.FindByCountryISO2(ctx, countryISO2)
	}
	return nil, ErrNotImplemented
}

func (m *MockSwiftRepository) FindByHeadquarterCode(ctx context.Context, headquarterCode string) ([]models.SwiftBank, error) {
	if m.FindByHeadquarterCodeFunc != nil {
		return m.FindByHeadquarterCodeFunc(ctx, headquarterCode)
	}
	if m.Base != nil {
		return m.Base.FindByHeadquarterCode(ctx, headquarterCode)
	}
	return nil, ErrNotImplemented
}

func (m *MockSwiftRepository) Save(ctx context.Context, bank *models.SwiftBank) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, bank)
	}
	if m.Base != nil {
		return m.Base.Save(ctx, bank)
	}
	return ErrNotImplemented
}

func (m *MockSwiftRepository) SaveBatch(ctx context.Context, banks []*models.SwiftBank) error {
	if m.SaveBatchFunc != nil {
		return m.SaveBatchFunc(ctx, banks)
	}
	if m.Base != nil {
		return m.Base.SaveBatch(ctx, banks)
	}
	return ErrNotImplemented
}

func (m *MockSwiftRepository) DeleteAllByID(ctx context.Context, codes []string) error {
	if m.DeleteAllByIDFunc != nil {
		return m.DeleteAllByIDFunc(ctx, codes)
	}
	if m.Base != nil {
		return m.Base.DeleteAllByID(ctx, codes)
	}
	return ErrNotImplemented
}

// RunInTx hands the mock itself to fn so overrides stay in effect.
func (m *MockSwiftRepository) RunInTx(ctx context.Context, fn func(repo repository.SwiftRepository) error) error {
	return fn(m)
}
