package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zdziszkee/swift-codes-catalog/internal/logging"
	"github.com/zdziszkee/swift-codes-catalog/internal/metrics"
	models "github.com/zdziszkee/swift-codes-catalog/internal/models"
	repository "github.com/zdziszkee/swift-codes-catalog/internal/repositories"
	validator "github.com/zdziszkee/swift-codes-catalog/internal/validators"
)

const (
	MessageCreated = "swift code created successfully"
	messageDeleted = "swift code deleted successfully, deleted %d record(s)"
)

// SwiftService handles business logic for SWIFT codes
type SwiftService interface {
	GetSwiftCodeDetails(ctx context.Context, code string) (SwiftCodeDetails, error)
	GetSwiftCodesByCountry(ctx context.Context, countryISO2 string) (*CountrySwiftCodes, error)
	CreateSwiftCode(ctx context.Context, req *models.SwiftBankRequest) (*Created, error)
	DeleteSwiftCode(ctx context.Context, code string) (*Deleted, error)
}

// swiftService implements SwiftService
type swiftService struct {
	repo    repository.SwiftRepository
	log     zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(*swiftService)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *swiftService) { s.metrics = m }
}

// NewSwiftService creates a new instance of the Swift service
func NewSwiftService(repo repository.SwiftRepository, logger zerolog.Logger, opts ...Option) SwiftService {
	s := &swiftService{
		repo: repo,
		log:  logging.Component(logger, "service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSwiftCodeDetails returns a branch, or a headquarter together with its group
func (s *swiftService) GetSwiftCodeDetails(ctx context.Context, code string) (SwiftCodeDetails, error) {
	code = models.NormalizeSwiftCode(code)

	var details SwiftCodeDetails
	err := s.repo.RunInTx(ctx, func(repo repository.SwiftRepository) error {
		bank, err := getBank(ctx, repo, code)
		if err != nil {
			return err
		}

		branch := branchDetailsOf(*bank)
		if !bank.IsHeadquarter {
			details = &branch
			return nil
		}

		group, err := repo.FindByHeadquarterCode(ctx, bank.HeadquarterCode)
		if err != nil {
			return fmt.Errorf("fetch branches of %s: %w", code, err)
		}
		details = &HeadquarterDetails{BranchDetails: branch, Branches: branchDetailsOfAll(group)}
		return nil
	})
	s.observe("get", code, err)
	if err != nil {
		return nil, err
	}
	return details, nil
}

// GetSwiftCodesByCountry lists a country's codes under its canonical name
func (s *swiftService) GetSwiftCodesByCountry(ctx context.Context, countryISO2 string) (*CountrySwiftCodes, error) {
	countryISO2 = models.NormalizeCountry(countryISO2)

	banks, err := s.repo.FindByCountryISO2(ctx, countryISO2)
	if err != nil {
		err = fmt.Errorf("fetch country %s: %w", countryISO2, err)
	} else if len(banks) == 0 {
		err = &Error{Kind: KindCountryNotFound, ID: countryISO2}
	}
	s.observe("get_by_country", countryISO2, err)
	if err != nil {
		return nil, err
	}

	return &CountrySwiftCodes{
		CountryISO2: countryISO2,
		CountryName: banks[0].CountryName,
		SwiftCodes:  branchDetailsOfAll(banks),
	}, nil
}

// CreateSwiftCode validates and stores a single SWIFT code
func (s *swiftService) CreateSwiftCode(ctx context.Context, req *models.SwiftBankRequest) (*Created, error) {
	code := models.NormalizeSwiftCode(req.SwiftCode)

	err := s.repo.RunInTx(ctx, func(repo repository.SwiftRepository) error {
		fieldErrs, err := validator.New(repo).Validate(ctx, req)
		if err != nil {
			return err
		}
		if len(fieldErrs) > 0 {
			return &Error{Kind: KindValidationFailed, ID: code, FieldErrors: fieldErrs}
		}

		exists, err := repo.ExistsByID(ctx, code)
		if err != nil {
			return fmt.Errorf("check %s exists: %w", code, err)
		}
		if exists {
			return &Error{Kind: KindConflict, ID: code}
		}

		isHeadquarter := models.IsHeadquarterCode(code)
		if req.IsHeadquarter != nil {
			isHeadquarter = *req.IsHeadquarter
		}

		bank := &models.SwiftBank{
			SwiftCode:       code,
			BankName:        strings.TrimSpace(req.BankName),
			Address:         strings.TrimSpace(req.Address),
			CountryISO2:     models.NormalizeCountry(req.CountryISO2),
			CountryName:     models.NormalizeCountry(req.CountryName),
			IsHeadquarter:   isHeadquarter,
			HeadquarterCode: models.HeadquarterCodeOf(code),
		}
		if err := repo.Save(ctx, bank); err != nil {
			return fmt.Errorf("save %s: %w", code, err)
		}
		return nil
	})
	s.observe("create", code, err)
	if err != nil {
		return nil, err
	}

	return &Created{SwiftCode: code, Message: MessageCreated}, nil
}

// DeleteSwiftCode removes a branch, or a headquarter with its whole group
func (s *swiftService) DeleteSwiftCode(ctx context.Context, code string) (*Deleted, error) {
	code = models.NormalizeSwiftCode(code)

	var count int
	err := s.repo.RunInTx(ctx, func(repo repository.SwiftRepository) error {
		bank, err := getBank(ctx, repo, code)
		if err != nil {
			return err
		}

		codes := []string{bank.SwiftCode}
		if bank.IsHeadquarter {
			group, err := repo.FindByHeadquarterCode(ctx, bank.HeadquarterCode)
			if err != nil {
				return fmt.Errorf("fetch branches of %s: %w", code, err)
			}
			codes = codesOf(group)
		}

		if err := repo.DeleteAllByID(ctx, codes); err != nil {
			return fmt.Errorf("delete %s: %w", code, err)
		}
		count = len(codes)
		return nil
	})
	s.observe("delete", code, err)
	if err != nil {
		return nil, err
	}

	return &Deleted{Count: count, Message: fmt.Sprintf(messageDeleted, count)}, nil
}

func getBank(ctx context.Context, repo repository.SwiftRepository, code string) (*models.SwiftBank, error) {
	bank, err := repo.Get(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &Error{Kind: KindNotFoundByID, ID: code}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", code, err)
	}
	return bank, nil
}

func codesOf(banks []models.SwiftBank) []string {
	codes := make([]string, 0, len(banks))
	for _, bank := range banks {
		codes = append(codes, bank.SwiftCode)
	}
	return codes
}

// observe logs and counts the outcome of one operation.
func (s *swiftService) observe(operation, id string, err error) {
	outcome := metrics.OutcomeSuccess
	if kind, ok := KindOf(err); ok {
		switch kind {
		case KindNotFoundByID, KindCountryNotFound:
			outcome = metrics.OutcomeNotFound
		case KindConflict:
			outcome = metrics.OutcomeConflict
		case KindValidationFailed:
			outcome = metrics.OutcomeInvalid
		}
		s.log.Debug().Str("operation", operation).Str("id", id).Str("outcome", outcome).Msg(err.Error())
	} else if err != nil {
		outcome = metrics.OutcomeError
		s.log.Error().Err(err).Str("operation", operation).Str("id", id).Msg("operation failed")
	} else {
		s.log.Debug().Str("operation", operation).Str("id", id).Msg("operation succeeded")
	}

	if s.metrics != nil {
		s.metrics.IncrementOperation(operation, outcome)
	}
}
