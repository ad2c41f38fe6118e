package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	model "github.com/zdziszkee/swift-codes-catalog/internal/models"
)

var (
	ErrNotFound    = errors.New("swift code not found")
	ErrInvalidData = errors.New("invalid data provided")
)

// SwiftRepository is the keyed store behind the service and the ingestion pass.
//
// FindByCountryISO2 and FindByHeadquarterCode return records in first-inserted
// order; an upsert keeps the position of the record it replaces.
type SwiftRepository interface {
	Get(ctx context.Context, code string) (*model.SwiftBank, error)
	ExistsByID(ctx context.Context, code string) (bool, error)
	ExistsByCountryName(ctx context.Context, countryName string) (bool, error)
	FindByCountryISO2(ctx context.Context, countryISO2 string) ([]model.SwiftBank, error)
	// FindByHeadquarterCode includes the headquarter record itself.
	FindByHeadquarterCode(ctx context.Context, headquarterCode string) ([]model.SwiftBank, error)
	Save(ctx context.Context, bank *model.SwiftBank) error
	SaveBatch(ctx context.Context, banks []*model.SwiftBank) error
	// DeleteAllByID ignores codes that are not stored.
	DeleteAllByID(ctx context.Context, codes []string) error
	// RunInTx runs fn against a repository view whose operations form one unit of work.
	RunInTx(ctx context.Context, fn func(repo SwiftRepository) error) error
}

// sequencer hands out strictly increasing insertion sequence numbers.
// Wall-clock based so ordering survives process restarts.
type sequencer struct {
	mu   sync.Mutex
	last int64
}

func (s *sequencer) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := time.Now().UnixNano()
	if n <= s.last {
		n = s.last + 1
	}
	s.last = n
	return n
}

// dedupe collapses repeated codes; the last occurrence wins but keeps the
// position of the first one.
func dedupe(banks []*model.SwiftBank) []*model.SwiftBank {
	index := make(map[string]int, len(banks))
	out := make([]*model.SwiftBank, 0, len(banks))
	for _, bank := range banks {
		if bank == nil {
			continue
		}
		if i, ok := index[bank.SwiftCode]; ok {
			out[i] = bank
			continue
		}
		index[bank.SwiftCode] = len(out)
		out = append(out, bank)
	}
	return out
}
