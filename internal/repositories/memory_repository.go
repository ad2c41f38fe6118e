package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	model "github.com/zdziszkee/swift-codes-catalog/internal/models"
)

// MemoryRepository keeps SWIFT banks in process memory. Every call, and every
// RunInTx closure as a whole, runs under one lock.
type MemoryRepository struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryEntry struct {
	bank model.SwiftBank
	seq  int64
}

type memoryState struct {
	banks   map[string]memoryEntry
	lastSeq int64
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{state: &memoryState{banks: make(map[string]memoryEntry)}}
}

func (r *MemoryRepository) Get(ctx context.Context, code string) (*model.SwiftBank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().Get(ctx, code)
}

func (r *MemoryRepository) ExistsByID(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().ExistsByID(ctx, code)
}

func (r *MemoryRepository) ExistsByCountryName(ctx context.Context, countryName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().ExistsByCountryName(ctx, countryName)
}

func (r *MemoryRepository) FindByCountryISO2(ctx context.Context, countryISO2 string) ([]model.SwiftBank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().FindByCountryISO2(ctx, countryISO2)
}

func (r *MemoryRepository) FindByHeadquarterCode(ctx context.Context, headquarterCode string) ([]model.SwiftBank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().FindByHeadquarterCode(ctx, headquarterCode)
}

func (r *MemoryRepository) Save(ctx context.Context, bank *model.SwiftBank) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().Save(ctx, bank)
}

func (r *MemoryRepository) SaveBatch(ctx context.Context, banks []*model.SwiftBank) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().SaveBatch(ctx, banks)
}

func (r *MemoryRepository) DeleteAllByID(ctx context.Context, codes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().DeleteAllByID(ctx, codes)
}

// RunInTx holds the repository lock for the whole closure. Writes made by a
// closure that returns an error are rolled back.
func (r *MemoryRepository) RunInTx(ctx context.Context, fn func(repo SwiftRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := r.view()
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// Len returns the number of stored records.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.banks)
}

func (r *MemoryRepository) view() *memoryTx {
	return &memoryTx{state: r.state}
}

// memoryTx operates on the shared state without locking; the owner holds the lock.
type memoryTx struct {
	state *memoryState
	undo  []func()
}

func (t *memoryTx) Get(ctx context.Context, code string) (*model.SwiftBank, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, ok := t.state.banks[code]
	if !ok {
		return nil, ErrNotFound
	}
	bank := entry.bank
	return &bank, nil
}

func (t *memoryTx) ExistsByID(ctx context.Context, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := t.state.banks[code]
	return ok, nil
}

func (t *memoryTx) ExistsByCountryName(ctx context.Context, countryName string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for _, entry := range t.state.banks {
		if entry.bank.CountryName == countryName {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) FindByCountryISO2(ctx context.Context, countryISO2 string) ([]model.SwiftBank, error) {
	return t.find(ctx, func(b model.SwiftBank) bool { return b.CountryISO2 == countryISO2 })
}

func (t *memoryTx) FindByHeadquarterCode(ctx context.Context, headquarterCode string) ([]model.SwiftBank, error) {
	return t.find(ctx, func(b model.SwiftBank) bool { return b.HeadquarterCode == headquarterCode })
}

func (t *memoryTx) find(ctx context.Context, match func(model.SwiftBank) bool) ([]model.SwiftBank, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entries []memoryEntry
	for _, entry := range t.state.banks {
		if match(entry.bank) {
			entries = append(entries, entry)
		}
	}
	slices.SortFunc(entries, func(a, b memoryEntry) int {
		if c := cmp.Compare(a.seq, b.seq); c != 0 {
			return c
		}
		return cmp.Compare(a.bank.SwiftCode, b.bank.SwiftCode)
	})

	banks := make([]model.SwiftBank, 0, len(entries))
	for _, entry := range entries {
		banks = append(banks, entry.bank)
	}
	return banks, nil
}

func (t *memoryTx) Save(ctx context.Context, bank *model.SwiftBank) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bank == nil || bank.SwiftCode == "" {
		return ErrInvalidData
	}

	code := bank.SwiftCode
	previous, existed := t.state.banks[code]
	seq := previous.seq
	if !existed {
		t.state.lastSeq++
		seq = t.state.lastSeq
	}
	t.state.banks[code] = memoryEntry{bank: *bank, seq: seq}

	t.undo = append(t.undo, func() {
		if existed {
			t.state.banks[code] = previous
		} else {
			delete(t.state.banks, code)
		}
	})
	return nil
}

func (t *memoryTx) SaveBatch(ctx context.Context, banks []*model.SwiftBank) error {
	for _, bank := range dedupe(banks) {
		if err := t.Save(ctx, bank); err != nil {
			return err
		}
	}
	return nil
}

func (t *memoryTx) DeleteAllByID(ctx context.Context, codes []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, code := range codes {
		entry, ok := t.state.banks[code]
		if !ok {
			continue
		}
		delete(t.state.banks, code)
		t.undo = append(t.undo, func() { t.state.banks[code] = entry })
	}
	return nil
}

func (t *memoryTx) RunInTx(ctx context.Context, fn func(repo SwiftRepository) error) error {
	return fn(t)
}

func (t *memoryTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}
