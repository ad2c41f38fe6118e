package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zdziszkee/swift-codes-catalog/internal/database"
	"github.com/zdziszkee/swift-codes-catalog/internal/logging"
	model "github.com/zdziszkee/swift-codes-catalog/internal/models"
)

// rowsPerStatement caps the VALUES list of one upsert statement.
const rowsPerStatement = 100

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLSwiftRepository implements SwiftRepository over database/sql for Trino and SQLite
type SQLSwiftRepository struct {
	db      *sql.DB
	q       querier
	table   string
	dialect dialect
	seq     *sequencer
	log     zerolog.Logger
}

// NewSQLSwiftRepository creates a repository using the dialect of db.Config.Type
func NewSQLSwiftRepository(db *database.Database, logger zerolog.Logger) (*SQLSwiftRepository, error) {
	d, err := dialectFor(db.Config.Type)
	if err != nil {
		return nil, err
	}
	return &SQLSwiftRepository{
		db:      db.DB,
		q:       db.DB,
		table:   db.QualifiedTableName(),
		dialect: d,
		seq:     &sequencer{},
		log:     logging.Component(logger, "repository").With().Str("dialect", db.Config.Type).Logger(),
	}, nil
}

func (r *SQLSwiftRepository) selectColumns() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), r.table)
}

// Get retrieves a single SWIFT bank by code
func (r *SQLSwiftRepository) Get(ctx context.Context, code string) (*model.SwiftBank, error) {
	query := r.selectColumns() + " WHERE swift_code = ?"
	bank, err := scanBank(r.q.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query swift code failed: %w", err)
	}
	return bank, nil
}

func (r *SQLSwiftRepository) ExistsByID(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, "swift_code", code)
}

func (r *SQLSwiftRepository) ExistsByCountryName(ctx context.Context, countryName string) (bool, error) {
	return r.exists(ctx, "country_name", countryName)
}

func (r *SQLSwiftRepository) exists(ctx context.Context, column, value string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? LIMIT 1", r.table, column)
	var found int
	err := r.q.QueryRowContext(ctx, query, value).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s exists failed: %w", column, err)
	}
	return true, nil
}

// FindByCountryISO2 returns every bank of a country in first-inserted order
func (r *SQLSwiftRepository) FindByCountryISO2(ctx context.Context, countryISO2 string) ([]model.SwiftBank, error) {
	return r.find(ctx, "country_iso2", countryISO2)
}

// FindByHeadquarterCode returns the headquarter and its branches in first-inserted order
func (r *SQLSwiftRepository) FindByHeadquarterCode(ctx context.Context, headquarterCode string) ([]model.SwiftBank, error) {
	return r.find(ctx, "headquarter_code", headquarterCode)
}

func (r *SQLSwiftRepository) find(ctx context.Context, column, value string) ([]model.SwiftBank, error) {
	query := fmt.Sprintf("%s WHERE %s = ? ORDER BY %s, swift_code", r.selectColumns(), column, seqColumn)
	rows, err := r.q.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("query by %s failed: %w", column, err)
	}
	defer rows.Close()

	banks := []model.SwiftBank{}
	for rows.Next() {
		bank, err := scanBank(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		banks = append(banks, *bank)
	}
	return banks, rows.Err()
}

// Save upserts a single bank
func (r *SQLSwiftRepository) Save(ctx context.Context, bank *model.SwiftBank) error {
	if bank == nil || bank.SwiftCode == "" {
		return ErrInvalidData
	}
	if err := r.upsert(ctx, []*model.SwiftBank{bank}); err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// SaveBatch upserts banks with one statement per rowsPerStatement records
func (r *SQLSwiftRepository) SaveBatch(ctx context.Context, banks []*model.SwiftBank) error {
	banks = dedupe(banks)
	for _, bank := range banks {
		if bank.SwiftCode == "" {
			return ErrInvalidData
		}
	}

	for i := 0; i < len(banks); i += rowsPerStatement {
		end := min(i+rowsPerStatement, len(banks))
		if err := r.upsert(ctx, banks[i:end]); err != nil {
			return fmt.Errorf("batch upsert failed for rows %d-%d: %w", i+1, end, err)
		}
		r.log.Debug().Int("rows", end-i).Msg("batch upserted")
	}
	return nil
}

func (r *SQLSwiftRepository) upsert(ctx context.Context, banks []*model.SwiftBank) error {
	args := make([]any, 0, len(banks)*(len(columns)+1))
	for _, bank := range banks {
		args = append(args,
			bank.SwiftCode,
			bank.BankName,
			bank.Address,
			bank.CountryISO2,
			bank.CountryName,
			bank.IsHeadquarter,
			bank.HeadquarterCode,
			r.seq.next(),
		)
	}
	_, err := r.q.ExecContext(ctx, r.dialect.upsert(r.table, len(banks)), args...)
	return err
}

// DeleteAllByID removes the given codes; codes that are not stored are ignored
func (r *SQLSwiftRepository) DeleteAllByID(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	args := make([]any, len(codes))
	for i, code := range codes {
		args[i] = code
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE swift_code IN (%s)", r.table, placeholders(len(codes)))
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// RunInTx runs fn inside a transaction on SQLite. Trino has no transactions,
// so there fn runs directly against the connection pool.
func (r *SQLSwiftRepository) RunInTx(ctx context.Context, fn func(repo SwiftRepository) error) error {
	if r.db == nil || !r.dialect.transactional() {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}

	scoped := *r
	scoped.db = nil
	scoped.q = tx

	if err := fn(&scoped); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.log.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

func scanBank(scanner interface {
	Scan(dest ...any) error
}) (*model.SwiftBank, error) {
	var bank model.SwiftBank

	err := scanner.Scan(
		&bank.SwiftCode,
		&bank.BankName,
		&bank.Address,
		&bank.CountryISO2,
		&bank.CountryName,
		&bank.IsHeadquarter,
		&bank.HeadquarterCode,
	)
	if err != nil {
		return nil, err
	}

	return &bank, nil
}
