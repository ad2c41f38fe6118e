package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/zdziszkee/swift-codes-catalog/internal/logging"
	"github.com/zdziszkee/swift-codes-catalog/internal/metrics"
	models "github.com/zdziszkee/swift-codes-catalog/internal/models"
	parser "github.com/zdziszkee/swift-codes-catalog/internal/parsers"
	readers "github.com/zdziszkee/swift-codes-catalog/internal/readers"
	"github.com/zdziszkee/swift-codes-catalog/internal/readers/csv"
	repository "github.com/zdziszkee/swift-codes-catalog/internal/repositories"
	validator "github.com/zdziszkee/swift-codes-catalog/internal/validators"
)

// Policy selects how much an ingestion pass trusts its source.
type Policy string

const (
	// PolicyTrustSource persists every well-formed row in batches.
	PolicyTrustSource Policy = "trust"
	// PolicyValidate runs the consistency validator on each row against the
	// store and persists rows one at a time, so later rows see earlier ones.
	PolicyValidate Policy = "validate"
)

const DefaultBatchSize = 100

var ErrSourceUnreadable = errors.New("ingestion source unreadable")

// Stats summarises one ingestion pass.
type Stats struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

type Ingester struct {
	repo      repository.SwiftRepository
	parser    parser.SwiftBanksParser
	validator *validator.SwiftCodeValidator
	metrics   *metrics.Metrics
	log       zerolog.Logger
	policy    Policy
	batchSize int
}

type Option func(*Ingester)

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Ingester) { i.metrics = m }
}

func WithPolicy(p Policy) Option {
	return func(i *Ingester) {
		if p != "" {
			i.policy = p
		}
	}
}

func WithBatchSize(n int) Option {
	return func(i *Ingester) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

func WithParser(p parser.SwiftBanksParser) Option {
	return func(i *Ingester) { i.parser = p }
}

func New(repo repository.SwiftRepository, logger zerolog.Logger, opts ...Option) *Ingester {
	i := &Ingester{
		repo:      repo,
		parser:    parser.DefaultSwiftBanksParser{},
		validator: validator.New(repo),
		log:       logging.Component(logger, "ingestion"),
		policy:    PolicyTrustSource,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IngestFile runs one pass over the file at path.
func (i *Ingester) IngestFile(ctx context.Context, path string) (Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		i.log.Error().Err(err).Str("file", path).Msg("ingestion aborted")
		return Stats{}, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	defer file.Close()

	return i.Ingest(ctx, file)
}

// Ingest reads every row of r and persists the ones that parse. Unusable rows
// are skipped and counted; only a failing source or a cancelled context ends
// the pass early.
func (i *Ingester) Ingest(ctx context.Context, r io.Reader) (Stats, error) {
	start := time.Now()
	pass := &pass{Ingester: i, batch: make([]*models.SwiftBank, 0, i.batchSize)}

	err := pass.run(ctx, csv.NewCSVSwiftBanksReader(r))
	if ctx.Err() == nil {
		pass.flush(ctx)
	}

	if i.metrics != nil {
		i.metrics.ObserveIngestion(pass.stats.Processed, pass.stats.Skipped, start)
	}

	if err != nil {
		i.log.Error().Err(err).
			Int("processed", pass.stats.Processed).
			Int("skipped", pass.stats.Skipped).
			Msg("ingestion aborted")
		return pass.stats, err
	}

	i.log.Info().
		Int("processed", pass.stats.Processed).
		Int("skipped", pass.stats.Skipped).
		Str("policy", string(i.policy)).
		Dur("duration", time.Since(start)).
		Msg("ingestion finished")
	return pass.stats, nil
}

// pass holds the state of a single Ingest call.
type pass struct {
	*Ingester
	batch []*models.SwiftBank
	stats Stats
}

func (p *pass) run(ctx context.Context, reader readers.SwiftBanksReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		var rowErr *readers.RowError
		if errors.As(err, &rowErr) {
			p.skip(rowErr.Row, "", rowErr.Err)
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
		}

		bank, err := p.parser.ParseSwiftBank(record)
		if err != nil {
			p.skip(record.Index, record.SwiftCode, err)
			continue
		}

		if p.policy == PolicyValidate {
			p.validateAndSave(ctx, record.Index, bank)
			continue
		}

		p.batch = append(p.batch, bank)
		if len(p.batch) >= p.batchSize {
			p.flush(ctx)
		}
	}
}

func (p *pass) validateAndSave(ctx context.Context, row int, bank *models.SwiftBank) {
	fieldErrs, err := p.validator.Validate(ctx, &models.SwiftBankRequest{
		SwiftCode:   bank.SwiftCode,
		BankName:    bank.BankName,
		Address:     bank.Address,
		CountryISO2: bank.CountryISO2,
		CountryName: bank.CountryName,
	})
	if err == nil && len(fieldErrs) > 0 {
		err = fieldErrs
	}
	if err == nil {
		err = p.repo.Save(ctx, bank)
	}
	if err != nil {
		p.skip(row, bank.SwiftCode, err)
		return
	}
	p.stats.Processed++
}

// flush writes the pending batch. A failed batch is retried row by row so a
// single bad record does not cost its neighbours.
func (p *pass) flush(ctx context.Context) {
	if len(p.batch) == 0 {
		return
	}
	defer func() { p.batch = p.batch[:0] }()

	err := p.repo.SaveBatch(ctx, p.batch)
	if err == nil {
		p.stats.Processed += len(p.batch)
		return
	}

	p.log.Warn().Err(err).Int("rows", len(p.batch)).Msg("batch save failed, retrying row by row")
	for _, bank := range p.batch {
		if err := p.repo.Save(ctx, bank); err != nil {
			p.skip(0, bank.SwiftCode, err)
			continue
		}
		p.stats.Processed++
	}
}

func (p *pass) skip(row int, code string, err error) {
	p.stats.Skipped++
	p.log.Debug().Err(err).Int("row", row).Str("swift_code", code).Msg("record skipped")
}
