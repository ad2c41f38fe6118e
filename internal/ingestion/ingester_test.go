package ingestion_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/zdziszkee/swift-codes-catalog/internal/ingestion"
	"github.com/zdziszkee/swift-codes-catalog/internal/metrics"
	"github.com/zdziszkee/swift-codes-catalog/internal/models"
	parser "github.com/zdziszkee/swift-codes-catalog/internal/parsers"
	readers "github.com/zdziszkee/swift-codes-catalog/internal/readers"
	repository "github.com/zdziszkee/swift-codes-catalog/internal/repositories"
	"github.com/zdziszkee/swift-codes-catalog/tests/mocks"
)

func TestIngestion(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ingestion Suite")
}

const header = "COUNTRY ISO2 CODE,SWIFT CODE,CODE TYPE,NAME,ADDRESS,TOWN NAME,COUNTRY NAME,TIME ZONE\n"

const sample = header +
	"pl,AAAAPLPWXXX,BIC11,Bank A,Main St 1,Warsaw,Poland,Europe/Warsaw\n" +
	"PL,AAAAPLPW001,BIC11,Bank A Branch,Side St 2,Krakow, poland ,Europe/Warsaw\n" +
	"PL,SHORT,BIC11,Broken,Nowhere,Nowhere,Poland,Europe/Warsaw\n" +
	"PL,BBBBPLPW001,BIC11,Bank B,Short row\n" +
	"DE,CCCCDEFFXXX,BIC11,Bank C,Ring 3,Frankfurt,Germany,Europe/Berlin\n"

type brokenSource struct{}

// germanOnly accepts only rows from DE.
type germanOnly struct{ parser.DefaultSwiftBanksParser }

func (p germanOnly) ParseSwiftBank(record readers.SwiftBankRecord) (*models.SwiftBank, error) {
	bank, err := p.DefaultSwiftBanksParser.ParseSwiftBank(record)
	if err != nil {
		return nil, err
	}
	if bank.CountryISO2 != "DE" {
		return nil, errors.New("country not accepted")
	}
	return bank, nil
}

func (brokenSource) Read([]byte) (int, error) { return 0, errors.New("device not ready") }

var _ = Describe("Ingester", func() {
	var (
		ctx  context.Context
		repo *repository.MemoryRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = repository.NewMemoryRepository()
	})

	It("should persist good rows and count the rest", func() {
		stats, err := ingestion.New(repo, zerolog.Nop()).Ingest(ctx, strings.NewReader(sample))
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(ingestion.Stats{Processed: 3, Skipped: 2}))
		Expect(repo.Len()).To(Equal(3))

		hq, err := repo.Get(ctx, "AAAAPLPWXXX")
		Expect(err).NotTo(HaveOccurred())
		Expect(hq).To(Equal(&models.SwiftBank{
			SwiftCode:       "AAAAPLPWXXX",
			BankName:        "Bank A",
			Address:         "Main St 1",
			CountryISO2:     "PL",
			CountryName:     "POLAND",
			IsHeadquarter:   true,
			HeadquarterCode: "AAAAPLPW",
		}))

		branch, err := repo.Get(ctx, "AAAAPLPW001")
		Expect(err).NotTo(HaveOccurred())
		Expect(branch.IsHeadquarter).To(BeFalse())
		Expect(branch.CountryName).To(Equal("POLAND"))
	})

	It("should keep the last occurrence of a repeated code", func() {
		input := header +
			"PL,AAAAPLPWXXX,BIC11,First,Main St 1,Warsaw,Poland,Europe/Warsaw\n" +
			"PL,AAAAPLPWXXX,BIC11,Second,Main St 1,Warsaw,Poland,Europe/Warsaw\n"

		stats, err := ingestion.New(repo, zerolog.Nop()).Ingest(ctx, strings.NewReader(input))
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Processed).To(Equal(2))

		bank, err := repo.Get(ctx, "AAAAPLPWXXX")
		Expect(err).NotTo(HaveOccurred())
		Expect(bank.BankName).To(Equal("Second"))
	})

	It("should flush in batches of the configured size", func() {
		var sizes []int
		mock := &mocks.MockSwiftRepository{
			Base: repo,
			SaveBatchFunc: func(ctx context.Context, banks []*models.SwiftBank) error {
				sizes = append(sizes, len(banks))
				return repo.SaveBatch(ctx, banks)
			},
		}

		stats, err := ingestion.New(mock, zerolog.Nop(), ingestion.WithBatchSize(2)).Ingest(ctx, strings.NewReader(sample))
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Processed).To(Equal(3))
		Expect(sizes).To(Equal([]int{2, 1}))
	})

	It("should retry a failed batch row by row", func() {
		mock := &mocks.MockSwiftRepository{
			Base: repo,
			SaveBatchFunc: func(context.Context, []*models.SwiftBank) error {
				return errors.New("batch rejected")
			},
			SaveFunc: func(ctx context.Context, bank *models.SwiftBank) error {
				if bank.SwiftCode == "AAAAPLPW001" {
					return errors.New("row rejected")
				}
				return repo.Save(ctx, bank)
			},
		}

		stats, err := ingestion.New(mock, zerolog.Nop()).Ingest(ctx, strings.NewReader(sample))
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(ingestion.Stats{Processed: 2, Skipped: 3}))
		Expect(repo.ExistsByID(ctx, "AAAAPLPW001")).To(BeFalse())
		Expect(repo.ExistsByID(ctx, "CCCCDEFFXXX")).To(BeTrue())
	})

	It("should abort once when the source cannot be read", func() {
		stats, err := ingestion.New(repo, zerolog.Nop()).Ingest(ctx, brokenSource{})
		Expect(err).To(MatchError(ingestion.ErrSourceUnreadable))
		Expect(stats).To(Equal(ingestion.Stats{}))
	})

	It("should report a missing file as unreadable", func() {
		_, err := ingestion.New(repo, zerolog.Nop()).IngestFile(ctx, filepath.Join(GinkgoT().TempDir(), "missing.csv"))
		Expect(err).To(MatchError(ingestion.ErrSourceUnreadable))
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})

	It("should ingest a file from disk", func() {
		path := filepath.Join(GinkgoT().TempDir(), "swift.csv")
		Expect(os.WriteFile(path, []byte(sample), 0o600)).To(Succeed())

		stats, err := ingestion.New(repo, zerolog.Nop()).IngestFile(ctx, path)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Processed).To(Equal(3))
	})

	It("should stop on a cancelled context", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := ingestion.New(repo, zerolog.Nop()).Ingest(cancelled, strings.NewReader(sample))
		Expect(err).To(MatchError(context.Canceled))
		Expect(repo.Len()).To(BeZero())
	})

	It("should parse rows with the configured parser", func() {
		stats, err := ingestion.New(repo, zerolog.Nop(), ingestion.WithParser(germanOnly{})).
			Ingest(ctx, strings.NewReader(sample))
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(ingestion.Stats{Processed: 1, Skipped: 4}))
		Expect(repo.ExistsByID(ctx, "CCCCDEFFXXX")).To(BeTrue())
		Expect(repo.ExistsByID(ctx, "AAAAPLPWXXX")).To(BeFalse())
	})

	It("should skip codes with non-ASCII letters", func() {
		input := header +
			"DE,ÄAAADEFFXXX,BIC11,Bank A,Ring 1,Frankfurt,Germany,Europe/Berlin\n" +
			"DE,ÄAAADEFFXX,BIC11,Bank B,Ring 2,Frankfurt,Germany,Europe/Berlin\n" +
			"DE,CCCCDEFFXXX,BIC11,Bank C,Ring 3,Frankfurt,Germany,Europe/Berlin\n"

		stats, err := ingestion.New(repo, zerolog.Nop()).Ingest(ctx, strings.NewReader(input))
		Expect(err).NotTo(HaveOccurred())
		Expect(stats).To(Equal(ingestion.Stats{Processed: 1, Skipped: 2}))
		Expect(repo.Len()).To(Equal(1))
	})

	It("should log one summary line per pass", func() {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

		_, err := ingestion.New(repo, logger).Ingest(ctx, strings.NewReader(sample))
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(1))
		Expect(lines[0]).To(ContainSubstring(`"processed":3`))
		Expect(lines[0]).To(ContainSubstring(`"skipped":2`))
	})

	It("should record metrics for the pass", func() {
		m := metrics.New(prometheus.NewRegistry())

		_, err := ingestion.New(repo, zerolog.Nop(), ingestion.WithMetrics(m)).Ingest(ctx, strings.NewReader(sample))
		Expect(err).NotTo(HaveOccurred())
		Expect(testutil.ToFloat64(m.IngestedRecords)).To(Equal(3.0))
		Expect(testutil.ToFloat64(m.SkippedRecords)).To(Equal(2.0))
	})

	Describe("with the validate policy", func() {
		It("should skip rows that contradict the stored country data", func() {
			input := header +
				"PL,AAAAPLPWXXX,BIC11,Bank A,Main St 1,Warsaw,Poland,Europe/Warsaw\n" +
				"PL,BBBBPLPWXXX,BIC11,Bank B,Main St 2,Warsaw,Polska,Europe/Warsaw\n" +
				"PX,CCCCPXPWXXX,BIC11,Bank C,Main St 3,Warsaw,Poland,Europe/Warsaw\n" +
				"PL,DDDDPLPWXXX,BIC11,Bank D,Main St 4,Warsaw,Poland,Europe/Warsaw\n"

			stats, err := ingestion.New(repo, zerolog.Nop(), ingestion.WithPolicy(ingestion.PolicyValidate)).
				Ingest(ctx, strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal(ingestion.Stats{Processed: 2, Skipped: 2}))

			banks, err := repo.FindByCountryISO2(ctx, "PL")
			Expect(err).NotTo(HaveOccurred())
			Expect(banks).To(HaveLen(2))
		})

		It("should trust the same rows by default", func() {
			input := header +
				"PL,AAAAPLPWXXX,BIC11,Bank A,Main St 1,Warsaw,Poland,Europe/Warsaw\n" +
				"PL,BBBBPLPWXXX,BIC11,Bank B,Main St 2,Warsaw,Polska,Europe/Warsaw\n"

			stats, err := ingestion.New(repo, zerolog.Nop()).Ingest(ctx, strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Processed).To(Equal(2))
		})
	})
})

var _ io.Reader = brokenSource{}
