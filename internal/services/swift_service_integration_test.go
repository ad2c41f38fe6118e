//go:build integration

package service_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/zdziszkee/swift-codes-catalog/internal/database"
	repository "github.com/zdziszkee/swift-codes-catalog/internal/repositories"
	service "github.com/zdziszkee/swift-codes-catalog/internal/services"
)

var _ = Describe("SwiftService on a SQLite file", Label("integration"), func() {
	var (
		ctx context.Context
		db  *database.Database
		s   service.SwiftService
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = database.New(ctx, database.Config{
			Type:      database.TypeSQLite,
			Path:      filepath.Join(GinkgoT().TempDir(), "swift.db"),
			TableName: "swift_banks",
		}, zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())

		repo, err := repository.NewSQLSwiftRepository(db, zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())
		s = service.NewSwiftService(repo, zerolog.Nop())
	})

	AfterEach(func() {
		db.Close()
	})

	It("should run the headquarter lifecycle end to end", func() {
		_, err := s.CreateSwiftCode(ctx, request("AAAABBCCXXX", "PL", "POLAND"))
		Expect(err).NotTo(HaveOccurred())
		_, err = s.CreateSwiftCode(ctx, request("AAAABBCC001", "PL", "POLAND"))
		Expect(err).NotTo(HaveOccurred())

		details, err := s.GetSwiftCodeDetails(ctx, "AAAABBCCXXX")
		Expect(err).NotTo(HaveOccurred())
		Expect(swiftCodes(details.(*service.HeadquarterDetails).Branches)).To(Equal([]string{"AAAABBCCXXX", "AAAABBCC001"}))

		_, err = s.CreateSwiftCode(ctx, request("ZZZZYYYYXXX", "US", "POLAND"))
		Expect(err).To(MatchError(service.ErrValidationFailed))

		deleted, err := s.DeleteSwiftCode(ctx, "AAAABBCCXXX")
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted.Count).To(Equal(2))

		_, err = s.GetSwiftCodesByCountry(ctx, "PL")
		Expect(err).To(MatchError(service.ErrCountryNotFound))
	})

	It("should keep the store unchanged when an add is rejected", func() {
		_, err := s.CreateSwiftCode(ctx, request("AAAABBCCXXX", "PL", "POLAND"))
		Expect(err).NotTo(HaveOccurred())

		_, err = s.CreateSwiftCode(ctx, request("AAAABBCCXXX", "PL", "POLAND"))
		Expect(err).To(MatchError(service.ErrAlreadyExists))

		country, err := s.GetSwiftCodesByCountry(ctx, "PL")
		Expect(err).NotTo(HaveOccurred())
		Expect(country.SwiftCodes).To(HaveLen(1))
	})
})
