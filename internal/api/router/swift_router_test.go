package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	handlers "github.com/zdziszkee/swift-codes-catalog/internal/api/handlers"
	"github.com/zdziszkee/swift-codes-catalog/internal/api/router"
	"github.com/zdziszkee/swift-codes-catalog/internal/metrics"
	models "github.com/zdziszkee/swift-codes-catalog/internal/models"
	service "github.com/zdziszkee/swift-codes-catalog/internal/services"
	mocks "github.com/zdziszkee/swift-codes-catalog/tests/mocks"
)

func TestRouter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Swift Router Suite")
}

var _ = Describe("Swift Router", func() {
	var (
		app     *fiber.App
		mockSvc *mocks.MockSwiftService
		logs    *bytes.Buffer
	)

	BeforeEach(func() {
		mockSvc = &mocks.MockSwiftService{}
		logs = &bytes.Buffer{}
		app = router.SetupRoutes(handlers.NewSwiftHandler(mockSvc, zerolog.Nop()), zerolog.New(logs), nil)
	})

	Describe("GET /v1/swift-codes/:swiftCode", func() {
		It("should route to the lookup", func() {
			mockSvc.GetSwiftCodeDetailsFunc = func(_ context.Context, code string) (service.SwiftCodeDetails, error) {
				return &service.BranchDetails{SwiftCode: code}, nil
			}

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/swift-codes/AAAABBCC001", nil), fiber.TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
		})
	})

	Describe("GET /v1/swift-codes/country/:countryISO2code", func() {
		It("should not be shadowed by the code route", func() {
			called := false
			mockSvc.GetSwiftCodesByCountryFunc = func(_ context.Context, iso2 string) (*service.CountrySwiftCodes, error) {
				called = true
				return &service.CountrySwiftCodes{CountryISO2: iso2}, nil
			}

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/swift-codes/country/PL", nil), fiber.TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(called).To(BeTrue())
		})
	})

	Describe("POST /v1/swift-codes", func() {
		It("should return 201", func() {
			mockSvc.CreateSwiftCodeFunc = func(context.Context, *models.SwiftBankRequest) (*service.Created, error) {
				return &service.Created{Message: service.MessageCreated}, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/swift-codes", bytes.NewBufferString(`{"swiftCode":"AAAABBCCXXX"}`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, fiber.TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusCreated))
		})
	})

	Describe("DELETE /v1/swift-codes/:swiftCode", func() {
		It("should return 404 for an unknown code", func() {
			mockSvc.DeleteSwiftCodeFunc = func(_ context.Context, code string) (*service.Deleted, error) {
				return nil, &service.Error{Kind: service.KindNotFoundByID, ID: code}
			}

			resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/v1/swift-codes/AAAABBCC001", nil), fiber.TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	It("should answer unknown routes with the error body", func() {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/unknown", nil), fiber.TestConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))

		var body handlers.ErrorResponse
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		Expect(body.URI).To(Equal("/v1/unknown"))
	})

	It("should recover from a panicking handler", func() {
		mockSvc.GetSwiftCodeDetailsFunc = func(context.Context, string) (service.SwiftCodeDetails, error) {
			panic("boom")
		}

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/swift-codes/AAAABBCCXXX", nil), fiber.TestConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))
	})

	It("should log each request with its id", func() {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), fiber.TestConfig{})
		Expect(err).NotTo(HaveOccurred())

		var entry map[string]any
		Expect(json.Unmarshal(logs.Bytes(), &entry)).To(Succeed())
		Expect(entry).To(HaveKeyWithValue("path", "/health"))
		Expect(entry).To(HaveKeyWithValue("status", 200.0))
		Expect(entry["request_id"]).NotTo(BeEmpty())
	})

	It("should leave /metrics unmounted without a gatherer", func() {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), fiber.TestConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
	})

	It("should expose registered metrics", func() {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		m.IncrementOperation("get", metrics.OutcomeSuccess)

		withMetrics := router.SetupRoutes(handlers.NewSwiftHandler(mockSvc, zerolog.Nop()), zerolog.Nop(), reg)
		resp, err := withMetrics.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), fiber.TestConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring("swiftcodes_operations_total"))
	})
})
