package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clearance/internal/importer/cache"
	"clearance/internal/importer/ledger"
	"clearance/internal/importer/models"
	"clearance/internal/importer/service"
	"clearance/internal/importer/store"
	"clearance/pkg/testutil"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := service.New(
		cache.NewInMemoryCache(time.Hour),
		ledger.Unavailable{},
		store.NewInMemoryStore(),
		service.WithLogger(logger),
	)
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r
}

func registerBody(id string) map[string]any {
	return map[string]any{
		"importer_id":       id,
		"years_active":      7,
		"aeo_tier":          1,
		"violations":        0,
		"clean_inspections": 20,
	}
}

func TestImporterEndpoints(t *testing.T) {
	router := newRouter(t)

	testutil.Given(t, "a registered importer", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/importer", registerBody("X")))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		created := testutil.UnmarshalResponse[models.Profile](t, rr)
		assert.Equal(t, 100.0, created.TrustScore)

		testutil.When(t, "it is registered again", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/importer", registerBody("X")))
			testutil.Then(t, "409 Importer already exists", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusConflict, "Importer already exists")
			})
		})

		testutil.When(t, "a violation is recorded", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/importer/X/violation",
				map[string]any{"violation_id": "V-1", "description": "misdeclared HS code", "severity": 3}))
			testutil.AssertStatusOK(t, rr)
			testutil.AssertJSONContains(t, rr, "status", "ok")

			testutil.Then(t, "the next query reflects it", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/importer/X"))
				testutil.AssertStatusOK(t, rr)
				got := testutil.UnmarshalResponse[models.Profile](t, rr)
				require.Len(t, got.ViolationHistory, 1)
				assert.Equal(t, "misdeclared HS code", got.ViolationHistory[0].Description)
				assert.Equal(t, 85.0, got.TrustScore)
			})
		})

		testutil.When(t, "an inspection and a certificate are logged", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/importer/X/inspection",
				map[string]any{"inspection_id": "I-1", "outcome": "seizure"}))
			testutil.AssertStatusOK(t, rr)

			rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/importer/X/certificate",
				map[string]any{"certificate_id": "AEO-9", "tier": 2, "issued_by": "customs"}))
			testutil.AssertStatusOK(t, rr)

			rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/importer/X"))
			got := testutil.UnmarshalResponse[models.Profile](t, rr)
			assert.Len(t, got.InspectionLogs, 1)
			assert.Len(t, got.AEOCertificates, 1)
		})
	})
}

func TestImporterErrors(t *testing.T) {
	router := newRouter(t)

	t.Run("unknown importer is 404", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/importer/nobody"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "Importer not found")
	})

	t.Run("violation on unknown importer is 400", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/importer/nobody/violation",
			map[string]any{"violation_id": "V-1", "severity": 1}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "Importer not found")
	})

	t.Run("severity out of range is 400", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/importer", registerBody("Y")))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/importer/Y/violation",
			map[string]any{"violation_id": "V-1", "severity": 11}))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("missing importer_id is 400", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/importer", map[string]any{"years_active": 2}))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/importer", "{"))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}
