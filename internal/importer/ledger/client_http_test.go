package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clearance/internal/importer/models"
	"clearance/pkg/platform/sentinel"
)

// fakeGateway is a minimal ledger gateway backed by a map.
func fakeGateway(t *testing.T, token string) (*httptest.Server, map[string]*models.Profile) {
	t.Helper()
	profiles := map[string]*models.Profile{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if token != "" && req.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/importers/{id}", func(w http.ResponseWriter, req *http.Request) {
		p, ok := profiles[chi.URLParam(req, "id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(p)
	})
	r.Post("/importers", func(w http.ResponseWriter, req *http.Request) {
		var p models.Profile
		require.NoError(t, json.NewDecoder(req.Body).Decode(&p))
		if _, ok := profiles[p.ImporterID]; ok {
			w.WriteHeader(http.StatusConflict)
			return
		}
		profiles[p.ImporterID] = &p
		w.WriteHeader(http.StatusCreated)
	})
	r.Post("/importers/{id}/violations", func(w http.ResponseWriter, req *http.Request) {
		p, ok := profiles[chi.URLParam(req, "id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var v models.Violation
		require.NoError(t, json.NewDecoder(req.Body).Decode(&v))
		p.ViolationHistory = append(p.ViolationHistory, v)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, profiles
}

func TestHTTPClientRoundTrip(t *testing.T) {
	srv, profiles := fakeGateway(t, "s3cret")
	client := NewHTTPClient(srv.URL, WithToken("s3cret"))
	ctx := context.Background()
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	profile := models.NewProfile(models.Registration{ImporterID: "IMP-7", YearsActive: 3}, now)
	require.NoError(t, client.Register(ctx, profile))
	require.Contains(t, profiles, "IMP-7")

	assert.ErrorIs(t, client.Register(ctx, profile), sentinel.ErrConflict)

	require.NoError(t, client.AddViolation(ctx, "IMP-7", models.Violation{ViolationID: "V-1", Severity: 2}))

	got, err := client.Query(ctx, "IMP-7")
	require.NoError(t, err)
	assert.Equal(t, "IMP-7", got.ImporterID)
	assert.Len(t, got.ViolationHistory, 1)
}

func TestHTTPClientErrorMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("missing importer", func(t *testing.T) {
		srv, _ := fakeGateway(t, "")
		_, err := NewHTTPClient(srv.URL).Query(ctx, "ghost")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("rejected credentials count as unavailable", func(t *testing.T) {
		srv, _ := fakeGateway(t, "right")
		_, err := NewHTTPClient(srv.URL, WithToken("wrong")).Query(ctx, "any")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		_, err := NewHTTPClient(srv.URL).Query(ctx, "any")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()
		_, err := NewHTTPClient(addr).Query(ctx, "any")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()
		ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := NewHTTPClient(srv.URL).Query(ctx, "any")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	var l Unavailable
	_, err := l.Query(ctx, "x")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.ErrorIs(t, l.Register(ctx, &models.Profile{}), sentinel.ErrUnavailable)
	assert.ErrorIs(t, l.AddViolation(ctx, "x", models.Violation{}), sentinel.ErrUnavailable)
	assert.ErrorIs(t, l.LogInspection(ctx, "x", models.Inspection{}), sentinel.ErrUnavailable)
	assert.ErrorIs(t, l.AddCertificate(ctx, "x", models.AEOCertificate{}), sentinel.ErrUnavailable)
}
