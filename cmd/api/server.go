package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/WessleyAI/installbom/engine/bom"
	"github.com/WessleyAI/installbom/engine/catalog"
	"github.com/WessleyAI/installbom/engine/docstore"
	"github.com/WessleyAI/installbom/engine/domain"
	"github.com/WessleyAI/installbom/engine/snapshot"
	"github.com/WessleyAI/installbom/pkg/fn"
	"github.com/WessleyAI/installbom/pkg/metrics"
	"github.com/WessleyAI/installbom/pkg/mid"
	"github.com/WessleyAI/installbom/pkg/resilience"
	"github.com/go-chi/chi/v5"
)

// coefficientStore is the settings surface the API edits.
type coefficientStore interface {
	Coefficients(ctx context.Context) (catalog.Coefficients, error)
	SetCoefficients(ctx context.Context, c catalog.Coefficients) error
}

// server holds the handler dependencies.
type server struct {
	svc      *bom.Service
	docs     bom.Documents
	settings coefficientStore
	// invalidate drops the cached catalog after a coefficient change.
	invalidate func()
	metrics    *metrics.Registry
	maxBody    int64
	log        *slog.Logger
}

func (s *server) routes(cfg *Config, limiter *resilience.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/health", handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(mid.RateLimit(limiter))
		r.Post("/api/summary", s.handleSummary)
		r.Post("/api/convert/canonical", s.handleConvert(snapshot.ConvertLegacyToCanonical))
		r.Post("/api/convert/legacy", s.handleConvert(snapshot.ConvertCanonicalToLegacy))

		r.Route("/api/objects/{id}", func(r chi.Router) {
			r.Get("/summary", s.handleObjectSummary)
			r.Put("/document", s.handlePutDocument)
			r.Post("/migrate", s.handleMigrate)
		})

		r.Get("/api/settings/coefficients", s.handleGetCoefficients)
		r.Put("/api/settings/coefficients", s.handlePutCoefficients)
	})

	return mid.Chain(r,
		mid.Recover(s.log),
		mid.RequestID(),
		mid.Logger(s.log),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("installbom-api"),
	)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Summarize(r.Context(), raw))
}

func (s *server) handleConvert(convert func(string) fn.Result[string]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := s.readBody(w, r)
		if !ok {
			return
		}
		out, err := convert(raw).Unwrap()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, out)
	}
}

func (s *server) handleObjectSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.SummarizeObject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.objectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.docs.Save(r.Context(), docstore.Object{ID: id, PrimaryData: raw}); err != nil {
		s.log.Error("document save failed", "object_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.MigrateObject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.objectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleGetCoefficients(w http.ResponseWriter, r *http.Request) {
	c, err := s.settings.Coefficients(r.Context())
	if err != nil {
		s.log.Error("coefficients read failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handlePutCoefficients(w http.ResponseWriter, r *http.Request) {
	var c catalog.Coefficients
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.ClipsPerMeter < 0 || c.TiesPerMeter < 0 {
		writeError(w, http.StatusBadRequest, "coefficients must be non-negative")
		return
	}
	if err := s.settings.SetCoefficients(r.Context(), c); err != nil {
		s.log.Error("coefficients write failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if s.invalidate != nil {
		s.invalidate()
	}
	writeJSON(w, http.StatusOK, c)
}

// --- Helpers ---

func (s *server) readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return "", false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	return string(data), true
}

func (s *server) objectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		writeError(w, http.StatusNotFound, "object not found")
	case errors.As(err, new(*domain.ParseError)):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error("object request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
