package httpapi

import (
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ivugurura/music-vault/internal/analytics"
	"github.com/ivugurura/music-vault/internal/netutil"
	"github.com/ivugurura/music-vault/internal/store"
)

// CountryResolver fills in the origin country when no edge header carried
// one. Satisfied by geo.Resolver.
type CountryResolver interface {
	Country(ip net.IP) string
}

// Handlers holds the request handlers and their collaborators.
type Handlers struct {
	ingestor  *analytics.Ingestor
	assembler *analytics.Assembler
	counters  store.Counters
	geo       CountryResolver
	log       zerolog.Logger

	maxBodyBytes int64
}

func NewHandlers(ingestor *analytics.Ingestor, assembler *analytics.Assembler, counters store.Counters, geo CountryResolver, log zerolog.Logger, maxBodyBytes int64) *Handlers {
	return &Handlers{
		ingestor:     ingestor,
		assembler:    assembler,
		counters:     counters,
		geo:          geo,
		log:          log,
		maxBodyBytes: maxBodyBytes,
	}
}

// Ingest accepts one listen-event submission. The caller never needs the
// resulting counts, so success is an empty 204.
func (h *Handlers) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ingestOutcomes.WithLabelValues(outcomeRejected).Inc()
			netutil.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		ingestOutcomes.WithLabelValues(outcomeRejected).Inc()
		netutil.WriteError(w, http.StatusBadRequest, "Request body is empty.")
		return
	}
	if len(body) == 0 {
		ingestOutcomes.WithLabelValues(outcomeRejected).Inc()
		netutil.WriteError(w, http.StatusBadRequest, "Request body is empty.")
		return
	}

	var ev analytics.ListenEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		ingestOutcomes.WithLabelValues(outcomeRejected).Inc()
		netutil.WriteError(w, http.StatusBadRequest, "Invalid JSON format.")
		return
	}
	if err := ev.Normalize(); err != nil {
		ingestOutcomes.WithLabelValues(outcomeRejected).Inc()
		netutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ip := netutil.ClientIP(r)
	country := netutil.CountryCode(r)
	if country == "" && h.geo != nil {
		country = h.geo.Country(ip)
	}

	meta := analytics.RequestMeta{
		IP:        ip,
		Country:   country,
		UserAgent: r.Header.Get("User-Agent"),
		Now:       time.Now(),
	}
	if err := h.ingestor.Record(r.Context(), ev, meta); err != nil {
		ingestOutcomes.WithLabelValues(outcomeError).Inc()
		h.writeStoreError(w, r, err, "record listen event")
		return
	}

	ingestOutcomes.WithLabelValues(outcomeAccepted).Inc()
	w.WriteHeader(http.StatusNoContent)
}

// IngestStatus is an unauthenticated liveness summary of the ingest path:
// store connectivity plus the sizes of the two main tables.
func (h *Handlers) IngestStatus(w http.ResponseWriter, r *http.Request) {
	type status struct {
		Status    string           `json:"status"`
		Store     string           `json:"store"`
		Stats     map[string]int64 `json:"stats,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
	}
	res := status{Status: "Analytics endpoint is running", Timestamp: time.Now().UTC()}

	if err := h.counters.Ping(r.Context()); err != nil {
		res.Store = "disconnected"
		netutil.WriteJSON(w, http.StatusOK, res)
		return
	}
	res.Store = "connected"

	tracks, err1 := h.counters.TableLen(r.Context(), store.TableListenCounts)
	logs, err2 := h.counters.TableLen(r.Context(), store.TableDiagnosticLogs)
	if err1 == nil && err2 == nil {
		res.Stats = map[string]int64{
			"totalTracksWithListens": tracks,
			"totalDiagnosticLogs":    logs,
		}
	}
	netutil.WriteJSON(w, http.StatusOK, res)
}

// Stats serves the full aggregated report. Auth runs before this handler.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	report, err := h.assembler.Assemble(r.Context())
	if err != nil {
		h.writeStoreError(w, r, err, "assemble report")
		return
	}
	netutil.WriteJSON(w, http.StatusOK, report)
}

// Healthz is the plain process liveness probe.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	netutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeStoreError maps pipeline failures onto the error taxonomy: store
// unreachable is a retryable 503, anything else a generic 500 logged with
// full context server side.
func (h *Handlers) writeStoreError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if errors.Is(err, store.ErrUnavailable) {
		h.log.Error().Err(err).Str("request_id", RequestID(r.Context())).Msgf("%s: store unavailable", op)
		netutil.WriteError(w, http.StatusServiceUnavailable, "Service Unavailable: Cannot connect to the database.")
		return
	}
	h.log.Error().Err(err).Str("request_id", RequestID(r.Context())).Msgf("%s: unexpected failure", op)
	netutil.WriteError(w, http.StatusInternalServerError, "An internal server error occurred.")
}
