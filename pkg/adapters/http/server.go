package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/inferschema"
	"github.com/aretw0/inferschema/pkg/openapi"
	"github.com/aretw0/inferschema/pkg/ports"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/go-chi/chi/v5"
)

// APIVersion is the version of the route set served by NewHandler.
const APIVersion = "1"

// maxBodyBytes caps request bodies for registration and decoding.
const maxBodyBytes = 1 << 20

// Server implements ServerInterface over a catalog.
type Server struct {
	Catalog *inferschema.Catalog
	Streams *StreamManager
	Logger  *slog.Logger
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// Option configures NewHandler.
type Option func(*handlerConfig)

type handlerConfig struct {
	streams *StreamManager
	metrics http.Handler
	logger  *slog.Logger
}

// WithStreams serves GET /events from sm. Its Hooks must be installed on
// the catalog for events to flow.
func WithStreams(sm *StreamManager) Option {
	return func(c *handlerConfig) {
		c.streams = sm
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(c *handlerConfig) {
		c.metrics = h
	}
}

// WithLogger sets the request logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the catalog.
func NewHandler(cat *inferschema.Catalog, opts ...Option) http.Handler {
	cfg := handlerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.streams == nil {
		cfg.streams = NewStreamManager()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	server := &Server{
		Catalog: cat,
		Streams: cfg.streams,
		Logger:  cfg.logger,
	}
	r := chi.NewRouter()
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	handler := HandlerFromMux(server, r)
	return enableCORS(handler)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Violation is one field failure in a 422 response.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationResponse is the body of a 422 response.
type ValidationResponse struct {
	Record string      `json:"record"`
	Errors []Violation `json:"errors"`
}

// RecordSummary is one entry of GET /records.
type RecordSummary struct {
	Name    string `json:"name"`
	Doc     string `json:"doc,omitempty"`
	Builtin bool   `json:"builtin"`
	Fields  int    `json:"fields"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.Catalog.Store().(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.Logger.Warn("Health: store unreachable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	unknown, maxDepth := s.Catalog.DecodeDefaults()
	writeJSON(w, http.StatusOK, map[string]any{
		"app":            "inferschema-http",
		"version":        strings.TrimSpace(inferschema.Version),
		"api_version":    APIVersion,
		"unknown_fields": unknown.String(),
		"max_depth":      maxDepth,
	})
}

// GetOpenAPI handles the GET /openapi.json request.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	names, err := s.Catalog.Records(r.Context())
	if err != nil {
		s.fail(w, "GetOpenAPI", err)
		return
	}
	records := make([]*schema.Record, 0, len(names))
	for _, name := range names {
		rec, err := s.Catalog.Record(r.Context(), name)
		if err != nil {
			s.fail(w, "GetOpenAPI", err)
			return
		}
		records = append(records, rec)
	}
	writeJSON(w, http.StatusOK, openapi.Document("inferschema", strings.TrimSpace(inferschema.Version), records...))
}

// ListRecords handles the GET /records request.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	names, err := s.Catalog.Records(r.Context())
	if err != nil {
		s.fail(w, "ListRecords", err)
		return
	}
	out := make([]RecordSummary, 0, len(names))
	for _, name := range names {
		def, err := s.Catalog.Definition(r.Context(), name)
		if err != nil {
			s.fail(w, "ListRecords", err)
			return
		}
		out = append(out, RecordSummary{
			Name:    name,
			Doc:     def.Doc,
			Builtin: s.Catalog.IsBuiltin(name),
			Fields:  len(def.Fields),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// RegisterRecord handles the POST /records request.
func (s *Server) RegisterRecord(w http.ResponseWriter, r *http.Request) {
	var def schema.Definition
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.Logger.Warn("RegisterRecord: Invalid request body", "error", err)
		return
	}

	if _, err := s.Catalog.Register(r.Context(), def); err != nil {
		switch {
		case errors.Is(err, inferschema.ErrBuiltinRecord):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, inferschema.ErrInvalidDefinition):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.fail(w, "RegisterRecord", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

// GetRecord handles the GET /records/{name} request.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request, name string) {
	def, err := s.Catalog.Definition(r.Context(), name)
	if err != nil {
		s.fail(w, "GetRecord", err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// DeleteRecord handles the DELETE /records/{name} request.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request, name string) {
	if err := s.Catalog.Delete(r.Context(), name); err != nil {
		if errors.Is(err, inferschema.ErrBuiltinRecord) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.fail(w, "DeleteRecord", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRecordOpenAPI handles the GET /records/{name}/openapi request.
func (s *Server) GetRecordOpenAPI(w http.ResponseWriter, r *http.Request, name string) {
	rec, err := s.Catalog.Record(r.Context(), name)
	if err != nil {
		s.fail(w, "GetRecordOpenAPI", err)
		return
	}
	writeJSON(w, http.StatusOK, openapi.Document(name, strings.TrimSpace(inferschema.Version), rec))
}

// DecodePayload handles the POST /records/{name}/decode request.
func (s *Server) DecodePayload(w http.ResponseWriter, r *http.Request, name string, params DecodePayloadParams) {
	var opts []schema.Option
	if params.Unknown != nil {
		policy, err := schema.ParseUnknownFieldPolicy(*params.Unknown)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts = append(opts, schema.WithUnknownFields(policy))
	}
	if params.MaxDepth != nil {
		if *params.MaxDepth <= 0 {
			writeError(w, http.StatusBadRequest, "max_depth must be positive")
			return
		}
		opts = append(opts, schema.WithMaxDepth(*params.MaxDepth))
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	obj, err := s.Catalog.DecodeJSON(r.Context(), name, body, opts...)
	if err != nil {
		if violations := schema.Violations(err); len(violations) > 0 {
			resp := ValidationResponse{Record: name, Errors: make([]Violation, 0, len(violations))}
			for _, v := range violations {
				resp.Errors = append(resp.Errors, Violation{Field: v.Key, Reason: v.Reason})
			}
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		if errors.Is(err, inferschema.ErrUnknownRecord) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %v", err))
			return
		}
		s.fail(w, "DecodePayload", err)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

// fail maps catalog errors that are not request-specific.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, inferschema.ErrUnknownRecord) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if errors.Is(err, ports.ErrReadOnly) {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s error: %v", op, err))
	s.Logger.Error(op+" failed", "error", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
