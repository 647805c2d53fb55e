// Package web exposes the HTTP API: health checking, configuration
// read/update and on-demand calendar document generation.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"calprint/internal/config"
	appLog "calprint/internal/log"
	"calprint/internal/pipeline"
)

// Server serves the config API and the generated document.
type Server struct {
	mu         sync.RWMutex
	cfg        *config.Config
	gen        *pipeline.Generator
	configPath string

	mux *http.ServeMux

	// Cached result of the last parameterless /calendar.pdf generation so
	// repeated downloads do not refetch and relayout on every request.
	pdfMu    sync.RWMutex
	pdfCache *pdfCache
}

type pdfCache struct {
	blob      []byte
	filename  string
	updatedAt time.Time
}

const pdfCacheTTL = 60 * time.Second

// NewServer constructs a Server persisting config changes to configPath.
func NewServer(cfg *config.Config, configPath string) *Server {
	s := &Server{
		cfg:        cfg,
		gen:        pipeline.New(cfg),
		configPath: configPath,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/config", s.handleConfig)
	s.mux.HandleFunc("/calendar.pdf", s.handleCalendar)
	return s
}

// Handler returns the routing handler, wrapped with basic auth when
// credentials are configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware protects everything except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calprint", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleConfig serves the active configuration on GET and replaces it on
// PUT. Updates are validated, persisted to disk and applied immediately;
// the document cache is dropped so the next download reflects the change.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		cfg := s.cfg
		s.mu.RUnlock()
		writeJSON(w, http.StatusOK, cfg)

	case http.MethodPut:
		var next config.Config
		if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		next.Normalize()
		if err := next.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := next.Save(s.configPath); err != nil {
			appLog.Error("config save failed", err, "path", s.configPath)
			writeError(w, http.StatusInternalServerError, "failed to persist config")
			return
		}

		s.mu.Lock()
		s.cfg = &next
		s.gen = pipeline.New(&next)
		s.mu.Unlock()

		s.pdfMu.Lock()
		s.pdfCache = nil
		s.pdfMu.Unlock()

		appLog.Info("config updated", "path", s.configPath)
		writeJSON(w, http.StatusOK, &next)

	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCalendar generates and serves the document.
//
// GET /calendar.pdf?from=2024-04&months=3
//   - from:   first month (default: current month)
//   - months: month count (default: configured count)
//
// Parameterless requests are served from a short-lived cache.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	defaultRequest := q.Get("from") == "" && q.Get("months") == ""

	if defaultRequest {
		s.pdfMu.RLock()
		pc := s.pdfCache
		s.pdfMu.RUnlock()
		if pc != nil && time.Since(pc.updatedAt) < pdfCacheTTL {
			servePDF(w, pc.filename, pc.blob)
			return
		}
	}

	from := time.Now()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM")
			return
		}
		from = t
	}
	months := 0
	if v := q.Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 24 {
			writeError(w, http.StatusBadRequest, "months must be 1..24")
			return
		}
		months = n
	}

	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	res, err := gen.Generate(r.Context(), from, months)
	if err != nil {
		appLog.Error("calendar generation failed", err)
		writeError(w, http.StatusInternalServerError, "failed to generate calendar")
		return
	}

	if defaultRequest {
		s.pdfMu.Lock()
		s.pdfCache = &pdfCache{blob: res.Blob, filename: res.Filename, updatedAt: time.Now()}
		s.pdfMu.Unlock()
	}

	servePDF(w, res.Filename, res.Blob)
}

// servePDF presents the blob to the client as a file download.
func servePDF(w http.ResponseWriter, filename string, blob []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

// StartServer runs the HTTP server until ctx is canceled.
func StartServer(ctx context.Context, cfg *config.Config, configPath string) error {
	s := NewServer(cfg, configPath)
	srv := &http.Server{Addr: cfg.Listen, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
