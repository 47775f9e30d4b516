// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/alterscript"
	"github.com/arwahdevops/oradelta/internal/apply"
	"github.com/arwahdevops/oradelta/internal/config"
	"github.com/arwahdevops/oradelta/internal/db"
	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/dualityview"
	"github.com/arwahdevops/oradelta/internal/metrics"
)

const maxBodyBytes = 32 << 20 // Model delta bisa besar

// Deps are the collaborators of the HTTP handlers. Conn and Applier are nil
// when no Oracle instance is configured.
type Deps struct {
	Config    *config.Config
	Metrics   *metrics.Store
	Generator *alterscript.Generator
	Conn      *db.Connector
	Applier   *apply.Executor
	Logger    *zap.Logger
}

// NewHandler builds the HTTP routes.
func NewHandler(d Deps) http.Handler {
	log := d.Logger.Named("http-server")
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Conn == nil {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "Ready (no database configured)")
			return
		}
		pingCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		err := d.Conn.Ping(pingCtx)
		d.Metrics.DBConnections.WithLabelValues("oracle").Set(float64(d.Conn.DB.Stats().OpenConnections))
		if err != nil {
			log.Warn("Readiness check failed", zap.NamedError("oracle_ping_error", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "Not Ready: oracle_status=%s\n", formatPingError(err))
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Ready")
	})

	mux.HandleFunc("POST /v1/scripts/{level}", func(w http.ResponseWriter, r *http.Request) {
		level, ok := parseLevel(w, r)
		if !ok {
			return
		}
		p, ok := readPayload(w, r, log)
		if !ok {
			return
		}
		if v := r.URL.Query().Get("applyDropStatements"); v != "" {
			p.SetApplyDropStatements(v == "true")
		}

		if r.URL.Query().Get("format") == "json" {
			dtos, err := d.Generator.Synthesize(p, level)
			if err != nil {
				writeError(w, err, log)
				return
			}
			writeJSON(w, http.StatusOK, dtos)
			return
		}

		script, err := d.Generator.Generate(p, level)
		if err != nil {
			writeError(w, err, log)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, script)
	})

	mux.HandleFunc("POST /v1/drop-check/{level}", func(w http.ResponseWriter, r *http.Request) {
		level, ok := parseLevel(w, r)
		if !ok {
			return
		}
		p, ok := readPayload(w, r, log)
		if !ok {
			return
		}
		hasDrops, err := d.Generator.ContainsDropStatements(p, level)
		if err != nil {
			writeError(w, err, log)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"containsDropStatements": hasDrops})
	})

	mux.HandleFunc("POST /v1/apply", func(w http.ResponseWriter, r *http.Request) {
		if d.Applier == nil {
			http.Error(w, "no database configured", http.StatusServiceUnavailable)
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "cannot read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		res, err := d.Applier.Apply(r.Context(), string(body))
		resp := map[string]any{"result": res}
		if err != nil {
			resp["error"] = err.Error()
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	if d.Config.EnablePprof {
		log.Info("Enabling pprof endpoints on /debug/pprof/")
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		log.Info("Pprof endpoints are disabled.")
	}

	return mux
}

// RunHTTPServer serves NewHandler until ctx is cancelled.
func RunHTTPServer(ctx context.Context, d Deps) error {
	log := d.Logger.Named("http-server")
	addr := fmt.Sprintf(":%d", d.Config.MetricsPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      NewHandler(d),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // apply bisa lama
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server ListenAndServe error", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server due to context cancellation...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server graceful shutdown failed", zap.Error(err))
		return err
	}
	log.Info("HTTP server gracefully stopped")
	return nil
}

func parseLevel(w http.ResponseWriter, r *http.Request) (delta.Level, bool) {
	switch level := delta.Level(r.PathValue("level")); level {
	case delta.LevelEntity, delta.LevelContainer, delta.LevelView:
		return level, true
	}
	http.Error(w, "unknown level, expected entity, container or view", http.StatusNotFound)
	return "", false
}

func readPayload(w http.ResponseWriter, r *http.Request, log *zap.Logger) (*delta.Payload, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "cannot read body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	p, err := delta.DecodePayload(body)
	if err != nil {
		log.Debug("Rejected malformed payload", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return p, true
}

// statusFor maps generation errors onto HTTP status codes.
func statusFor(err error) int {
	var resErr *dualityview.ResolutionError
	switch {
	case errors.Is(err, delta.ErrComparisonModelNotFound), errors.Is(err, delta.ErrViewLevelUnsupported):
		return http.StatusBadRequest
	case errors.As(err, &resErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error, log *zap.Logger) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Script generation failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// formatPingError provides a user-friendly status string.
func formatPingError(err error) string {
	if err == nil {
		return "OK"
	}
	return fmt.Sprintf("Error (%v)", err)
}
