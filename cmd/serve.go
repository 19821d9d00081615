package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/toolspec-cli/internal/decode"
	"github.com/sells-group/toolspec-cli/internal/model"
	"github.com/sells-group/toolspec-cli/internal/resolve"
	"github.com/sells-group/toolspec-cli/internal/sheet"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the job server: upload, start, poll, export",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := buildEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		srv := &server{env: e}

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/jobs", srv.createJob)
		r.Get("/jobs", srv.listJobs)
		r.Route("/jobs/{id}", func(r chi.Router) {
			r.Post("/start", srv.startJob)
			r.Post("/decode", srv.decodeJob)
			r.Get("/progress", srv.getProgress)
			r.Get("/records", srv.getRecords)
			r.Get("/export", srv.exportJob)
			r.Get("/ws", srv.streamProgress)
		})

		// Expired jobs are pruned in the background for the lifetime of
		// the server.
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					if n := e.Registry.Prune(now); n > 0 {
						zap.L().Info("pruned expired jobs", zap.Int("count", n))
					}
				}
			}
		}()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}
		srv.jobCtx = ctx

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			_ = httpSrv.Shutdown(sctx)
		}()

		zap.L().Info("server listening", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

type server struct {
	env     *env
	started sync.Map // job id -> struct{}{}
	jobCtx  context.Context
}

// createJob accepts a multipart xlsx upload (field "file"), registers the
// records as a new job and returns the id with a record preview.
func (s *server) createJob(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer func() { _ = file.Close() }()

	tmp, err := os.CreateTemp("", "toolspec-upload-*.xlsx")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "temp file")
		return
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, io.LimitReader(file, 32<<20)); err != nil {
		writeError(w, http.StatusInternalServerError, "store upload")
		return
	}

	records, err := sheet.ReadRecords(tmp.Name())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	j := s.env.Registry.Create(records)
	zap.L().Info("job created", zap.String("job", j.ID), zap.Int("records", len(records)))

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      j.ID,
		"total":   len(records),
		"records": records,
	})
}

// startJob kicks off resolution, fire-and-forget. Starting twice is a
// conflict.
func (s *server) startJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, ok := s.env.Registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if _, loaded := s.started.LoadOrStore(id, struct{}{}); loaded {
		writeError(w, http.StatusConflict, "job already started")
		return
	}

	go func() {
		err := s.env.Orchestrator.Run(s.jobCtx, j, func(snap model.ProgressSnapshot) {
			s.env.Hub.Publish(id, snap)
		})
		if err != nil {
			zap.L().Warn("job cancelled", zap.String("job", id), zap.Error(err))
			return
		}
		if s.env.Store != nil {
			if err := s.env.Store.SaveJob(s.jobCtx, j); err != nil {
				zap.L().Warn("saving job history", zap.String("job", id), zap.Error(err))
			}
		}
		snap := j.Progress.Snapshot()
		zap.L().Info("job complete",
			zap.String("job", id),
			zap.Int("success", snap.Success),
			zap.Int("fail", snap.Fail),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started", "id": id})
}

// decodeJob runs the part-number pattern decoder over the job's records.
// Explicit stage only; it is never chained automatically after page
// resolution.
func (s *server) decodeJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, ok := s.env.Registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if _, running := s.started.Load(id); running && !j.Progress.Snapshot().Finished {
		writeError(w, http.StatusConflict, "job is resolving")
		return
	}

	resolve.Decode(j, decode.Decode)
	writeJSON(w, http.StatusOK, map[string]string{"status": "decoded", "id": id})
}

func (s *server) getProgress(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.env.Registry.Snapshot(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) getRecords(w http.ResponseWriter, r *http.Request) {
	records, ok := s.env.Registry.Records(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *server) exportJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	records, ok := s.env.Registry.Records(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="toolspec-%s.xlsx"`, id))
	if err := sheet.WriteRecordsTo(w, records); err != nil {
		zap.L().Warn("export failed", zap.String("job", id), zap.Error(err))
	}
}

// listJobs returns job history from the store, when history is enabled.
func (s *server) listJobs(w http.ResponseWriter, r *http.Request) {
	if s.env.Store == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	jobs, err := s.env.Store.ListJobs(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// streamProgress pushes progress snapshots over a websocket until the job
// finishes or the client goes away.
func (s *server) streamProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.env.Registry.Get(id); !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	ch, cancel := s.env.Hub.Subscribe(id)
	defer cancel()

	// Current state first, so late subscribers see where the job stands.
	if snap, ok := s.env.Registry.Snapshot(id); ok {
		if err := conn.WriteJSON(snap); err != nil {
			return
		}
		if snap.Finished {
			return
		}
	}

	for snap := range ch {
		if err := conn.WriteJSON(snap); err != nil {
			return
		}
		if snap.Finished {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
