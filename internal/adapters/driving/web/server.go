// Package web serves a local HTML preview of jobs. It starts a
// loopback HTTP server with a job index, a rendered view of each
// job's merged markdown, and raw access to workspace files so figure
// links in the rendered page resolve.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driving"
)

// Renderer converts merged markdown into a standalone HTML page.
// The HTML exporter satisfies this.
type Renderer interface {
	Render(title, markdown string) ([]byte, error)
}

// Server is the preview server. It binds to loopback only; this is a
// local viewing surface, not a deployment target.
type Server struct {
	jobs     driving.JobService
	renderer Renderer

	mu       sync.Mutex
	port     int
	server   *http.Server
	listener net.Listener
}

// NewServer creates a preview server. Port 0 picks a free port at
// Start.
func NewServer(jobs driving.JobService, renderer Renderer, port int) (*Server, error) {
	if jobs == nil {
		return nil, fmt.Errorf("job service is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	return &Server{jobs: jobs, renderer: renderer, port: port}, nil
}

// Start begins listening and serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = listener
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	s.server = &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "preview server: %v\n", err)
		}
	}()

	return nil
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the bound port, valid after Start.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// URL returns the server's base URL, valid after Start.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.Port())
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/jobs/{id}", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/jobs/"+chi.URLParam(req, "id")+"/", http.StatusMovedPermanently)
	})
	r.Get("/jobs/{id}/", s.handlePreview)
	r.Get("/jobs/{id}/*", s.handleAsset)
	r.Get("/api/jobs", s.handleAPIJobs)
	r.Get("/api/jobs/{id}/progress", s.handleAPIProgress)

	return r
}

// handleIndex lists all jobs, newest first.
func (s *Server) handleIndex(w http.ResponseWriter, req *http.Request) {
	jobs, err := s.jobs.List(req.Context())
	if err != nil {
		http.Error(w, "listing jobs failed", http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	b.WriteString("# ジョブ一覧\n\n")
	if len(jobs) == 0 {
		b.WriteString("まだジョブがありません。\n")
	}
	for _, job := range jobs {
		name := filepath.Base(job.InputPath)
		if job.Label != "" {
			name = fmt.Sprintf("%s (%s)", name, job.Label)
		}
		b.WriteString(fmt.Sprintf("- [%s](/jobs/%s/) `%s` %s\n",
			name, job.ID, job.Status, job.CreatedAt.Local().Format("2006-01-02 15:04")))
	}

	s.writePage(w, "OCR jobs", b.String())
}

// handlePreview renders the merged markdown of a job. Running jobs get
// a self-refreshing progress page instead.
func (s *Server) handlePreview(w http.ResponseWriter, req *http.Request) {
	job, ok := s.findJob(w, req)
	if !ok {
		return
	}

	if !job.Status.Terminal() {
		progress, err := s.jobs.Status(req.Context(), job.ID)
		if err != nil {
			http.Error(w, "reading progress failed", http.StatusInternalServerError)
			return
		}
		s.writeProgressPage(w, job, progress)
		return
	}

	mdPath, ok := job.Outputs[domain.FormatMarkdown]
	if !ok {
		s.writePage(w, job.ID, fmt.Sprintf("ジョブは %s で終了しました。markdown 出力はありません。", job.Status))
		return
	}
	content, err := os.ReadFile(mdPath)
	if err != nil {
		http.Error(w, "reading output failed", http.StatusInternalServerError)
		return
	}

	title := strings.TrimSuffix(filepath.Base(job.InputPath), filepath.Ext(job.InputPath))
	page, err := s.renderer.Render(title, string(content))
	if err != nil {
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleAsset serves a file out of the job's workspace, so relative
// figure links in the rendered markdown resolve.
func (s *Server) handleAsset(w http.ResponseWriter, req *http.Request) {
	job, ok := s.findJob(w, req)
	if !ok {
		return
	}
	if job.OutputDir == "" {
		http.NotFound(w, req)
		return
	}

	rel := chi.URLParam(req, "*")
	path, err := securePath(job.OutputDir, rel)
	if err != nil {
		http.NotFound(w, req)
		return
	}
	http.ServeFile(w, req, path)
}

func (s *Server) handleAPIJobs(w http.ResponseWriter, req *http.Request) {
	jobs, err := s.jobs.List(req.Context())
	if err != nil {
		http.Error(w, `{"error":"listing jobs failed"}`, http.StatusInternalServerError)
		return
	}

	entries := make([]jobEntry, 0, len(jobs))
	for _, job := range jobs {
		entries = append(entries, jobEntry{
			ID:        job.ID,
			Input:     job.InputPath,
			Label:     job.Label,
			Status:    job.Status,
			OutputDir: job.OutputDir,
			CreatedAt: job.CreatedAt,
		})
	}
	writeJSON(w, entries)
}

func (s *Server) handleAPIProgress(w http.ResponseWriter, req *http.Request) {
	progress, err := s.jobs.Status(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, `{"error":"progress unavailable"}`, status)
		return
	}

	writeJSON(w, progressEntry{
		JobID:       progress.JobID,
		Status:      progress.Status,
		PageCurrent: progress.PageCurrent,
		PageTotal:   progress.PageTotal,
		ElapsedSec:  int(progress.Elapsed.Seconds()),
		ETASec:      int(progress.ETA.Seconds()),
		LogTail:     progress.LogTail,
		Error:       progress.Error,
	})
}

// jobEntry is the API shape of one job.
type jobEntry struct {
	ID        string           `json:"id"`
	Input     string           `json:"input"`
	Label     string           `json:"label,omitempty"`
	Status    domain.JobStatus `json:"status"`
	OutputDir string           `json:"output_dir,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// progressEntry is the API shape of a progress snapshot.
type progressEntry struct {
	JobID       string           `json:"job_id"`
	Status      domain.JobStatus `json:"status"`
	PageCurrent int              `json:"page_current"`
	PageTotal   int              `json:"page_total"`
	ElapsedSec  int              `json:"elapsed_seconds"`
	ETASec      int              `json:"eta_seconds"`
	LogTail     []string         `json:"log_tail,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// findJob resolves the {id} route parameter, writing the error
// response itself when the job does not exist.
func (s *Server) findJob(w http.ResponseWriter, req *http.Request) (*domain.Job, bool) {
	id := chi.URLParam(req, "id")
	jobs, err := s.jobs.List(req.Context())
	if err != nil {
		http.Error(w, "listing jobs failed", http.StatusInternalServerError)
		return nil, false
	}
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], true
		}
	}
	http.NotFound(w, req)
	return nil, false
}

// writePage renders a markdown body through the renderer and writes it.
func (s *Server) writePage(w http.ResponseWriter, title, markdown string) {
	page, err := s.renderer.Render(title, markdown)
	if err != nil {
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// writeProgressPage shows a running job's progress and refreshes
// itself until the job finishes.
func (s *Server) writeProgressPage(w http.ResponseWriter, job *domain.Job, progress *domain.Progress) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", filepath.Base(job.InputPath)))
	b.WriteString(fmt.Sprintf("状態: `%s`\n\n", progress.Status))
	if progress.PageTotal > 0 {
		b.WriteString(fmt.Sprintf("ページ: %d / %d\n\n", progress.PageCurrent, progress.PageTotal))
	}
	if progress.ETA > 0 {
		b.WriteString(fmt.Sprintf("残り時間の目安: %s\n\n", progress.ETA.Round(time.Second)))
	}
	if len(progress.LogTail) > 0 {
		b.WriteString("```\n")
		for _, line := range progress.LogTail {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}

	page, err := s.renderer.Render(job.ID, b.String())
	if err != nil {
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}
	// Reload every few seconds while the job runs.
	refreshed := strings.Replace(string(page), "<head>",
		`<head>`+"\n"+`<meta http-equiv="refresh" content="3">`, 1)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, refreshed)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
	}
}

// securePath joins rel onto root and rejects escapes.
func securePath(root, rel string) (string, error) {
	cleaned := filepath.Clean("/" + rel)
	path := filepath.Join(root, cleaned)
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes workspace")
	}
	return path, nil
}
