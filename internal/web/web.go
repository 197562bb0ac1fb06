package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"sessionics/internal/config"
	"sessionics/internal/export"
	appLog "sessionics/internal/log"
	"sessionics/internal/model"
)

// Server exposes the calendars of the last export over HTTP so a calendar
// client can subscribe to them instead of importing files.
type Server struct {
	cfg    *config.Config
	writer *export.Writer
	mux    *http.ServeMux

	mu        sync.RWMutex
	jobs      map[string]export.Job
	order     []string
	updatedAt time.Time

	// Rendered bodies are cached until the next Publish.
	renderMu sync.Mutex
	rendered map[string][]byte
}

// NewServer constructs a new Server. Jobs are rendered with w.
func NewServer(cfg *config.Config, w *export.Writer) *Server {
	s := &Server{
		cfg:      cfg,
		writer:   w,
		mux:      http.NewServeMux(),
		jobs:     make(map[string]export.Job),
		rendered: make(map[string][]byte),
	}
	s.registerRoutes()
	return s
}

// Publish replaces the served calendars.
func (s *Server) Publish(jobs []export.Job) {
	s.mu.Lock()
	s.jobs = make(map[string]export.Job, len(jobs))
	s.order = s.order[:0]
	for _, j := range jobs {
		name := j.Filename()
		if _, dup := s.jobs[name]; !dup {
			s.order = append(s.order, name)
		}
		s.jobs[name] = j
	}
	s.updatedAt = time.Now()
	s.mu.Unlock()

	s.renderMu.Lock()
	s.rendered = make(map[string][]byte)
	s.renderMu.Unlock()
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled")
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// A blank username or password disables auth.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
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
			w.Header().Set("WWW-Authenticate", `Basic realm="sessionics", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves s on addr until ctx is cancelled, then shuts down
// gracefully.
func StartServer(ctx context.Context, addr string, s *Server) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/calendars", s.handleCalendars)
	s.mux.HandleFunc("GET /api/calendars/{file}/sessions", s.handleSessions)
	s.mux.HandleFunc("GET /calendars/{file}", s.handleFile)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// calendarDTO describes one published file.
type calendarDTO struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Format   string `json:"format"`
	Sessions int    `json:"sessions"`
	URL      string `json:"url"`
}

type calendarsResponse struct {
	Calendars []calendarDTO `json:"calendars"`
	UpdatedAt time.Time     `json:"updated_at"`
	Timezone  string        `json:"timezone"`
}

// sessionDTO is a JSON-friendly view of model.Session.
type sessionDTO struct {
	Code            string    `json:"code"`
	Title           string    `json:"title"`
	SessionType     string    `json:"session_type"`
	Venue           string    `json:"venue,omitempty"`
	Room            string    `json:"room,omitempty"`
	Capacity        int       `json:"capacity"`
	Speakers        []string  `json:"speakers"`
	Topics          []string  `json:"topics"`
	AreasOfInterest []string  `json:"areas_of_interest"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
}

func toSessionDTO(m model.Session) sessionDTO {
	speakers := make([]string, 0, len(m.Speakers))
	for _, sp := range m.Speakers {
		speakers = append(speakers, sp.Name)
	}
	return sessionDTO{
		Code:            m.Code,
		Title:           m.Title,
		SessionType:     m.SessionType,
		Venue:           m.Venue,
		Room:            m.Room,
		Capacity:        m.Capacity,
		Speakers:        speakers,
		Topics:          nonNil(m.Topics),
		AreasOfInterest: nonNil(m.AreasOfInterest),
		Start:           m.Start,
		End:             m.End,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// handleCalendars lists the published files in plan order.
func (s *Server) handleCalendars(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := calendarsResponse{
		Calendars: make([]calendarDTO, 0, len(s.order)),
		UpdatedAt: s.updatedAt,
	}
	for _, name := range s.order {
		j := s.jobs[name]
		resp.Calendars = append(resp.Calendars, calendarDTO{
			Name:     j.Name,
			File:     name,
			Format:   j.Format.String(),
			Sessions: len(j.Sessions),
			URL:      "/calendars/" + name,
		})
	}
	s.mu.RUnlock()

	if s.cfg != nil {
		resp.Timezone = s.cfg.Timezone
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSessions returns the sessions behind one published file.
//
// GET /api/calendars/all-sessions.ics/sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(r.PathValue("file"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown calendar")
		return
	}
	out := make([]sessionDTO, 0, len(job.Sessions))
	for _, m := range job.Sessions {
		out = append(out, toSessionDTO(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleFile serves a rendered calendar or CSV.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	job, ok := s.lookup(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	body, err := s.render(name, job)
	if err != nil {
		appLog.Error("render calendar failed", err, "file", name)
		writeError(w, http.StatusInternalServerError, "failed to render calendar")
		return
	}

	switch job.Format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) lookup(name string) (export.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[name]
	return j, ok
}

func (s *Server) render(name string, job export.Job) ([]byte, error) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	if body, ok := s.rendered[name]; ok {
		return body, nil
	}
	body, err := s.writer.Render(job)
	if err != nil {
		return nil, err
	}
	s.rendered[name] = body
	return body, nil
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
