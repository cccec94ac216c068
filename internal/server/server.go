// Package server serves the club's web UI: the leaderboard, per-comedian
// pages and the performance history, plus the human rating form that feeds
// the learning loop.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/dmorandini/comedyclub/internal/feedback"
	"github.com/dmorandini/comedyclub/internal/persona"
	"github.com/dmorandini/comedyclub/internal/rating"
	"github.com/dmorandini/comedyclub/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for the club UI.
type Server struct {
	store   feedback.Store
	ratings *rating.Book
	pages   map[string]*template.Template
	mux     *http.ServeMux
}

// New creates a new Server.
func New(store feedback.Store, ratings *rating.Book) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"score":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the
	// clone, so each page gets its own {{define "content"}} and
	// {{define "title"}}.
	pageNames := []string{"index.html", "comedian.html", "performances.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{store: store, ratings: ratings, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/comedian/", s.handleComedian)
	s.mux.HandleFunc("/performances", s.handlePerformances)
	s.mux.HandleFunc("/rate", s.handleRate)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	records := s.store.Records()
	s.render(w, "index.html", map[string]any{
		"Leaderboard": report.Leaderboard(feedback.TopPerformers(records, -1)),
		"Lineup":      persona.All(),
		"Total":       len(records),
	})
}

func (s *Server) handleComedian(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/comedian/")
	p, ok := persona.Lookup(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	records := s.store.Records()
	var own []feedback.Record
	for _, rec := range records {
		if rec.Comedian == p.Name {
			own = append(own, rec)
		}
	}

	data := map[string]any{
		"Persona":  p,
		"Records":  reversed(own),
		"Verdicts": rating.Verdicts(),
	}
	if stats, ok := feedback.ComedianStats(records, p.Name); ok {
		data["Report"] = report.ComedianReport(stats)
	}
	if s.ratings != nil {
		if pattern, ok := s.ratings.Pattern(p.Name); ok {
			data["Pattern"] = pattern
		}
	}

	s.render(w, "comedian.html", data)
}

func (s *Server) handlePerformances(w http.ResponseWriter, r *http.Request) {
	s.render(w, "performances.html", map[string]any{
		"Records":  reversed(s.store.Records()),
		"Verdicts": rating.Verdicts(),
	})
}

// handleRate records a human verdict on a performed joke and redirects back
// to the referring page.
func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/performances", http.StatusFound)
		return
	}

	if s.ratings != nil {
		_, err := s.ratings.Add(
			strings.TrimSpace(r.FormValue("joke")),
			strings.TrimSpace(r.FormValue("comedian")),
			strings.TrimSpace(r.FormValue("topic")),
			r.FormValue("verdict"),
			strings.TrimSpace(r.FormValue("comment")),
		)
		if err != nil {
			log.Printf("Rejected rating: %v", err)
		}
	}

	http.Redirect(w, r, localTarget(r.Referer()), http.StatusFound)
}

// localTarget reduces the Referer to an on-site path. Anything that does not
// resolve to a plain local path falls back to the performance history.
func localTarget(referer string) string {
	ref, err := url.Parse(referer)
	if err != nil {
		return "/performances"
	}

	path := ref.EscapedPath()
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return "/performances"
	}
	if ref.RawQuery != "" {
		path += "?" + ref.RawQuery
	}
	return path
}

func reversed(records []feedback.Record) []feedback.Record {
	out := make([]feedback.Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(store feedback.Store, ratings *rating.Book, port int) error {
	srv, err := New(store, ratings)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
