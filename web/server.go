// ABOUTME: Web UI server with embedded templates
// ABOUTME: Provides a local dashboard, contact browser and follow-up list at localhost:8080
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/viz"
)

//go:embed templates/*
var templatesFS embed.FS

// pageSize is the contact list page size.
const pageSize = 25

type Server struct {
	store     *store.Store
	templates *template.Template
	logger    *log.Logger
}

func NewServer(s *store.Store, logger *log.Logger) (*Server, error) {
	loc := s.Location()

	// Helper functions for templates
	funcMap := template.FuncMap{
		"date": func(ms int64) string {
			if ms == 0 {
				return "-"
			}
			return models.FromMillis(ms, loc).Format("Mon Jan 2, 2006")
		},
		"datetime": func(ms int64) string {
			if ms == 0 {
				return "-"
			}
			return models.FromMillis(ms, loc).Format("2006-01-02 15:04")
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		store:     s,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Handler returns the routes; Start serves them.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /contacts", s.handleContacts)
	mux.HandleFunc("GET /contacts/{id}", s.handleContactDetail)
	mux.HandleFunc("GET /followups", s.handleFollowups)
	mux.HandleFunc("POST /followups/complete/{id}", s.handleFollowupComplete)
	mux.HandleFunc("GET /graph.dot", s.handleGraph)
	return mux
}

// Start listens on port until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Starting web server", "url", "http://"+srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats := viz.GenerateDashboardStats(s.store.Snapshot(r.Context()), s.store.Now())

	data := map[string]interface{}{
		"Stats": stats,
		"Title": "Dashboard",
		"Page":  "dashboard",
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	err := s.templates.ExecuteTemplate(w, name, data)
	if err != nil {
		s.logger.Error("template error", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	order, err := models.ParseSortOrder(q.Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	spec := models.QuerySpec{
		Page:            page,
		PageSize:        pageSize,
		SearchTerm:      strings.TrimSpace(q.Get("q")),
		LeadTypeFilter:  q.Get("lead_type"),
		DealStageFilter: q.Get("stage"),
		SortOrder:       order,
	}
	result := s.store.Query(r.Context(), spec)
	pages := (result.TotalCount + pageSize - 1) / pageSize

	data := map[string]interface{}{
		"Contacts": result.Items,
		"Total":    result.TotalCount,
		"Query":    spec,
		"Pages":    max(pages, 1),
		"Settings": s.store.Settings(r.Context()),
		"Title":    "Contacts",
		"Page":     "contacts",
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleContactDetail(w http.ResponseWriter, r *http.Request) {
	contact, err := s.store.Contact(r.Context(), r.PathValue("id"))
	if errors.Is(err, models.ErrNotFound) {
		http.Error(w, "Contact not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	followUp, hasFollowUp := s.store.OpenFollowUp(r.Context(), contact.ID)

	data := map[string]interface{}{
		"Contact":     contact,
		"FollowUp":    followUp,
		"HasFollowUp": hasFollowUp,
		"Title":       contact.Name,
		"Page":        "contact",
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleFollowups(w http.ResponseWriter, r *http.Request) {
	showAll := r.URL.Query().Get("all") == "1"

	var views []models.FollowUpView
	for _, v := range s.store.FollowUpViews(r.Context()) {
		if !showAll && v.Status == models.FollowUpCompleted {
			continue
		}
		views = append(views, v)
	}

	data := map[string]interface{}{
		"Followups": views,
		"ShowAll":   showAll,
		"Title":     "Follow-ups",
		"Page":      "followups",
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleFollowupComplete(w http.ResponseWriter, r *http.Request) {
	contactID := r.PathValue("id")
	if _, open := s.store.OpenFollowUp(r.Context(), contactID); !open {
		http.Error(w, "No open follow-up", http.StatusNotFound)
		return
	}

	if _, err := s.store.CompleteFollowUpAction(r.Context(), contactID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/followups", http.StatusSeeOther)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := viz.GeneratePipelineGraph(r.Context(), s.store.Snapshot(r.Context()), viz.GraphOptions{
		IncludeContacts: r.URL.Query().Get("contacts") == "1",
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	if _, err := w.Write([]byte(graph.DOT)); err != nil {
		s.logger.Warn("error writing response", "err", err)
	}
}
