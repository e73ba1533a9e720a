// Package preview serves the rendered pages over HTTP on the local machine,
// so the save controls can be exercised in a browser. Every click is posted
// to one delegated endpoint and routed by its data-action value.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/html"

	"github.com/careercompass/compass/internal/button"
	"github.com/careercompass/compass/internal/finder"
	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/render"
)

// Finder runs the three searches.
type Finder interface {
	FindCertificates(ctx context.Context, form finder.CertificateForm) (finder.Results, error)
	SuggestCourses(ctx context.Context, form finder.CourseForm) (finder.Results, error)
	FindCompanies(ctx context.Context, form finder.JobForm) (finder.Results, error)
}

// SavedItems is the read side of the saved-item cache.
type SavedItems interface {
	Items(category model.Category) []model.SavedItem
}

// Toaster is drained after every request so its toasts reach the page.
type Toaster interface {
	Drain() []model.Toast
}

// Deps wires a Server.
type Deps struct {
	Finder   Finder
	Saved    SavedItems
	Registry *button.Registry
	Toasts   Toaster
	Logger   *slog.Logger
}

// Server is the preview HTTP handler.
type Server struct {
	router   chi.Router
	finder   Finder
	saved    SavedItems
	registry *button.Registry
	dispatch *render.Dispatcher
	toasts   Toaster
	logger   *slog.Logger

	mu     sync.Mutex
	scopes map[string][]string // fragment -> control ids it rendered
}

var _ http.Handler = (*Server)(nil)

// New builds the router.
func New(d Deps) *Server {
	s := &Server{
		finder:   d.Finder,
		saved:    d.Saved,
		registry: d.Registry,
		dispatch: render.NewButtonDispatcher(d.Registry),
		toasts:   d.Toasts,
		logger:   d.Logger,
		scopes:   make(map[string][]string),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/saved/{category}", s.handleSaved)
	r.Post("/find/certificates", s.handleFindCertificates)
	r.Post("/find/courses", s.handleSuggestCourses)
	r.Post("/find/companies", s.handleFindCompanies)
	r.Post("/actions", s.handleAction)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			s.logger.Debug("write error", "error", err)
		}
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("preview server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start).String(),
		)
	})
}

// handleIndex renders the dashboard: one saved-items section per category.
// Rendering a full page starts a new set of controls.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.registry.Reset()
	clear(s.scopes)
	s.mu.Unlock()

	body := render.FinderForms()
	for _, c := range model.Categories() {
		body = append(body, s.savedSection(c))
	}
	body = append(body, s.drainToasts()...)
	s.write(w, http.StatusOK, render.Page("CareerCompass", body...))
}

func (s *Server) handleSaved(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.write(w, http.StatusOK, s.savedSection(category))
}

func (s *Server) savedSection(category model.Category) *html.Node {
	items := s.saved.Items(category)
	rows := make([]*html.Node, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		b := s.registry.Add(it.Category, it.Payload)
		rows = append(rows, render.SavedItemRow(it, render.ControlOf(b)))
		ids = append(ids, b.Control())
	}
	s.replace("saved/"+string(category), ids)
	return render.SavedItems(category, rows)
}

func (s *Server) handleFindCertificates(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	res, err := s.finder.FindCertificates(r.Context(), finder.CertificateForm{
		Interests:        listValue(r, "interests"),
		Goals:            listValue(r, "goals"),
		CoursePreference: r.PostFormValue("course_preference"),
	})
	s.writeResults(w, model.CategoryCertificate, res, err)
}

func (s *Server) handleSuggestCourses(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	res, err := s.finder.SuggestCourses(r.Context(), finder.CourseForm{
		LearningPreferences:   listValue(r, "learning_preferences"),
		EducationalBackground: listValue(r, "educational_background"),
		CareerAspirations:     listValue(r, "career_aspirations"),
	})
	s.writeResults(w, model.CategoryCourse, res, err)
}

func (s *Server) handleFindCompanies(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	res, err := s.finder.FindCompanies(r.Context(), finder.JobForm{
		JobTitle: r.PostFormValue("job_title"),
		Location: r.PostFormValue("location"),
	})
	s.writeResults(w, model.CategoryJob, res, err)
}

func (s *Server) writeResults(w http.ResponseWriter, category model.Category, res finder.Results, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		s.write(w, http.StatusUnprocessableEntity, render.ValidationErrors(ve))
		return
	case err != nil:
		// The finder has already queued the error toast.
		s.write(w, http.StatusBadGateway, s.drainToasts()...)
		return
	}

	items := make([]render.Item, 0, len(res.Entities))
	ids := make([]string, 0, len(res.Entities))
	for _, e := range res.Entities {
		b := s.registry.Add(e.Category(), e.Payload())
		items = append(items, render.Item{Entity: e, Control: render.ControlOf(b)})
		ids = append(ids, b.Control())
	}
	s.replace("results/"+string(category), ids)
	nodes := append([]*html.Node{render.Results(category, items, res.ParseErr)}, s.drainToasts()...)
	s.write(w, http.StatusOK, nodes...)
}

// handleAction is the single delegated click endpoint. It answers with the
// re-rendered control followed by any toasts the click raised.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	ev := render.Event{
		Action:  r.PostFormValue("data-action"),
		Control: r.PostFormValue("data-control"),
		Data:    map[string]string{},
	}
	for k := range r.PostForm {
		if k != "data-action" && k != "data-control" {
			ev.Data[k] = r.PostFormValue(k)
		}
	}

	// Held across the click: a page reload may reset the registry meanwhile.
	b, registered := s.registry.Get(ev.Control)

	err := s.dispatch.Dispatch(r.Context(), ev)
	switch {
	case errors.Is(err, render.ErrUnknownAction):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, render.ErrUnknownControl):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, button.ErrDisabled):
		w.Header().Set("Retry-After", "1")
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case !registered:
		http.Error(w, render.ErrUnknownControl.Error(), http.StatusNotFound)
		return
	case err != nil:
		// The button has reverted and queued its error toast; the fragment
		// below carries both.
		s.logger.Debug("action failed", "action", ev.Action, "control", ev.Control, "error", err)
	}

	nodes := append([]*html.Node{render.SaveButton(render.ControlOf(b))}, s.drainToasts()...)
	s.write(w, http.StatusOK, nodes...)
}

// replace records the controls a fragment now shows and drops the ones it
// showed before, so repeated searches do not grow the registry.
func (s *Server) replace(scope string, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.scopes[scope]
	s.scopes[scope] = ids
	s.registry.Remove(old...)
}

func (s *Server) drainToasts() []*html.Node {
	if s.toasts == nil {
		return nil
	}
	var out []*html.Node
	for _, t := range s.toasts.Drain() {
		out = append(out, render.Toast(t))
	}
	return out
}

func (s *Server) write(w http.ResponseWriter, status int, nodes ...*html.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := render.Render(w, nodes...); err != nil {
		s.logger.Warn("render failed", "error", err)
	}
}

// listValue returns the values of key, splitting comma separated entries.
// Repeated fields and one comma separated field are read the same way.
func listValue(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.PostForm[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
