package preview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/careercompass/compass/internal/button"
	"github.com/careercompass/compass/internal/cache"
	"github.com/careercompass/compass/internal/finder"
	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/notifier"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type noLister struct{}

func (noLister) GetSavedItems(context.Context, model.Category) ([]model.SavedItem, error) {
	return nil, nil
}

type fakeSaver struct {
	id      string
	saveErr error
	deleted []string

	// When set, SaveItem signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeSaver) SaveItem(context.Context, model.Category, model.Payload) (string, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.id, f.saveErr
}

func (f *fakeSaver) DeleteSavedItem(_ context.Context, _ model.Category, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeFinder struct {
	results finder.Results
	err     error
	forms   []any
}

func (f *fakeFinder) FindCertificates(_ context.Context, form finder.CertificateForm) (finder.Results, error) {
	f.forms = append(f.forms, form)
	if err := finder.Validate(form); err != nil {
		return finder.Results{}, err
	}
	return f.results, f.err
}

func (f *fakeFinder) SuggestCourses(_ context.Context, form finder.CourseForm) (finder.Results, error) {
	f.forms = append(f.forms, form)
	return f.results, f.err
}

func (f *fakeFinder) FindCompanies(_ context.Context, form finder.JobForm) (finder.Results, error) {
	f.forms = append(f.forms, form)
	return f.results, f.err
}

type fixture struct {
	srv    *httptest.Server
	cache  *cache.Cache
	reg    *button.Registry
	saver  *fakeSaver
	finder *fakeFinder
	toasts *notifier.QueueNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cache:  cache.New(noLister{}, discardLogger()),
		saver:  &fakeSaver{id: "11"},
		finder: &fakeFinder{},
		toasts: notifier.NewQueueNotifier(0),
	}
	f.reg = button.NewRegistry(button.Deps{Saver: f.saver, Ledger: f.cache, Notifier: f.toasts, Logger: discardLogger()})
	f.srv = httptest.NewServer(New(Deps{
		Finder:   f.finder,
		Saved:    f.cache,
		Registry: f.reg,
		Toasts:   f.toasts,
		Logger:   discardLogger(),
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := http.PostForm(f.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func (f *fixture) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestIndex_RendersSavedSections(t *testing.T) {
	f := newFixture(t)
	f.cache.RecordSave(model.CategoryCourse, "5", model.Payload{"title": "Go <Basics>", "provider": "Udemy"})

	status, body := f.get(t, "/")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "Go &lt;Basics&gt;") {
		t.Errorf("course title not escaped or missing:\n%s", body)
	}
	if strings.Count(body, `class="saved-items"`) != 3 {
		t.Errorf("want one section per category:\n%s", body)
	}
	if !strings.Contains(body, `data-action="unsave"`) {
		t.Error("saved course should render an unsave control")
	}
	if len(f.reg.All()) != 1 {
		t.Errorf("registry has %d buttons, want 1", len(f.reg.All()))
	}
}

func TestSaved_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	if status, _ := f.get(t, "/saved/podcast"); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestFindCertificates_ValidationError(t *testing.T) {
	f := newFixture(t)
	status, body := f.post(t, "/find/certificates", url.Values{"goals": {"promotion"}})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", status)
	}
	if !strings.Contains(body, `data-field="interests"`) {
		t.Errorf("missing interests error:\n%s", body)
	}
}

func TestFindThenSave(t *testing.T) {
	f := newFixture(t)
	f.finder.results = finder.Results{
		Category: model.CategoryCertificate,
		Entities: []model.Entity{model.Certificate{Name: "CKA", Provider: "CNCF"}},
	}

	status, body := f.post(t, "/find/certificates", url.Values{
		"interests":         {"cloud"},
		"goals":             {"promotion"},
		"course_preference": {"online"},
	})
	if status != http.StatusOK {
		t.Fatalf("find status = %d: %s", status, body)
	}
	if !strings.Contains(body, `class="result-card"`) || !strings.Contains(body, `data-action="save"`) {
		t.Fatalf("results missing card or save control:\n%s", body)
	}
	control := f.reg.All()[0].Control()

	status, body = f.post(t, "/actions", url.Values{"data-action": {"save"}, "data-control": {control}})
	if status != http.StatusOK {
		t.Fatalf("action status = %d: %s", status, body)
	}
	if !strings.Contains(body, `data-action="unsave"`) || !strings.Contains(body, `data-saved-id="11"`) {
		t.Errorf("control not re-rendered as saved:\n%s", body)
	}
	if !strings.Contains(body, "Certificate saved successfully!") {
		t.Errorf("toast fragment missing:\n%s", body)
	}

	status, body = f.post(t, "/actions", url.Values{"data-action": {"unsave"}, "data-control": {control}})
	if status != http.StatusOK || !strings.Contains(body, `data-action="save"`) {
		t.Errorf("unsave status = %d:\n%s", status, body)
	}
	if len(f.saver.deleted) != 1 || f.saver.deleted[0] != "11" {
		t.Errorf("deleted = %v", f.saver.deleted)
	}
}

func TestFind_ParseErrorBlock(t *testing.T) {
	f := newFixture(t)
	f.finder.results = finder.Results{Category: model.CategoryJob, ParseErr: errors.New("no json")}

	status, body := f.post(t, "/find/companies", url.Values{"job_title": {"SRE"}})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, `class="error-message"`) {
		t.Errorf("want parse error block:\n%s", body)
	}
}

func TestFind_SearchFailureReturnsToast(t *testing.T) {
	f := newFixture(t)
	f.finder.err = errors.New("upstream down")
	_ = f.toasts.Notify(model.Toast{Level: model.ToastError, Message: "Error suggesting courses: upstream down"})

	status, body := f.post(t, "/find/courses", url.Values{"learning_preferences": {"video"}})
	if status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", status)
	}
	if !strings.Contains(body, "notification-error") || !strings.Contains(body, "upstream down") {
		t.Errorf("want error toast:\n%s", body)
	}
}

func TestAction_Errors(t *testing.T) {
	f := newFixture(t)
	b := f.reg.Add(model.CategoryCourse, model.Payload{"title": "Go", "provider": "Udemy"})

	tests := []struct {
		name   string
		form   url.Values
		status int
	}{
		{"unknown action", url.Values{"data-action": {"share"}, "data-control": {b.Control()}}, http.StatusBadRequest},
		{"unknown control", url.Values{"data-action": {"save"}, "data-control": {"course-999"}}, http.StatusNotFound},
		{"missing control", url.Values{"data-action": {"save"}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, body := f.post(t, "/actions", tt.form); status != tt.status {
				t.Errorf("status = %d, want %d: %s", status, tt.status, body)
			}
		})
	}
}

func TestAction_FailedSaveRevertsWithToast(t *testing.T) {
	f := newFixture(t)
	f.saver.saveErr = &model.ServerRejection{Path: "/api/save-item", Message: "Item already saved"}
	b := f.reg.Add(model.CategoryCourse, model.Payload{"title": "Go", "provider": "Udemy"})

	status, body := f.post(t, "/actions", url.Values{"data-action": {"save"}, "data-control": {b.Control()}})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, `data-action="save"`) || strings.Contains(body, "disabled") {
		t.Errorf("control should be re-enabled as Save:\n%s", body)
	}
	if !strings.Contains(body, "Item already saved") {
		t.Errorf("server message toast missing:\n%s", body)
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	if status, body := f.get(t, "/healthz"); status != http.StatusOK || body != "ok" {
		t.Errorf("healthz = %d %q", status, body)
	}
}

func TestAction_PageReloadWhileSaving(t *testing.T) {
	f := newFixture(t)
	f.saver.started = make(chan struct{})
	f.saver.release = make(chan struct{})
	b := f.reg.Add(model.CategoryCertificate, model.Payload{"name": "CKA", "provider": "CNCF"})

	type result struct {
		status int
		body   string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := http.PostForm(f.srv.URL+"/actions", url.Values{"data-action": {"save"}, "data-control": {b.Control()}})
		if err != nil {
			done <- result{err: err}
			return
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		done <- result{status: resp.StatusCode, body: string(body)}
	}()

	<-f.saver.started
	if status, _ := f.get(t, "/"); status != http.StatusOK {
		t.Fatalf("reload status = %d", status)
	}
	close(f.saver.release)

	res := <-done
	if res.err != nil {
		t.Fatalf("POST /actions: %v", res.err)
	}
	if res.status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", res.status, res.body)
	}
	if !strings.Contains(res.body, `data-action="unsave"`) || !strings.Contains(res.body, "Certificate saved successfully!") {
		t.Errorf("response missing saved control or toast:\n%s", res.body)
	}
	if n := f.toasts.Len(); n != 0 {
		t.Errorf("%d toasts left queued", n)
	}
}

func TestFind_RepeatedSearchesReplaceControls(t *testing.T) {
	f := newFixture(t)
	f.finder.results = finder.Results{
		Category: model.CategoryJob,
		Entities: []model.Entity{
			model.Company{Name: "Acme", Industry: "Robotics"},
			model.Company{Name: "Globex", Industry: "Energy"},
		},
	}
	form := url.Values{"job_title": {"engineer"}}

	f.post(t, "/find/companies", form)
	first := f.reg.All()[0].Control()
	for range 3 {
		if status, body := f.post(t, "/find/companies", form); status != http.StatusOK {
			t.Fatalf("status = %d: %s", status, body)
		}
	}
	if n := f.reg.Len(); n != 2 {
		t.Errorf("registry has %d buttons, want 2", n)
	}
	if status, _ := f.post(t, "/actions", url.Values{"data-action": {"save"}, "data-control": {first}}); status != http.StatusNotFound {
		t.Errorf("stale control status = %d, want 404", status)
	}
}

func TestIndex_HasFormsAndListener(t *testing.T) {
	f := newFixture(t)
	_, body := f.get(t, "/")
	for _, want := range []string{
		`data-find="/find/certificates"`,
		`data-find="/find/courses"`,
		`data-find="/find/companies"`,
		`id="results-job"`,
		`document.addEventListener("click"`,
		`post("/actions", body)`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %s", want)
		}
	}
}

func TestFindCertificates_SplitsCommaLists(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/find/certificates", url.Values{
		"interests":         {"cloud, data", "security"},
		"goals":             {"promotion"},
		"course_preference": {"online"},
	})
	if len(f.finder.forms) != 1 {
		t.Fatalf("forms = %v", f.finder.forms)
	}
	got := f.finder.forms[0].(finder.CertificateForm).Interests
	if len(got) != 3 || got[0] != "cloud" || got[1] != "data" || got[2] != "security" {
		t.Errorf("Interests = %q", got)
	}
}
