package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/careercompass/compass/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, srv.Client(), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestRequest_SetsJSONHeaders(t *testing.T) {
	var gotCT, gotAccept, gotMethod, gotPath string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"success":true}`))
	})

	var out envelope
	if err := c.Request(context.Background(), http.MethodPost, "/api/thing", map[string]string{"k": "v"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCT != "application/json" || gotAccept != "application/json" {
		t.Errorf("headers = %q / %q, want application/json", gotCT, gotAccept)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/thing" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody["k"] != "v" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestRequest_NonJSONBodyIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>login</html>"))
	})

	var out map[string]any
	err := c.Request(context.Background(), http.MethodGet, "/api/x", nil, &out)
	var ne *model.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.Message != "response was not valid JSON" {
		t.Errorf("Message = %q", ne.Message)
	}
}

func TestRequest_StatusErrorCarriesHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	})

	err := c.Request(context.Background(), http.MethodGet, "/api/x", nil, nil)
	var ne *model.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.Message != "slow down" {
		t.Errorf("Message = %q, want server error text", ne.Message)
	}
	var he *model.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected wrapped HTTPError, got %v", err)
	}
	if he.StatusCode != http.StatusTooManyRequests || he.RetryAfter != 7*time.Second {
		t.Errorf("HTTPError = %+v", he)
	}
}

func TestRequest_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = c.Request(context.Background(), http.MethodGet, "/api/x", nil, nil)
	var ne *model.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestRequest_EmptyBodyWithDest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	var out map[string]any
	err := c.Request(context.Background(), http.MethodGet, "/api/x", nil, &out)
	var ne *model.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestCookiesAreForwarded(t *testing.T) {
	var sawCookie string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == pathLogin {
			http.SetCookie(w, &http.Cookie{Name: "connect.sid", Value: "abc", Path: "/"})
			w.Write([]byte(`{"success":true,"redirect":"/dashboard"}`))
			return
		}
		if ck, err := r.Cookie("connect.sid"); err == nil {
			sawCookie = ck.Value
		}
		w.Write([]byte(`{"success":true,"items":[]}`))
	})

	redirect, err := c.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if redirect != "/dashboard" {
		t.Errorf("redirect = %q", redirect)
	}
	if _, err := c.GetSavedItems(context.Background(), model.CategoryCourse); err != nil {
		t.Fatalf("GetSavedItems: %v", err)
	}
	if sawCookie != "abc" {
		t.Errorf("session cookie = %q, want abc", sawCookie)
	}
	if len(c.Cookies()) != 1 {
		t.Errorf("Cookies() = %v", c.Cookies())
	}
}

func TestLogin_RejectedUsesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
	})
	_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "nope12"})
	var rej *model.ServerRejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected ServerRejection, got %v", err)
	}
	if rej.Message != "Invalid email or password" {
		t.Errorf("Message = %q", rej.Message)
	}
}

func TestSaveItem_ReturnsID(t *testing.T) {
	var got saveItemRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pathSaveItem {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true,"message":"Item saved successfully","item_id":42}`))
	})

	id, err := c.SaveItem(context.Background(), model.CategoryCertificate, model.Payload{"name": "AWS SA", "provider": "Amazon"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "42" {
		t.Errorf("id = %q, want 42", id)
	}
	if got.Type != model.CategoryCertificate || got.Data["name"] != "AWS SA" {
		t.Errorf("request = %+v", got)
	}
}

func TestSaveItem_DuplicateIsRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"Item already saved"}`))
	})
	_, err := c.SaveItem(context.Background(), model.CategoryCourse, model.Payload{"title": "Go"})
	var rej *model.ServerRejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected ServerRejection, got %v", err)
	}
	if rej.Message != "Item already saved" {
		t.Errorf("Message = %q", rej.Message)
	}
}

func TestSaveItem_RejectionWithoutMessageUsesDefault(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	})
	_, err := c.SaveItem(context.Background(), model.CategoryCourse, model.Payload{"title": "Go"})
	var rej *model.ServerRejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected ServerRejection, got %v", err)
	}
	if rej.Message != "Failed to save item" {
		t.Errorf("Message = %q, want default", rej.Message)
	}
}

func TestDeleteSavedItem(t *testing.T) {
	var got deleteItemRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	})
	if err := c.DeleteSavedItem(context.Background(), model.CategoryJob, "9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "9" || got.Type != model.CategoryJob {
		t.Errorf("request = %+v", got)
	}
}

func TestGetSavedItems_SplitsServerFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get-saved-items/certificate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"items":[{"id":3,"saved_at":"2024-01-01","name":"CKA","provider":"CNCF"}]}`))
	})
	items, err := c.GetSavedItems(context.Background(), model.CategoryCertificate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	it := items[0]
	if it.ID != "3" || it.Category != model.CategoryCertificate {
		t.Errorf("item = %+v", it)
	}
	if _, ok := it.Payload["saved_at"]; ok {
		t.Error("saved_at should not be part of the payload")
	}
	if it.Payload.String("name") != "CKA" {
		t.Errorf("payload = %v", it.Payload)
	}
}

func TestSearch_DataShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"success":true,"data":"Here: {\"certificates\":[]}"}`, `Here: {"certificates":[]}`},
		{"nested", `{"success":true,"data":{"data":"text {\"a\":1}"}}`, `text {"a":1}`},
		{"object", `{"success":true,"data":{"certificates":[]}}`, `{"certificates":[]}`},
		{"missing", `{"success":true}`, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			got, err := c.FindCertificates(context.Background(), CertificateQuery{Interests: []string{"cloud"}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearch_ServerErrorField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Job title is required"}`))
	})
	_, err := c.FindCompanies(context.Background(), CompanyQuery{})
	var ne *model.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.Message != "Job title is required" {
		t.Errorf("Message = %q", ne.Message)
	}
}

func TestRecommendations_ObjectWithInsights(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/recommendations/courses" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"recommendations":[{"id":1,"title":"Go","provider":"Udemy","difficulty":"Beginner"}],"ai_insights":"{\"reasoning\":\"fits\"}"}`))
	})
	recs, ins, err := c.Recommendations(context.Background(), "courses")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "Go" {
		t.Errorf("recs = %+v", recs)
	}
	if ins == nil || ins.Reasoning != "fits" {
		t.Errorf("insights = %+v", ins)
	}
}

func TestRecommendations_BareList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"SRE","remote":true,"experience_level":"Mid"}]`))
	})
	recs, ins, err := c.Recommendations(context.Background(), "jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins != nil {
		t.Errorf("insights = %+v, want nil", ins)
	}
	if len(recs) != 1 || recs[0].Remote != "true" {
		t.Errorf("recs = %+v", recs)
	}
}

func TestTrackInteraction_EmptyBodyOK(t *testing.T) {
	var body []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.TrackInteraction(context.Background(), "course", 5, "save"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(body), `"item_id":5`) || !strings.Contains(string(body), `"interaction_type":"save"`) {
		t.Errorf("body = %s", body)
	}
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"localhost:3000", "http://localhost:3000/", false},
		{"https://compass.example.com/app?x=1", "https://compass.example.com/", false},
		{"", "", true},
		{"http://", "", true},
	}
	for _, tt := range tests {
		u, err := parseBaseURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseBaseURL(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseBaseURL(%q): %v", tt.in, err)
			continue
		}
		if u.String() != tt.want {
			t.Errorf("parseBaseURL(%q) = %q, want %q", tt.in, u.String(), tt.want)
		}
	}
}
