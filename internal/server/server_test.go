package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmorandini/comedyclub/internal/feedback"
	"github.com/dmorandini/comedyclub/internal/rating"
)

func openTestStore(t *testing.T) *feedback.JSONStore {
	t.Helper()
	store := feedback.OpenJSON(filepath.Join(t.TempDir(), "feedback.json"))
	t.Cleanup(func() { store.Close() })
	return store
}

func openTestServer(t *testing.T, store feedback.Store, ratings *rating.Book) *Server {
	t.Helper()
	srv, err := New(store, ratings)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func seedRecord(t *testing.T, store feedback.Store, comedian, topic, text string, audience float64) {
	t.Helper()
	err := store.Append(feedback.Record{
		Text:          text,
		Comedian:      comedian,
		Topic:         topic,
		QualityScore:  0.6,
		AudienceScore: audience,
		Timestamp:     feedback.Now(),
	})
	if err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}
}

func TestIndexRoute(t *testing.T) {
	store := openTestStore(t)
	seedRecord(t, store, "Dave", "work", "My boss asked for honesty. Big mistake.", 0.7)

	srv := openTestServer(t, store, nil)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Top Performers") {
		t.Error("expected leaderboard in response body")
	}
	if !strings.Contains(body, "Dave") {
		t.Error("expected 'Dave' in leaderboard")
	}
}

func TestComedianRoute(t *testing.T) {
	store := openTestStore(t)
	seedRecord(t, store, "Sarah", "food", "I told a pasta joke. It was al dente delivery.", 0.8)

	srv := openTestServer(t, store, nil)

	req := httptest.NewRequest("GET", "/comedian/Sarah", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "al dente delivery") {
		t.Error("expected the performed joke in response")
	}
	if !strings.Contains(body, "Sarah") {
		t.Error("expected comedian name in response")
	}
}

func TestComedianRouteUnknown(t *testing.T) {
	srv := openTestServer(t, openTestStore(t), nil)

	req := httptest.NewRequest("GET", "/comedian/Nobody", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown comedian, got %d", rec.Code)
	}
}

func TestRateRoute(t *testing.T) {
	store := openTestStore(t)
	seedRecord(t, store, "Mike", "family", "My kids negotiate bedtime like hostage takers.", 0.6)
	ratings := rating.Open(filepath.Join(t.TempDir(), "ratings.json"))

	srv := openTestServer(t, store, ratings)

	form := url.Values{
		"joke":     {"My kids negotiate bedtime like hostage takers."},
		"comedian": {"Mike"},
		"topic":    {"family"},
		"verdict":  {"love"},
	}
	req := httptest.NewRequest("POST", "/rate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}

	pattern, ok := ratings.Pattern("Mike")
	if !ok {
		t.Fatal("expected a learned pattern for Mike after rating")
	}
	if pattern.TotalRatings != 1 || pattern.AverageRating != 2 {
		t.Errorf("unexpected pattern after 'love': %+v", pattern)
	}
}

func TestRateRouteRejectsUnknownVerdict(t *testing.T) {
	ratings := rating.Open(filepath.Join(t.TempDir(), "ratings.json"))
	srv := openTestServer(t, openTestStore(t), ratings)

	form := url.Values{
		"joke":     {"A joke"},
		"comedian": {"Lisa"},
		"topic":    {"science"},
		"verdict":  {"spectacular"},
	}
	req := httptest.NewRequest("POST", "/rate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	// Still redirects, but nothing learned.
	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
	if ratings.Len() != 0 {
		t.Error("expected no rating stored for unknown verdict")
	}
}

func TestRateRouteRedirectTargets(t *testing.T) {
	ratings := rating.Open(filepath.Join(t.TempDir(), "ratings.json"))
	srv := openTestServer(t, openTestStore(t), ratings)

	cases := []struct {
		referer string
		want    string
	}{
		{"http://localhost:8000/comedian/Dave", "/comedian/Dave"},
		{"http://localhost:8000/performances?page=2", "/performances?page=2"},
		{"https://evil.example/phish", "/phish"},
		{"http://localhost:8000//evil.example/phish", "/performances"},
		{"garbage\x7f://", "/performances"},
		{"", "/performances"},
	}

	form := url.Values{
		"joke":     {"A joke"},
		"comedian": {"Dave"},
		"topic":    {"work"},
		"verdict":  {"like"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/rate", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if tc.referer != "" {
			req.Header.Set("Referer", tc.referer)
		}
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if got := rec.Header().Get("Location"); got != tc.want {
			t.Errorf("referer %q: expected redirect to %q, got %q", tc.referer, tc.want, got)
		}
	}
}

func TestPerformancesRoute(t *testing.T) {
	store := openTestStore(t)
	seedRecord(t, store, "Lisa", "technology", "A peer reviewed study of my phone battery.", 0.5)

	srv := openTestServer(t, store, nil)

	req := httptest.NewRequest("GET", "/performances", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "peer reviewed study") {
		t.Error("expected performance text in response")
	}
	if !strings.Contains(body, "/rate") {
		t.Error("expected rating form in response")
	}
}

func TestStaticRoute(t *testing.T) {
	srv := openTestServer(t, openTestStore(t), nil)

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "--accent") {
		t.Error("expected CSS content")
	}
}
