package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseJSONResponseJokeObject(t *testing.T) {
	result := ParseJSONResponse(`{"joke": "I told my plants a joke. Now they need therapy.", "confidence": 0.9}`)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result["joke"] != "I told my plants a joke. Now they need therapy." {
		t.Errorf("unexpected joke field: %v", result["joke"])
	}
	if result["confidence"] != 0.9 {
		t.Errorf("unexpected confidence field: %v", result["confidence"])
	}
}

func TestParseJSONResponseFencedReply(t *testing.T) {
	text := "```json\n{\"joke\": \"My wifi has commitment issues.\"}\n```"
	result := ParseJSONResponse(text)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result["joke"] != "My wifi has commitment issues." {
		t.Errorf("unexpected joke field: %v", result["joke"])
	}
}

func TestParseJSONResponseFenceWithoutLanguage(t *testing.T) {
	text := "```\n{\"joke\": \"Deadlines are just suggestions with consequences.\"}\n```"
	result := ParseJSONResponse(text)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result["joke"] != "Deadlines are just suggestions with consequences." {
		t.Errorf("unexpected joke field: %v", result["joke"])
	}
}

func TestParseJSONResponseChattyReply(t *testing.T) {
	// Models sometimes ignore the JSON contract entirely. Callers treat the
	// nil result as "use the raw reply".
	result := ParseJSONResponse("Sure! Here's a great one about offices.")
	if result != nil {
		t.Errorf("expected nil for a prose reply, got %v", result)
	}
}

func TestParseJSONResponseEmpty(t *testing.T) {
	if result := ParseJSONResponse(""); result != nil {
		t.Errorf("expected nil for empty reply, got %v", result)
	}
}

func TestParseJSONResponsePadding(t *testing.T) {
	result := ParseJSONResponse("  \n  {\"joke\": \"Brevity.\"}  \n  ")
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result["joke"] != "Brevity." {
		t.Errorf("unexpected joke field: %v", result["joke"])
	}
}

func orfeoTestProvider(srv *httptest.Server) *OrfeoProvider {
	return &OrfeoProvider{
		Model:   "llama3.3:latest",
		BaseURL: srv.URL,
		APIKey:  "test-token",
		client:  srv.Client(),
	}
}

func TestOrfeoGenerateChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		fmt.Fprint(w, `{"choices": [{"message": {"content": "{\"joke\": \"The cloud is just someone else's rain.\"}"}}]}`)
	}))
	defer srv.Close()

	got, err := orfeoTestProvider(srv).Generate(context.Background(), "write a joke", 150)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(got, "someone else's rain") {
		t.Errorf("unexpected reply %q", got)
	}
}

func TestOrfeoGenerateBareResponseFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response": "My calendar is a work of speculative fiction."}`)
	}))
	defer srv.Close()

	got, err := orfeoTestProvider(srv).Generate(context.Background(), "write a joke", 150)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got != "My calendar is a work of speculative fiction." {
		t.Errorf("unexpected reply %q", got)
	}
}

func TestOrfeoGenerateEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	if _, err := orfeoTestProvider(srv).Generate(context.Background(), "write a joke", 150); err == nil {
		t.Error("expected error for payload with neither choices nor response")
	}
}

func TestOrfeoGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := orfeoTestProvider(srv).Generate(context.Background(), "write a joke", 150)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestOrfeoProviderUnconfigured(t *testing.T) {
	p := &OrfeoProvider{Model: "m", BaseURL: "http://localhost", client: http.DefaultClient}
	if p.IsConfigured() {
		t.Error("expected provider without token to be unconfigured")
	}
	if _, err := p.Generate(context.Background(), "write a joke", 150); err == nil {
		t.Error("expected error from unconfigured provider")
	}
}

func TestNewOrfeoProviderReadsTokenEnv(t *testing.T) {
	t.Setenv("COMEDYCLUB_TEST_TOKEN", "secret")
	p := NewOrfeoProvider("m", "http://localhost", "COMEDYCLUB_TEST_TOKEN")
	if !p.IsConfigured() {
		t.Error("expected provider configured from env token")
	}
	if p.APIKey != "secret" {
		t.Errorf("unexpected token %q", p.APIKey)
	}
}

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"message": {"content": "{\"joke\": \"My standing desk filed for overtime.\"}"}}`)
	}))
	defer srv.Close()

	p := &OllamaProvider{Model: "llama3.2:3b", BaseURL: srv.URL, client: srv.Client()}
	got, err := p.Generate(context.Background(), "write a joke", 150)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	parsed := ParseJSONResponse(got)
	if parsed == nil || parsed["joke"] != "My standing desk filed for overtime." {
		t.Errorf("expected parseable joke reply, got %q", got)
	}
}
