package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/idilsaglam/questlog/internal/model"
)

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func newTestClient(srv *httptest.Server, kind model.Kind) *OpenAIClient {
	return NewOpenAIClient("sk-test", kind,
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRetryDelay(time.Millisecond),
	)
}

func TestGenerateSuccess(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing auth header")
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(chatReply(`{"title":" Slay the wyrm ","description":"It lurks in the hills."}`)))
	}))
	defer srv.Close()

	s, err := newTestClient(srv, model.KindQuest).Generate(context.Background(), "dragon")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if s.Title != "Slay the wyrm" || s.Description != "It lurks in the hills." {
		t.Errorf("unexpected suggestion %+v", s)
	}
	if gotReq.ResponseFormat.Type != "json_object" || len(gotReq.Messages) != 2 {
		t.Errorf("unexpected request %+v", gotReq)
	}
	if !strings.Contains(gotReq.Messages[0].Content, "quest giver") {
		t.Errorf("quest kind should use the quest prompt")
	}
	if gotReq.Messages[1].Content != "Prompt: dragon" {
		t.Errorf("user message: %q", gotReq.Messages[1].Content)
	}
}

func TestGenerateFencedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("```json\n{\"title\":\"Add retries\",\"description\":\"d\"}\n```")))
	}))
	defer srv.Close()

	s, err := newTestClient(srv, model.KindTask).Generate(context.Background(), "retries")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if s.Title != "Add retries" {
		t.Errorf("title: %q", s.Title)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		w.Write([]byte(chatReply(`{"title":"ok","description":""}`)))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv, model.KindTask).Generate(context.Background(), "x"); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestGenerateClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, model.KindTask).Generate(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected API error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestGenerateValidation(t *testing.T) {
	c := NewOpenAIClient("sk", model.KindTask)
	if _, err := c.Generate(context.Background(), "   "); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("expected ErrEmptyPrompt, got %v", err)
	}
	c = NewOpenAIClient("", model.KindTask)
	if _, err := c.Generate(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestFillLeavesFieldsOnFailure(t *testing.T) {
	orig := model.Fields[model.TaskCategory]{Title: "mine", Description: "keep", Category: model.TaskBug}
	failing := Func(func(context.Context, string) (Suggestion, error) {
		return Suggestion{}, errors.New("model down")
	})

	got, err := Fill(context.Background(), failing, "idea", orig)
	if err == nil {
		t.Fatal("expected error")
	}
	if got != orig {
		t.Errorf("fields changed on failure: %+v", got)
	}

	ok := Func(func(context.Context, string) (Suggestion, error) {
		return Suggestion{Title: "T", Description: "D"}, nil
	})
	got, err = Fill(context.Background(), ok, "idea", orig)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "T" || got.Description != "D" || got.Category != model.TaskBug {
		t.Errorf("unexpected fill %+v", got)
	}

	if _, err := Fill(context.Background(), nil, "idea", orig); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
