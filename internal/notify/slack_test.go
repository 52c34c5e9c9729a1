package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookSenderPostsPayload(t *testing.T) {
	var got map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	s := NewWebhookSender(ts.URL)
	if err := s.Send(context.Background(), "#general", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["channel"] != "#general" || got["text"] != "hello" {
		t.Errorf("payload = %v", got)
	}
}

func TestWebhookSenderNonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	defer ts.Close()

	s := NewWebhookSender(ts.URL)
	if err := s.Send(context.Background(), "#general", "hello"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestWebhookSenderUnconfigured(t *testing.T) {
	s := NewWebhookSender("")
	if err := s.Send(context.Background(), "#general", "hello"); err == nil {
		t.Fatal("expected error for missing webhook URL")
	}
}
