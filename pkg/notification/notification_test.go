package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *recordingNotifier) Send(n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func TestNtfyClientSend(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewNtfyClient(server.URL+"/", "dev-box")
	err := client.Send(Notification{
		Title:   "web exited",
		Message: "exit code 1",
		Time:    time.Now(),
		Tag:     "exit",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if payload["topic"] != "dev-box" {
		t.Errorf("unexpected topic: %v", payload["topic"])
	}
	if payload["title"] != "web exited" {
		t.Errorf("unexpected title: %v", payload["title"])
	}
	tags, ok := payload["tags"].([]interface{})
	if !ok || len(tags) != 2 || tags[0] != "run-all" || tags[1] != "exit" {
		t.Errorf("unexpected tags: %v", payload["tags"])
	}
}

func TestNtfyClientErrors(t *testing.T) {
	if err := NewNtfyClient("http://127.0.0.1:0", "").Send(Notification{}); err == nil {
		t.Error("expected error without topic")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := NewNtfyClient(server.URL, "topic").Send(Notification{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestContextNotifier(t *testing.T) {
	rec := &recordingNotifier{}
	cn := NewContextNotifier(rec)

	if err := cn.Send(Notification{Title: "api exited"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(rec.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(rec.sent))
	}
	title := rec.sent[0].Title
	if !strings.HasPrefix(title, "run-all") || !strings.HasSuffix(title, ": api exited") {
		t.Errorf("unexpected title: %q", title)
	}
}
