package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
)

func TestWebhookDisabledWhenUnconfigured(t *testing.T) {
	if w := NewWebhook(""); w != nil {
		t.Error("empty endpoint must disable the notifier entirely")
	}
}

func TestWebhookPostsFormEncodedSummary(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		got = r.FormValue("value1")
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL)
	err := w.Notify(context.Background(), domain.CategoryAdmin, "Dev(@dev)", "Boss(@boss)", "release at noon")
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	want := "New admin message in Dev(@dev) from Boss(@boss)\n\nrelease at noon"
	if got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func TestWebhookOmitsEmptySender(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.FormValue("value1")
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL)
	if err := w.Notify(context.Background(), domain.CategoryChannel, "News(None)", "", "breaking"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	want := "New channel message in News(None)\n\nbreaking"
	if got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func TestWebhookReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL)
	if err := w.Notify(context.Background(), domain.CategoryPinned, "News(None)", "", "x"); err == nil {
		t.Error("non-2xx status must surface as an error for the caller to log")
	}
}
