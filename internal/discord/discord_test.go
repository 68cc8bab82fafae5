package discord

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestIsEmbedded(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"", false},
		{"frame_id=abc", true},
		{"instance_id=1&platform=desktop", true},
		{"foo=bar", false},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		if got := IsEmbedded(q); got != tt.want {
			t.Errorf("IsEmbedded(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") != "abc" ||
			r.PostForm.Get("client_id") != "id" || r.PostForm.Get("client_secret") != "secret" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer"}`))
	}))
	defer srv.Close()

	c := NewClient("id", "secret", srv.URL)
	tok, err := c.Exchange(context.Background(), "abc")
	if err != nil || tok != "tok" {
		t.Fatalf("Exchange = %q, %v", tok, err)
	}
}

func TestExchangeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient("id", "secret", srv.URL).Exchange(context.Background(), "abc")
	var xe *ExchangeError
	if !errors.As(err, &xe) || xe.Status != http.StatusBadRequest {
		t.Fatalf("err = %v, want ExchangeError 400", err)
	}
}

func TestExchangePreconditions(t *testing.T) {
	if _, err := NewClient("id", "secret", "http://invalid").Exchange(context.Background(), " "); !errors.Is(err, ErrMissingCode) {
		t.Fatalf("err = %v, want ErrMissingCode", err)
	}
	if _, err := NewClient("", "", "http://invalid").Exchange(context.Background(), "abc"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
