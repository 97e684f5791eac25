package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/provider"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		APIKey:  "xi-test",
		BaseURL: srv.URL,
		Voice:   "voice1",
		HTTP:    provider.ClientConfig{RetryMax: -1, RetryWaitMin: time.Millisecond},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNew_Defaults(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New() without api key should fail")
	}
	c, err := New(Config{APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if c.voice != DefaultVoice || c.model != DefaultModel || c.baseURL != DefaultBaseURL {
		t.Errorf("defaults not applied: %+v", c)
	}
}

func TestSynthesize(t *testing.T) {
	var got speechRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/voice1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "xi-test" {
			t.Errorf("xi-api-key = %q", r.Header.Get("xi-api-key"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fake"))
	})

	audio, err := c.Synthesize(context.Background(), "Bonjour", "fr-FR")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(audio.Data) != "ID3fake" || audio.ContentType != "audio/mpeg" {
		t.Errorf("audio = %q %q", audio.Data, audio.ContentType)
	}
	if got.Text != "Bonjour" || got.LanguageCode != "fr" || got.ModelID != DefaultModel {
		t.Errorf("request = %+v", got)
	}
}

func TestSynthesize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"quota", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusUnauthorized)
		}},
		{"empty", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			if _, err := c.Synthesize(context.Background(), "hi", "en"); err == nil {
				t.Error("Synthesize() should fail")
			}
		})
	}
}

func TestSynthesize_APIErrorType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := c.Synthesize(context.Background(), "hi", "en")
	var apiErr *provider.APIError
	if !errors.As(err, &apiErr) || apiErr.Provider != ProviderName {
		t.Errorf("error = %v, want elevenlabs APIError", err)
	}
}

func TestPrimaryTag(t *testing.T) {
	for in, want := range map[string]string{"en": "en", "fr-FR": "fr", "pt_BR": "pt", "": "", "ES": "es"} {
		if got := primaryTag(in); got != want {
			t.Errorf("primaryTag(%q) = %q, want %q", in, got, want)
		}
	}
}
