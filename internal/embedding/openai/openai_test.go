package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ragqa/internal/domain"
)

func TestClient_Embed(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		var body struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25,0.125]}],"model":"m"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "nomic-embed-text"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Dimension() != 0 {
		t.Fatalf("expected unknown dimension before first call, got %d", c.Dimension())
	}
	v, err := c.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(v) != 3 || v[0] != 0.5 || v[2] != 0.125 {
		t.Fatalf("unexpected vector %v", v)
	}
	if c.Dimension() != 3 {
		t.Fatalf("expected dimension 3 after first call, got %d", c.Dimension())
	}
	if gotModel != "nomic-embed-text" {
		t.Fatalf("expected model to be sent, got %q", gotModel)
	}
}

func TestClient_EmbedAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL, APIKey: "bad"})
	_, err := c.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	var de *domain.Error
	if !errors.As(err, &de) || de.Value != http.StatusUnauthorized {
		t.Fatalf("expected status 401 as offending value, got %+v", de)
	}
}

func TestNewClient_MissingKey(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
