package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ragqa/internal/domain"
	"ragqa/internal/vectorstore"
)

func TestSink_InitAndUpsert(t *testing.T) {
	var calls []string
	var distance string
	var points []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Header.Get("api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/collections/docs":
			distance = body["vectors"].(map[string]any)["distance"].(string)
		case "/collections/docs/points":
			for _, p := range body["points"].([]any) {
				points = append(points, p.(map[string]any))
			}
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSink(Config{URL: srv.URL, APIKey: "secret", Collection: "docs"})
	ctx := context.Background()
	if err := s.Init(ctx, vectorstore.Euclidean, 2); err != nil {
		t.Fatalf("init: %v", err)
	}
	batch := []domain.EmbeddedChunk{{
		Chunk:  domain.Chunk{ID: "a.txt#0", DocumentID: "a.txt", Start: 0, End: 4, Text: "abcd"},
		Vector: []float64{0.5, 0.5},
	}}
	if err := s.Upsert(ctx, batch); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %v", calls)
	}
	if distance != "Euclid" {
		t.Fatalf("expected Euclid distance, got %q", distance)
	}
	if len(points) != 1 || points[0]["id"] != PointID("a.txt#0") {
		t.Fatalf("unexpected points %v", points)
	}
	payload := points[0]["payload"].(map[string]any)
	if payload["chunk_id"] != "a.txt#0" || payload["end"] != float64(4) {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()
	s := NewSink(Config{URL: srv.URL})
	if err := s.Init(context.Background(), vectorstore.Cosine, 3); err == nil {
		t.Fatalf("expected error on 400")
	}
}

func TestPointID_Stable(t *testing.T) {
	if PointID("x#1") != PointID("x#1") || PointID("x#1") == PointID("x#2") {
		t.Fatalf("point ids must be stable and distinct")
	}
}
