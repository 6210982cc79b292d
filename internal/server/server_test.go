package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ragqa/internal/domain"
	"ragqa/internal/logging"
	"ragqa/internal/pipeline"
	"ragqa/internal/service"
)

type fakeRAG struct {
	answer domain.Answer
	err    error
	gotK   int
	added  []domain.Document
	addErr error
}

func (f *fakeRAG) Ask(_ context.Context, _ string, k int) (domain.Answer, error) {
	f.gotK = k
	return f.answer, f.err
}

func (f *fakeRAG) AddDocuments(_ context.Context, docs []domain.Document) (*pipeline.BuildReport, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, docs...)
	return &pipeline.BuildReport{Documents: []string{docs[0].ID}, Chunks: 3}, nil
}

func (f *fakeRAG) Stats() service.Stats {
	return service.Stats{Documents: 1, Chunks: 3, Dimension: 8, Metric: "cosine", Embedder: "fake"}
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func init() { gin.SetMode(gin.TestMode) }

func TestHealthAndStats(t *testing.T) {
	s := New(&fakeRAG{}, logging.Discard())
	if rec := do(t, s, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	rec := do(t, s, http.MethodGet, "/api/v1/stats", "")
	var st service.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Chunks != 3 || st.Embedder != "fake" {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestQuery_OK(t *testing.T) {
	rag := &fakeRAG{answer: domain.Answer{
		Text: "a fox",
		Sources: []domain.SearchResult{{
			Chunk: domain.Chunk{ID: "f#0", DocumentID: "fox.txt", Start: 0, End: 20, Text: "The quick brown fox."},
			Score: 0.75,
		}},
	}}
	s := New(rag, logging.Discard())
	rec := do(t, s, http.MethodPost, "/api/v1/query", `{"question":"who?","k":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer != "a fox" || len(resp.Sources) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	src := resp.Sources[0]
	if src.Document != "fox.txt" || src.EndIndex != 20 || src.Score != 0.75 {
		t.Fatalf("unexpected source %+v", src)
	}
	if rag.gotK != 3 {
		t.Fatalf("k not forwarded, got %d", rag.gotK)
	}
}

func TestQuery_BadBody(t *testing.T) {
	s := New(&fakeRAG{}, logging.Discard())
	if rec := do(t, s, http.MethodPost, "/api/v1/query", `{"k":3}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing question, got %d", rec.Code)
	}
}

func TestQuery_ErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.InvalidConfig("q", 0, "k"), http.StatusBadRequest},
		{domain.DimensionMismatch("q", 3, 2), http.StatusBadRequest},
		{domain.NewError(domain.ErrContextTooLarge, "answer", "c#0", nil), http.StatusUnprocessableEntity},
		{domain.EmbeddingFailure("retrieve", errors.New("down")), http.StatusBadGateway},
		{domain.GenerationFailure("answer", errors.New("down")), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.want), func(t *testing.T) {
			s := New(&fakeRAG{err: tc.err}, logging.Discard())
			rec := do(t, s, http.MethodPost, "/api/v1/query", `{"question":"q"}`)
			if rec.Code != tc.want {
				t.Fatalf("%v: got %d, want %d", tc.err, rec.Code, tc.want)
			}
		})
	}
}

func TestAddDocument(t *testing.T) {
	rag := &fakeRAG{}
	s := New(rag, logging.Discard())
	rec := do(t, s, http.MethodPost, "/api/v1/documents", `{"id":"notes.txt","text":"some text"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(rag.added) != 1 || rag.added[0].ID != "notes.txt" {
		t.Fatalf("document not forwarded: %+v", rag.added)
	}

	rag.addErr = &pipeline.BuildError{Document: "notes.txt", Err: domain.NewError(domain.ErrDuplicateChunk, "insert", "notes.txt#0", nil)}
	if rec := do(t, s, http.MethodPost, "/api/v1/documents", `{"id":"notes.txt","text":"again"}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
	}
}
