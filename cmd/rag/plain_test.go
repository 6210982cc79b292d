package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"ragqa/internal/domain"
)

type scriptedRAG struct {
	asked []string
}

func (s *scriptedRAG) Ask(_ context.Context, q string, _ int) (domain.Answer, error) {
	s.asked = append(s.asked, q)
	if q == "boom" {
		return domain.Answer{}, domain.NewError(domain.ErrGenerationFailed, "answer", nil, errors.New("llm down"))
	}
	return domain.Answer{
		Text: "forty-two",
		Sources: []domain.SearchResult{{
			Chunk: domain.Chunk{ID: "guide.txt#3", DocumentID: "guide.txt", Start: 120, End: 180},
			Score: 0.9,
		}},
	}, nil
}

func TestRunPlain(t *testing.T) {
	rag := &scriptedRAG{}
	in := strings.NewReader("what is it?\n\nboom\nquit\nnever asked\n")
	var out bytes.Buffer
	if err := runPlain(context.Background(), rag, in, &out); err != nil {
		t.Fatalf("runPlain: %v", err)
	}
	if len(rag.asked) != 2 {
		t.Fatalf("expected 2 questions before quit, got %v", rag.asked)
	}
	got := out.String()
	for _, want := range []string{
		"A: forty-two",
		"Sources:",
		"  1. guide.txt (chars 120-180)",
		"error: ",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunPlain_ExitIgnoresCase(t *testing.T) {
	for _, cmd := range []string{"EXIT", "Quit", "exit"} {
		rag := &scriptedRAG{}
		in := strings.NewReader("first\n" + cmd + "\nnever asked\n")
		if err := runPlain(context.Background(), rag, in, &bytes.Buffer{}); err != nil {
			t.Fatalf("%s: runPlain: %v", cmd, err)
		}
		if len(rag.asked) != 1 {
			t.Fatalf("%s: expected 1 question before exit, got %v", cmd, rag.asked)
		}
	}
}

func TestRunPlain_EOF(t *testing.T) {
	var out bytes.Buffer
	if err := runPlain(context.Background(), &scriptedRAG{}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("runPlain on EOF: %v", err)
	}
}
