// Package llm holds the text generators behind domain.Generator.
package llm

import (
	"context"
	"strings"

	"ragqa/internal/domain"
)

// Extractive is an offline generator so the binaries work without
// credentials. Question answering goes through AnswerFromPassages and
// returns the best passage whatever the prompt template. Generate only
// knows the default "stuff" layout: it skips the instruction and question
// paragraphs and returns the first one left.
type Extractive struct{}

func (Extractive) Name() string { return "extractive" }

func (Extractive) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.GenerationFailure("extractive", err)
	}
	for _, p := range strings.Split(prompt, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "Use the following") || strings.HasPrefix(p, "Question:") {
			continue
		}
		return p, nil
	}
	return "I don't know.", nil
}

func (Extractive) AnswerFromPassages(ctx context.Context, _ string, passages []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.GenerationFailure("extractive", err)
	}
	for _, p := range passages {
		if p = strings.TrimSpace(p); p != "" {
			return p, nil
		}
	}
	return "I don't know.", nil
}
