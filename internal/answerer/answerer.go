// Package answerer packs retrieved chunks into a bounded context and asks
// a generator to answer from it.
package answerer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/prompts"

	"ragqa/internal/domain"
)

// DefaultTemplate is the "stuff" question answering prompt.
const DefaultTemplate = "Use the following pieces of context to answer the question at the end. " +
	"If you don't know the answer, just say that you don't know, don't try to make up an answer.\n\n" +
	"{{.context}}\n\nQuestion: {{.question}}\nHelpful Answer:"

// Separator joins chunk texts inside the context window.
const Separator = "\n\n"

type Answerer struct {
	generator domain.Generator
	prompt    prompts.PromptTemplate
	logger    *slog.Logger
}

type Option func(*Answerer)

// WithTemplate replaces the prompt. It must use {{.context}} and {{.question}}.
func WithTemplate(tmpl string) Option {
	return func(a *Answerer) {
		if tmpl != "" {
			a.prompt = prompts.NewPromptTemplate(tmpl, []string{"context", "question"})
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Answerer) { a.logger = l }
}

func New(gen domain.Generator, opts ...Option) (*Answerer, error) {
	a := &Answerer{
		generator: gen,
		prompt:    prompts.NewPromptTemplate(DefaultTemplate, []string{"context", "question"}),
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	if _, err := a.prompt.Format(map[string]any{"context": "", "question": ""}); err != nil {
		return nil, domain.InvalidConfig("answerer.New", a.prompt.Template, err.Error())
	}
	return a, nil
}

// Answer fits results into budget characters, renders the prompt and calls
// the generator once. A generator implementing domain.PassageAnswerer gets
// the kept texts instead of the prompt. Sources are the retained chunks in retrieval order.
func (a *Answerer) Answer(ctx context.Context, question string, results []domain.SearchResult, budget int) (domain.Answer, error) {
	if budget <= 0 {
		return domain.Answer{}, domain.InvalidConfig("answer", budget, "budget must be positive")
	}
	kept, err := Fit(results, budget)
	if err != nil {
		return domain.Answer{}, err
	}
	if dropped := len(results) - len(kept); dropped > 0 {
		a.logger.Debug("context trimmed to budget", "dropped", dropped, "kept", len(kept), "budget", budget)
	}

	texts := make([]string, len(kept))
	for i, r := range kept {
		texts[i] = r.Text
	}
	if pa, ok := a.generator.(domain.PassageAnswerer); ok {
		text, err := pa.AnswerFromPassages(ctx, question, texts)
		if err != nil {
			return domain.Answer{}, domain.GenerationFailure("answer", err)
		}
		return domain.Answer{Text: text, Sources: kept}, nil
	}
	prompt, err := a.prompt.Format(map[string]any{
		"context":  strings.Join(texts, Separator),
		"question": question,
	})
	if err != nil {
		return domain.Answer{}, domain.InvalidConfig("answer", "template", err.Error())
	}

	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return domain.Answer{}, domain.GenerationFailure("answer", err)
	}
	return domain.Answer{Text: text, Sources: kept}, nil
}

// Fit drops the lowest-scoring results until the joined texts fit in budget
// characters. On equal scores the later result goes first. It fails with
// ErrContextTooLarge only when the best result alone is over budget.
func Fit(results []domain.SearchResult, budget int) ([]domain.SearchResult, error) {
	kept := make([]domain.SearchResult, len(results))
	copy(kept, results)
	for len(kept) > 0 && contextLen(kept) > budget {
		if len(kept) == 1 {
			return nil, domain.NewError(domain.ErrContextTooLarge, "answer", kept[0].ID,
				fmt.Errorf("chunk is %d characters, budget is %d", utf8.RuneCountInString(kept[0].Text), budget))
		}
		worst := 0
		for i := 1; i < len(kept); i++ {
			if kept[i].Score <= kept[worst].Score {
				worst = i
			}
		}
		kept = append(kept[:worst], kept[worst+1:]...)
	}
	return kept, nil
}

func contextLen(rs []domain.SearchResult) int {
	n := utf8.RuneCountInString(Separator) * (len(rs) - 1)
	for _, r := range rs {
		n += utf8.RuneCountInString(r.Text)
	}
	return n
}
