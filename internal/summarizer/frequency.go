// Package summarizer builds the short corpus digest shown when the
// interactive surfaces start, and locates the sentence of a chunk that
// best matches a question.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"ragqa/internal/domain"
)

var (
	wordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// Frequency ranks sentences by normalised word frequency with stopwords removed.
type Frequency struct {
	stopwords map[string]struct{}
}

func New() *Frequency {
	return &Frequency{stopwords: defaultStopwords()}
}

// SummarizeDocuments summarises the concatenation of docs.
func (s *Frequency) SummarizeDocuments(docs []domain.Document, maxSentences int) string {
	var b strings.Builder
	for _, d := range docs {
		b.WriteString(d.Text)
		b.WriteString("\n")
	}
	return s.Summarize(b.String(), maxSentences)
}

// Summarize returns up to maxSentences of text, highest scoring first
// chosen and then emitted in their original order.
func (s *Frequency) Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return ""
	}
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range tokens(sent) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := tokens(sent)
		sc := 0.0
		for _, tok := range toks {
			sc += freq[tok]
		}
		// long sentences would win on raw sums
		if l := float64(len(toks)); l > 0 {
			sc /= math.Sqrt(l)
		}
		scores[i] = scored{i, sc}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	maxSentences = min(maxSentences, len(scores))
	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

// Sentences splits text on terminal punctuation. Text without any becomes
// a single sentence.
func Sentences(text string) []string {
	raw := sentenceRe.FindAllString(text, -1)
	if len(raw) == 0 {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if t := strings.TrimSpace(r); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// BestSentence returns the sentences of text and the index of the one that
// shares the most distinct words with query. The index is -1 when the
// query has no words.
func BestSentence(text, query string) ([]string, int) {
	sentences := Sentences(text)
	q := tokenSet(query)
	if len(q) == 0 || len(sentences) == 0 {
		return sentences, -1
	}
	best, bestScore := 0, -1
	for i, sent := range sentences {
		score := 0
		for tok := range tokenSet(sent) {
			if _, ok := q[tok]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return sentences, best
}

func tokens(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

func tokenSet(text string) map[string]struct{} {
	toks := tokens(text)
	m := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		m[t] = struct{}{}
	}
	return m
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
