package vectorstore

import (
	"math"
	"strings"

	"ragqa/internal/domain"
)

// Metric selects how vectors are compared. It is fixed per index.
type Metric string

const (
	Cosine    Metric = "cosine"
	Euclidean Metric = "euclidean"
)

// ParseMetric accepts the config spelling of a metric. Empty means cosine.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case "", Cosine:
		return Cosine, nil
	case Euclidean:
		return Euclidean, nil
	}
	return "", domain.InvalidConfig("metric", s, "expected cosine or euclidean")
}

// Similarity scores a against b; larger is closer and equal vectors score 1.
func (m Metric) Similarity(a, b []float64) float64 {
	if m == Euclidean {
		return 1 / (1 + euclidean(a, b))
	}
	return cosine(a, b)
}

func cosine(a, b []float64) float64 {
	if equal(a, b) {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, s))
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}
