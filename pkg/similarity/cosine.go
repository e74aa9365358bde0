// Package similarity ranks embedded items against a query vector in process.
package similarity

import (
	"math"
	"sort"
)

// Cosine returns the cosine similarity of a and b in [-1, 1]. Empty vectors,
// vectors of different lengths and zero-magnitude vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) < 1 || len(a) != len(b) {
		return 0
	}

	dotProduct := 0.0
	normA := 0.0
	normB := 0.0

	for i := 0; i < len(a); i++ {
		x := float64(a[i])
		y := float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	score := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(score):
		return 0
	case score > 1:
		return 1
	case score < -1:
		return -1
	}
	return score
}

type Candidate[T any] struct {
	Item   T
	Vector []float32
}

type Scored[T any] struct {
	Item  T
	Score float64
}

// Search scores every candidate against query and returns the topK best,
// highest first. Ties keep the corpus order.
func Search[T any](query []float32, corpus []Candidate[T], topK int) []Scored[T] {
	scored := make([]Scored[T], 0, len(corpus))
	for _, c := range corpus {
		scored = append(scored, Scored[T]{Item: c.Item, Score: Cosine(query, c.Vector)})
	}
	return Rank(scored, topK)
}

// Rank orders already scored items descending and keeps at most topK of them.
// The input slice is not modified.
func Rank[T any](scored []Scored[T], topK int) []Scored[T] {
	if topK <= 0 || len(scored) == 0 {
		return []Scored[T]{}
	}

	ranked := make([]Scored[T], len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}
