// Package prediction turns a model's score vector into a labelled result.
package prediction

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"garbage-classifier/domain/label"
)

// ErrNoScores is returned when the score vector is empty.
var ErrNoScores = errors.New("no scores")

// Score is one class with its probability.
type Score struct {
	Index int
	Label string
	Value float32
}

// Result is the outcome of classifying one image.
type Result struct {
	// Index of the winning class; always within the label set.
	Index      int
	Label      string
	Confidence float32
	// Scores is the full probability vector, index-aligned with the labels.
	Scores []float32
	// Top holds the k best classes in descending order; Top[0] is the winner.
	Top []Score
}

// String formats the result the way the window shows it.
func (r *Result) String() string {
	return fmt.Sprintf("Prediction: %s  (%.2f)", r.Label, r.Confidence)
}

// Runners formats the classes after the winner, e.g. "paper 0.12, cardboard 0.05".
func (r *Result) Runners() string {
	if len(r.Top) < 2 {
		return ""
	}
	parts := make([]string, 0, len(r.Top)-1)
	for _, s := range r.Top[1:] {
		parts = append(parts, fmt.Sprintf("%s %.2f", s.Label, s.Value))
	}
	return strings.Join(parts, ", ")
}

// Argmax returns the index and value of the largest score.
// Ties resolve to the lowest index. A NaN wins over any number, so the
// first NaN is returned if present.
func Argmax(scores []float32) (int, float32, error) {
	if len(scores) == 0 {
		return 0, 0, ErrNoScores
	}
	best, bestVal := 0, scores[0]
	for i, v := range scores {
		if math.IsNaN(float64(v)) {
			return i, v, nil
		}
		if v > bestVal {
			best, bestVal = i, v
		}
	}
	return best, bestVal, nil
}

// Softmax converts logits into probabilities.
func Softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	if len(logits) == 0 {
		return out
	}
	_, maxLogit, _ := Argmax(logits)

	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxLogit))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

// TopK returns the k highest scores in descending order.
func TopK(scores []float32, labels *label.Set, k int) []Score {
	if k > len(scores) {
		k = len(scores)
	}
	if k <= 0 {
		return nil
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	top := make([]Score, k)
	for i := 0; i < k; i++ {
		name, _ := labels.Name(idx[i])
		top[i] = Score{Index: idx[i], Label: name, Value: scores[idx[i]]}
	}
	return top
}

// Decide picks the winning class for scores.
// The score vector must be exactly as wide as the label set.
func Decide(scores []float32, labels *label.Set, k int) (*Result, error) {
	if err := labels.CheckWidth(len(scores)); err != nil {
		return nil, err
	}

	idx, conf, err := Argmax(scores)
	if err != nil {
		return nil, err
	}
	name, ok := labels.Name(idx)
	if !ok {
		return nil, fmt.Errorf("class index %d out of range", idx)
	}

	if k < 1 {
		k = 1
	}

	vec := make([]float32, len(scores))
	copy(vec, scores)

	return &Result{
		Index:      idx,
		Label:      name,
		Confidence: conf,
		Scores:     vec,
		Top:        TopK(vec, labels, k),
	}, nil
}
