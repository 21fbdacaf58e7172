// Package label defines the ordered class-label set of the classifier.
package label

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty is returned when a label set has no entries.
	ErrEmpty = errors.New("label set is empty")
	// ErrDuplicate is returned when a label name occurs more than once.
	ErrDuplicate = errors.New("duplicate label")
	// ErrBlank is returned when a label name is empty or whitespace.
	ErrBlank = errors.New("blank label")
)

// Set is an immutable ordered list of class names.
// Position i names output i of the model, so the order must be the training order.
type Set struct {
	names []string
	model string
}

// NewSet validates names and builds a Set.
func NewSet(names []string) (*Set, error) {
	if len(names) == 0 {
		return nil, ErrEmpty
	}

	s := &Set{names: make([]string, len(names))}
	seen := make(map[string]int, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, fmt.Errorf("%w at position %d", ErrBlank, i)
		}
		if prev, ok := seen[n]; ok {
			return nil, fmt.Errorf("%w %q at positions %d and %d", ErrDuplicate, n, prev, i)
		}
		s.names[i] = n
		seen[n] = i
	}
	return s, nil
}

// Len returns the number of classes.
func (s *Set) Len() int {
	return len(s.names)
}

// Name returns the label at index i.
// The second result is false when i is out of range.
func (s *Set) Name(i int) (string, bool) {
	if i < 0 || i >= len(s.names) {
		return "", false
	}
	return s.names[i], true
}

// Model returns the model name declared by the labels file, if any.
func (s *Set) Model() string {
	return s.model
}

// Names returns a copy of the ordered names.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// CheckWidth verifies that a model producing width scores matches the set.
func (s *Set) CheckWidth(width int) error {
	if width != len(s.names) {
		return fmt.Errorf("model produces %d scores but %d labels are configured", width, len(s.names))
	}
	return nil
}
