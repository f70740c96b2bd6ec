package entities

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// CombinationSize is the count of numbers on a ticket and in a draw
	CombinationSize = 6
	// MinNumber and MaxNumber bound every number on a ticket (inclusive)
	MinNumber = 0
	MaxNumber = 39

	// CombinationDelimiter joins the two-digit tokens in storage
	CombinationDelimiter = "-"
)

// ErrInvalidCombination is returned when a ticket or draw does not hold
// exactly six distinct numbers in [0, 39]
var ErrInvalidCombination = errors.New("numbers must be 6, unique, and between 0 and 39")

// Combination is an ordered set of lottery numbers
type Combination []int

// ParseCombination parses the stored "NN-NN-NN-NN-NN-NN" form. Tokens
// without zero padding are accepted.
func ParseCombination(s string) (Combination, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCombination)
	}

	tokens := strings.Split(s, CombinationDelimiter)
	combination := make(Combination, 0, len(tokens))
	for _, token := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidCombination, token)
		}
		combination = append(combination, n)
	}

	if err := combination.Validate(); err != nil {
		return nil, err
	}
	return combination, nil
}

// Validate checks size, range and uniqueness
func (c Combination) Validate() error {
	if len(c) != CombinationSize {
		return fmt.Errorf("%w: got %d numbers", ErrInvalidCombination, len(c))
	}

	seen := make(map[int]bool, len(c))
	for _, n := range c {
		if n < MinNumber || n > MaxNumber {
			return fmt.Errorf("%w: %d out of range", ErrInvalidCombination, n)
		}
		if seen[n] {
			return fmt.Errorf("%w: %d repeated", ErrInvalidCombination, n)
		}
		seen[n] = true
	}
	return nil
}

// Sorted returns an ascending copy
func (c Combination) Sorted() Combination {
	sorted := make(Combination, len(c))
	copy(sorted, c)
	sort.Ints(sorted)
	return sorted
}

// Tokens returns the two-digit zero-padded tokens in order
func (c Combination) Tokens() []string {
	tokens := make([]string, len(c))
	for i, n := range c {
		tokens[i] = fmt.Sprintf("%02d", n)
	}
	return tokens
}

// String returns the storage form
func (c Combination) String() string {
	return strings.Join(c.Tokens(), CombinationDelimiter)
}

// Hits counts the numbers present in both combinations. Position is ignored.
func (c Combination) Hits(drawn Combination) HitCount {
	drawnSet := make(map[int]struct{}, len(drawn))
	for _, n := range drawn {
		drawnSet[n] = struct{}{}
	}

	var hits HitCount
	for _, n := range c {
		if _, ok := drawnSet[n]; ok {
			hits++
		}
	}
	return hits
}
