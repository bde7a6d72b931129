package stride

import "sort"

// CandidateSet holds the distinct run lengths observed while scanning.
type CandidateSet map[int]struct{}

// NewCandidateSet returns an empty set.
func NewCandidateSet() CandidateSet {
	return make(CandidateSet)
}

// Add records a run length.
func (s CandidateSet) Add(length int) {
	s[length] = struct{}{}
}

// Merge adds every length of other to s.
func (s CandidateSet) Merge(other CandidateSet) {
	for length := range other {
		s[length] = struct{}{}
	}
}

// Contains reports whether length was recorded.
func (s CandidateSet) Contains(length int) bool {
	_, ok := s[length]
	return ok
}

// Sorted returns the lengths in ascending order.
func (s CandidateSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for length := range s {
		out = append(out, length)
	}
	sort.Ints(out)
	return out
}
