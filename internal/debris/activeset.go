package debris

// indexSet is a sparse set of cell indices with O(1) add, remove and membership.
// Iteration follows the dense slice, so it is deterministic for a given sequence
// of operations.
type indexSet struct {
	dense []int
	pos   []int32 // -1 when absent
}

func newIndexSet(n int) *indexSet {
	s := &indexSet{
		dense: make([]int, 0, 64),
		pos:   make([]int32, n),
	}
	for i := range s.pos {
		s.pos[i] = -1
	}
	return s
}

func (s *indexSet) Has(i int) bool {
	return s.pos[i] >= 0
}

func (s *indexSet) Add(i int) {
	if s.pos[i] >= 0 {
		return
	}
	s.pos[i] = int32(len(s.dense))
	s.dense = append(s.dense, i)
}

func (s *indexSet) Remove(i int) {
	p := s.pos[i]
	if p < 0 {
		return
	}
	last := s.dense[len(s.dense)-1]
	s.dense[p] = last
	s.pos[last] = p
	s.dense = s.dense[:len(s.dense)-1]
	s.pos[i] = -1
}

func (s *indexSet) Len() int {
	return len(s.dense)
}

// Clear empties the set in O(Len).
func (s *indexSet) Clear() {
	for _, i := range s.dense {
		s.pos[i] = -1
	}
	s.dense = s.dense[:0]
}
