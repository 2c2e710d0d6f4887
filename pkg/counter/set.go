package counter

import "encoding/json"

// Set is an insertion-ordered set of opaque member tokens. It round-trips
// through the store as a JSON array, so member order is part of the stored
// contract: leaderboard tie-breaking relies on roster order surviving
// persistence.
type Set struct {
	members []string
	index   map[string]struct{}
}

func NewSet(members ...string) *Set {
	s := &Set{index: make(map[string]struct{}, len(members))}
	for _, m := range members {
		s.Add(m)
	}
	return s
}

// Has reports membership.
func (s *Set) Has(member string) bool {
	_, ok := s.index[member]
	return ok
}

// Add inserts member at the end and reports whether the set changed.
func (s *Set) Add(member string) bool {
	if s.Has(member) {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[member] = struct{}{}
	s.members = append(s.members, member)
	return true
}

func (s *Set) Len() int {
	return len(s.members)
}

// Members returns the members in insertion order. The caller must not mutate
// the returned slice.
func (s *Set) Members() []string {
	return s.members
}

func (s *Set) MarshalJSON() ([]byte, error) {
	if s.members == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.members)
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var members []string
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	*s = *NewSet(members...)
	return nil
}
