package lattice

import (
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	"github.com/cs-au-dk/guardflow/utils"
)

// GuardSet is an immutable set of lock guard statements. The zero value is
// the empty set.
type GuardSet struct {
	mp *immutable.Map[defs.StatementID, struct{}]
}

// MakeGuardSet creates a set of the given lock guards.
func MakeGuardSet(ids ...defs.StatementID) GuardSet {
	mp := utils.NewImmMap[defs.StatementID, struct{}]()
	for _, id := range ids {
		mp = mp.Set(id, struct{}{})
	}

	return GuardSet{mp}
}

// Size returns the number of guards in the set.
func (s GuardSet) Size() int {
	if s.mp == nil {
		return 0
	}
	return s.mp.Len()
}

// Empty checks whether the set is empty:
//
//	s = ∅
func (s GuardSet) Empty() bool {
	return s.Size() == 0
}

// Contains checks whether the set contains id:
//
//	id ∈ s
func (s GuardSet) Contains(id defs.StatementID) bool {
	if s.mp == nil {
		return false
	}
	_, ok := s.mp.Get(id)
	return ok
}

// Add id to s:
//
//	s ∪ {id}
func (s GuardSet) Add(id defs.StatementID) GuardSet {
	if s.mp == nil {
		return MakeGuardSet(id)
	}
	return GuardSet{s.mp.Set(id, struct{}{})}
}

// Join computes the union of two guard sets:
//
//	s1 ∪ s2
func (s1 GuardSet) Join(s2 GuardSet) GuardSet {
	if s1.mp == s2.mp {
		return s1
	} else if s2.Size() < s1.Size() {
		s1, s2 = s2, s1
	}

	if s1.Empty() {
		return s2
	}

	mp := s2.mp
	s1.ForEach(func(id defs.StatementID) {
		if _, found := mp.Get(id); !found {
			mp = mp.Set(id, struct{}{})
		}
	})

	return GuardSet{mp}
}

// Filter keeps the guards for which keep returns true.
func (s GuardSet) Filter(keep func(defs.StatementID) bool) GuardSet {
	res := s
	s.ForEach(func(id defs.StatementID) {
		if !keep(id) {
			res = GuardSet{res.mp.Delete(id)}
		}
	})
	return res
}

// ForEach executes the provided procedure for each guard in the set.
func (s GuardSet) ForEach(do func(defs.StatementID)) {
	if s.mp == nil {
		return
	}
	for iter := s.mp.Iterator(); !iter.Done(); {
		id, _, _ := iter.Next()
		do(id)
	}
}

// Entries aggregates all guards in a slice in canonical order.
func (s GuardSet) Entries() []defs.StatementID {
	ids := make([]defs.StatementID, 0, s.Size())
	s.ForEach(func(id defs.StatementID) {
		ids = append(ids, id)
	})
	defs.SortStatements(ids)
	return ids
}

// Leq checks whether s1 ⊆ s2 by statement identity.
func (s1 GuardSet) Leq(s2 GuardSet) bool {
	if s1.Size() > s2.Size() {
		return false
	}
	for _, id := range s1.Entries() {
		if !s2.Contains(id) {
			return false
		}
	}
	return true
}

// Eq checks whether both sets contain the same statements.
func (s1 GuardSet) Eq(s2 GuardSet) bool {
	return s1.Size() == s2.Size() && s1.Leq(s2)
}

func (s GuardSet) String() string {
	if s.Empty() {
		return colorize.Element("∅")
	}

	strs := []string{}
	for _, id := range s.Entries() {
		strs = append(strs, id.String())
	}
	return "{ " + strings.Join(strs, ", ") + " }"
}

// Keys prints the set without colors, e.g. "{f#0, f#1}".
func (s GuardSet) Keys() string {
	strs := []string{}
	for _, id := range s.Entries() {
		strs = append(strs, id.Key())
	}
	return "{" + strings.Join(strs, ", ") + "}"
}
