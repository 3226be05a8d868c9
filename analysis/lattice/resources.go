package lattice

import (
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	"github.com/cs-au-dk/guardflow/utils"
)

// ResourceSet is an immutable set of lock resources.
type ResourceSet struct {
	mp *immutable.Map[defs.Resource, struct{}]
}

func MakeResourceSet(rs ...defs.Resource) ResourceSet {
	mp := utils.NewImmMap[defs.Resource, struct{}]()
	for _, r := range rs {
		mp = mp.Set(r, struct{}{})
	}
	return ResourceSet{mp}
}

func (s ResourceSet) Size() int {
	if s.mp == nil {
		return 0
	}
	return s.mp.Len()
}

func (s ResourceSet) Contains(r defs.Resource) bool {
	if s.mp == nil {
		return false
	}
	_, ok := s.mp.Get(r)
	return ok
}

func (s ResourceSet) Add(r defs.Resource) ResourceSet {
	if s.mp == nil {
		return MakeResourceSet(r)
	}
	return ResourceSet{s.mp.Set(r, struct{}{})}
}

// Entries returns the resources in sorted order.
func (s ResourceSet) Entries() []defs.Resource {
	rs := make([]defs.Resource, 0, s.Size())
	if s.mp != nil {
		for iter := s.mp.Iterator(); !iter.Done(); {
			r, _, _ := iter.Next()
			rs = append(rs, r)
		}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	return rs
}

func (s ResourceSet) String() string {
	strs := []string{}
	for _, r := range s.Entries() {
		strs = append(strs, r.String())
	}
	return "{ " + strings.Join(strs, ", ") + " }"
}

// Resources compares guard sets by the resources their guards refer to,
// looking guards up in a lock guard table. Looking up a guard missing from
// the table panics.
type Resources struct {
	table defs.LockGuards
}

// Over creates a resource view of the given lock guard table.
func Over(table defs.LockGuards) Resources {
	return Resources{table}
}

// Of returns the resources guarded by the members of s.
func (r Resources) Of(s GuardSet) ResourceSet {
	res := MakeResourceSet()
	s.ForEach(func(id defs.StatementID) {
		res = res.Add(r.table.ResourceOf(id))
	})
	return res
}

// Same checks whether two guards refer to the same resource.
func (r Resources) Same(a, b defs.StatementID) bool {
	return r.table.MustGet(a).Equal(r.table.MustGet(b))
}

// Kill removes from live every guard sharing a resource with a member of kill.
func (r Resources) Kill(live, kill GuardSet) GuardSet {
	if kill.Empty() || live.Empty() {
		return live
	}

	killed := r.Of(kill)
	return live.Filter(func(id defs.StatementID) bool {
		return !killed.Contains(r.table.ResourceOf(id))
	})
}

// Eq compares two guard sets as resource multisets: both must have the same
// size, and the resource of every member of lhs must occur in rhs.
func (r Resources) Eq(lhs, rhs GuardSet) bool {
	if lhs.Size() != rhs.Size() {
		return false
	}

	rhsRes := r.Of(rhs)
	eq := true
	lhs.ForEach(func(id defs.StatementID) {
		eq = eq && rhsRes.Contains(r.table.ResourceOf(id))
	})
	return eq
}

// Leq checks whether every resource of lhs occurs in rhs.
func (r Resources) Leq(lhs, rhs GuardSet) bool {
	rhsRes := r.Of(rhs)
	for _, res := range r.Of(lhs).Entries() {
		if !rhsRes.Contains(res) {
			return false
		}
	}
	return true
}
