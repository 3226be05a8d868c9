package lattice

import (
	"testing"

	"github.com/cs-au-dk/guardflow/analysis/defs"
	"github.com/cs-au-dk/guardflow/utils"
)

func init() {
	utils.Opts().SetNoColorize(true)
}

func sid(local int) defs.StatementID {
	return defs.StatementID{Fn: "f", Local: local}
}

func TestGuardSetZeroValue(t *testing.T) {
	var s GuardSet

	if !s.Empty() || s.Size() != 0 {
		t.Error("Zero value should be the empty set")
	}
	if s.Contains(sid(0)) {
		t.Error("Empty set contains nothing")
	}
	if s.String() != "∅" {
		t.Errorf("String() = %q", s.String())
	}
	if s2 := s.Add(sid(0)); !s2.Contains(sid(0)) || s.Contains(sid(0)) {
		t.Error("Add should not mutate its receiver")
	}
}

func TestGuardSetJoin(t *testing.T) {
	a := MakeGuardSet(sid(0), sid(1))
	b := MakeGuardSet(sid(1), sid(2), sid(3))

	j := a.Join(b)
	if j.Keys() != "{f#0, f#1, f#2, f#3}" {
		t.Errorf("Join = %s", j.Keys())
	}
	if a.Size() != 2 || b.Size() != 3 {
		t.Error("Join should not mutate its operands")
	}
	if !a.Leq(j) || !b.Leq(j) {
		t.Error("Operands should be below their join")
	}
	if !j.Eq(b.Join(a)) {
		t.Error("Join should be commutative")
	}
	if e := (GuardSet{}).Join(a); !e.Eq(a) {
		t.Error("∅ should be the identity of join")
	}
}

func TestGuardSetFilter(t *testing.T) {
	s := MakeGuardSet(sid(0), sid(1), sid(2))
	odd := s.Filter(func(id defs.StatementID) bool { return id.Local%2 == 1 })

	if odd.Keys() != "{f#1}" {
		t.Errorf("Filter = %s", odd.Keys())
	}
	if s.Size() != 3 {
		t.Error("Filter should not mutate its receiver")
	}
}

func TestResources(t *testing.T) {
	table := defs.LockGuards{
		sid(0): {Resource: "a"},
		sid(1): {Resource: "a"},
		sid(2): {Resource: "b"},
		sid(3): {Resource: "c"},
	}
	R := Over(table)

	t.Run("Of", func(t *testing.T) {
		rs := R.Of(MakeGuardSet(sid(0), sid(1), sid(2)))
		if rs.Size() != 2 || !rs.Contains("a") || !rs.Contains("b") {
			t.Errorf("Of = %v", rs.Entries())
		}
	})

	t.Run("Kill by resource", func(t *testing.T) {
		live := MakeGuardSet(sid(0), sid(2), sid(3))
		// sid(1) is a different statement over the same resource as sid(0).
		res := R.Kill(live, MakeGuardSet(sid(1)))
		if res.Keys() != "{f#2, f#3}" {
			t.Errorf("Kill = %s", res.Keys())
		}
	})

	t.Run("Eq by resource", func(t *testing.T) {
		if !R.Eq(MakeGuardSet(sid(0), sid(2)), MakeGuardSet(sid(1), sid(2))) {
			t.Error("Aliased guards should compare equal")
		}
		if R.Eq(MakeGuardSet(sid(0)), MakeGuardSet(sid(0), sid(2))) {
			t.Error("Sets of different size should differ")
		}
		if R.Eq(MakeGuardSet(sid(0), sid(2)), MakeGuardSet(sid(0), sid(3))) {
			t.Error("Sets over different resources should differ")
		}
		if !R.Eq(GuardSet{}, MakeGuardSet()) {
			t.Error("Empty sets should be equal")
		}
	})

	t.Run("Leq by resource", func(t *testing.T) {
		if !R.Leq(MakeGuardSet(sid(1)), MakeGuardSet(sid(0), sid(2))) {
			t.Error("{a} should be below {a, b}")
		}
		if R.Leq(MakeGuardSet(sid(3)), MakeGuardSet(sid(0))) {
			t.Error("{c} should not be below {a}")
		}
	})

	t.Run("Unknown guard", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("Expected a panic for a guard missing from the table")
			}
		}()
		R.Of(MakeGuardSet(defs.StatementID{Fn: "g", Local: 0}))
	})
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator(MakeGuardSet(sid(0)))

	if !acc.Merge(MakeGuardSet(sid(1))) {
		t.Error("Merging a new guard should grow the accumulator")
	}
	if acc.Merge(MakeGuardSet(sid(0))) {
		t.Error("Merging a known guard should not grow the accumulator")
	}
	if acc.Merge(GuardSet{}) {
		t.Error("Merging ∅ should not grow the accumulator")
	}
	if acc.Get().Keys() != "{f#0, f#1}" {
		t.Errorf("Accumulated %s", acc.Get().Keys())
	}
}
