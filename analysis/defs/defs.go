package defs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/utils"
)

// FunctionID is an opaque identity of a function under analysis.
type FunctionID string

func (f FunctionID) String() string {
	return utils.FunString(string(f))
}

// StatementID identifies a lock guard producing statement: the owning
// function and a statement index local to it.
type StatementID struct {
	Fn    FunctionID
	Local int
}

func (s StatementID) Hash() uint32 {
	return utils.HashCombine(utils.HashString(string(s.Fn)), utils.HashInt(s.Local))
}

func (s StatementID) Equal(o StatementID) bool {
	return s == o
}

// Less orders statements by function, then by local index.
func (s StatementID) Less(o StatementID) bool {
	if s.Fn != o.Fn {
		return s.Fn < o.Fn
	}
	return s.Local < o.Local
}

func (s StatementID) String() string {
	return utils.GuardString(string(s.Fn), s.Local)
}

// Key is the uncolored "fn#local" form accepted by ParseStatementID.
func (s StatementID) Key() string {
	return fmt.Sprintf("%s#%d", s.Fn, s.Local)
}

// ParseStatementID parses a statement handle written as "fn#local".
// The function part may itself contain '#'; the last one separates the index.
func ParseStatementID(str string) (StatementID, error) {
	i := strings.LastIndexByte(str, '#')
	if i <= 0 {
		return StatementID{}, fmt.Errorf("malformed statement id %q: expected fn#index", str)
	}

	local, err := strconv.Atoi(str[i+1:])
	if err != nil {
		return StatementID{}, fmt.Errorf("malformed statement id %q: %w", str, err)
	}
	if local < 0 {
		return StatementID{}, fmt.Errorf("malformed statement id %q: negative index", str)
	}

	return StatementID{FunctionID(str[:i]), local}, nil
}

// Resource identifies the lock object a guard refers to. It is the key for
// all conflict, membership and fixed-point comparisons.
type Resource string

func (r Resource) Hash() uint32 {
	return utils.HashString(string(r))
}

func (r Resource) Equal(o Resource) bool {
	return r == o
}

func (r Resource) String() string {
	return utils.ResourceString(string(r))
}

// StatementInfo describes a lock guard: the resource it guards and the blocks
// where it becomes live (gen) and stops being live (kill).
type StatementInfo struct {
	Resource   Resource
	GenBlocks  []cfg.Block
	KillBlocks []cfg.Block
}

// Equal holds iff both infos guard the same resource. Block sets are ignored.
func (s StatementInfo) Equal(o StatementInfo) bool {
	return s.Resource.Equal(o.Resource)
}

func (s StatementInfo) String() string {
	return fmt.Sprintf("%s gen %v kill %v", s.Resource, s.GenBlocks, s.KillBlocks)
}

// OperationSequenceInfo records that Second became live while First was live,
// and that both guard different resources.
type OperationSequenceInfo struct {
	First  StatementID
	Second StatementID
}

func (o OperationSequenceInfo) String() string {
	return fmt.Sprintf("%s → %s", o.First, o.Second)
}

// Key is the uncolored form of the pair.
func (o OperationSequenceInfo) Key() string {
	return o.First.Key() + " -> " + o.Second.Key()
}

// LockGuards is the lock guard table produced by the collector. It covers
// every function of the current pass and is never written during analysis.
type LockGuards map[StatementID]StatementInfo

// MustGet returns the info of a statement, and panics if it is unknown.
func (t LockGuards) MustGet(id StatementID) StatementInfo {
	info, ok := t[id]
	if !ok {
		panic(fmt.Errorf("lock guard %s is missing from the lock guard table", id.Key()))
	}
	return info
}

// ResourceOf returns the resource guarded by a statement.
func (t LockGuards) ResourceOf(id StatementID) Resource {
	return t.MustGet(id).Resource
}

// OfFunction returns the statements of the table owned by fn, sorted.
func (t LockGuards) OfFunction(fn FunctionID) []StatementID {
	ids := []StatementID{}
	for id := range t {
		if id.Fn == fn {
			ids = append(ids, id)
		}
	}
	SortStatements(ids)
	return ids
}

// Functions returns every function with at least one lock guard, sorted.
func (t LockGuards) Functions() []FunctionID {
	seen := map[FunctionID]bool{}
	fns := []FunctionID{}
	for id := range t {
		if !seen[id.Fn] {
			seen[id.Fn] = true
			fns = append(fns, id.Fn)
		}
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i] < fns[j] })
	return fns
}

// SortStatements sorts statement handles in place.
func SortStatements(ids []StatementID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}
