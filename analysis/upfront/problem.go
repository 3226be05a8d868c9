// Package upfront reads analysis problems: the control-flow graphs of the
// functions to analyze, the lock guard table, and the guards inherited by
// every function from its callers.
package upfront

import (
	"fmt"
	"os"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	L "github.com/cs-au-dk/guardflow/analysis/lattice"
	"github.com/cs-au-dk/guardflow/utils"

	"gopkg.in/yaml.v2"
)

var verbosePrint = utils.VerbosePrint

// Function is a function of a problem, ready to be handed to the solver.
type Function struct {
	ID      defs.FunctionID
	Cfg     *cfg.Graph
	Context L.GuardSet
}

// Problem is a parsed problem file.
type Problem struct {
	Functions []Function
	Guards    defs.LockGuards
}

// Function returns the function with the given name.
func (p *Problem) Function(name string) (Function, bool) {
	for _, fn := range p.Functions {
		if string(fn.ID) == name {
			return fn, true
		}
	}
	return Function{}, false
}

type rawFunction struct {
	Name    string   `yaml:"name"`
	Entry   int      `yaml:"entry"`
	Blocks  int      `yaml:"blocks"`
	Edges   [][]int  `yaml:"edges"`
	Context []string `yaml:"context"`
}

type rawGuard struct {
	ID       string `yaml:"id"`
	Resource string `yaml:"resource"`
	Gen      []int  `yaml:"gen"`
	Kill     []int  `yaml:"kill"`
}

type rawProblem struct {
	Functions []rawFunction `yaml:"functions"`
	Guards    []rawGuard    `yaml:"guards"`
}

// LoadProblem reads and parses the problem file at path.
func LoadProblem(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading problem: %w", err)
	}

	prob, err := ParseProblem(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prob, nil
}

// ParseProblem parses a problem from its YAML source.
//
// Functions must have distinct names and at least one block. Edges and entry
// blocks must be in range. Guards must have distinct ids, and every guard
// listed in a context must be defined. Gen and kill blocks are copied as is:
// block references of a guard are not checked against its function.
func ParseProblem(data []byte) (*Problem, error) {
	raw := rawProblem{}
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing problem: %w", err)
	}

	prob := &Problem{Guards: make(defs.LockGuards, len(raw.Guards))}

	for i, rg := range raw.Guards {
		id, err := defs.ParseStatementID(rg.ID)
		if err != nil {
			return nil, fmt.Errorf("guard %d: %w", i, err)
		}
		if _, dup := prob.Guards[id]; dup {
			return nil, fmt.Errorf("guard %s is defined more than once", id.Key())
		}
		if rg.Resource == "" {
			return nil, fmt.Errorf("guard %s has no resource", id.Key())
		}
		prob.Guards[id] = defs.StatementInfo{
			Resource:   defs.Resource(rg.Resource),
			GenBlocks:  toBlocks(rg.Gen),
			KillBlocks: toBlocks(rg.Kill),
		}
	}

	seen := make(map[string]bool, len(raw.Functions))
	for _, rf := range raw.Functions {
		if rf.Name == "" {
			return nil, fmt.Errorf("function without a name")
		}
		if seen[rf.Name] {
			return nil, fmt.Errorf("function %s is defined more than once", rf.Name)
		}
		seen[rf.Name] = true

		fn, err := prob.function(rf)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", rf.Name, err)
		}
		prob.Functions = append(prob.Functions, fn)
	}

	verbosePrint("Parsed %d functions and %d lock guards\n", len(prob.Functions), len(prob.Guards))

	return prob, nil
}

func (p *Problem) function(rf rawFunction) (Function, error) {
	if rf.Blocks <= 0 {
		return Function{}, fmt.Errorf("expected a positive number of blocks, got %d", rf.Blocks)
	}
	inRange := func(b int) bool { return 0 <= b && b < rf.Blocks }

	if !inRange(rf.Entry) {
		return Function{}, fmt.Errorf("entry block %d is out of range", rf.Entry)
	}

	G := cfg.New(rf.Blocks).SetEntry(cfg.Block(rf.Entry))
	for _, edge := range rf.Edges {
		if len(edge) != 2 {
			return Function{}, fmt.Errorf("malformed edge %v: expected [from, to]", edge)
		}
		if !inRange(edge[0]) || !inRange(edge[1]) {
			return Function{}, fmt.Errorf("edge %d → %d is out of range", edge[0], edge[1])
		}
		G.AddEdge(cfg.Block(edge[0]), cfg.Block(edge[1]))
	}

	var context L.GuardSet
	for _, str := range rf.Context {
		id, err := defs.ParseStatementID(str)
		if err != nil {
			return Function{}, fmt.Errorf("context: %w", err)
		}
		if _, ok := p.Guards[id]; !ok {
			return Function{}, fmt.Errorf("context: unknown guard %s", id.Key())
		}
		context = context.Add(id)
	}

	return Function{
		ID:      defs.FunctionID(rf.Name),
		Cfg:     G,
		Context: context,
	}, nil
}

func toBlocks(bs []int) []cfg.Block {
	if len(bs) == 0 {
		return nil
	}
	res := make([]cfg.Block, len(bs))
	for i, b := range bs {
		res[i] = cfg.Block(b)
	}
	return res
}
