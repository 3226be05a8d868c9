package upfront

import (
	"strings"
	"testing"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/analysis/defs"
)

func TestLoadProblem(t *testing.T) {
	prob, err := LoadProblem("testdata/selfloop.yaml")
	if err != nil {
		t.Fatal(err)
	}

	if len(prob.Functions) != 2 || len(prob.Guards) != 3 {
		t.Fatalf("Expected 2 functions and 3 guards, got %d and %d",
			len(prob.Functions), len(prob.Guards))
	}

	mainFn, ok := prob.Function("main")
	if !ok {
		t.Fatal("Missing function main")
	}
	if mainFn.Cfg.Entry() != 0 || mainFn.Cfg.NumBlocks() != 3 || !mainFn.Context.Empty() {
		t.Errorf("Unexpected main: entry %v, %d blocks, context %s",
			mainFn.Cfg.Entry(), mainFn.Cfg.NumBlocks(), mainFn.Context.Keys())
	}
	if succs := mainFn.Cfg.Succs(1); len(succs) != 2 || succs[0] != 1 || succs[1] != 2 {
		t.Errorf("Unexpected successors of b1: %v", succs)
	}

	worker, _ := prob.Function("worker")
	if worker.Cfg.Entry() != 1 {
		t.Errorf("Expected worker to be entered at b1, got %v", worker.Cfg.Entry())
	}
	if worker.Context.Keys() != "{main#1}" {
		t.Errorf("Unexpected worker context %s", worker.Context.Keys())
	}

	info := prob.Guards.MustGet(defs.StatementID{Fn: "main", Local: 3})
	if info.Resource != "L3" ||
		len(info.GenBlocks) != 1 || info.GenBlocks[0] != cfg.Block(1) ||
		len(info.KillBlocks) != 1 || info.KillBlocks[0] != cfg.Block(1) {
		t.Errorf("Unexpected main#3: %v", info)
	}

	if _, ok := prob.Function("nothing"); ok {
		t.Error("Found a function that is not part of the problem")
	}
}

func TestLoadProblemMissingFile(t *testing.T) {
	if _, err := LoadProblem("testdata/does-not-exist.yaml"); err == nil {
		t.Error("Expected an error")
	}
}

func TestParseProblemErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		src      string
		contains string
	}{
		"syntax": {
			src:      "functions: [",
			contains: "parsing problem",
		},
		"unknown field": {
			src:      "functions:\n  - name: f\n    blocks: 1\n    exit: 0\n",
			contains: "parsing problem",
		},
		"no blocks": {
			src:      "functions:\n  - name: f\n",
			contains: "positive number of blocks",
		},
		"unnamed": {
			src:      "functions:\n  - blocks: 1\n",
			contains: "without a name",
		},
		"duplicate function": {
			src:      "functions:\n  - {name: f, blocks: 1}\n  - {name: f, blocks: 2}\n",
			contains: "more than once",
		},
		"entry out of range": {
			src:      "functions:\n  - {name: f, blocks: 2, entry: 2}\n",
			contains: "entry block 2",
		},
		"edge out of range": {
			src:      "functions:\n  - {name: f, blocks: 2, edges: [[0, 2]]}\n",
			contains: "out of range",
		},
		"malformed edge": {
			src:      "functions:\n  - {name: f, blocks: 2, edges: [[0]]}\n",
			contains: "malformed edge",
		},
		"malformed guard id": {
			src:      "guards:\n  - {id: f, resource: M}\n",
			contains: "guard 0",
		},
		"duplicate guard": {
			src:      "guards:\n  - {id: f#0, resource: M}\n  - {id: f#0, resource: N}\n",
			contains: "f#0 is defined more than once",
		},
		"guard without resource": {
			src:      "guards:\n  - {id: f#0}\n",
			contains: "no resource",
		},
		"unknown context guard": {
			src:      "functions:\n  - {name: f, blocks: 1, context: [g#0]}\n",
			contains: "unknown guard g#0",
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseProblem([]byte(tc.src))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("Expected %q in error: %v", tc.contains, err)
			}
		})
	}
}

func TestParseProblemEmpty(t *testing.T) {
	prob, err := ParseProblem(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(prob.Functions) != 0 || len(prob.Guards) != 0 {
		t.Errorf("Expected an empty problem, got %v", prob)
	}
}
