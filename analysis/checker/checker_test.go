package checker

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	"github.com/cs-au-dk/guardflow/analysis/genkill"
	tu "github.com/cs-au-dk/guardflow/testutil"
)

// Two functions over a shared table: f takes A then B, g takes C while
// holding the guard inherited from f.
func twoFunctions() (defs.LockGuards, []Task) {
	f := tu.NewFixture("f", cfg.Chain(3))
	a := f.Guard(0, "A", tu.Blocks(0), nil)
	f.Guard(1, "B", tu.Blocks(1), nil)
	f.Foreign("g", 0, "C", tu.Blocks(0), nil)
	f.Foreign("h", 0, "D", tu.Blocks(0), nil)

	G := cfg.Chain(2)
	return f.Guards, []Task{
		{Fn: "f", Cfg: f.Cfg},
		{Fn: "g", Cfg: G, Context: tu.Set(a)},
		{Fn: "h", Cfg: cfg.New(1)},
	}
}

func TestRun(t *testing.T) {
	table, tasks := twoFunctions()

	for _, jobs := range []int{0, 1, 4} {
		t.Run(fmt.Sprint(jobs), func(t *testing.T) {
			results, err := Run(context.Background(), table, tasks, Config{Jobs: jobs})
			if err != nil {
				t.Fatal(err)
			}

			if fns := Functions(results); !reflect.DeepEqual(fns, []defs.FunctionID{"f", "g", "h"}) {
				t.Fatalf("Unexpected results for %v", fns)
			}

			if keys := tu.PairKeys(Dedup(results["f"].Pairs)); !reflect.DeepEqual(keys, []string{"f#0 -> f#1"}) {
				t.Errorf("Pairs of f: %v", keys)
			}
			if keys := tu.PairKeys(results["g"].Pairs); !reflect.DeepEqual(keys, []string{"f#0 -> g#0"}) {
				t.Errorf("Pairs of g: %v", keys)
			}
			if len(results["h"].Pairs) != 0 || len(results["h"].Live) != 0 {
				t.Errorf("h should be trivial: %v", results["h"])
			}

			if live := results["g"].Live[1]; live.Keys() != "{f#0, g#0}" {
				t.Errorf("Live at g:b1: %s", live.Keys())
			}
			if _, ok := results["f"].Live[0]; ok {
				t.Error("Nothing is live at the entry of f")
			}
		})
	}
}

func TestRunOptions(t *testing.T) {
	table, tasks := twoFunctions()

	results, err := Run(context.Background(), table, tasks, Config{
		Options: []genkill.Option{genkill.WithRunLimit(0)},
	})
	if err != nil {
		t.Fatal(err)
	}

	for fn, res := range results {
		if res.Stats.Iterations != 1 {
			t.Errorf("%s: expected one iteration, got %v", fn, res.Stats)
		}
		if res.Stats.Aborted != (fn != "h") {
			t.Errorf("%s: unexpected stats %v", fn, res.Stats)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	table, tasks := twoFunctions()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, table, tasks, Config{Jobs: 2}); err == nil {
		t.Error("Expected a cancelled run to fail")
	}
}

func TestRunDuplicateTask(t *testing.T) {
	table, tasks := twoFunctions()
	tasks = append(tasks, tasks[0])

	if _, err := Run(context.Background(), table, tasks, Config{}); err == nil {
		t.Error("Expected an error for a function analyzed twice")
	}
}

func TestDedup(t *testing.T) {
	p := func(a, b int) defs.OperationSequenceInfo {
		return defs.OperationSequenceInfo{
			First:  defs.StatementID{Fn: "f", Local: a},
			Second: defs.StatementID{Fn: "f", Local: b},
		}
	}

	got := Dedup([]defs.OperationSequenceInfo{p(1, 2), p(1, 3), p(1, 2), p(2, 1), p(1, 3)})
	expected := []defs.OperationSequenceInfo{p(1, 2), p(1, 3), p(2, 1)}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if got := Dedup(nil); len(got) != 0 {
		t.Errorf("Expected no pairs, got %v", got)
	}
}

func TestClusters(t *testing.T) {
	f := tu.NewFixture("f", cfg.Chain(4))
	a := f.Guard(0, "A", nil, nil)
	b := f.Guard(1, "B", nil, nil)
	c := f.Guard(2, "C", nil, nil)
	d := f.Guard(3, "D", nil, nil)
	e := f.Guard(4, "E", nil, nil)
	a2 := f.Guard(5, "A", nil, nil)

	results := map[defs.FunctionID]*Result{
		"f": {Pairs: []defs.OperationSequenceInfo{{First: a, Second: b}, {First: d, Second: e}}},
		"g": {Pairs: []defs.OperationSequenceInfo{{First: c, Second: a2}}},
		"h": {},
	}

	got := Clusters(f.Guards, results)
	expected := [][]defs.Resource{{"A", "B", "C"}, {"D", "E"}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestClustersOfRun(t *testing.T) {
	table, tasks := twoFunctions()

	results, err := Run(context.Background(), table, tasks, Config{Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}

	got := Clusters(table, results)
	expected := [][]defs.Resource{{"A", "B", "C"}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
