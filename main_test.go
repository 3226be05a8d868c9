package main

import (
	"reflect"
	"testing"

	"github.com/cs-au-dk/guardflow/analysis/checker"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	u "github.com/cs-au-dk/guardflow/analysis/upfront"
	tu "github.com/cs-au-dk/guardflow/testutil"
)

func loadExample(t *testing.T, name string) pipeline {
	prob, err := u.LoadProblem("examples/problems/" + name + ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	return pipeline{prob}
}

func TestCallersExample(t *testing.T) {
	pl := loadExample(t, "callers")
	results := pl.run()

	for fn, expected := range map[defs.FunctionID][]string{
		"serve":   {"serve#0 -> serve#1", "serve#0 -> serve#2"},
		"worker":  {"serve#0 -> worker#0"},
		"publish": {},
	} {
		got := tu.PairKeys(checker.Dedup(results[fn].Pairs))
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("%s: expected %v, got %v", fn, expected, got)
		}
	}

	clusters := checker.Clusters(pl.prob.Guards, results)
	expected := [][]defs.Resource{{"cache.mu", "log.mu", "queue.mu", "state.mu"}}
	if !reflect.DeepEqual(clusters, expected) {
		t.Errorf("Expected clusters %v, got %v", expected, clusters)
	}
}

func TestExamples(t *testing.T) {
	for name, expected := range map[string][]string{
		"straight-line": {"transfer#1 -> transfer#2"},
		"self-loop":     {"audit#1 -> audit#3"},
	} {
		t.Run(name, func(t *testing.T) {
			pl := loadExample(t, name)
			for fn, res := range pl.run() {
				if res.Stats.Aborted {
					t.Errorf("%s: run limit reached", fn)
				}
				if got := tu.PairKeys(checker.Dedup(res.Pairs)); !reflect.DeepEqual(got, expected) {
					t.Errorf("%s: expected %v, got %v", fn, expected, got)
				}
			}
		})
	}
}
