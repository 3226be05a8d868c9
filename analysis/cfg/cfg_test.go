package cfg

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

func TestChain(t *testing.T) {
	g := Chain(3)

	if g.Entry() != 0 {
		t.Errorf("Entry() = %v, expected b0", g.Entry())
	}
	if n := len(g.Preds(0)); n != 0 {
		t.Errorf("Entry block has %d predecessors", n)
	}
	if succs := g.Succs(1); len(succs) != 1 || succs[0] != 2 {
		t.Errorf("Succs(b1) = %v, expected [b2]", succs)
	}
	if preds := g.Preds(2); len(preds) != 1 || preds[0] != 1 {
		t.Errorf("Preds(b2) = %v, expected [b1]", preds)
	}
}

func TestEdgeOrderIsKept(t *testing.T) {
	g := New(4).
		AddEdge(0, 3).
		AddEdge(0, 1).
		AddEdge(0, 2)

	succs := g.Succs(0)
	expected := []Block{3, 1, 2}
	for i := range expected {
		if succs[i] != expected[i] {
			t.Fatalf("Succs(b0) = %v, expected %v", succs, expected)
		}
	}
}

func TestAddEdgeOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected a panic for an edge to a missing block")
		}
	}()

	New(2).AddEdge(0, 2)
}

func TestReversePostorder(t *testing.T) {
	// 0 → 1 → 2, 1 → 1, 3 unreachable
	g := New(4).
		AddEdge(0, 1).
		AddEdge(1, 1).
		AddEdge(1, 2)

	order := ReversePostorder(g)
	expected := []Block{0, 1, 2, 3}
	if len(order) != len(expected) {
		t.Fatalf("ReversePostorder() = %v, expected %v", order, expected)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("ReversePostorder() = %v, expected %v", order, expected)
		}
	}
}

func buildSSA(t *testing.T, src string) *ssa.Package {
	t.Helper()

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", src, 0)
	if err != nil {
		t.Fatal(err)
	}

	pkg := types.NewPackage("test", "test")
	spkg, _, err := ssautil.BuildPackage(
		&types.Config{Importer: importer.Default()},
		fset, pkg, []*ast.File{f}, ssa.SanityCheckFunctions,
	)
	if err != nil {
		t.Fatal(err)
	}
	return spkg
}

func TestFromSSA(t *testing.T) {
	spkg := buildSSA(t, `package test

func loop(n int) int {
	s := 0
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			s += i
		}
	}
	return s
}`)

	fun := spkg.Func("loop")
	c := FromSSA(fun)

	if len(c.Blocks()) != len(fun.Blocks) {
		t.Fatalf("Expected %d blocks, got %d", len(fun.Blocks), len(c.Blocks()))
	}

	for _, bb := range fun.Blocks {
		b := Block(bb.Index)
		if len(c.Succs(b)) != len(bb.Succs) {
			t.Errorf("%v: expected %d successors, got %d", b, len(bb.Succs), len(c.Succs(b)))
		}
		if len(c.Preds(b)) != len(bb.Preds) {
			t.Errorf("%v: expected %d predecessors, got %d", b, len(bb.Preds), len(c.Preds(b)))
		}
		for _, succ := range c.Succs(b) {
			found := false
			for _, pred := range c.Preds(succ) {
				found = found || pred == b
			}
			if !found {
				t.Errorf("%v is a successor of %v but not the other way around", succ, b)
			}
		}
	}

	if len(c.Preds(c.Entry())) != 0 {
		t.Errorf("Entry block should have no predecessors")
	}

	// The loop header is reached by a back-edge.
	hasBackEdge := false
	for _, b := range c.Blocks() {
		for _, succ := range c.Succs(b) {
			if succ <= b {
				hasBackEdge = true
			}
		}
	}
	if !hasBackEdge {
		t.Error("Expected a back-edge in the CFG of a loop")
	}
}

func TestVisualize(t *testing.T) {
	g := New(3).AddEdge(0, 1).AddEdge(1, 2).AddEdge(2, 1)

	dg := Visualize(g, "loop", func(b Block) string {
		if b == 1 {
			return "header"
		}
		return ""
	})

	src, err := dg.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	out := string(src)

	for _, expected := range []string{
		`label="loop"`,
		`"b0" [ label="b0"; peripheries="2"; ]`,
		`"b2" -> "b1" [ style="dashed"; ]`,
		`header`,
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected %q in:\n%s", expected, out)
		}
	}
}
