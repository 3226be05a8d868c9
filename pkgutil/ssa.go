package pkgutil

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// BuildSSA creates and builds the SSA program of the loaded packages.
func BuildSSA(pkgs []*packages.Package) *ssa.Program {
	prog, _ := ssautil.AllPackages(pkgs, ssa.SanityCheckFunctions|ssa.BuildSerially)
	prog.Build()
	return prog
}

// Functions returns the source functions declared outside GOROOT, including
// methods and closures, sorted by name. Only functions of the packages
// selected by AllPackages are included.
func Functions(prog *ssa.Program) []*ssa.Function {
	var res []*ssa.Function

	var visit func(fun *ssa.Function)
	visit = func(fun *ssa.Function) {
		if fun.Blocks == nil {
			return
		}
		res = append(res, fun)
		for _, anon := range fun.AnonFuncs {
			visit(anon)
		}
	}

	pkgs := make(map[*ssa.Package]bool)
	for _, pkg := range AllPackages(prog) {
		pkgs[pkg] = true
	}

	for fun := range ssautil.AllFunctions(prog) {
		if fun.Synthetic != "" || fun.Parent() != nil || !pkgs[fun.Pkg] || CheckInGoroot(fun) {
			continue
		}
		visit(fun)
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].String() < res[j].String()
	})
	return res
}

// FindFunction looks up a function by its qualified name, e.g.
// "example.com/pkg.Fn", "(*example.com/pkg.T).M" or "example.com/pkg.Fn$1",
// or by its unqualified name if that is unique.
func FindFunction(prog *ssa.Program, name string) (*ssa.Function, error) {
	var candidates []*ssa.Function
	for _, fun := range Functions(prog) {
		if fun.String() == name {
			return fun, nil
		}
		if fun.Name() == name || fun.RelString(fun.Pkg.Pkg) == name {
			candidates = append(candidates, fun)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("function %q not found", name)
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, fun := range candidates {
			names[i] = fun.String()
		}
		return nil, fmt.Errorf("function %q is ambiguous: %s", name, strings.Join(names, ", "))
	}
}
