package pkgutil

import (
	"go/types"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// CheckPkgInGoroot checks whether a package is declared in GOROOT.
func CheckPkgInGoroot(pkg *types.Package) bool {
	path := filepath.Join(runtime.GOROOT(), "src", pkg.Path())
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return true
	}
	return false
}

// CheckInGoroot is true iff. the function is in a package declared in GOROOT.
func CheckInGoroot(fun *ssa.Function) bool {
	return fun != nil && fun.Pkg != nil &&
		CheckPkgInGoroot(fun.Pkg.Pkg)
}

// AllPackages returns the packages of prog that are not test mains, sorted
// by import path. A package built both on its own and as part of a test
// variant appears once, as the variant with the most members.
func AllPackages(prog *ssa.Program) []*ssa.Package {
	byPath := make(map[string]*ssa.Package)

	for _, pkg := range prog.AllPackages() {
		path := pkg.Pkg.Path()
		if strings.HasSuffix(path, ".test") {
			continue
		}

		if other, ok := byPath[path]; !ok || len(pkg.Members) > len(other.Members) {
			byPath[path] = pkg
		}
	}

	res := make([]*ssa.Package, 0, len(byPath))
	for _, pkg := range byPath {
		res = append(res, pkg)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Pkg.Path() < res[j].Pkg.Path()
	})

	return res
}
