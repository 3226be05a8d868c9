package main

import (
	"fmt"
	"log"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/pkgutil"
	"github.com/cs-au-dk/guardflow/utils/dot"
)

// cfgToDot renders the control-flow graph of -fun, annotated with the
// solver state of every block.
func (p pipeline) cfgToDot() {
	if opts.Function() == "" {
		log.Fatalln("No function provided. Use -fun")
	}

	results := p.run()
	res := results[p.tasks()[0].Fn]

	render(opts.Function(), res.Solver.Visualize())
}

// goCfg renders the control-flow graph of the Go function -fun, found in the
// packages matching path.
func goCfg(path string) {
	if opts.Function() == "" {
		log.Fatalln("No function provided. Use -fun")
	}

	pkgs, err := pkgutil.LoadPackages(pkgutil.LoadConfig{
		GoPath:       opts.GoPath(),
		ModulePath:   opts.ModulePath(),
		IncludeTests: opts.IncludeTests(),
	}, path)
	if err != nil {
		log.Println("Failed pkgutil.LoadPackages")
		log.Fatalln(err)
	}

	prog := pkgutil.BuildSSA(pkgs)
	fun, err := pkgutil.FindFunction(prog, opts.Function())
	if err != nil {
		log.Fatalln(err)
	}

	opts.OnVerbose(func() {
		fun.WriteTo(log.Writer())
	})

	G := cfg.FromSSA(fun)
	render(fun.Name(), cfg.Visualize(G, fun.String(), cfg.SSALabel(G)))
}

func render(name string, dg *dot.DotGraph) {
	src, err := dg.Bytes()
	if err != nil {
		log.Fatalln(err)
	}

	img, err := dot.DotToImage(name, opts.OutputFormat(), src)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Println(img)
}
