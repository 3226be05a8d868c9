package genkill

import (
	"fmt"
	"io"
	"strings"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/utils/dot"
)

// Visualize draws the control-flow graph with the gen, kill, entry and exit
// sets of every block.
func (g *GenKill) Visualize() *dot.DotGraph {
	return cfg.Visualize(g.cfg, string(g.fn), func(b cfg.Block) string {
		lines := []string{}
		if gen := g.gen[b]; !gen.Empty() {
			lines = append(lines, "gen "+gen.Keys())
		}
		if kill := g.kill[b]; !kill.Empty() {
			lines = append(lines, "kill "+kill.Keys())
		}
		in, _ := g.Before(b)
		out, _ := g.After(b)
		lines = append(lines, "in "+in.Keys(), "out "+out.Keys())
		return strings.Join(lines, "\n")
	})
}

// WriteLive prints the live guards at the entry of every block, one block
// per line, in block order.
func (g *GenKill) WriteLive(w io.Writer) error {
	for _, b := range g.cfg.Blocks() {
		in, _ := g.Before(b)
		if _, err := fmt.Fprintf(w, "%s %v: %s\n", g.fn.String(), b, in); err != nil {
			return err
		}
	}
	return nil
}
