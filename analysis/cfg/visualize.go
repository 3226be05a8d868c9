package cfg

import (
	"fmt"

	"github.com/cs-au-dk/guardflow/utils/dot"
	"github.com/cs-au-dk/guardflow/utils/graph"
)

// Visualize creates a Dot Graph of the control-flow graph. The optional label
// function supplies extra text for every block, and entry blocks are drawn
// with a double border.
func Visualize(c Cfg, title string, label func(Block) string) *dot.DotGraph {
	return AsGraph(c).ToDotGraph(c.Blocks(), &graph.VisualizationConfig[Block]{
		Title: title,
		NodeAttrs: func(b Block) (string, dot.DotAttrs) {
			text := b.String()
			if label != nil {
				if extra := label(b); extra != "" {
					text += "\n" + extra
				}
			}

			attrs := dot.DotAttrs{"label": text}
			if b == c.Entry() {
				attrs["peripheries"] = "2"
			}
			return b.String(), attrs
		},
		EdgeAttrs: func(from, to Block) dot.DotAttrs {
			if to <= from {
				return dot.DotAttrs{"style": "dashed"}
			}
			return nil
		},
	})
}

// SSALabel labels the blocks of an SSA function with their comment and
// instruction count.
func SSALabel(f SSAFunction) func(Block) string {
	return func(b Block) string {
		return fmt.Sprintf("%s (%d instrs)", f.Comment(b), len(f.fun.Blocks[b].Instrs))
	}
}
