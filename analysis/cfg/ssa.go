package cfg

import (
	"golang.org/x/tools/go/ssa"
)

// SSAFunction adapts the basic blocks of an already built SSA function.
type SSAFunction struct {
	fun *ssa.Function
}

// FromSSA wraps fun as a Cfg. Block indices coincide with ssa.BasicBlock.Index.
// The recover block, if any, is part of Blocks but has no predecessors.
func FromSSA(fun *ssa.Function) SSAFunction {
	return SSAFunction{fun}
}

func (f SSAFunction) Function() *ssa.Function {
	return f.fun
}

func (f SSAFunction) Entry() Block {
	return 0
}

func (f SSAFunction) Blocks() []Block {
	bs := make([]Block, len(f.fun.Blocks))
	for i, b := range f.fun.Blocks {
		bs[i] = Block(b.Index)
	}
	return bs
}

func (f SSAFunction) Preds(b Block) []Block {
	return blocksOf(f.fun.Blocks[b].Preds)
}

func (f SSAFunction) Succs(b Block) []Block {
	return blocksOf(f.fun.Blocks[b].Succs)
}

// Comment returns the SSA comment of a block, e.g. "for.body".
func (f SSAFunction) Comment(b Block) string {
	return f.fun.Blocks[b].Comment
}

func blocksOf(bbs []*ssa.BasicBlock) []Block {
	res := make([]Block, len(bbs))
	for i, bb := range bbs {
		res[i] = Block(bb.Index)
	}
	return res
}

var _ Cfg = SSAFunction{}
