package sir

// DominanceInfo answers dominance queries over one function's CFG. It is
// built fresh per verification call from terminator successor edges, so it is
// trustworthy even when the recorded predecessor lists are not.
type DominanceInfo struct {
	fn  *Function
	dom map[*BasicBlock]map[*BasicBlock]bool

	instIndex map[Instruction]int
}

// NewDominanceInfo computes dominator sets for f with the classic iterative
// data-flow algorithm. Blocks unreachable from the entry end up dominated by
// every block, which makes their instructions vacuously well-dominated.
func NewDominanceInfo(f *Function) *DominanceInfo {
	d := &DominanceInfo{
		fn:        f,
		dom:       make(map[*BasicBlock]map[*BasicBlock]bool, len(f.Blocks)),
		instIndex: make(map[Instruction]int),
	}
	for _, bb := range f.Blocks {
		for idx, inst := range bb.Instrs {
			d.instIndex[inst] = idx
		}
	}
	if len(f.Blocks) == 0 {
		return d
	}

	preds := make(map[*BasicBlock][]*BasicBlock, len(f.Blocks))
	for _, bb := range f.Blocks {
		if t := bb.Terminator(); t != nil {
			for _, s := range t.Successors() {
				preds[s] = append(preds[s], bb)
			}
		}
	}

	entry := f.Blocks[0]
	all := make(map[*BasicBlock]bool, len(f.Blocks))
	for _, bb := range f.Blocks {
		all[bb] = true
	}
	d.dom[entry] = map[*BasicBlock]bool{entry: true}
	for _, bb := range f.Blocks[1:] {
		d.dom[bb] = copySet(all)
	}

	for changed := true; changed; {
		changed = false
		for _, bb := range f.Blocks[1:] {
			next := copySet(all)
			if len(preds[bb]) == 0 {
				// Unreachable block: the full set stands.
			} else {
				for _, p := range preds[bb] {
					intersect(next, d.dom[p])
				}
			}
			next[bb] = true
			if !sameSet(next, d.dom[bb]) {
				d.dom[bb] = next
				changed = true
			}
		}
	}
	return d
}

func copySet(s map[*BasicBlock]bool) map[*BasicBlock]bool {
	out := make(map[*BasicBlock]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func intersect(dst, src map[*BasicBlock]bool) {
	for k := range dst {
		if !src[k] {
			delete(dst, k)
		}
	}
}

func sameSet(a, b map[*BasicBlock]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// Dominates reports whether every path from the entry to b passes through a.
func (d *DominanceInfo) Dominates(a, b *BasicBlock) bool {
	return d.dom[b][a]
}

// ProperlyDominatesBlock is Dominates restricted to distinct blocks.
func (d *DominanceInfo) ProperlyDominatesBlock(a, b *BasicBlock) bool {
	return a != b && d.Dominates(a, b)
}

// ProperlyDominates reports whether the instruction def executes strictly
// before use on every path reaching use.
func (d *DominanceInfo) ProperlyDominates(def, use Instruction) bool {
	if def.Parent() == use.Parent() {
		return d.instIndex[def] < d.instIndex[use]
	}
	return d.ProperlyDominatesBlock(def.Parent(), use.Parent())
}

// ValueDominates reports whether the definition of v is available at use.
// Block parameters dominate every instruction of any block their block
// dominates, including their own.
func (d *DominanceInfo) ValueDominates(v Value, use Instruction) bool {
	switch def := v.(type) {
	case *Result:
		return d.ProperlyDominates(def.Inst, use)
	case *BlockParam:
		return d.Dominates(def.Block, use.Parent())
	default:
		return false
	}
}
