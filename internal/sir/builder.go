package sir

import "fmt"

// Construction helpers. They keep the operand/use graph and the
// predecessor/successor mirrors consistent; the verifier assumes nothing
// about how IR was built and re-checks both.

// NewModule creates an empty module at the given stage.
func NewModule(name string, stage Stage) *Module {
	return &Module{Name: name, Stage: stage}
}

// NewFunction creates a function, appends it to the module and returns it.
func (m *Module) NewFunction(name string, linkage Linkage, ty *FunctionType) *Function {
	f := &Function{Name: name, Linkage: linkage, Type: ty}
	m.Functions = append(m.Functions, f)
	return f
}

// NewGlobal creates a global variable, appends it to the module and returns it.
func (m *Module) NewGlobal(name string, linkage Linkage, ty Type) *GlobalVariable {
	g := &GlobalVariable{Name: name, Linkage: linkage, Type: ty}
	m.Globals = append(m.Globals, g)
	return g
}

// NewBlock appends a fresh block to the function. An empty name yields bbN.
func (f *Function) NewBlock(name string) *BasicBlock {
	if name == "" {
		name = fmt.Sprintf("bb%d", len(f.Blocks))
	}
	bb := &BasicBlock{Name: name, Parent: f}
	f.Blocks = append(f.Blocks, bb)
	return bb
}

// AddParam appends a typed parameter to the block and returns it.
func (bb *BasicBlock) AddParam(ty Type) *BlockParam {
	p := &BlockParam{
		Block: bb,
		Index: len(bb.Params),
		typ:   ty,
	}
	if bb.Parent != nil {
		p.name = fmt.Sprintf("%%%d", bb.Parent.nextID())
	}
	bb.Params = append(bb.Params, p)
	return p
}

// Append adds an instruction to the end of the block, names its results and,
// for terminators, records the successor edges and their predecessor
// mirrors.
func (bb *BasicBlock) Append(inst Instruction) Instruction {
	b := inst.base()
	b.parent = bb
	if bb.Parent != nil {
		for _, r := range b.res {
			r.name = fmt.Sprintf("%%%d", bb.Parent.nextID())
		}
	}
	bb.Instrs = append(bb.Instrs, inst)
	if t, ok := inst.(Terminator); ok {
		for _, s := range t.Successors() {
			bb.Succs = append(bb.Succs, s)
			s.Preds = append(s.Preds, bb)
		}
	}
	return inst
}
