package sir

import "fmt"

// The verifier enforces SIR's structural and type-level invariants. It is
// fail-fast: the first violation aborts the walk and is reported as a
// *VerifyError. Internally a violation is a typed panic; the public entry
// points recover it and return it, so hosts pick their own termination
// strategy.

type verifier struct {
	module *Module
	fn     *Function
	dom    *DominanceInfo
	cur    Instruction
}

// VerifyFunction checks every invariant of one function. The module supplies
// stage and table-lookup context; it may be nil for a function verified in
// isolation, in which case module-dependent checks are skipped.
func VerifyFunction(m *Module, f *Function) (err error) {
	defer func() { err = recoverVerify(recover(), err) }()
	v := &verifier{module: m, fn: f}
	v.run()
	return nil
}

func recoverVerify(r any, prev error) error {
	if r == nil {
		return prev
	}
	if ve, ok := r.(*VerifyError); ok {
		return ve
	}
	panic(r)
}

func (v *verifier) require(cond bool, complaint string) {
	if !cond {
		v.fail(complaint, "")
	}
}

func (v *verifier) requiref(cond bool, format string, args ...any) {
	if !cond {
		v.fail(fmt.Sprintf(format, args...), "")
	}
}

func (v *verifier) fail(complaint, condition string) {
	e := &VerifyError{Complaint: complaint, Condition: condition}
	if v.fn != nil {
		e.Function = v.fn.Name
	}
	if v.cur != nil {
		e.InstDump = FormatInstruction(v.cur)
		if bb := v.cur.Parent(); bb != nil {
			e.BlockDump = FormatBlock(bb)
		}
		if span := v.cur.Loc().Span; span.IsValid() {
			e.Detail = func() string { return "at " + span.String() }
		}
	}
	panic(e)
}

func (v *verifier) requireSameType(a, b Type, complaint string) {
	if !SameType(a, b) {
		v.fail(complaint, fmt.Sprintf("%s vs %s", a, b))
	}
}

func (v *verifier) requireObject(t Type, complaint string) {
	v.require(t.IsObject(), complaint)
}

func (v *verifier) requireAddress(t Type, complaint string) {
	v.require(t.IsAddress(), complaint)
}

func (v *verifier) requireReference(t Type, complaint string) {
	v.require(t.IsObject() && t.HasReferenceSemantics(), complaint)
}

// requireObjectFunction unwraps an object-category function type.
func (v *verifier) requireObjectFunction(t Type, complaint string) *FunctionType {
	ft := t.FunctionDesc()
	v.require(t.IsObject() && ft != nil, complaint)
	return ft
}

func (v *verifier) run() {
	f := v.fn
	if f.External {
		v.require(f.Linkage.IsAvailableExternally(),
			"external function declaration must have available-externally linkage")
		return
	}
	v.require(len(f.Blocks) > 0, "function definition has no basic blocks")

	// Block shape must hold before dominance can be computed.
	for _, bb := range f.Blocks {
		v.require(len(bb.Instrs) > 0, "basic block must have at least one instruction")
		for idx, inst := range bb.Instrs {
			isTerm := inst.Kind().Is(CatTerminator)
			if idx == len(bb.Instrs)-1 {
				v.cur = inst
				v.require(isTerm, "basic block must end with a terminator")
			} else if isTerm {
				v.cur = inst
				v.fail("terminator in the middle of a basic block", "")
			}
		}
		v.cur = nil
	}

	v.dom = NewDominanceInfo(f)

	if f.Type.IsPolymorphic() {
		v.require(len(f.GenericEnv) > 0, "polymorphic function has no generic environment")
	}
	v.checkEntryPointArguments()

	for _, bb := range f.Blocks {
		v.checkBasicBlock(bb)
	}

	v.checkEpilogBlocks()
	v.checkStackDiscipline()
}

// checkEntryPointArguments requires the entry block's parameters to match
// the declared parameter types, mapped into the function's generic
// environment.
func (v *verifier) checkEntryPointArguments() {
	entry := v.fn.Entry()
	params := v.fn.Type.Params
	v.requiref(len(entry.Params) == len(params),
		"entry point has %d arguments but function type expects %d",
		len(entry.Params), len(params))
	for i, p := range entry.Params {
		want := v.fn.MapIntoContext(params[i])
		v.requireSameType(p.Type(), want,
			"entry point argument types do not match function type")
	}
}

func (v *verifier) checkBasicBlock(bb *BasicBlock) {
	term := bb.Terminator()

	// Recorded successor edges must mirror the terminator, and the
	// predecessor lists must mirror the successor edges.
	succs := term.Successors()
	v.require(len(bb.Succs) == len(succs),
		"recorded successors do not match the terminator")
	for i, s := range succs {
		v.require(bb.Succs[i] == s, "recorded successors do not match the terminator")
		v.require(containsBlock(s.Preds, bb),
			"block is not recorded as a predecessor of its successor")
	}
	for _, p := range bb.Preds {
		pt := p.Terminator()
		v.require(pt != nil && containsBlock(pt.Successors(), bb),
			"recorded predecessor does not branch to the block")
	}

	for _, p := range bb.Params {
		v.checkLegalType(p.Type(), "block argument has illegal generic placeholder")
	}

	for _, inst := range bb.Instrs {
		v.cur = inst
		v.checkInstructionStructure(bb, inst)
		v.checkCategories(inst)
		v.checkLocation(inst)
		v.checkInstruction(inst)
	}
	v.cur = nil
}

func containsBlock(list []*BasicBlock, bb *BasicBlock) bool {
	for _, b := range list {
		if b == bb {
			return true
		}
	}
	return false
}

func containsOperand(list []*Operand, o *Operand) bool {
	for _, x := range list {
		if x == o {
			return true
		}
	}
	return false
}

func (v *verifier) checkInstructionStructure(bb *BasicBlock, inst Instruction) {
	v.require(inst.Parent() == bb, "instruction is not contained in its parent block")

	for _, r := range inst.Results() {
		for _, use := range r.Uses() {
			v.require(use.Value() == r, "use list of a value is corrupted")
			user := use.Owner()
			v.require(user != nil, "use has no owning instruction")
			v.require(user.Parent() != nil && user.Parent().Parent == v.fn,
				"value is used by an instruction of another function")
			v.require(containsOperand(user.Operands(), use),
				"use is not an operand of its owning instruction")
		}
		v.checkLegalType(r.Type(), "result of instruction has illegal generic placeholder")
	}

	for _, op := range inst.Operands() {
		v.require(op.Owner() == inst, "operand's owner back-reference is wrong")
		val := op.Value()
		v.require(val != nil, "instruction has a null operand")
		v.require(containsOperand(val.Uses(), op),
			"operand is not recorded as a use of its value")

		switch def := val.(type) {
		case *Result:
			defBB := def.Inst.Parent()
			v.require(defBB != nil && defBB.Parent == v.fn,
				"operand value is defined in another function")
			v.require(v.dom.ValueDominates(val, inst),
				"instruction isn't dominated by its operand")
		case *BlockParam:
			v.require(def.Block.Parent == v.fn,
				"operand block argument belongs to another function")
			v.require(v.dom.ValueDominates(val, inst),
				"instruction isn't dominated by its block argument operand")
		default:
			v.fail("operand value is neither an instruction result nor a block argument", "")
		}
		v.checkLegalType(val.Type(), "operand of instruction has illegal generic placeholder")
	}
}

// checkCategories runs the checks owed by the kind's structural categories
// before any kind-specific check.
func (v *verifier) checkCategories(inst Instruction) {
	kind := inst.Kind()
	_, isTerm := inst.(Terminator)
	v.require(kind.Is(CatTerminator) == isTerm,
		"terminator category of instruction does not match its kind")
	if kind.Is(CatValue) {
		v.require(len(inst.Results()) > 0,
			"value instruction must produce at least one result")
	} else {
		v.require(len(inst.Results()) == 0,
			"non-value instruction cannot produce results")
	}
	if kind.Is(CatAllocation) {
		v.require(len(inst.Operands()) == 0, "allocation instructions take no operands")
	}
	if kind.Is(CatDeallocation) {
		v.require(len(inst.Operands()) == 1,
			"deallocation instructions take exactly one operand")
	}
	if kind.Is(CatRefCount) {
		v.require(len(inst.Operands()) == 1,
			"reference-counting instructions take exactly one operand")
	}
	if kind.Is(CatRawOnly) && v.module != nil {
		v.require(v.module.Stage == StageRaw,
			"raw-stage instruction in a canonical module")
	}
}

// checkLegalType requires every generic placeholder mentioned by t to be
// opened from an existential, a protocol Self, or bound by the function's
// generic environment.
func (v *verifier) checkLegalType(t Type, complaint string) {
	if t.IsNull() {
		return
	}
	ForEachPlaceholder(t.Desc, func(p *PlaceholderType) {
		if p.Opened != nil || p.SelfProtocol != nil {
			return
		}
		for _, q := range v.fn.GenericEnv {
			if q == p {
				return
			}
		}
		v.fail(complaint, p.Name)
	})
}

func (v *verifier) checkLocation(inst Instruction) {
	k := inst.Loc().Kind
	kind := inst.Kind()
	returnLike := kind == KindReturn || kind == KindAutoreleaseReturn

	switch k {
	case LocCleanup, LocInlined:
		v.require(!returnLike,
			"cleanup and inlined locations are not allowed on return instructions")
	case LocReturn, LocImplicitReturn:
		v.require(returnLike || kind == KindBranch || kind == KindUnreachable,
			"return locations are only allowed on return, branch and unreachable instructions")
	case LocArtificialUnreachable:
		v.require(kind == KindUnreachable,
			"artificial unreachable location on a reachable instruction")
	}
}

// checkEpilogBlocks requires a function to have at most one plain return.
func (v *verifier) checkEpilogBlocks() {
	seen := false
	for _, bb := range v.fn.Blocks {
		if ret, ok := bb.Terminator().(*Return); ok {
			v.cur = ret
			v.require(!seen, "more than one return block in function")
			seen = true
		}
	}
	v.cur = nil
}

// checkStackDiscipline walks the CFG with a worklist and checks that scoped
// stack allocations are closed in LIFO order, that the stack is identical on
// every path into a block, and that it is empty at every return.
func (v *verifier) checkStackDiscipline() {
	type work struct {
		bb    *BasicBlock
		stack []*AllocStack
	}
	found := make(map[*BasicBlock][]*AllocStack, len(v.fn.Blocks))
	worklist := []work{{bb: v.fn.Entry()}}

	for len(worklist) > 0 {
		w := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if prev, visited := found[w.bb]; visited {
			v.require(sameAllocStacks(prev, w.stack),
				"inconsistent stack heights entering basic block")
			continue
		}
		found[w.bb] = w.stack

		stack := append([]*AllocStack(nil), w.stack...)
		for _, inst := range w.bb.Instrs {
			switch i := inst.(type) {
			case *AllocStack:
				stack = append(stack, i)
			case *DeallocStack:
				v.cur = inst
				v.require(len(stack) > 0, "dealloc_stack with empty stack")
				def := definingAllocStack(i.Operands()[0].Value())
				v.require(def == stack[len(stack)-1],
					"dealloc_stack does not match most recent alloc_stack")
				stack = stack[:len(stack)-1]
			case *Return:
				v.cur = inst
				v.require(len(stack) == 0,
					"return with alloc_stacks that haven't been deallocated")
			case *AutoreleaseReturn:
				v.cur = inst
				v.require(len(stack) == 0,
					"return with alloc_stacks that haven't been deallocated")
			}
		}
		v.cur = nil

		for _, s := range w.bb.Terminator().Successors() {
			worklist = append(worklist, work{bb: s, stack: stack})
		}
	}
}

func sameAllocStacks(a, b []*AllocStack) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// definingAllocStack resolves a value to the AllocStack that produced it, or
// nil.
func definingAllocStack(val Value) *AllocStack {
	r, ok := val.(*Result)
	if !ok {
		return nil
	}
	a, _ := r.Inst.(*AllocStack)
	return a
}
