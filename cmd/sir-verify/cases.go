package main

import "github.com/sable-lang/sable/internal/sir"

// smokeCase pairs a module builder with the complaint its verification is
// expected to produce. An empty expect means the module must verify.
type smokeCase struct {
	name   string
	expect string
	build  func() *sir.Module
}

func (c smokeCase) run() error {
	return sir.VerifyModule(c.build())
}

func i64() sir.Type {
	return sir.ObjectType(&sir.BuiltinIntType{Bits: 64})
}

func i1() sir.Type {
	return sir.ObjectType(&sir.BuiltinIntType{Bits: 1})
}

func retFn(result sir.Type) *sir.FunctionType {
	return &sir.FunctionType{Result: sir.ResultInfo{Type: result}}
}

var noLoc = sir.Location{}

func builtinCases() []smokeCase {
	return []smokeCase{
		{name: "valid-module", build: buildValidModule},
		{name: "load-from-object", expect: "Load operand must be an address", build: buildLoadFromObject},
		{name: "branch-arity", expect: "branch has wrong number of arguments for dest bb", build: buildBranchArity},
		{name: "leaked-alloc-stack", expect: "return with alloc_stacks that haven't been deallocated", build: buildLeakedAllocStack},
		{name: "stack-height-merge", expect: "inconsistent stack heights", build: buildStackHeightMerge},
		{name: "double-return", expect: "more than one return block", build: buildDoubleReturn},
		{name: "nonexhaustive-switch", expect: "must have a default", build: buildNonexhaustiveSwitch},
		{name: "duplicate-switch-case", expect: "dispatches on same element twice", build: buildDuplicateSwitchCase},
		{name: "symbol-redefined", expect: "symbol redefined", build: buildSymbolRedefined},
		{name: "use-not-dominated", expect: "isn't dominated by its operand", build: buildUseNotDominated},
	}
}

// buildValidModule is a small but representative program: a global counter,
// struct construction and projection, enum dispatch and a call.
func buildValidModule() *sir.Module {
	point := &sir.StructDecl{Name: "Point", Fields: []*sir.Field{
		{Name: "x", Type: i64()},
		{Name: "y", Type: i64()},
	}}
	pointTy := sir.ObjectType(&sir.StructType{Decl: point})
	payload := i64()
	opt := sir.NewEnumDecl("Opt",
		&sir.EnumCase{Name: "None"},
		&sir.EnumCase{Name: "Some", Payload: &payload},
	)
	optTy := sir.ObjectType(&sir.EnumType{Decl: opt})

	m := sir.NewModule("smoke", sir.StageCanonical)
	g := m.NewGlobal("counter", sir.LinkagePublic, i64())

	calleeTy := &sir.FunctionType{Params: []sir.Type{i64()}, Result: sir.ResultInfo{Type: i64()}}
	callee := m.NewFunction("bump", sir.LinkagePublicExternal, calleeTy)
	callee.External = true

	f := m.NewFunction("main", sir.LinkagePublic, retFn(i64()))
	entry := f.NewBlock("entry")
	bbSome := f.NewBlock("some")
	bbNone := f.NewBlock("none")
	exit := f.NewBlock("exit")

	ga := sir.NewGlobalAddr(noLoc, g, i64().Address())
	entry.Append(ga)
	cur := sir.NewLoad(noLoc, i64(), ga.Results()[0])
	entry.Append(cur)
	one := sir.NewIntegerLiteral(noLoc, i64(), 1)
	entry.Append(one)
	pt := sir.NewStruct(noLoc, pointTy, []sir.Value{cur.Results()[0], one.Results()[0]})
	entry.Append(pt)
	x := sir.NewStructExtract(noLoc, pt.Results()[0], point.Fields[0], i64())
	entry.Append(x)
	e := sir.NewEnum(noLoc, optTy, opt.Cases[1], x.Results()[0])
	entry.Append(e)
	entry.Append(sir.NewSwitchEnum(noLoc, e.Results()[0], []sir.SwitchEnumCase{
		{Case: opt.Cases[1], Dest: bbSome},
		{Case: opt.Cases[0], Dest: bbNone},
	}, nil))

	p := bbSome.AddParam(i64())
	ref := sir.NewFunctionRef(noLoc, callee, sir.ObjectType(calleeTy))
	bbSome.Append(ref)
	call := sir.NewApply(noLoc, ref.Results()[0], nil, calleeTy, []sir.Value{p}, i64())
	bbSome.Append(call)
	bbSome.Append(sir.NewBranch(noLoc, exit, call.Results()[0]))

	zero := sir.NewIntegerLiteral(noLoc, i64(), 0)
	bbNone.Append(zero)
	bbNone.Append(sir.NewBranch(noLoc, exit, zero.Results()[0]))

	r := exit.AddParam(i64())
	exit.Append(sir.NewReturn(noLoc, r))
	return m
}

func singleBlockModule(fill func(f *sir.Function, bb *sir.BasicBlock)) *sir.Module {
	m := sir.NewModule("smoke", sir.StageCanonical)
	f := m.NewFunction("main", sir.LinkagePublic, retFn(i64()))
	bb := f.NewBlock("entry")
	fill(f, bb)
	return m
}

func buildLoadFromObject() *sir.Module {
	return singleBlockModule(func(f *sir.Function, bb *sir.BasicBlock) {
		lit := sir.NewIntegerLiteral(noLoc, i64(), 1)
		bb.Append(lit)
		load := sir.NewLoad(noLoc, i64(), lit.Results()[0])
		bb.Append(load)
		bb.Append(sir.NewReturn(noLoc, load.Results()[0]))
	})
}

func buildBranchArity() *sir.Module {
	m := sir.NewModule("smoke", sir.StageCanonical)
	f := m.NewFunction("main", sir.LinkagePublic, retFn(i64()))
	entry := f.NewBlock("entry")
	exit := f.NewBlock("exit")
	p := exit.AddParam(i64())
	exit.Append(sir.NewReturn(noLoc, p))
	entry.Append(sir.NewBranch(noLoc, exit))
	return m
}

func buildLeakedAllocStack() *sir.Module {
	return singleBlockModule(func(f *sir.Function, bb *sir.BasicBlock) {
		bb.Append(sir.NewAllocStack(noLoc, i64().Address()))
		lit := sir.NewIntegerLiteral(noLoc, i64(), 0)
		bb.Append(lit)
		bb.Append(sir.NewReturn(noLoc, lit.Results()[0]))
	})
}

func condSkeleton(m *sir.Module) (f *sir.Function, then, els, merge *sir.BasicBlock) {
	f = m.NewFunction("main", sir.LinkagePublic, retFn(i64()))
	entry := f.NewBlock("entry")
	then = f.NewBlock("then")
	els = f.NewBlock("else")
	merge = f.NewBlock("merge")
	cond := sir.NewIntegerLiteral(noLoc, i1(), 1)
	entry.Append(cond)
	entry.Append(sir.NewCondBranch(noLoc, cond.Results()[0], then, nil, els, nil))
	return f, then, els, merge
}

func buildStackHeightMerge() *sir.Module {
	m := sir.NewModule("smoke", sir.StageCanonical)
	_, then, els, merge := condSkeleton(m)
	then.Append(sir.NewAllocStack(noLoc, i64().Address()))
	then.Append(sir.NewBranch(noLoc, merge))
	els.Append(sir.NewBranch(noLoc, merge))
	lit := sir.NewIntegerLiteral(noLoc, i64(), 0)
	merge.Append(lit)
	merge.Append(sir.NewReturn(noLoc, lit.Results()[0]))
	return m
}

func buildDoubleReturn() *sir.Module {
	m := sir.NewModule("smoke", sir.StageCanonical)
	_, then, els, merge := condSkeleton(m)
	a := sir.NewIntegerLiteral(noLoc, i64(), 1)
	then.Append(a)
	then.Append(sir.NewReturn(noLoc, a.Results()[0]))
	b := sir.NewIntegerLiteral(noLoc, i64(), 2)
	els.Append(b)
	els.Append(sir.NewReturn(noLoc, b.Results()[0]))
	merge.Append(sir.NewUnreachable(noLoc))
	return m
}

func smokeEnum() (*sir.EnumDecl, sir.Type) {
	payload := i64()
	opt := sir.NewEnumDecl("Opt",
		&sir.EnumCase{Name: "None"},
		&sir.EnumCase{Name: "Some", Payload: &payload},
	)
	return opt, sir.ObjectType(&sir.EnumType{Decl: opt})
}

func buildNonexhaustiveSwitch() *sir.Module {
	opt, optTy := smokeEnum()
	m := sir.NewModule("smoke", sir.StageCanonical)
	f := m.NewFunction("main", sir.LinkagePublic, retFn(i64()))
	entry := f.NewBlock("entry")
	bbNone := f.NewBlock("none")
	exit := f.NewBlock("exit")

	e := sir.NewEnum(noLoc, optTy, opt.Cases[0], nil)
	entry.Append(e)
	entry.Append(sir.NewSwitchEnum(noLoc, e.Results()[0],
		[]sir.SwitchEnumCase{{Case: opt.Cases[0], Dest: bbNone}}, nil))
	bbNone.Append(sir.NewBranch(noLoc, exit))
	lit := sir.NewIntegerLiteral(noLoc, i64(), 0)
	exit.Append(lit)
	exit.Append(sir.NewReturn(noLoc, lit.Results()[0]))
	return m
}

func buildDuplicateSwitchCase() *sir.Module {
	opt, optTy := smokeEnum()
	m := sir.NewModule("smoke", sir.StageCanonical)
	f := m.NewFunction("main", sir.LinkagePublic, retFn(i64()))
	entry := f.NewBlock("entry")
	bbA := f.NewBlock("a")
	bbB := f.NewBlock("b")
	exit := f.NewBlock("exit")

	e := sir.NewEnum(noLoc, optTy, opt.Cases[0], nil)
	entry.Append(e)
	entry.Append(sir.NewSwitchEnum(noLoc, e.Results()[0], []sir.SwitchEnumCase{
		{Case: opt.Cases[0], Dest: bbA},
		{Case: opt.Cases[0], Dest: bbB},
	}, nil))
	bbA.Append(sir.NewBranch(noLoc, exit))
	bbB.Append(sir.NewBranch(noLoc, exit))
	lit := sir.NewIntegerLiteral(noLoc, i64(), 0)
	exit.Append(lit)
	exit.Append(sir.NewReturn(noLoc, lit.Results()[0]))
	return m
}

func buildSymbolRedefined() *sir.Module {
	m := sir.NewModule("smoke", sir.StageCanonical)
	a := m.NewFunction("dup", sir.LinkagePublicExternal, retFn(i64()))
	a.External = true
	b := m.NewFunction("dup", sir.LinkagePublicExternal, retFn(i64()))
	b.External = true
	return m
}

func buildUseNotDominated() *sir.Module {
	m := sir.NewModule("smoke", sir.StageCanonical)
	_, then, els, merge := condSkeleton(m)
	x := sir.NewIntegerLiteral(noLoc, i64(), 1)
	then.Append(x)
	then.Append(sir.NewBranch(noLoc, merge))
	els.Append(sir.NewBranch(noLoc, merge))
	merge.Append(sir.NewReturn(noLoc, x.Results()[0]))
	return m
}
