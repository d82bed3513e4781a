package sir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sable-lang/sable/internal/position"
)

func TestVerifyTrivialFunction(t *testing.T) {
	m, f := trivialFunction()
	require.NoError(t, VerifyFunction(m, f))
}

func TestVerifyFunctionWithParameters(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("id", LinkagePublic, &FunctionType{
		Params: []Type{tI64()},
		Result: ResultInfo{Type: tI64()},
	})
	bb := f.NewBlock("")
	p := bb.AddParam(tI64())
	bb.Append(NewReturn(noLoc(), p))
	require.NoError(t, VerifyFunction(m, f))
}

func TestEntryPointArgumentCountMismatch(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("id", LinkagePublic, &FunctionType{
		Params: []Type{tI64()},
		Result: ResultInfo{Type: tI64()},
	})
	bb := f.NewBlock("")
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry point has 0 arguments but function type expects 1")
}

func TestExternalDeclarationLinkage(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("ext", LinkagePublicExternal, retFn(tI64()))
	f.External = true
	require.NoError(t, VerifyFunction(m, f))

	f.Linkage = LinkagePublic
	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available-externally linkage")
}

func TestMissingTerminator(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	bb.Append(NewIntegerLiteral(noLoc(), tI64(), 1))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must end with a terminator")
}

func TestBranchArgumentCountMismatch(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	entry := f.NewBlock("entry")
	exit := f.NewBlock("exit")
	p := exit.AddParam(tI64())
	exit.Append(NewReturn(noLoc(), p))
	entry.Append(NewBranch(noLoc(), exit))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch has wrong number of arguments for dest bb")
}

func TestBranchArgumentTypeMismatch(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	entry := f.NewBlock("entry")
	exit := f.NewBlock("exit")
	p := exit.AddParam(tI64())
	exit.Append(NewReturn(noLoc(), p))
	wrong := NewIntegerLiteral(noLoc(), tI1(), 0)
	entry.Append(wrong)
	entry.Append(NewBranch(noLoc(), exit, wrong.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch argument types do not match arguments of dest bb")
}

func TestLoadFromObject(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	lit := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb.Append(lit)
	load := NewLoad(noLoc(), tI64(), lit.Results()[0])
	bb.Append(load)
	bb.Append(NewReturn(noLoc(), load.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Load operand must be an address")
}

func TestLoadStoreRoundTrip(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	slot := NewAllocStack(noLoc(), tI64().Address())
	bb.Append(slot)
	lit := NewIntegerLiteral(noLoc(), tI64(), 7)
	bb.Append(lit)
	bb.Append(NewStore(noLoc(), lit.Results()[0], slot.Results()[0]))
	load := NewLoad(noLoc(), tI64(), slot.Results()[0])
	bb.Append(load)
	bb.Append(NewDeallocStack(noLoc(), slot.Results()[0]))
	bb.Append(NewReturn(noLoc(), load.Results()[0]))
	require.NoError(t, VerifyFunction(m, f))
}

func TestStoreTypeMismatch(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	slot := NewAllocStack(noLoc(), tI1().Address())
	bb.Append(slot)
	lit := NewIntegerLiteral(noLoc(), tI64(), 7)
	bb.Append(lit)
	bb.Append(NewStore(noLoc(), lit.Results()[0], slot.Results()[0]))
	bb.Append(NewDeallocStack(noLoc(), slot.Results()[0]))
	ret := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(ret)
	bb.Append(NewReturn(noLoc(), ret.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store operand type and destination type mismatch")
}

func TestApplySubstitutedCalleeMismatch(t *testing.T) {
	tp := &GenericParamType{Depth: 0, Index: 0, Name: "T"}
	polyTy := &FunctionType{
		Params:  []Type{ObjectType(tp)},
		Result:  ResultInfo{Type: ObjectType(tp)},
		Generic: &GenericSignature{Params: []*GenericParamType{tp}},
	}

	m := NewModule("test", StageCanonical)
	callee := m.NewFunction("identity", LinkagePublicExternal, polyTy)
	callee.External = true

	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	ref := NewFunctionRef(noLoc(), callee, ObjectType(polyTy))
	bb.Append(ref)
	arg := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb.Append(arg)
	subs := []Substitution{{Param: tp, Replacement: tI64()}}
	// Recorded substituted type disagrees with the substitution list.
	recorded := &FunctionType{
		Params: []Type{tI64()},
		Result: ResultInfo{Type: tInt(32)},
	}
	ap := NewApply(noLoc(), ref.Results()[0], subs, recorded, []Value{arg.Results()[0]}, tI64())
	bb.Append(ap)
	bb.Append(NewReturn(noLoc(), ap.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "substituted callee type does not match substitutions")
}

func TestApplyMonomorphicCall(t *testing.T) {
	calleeTy := &FunctionType{
		Params: []Type{tI64()},
		Result: ResultInfo{Type: tI64()},
	}
	m := NewModule("test", StageCanonical)
	callee := m.NewFunction("double", LinkagePublicExternal, calleeTy)
	callee.External = true

	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	ref := NewFunctionRef(noLoc(), callee, ObjectType(calleeTy))
	bb.Append(ref)
	arg := NewIntegerLiteral(noLoc(), tI64(), 21)
	bb.Append(arg)
	ap := NewApply(noLoc(), ref.Results()[0], nil, calleeTy, []Value{arg.Results()[0]}, tI64())
	bb.Append(ap)
	bb.Append(NewReturn(noLoc(), ap.Results()[0]))
	require.NoError(t, VerifyFunction(m, f))
}

func TestPartialApplyResultConventionDegrade(t *testing.T) {
	calleeTy := &FunctionType{
		Params: []Type{tI64(), tI64()},
		Result: ResultInfo{Type: tI64(), Conv: ResultUnownedInnerPointer},
	}
	// A closure over the last parameter keeps the result type but the
	// inner-pointer convention degrades to plain unowned.
	closureTy := &FunctionType{
		Params: []Type{tI64()},
		Result: ResultInfo{Type: tI64(), Conv: ResultUnowned},
		Rep:    RepThick,
	}

	m := NewModule("test", StageCanonical)
	callee := m.NewFunction("slice", LinkagePublicExternal, calleeTy)
	callee.External = true

	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	ref := NewFunctionRef(noLoc(), callee, ObjectType(calleeTy))
	bb.Append(ref)
	arg := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb.Append(arg)
	pa := NewPartialApply(noLoc(), ref.Results()[0], nil, calleeTy,
		[]Value{arg.Results()[0]}, ObjectType(closureTy))
	bb.Append(pa)
	ret := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(ret)
	bb.Append(NewReturn(noLoc(), ret.Results()[0]))
	require.NoError(t, VerifyFunction(m, f))

	// Keeping the inner-pointer convention through partial application
	// must be rejected.
	bad := *closureTy
	bad.Result.Conv = ResultUnownedInnerPointer
	f2 := m.NewFunction("main2", LinkagePublic, retFn(tI64()))
	bb2 := f2.NewBlock("")
	ref2 := NewFunctionRef(noLoc(), callee, ObjectType(calleeTy))
	bb2.Append(ref2)
	arg2 := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb2.Append(arg2)
	pa2 := NewPartialApply(noLoc(), ref2.Results()[0], nil, calleeTy,
		[]Value{arg2.Results()[0]}, ObjectType(&bad))
	bb2.Append(pa2)
	ret2 := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb2.Append(ret2)
	bb2.Append(NewReturn(noLoc(), ret2.Results()[0]))

	err := VerifyFunction(m, f2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result convention of partial_apply does not match the callee")
}

func TestUseBeforeDominatingDefinition(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	_, then, els, merge := diamond(f)
	x := NewIntegerLiteral(noLoc(), tI64(), 1)
	then.Append(x)
	then.Append(NewBranch(noLoc(), merge))
	els.Append(NewBranch(noLoc(), merge))
	merge.Append(NewReturn(noLoc(), x.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instruction isn't dominated by its operand")
}

func TestRecordedSuccessorsMismatch(t *testing.T) {
	m, f := trivialFunction()
	exit := f.NewBlock("exit")
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	exit.Append(lit)
	exit.Append(NewUnreachable(noLoc()))
	// Forge an edge the terminator does not have.
	f.Entry().Succs = append(f.Entry().Succs, exit)
	exit.Preds = append(exit.Preds, f.Entry())

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recorded successors do not match the terminator")
}

func TestUseSetSymmetryBroken(t *testing.T) {
	m, f := trivialFunction()
	// Strip the recorded use from the returned literal.
	lit := f.Entry().Instrs[0].(*IntegerLiteral)
	lit.Results()[0].uses = nil

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operand is not recorded as a use of its value")
}

func TestMoreThanOneReturnBlock(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	_, then, els, merge := diamond(f)
	a := NewIntegerLiteral(noLoc(), tI64(), 1)
	then.Append(a)
	then.Append(NewReturn(noLoc(), a.Results()[0]))
	b := NewIntegerLiteral(noLoc(), tI64(), 2)
	els.Append(b)
	els.Append(NewReturn(noLoc(), b.Results()[0]))
	merge.Append(NewUnreachable(noLoc()))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one return block in function")
}

func TestStackHeightsDisagreeAtMerge(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	_, then, els, merge := diamond(f)
	then.Append(NewAllocStack(noLoc(), tI64().Address()))
	then.Append(NewBranch(noLoc(), merge))
	els.Append(NewBranch(noLoc(), merge))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	merge.Append(lit)
	merge.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inconsistent stack heights")
}

func TestDeallocStackOutOfOrder(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	a := NewAllocStack(noLoc(), tI64().Address())
	bb.Append(a)
	b := NewAllocStack(noLoc(), tI64().Address())
	bb.Append(b)
	bb.Append(NewDeallocStack(noLoc(), a.Results()[0]))
	bb.Append(NewDeallocStack(noLoc(), b.Results()[0]))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dealloc_stack does not match most recent alloc_stack")
}

func TestDeallocStackTwice(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	a := NewAllocStack(noLoc(), tI64().Address())
	bb.Append(a)
	bb.Append(NewDeallocStack(noLoc(), a.Results()[0]))
	bb.Append(NewDeallocStack(noLoc(), a.Results()[0]))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dealloc_stack with empty stack")
}

func TestReturnWithLiveStackAllocation(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	bb.Append(NewAllocStack(noLoc(), tI64().Address()))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "return with alloc_stacks that haven't been deallocated")
}

func TestSwitchEnumNonexhaustive(t *testing.T) {
	opt := optDecl()
	optTy := ObjectType(&EnumType{Decl: opt})

	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	entry := f.NewBlock("entry")
	bbNone := f.NewBlock("none")
	exit := f.NewBlock("exit")

	e := NewEnum(noLoc(), optTy, opt.Cases[0], nil)
	entry.Append(e)
	entry.Append(NewSwitchEnum(noLoc(), e.Results()[0],
		[]SwitchEnumCase{{Case: opt.Cases[0], Dest: bbNone}}, nil))
	bbNone.Append(NewBranch(noLoc(), exit))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	exit.Append(lit)
	exit.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexhaustive switch_enum must have a default")
}

func TestSwitchEnumDuplicateCase(t *testing.T) {
	opt := optDecl()
	optTy := ObjectType(&EnumType{Decl: opt})

	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	entry := f.NewBlock("entry")
	bbA := f.NewBlock("a")
	bbB := f.NewBlock("b")
	exit := f.NewBlock("exit")

	e := NewEnum(noLoc(), optTy, opt.Cases[0], nil)
	entry.Append(e)
	entry.Append(NewSwitchEnum(noLoc(), e.Results()[0], []SwitchEnumCase{
		{Case: opt.Cases[0], Dest: bbA},
		{Case: opt.Cases[0], Dest: bbB},
	}, nil))
	bbA.Append(NewBranch(noLoc(), exit))
	bbB.Append(NewBranch(noLoc(), exit))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	exit.Append(lit)
	exit.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatches on same element twice")
}

func TestSwitchEnumPayloadDispatch(t *testing.T) {
	opt := optDecl()
	optTy := ObjectType(&EnumType{Decl: opt})

	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	entry := f.NewBlock("entry")
	bbSome := f.NewBlock("some")
	bbNone := f.NewBlock("none")
	exit := f.NewBlock("exit")

	payload := NewIntegerLiteral(noLoc(), tI64(), 5)
	entry.Append(payload)
	e := NewEnum(noLoc(), optTy, opt.Cases[1], payload.Results()[0])
	entry.Append(e)
	entry.Append(NewSwitchEnum(noLoc(), e.Results()[0], []SwitchEnumCase{
		{Case: opt.Cases[1], Dest: bbSome},
		{Case: opt.Cases[0], Dest: bbNone},
	}, nil))
	p := bbSome.AddParam(tI64())
	bbSome.Append(NewBranch(noLoc(), exit, p))
	zero := NewIntegerLiteral(noLoc(), tI64(), 0)
	bbNone.Append(zero)
	bbNone.Append(NewBranch(noLoc(), exit, zero.Results()[0]))
	r := exit.AddParam(tI64())
	exit.Append(NewReturn(noLoc(), r))

	require.NoError(t, VerifyFunction(m, f))
}

func TestEnumPayloadOperandRequired(t *testing.T) {
	opt := optDecl()
	optTy := ObjectType(&EnumType{Decl: opt})

	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	e := NewEnum(noLoc(), optTy, opt.Cases[1], nil)
	bb.Append(e)
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enum with a payload case must take an operand")
}

func TestCheckedCastToSameType(t *testing.T) {
	parent := &ClassDecl{Name: "Base"}
	baseTy := ObjectType(&ClassType{Decl: parent})

	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	obj := NewAllocRef(noLoc(), baseTy)
	bb.Append(obj)
	cast := NewUnconditionalCheckedCast(noLoc(), CastDowncast, obj.Results()[0], baseTy)
	bb.Append(cast)
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't checked cast to the same type")
}

func TestCheckedCastBranchDestinations(t *testing.T) {
	parent := &ClassDecl{Name: "Base"}
	child := &ClassDecl{Name: "Derived", Super: parent}
	baseTy := ObjectType(&ClassType{Decl: parent})
	childTy := ObjectType(&ClassType{Decl: child})

	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	entry := f.NewBlock("entry")
	hit := f.NewBlock("hit")
	miss := f.NewBlock("miss")
	exit := f.NewBlock("exit")

	obj := NewAllocRef(noLoc(), baseTy)
	entry.Append(obj)
	entry.Append(NewCheckedCastBranch(noLoc(), CastDowncast, obj.Results()[0], childTy, hit, miss))
	hit.AddParam(childTy)
	hit.Append(NewBranch(noLoc(), exit))
	miss.Append(NewBranch(noLoc(), exit))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	exit.Append(lit)
	exit.Append(NewReturn(noLoc(), lit.Results()[0]))

	require.NoError(t, VerifyFunction(m, f))
}

func TestWitnessMethodConcreteLookup(t *testing.T) {
	proto := &ProtocolDecl{Name: "Show"}
	member := MethodRef{Decl: &MethodDecl{Name: "show", Protocol: proto}}
	point := ObjectType(&StructType{Decl: pointDecl()})

	selfTp := &GenericParamType{Depth: 0, Index: 0, Name: "Self"}
	sig := &GenericSignature{
		Params: []*GenericParamType{selfTp},
		Requirements: []Requirement{
			{Kind: ReqWitnessMarker, Subject: selfTp},
			{Kind: ReqConformance, Subject: selfTp, Protocol: proto},
		},
	}
	methodTy := &FunctionType{
		Params:  []Type{ObjectType(selfTp)},
		Result:  ResultInfo{Type: tI64()},
		CC:      CCWitness,
		Generic: sig,
	}

	conf := &Conformance{Concrete: point, Protocol: proto}
	m := NewModule("test", StageCanonical)
	m.WitnessTables = append(m.WitnessTables, &WitnessTable{
		Conformance: conf,
		Linkage:     LinkagePublic,
		Declaration: true,
	})

	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	bb.Append(NewWitnessMethod(noLoc(), point, member, conf, ObjectType(methodTy)))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))
	require.NoError(t, VerifyFunction(m, f))

	// Same lookup in a module without the table must fail.
	m2 := NewModule("empty", StageCanonical)
	f2 := m2.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb2 := f2.NewBlock("")
	bb2.Append(NewWitnessMethod(noLoc(), point, member, conf, ObjectType(methodTy)))
	lit2 := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb2.Append(lit2)
	bb2.Append(NewReturn(noLoc(), lit2.Results()[0]))

	err := VerifyFunction(m2, f2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find witness table for conformance")
}

func TestCleanupLocationOnReturn(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	lit := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb.Append(lit)
	bb.Append(NewReturn(Location{Kind: LocCleanup}, lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed on return instructions")
}

func TestRawStageInstructionInCanonicalModule(t *testing.T) {
	m := NewModule("test", StageRaw)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	slot := NewAllocStack(noLoc(), tI64().Address())
	bb.Append(slot)
	lit := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb.Append(lit)
	bb.Append(NewAssign(noLoc(), lit.Results()[0], slot.Results()[0]))
	bb.Append(NewDeallocStack(noLoc(), slot.Results()[0]))
	ret := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(ret)
	bb.Append(NewReturn(noLoc(), ret.Results()[0]))
	require.NoError(t, VerifyFunction(m, f))

	m.Stage = StageCanonical
	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw-stage instruction in a canonical module")
}

func TestPolymorphicFunctionNeedsGenericEnv(t *testing.T) {
	tp := &GenericParamType{Depth: 0, Index: 0, Name: "T"}
	polyTy := &FunctionType{
		Params:  []Type{ObjectType(tp)},
		Result:  ResultInfo{Type: ObjectType(tp)},
		Generic: &GenericSignature{Params: []*GenericParamType{tp}},
	}
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("identity", LinkagePublic, polyTy)
	placeholder := &PlaceholderType{Name: "T"}
	bb := f.NewBlock("")
	p := bb.AddParam(ObjectType(placeholder))
	bb.Append(NewReturn(noLoc(), p))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "polymorphic function has no generic environment")

	f.GenericEnv = []*PlaceholderType{placeholder}
	require.NoError(t, VerifyFunction(m, f))
}

func TestIllegalPlaceholderInMonomorphicFunction(t *testing.T) {
	stray := &PlaceholderType{Name: "U"}
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	bb.Append(NewAllocStack(noLoc(), AddressType(stray)))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal generic placeholder")
}

func TestOpenExistential(t *testing.T) {
	proto := &ProtocolDecl{Name: "Show"}
	ext := &ExistentialType{Protocols: []*ProtocolDecl{proto}}
	opened := &PlaceholderType{Name: "Opened", Opened: ext, Conforms: []*ProtocolDecl{proto}}

	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	box := NewAllocStack(noLoc(), AddressType(ext))
	bb.Append(box)
	open := NewOpenExistential(noLoc(), box.Results()[0], AddressType(opened))
	bb.Append(open)
	bb.Append(NewDeallocStack(noLoc(), box.Results()[0]))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))
	require.NoError(t, VerifyFunction(m, f))
}

func TestStructFieldProjection(t *testing.T) {
	point := pointDecl()
	pointTy := ObjectType(&StructType{Decl: point})

	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	x := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb.Append(x)
	y := NewIntegerLiteral(noLoc(), tI64(), 2)
	bb.Append(y)
	s := NewStruct(noLoc(), pointTy, []Value{x.Results()[0], y.Results()[0]})
	bb.Append(s)
	proj := NewStructExtract(noLoc(), s.Results()[0], point.Fields[0], tI64())
	bb.Append(proj)
	bb.Append(NewReturn(noLoc(), proj.Results()[0]))
	require.NoError(t, VerifyFunction(m, f))

	// Projecting a field of a different declaration must fail.
	otherField := &Field{Name: "z", Type: tI64()}
	f2 := m.NewFunction("main2", LinkagePublic, retFn(tI64()))
	bb2 := f2.NewBlock("")
	x2 := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb2.Append(x2)
	y2 := NewIntegerLiteral(noLoc(), tI64(), 2)
	bb2.Append(y2)
	s2 := NewStruct(noLoc(), pointTy, []Value{x2.Results()[0], y2.Results()[0]})
	bb2.Append(s2)
	proj2 := NewStructExtract(noLoc(), s2.Results()[0], otherField, tI64())
	bb2.Append(proj2)
	bb2.Append(NewReturn(noLoc(), proj2.Results()[0]))

	err := VerifyFunction(m, f2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "struct_extract field is not a member of the struct")
}

func TestDeadBlockParamIllegalPlaceholder(t *testing.T) {
	stray := &PlaceholderType{Name: "U"}
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))
	dead := f.NewBlock("dead")
	dead.AddParam(ObjectType(stray))
	dead.Append(NewUnreachable(noLoc()))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal generic placeholder")
}

func TestValueInstructionMustProduceResult(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	orphan := NewIntegerLiteral(noLoc(), tI64(), 9)
	bb.Append(orphan)
	orphan.res = nil
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value instruction must produce at least one result")
}

func TestNonValueInstructionCannotProduceResults(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	slot := NewAllocStack(noLoc(), tI64().Address())
	bb.Append(slot)
	lit := NewIntegerLiteral(noLoc(), tI64(), 7)
	bb.Append(lit)
	st := NewStore(noLoc(), lit.Results()[0], slot.Results()[0])
	st.res = append(st.res, &Result{Inst: st, typ: tI64()})
	bb.Append(st)
	bb.Append(NewDeallocStack(noLoc(), slot.Results()[0]))
	ret := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(ret)
	bb.Append(NewReturn(noLoc(), ret.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-value instruction cannot produce results")
}

func TestSwitchIntDefaultWithArguments(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	entry := f.NewBlock("entry")
	zero := f.NewBlock("zero")
	def := f.NewBlock("def")
	exit := f.NewBlock("exit")

	sel := NewIntegerLiteral(noLoc(), tI64(), 1)
	entry.Append(sel)
	entry.Append(NewSwitchInt(noLoc(), sel.Results()[0],
		[]SwitchIntCase{{Value: 0, Dest: zero}}, def))
	zero.Append(NewBranch(noLoc(), exit))
	def.AddParam(tI64())
	def.Append(NewBranch(noLoc(), exit))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	exit.Append(lit)
	exit.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "switch_int default destination cannot take arguments")
}

func TestWitnessMethodSelfParameterMismatch(t *testing.T) {
	proto := &ProtocolDecl{Name: "Show"}
	member := MethodRef{Decl: &MethodDecl{Name: "show", Protocol: proto}}
	selfTp := &GenericParamType{Depth: 0, Index: 0, Name: "Self"}
	sig := &GenericSignature{
		Params: []*GenericParamType{selfTp},
		Requirements: []Requirement{
			{Kind: ReqWitnessMarker, Subject: selfTp},
			{Kind: ReqConformance, Subject: selfTp, Protocol: proto},
		},
	}
	// The method takes a concrete self instead of the Self parameter.
	methodTy := &FunctionType{
		Params:  []Type{tI64()},
		Result:  ResultInfo{Type: tI64()},
		CC:      CCWitness,
		Generic: sig,
	}
	opened := &PlaceholderType{Name: "P", SelfProtocol: proto}

	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	bb.Append(NewWitnessMethod(noLoc(), ObjectType(opened), member, nil, ObjectType(methodTy)))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "self parameter of witness_method")
}

func TestVerifyErrorRendersSourceSpan(t *testing.T) {
	span := position.Span{
		Start: position.Position{Filename: "demo.sb", Line: 3, Column: 5},
		End:   position.Position{Filename: "demo.sb", Line: 3, Column: 9},
	}
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	lit := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb.Append(lit)
	load := NewLoad(Location{Span: span}, tI64(), lit.Results()[0])
	bb.Append(load)
	bb.Append(NewReturn(noLoc(), load.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	var ve *VerifyError
	require.ErrorAs(t, err, &ve)
	require.NotNil(t, ve.Detail)
	assert.Contains(t, err.Error(), "demo.sb:3:5-9")
}

func TestVerifyErrorCarriesContext(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("broken", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	lit := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb.Append(lit)
	load := NewLoad(noLoc(), tI64(), lit.Results()[0])
	bb.Append(load)
	bb.Append(NewReturn(noLoc(), load.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	var ve *VerifyError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "broken", ve.Function)
	assert.Contains(t, ve.InstDump, "load")
	assert.Contains(t, err.Error(), "In function @broken")
}
