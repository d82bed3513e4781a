package sir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyModuleSymbolRedefined(t *testing.T) {
	m := NewModule("test", StageCanonical)
	a := m.NewFunction("dup", LinkagePublicExternal, retFn(tI64()))
	a.External = true
	b := m.NewFunction("dup", LinkagePublicExternal, retFn(tI64()))
	b.External = true

	err := VerifyModule(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol redefined: dup")
}

func TestVerifyModuleGlobalClashesWithFunction(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("thing", LinkagePublicExternal, retFn(tI64()))
	f.External = true
	m.NewGlobal("thing", LinkagePublic, tI64())

	err := VerifyModule(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol redefined: thing")
}

func TestVerifyGlobalAddressType(t *testing.T) {
	g := &GlobalVariable{Name: "g", Linkage: LinkagePublic, Type: tI64().Address()}
	err := VerifyGlobal(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "global variable cannot have an address type")

	g.Type = tI64()
	require.NoError(t, VerifyGlobal(g))
}

func TestVerifyVTable(t *testing.T) {
	base := &ClassDecl{Name: "Base"}
	derived := &ClassDecl{Name: "Derived", Super: base}
	unrelated := &ClassDecl{Name: "Other"}
	impl := &Function{Name: "impl", Linkage: LinkagePublic, Type: retFn(tI64())}

	vt := &VTable{Class: derived, Entries: []VTableEntry{
		{Member: MethodRef{Decl: &MethodDecl{Name: "m", Class: base}}, Impl: impl},
	}}
	require.NoError(t, VerifyVTable(vt))

	vt.Entries[0].Member.Decl.Class = unrelated
	err := VerifyVTable(vt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vtable entry member must belong to the vtable's class or an ancestor")

	vt.Entries[0].Member.Decl.Class = base
	vt.Entries[0].Member.Curried = true
	err = VerifyVTable(vt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curried")

	vt.Entries[0].Member.Curried = false
	vt.Entries[0].Member.Foreign = true
	err = VerifyVTable(vt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreign")
}

func TestVerifyModuleDuplicateVTable(t *testing.T) {
	cls := &ClassDecl{Name: "C"}
	m := NewModule("test", StageCanonical)
	m.VTables = append(m.VTables, &VTable{Class: cls}, &VTable{Class: cls})

	err := VerifyModule(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate vtable for class")
}

func TestVerifyWitnessTable(t *testing.T) {
	proto := &ProtocolDecl{Name: "Show"}
	conf := &Conformance{Concrete: ObjectType(&StructType{Decl: pointDecl()}), Protocol: proto}
	witness := &Function{Name: "w", Linkage: LinkagePublic, Type: retFn(tI64())}

	wt := &WitnessTable{
		Conformance: conf,
		Linkage:     LinkagePublic,
		Entries: []WitnessEntry{
			{Requirement: MethodRef{Decl: &MethodDecl{Name: "show", Protocol: proto}}, Witness: witness},
		},
	}
	require.NoError(t, VerifyWitnessTable(wt))

	witness.Linkage = LinkagePrivate
	err := VerifyWitnessTable(wt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be less visible than its table")
	witness.Linkage = LinkagePublic

	wt.Declaration = true
	err = VerifyWitnessTable(wt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "witness table declaration cannot have entries")

	wt.Declaration = false
	other := &ProtocolDecl{Name: "Other"}
	wt.Entries[0].Requirement.Decl.Protocol = other
	err = VerifyWitnessTable(wt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requirement must belong to the conformance's protocol")
}

func TestVerifyModuleDuplicateWitnessTable(t *testing.T) {
	proto := &ProtocolDecl{Name: "Show"}
	conf := &Conformance{Concrete: tI64(), Protocol: proto}
	m := NewModule("test", StageCanonical)
	m.WitnessTables = append(m.WitnessTables,
		&WitnessTable{Conformance: conf, Linkage: LinkagePublic, Declaration: true},
		&WitnessTable{Conformance: conf, Linkage: LinkagePublic, Declaration: true},
	)

	err := VerifyModule(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate witness table for conformance")
}

func TestTransparentFunctionReferencesHiddenSymbol(t *testing.T) {
	m := NewModule("test", StageCanonical)
	hidden := m.NewFunction("helper", LinkagePrivate, retFn(tI64()))
	hbb := hidden.NewBlock("")
	hlit := NewIntegerLiteral(noLoc(), tI64(), 0)
	hbb.Append(hlit)
	hbb.Append(NewReturn(noLoc(), hlit.Results()[0]))

	f := m.NewFunction("inlined", LinkagePublic, retFn(tI64()))
	f.Transparent = true
	bb := f.NewBlock("")
	thin := *hidden.Type
	bb.Append(NewFunctionRef(noLoc(), hidden, ObjectType(&thin)))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))

	err := VerifyFunction(m, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transparent function may not reference a private or hidden symbol")

	hidden.Linkage = LinkagePublic
	require.NoError(t, VerifyFunction(m, f))
}

// TestVerifyModuleEndToEnd runs the whole pipeline on a representative
// module: a global, a struct constructor, enum dispatch and a call.
func TestVerifyModuleEndToEnd(t *testing.T) {
	point := pointDecl()
	pointTy := ObjectType(&StructType{Decl: point})
	opt := optDecl()
	optTy := ObjectType(&EnumType{Decl: opt})

	m := NewModule("demo", StageCanonical)
	g := m.NewGlobal("counter", LinkagePublic, tI64())

	calleeTy := &FunctionType{Params: []Type{tI64()}, Result: ResultInfo{Type: tI64()}}
	callee := m.NewFunction("bump", LinkagePublicExternal, calleeTy)
	callee.External = true

	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	entry := f.NewBlock("entry")
	bbSome := f.NewBlock("some")
	bbNone := f.NewBlock("none")
	exit := f.NewBlock("exit")

	ga := NewGlobalAddr(noLoc(), g, tI64().Address())
	entry.Append(ga)
	cur := NewLoad(noLoc(), tI64(), ga.Results()[0])
	entry.Append(cur)
	one := NewIntegerLiteral(noLoc(), tI64(), 1)
	entry.Append(one)
	s := NewStruct(noLoc(), pointTy, []Value{cur.Results()[0], one.Results()[0]})
	entry.Append(s)
	x := NewStructExtract(noLoc(), s.Results()[0], point.Fields[0], tI64())
	entry.Append(x)
	e := NewEnum(noLoc(), optTy, opt.Cases[1], x.Results()[0])
	entry.Append(e)
	entry.Append(NewSwitchEnum(noLoc(), e.Results()[0], []SwitchEnumCase{
		{Case: opt.Cases[1], Dest: bbSome},
		{Case: opt.Cases[0], Dest: bbNone},
	}, nil))

	p := bbSome.AddParam(tI64())
	ref := NewFunctionRef(noLoc(), callee, ObjectType(calleeTy))
	bbSome.Append(ref)
	call := NewApply(noLoc(), ref.Results()[0], nil, calleeTy, []Value{p}, tI64())
	bbSome.Append(call)
	bbSome.Append(NewBranch(noLoc(), exit, call.Results()[0]))

	zero := NewIntegerLiteral(noLoc(), tI64(), 0)
	bbNone.Append(zero)
	bbNone.Append(NewBranch(noLoc(), exit, zero.Results()[0]))

	r := exit.AddParam(tI64())
	exit.Append(NewReturn(noLoc(), r))

	require.NoError(t, VerifyModule(m))
}
