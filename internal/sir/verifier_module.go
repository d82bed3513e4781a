package sir

// Module-level verification: symbol uniqueness across functions and globals,
// table well-formedness, and every function body.

// VerifyModule checks the whole module and every symbol in it, stopping at
// the first violation.
func VerifyModule(m *Module) (err error) {
	defer func() { err = recoverVerify(recover(), err) }()
	v := &verifier{module: m}

	symbols := make(map[string]bool, len(m.Functions)+len(m.Globals))
	claim := func(name string) {
		v.requiref(!symbols[name], "symbol redefined: %s", name)
		symbols[name] = true
	}
	for _, f := range m.Functions {
		claim(f.Name)
	}
	for _, g := range m.Globals {
		claim(g.Name)
	}

	for _, g := range m.Globals {
		v.checkGlobal(g)
	}

	classes := make(map[*ClassDecl]bool, len(m.VTables))
	for _, vt := range m.VTables {
		v.require(!classes[vt.Class], "duplicate vtable for class")
		classes[vt.Class] = true
		v.checkVTable(vt)
	}

	conformances := make(map[*Conformance]bool, len(m.WitnessTables))
	for _, wt := range m.WitnessTables {
		v.require(!conformances[wt.Conformance], "duplicate witness table for conformance")
		conformances[wt.Conformance] = true
		v.checkWitnessTable(wt)
	}

	for _, f := range m.Functions {
		if err := VerifyFunction(m, f); err != nil {
			return err
		}
	}
	return nil
}

// VerifyGlobal checks one global variable.
func VerifyGlobal(g *GlobalVariable) (err error) {
	defer func() { err = recoverVerify(recover(), err) }()
	v := &verifier{}
	v.checkGlobal(g)
	return nil
}

func (v *verifier) checkGlobal(g *GlobalVariable) {
	v.require(g.Type.IsObject(), "global variable cannot have an address type")
}

// VerifyVTable checks one class dispatch table.
func VerifyVTable(vt *VTable) (err error) {
	defer func() { err = recoverVerify(recover(), err) }()
	v := &verifier{}
	v.checkVTable(vt)
	return nil
}

func (v *verifier) checkVTable(vt *VTable) {
	v.require(vt.Class != nil, "vtable must name a class")
	for _, e := range vt.Entries {
		decl := e.Member.Decl
		v.require(decl != nil && decl.Class != nil,
			"vtable entry must name a class method")
		v.require(vt.Class.IsSubclassOf(decl.Class),
			"vtable entry member must belong to the vtable's class or an ancestor")
		v.require(!e.Member.Curried, "vtable entry cannot reference a curried entry point")
		v.require(!e.Member.Foreign, "vtable entry cannot reference a foreign entry point")
		v.require(e.Impl != nil, "vtable entry must have an implementation")
	}
}

// VerifyWitnessTable checks one conformance table.
func VerifyWitnessTable(wt *WitnessTable) (err error) {
	defer func() { err = recoverVerify(recover(), err) }()
	v := &verifier{}
	v.checkWitnessTable(wt)
	return nil
}

func (v *verifier) checkWitnessTable(wt *WitnessTable) {
	v.require(wt.Conformance != nil && wt.Conformance.Protocol != nil,
		"witness table must record a conformance")
	if wt.Declaration {
		v.require(len(wt.Entries) == 0,
			"witness table declaration cannot have entries")
		return
	}
	for _, e := range wt.Entries {
		decl := e.Requirement.Decl
		v.require(decl != nil && decl.Protocol != nil,
			"witness table entry must name a protocol requirement")
		v.require(decl.Protocol == wt.Conformance.Protocol ||
			wt.Conformance.Protocol.InheritsFrom(decl.Protocol),
			"witness table entry requirement must belong to the conformance's protocol")
		v.require(e.Witness != nil, "witness table entry must have a witness")
		v.require(!LessVisible(e.Witness.Linkage, wt.Linkage),
			"witness table entry must not be less visible than its table")
	}
}
