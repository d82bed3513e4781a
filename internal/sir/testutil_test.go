package sir

// Shared fixtures for the verifier tests. Each builder returns freshly
// allocated declarations so tests cannot interfere through shared identity.

func tInt(bits int) Type { return ObjectType(&BuiltinIntType{Bits: bits}) }

func tI64() Type { return tInt(64) }

func tI1() Type { return tInt(1) }

func noLoc() Location { return Location{} }

// retFn is a monomorphic () -> result signature.
func retFn(result Type) *FunctionType {
	return &FunctionType{Result: ResultInfo{Type: result}}
}

// pointDecl is a struct Point { x: Int64, y: Int64 }.
func pointDecl() *StructDecl {
	return &StructDecl{
		Name: "Point",
		Fields: []*Field{
			{Name: "x", Type: tI64()},
			{Name: "y", Type: tI64()},
		},
	}
}

// optDecl is an enum Opt { None, Some(Int64) }.
func optDecl() *EnumDecl {
	some := tI64()
	return NewEnumDecl("Opt",
		&EnumCase{Name: "None"},
		&EnumCase{Name: "Some", Payload: &some},
	)
}

// trivialFunction builds main() -> Int64 { return 1 } inside a fresh module.
func trivialFunction() (*Module, *Function) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	bb := f.NewBlock("")
	lit := NewIntegerLiteral(noLoc(), tI64(), 1)
	bb.Append(lit)
	bb.Append(NewReturn(noLoc(), lit.Results()[0]))
	return m, f
}

// diamond builds entry -> (then | else) -> merge and returns the four
// blocks. The caller supplies the merge block's contents.
func diamond(f *Function) (entry, then, els, merge *BasicBlock) {
	entry = f.NewBlock("entry")
	then = f.NewBlock("then")
	els = f.NewBlock("else")
	merge = f.NewBlock("merge")
	cond := NewIntegerLiteral(noLoc(), tI1(), 1)
	entry.Append(cond)
	entry.Append(NewCondBranch(noLoc(), cond.Results()[0], then, nil, els, nil))
	return entry, then, els, merge
}
